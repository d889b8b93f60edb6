// render/geometry.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// Updater refreshes dynamically-bound values in already-built render
// states; updaters are run once per frame before their batch is queued.
type Updater interface {
	Update()
}

// Updaters runs a list of updaters in order.
type Updaters []Updater

func (u Updaters) Update() {
	for _, up := range u {
		up.Update()
	}
}

// Enqueueable adds the batches for one renderable to its queues; it is
// called once per frame.
type Enqueueable interface {
	Enqueue()
}

// Enqueueables enqueues a list of enqueueables in order.
type Enqueueables []Enqueueable

func (e Enqueueables) Enqueue() {
	for _, en := range e {
		en.Enqueue()
	}
}

// DrawCommand specifies the vertices that a batch draws.
type DrawCommand struct {
	Mode  renderer.Primitive
	First int32
	Count int32
	// Indexed commands draw Count indices from the array state's element
	// buffer, starting at index First.
	Indexed bool
}

// Geometry is something that can be drawn by a pass.
type Geometry interface {
	// Center returns the center of the geometry in mesh space; it's used
	// to compute sort depths.
	Center() mgl32.Vec3
	// ArrayState returns the vertex arrays to use for the given pass.
	ArrayState(pass int) *state.ArrayState
	DrawCommand(pass int) DrawCommand
	// RequiresUpdate reports whether Update must be called each frame.
	RequiresUpdate() bool
	Update()
}

// SimpleGeometry is a static Geometry that uses the same arrays for
// every pass.
type SimpleGeometry struct {
	CenterPoint mgl32.Vec3
	Arrays      *state.ArrayState
	Command     DrawCommand
}

func (g *SimpleGeometry) Center() mgl32.Vec3               { return g.CenterPoint }
func (g *SimpleGeometry) ArrayState(int) *state.ArrayState { return g.Arrays }
func (g *SimpleGeometry) DrawCommand(int) DrawCommand      { return g.Command }
func (g *SimpleGeometry) RequiresUpdate() bool             { return false }
func (g *SimpleGeometry) Update()                          {}
