// particle/placer.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	gomath "math"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/math"

	"github.com/go-gl/mathgl/mgl32"
)

// Placer sets the initial position of new particles. Shapes are centered
// on the emitter's origin; rings lie in its xy plane.
type Placer interface {
	Place(l Layer, p *Particle)
}

var placerVariants = config.Variants[Placer]{
	"point": func() Placer { return &PointPlacer{} },
	"line":  func() Placer { return &LinePlacer{} },
	"box":   func() Placer { return &BoxPlacer{} },
	"ring":  func() Placer { return &RingPlacer{} },
	"shell": func() Placer { return &ShellPlacer{} },
}

type PointPlacer struct{}

func (*PointPlacer) Place(l Layer, p *Particle) {
	p.Position = l.PointToLayer(mgl32.Vec3{})
}

// LinePlacer places particles along the emitter's x axis.
type LinePlacer struct {
	Length float32 `json:"length"`
}

func (pl *LinePlacer) Place(l Layer, p *Particle) {
	x := l.Rand().Uniform(-pl.Length/2, pl.Length/2)
	p.Position = l.PointToLayer(mgl32.Vec3{x, 0, 0})
}

// BoxPlacer places particles uniformly within a box.
type BoxPlacer struct {
	Size mgl32.Vec3 `json:"size"`
}

func (pl *BoxPlacer) Place(l Layer, p *Particle) {
	r := l.Rand()
	var pos mgl32.Vec3
	for i := range 3 {
		pos[i] = r.Uniform(-pl.Size[i]/2, pl.Size[i]/2)
	}
	p.Position = l.PointToLayer(pos)
}

// RingPlacer places particles with uniform density on the part of a disc
// between two radii.
type RingPlacer struct {
	Inner float32 `json:"inner"`
	Outer float32 `json:"outer"`
}

func (pl *RingPlacer) Place(l Layer, p *Particle) {
	r := l.Rand()
	radius := math.Sqrt(r.Uniform(math.Sqr(pl.Inner), math.Sqr(pl.Outer)))
	sin, cos := math.SinCos(r.Uniform(0, 2*gomath.Pi))
	p.Position = l.PointToLayer(mgl32.Vec3{radius * cos, radius * sin, 0})
}

// ShellPlacer places particles with uniform density in the volume
// between two spheres.
type ShellPlacer struct {
	Inner float32 `json:"inner"`
	Outer float32 `json:"outer"`
}

func (pl *ShellPlacer) Place(l Layer, p *Particle) {
	r := l.Rand()
	radius := math.Cbrt(r.Uniform(math.Cube(pl.Inner), math.Cube(pl.Outer)))
	z := r.Uniform(-1, 1)
	rxy := math.Sqrt(1 - z*z)
	sin, cos := math.SinCos(r.Uniform(0, 2*gomath.Pi))
	p.Position = l.PointToLayer(mgl32.Vec3{rxy * cos, rxy * sin, z}.Mul(radius))
}
