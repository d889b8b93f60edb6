// particle/particle.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package particle implements the particle layer simulation: counters
// decide how many particles to emit each frame, placers and shooters
// give them their initial positions and velocities, and influences act
// on them as they age.
package particle

import (
	"github.com/clyde3d/clyde/math"
	"github.com/clyde3d/clyde/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Particle positions and vectors are in layer space.
type Particle struct {
	Position        mgl32.Vec3
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Orientation     mgl32.Quat
	Color           mgl32.Vec4
	Size            float32
	Age             float32
	Lifespan        float32
}

// Alive reports whether the particle has time left to live.
func (p *Particle) Alive() bool {
	return p.Age < p.Lifespan
}

// Layer provides the space in which a layer's particles live.
// Configuration values (placer shapes, shooter directions, influence
// vectors) are given in emitter space and mapped into layer space with
// PointToLayer and VectorToLayer.
type Layer interface {
	PointToLayer(p mgl32.Vec3) mgl32.Vec3
	VectorToLayer(v mgl32.Vec3) mgl32.Vec3
	// ViewTransform maps layer space to eye space.
	ViewTransform() mgl32.Mat4
	Rand() *rand.Rand
}

// EmitterLayer is a Layer for an emitter placed in the world by
// Transform. If MoveWithEmitter is set, the layer space is the emitter's
// own space and particles follow the emitter as it moves; otherwise it's
// world space and particles stay where they were emitted.
type EmitterLayer struct {
	Transform       mgl32.Mat4
	View            mgl32.Mat4
	MoveWithEmitter bool

	rng *rand.Rand
}

func NewEmitterLayer(transform mgl32.Mat4, moveWithEmitter bool, r *rand.Rand) *EmitterLayer {
	if r == nil {
		r = rand.New()
	}
	return &EmitterLayer{Transform: transform, View: mgl32.Ident4(), MoveWithEmitter: moveWithEmitter, rng: r}
}

func (l *EmitterLayer) PointToLayer(p mgl32.Vec3) mgl32.Vec3 {
	if l.MoveWithEmitter {
		return p
	}
	return math.TransformPoint(l.Transform, p)
}

func (l *EmitterLayer) VectorToLayer(v mgl32.Vec3) mgl32.Vec3 {
	if l.MoveWithEmitter {
		return v
	}
	return math.TransformVector(l.Transform, v)
}

func (l *EmitterLayer) ViewTransform() mgl32.Mat4 {
	if l.MoveWithEmitter {
		return l.View.Mul4(l.Transform)
	}
	return l.View
}

func (l *EmitterLayer) Rand() *rand.Rand { return l.rng }
