// particle/influence.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/math"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

// Influence acts on a layer's particles. Each frame Tick is called once,
// then Apply is called for every live particle; Apply only uses values
// computed by Tick. Like counters, each layer gets its own instances.
type Influence interface {
	Tick(elapsed float32)
	Apply(p *Particle)
	bind(l Layer)
}

var influenceVariants = config.Variants[Influence]{
	"gravity":              func() Influence { return &Gravity{} },
	"wind":                 func() Influence { return &Wind{} },
	"drag":                 func() Influence { return &Drag{} },
	"angular_acceleration": func() Influence { return &AngularAcceleration{} },
	"jitter":               func() Influence { return &Jitter{} },
	"vortex":               func() Influence { return &Vortex{} },
}

type Influences []Influence

func (in Influences) MarshalJSON() ([]byte, error) {
	return influenceVariants.EncodeSlice(in)
}

func (in *Influences) UnmarshalJSON(data []byte) error {
	s, err := influenceVariants.DecodeSlice(data)
	if err == nil {
		*in = s
	}
	return err
}

// layerInfluence holds the layer for influences that need it.
type layerInfluence struct {
	layer Layer
}

func (li *layerInfluence) bind(l Layer) { li.layer = l }

///////////////////////////////////////////////////////////////////////////

// Gravity accelerates particles.
type Gravity struct {
	layerInfluence
	Acceleration mgl32.Vec3 `json:"acceleration"`

	delta mgl32.Vec3
}

func (g *Gravity) Tick(elapsed float32) {
	g.delta = g.layer.VectorToLayer(g.Acceleration).Mul(elapsed)
}

func (g *Gravity) Apply(p *Particle) {
	p.Velocity = p.Velocity.Add(g.delta)
}

// Wind moves particles along with the air.
type Wind struct {
	layerInfluence
	Velocity mgl32.Vec3 `json:"velocity"`

	delta mgl32.Vec3
}

func (w *Wind) Tick(elapsed float32) {
	w.delta = w.layer.VectorToLayer(w.Velocity).Mul(elapsed)
}

func (w *Wind) Apply(p *Particle) {
	p.Position = p.Position.Add(w.delta)
}

// Drag slows particles exponentially.
type Drag struct {
	layerInfluence
	Resistance float32 `json:"resistance"`

	scale float32
}

func (d *Drag) Tick(elapsed float32) {
	d.scale = math.Exp(-d.Resistance * elapsed)
}

func (d *Drag) Apply(p *Particle) {
	p.Velocity = p.Velocity.Mul(d.scale)
}

// AngularAcceleration spins particles up.
type AngularAcceleration struct {
	layerInfluence
	Acceleration mgl32.Vec3 `json:"acceleration"`

	delta mgl32.Vec3
}

func (a *AngularAcceleration) Tick(elapsed float32) {
	a.delta = a.layer.VectorToLayer(a.Acceleration).Mul(elapsed)
}

func (a *AngularAcceleration) Apply(p *Particle) {
	p.AngularVelocity = p.AngularVelocity.Add(a.delta)
}

// Jitter perturbs particle velocities in random directions.
type Jitter struct {
	layerInfluence
	Strength float32 `json:"strength"`

	scale float32
}

func (j *Jitter) Tick(elapsed float32) {
	j.scale = j.Strength * elapsed
}

func (j *Jitter) Apply(p *Particle) {
	p.Velocity = p.Velocity.Add(j.layer.Rand().UnitVector().Mul(j.scale))
}

// Vortex swirls particles around an axis through Center at Strength
// radians per second.
type Vortex struct {
	layerInfluence
	Center   mgl32.Vec3 `json:"center"`
	Axis     mgl32.Vec3 `json:"axis"`
	Strength float32    `json:"strength"`

	center   mgl32.Vec3
	axis     mgl32.Vec3
	sin, cos float32
}

func (v *Vortex) Tick(elapsed float32) {
	v.center = v.layer.PointToLayer(v.Center)
	v.axis = v.layer.VectorToLayer(v.Axis)
	if v.axis.Len() > epsilon {
		v.axis = v.axis.Normalize()
	}
	v.sin, v.cos = math.SinCos(v.Strength * elapsed)
}

func (v *Vortex) Apply(p *Particle) {
	r := p.Position.Sub(v.center)
	along := v.axis.Mul(r.Dot(v.axis))
	radial := r.Sub(along)
	if radial.Len() < epsilon {
		// On the axis; there's no direction to swirl in.
		return
	}
	p.Position = v.center.Add(along).Add(math.RotateAbout(radial, v.axis, v.sin, v.cos))
}
