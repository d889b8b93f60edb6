// particle/shooter.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	gomath "math"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/math"

	"github.com/go-gl/mathgl/mgl32"
)

// Shooter sets the initial velocity of new particles; it's called after
// the particle has been placed.
type Shooter interface {
	Shoot(l Layer, p *Particle)
}

var shooterVariants = config.Variants[Shooter]{
	"cone":    func() Shooter { return &ConeShooter{} },
	"outward": func() Shooter { return &OutwardShooter{} },
}

// ConeShooter fires particles in directions uniformly distributed within
// Angle radians of Direction.
type ConeShooter struct {
	Direction mgl32.Vec3    `json:"direction"`
	Angle     float32       `json:"angle"`
	Speed     FloatVariable `json:"speed"`
}

func (s *ConeShooter) Shoot(l Layer, p *Particle) {
	r := l.Rand()
	dir := s.Direction
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	dir = dir.Normalize()

	cosTheta := r.Uniform(math.Cos(s.Angle), 1)
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	sinPhi, cosPhi := math.SinCos(r.Uniform(0, 2*gomath.Pi))

	u := math.Perpendicular(dir)
	v := dir.Cross(u)
	d := dir.Mul(cosTheta).Add(u.Mul(sinTheta * cosPhi)).Add(v.Mul(sinTheta * sinPhi))
	p.Velocity = l.VectorToLayer(d.Mul(s.Speed.Sample(r)))
}

// OutwardShooter fires particles away from the emitter's origin.
// Particles placed at the origin are fired in a random direction.
type OutwardShooter struct {
	Speed FloatVariable `json:"speed"`
}

func (s *OutwardShooter) Shoot(l Layer, p *Particle) {
	r := l.Rand()
	d := p.Position.Sub(l.PointToLayer(mgl32.Vec3{}))
	if d.Len() < epsilon {
		d = l.VectorToLayer(r.UnitVector())
	}
	p.Velocity = d.Normalize().Mul(s.Speed.Sample(r))
}
