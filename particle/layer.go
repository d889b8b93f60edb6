// particle/layer.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	"encoding/json"
	"fmt"

	"github.com/clyde3d/clyde/log"

	"github.com/brunoga/deep"
	"github.com/go-gl/mathgl/mgl32"
)

// LayerConfig describes one group of particles in a particle system.
type LayerConfig struct {
	Name            string
	MaxParticles    int
	MoveWithEmitter bool
	Lifespan        FloatVariable
	Size            FloatVariable
	Color           mgl32.Vec4
	Counter         Counter
	Placer          Placer
	Shooter         Shooter
	Influences      Influences
}

type layerConfigJSON struct {
	Name            string          `json:"name"`
	MaxParticles    int             `json:"max_particles"`
	MoveWithEmitter bool            `json:"move_with_emitter,omitempty"`
	Lifespan        FloatVariable   `json:"lifespan"`
	Size            FloatVariable   `json:"size"`
	Color           mgl32.Vec4      `json:"color"`
	Counter         json.RawMessage `json:"counter"`
	Placer          json.RawMessage `json:"placer"`
	Shooter         json.RawMessage `json:"shooter"`
	Influences      Influences      `json:"influences,omitempty"`
}

func (c LayerConfig) MarshalJSON() ([]byte, error) {
	j := layerConfigJSON{
		Name:            c.Name,
		MaxParticles:    c.MaxParticles,
		MoveWithEmitter: c.MoveWithEmitter,
		Lifespan:        c.Lifespan,
		Size:            c.Size,
		Color:           c.Color,
		Influences:      c.Influences,
	}
	var err error
	if j.Counter, err = counterVariants.Encode(c.Counter); err != nil {
		return nil, err
	}
	if j.Placer, err = placerVariants.Encode(c.Placer); err != nil {
		return nil, err
	}
	if j.Shooter, err = shooterVariants.Encode(c.Shooter); err != nil {
		return nil, err
	}
	return json.Marshal(j)
}

func (c *LayerConfig) UnmarshalJSON(data []byte) error {
	j := layerConfigJSON{
		MaxParticles: 100,
		Lifespan:     ConstantVariable(1),
		Size:         ConstantVariable(1),
		Color:        mgl32.Vec4{1, 1, 1, 1},
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	*c = LayerConfig{
		Name:            j.Name,
		MaxParticles:    j.MaxParticles,
		MoveWithEmitter: j.MoveWithEmitter,
		Lifespan:        j.Lifespan,
		Size:            j.Size,
		Color:           j.Color,
		Influences:      j.Influences,
		Counter:         &UnlimitedCounter{},
		Placer:          &PointPlacer{},
		Shooter:         &OutwardShooter{Speed: ConstantVariable(1)},
	}

	var err error
	if len(j.Counter) > 0 {
		if c.Counter, err = counterVariants.Decode(j.Counter); err != nil {
			return fmt.Errorf("%s: counter: %w", j.Name, err)
		}
	}
	if len(j.Placer) > 0 {
		if c.Placer, err = placerVariants.Decode(j.Placer); err != nil {
			return fmt.Errorf("%s: placer: %w", j.Name, err)
		}
	}
	if len(j.Shooter) > 0 {
		if c.Shooter, err = shooterVariants.Decode(j.Shooter); err != nil {
			return fmt.Errorf("%s: shooter: %w", j.Name, err)
		}
	}
	return nil
}

func (c *LayerConfig) CheckJSON(json any) bool {
	_, ok := json.(map[string]any)
	return ok
}

// LayerState is a running instance of a LayerConfig.
type LayerState struct {
	Config    *LayerConfig
	Layer     Layer
	Particles []Particle

	counter    Counter
	influences []Influence
	lg         *log.Logger
}

// NewLayerState returns a layer with no particles. The layer gets its own
// copies of the config's counter and influences.
func NewLayerState(cfg *LayerConfig, layer Layer, lg *log.Logger) *LayerState {
	s := &LayerState{
		Config:    cfg,
		Layer:     layer,
		Particles: make([]Particle, 0, cfg.MaxParticles),
		counter:   &UnlimitedCounter{},
		lg:        lg,
	}
	if cfg.Counter != nil {
		s.counter = deep.MustCopy(cfg.Counter)
	}
	s.counter.bind(layer)
	for _, in := range cfg.Influences {
		ic := deep.MustCopy(in)
		ic.bind(layer)
		s.influences = append(s.influences, ic)
	}
	s.Reset()
	return s
}

// Reset removes all particles and restarts emission.
func (s *LayerState) Reset() {
	s.Particles = s.Particles[:0]
	s.counter.Reset()
}

// Tick advances the simulation by elapsed seconds: particles age and die,
// influences act, particles move, and then new ones are emitted.
func (s *LayerState) Tick(elapsed float32) {
	for i := 0; i < len(s.Particles); {
		p := &s.Particles[i]
		p.Age += elapsed
		if !p.Alive() {
			last := len(s.Particles) - 1
			s.Particles[i] = s.Particles[last]
			s.Particles = s.Particles[:last]
			continue
		}
		i++
	}

	for _, in := range s.influences {
		in.Tick(elapsed)
	}
	for i := range s.Particles {
		p := &s.Particles[i]
		for _, in := range s.influences {
			in.Apply(p)
		}
		integrate(p, elapsed)
	}

	n := s.counter.Count(elapsed, s.Config.MaxParticles-len(s.Particles))
	if n > 0 {
		s.lg.Debug("emitting particles", "layer", s.Config.Name, "count", n)
	}
	for range n {
		s.Particles = append(s.Particles, s.emit())
	}
}

func (s *LayerState) emit() Particle {
	r := s.Layer.Rand()
	p := Particle{
		Orientation: mgl32.QuatIdent(),
		Color:       s.Config.Color,
		Size:        s.Config.Size.Sample(r),
		Lifespan:    s.Config.Lifespan.Sample(r),
	}
	s.Config.Placer.Place(s.Layer, &p)
	s.Config.Shooter.Shoot(s.Layer, &p)
	return p
}

func integrate(p *Particle, elapsed float32) {
	p.Position = p.Position.Add(p.Velocity.Mul(elapsed))
	if p.AngularVelocity.Len() > 0 {
		w := mgl32.Quat{V: p.AngularVelocity}
		p.Orientation = p.Orientation.Add(w.Mul(p.Orientation).Scale(elapsed / 2)).Normalize()
	}
}
