// particle/particle_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	"encoding/json"
	gomath "math"
	"testing"

	"github.com/clyde3d/clyde/rand"

	"github.com/go-gl/mathgl/mgl32"
)

func testLayer(seed int64) *EmitterLayer {
	return NewEmitterLayer(mgl32.Ident4(), false, rand.Make(seed))
}

func TestUnlimitedCounter(t *testing.T) {
	var c UnlimitedCounter
	for _, m := range []int{0, 1, 17} {
		if n := c.Count(0.1, m); n != m {
			t.Errorf("got %d, expected %d", n, m)
		}
	}
}

func TestConstantRateConservation(t *testing.T) {
	c := &ConstantRateCounter{Rate: 10}
	c.Reset()
	total := 0
	for range 1000 {
		total += c.Count(1.0/60, gomath.MaxInt32)
	}
	expected := int(gomath.Round(1000.0 / 60 * 10))
	if total < expected-1 || total > expected+1 {
		t.Errorf("emitted %d, expected %d +/- 1", total, expected)
	}
}

func TestConstantRateMaximum(t *testing.T) {
	c := &ConstantRateCounter{Rate: 100}
	if n := c.Count(1, 5); n != 5 {
		t.Errorf("got %d, expected 5", n)
	}
	// The excess isn't carried over.
	if n := c.Count(0.5, 100); n != 50 {
		t.Errorf("got %d, expected 50", n)
	}
}

func TestRandomIntervalsMaximum(t *testing.T) {
	c := &RandomIntervalsCounter{Interval: FloatVariable{Kind: Exponential, A: 0.01}}
	c.bind(testLayer(3))
	c.Reset()
	for range 1000 {
		if n := c.Count(0.05, 1); n > 1 {
			t.Fatalf("emitted %d with maximum 1", n)
		}
	}
}

func TestRandomIntervalsFixed(t *testing.T) {
	for _, test := range []struct {
		interval float32
		elapsed  float32
		maximum  int
		expected int
	}{
		{0.1, 0.35, 100, 3},
		{0.1, 0.35, 2, 2},
		{0.1, 0.05, 100, 0},
		{0.1, 1.05, 100, 10},
		// Exact multiples of the interval.
		{0.5, 0.5, 100, 1},
		{0.5, 1, 100, 2},
		{0.5, 1.5, 100, 3},
		{0.5, 1.5, 2, 2},
	} {
		c := &RandomIntervalsCounter{Interval: ConstantVariable(test.interval)}
		c.bind(testLayer(1))
		c.Reset()
		if n := c.Count(test.elapsed, test.maximum); n != test.expected {
			t.Errorf("interval %f, Count(%f, %d): got %d, expected %d", test.interval, test.elapsed, test.maximum,
				n, test.expected)
		}
	}
}

func TestRandomIntervalsSteadyState(t *testing.T) {
	c := &RandomIntervalsCounter{Interval: ConstantVariable(0.5)}
	c.bind(testLayer(1))
	c.Reset()

	for i := range 8 {
		if n := c.Count(0.5, 100); n != 1 {
			t.Errorf("tick %d: got %d, expected 1", i, n)
		}
	}
}

func TestRandomIntervalsCarry(t *testing.T) {
	c := &RandomIntervalsCounter{Interval: ConstantVariable(0.1)}
	c.bind(testLayer(1))
	c.Reset()

	total := 0
	for range 100 {
		total += c.Count(0.025, 100)
	}
	// 2.5 seconds at one every 0.1s, less the initial interval.
	if total < 23 || total > 25 {
		t.Errorf("emitted %d, expected about 24", total)
	}
}

func histogram(n, buckets int, sample func() float32) []int {
	h := make([]int, buckets)
	for range n {
		b := int(sample() * float32(buckets))
		h[min(max(b, 0), buckets-1)]++
	}
	return h
}

func checkUniform(t *testing.T, what string, h []int, n int) {
	expected := float64(n) / float64(len(h))
	for i, c := range h {
		if gomath.Abs(float64(c)-expected) > 0.05*expected {
			t.Errorf("%s: bucket %d has %d samples, expected about %.0f", what, i, c, expected)
		}
	}
}

func TestRingPlacerDistribution(t *testing.T) {
	l := testLayer(11)
	pl := &RingPlacer{Inner: 0, Outer: 1}
	const n = 100000
	h := histogram(n, 10, func() float32 {
		var p Particle
		pl.Place(l, &p)
		if p.Position[2] != 0 {
			t.Fatalf("particle out of plane: %v", p.Position)
		}
		return p.Position.Vec2().Len() * p.Position.Vec2().Len()
	})
	checkUniform(t, "ring r^2", h, n)
}

func TestShellPlacerDistribution(t *testing.T) {
	l := testLayer(12)
	pl := &ShellPlacer{Inner: 0, Outer: 1}
	const n = 100000
	var zsum float64
	h := histogram(n, 10, func() float32 {
		var p Particle
		pl.Place(l, &p)
		zsum += float64(p.Position[2])
		r := p.Position.Len()
		return r * r * r
	})
	checkUniform(t, "shell r^3", h, n)
	if gomath.Abs(zsum/n) > 0.01 {
		t.Errorf("mean z %f, expected about 0", zsum/n)
	}
}

func TestPlacersUseLayerSpace(t *testing.T) {
	l := NewEmitterLayer(mgl32.Translate3D(5, 0, 0), false, rand.Make(1))
	var p Particle
	(&PointPlacer{}).Place(l, &p)
	if p.Position != (mgl32.Vec3{5, 0, 0}) {
		t.Errorf("got %v, expected [5 0 0]", p.Position)
	}

	l.MoveWithEmitter = true
	(&PointPlacer{}).Place(l, &p)
	if p.Position != (mgl32.Vec3{}) {
		t.Errorf("moving with emitter: got %v, expected the origin", p.Position)
	}
}

func TestConeShooter(t *testing.T) {
	l := testLayer(5)
	s := &ConeShooter{Direction: mgl32.Vec3{0, 0, 1}, Angle: mgl32.DegToRad(30), Speed: ConstantVariable(2)}
	minCos := float32(gomath.Cos(gomath.Pi/6)) - 1e-4
	for range 1000 {
		var p Particle
		s.Shoot(l, &p)
		if sp := p.Velocity.Len(); gomath.Abs(float64(sp-2)) > 1e-4 {
			t.Fatalf("speed %f, expected 2", sp)
		}
		if c := p.Velocity.Normalize()[2]; c < minCos {
			t.Fatalf("velocity %v outside of the cone", p.Velocity)
		}
	}
}

func TestOutwardShooter(t *testing.T) {
	l := testLayer(6)
	s := &OutwardShooter{Speed: ConstantVariable(3)}
	p := Particle{Position: mgl32.Vec3{0, 2, 0}}
	s.Shoot(l, &p)
	if !p.Velocity.ApproxEqual(mgl32.Vec3{0, 3, 0}) {
		t.Errorf("got %v, expected [0 3 0]", p.Velocity)
	}

	p = Particle{}
	s.Shoot(l, &p)
	if gomath.Abs(float64(p.Velocity.Len()-3)) > 1e-4 {
		t.Errorf("particle at the origin: speed %f, expected 3", p.Velocity.Len())
	}
}

func TestGravityTickApply(t *testing.T) {
	g := &Gravity{Acceleration: mgl32.Vec3{0, -9.8, 0}}
	g.bind(testLayer(1))
	g.Tick(1.0 / 30)
	delta := g.delta

	v1, v2 := mgl32.Vec3{1, 2, 3}, mgl32.Vec3{-7, 0.5, 100}
	p1 := Particle{Position: mgl32.Vec3{1, 1, 1}, Velocity: v1}
	p2 := Particle{Position: mgl32.Vec3{-4, 0, 9}, Velocity: v2}
	g.Apply(&p1)
	g.Apply(&p2)

	if g.delta != delta {
		t.Errorf("cached delta changed by Apply")
	}
	if p1.Velocity != v1.Add(delta) || p2.Velocity != v2.Add(delta) {
		t.Errorf("different deltas applied: %v %v", p1.Velocity.Sub(v1), p2.Velocity.Sub(v2))
	}
}

func TestDrag(t *testing.T) {
	d := &Drag{Resistance: 2}
	d.bind(testLayer(1))
	d.Tick(0.5)
	p := Particle{Velocity: mgl32.Vec3{1, 0, 0}}
	d.Apply(&p)
	if expected := float32(gomath.Exp(-1)); gomath.Abs(float64(p.Velocity[0]-expected)) > 1e-6 {
		t.Errorf("got %f, expected %f", p.Velocity[0], expected)
	}
}

func TestVortex(t *testing.T) {
	v := &Vortex{Axis: mgl32.Vec3{0, 0, 2}, Strength: gomath.Pi}
	v.bind(testLayer(1))
	v.Tick(0.5)

	p := Particle{Position: mgl32.Vec3{1, 0, 3}}
	v.Apply(&p)
	if !p.Position.ApproxEqualThreshold(mgl32.Vec3{0, 1, 3}, 1e-5) {
		t.Errorf("got %v, expected [0 1 3]", p.Position)
	}

	onAxis := Particle{Position: mgl32.Vec3{0, 0, 5}}
	v.Apply(&onAxis)
	if onAxis.Position != (mgl32.Vec3{0, 0, 5}) {
		t.Errorf("particle on the axis moved to %v", onAxis.Position)
	}
}

func TestWindAndAngularAcceleration(t *testing.T) {
	l := testLayer(1)
	w := &Wind{Velocity: mgl32.Vec3{2, 0, 0}}
	a := &AngularAcceleration{Acceleration: mgl32.Vec3{0, 4, 0}}
	w.bind(l)
	a.bind(l)
	w.Tick(0.5)
	a.Tick(0.5)

	var p Particle
	w.Apply(&p)
	a.Apply(&p)
	if p.Position != (mgl32.Vec3{1, 0, 0}) || p.AngularVelocity != (mgl32.Vec3{0, 2, 0}) {
		t.Errorf("got position %v angular velocity %v", p.Position, p.AngularVelocity)
	}
}

func newTestLayerState(cfg *LayerConfig) *LayerState {
	return NewLayerState(cfg, testLayer(9), nil)
}

func TestLayerStateSimulation(t *testing.T) {
	cfg := &LayerConfig{
		Name:         "sparks",
		MaxParticles: 10,
		Lifespan:     ConstantVariable(1),
		Size:         ConstantVariable(0.5),
		Color:        mgl32.Vec4{1, 0.5, 0, 1},
		Counter:      &ConstantRateCounter{Rate: 4},
		Placer:       &PointPlacer{},
		Shooter:      &ConeShooter{Direction: mgl32.Vec3{0, 1, 0}, Speed: ConstantVariable(1)},
		Influences:   Influences{&Gravity{Acceleration: mgl32.Vec3{0, -1, 0}}},
	}
	s := newTestLayerState(cfg)

	s.Tick(0.5)
	if len(s.Particles) != 2 {
		t.Fatalf("got %d particles, expected 2", len(s.Particles))
	}
	if s.Particles[0].Velocity.Len() == 0 || s.Particles[0].Color != cfg.Color || s.Particles[0].Size != 0.5 {
		t.Errorf("particle not initialized: %+v", s.Particles[0])
	}

	s.Tick(0.25)
	if len(s.Particles) != 3 {
		t.Errorf("got %d particles, expected 3", len(s.Particles))
	}
	// The first two moved up, slowed by gravity.
	if y := s.Particles[0].Position[1]; y <= 0 || y >= 0.25 {
		t.Errorf("y: got %f, expected between 0 and 0.25", y)
	}

	// The first two die and three more are emitted.
	s.Tick(0.8)
	for _, p := range s.Particles {
		if !p.Alive() {
			t.Errorf("dead particle kept: %+v", p)
		}
	}
	if len(s.Particles) != 4 {
		t.Errorf("got %d particles, expected 4", len(s.Particles))
	}

	// The config's counter and influences aren't shared.
	if cfg.Counter.(*ConstantRateCounter).accum != 0 || cfg.Influences[0].(*Gravity).layer != nil {
		t.Errorf("config modified by the simulation")
	}

	s.Reset()
	if len(s.Particles) != 0 {
		t.Errorf("particles remain after reset")
	}
}

func TestLayerStateMaximum(t *testing.T) {
	s := newTestLayerState(&LayerConfig{
		MaxParticles: 5,
		Lifespan:     ConstantVariable(10),
		Counter:      &UnlimitedCounter{},
		Placer:       &BoxPlacer{Size: mgl32.Vec3{1, 1, 1}},
		Shooter:      &OutwardShooter{Speed: ConstantVariable(1)},
	})
	for range 3 {
		s.Tick(0.1)
		if len(s.Particles) != 5 {
			t.Errorf("got %d particles, expected 5", len(s.Particles))
		}
	}
}

func TestLayerGeometry(t *testing.T) {
	cfg := &LayerConfig{
		MaxParticles: 4,
		Lifespan:     ConstantVariable(10),
		Size:         ConstantVariable(2),
		Counter:      &UnlimitedCounter{},
		Placer:       &PointPlacer{},
		Shooter:      &OutwardShooter{Speed: ConstantVariable(0)},
	}
	s := newTestLayerState(cfg)
	g := NewLayerGeometry(s, 1, 2)

	s.Tick(0.1)
	g.Update()
	if n := len(g.Vertices); n != 4*4*vertexFloats {
		t.Errorf("got %d vertex floats, expected %d", n, 4*4*vertexFloats)
	}
	if cmd := g.DrawCommand(0); cmd.Count != 24 || !cmd.Indexed {
		t.Errorf("draw command: got %+v", cmd)
	}
	// Facing the camera, with corners one unit from the center.
	if x, y := g.Vertices[0], g.Vertices[1]; x != -1 || y != -1 {
		t.Errorf("first corner: got (%f, %f), expected (-1, -1)", x, y)
	}
	if a := g.ArrayState(0); a.ElementBuffer != 2 || a.Vertex.Buffer != 1 || a.Color.Offset != 12 {
		t.Errorf("array state: got %+v", a)
	}

	other := NewLayerGeometry(newTestLayerState(cfg), 3, 4)
	if &other.Indices[0] != &g.Indices[0] {
		t.Errorf("index data not shared")
	}
	stale := &g.Indices[0]
	InvalidateSharedData()
	if again := quadIndices(4); &again[0] == stale {
		t.Errorf("shared index data not rebuilt")
	}
	g.Update()
	if &g.Indices[0] == stale {
		t.Errorf("geometry kept index data from before invalidation")
	}
	if fresh := quadIndices(4); &fresh[0] != &g.Indices[0] {
		t.Errorf("geometry index data not shared after invalidation")
	}
	if g.Indices[6] != 4 || g.Indices[11] != 7 {
		t.Errorf("indices: got %v", g.Indices[:12])
	}
}

func TestLayerConfigJSON(t *testing.T) {
	data := `{
      "name": "smoke",
      "max_particles": 50,
      "lifespan": {"kind": "uniform", "a": 1, "b": 2},
      "counter": {"type": "random_intervals", "interval": {"kind": "exponential", "a": 0.2}},
      "placer": {"type": "ring", "inner": 0.5, "outer": 1},
      "influences": [{"type": "drag", "resistance": 0.3}, {"type": "vortex", "axis": [0, 1, 0], "strength": 1}]
    }`
	var cfg LayerConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxParticles != 50 || cfg.Lifespan != UniformVariable(1, 2) || cfg.Size != ConstantVariable(1) {
		t.Errorf("got %+v", cfg)
	}
	if c, ok := cfg.Counter.(*RandomIntervalsCounter); !ok || c.Interval.Kind != Exponential {
		t.Errorf("counter: got %+v", cfg.Counter)
	}
	if p, ok := cfg.Placer.(*RingPlacer); !ok || p.Inner != 0.5 {
		t.Errorf("placer: got %+v", cfg.Placer)
	}
	if _, ok := cfg.Shooter.(*OutwardShooter); !ok {
		t.Errorf("default shooter: got %T", cfg.Shooter)
	}
	if len(cfg.Influences) != 2 {
		t.Fatalf("got %d influences, expected 2", len(cfg.Influences))
	}
	if v, ok := cfg.Influences[1].(*Vortex); !ok || v.Strength != 1 {
		t.Errorf("vortex: got %+v", cfg.Influences[1])
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var back LayerConfig
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("%s: %v", b, err)
	}
	if back.Name != "smoke" || len(back.Influences) != 2 {
		t.Errorf("round trip: got %+v", back)
	}

	if err := json.Unmarshal([]byte(`{"placer": {"type": "torus"}}`), &cfg); err == nil {
		t.Errorf("expected error for unknown placer")
	}
}

func TestFloatVariable(t *testing.T) {
	r := rand.Make(1)
	if v := ConstantVariable(3).Sample(r); v != 3 {
		t.Errorf("constant: got %f", v)
	}
	for range 100 {
		if v := UniformVariable(1, 2).Sample(r); v < 1 || v > 2 {
			t.Fatalf("uniform: got %f", v)
		}
	}
	var k VariableKind
	if err := k.UnmarshalText([]byte("gaussian")); err != nil || k != Gaussian {
		t.Errorf("got %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("poisson")); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}
