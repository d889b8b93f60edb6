// particle/counter.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/math"
)

// Counter determines how many particles a layer emits each frame. Each
// layer has its own counter instance since counters carry state between
// frames.
type Counter interface {
	// Count returns the number of particles to emit after elapsed
	// seconds, which is no more than maximum.
	Count(elapsed float32, maximum int) int
	Reset()
	bind(l Layer)
}

var counterVariants = config.Variants[Counter]{
	"unlimited":        func() Counter { return &UnlimitedCounter{} },
	"constant_rate":    func() Counter { return &ConstantRateCounter{} },
	"random_intervals": func() Counter { return &RandomIntervalsCounter{} },
}

// UnlimitedCounter emits as many particles as there is room for.
type UnlimitedCounter struct{}

func (*UnlimitedCounter) Count(elapsed float32, maximum int) int { return maximum }
func (*UnlimitedCounter) Reset()                                 {}
func (*UnlimitedCounter) bind(Layer)                             {}

// ConstantRateCounter emits Rate particles per second.
type ConstantRateCounter struct {
	Rate float32 `json:"rate"`

	accum float32
}

func (c *ConstantRateCounter) Count(elapsed float32, maximum int) int {
	c.accum += elapsed * c.Rate
	n := int(math.Floor(c.accum))
	c.accum -= float32(n)
	return min(n, maximum)
}

func (c *ConstantRateCounter) Reset()     { c.accum = 0 }
func (c *ConstantRateCounter) bind(Layer) {}

// RandomIntervalsCounter emits particles separated by intervals drawn
// from Interval.
type RandomIntervalsCounter struct {
	Interval FloatVariable `json:"interval"`

	remaining float32
	layer     Layer
}

func (c *RandomIntervalsCounter) Count(elapsed float32, maximum int) int {
	c.remaining -= elapsed
	if c.remaining > 0 {
		return 0
	}
	n := 0
	// Time left over when maximum is reached carries into the next frame.
	for c.remaining <= 0 && n < maximum {
		c.remaining += max(c.Interval.Sample(c.layer.Rand()), 0)
		n++
	}
	return n
}

func (c *RandomIntervalsCounter) Reset() {
	c.remaining = max(c.Interval.Sample(c.layer.Rand()), 0)
}

func (c *RandomIntervalsCounter) bind(l Layer) { c.layer = l }
