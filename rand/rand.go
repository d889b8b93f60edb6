// rand/rand.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	gomath "math"

	"github.com/MichaelTJones/pcg"
	"github.com/go-gl/mathgl/mgl32"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

type Rand struct {
	r *pcg.PCG32
}

func New() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// Make returns a generator seeded with the given value; generators made
// with the same seed produce the same sequence.
func Make(seed int64) *Rand {
	r := New()
	r.Seed(seed)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}

// Float32 returns a value in [0,1].
func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

// Uniform returns a value uniformly distributed between a and b.
func (r *Rand) Uniform(a, b float32) float32 {
	return a + r.Float32()*(b-a)
}

// Normal returns a normally-distributed value with zero mean and unit
// variance via the Box-Muller transform.
func (r *Rand) Normal() float32 {
	u1 := float64(r.Float32())
	for u1 == 0 {
		u1 = float64(r.Float32())
	}
	u2 := float64(r.Float32())
	return float32(gomath.Sqrt(-2*gomath.Log(u1)) * gomath.Cos(2*gomath.Pi*u2))
}

// Exponential returns an exponentially-distributed value with the given
// mean.
func (r *Rand) Exponential(mean float32) float32 {
	u := float64(r.Float32())
	for u == 0 {
		u = float64(r.Float32())
	}
	return float32(-gomath.Log(u)) * mean
}

// UnitVector returns a direction uniformly distributed over the sphere.
func (r *Rand) UnitVector() mgl32.Vec3 {
	z := r.Uniform(-1, 1)
	theta := r.Uniform(0, 2*gomath.Pi)
	rxy := float32(gomath.Sqrt(float64(1 - z*z)))
	return mgl32.Vec3{rxy * float32(gomath.Cos(float64(theta))), rxy * float32(gomath.Sin(float64(theta))), z}
}

// Drop-in replacement for the subset of math/rand that we use...
var r *Rand

func init() {
	r = New()
}

func Seed(s int64) {
	r.Seed(s)
}

func Intn(n int) int {
	return r.Intn(n)
}

func Float32() float32 {
	return r.Float32()
}

func Uint32() uint32 {
	return r.Uint32()
}

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}
