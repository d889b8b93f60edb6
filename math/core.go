// math/core.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

const Pi = gomath.Pi

// Epsilon is the tolerance used for degenerate-geometry checks.
const Epsilon = 1e-5

func Degrees(r float32) float32 {
	return r * 180 / gomath.Pi
}

func Radians(d float32) float32 {
	return d / 180 * gomath.Pi
}

func Sin(a float32) float32 {
	return float32(gomath.Sin(float64(a)))
}

func Cos(a float32) float32 {
	return float32(gomath.Cos(float64(a)))
}

func SinCos(a float32) (float32, float32) {
	s, c := gomath.Sincos(float64(a))
	return float32(s), float32(c)
}

func Acos(a float32) float32 {
	return float32(gomath.Acos(float64(Clamp(a, -1, 1))))
}

func Sqrt(a float32) float32 {
	return float32(gomath.Sqrt(float64(a)))
}

func Cbrt(a float32) float32 {
	return float32(gomath.Cbrt(float64(a)))
}

func Exp(a float32) float32 {
	return float32(gomath.Exp(float64(a)))
}

func Log(a float32) float32 {
	return float32(gomath.Log(float64(a)))
}

func Floor(v float32) float32 {
	return float32(gomath.Floor(float64(v)))
}

func IsNaN(v float32) bool {
	return v != v
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Cube[V constraints.Integer | constraints.Float](v V) V { return v * v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Lerp linearly interpolates x of the way between a and b.
func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}

// EqualWithin reports whether a and b differ by no more than eps.
func EqualWithin[V constraints.Float](a, b, eps V) bool {
	return Abs(a-b) <= eps
}
