// rand/rand_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	gomath "math"
	"testing"
)

func TestDeterministic(t *testing.T) {
	a, b := Make(42), Make(42)
	for i := range 100 {
		if x, y := a.Uint32(), b.Uint32(); x != y {
			t.Fatalf("%d: got %d and %d from identically seeded generators", i, x, y)
		}
	}
}

func TestUniform(t *testing.T) {
	r := Make(1)
	for range 10000 {
		if v := r.Uniform(2, 5); v < 2 || v > 5 {
			t.Fatalf("Uniform(2, 5) returned %f", v)
		}
	}
	if v := r.Uniform(3, 3); v != 3 {
		t.Errorf("degenerate Uniform: got %f, expected 3", v)
	}
}

func TestNormal(t *testing.T) {
	r := Make(7)
	const n = 50000
	var sum, sum2 float64
	for range n {
		v := float64(r.Normal())
		sum += v
		sum2 += v * v
	}
	mean := sum / n
	variance := sum2/n - mean*mean
	if gomath.Abs(mean) > 0.03 {
		t.Errorf("mean %f too far from 0", mean)
	}
	if gomath.Abs(variance-1) > 0.05 {
		t.Errorf("variance %f too far from 1", variance)
	}
}

func TestExponential(t *testing.T) {
	r := Make(3)
	const n = 50000
	var sum float64
	for range n {
		v := r.Exponential(2)
		if v < 0 {
			t.Fatalf("negative exponential sample %f", v)
		}
		sum += float64(v)
	}
	if mean := sum / n; gomath.Abs(mean-2) > 0.1 {
		t.Errorf("mean %f too far from 2", mean)
	}
}

func TestUnitVector(t *testing.T) {
	r := Make(9)
	for range 1000 {
		v := r.UnitVector()
		if l := v.Len(); gomath.Abs(float64(l)-1) > 1e-4 {
			t.Fatalf("unit vector %v has length %f", v, l)
		}
	}
}
