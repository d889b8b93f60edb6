// math/math_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTransformPointZ(t *testing.T) {
	m := mgl32.Translate3D(1, 2, -5).Mul4(mgl32.HomogRotate3DY(0.3))
	for _, p := range []mgl32.Vec3{{0, 0, 0}, {1, 2, 3}, {-4, 0.5, 7}} {
		full := TransformPoint(m, p)
		if z := TransformPointZ(m, p); !EqualWithin(z, full[2], 1e-5) {
			t.Errorf("%v: got z %f, expected %f", p, z, full[2])
		}
	}

	if z := TransformPointZ(mgl32.Ident4(), mgl32.Vec3{}); z != 0 {
		t.Errorf("identity z: got %f, expected 0", z)
	}
}

func TestRotateAbout(t *testing.T) {
	s, c := SinCos(Pi / 2)
	r := RotateAbout(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, s, c)
	if !r.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("got %v, expected (0,1,0)", r)
	}

	// Components along the axis are unchanged.
	r = RotateAbout(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, 1}, s, c)
	if !r.ApproxEqualThreshold(mgl32.Vec3{0, 0, 2}, 1e-5) {
		t.Errorf("got %v, expected (0,0,2)", r)
	}
}

func TestPerpendicular(t *testing.T) {
	for _, v := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, mgl32.Vec3{1, 1, 1}.Normalize()} {
		p := Perpendicular(v)
		if d := p.Dot(v); Abs(d) > 1e-5 {
			t.Errorf("%v: perpendicular %v has dot %f", v, p, d)
		}
		if l := p.Len(); !EqualWithin(l, 1, 1e-5) {
			t.Errorf("%v: perpendicular length %f", v, l)
		}
	}
}

func TestExtent3D(t *testing.T) {
	e := EmptyExtent3D()
	if !e.IsEmpty() {
		t.Errorf("empty extent not empty")
	}
	if c := e.Center(); c != (mgl32.Vec3{}) {
		t.Errorf("empty center: got %v", c)
	}

	e = Extent3DFromPoints([]mgl32.Vec3{{-1, 0, 2}, {3, 4, -2}})
	if c := e.Center(); c != (mgl32.Vec3{1, 2, 0}) {
		t.Errorf("center: got %v, expected (1,2,0)", c)
	}

	tr := e.Transform(mgl32.Translate3D(0, 0, 10))
	if c := tr.Center(); !c.ApproxEqualThreshold(mgl32.Vec3{1, 2, 10}, 1e-5) {
		t.Errorf("transformed center: got %v, expected (1,2,10)", c)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Errorf("Clamp mismatch")
	}
	if Cube(float32(2)) != 8 {
		t.Errorf("Cube mismatch")
	}
}
