// math/vecmat.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

///////////////////////////////////////////////////////////////////////////
// Transforms

// TransformPoint applies the full affine transformation m to the point p.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformPointZ returns just the z component of m applied to p; it's
// what batch depth sorting needs.
func TransformPointZ(m mgl32.Mat4, p mgl32.Vec3) float32 {
	return m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
}

// TransformVector applies m to v without translation.
func TransformVector(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// RotateAbout rotates v by angle radians about the unit-length axis using
// Rodrigues' formula given the precomputed sine and cosine of the angle.
func RotateAbout(v, axis mgl32.Vec3, sin, cos float32) mgl32.Vec3 {
	return v.Mul(cos).Add(axis.Cross(v).Mul(sin)).Add(axis.Mul(axis.Dot(v) * (1 - cos)))
}

// Perpendicular returns a unit vector perpendicular to the unit vector v.
func Perpendicular(v mgl32.Vec3) mgl32.Vec3 {
	if Abs(v[0]) < 0.9 {
		return v.Cross(mgl32.Vec3{1, 0, 0}).Normalize()
	}
	return v.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

///////////////////////////////////////////////////////////////////////////
// Extent3D

// Extent3D is an axis-aligned bounding box.
type Extent3D struct {
	P0, P1 mgl32.Vec3
}

// EmptyExtent3D returns an extent that contains nothing; any Union with
// it returns the other argument.
func EmptyExtent3D() Extent3D {
	const big = 1e30
	return Extent3D{P0: mgl32.Vec3{big, big, big}, P1: mgl32.Vec3{-big, -big, -big}}
}

func Extent3DFromPoints(pts []mgl32.Vec3) Extent3D {
	e := EmptyExtent3D()
	for _, p := range pts {
		e = e.Union(p)
	}
	return e
}

func (e Extent3D) IsEmpty() bool {
	return e.P0[0] > e.P1[0] || e.P0[1] > e.P1[1] || e.P0[2] > e.P1[2]
}

// Center returns the center of the extent; the center of an empty
// extent is the origin.
func (e Extent3D) Center() mgl32.Vec3 {
	if e.IsEmpty() {
		return mgl32.Vec3{}
	}
	return e.P0.Add(e.P1).Mul(0.5)
}

func (e Extent3D) Union(p mgl32.Vec3) Extent3D {
	for i := range 3 {
		e.P0[i] = min(e.P0[i], p[i])
		e.P1[i] = max(e.P1[i], p[i])
	}
	return e
}

func (e Extent3D) Transform(m mgl32.Mat4) Extent3D {
	if e.IsEmpty() {
		return e
	}
	r := EmptyExtent3D()
	for i := range 8 {
		c := mgl32.Vec3{
			Select(i&1 == 0, e.P0[0], e.P1[0]),
			Select(i&2 == 0, e.P0[1], e.P1[1]),
			Select(i&4 == 0, e.P0[2], e.P1[2]),
		}
		r = r.Union(TransformPoint(m, c))
	}
	return r
}

// Select returns a if sel is true and b otherwise.
func Select[T any](sel bool, a, b T) T {
	if sel {
		return a
	}
	return b
}
