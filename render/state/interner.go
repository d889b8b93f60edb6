// render/state/interner.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package state

import "github.com/go-gl/mathgl/mgl32"

// Interner maps state parameters to canonical shared instances so that
// equal states can be compared by pointer. Each render context owns one;
// its tables are created on first use and live as long as the context.
//
// Two policies are used. The families that are looked up by a small
// parameter tuple (cull, depth, color mask, line, point, polygon and the
// alpha test thresholds) are memoized, so every request with the same
// parameters returns the same pointer. The methods that take a whole
// state value return one of the well-known constants if the value matches
// one and otherwise return a fresh instance that is not remembered.
type Interner struct {
	alphaTest map[float32]*AlphaState
	cull      map[CullFace]*CullState
	depth     map[depthKey]*DepthState
	colorMask map[colorMaskKey]*ColorMaskState
	line      map[float32]*LineState
	point     map[float32]*PointState
	polygon   map[polygonKey]*PolygonState
}

type depthKey struct {
	fn   CompareFunc
	mask bool
}

type colorMaskKey struct {
	r, g, b, a bool
}

type polygonKey struct {
	front, back               PolygonMode
	offsetFactor, offsetUnits float32
}

func NewInterner() *Interner {
	return &Interner{}
}

// Alpha returns the matching well-known alpha state or a new instance.
func (in *Interner) Alpha(s AlphaState) *AlphaState {
	for _, c := range []*AlphaState{AlphaOpaque, AlphaMasked, AlphaTranslucent, AlphaAdditive, AlphaPremultiplied} {
		if c.Equal(&s) {
			return c
		}
	}
	return &AlphaState{TestFunc: s.TestFunc, TestRef: s.TestRef, SrcBlend: s.SrcBlend, DestBlend: s.DestBlend}
}

// AlphaTest returns the shared opaque state that discards fragments with
// alpha less than or equal to ref.
func (in *Interner) AlphaTest(ref float32) *AlphaState {
	if in.alphaTest == nil {
		in.alphaTest = map[float32]*AlphaState{AlphaMasked.TestRef: AlphaMasked}
	}
	if s, ok := in.alphaTest[ref]; ok {
		return s
	}
	s := &AlphaState{TestFunc: CompareGreater, TestRef: ref, SrcBlend: BlendOne, DestBlend: BlendZero}
	in.alphaTest[ref] = s
	return s
}

func (in *Interner) Cull(face CullFace) *CullState {
	if in.cull == nil {
		in.cull = map[CullFace]*CullState{
			FaceNone:  CullDisabled,
			FaceBack:  CullBack,
			FaceFront: CullFront,
		}
	}
	if s, ok := in.cull[face]; ok {
		return s
	}
	s := &CullState{Face: face}
	in.cull[face] = s
	return s
}

func (in *Interner) Depth(fn CompareFunc, mask bool) *DepthState {
	if in.depth == nil {
		in.depth = make(map[depthKey]*DepthState)
		for _, c := range []*DepthState{DepthTestWrite, DepthTest, DepthWrite, DepthDisabled} {
			in.depth[depthKey{c.TestFunc, c.Mask}] = c
		}
	}
	k := depthKey{fn, mask}
	if s, ok := in.depth[k]; ok {
		return s
	}
	s := &DepthState{TestFunc: fn, Mask: mask}
	in.depth[k] = s
	return s
}

func (in *Interner) ColorMask(r, g, b, a bool) *ColorMaskState {
	if in.colorMask == nil {
		in.colorMask = map[colorMaskKey]*ColorMaskState{
			{true, true, true, true}:     ColorMaskAll,
			{false, false, false, false}: ColorMaskNone,
		}
	}
	k := colorMaskKey{r, g, b, a}
	if s, ok := in.colorMask[k]; ok {
		return s
	}
	s := &ColorMaskState{Red: r, Green: g, Blue: b, Alpha: a}
	in.colorMask[k] = s
	return s
}

func (in *Interner) Line(width float32) *LineState {
	if in.line == nil {
		in.line = map[float32]*LineState{LineDefault.Width: LineDefault}
	}
	if s, ok := in.line[width]; ok {
		return s
	}
	s := &LineState{Width: width}
	in.line[width] = s
	return s
}

func (in *Interner) Point(size float32) *PointState {
	if in.point == nil {
		in.point = map[float32]*PointState{PointDefault.Size: PointDefault}
	}
	if s, ok := in.point[size]; ok {
		return s
	}
	s := &PointState{Size: size}
	in.point[size] = s
	return s
}

func (in *Interner) Polygon(front, back PolygonMode, offsetFactor, offsetUnits float32) *PolygonState {
	if in.polygon == nil {
		in.polygon = map[polygonKey]*PolygonState{
			{PolygonFill, PolygonFill, 0, 0}: PolygonDefault,
		}
	}
	k := polygonKey{front, back, offsetFactor, offsetUnits}
	if s, ok := in.polygon[k]; ok {
		return s
	}
	s := &PolygonState{FrontMode: front, BackMode: back, OffsetFactor: offsetFactor, OffsetUnits: offsetUnits}
	in.polygon[k] = s
	return s
}

func (in *Interner) Color(c mgl32.Vec4) *ColorState {
	if c == ColorWhite.Color {
		return ColorWhite
	}
	return &ColorState{Color: c}
}

func (in *Interner) Fog(s FogState) *FogState {
	if s.Mode == FogOff {
		return FogDisabled
	}
	return &FogState{Mode: s.Mode, Density: s.Density, Start: s.Start, End: s.End, Color: s.Color}
}

func (in *Interner) Material(s MaterialState) *MaterialState {
	if s.Equal(MaterialDefault) {
		return MaterialDefault
	}
	s.base = base{}
	return &s
}

func (in *Interner) Stencil(s StencilState) *StencilState {
	if s.Equal(StencilDisabled) {
		return StencilDisabled
	}
	s.base = base{}
	return &s
}
