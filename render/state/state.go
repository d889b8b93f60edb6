// render/state/state.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package state defines the render states: immutable slices of GPU
// pipeline configuration that are shared between batches. Once a state
// has been handed to more than one batch its fields must not change;
// code that needs a modified state either builds a new one or modifies a
// private working copy (see the various Copy methods) and marks it dirty.
package state

import (
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Type identifies the slot a RenderState occupies.
type Type int

const (
	AlphaType Type = iota
	ArrayType
	ColorType
	ColorMaskType
	CullType
	DepthType
	FogType
	LightType
	LineType
	MaterialType
	PointType
	PolygonType
	ShaderType
	StencilType
	TextureType
	TransformType
	NumTypes
)

var typeNames = []string{"alpha", "array", "color", "color_mask", "cull", "depth", "fog", "light",
	"line", "material", "point", "polygon", "shader", "stencil", "texture", "transform"}

func (t Type) String() string { return enumString(typeNames, t) }

type RenderState interface {
	Type() Type
	// ID is a process-unique identifier; batches sort on the IDs of
	// their states so that batches sharing states end up adjacent.
	ID() uint64
	// Dirty reports whether the state has been modified in place since
	// it was last applied.
	Dirty() bool
	SetDirty(bool)
}

var lastID uint64

type base struct {
	id    uint64
	dirty bool
}

func (b *base) ID() uint64 {
	if id := atomic.LoadUint64(&b.id); id != 0 {
		return id
	}
	atomic.CompareAndSwapUint64(&b.id, 0, atomic.AddUint64(&lastID, 1))
	return atomic.LoadUint64(&b.id)
}

func (b *base) Dirty() bool     { return b.dirty }
func (b *base) SetDirty(d bool) { b.dirty = d }

///////////////////////////////////////////////////////////////////////////
// AlphaState

type AlphaState struct {
	base
	TestFunc  CompareFunc
	TestRef   float32
	SrcBlend  BlendFactor
	DestBlend BlendFactor
}

var (
	AlphaOpaque        = &AlphaState{TestFunc: CompareAlways, SrcBlend: BlendOne, DestBlend: BlendZero}
	AlphaMasked        = &AlphaState{TestFunc: CompareGreater, TestRef: 0.5, SrcBlend: BlendOne, DestBlend: BlendZero}
	AlphaTranslucent   = &AlphaState{TestFunc: CompareGreater, SrcBlend: BlendSrcAlpha, DestBlend: BlendOneMinusSrcAlpha}
	AlphaAdditive      = &AlphaState{TestFunc: CompareGreater, SrcBlend: BlendSrcAlpha, DestBlend: BlendOne}
	AlphaPremultiplied = &AlphaState{TestFunc: CompareGreater, SrcBlend: BlendOne, DestBlend: BlendOneMinusSrcAlpha}
)

func (*AlphaState) Type() Type { return AlphaType }

func (s *AlphaState) Equal(o *AlphaState) bool {
	return s.TestFunc == o.TestFunc && s.TestRef == o.TestRef &&
		s.SrcBlend == o.SrcBlend && s.DestBlend == o.DestBlend
}

// Blending reports whether the state enables blending.
func (s *AlphaState) Blending() bool {
	return s.SrcBlend != BlendOne || s.DestBlend != BlendZero
}

///////////////////////////////////////////////////////////////////////////
// ArrayState

// ClientArray describes one vertex attribute array within a buffer.
type ClientArray struct {
	Buffer     uint32
	Size       int32
	Stride     int32
	Offset     int32
	Normalized bool
}

type ArrayState struct {
	base
	Vertex        *ClientArray
	Normal        *ClientArray
	Color         *ClientArray
	TexCoords     []*ClientArray
	Attribs       []*ClientArray
	ElementBuffer uint32
}

func (*ArrayState) Type() Type { return ArrayType }

///////////////////////////////////////////////////////////////////////////
// ColorState

type ColorState struct {
	base
	Color mgl32.Vec4
}

var ColorWhite = &ColorState{Color: mgl32.Vec4{1, 1, 1, 1}}

func (*ColorState) Type() Type { return ColorType }

// Copy returns a private working copy of the state.
func (s *ColorState) Copy() *ColorState {
	return &ColorState{Color: s.Color}
}

///////////////////////////////////////////////////////////////////////////
// ColorMaskState

type ColorMaskState struct {
	base
	Red, Green, Blue, Alpha bool
}

var (
	ColorMaskAll  = &ColorMaskState{Red: true, Green: true, Blue: true, Alpha: true}
	ColorMaskNone = &ColorMaskState{}
)

func (*ColorMaskState) Type() Type { return ColorMaskType }

///////////////////////////////////////////////////////////////////////////
// CullState

type CullState struct {
	base
	Face CullFace
}

var (
	CullDisabled = &CullState{Face: FaceNone}
	CullBack     = &CullState{Face: FaceBack}
	CullFront    = &CullState{Face: FaceFront}
)

func (*CullState) Type() Type { return CullType }

///////////////////////////////////////////////////////////////////////////
// DepthState

type DepthState struct {
	base
	TestFunc CompareFunc
	Mask     bool
}

var (
	DepthTestWrite = &DepthState{TestFunc: CompareLessEqual, Mask: true}
	DepthTest      = &DepthState{TestFunc: CompareLessEqual}
	DepthWrite     = &DepthState{TestFunc: CompareAlways, Mask: true}
	DepthDisabled  = &DepthState{TestFunc: CompareAlways}
)

func (*DepthState) Type() Type { return DepthType }

///////////////////////////////////////////////////////////////////////////
// FogState

type FogState struct {
	base
	Mode       FogMode
	Density    float32
	Start, End float32
	Color      mgl32.Vec4
}

var FogDisabled = &FogState{Mode: FogOff}

func (*FogState) Type() Type { return FogType }

func (s *FogState) Equal(o *FogState) bool {
	return s.Mode == o.Mode && s.Density == o.Density && s.Start == o.Start &&
		s.End == o.End && s.Color == o.Color
}

///////////////////////////////////////////////////////////////////////////
// LightState

type Light struct {
	Position      mgl32.Vec4 // w == 0 for directional lights
	Ambient       mgl32.Vec4
	Diffuse       mgl32.Vec4
	Specular      mgl32.Vec4
	SpotDirection mgl32.Vec3
	SpotExponent  float32
	SpotCutoff    float32 // 180 for non-spot lights
	Attenuation   [3]float32
}

type LightState struct {
	base
	Lights        []*Light
	GlobalAmbient mgl32.Vec4
}

var LightDisabled = &LightState{}

func (*LightState) Type() Type { return LightType }

// Enabled reports whether lighting is on.
func (s *LightState) Enabled() bool { return len(s.Lights) > 0 }

///////////////////////////////////////////////////////////////////////////
// LineState

type LineState struct {
	base
	Width float32
}

var LineDefault = &LineState{Width: 1}

func (*LineState) Type() Type { return LineType }

///////////////////////////////////////////////////////////////////////////
// MaterialState

type MaterialState struct {
	base
	Ambient, Diffuse, Specular, Emission mgl32.Vec4
	Shininess                            float32
	ColorMaterial                        ColorMaterialMode
	TwoSide                              bool
	LocalViewer                          bool
	SeparateSpecular                     bool
	FlatShading                          bool
}

var MaterialDefault = &MaterialState{
	Ambient:  mgl32.Vec4{0.2, 0.2, 0.2, 1},
	Diffuse:  mgl32.Vec4{0.8, 0.8, 0.8, 1},
	Specular: mgl32.Vec4{0, 0, 0, 1},
	Emission: mgl32.Vec4{0, 0, 0, 1},
}

func (*MaterialState) Type() Type { return MaterialType }

func (s *MaterialState) Equal(o *MaterialState) bool {
	return s.Ambient == o.Ambient && s.Diffuse == o.Diffuse && s.Specular == o.Specular &&
		s.Emission == o.Emission && s.Shininess == o.Shininess && s.ColorMaterial == o.ColorMaterial &&
		s.TwoSide == o.TwoSide && s.LocalViewer == o.LocalViewer &&
		s.SeparateSpecular == o.SeparateSpecular && s.FlatShading == o.FlatShading
}

///////////////////////////////////////////////////////////////////////////
// PointState

type PointState struct {
	base
	Size float32
}

var PointDefault = &PointState{Size: 1}

func (*PointState) Type() Type { return PointType }

///////////////////////////////////////////////////////////////////////////
// PolygonState

type PolygonState struct {
	base
	FrontMode, BackMode       PolygonMode
	OffsetFactor, OffsetUnits float32
}

var PolygonDefault = &PolygonState{FrontMode: PolygonFill, BackMode: PolygonFill}

func (*PolygonState) Type() Type { return PolygonType }

///////////////////////////////////////////////////////////////////////////
// ShaderState

// Program is a linked shader program.
type Program struct {
	Handle   uint32
	Vertex   string
	Fragment string
	Defines  []string
}

// Uniform is a named uniform value; the number of values determines its
// GL type (1-4 for vectors, 16 for a 4x4 matrix).
type Uniform struct {
	Name     string
	Location int32 // -1 if the program doesn't use it
	Values   []float32
	Int      bool
}

type ShaderState struct {
	base
	Program  *Program
	Uniforms []Uniform
}

var ShaderDisabled = &ShaderState{}

func (*ShaderState) Type() Type { return ShaderType }

///////////////////////////////////////////////////////////////////////////
// StencilState

type StencilState struct {
	base
	TestFunc                    CompareFunc
	TestRef                     int32
	TestMask                    uint32
	FailOp, DepthFailOp, PassOp StencilOp
	WriteMask                   uint32
}

var StencilDisabled = &StencilState{
	TestFunc:  CompareAlways,
	TestMask:  0xffffffff,
	WriteMask: 0xffffffff,
}

func (*StencilState) Type() Type { return StencilType }

func (s *StencilState) Equal(o *StencilState) bool {
	return s.TestFunc == o.TestFunc && s.TestRef == o.TestRef && s.TestMask == o.TestMask &&
		s.FailOp == o.FailOp && s.DepthFailOp == o.DepthFailOp && s.PassOp == o.PassOp &&
		s.WriteMask == o.WriteMask
}

// Enabled reports whether the state does anything to the stencil buffer.
func (s *StencilState) Enabled() bool {
	return !s.Equal(StencilDisabled)
}

///////////////////////////////////////////////////////////////////////////
// TextureState

type Texture struct {
	Handle uint32
	Name   string
	Target TextureTarget
}

type TextureUnit struct {
	Texture              *Texture
	EnvMode              TexEnvMode
	GenModeS, GenModeT   TexGenMode
	GenModeR, GenModeQ   TexGenMode
	GenPlaneS, GenPlaneT mgl32.Vec4
	GenPlaneR, GenPlaneQ mgl32.Vec4
	Transform            mgl32.Mat4
	// PlaneSources, when set, alias planes that are owned elsewhere and
	// take precedence over the GenPlane fields.
	PlaneSources [4]*mgl32.Vec4

	dirty bool
}

func (u *TextureUnit) Dirty() bool     { return u.dirty }
func (u *TextureUnit) SetDirty(d bool) { u.dirty = d }

// GenEnabled reports whether any coordinate generation axis is enabled.
func (u *TextureUnit) GenEnabled() bool {
	return u.GenModeS != TexGenNone || u.GenModeT != TexGenNone ||
		u.GenModeR != TexGenNone || u.GenModeQ != TexGenNone
}

// GenPlanes returns pointers to the s/t/r/q generation planes.
func (u *TextureUnit) GenPlanes() [4]*mgl32.Vec4 {
	return [4]*mgl32.Vec4{&u.GenPlaneS, &u.GenPlaneT, &u.GenPlaneR, &u.GenPlaneQ}
}

// Plane returns the generation plane for the given axis (0-3 for s/t/r/q).
func (u *TextureUnit) Plane(axis int) mgl32.Vec4 {
	if src := u.PlaneSources[axis]; src != nil {
		return *src
	}
	return *u.GenPlanes()[axis]
}

type TextureState struct {
	base
	Units []*TextureUnit
}

var TextureDisabled = &TextureState{}

func (*TextureState) Type() Type { return TextureType }

// Copy returns a private working copy of the state, including copies of
// its units.
func (s *TextureState) Copy() *TextureState {
	c := &TextureState{Units: make([]*TextureUnit, len(s.Units))}
	for i, u := range s.Units {
		if u != nil {
			uc := *u
			uc.dirty = false
			c.Units[i] = &uc
		}
	}
	return c
}

///////////////////////////////////////////////////////////////////////////
// TransformState

type TransformState struct {
	base
	Modelview mgl32.Mat4
}

var TransformIdentity = &TransformState{Modelview: mgl32.Ident4()}

func (*TransformState) Type() Type { return TransformType }

// Copy returns a private working copy of the state.
func (s *TransformState) Copy() *TransformState {
	return &TransformState{Modelview: s.Modelview}
}

///////////////////////////////////////////////////////////////////////////

// Set holds one state per slot; nil entries inherit the current state.
type Set [NumTypes]RenderState

// Add stores s in its slot.
func (set *Set) Add(s RenderState) {
	set[s.Type()] = s
}

// Key returns the IDs of the states in the set, in slot order, for use as
// a batch sort key. Empty slots contribute 0.
func (set *Set) Key() []uint64 {
	key := make([]uint64, 0, NumTypes)
	for _, s := range set {
		if IsNil(s) {
			key = append(key, 0)
		} else {
			key = append(key, s.ID())
		}
	}
	return key
}

// States returns the non-nil states in slot order.
func (set *Set) States() []RenderState {
	return slices.DeleteFunc(slices.Clone(set[:]), IsNil)
}

// IsNil reports whether s is nil or a typed nil pointer.
func IsNil(s RenderState) bool {
	if s == nil {
		return true
	}
	switch s := s.(type) {
	case *AlphaState:
		return s == nil
	case *ArrayState:
		return s == nil
	case *ColorState:
		return s == nil
	case *ColorMaskState:
		return s == nil
	case *CullState:
		return s == nil
	case *DepthState:
		return s == nil
	case *FogState:
		return s == nil
	case *LightState:
		return s == nil
	case *LineState:
		return s == nil
	case *MaterialState:
		return s == nil
	case *PointState:
		return s == nil
	case *PolygonState:
		return s == nil
	case *ShaderState:
		return s == nil
	case *StencilState:
		return s == nil
	case *TextureState:
		return s == nil
	case *TransformState:
		return s == nil
	}
	return false
}
