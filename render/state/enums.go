// render/state/enums.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package state

import (
	"fmt"
	"slices"
	"strings"
)

// Enumerations are written to configuration files using their lower-case
// names.

func enumString[E ~int](names []string, e E) string {
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return fmt.Sprintf("%d", int(e))
}

func parseEnum[E ~int](names []string, what string, text []byte) (E, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if i := slices.Index(names, s); i != -1 {
		return E(i), nil
	}
	return 0, fmt.Errorf("%q: unknown %s (expected one of %s)", s, what, strings.Join(names, ", "))
}

///////////////////////////////////////////////////////////////////////////

type CompareFunc int

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

var compareFuncNames = []string{"never", "less", "equal", "less_equal", "greater", "not_equal", "greater_equal", "always"}

func (c CompareFunc) String() string                { return enumString(compareFuncNames, c) }
func (c CompareFunc) MarshalText() ([]byte, error)  { return []byte(c.String()), nil }
func (c *CompareFunc) UnmarshalText(b []byte) error { return unmarshalEnum(compareFuncNames, "comparison function", b, c) }

type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcAlphaSaturate
)

var blendFactorNames = []string{"zero", "one", "src_color", "one_minus_src_color", "dst_color",
	"one_minus_dst_color", "src_alpha", "one_minus_src_alpha", "dst_alpha", "one_minus_dst_alpha",
	"src_alpha_saturate"}

func (f BlendFactor) String() string                { return enumString(blendFactorNames, f) }
func (f BlendFactor) MarshalText() ([]byte, error)  { return []byte(f.String()), nil }
func (f *BlendFactor) UnmarshalText(b []byte) error { return unmarshalEnum(blendFactorNames, "blend factor", b, f) }

type CullFace int

const (
	FaceNone CullFace = iota
	FaceBack
	FaceFront
	FaceFrontAndBack
)

var cullFaceNames = []string{"none", "back", "front", "front_and_back"}

func (f CullFace) String() string                { return enumString(cullFaceNames, f) }
func (f CullFace) MarshalText() ([]byte, error)  { return []byte(f.String()), nil }
func (f *CullFace) UnmarshalText(b []byte) error { return unmarshalEnum(cullFaceNames, "cull face", b, f) }

type PolygonMode int

const (
	PolygonFill PolygonMode = iota
	PolygonLine
	PolygonPoint
)

var polygonModeNames = []string{"fill", "line", "point"}

func (m PolygonMode) String() string                { return enumString(polygonModeNames, m) }
func (m PolygonMode) MarshalText() ([]byte, error)  { return []byte(m.String()), nil }
func (m *PolygonMode) UnmarshalText(b []byte) error { return unmarshalEnum(polygonModeNames, "polygon mode", b, m) }

type FogMode int

const (
	FogOff FogMode = iota
	FogLinear
	FogExp
	FogExp2
)

var fogModeNames = []string{"off", "linear", "exp", "exp2"}

func (m FogMode) String() string                { return enumString(fogModeNames, m) }
func (m FogMode) MarshalText() ([]byte, error)  { return []byte(m.String()), nil }
func (m *FogMode) UnmarshalText(b []byte) error { return unmarshalEnum(fogModeNames, "fog mode", b, m) }

type TexGenMode int

const (
	TexGenNone TexGenMode = iota
	TexGenObjectLinear
	TexGenEyeLinear
	TexGenSphereMap
	TexGenNormalMap
	TexGenReflectionMap
)

var texGenModeNames = []string{"none", "object_linear", "eye_linear", "sphere_map", "normal_map", "reflection_map"}

func (m TexGenMode) String() string                { return enumString(texGenModeNames, m) }
func (m TexGenMode) MarshalText() ([]byte, error)  { return []byte(m.String()), nil }
func (m *TexGenMode) UnmarshalText(b []byte) error { return unmarshalEnum(texGenModeNames, "texgen mode", b, m) }

type TexEnvMode int

const (
	TexEnvModulate TexEnvMode = iota
	TexEnvReplace
	TexEnvDecal
	TexEnvBlend
	TexEnvAdd
)

var texEnvModeNames = []string{"modulate", "replace", "decal", "blend", "add"}

func (m TexEnvMode) String() string                { return enumString(texEnvModeNames, m) }
func (m TexEnvMode) MarshalText() ([]byte, error)  { return []byte(m.String()), nil }
func (m *TexEnvMode) UnmarshalText(b []byte) error { return unmarshalEnum(texEnvModeNames, "texture environment mode", b, m) }

type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncr
	StencilDecr
	StencilInvert
	StencilIncrWrap
	StencilDecrWrap
)

var stencilOpNames = []string{"keep", "zero", "replace", "incr", "decr", "invert", "incr_wrap", "decr_wrap"}

func (o StencilOp) String() string                { return enumString(stencilOpNames, o) }
func (o StencilOp) MarshalText() ([]byte, error)  { return []byte(o.String()), nil }
func (o *StencilOp) UnmarshalText(b []byte) error { return unmarshalEnum(stencilOpNames, "stencil op", b, o) }

type ColorMaterialMode int

const (
	ColorMaterialDisabled ColorMaterialMode = iota
	ColorMaterialAmbientAndDiffuse
	ColorMaterialAmbient
	ColorMaterialDiffuse
	ColorMaterialSpecular
	ColorMaterialEmission
)

var colorMaterialModeNames = []string{"disabled", "ambient_and_diffuse", "ambient", "diffuse", "specular", "emission"}

func (m ColorMaterialMode) String() string { return enumString(colorMaterialModeNames, m) }
func (m ColorMaterialMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
func (m *ColorMaterialMode) UnmarshalText(b []byte) error {
	return unmarshalEnum(colorMaterialModeNames, "color material mode", b, m)
}

type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCubeMap
)

var textureTargetNames = []string{"2d", "cube_map"}

func (t TextureTarget) String() string                { return enumString(textureTargetNames, t) }
func (t TextureTarget) MarshalText() ([]byte, error)  { return []byte(t.String()), nil }
func (t *TextureTarget) UnmarshalText(b []byte) error { return unmarshalEnum(textureTargetNames, "texture target", b, t) }

func unmarshalEnum[E ~int](names []string, what string, b []byte, e *E) error {
	v, err := parseEnum[E](names, what, b)
	if err != nil {
		return err
	}
	*e = v
	return nil
}
