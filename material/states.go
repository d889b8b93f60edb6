// material/states.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"encoding/json"
	"slices"

	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"

	"github.com/go-gl/mathgl/mgl32"
)

// The state configs describe the render states of a pass. A nil config
// in a pass selects the default state for its slot (or, for the color,
// fog, and light slots, the state provided by the scope). When decoded
// from JSON, fields that aren't given take the values of the
// corresponding default state.

///////////////////////////////////////////////////////////////////////////
// Alpha

type AlphaStateConfig struct {
	TestFunc  state.CompareFunc `json:"test_func"`
	TestRef   float32           `json:"test_ref"`
	SrcBlend  state.BlendFactor `json:"src_blend"`
	DestBlend state.BlendFactor `json:"dest_blend"`
}

func DefaultAlphaConfig() *AlphaStateConfig {
	return &AlphaStateConfig{TestFunc: state.CompareAlways, SrcBlend: state.BlendOne, DestBlend: state.BlendZero}
}

func (c *AlphaStateConfig) UnmarshalJSON(b []byte) error {
	type alias AlphaStateConfig
	a := alias(*DefaultAlphaConfig())
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = AlphaStateConfig(a)
	return nil
}

// AlphaTest reports whether the config discards fragments.
func (c *AlphaStateConfig) AlphaTest() bool {
	return c != nil && c.TestFunc != state.CompareAlways
}

func (c *AlphaStateConfig) state(in *state.Interner) *state.AlphaState {
	if c.TestFunc == state.CompareGreater && c.SrcBlend == state.BlendOne && c.DestBlend == state.BlendZero {
		return in.AlphaTest(c.TestRef)
	}
	return in.Alpha(state.AlphaState{TestFunc: c.TestFunc, TestRef: c.TestRef, SrcBlend: c.SrcBlend,
		DestBlend: c.DestBlend})
}

///////////////////////////////////////////////////////////////////////////
// Color

type ColorStateConfig struct {
	Color mgl32.Vec4 `json:"color"`
}

func (c *ColorStateConfig) UnmarshalJSON(b []byte) error {
	type alias ColorStateConfig
	a := alias{Color: state.ColorWhite.Color}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = ColorStateConfig(a)
	return nil
}

func (c *ColorStateConfig) state(in *state.Interner) *state.ColorState {
	return in.Color(c.Color)
}

///////////////////////////////////////////////////////////////////////////
// ColorMask

type ColorMaskStateConfig struct {
	Red   bool `json:"red"`
	Green bool `json:"green"`
	Blue  bool `json:"blue"`
	Alpha bool `json:"alpha"`
}

func (c *ColorMaskStateConfig) UnmarshalJSON(b []byte) error {
	type alias ColorMaskStateConfig
	a := alias{Red: true, Green: true, Blue: true, Alpha: true}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = ColorMaskStateConfig(a)
	return nil
}

func (c *ColorMaskStateConfig) state(in *state.Interner) *state.ColorMaskState {
	return in.ColorMask(c.Red, c.Green, c.Blue, c.Alpha)
}

///////////////////////////////////////////////////////////////////////////
// Cull

type CullStateConfig struct {
	Face state.CullFace `json:"face"`
}

func (c *CullStateConfig) UnmarshalJSON(b []byte) error {
	type alias CullStateConfig
	a := alias{Face: state.FaceBack}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = CullStateConfig(a)
	return nil
}

func (c *CullStateConfig) state(in *state.Interner) *state.CullState {
	return in.Cull(c.Face)
}

///////////////////////////////////////////////////////////////////////////
// Depth

type DepthStateConfig struct {
	TestFunc state.CompareFunc `json:"test_func"`
	Mask     bool              `json:"mask"`
}

func DefaultDepthConfig() *DepthStateConfig {
	return &DepthStateConfig{TestFunc: state.CompareLessEqual, Mask: true}
}

func (c *DepthStateConfig) UnmarshalJSON(b []byte) error {
	type alias DepthStateConfig
	a := alias(*DefaultDepthConfig())
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = DepthStateConfig(a)
	return nil
}

func (c *DepthStateConfig) state(in *state.Interner) *state.DepthState {
	return in.Depth(c.TestFunc, c.Mask)
}

///////////////////////////////////////////////////////////////////////////
// Fog

type FogStateConfig struct {
	Mode    state.FogMode `json:"mode"`
	Density float32       `json:"density"`
	Start   float32       `json:"start"`
	End     float32       `json:"end"`
	Color   mgl32.Vec4    `json:"color"`
}

func (c *FogStateConfig) UnmarshalJSON(b []byte) error {
	type alias FogStateConfig
	a := alias{Mode: state.FogExp, Density: 1, End: 1}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = FogStateConfig(a)
	return nil
}

func (c *FogStateConfig) state(in *state.Interner) *state.FogState {
	return in.Fog(state.FogState{Mode: c.Mode, Density: c.Density, Start: c.Start, End: c.End, Color: c.Color})
}

///////////////////////////////////////////////////////////////////////////
// Light

type LightConfig struct {
	Position      mgl32.Vec4 `json:"position"`
	Ambient       mgl32.Vec4 `json:"ambient"`
	Diffuse       mgl32.Vec4 `json:"diffuse"`
	Specular      mgl32.Vec4 `json:"specular"`
	SpotDirection mgl32.Vec3 `json:"spot_direction"`
	SpotExponent  float32    `json:"spot_exponent"`
	SpotCutoff    float32    `json:"spot_cutoff"`
	Attenuation   [3]float32 `json:"attenuation"`
}

func (c *LightConfig) UnmarshalJSON(b []byte) error {
	type alias LightConfig
	a := alias{
		Position:      mgl32.Vec4{0, 0, 1, 0},
		Ambient:       mgl32.Vec4{0, 0, 0, 1},
		Diffuse:       mgl32.Vec4{1, 1, 1, 1},
		Specular:      mgl32.Vec4{1, 1, 1, 1},
		SpotDirection: mgl32.Vec3{0, 0, -1},
		SpotCutoff:    180,
		Attenuation:   [3]float32{1, 0, 0},
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = LightConfig(a)
	return nil
}

// LightStateConfig overrides the lights provided by the scope; no lights
// disables lighting.
type LightStateConfig struct {
	Lights        []LightConfig `json:"lights"`
	GlobalAmbient mgl32.Vec4    `json:"global_ambient"`
}

func (c *LightStateConfig) state() *state.LightState {
	if len(c.Lights) == 0 {
		return state.LightDisabled
	}
	s := &state.LightState{GlobalAmbient: c.GlobalAmbient}
	for _, l := range c.Lights {
		s.Lights = append(s.Lights, &state.Light{
			Position:      l.Position,
			Ambient:       l.Ambient,
			Diffuse:       l.Diffuse,
			Specular:      l.Specular,
			SpotDirection: l.SpotDirection,
			SpotExponent:  l.SpotExponent,
			SpotCutoff:    l.SpotCutoff,
			Attenuation:   l.Attenuation,
		})
	}
	return s
}

///////////////////////////////////////////////////////////////////////////
// Line, point, polygon

type LineStateConfig struct {
	Width float32 `json:"width"`
}

func (c *LineStateConfig) UnmarshalJSON(b []byte) error {
	type alias LineStateConfig
	a := alias{Width: 1}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = LineStateConfig(a)
	return nil
}

type PointStateConfig struct {
	Size float32 `json:"size"`
}

func (c *PointStateConfig) UnmarshalJSON(b []byte) error {
	type alias PointStateConfig
	a := alias{Size: 1}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = PointStateConfig(a)
	return nil
}

type PolygonStateConfig struct {
	FrontMode    state.PolygonMode `json:"front_mode"`
	BackMode     state.PolygonMode `json:"back_mode"`
	OffsetFactor float32           `json:"offset_factor"`
	OffsetUnits  float32           `json:"offset_units"`
}

///////////////////////////////////////////////////////////////////////////
// Material

type MaterialStateConfig struct {
	Ambient          mgl32.Vec4              `json:"ambient"`
	Diffuse          mgl32.Vec4              `json:"diffuse"`
	Specular         mgl32.Vec4              `json:"specular"`
	Emission         mgl32.Vec4              `json:"emission"`
	Shininess        float32                 `json:"shininess"`
	ColorMaterial    state.ColorMaterialMode `json:"color_material"`
	TwoSide          bool                    `json:"two_side"`
	LocalViewer      bool                    `json:"local_viewer"`
	SeparateSpecular bool                    `json:"separate_specular"`
	FlatShading      bool                    `json:"flat_shading"`
}

func (c *MaterialStateConfig) UnmarshalJSON(b []byte) error {
	type alias MaterialStateConfig
	d := state.MaterialDefault
	a := alias{Ambient: d.Ambient, Diffuse: d.Diffuse, Specular: d.Specular, Emission: d.Emission}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = MaterialStateConfig(a)
	return nil
}

// IsSupported reports whether the hardware can provide the requested
// lighting model. With fallback, separate specular is simply dropped.
func (c *MaterialStateConfig) IsSupported(ctx *render.Context, fallback bool) bool {
	return c == nil || !c.SeparateSpecular || ctx.Caps.SeparateSpecular || fallback
}

func (c *MaterialStateConfig) state(ctx *render.Context) *state.MaterialState {
	return ctx.Interner.Material(state.MaterialState{
		Ambient:          c.Ambient,
		Diffuse:          c.Diffuse,
		Specular:         c.Specular,
		Emission:         c.Emission,
		Shininess:        c.Shininess,
		ColorMaterial:    c.ColorMaterial,
		TwoSide:          c.TwoSide,
		LocalViewer:      c.LocalViewer,
		SeparateSpecular: c.SeparateSpecular && ctx.Caps.SeparateSpecular,
		FlatShading:      c.FlatShading,
	})
}

///////////////////////////////////////////////////////////////////////////
// Stencil

type StencilStateConfig struct {
	TestFunc    state.CompareFunc `json:"test_func"`
	TestRef     int32             `json:"test_ref"`
	TestMask    uint32            `json:"test_mask"`
	FailOp      state.StencilOp   `json:"fail_op"`
	DepthFailOp state.StencilOp   `json:"depth_fail_op"`
	PassOp      state.StencilOp   `json:"pass_op"`
	WriteMask   uint32            `json:"write_mask"`
}

func (c *StencilStateConfig) UnmarshalJSON(b []byte) error {
	type alias StencilStateConfig
	a := alias{TestFunc: state.CompareAlways, TestMask: 0xffffffff, WriteMask: 0xffffffff}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = StencilStateConfig(a)
	return nil
}

func (c *StencilStateConfig) state(in *state.Interner) *state.StencilState {
	return in.Stencil(state.StencilState{
		TestFunc:    c.TestFunc,
		TestRef:     c.TestRef,
		TestMask:    c.TestMask,
		FailOp:      c.FailOp,
		DepthFailOp: c.DepthFailOp,
		PassOp:      c.PassOp,
		WriteMask:   c.WriteMask,
	})
}

///////////////////////////////////////////////////////////////////////////
// Texture

type TexGenConfig struct {
	Mode  state.TexGenMode `json:"mode"`
	Plane mgl32.Vec4       `json:"plane"`
}

// Enabled reports whether the config generates coordinates.
func (c *TexGenConfig) Enabled() bool {
	return c != nil && c.Mode != state.TexGenNone
}

type TextureUnitConfig struct {
	Texture string           `json:"texture"`
	CubeMap bool             `json:"cube_map,omitempty"`
	EnvMode state.TexEnvMode `json:"env_mode"`
	GenS    *TexGenConfig    `json:"gen_s,omitempty"`
	GenT    *TexGenConfig    `json:"gen_t,omitempty"`
	GenR    *TexGenConfig    `json:"gen_r,omitempty"`
	GenQ    *TexGenConfig    `json:"gen_q,omitempty"`
	// Transform is the texture matrix; the identity if not given.
	Transform *mgl32.Mat4 `json:"transform,omitempty"`
}

func (u *TextureUnitConfig) gens() [4]*TexGenConfig {
	return [4]*TexGenConfig{u.GenS, u.GenT, u.GenR, u.GenQ}
}

// GenEnabled reports whether any texture coordinate is generated.
func (u *TextureUnitConfig) GenEnabled() bool {
	return u.GenS.Enabled() || u.GenT.Enabled() || u.GenR.Enabled() || u.GenQ.Enabled()
}

// needsTexCoords reports whether the geometry must supply texture
// coordinates for the unit.
func (u *TextureUnitConfig) needsTexCoords() bool {
	return !u.GenS.Enabled() || !u.GenT.Enabled()
}

func (u *TextureUnitConfig) needsNormals() bool {
	for _, g := range u.gens() {
		if g.Enabled() && (g.Mode == state.TexGenSphereMap || g.Mode == state.TexGenNormalMap ||
			g.Mode == state.TexGenReflectionMap) {
			return true
		}
	}
	return false
}

func (u *TextureUnitConfig) target() state.TextureTarget {
	if u.CubeMap {
		return state.TextureCubeMap
	}
	return state.Texture2D
}

type TextureStateConfig struct {
	Units []*TextureUnitConfig `json:"units"`
}

// IsSupported reports whether the hardware has enough texture units and
// supports the unit types. With fallback, extra units are dropped and
// unsupported units are disabled.
func (c *TextureStateConfig) IsSupported(ctx *render.Context, fallback bool) bool {
	if c == nil || fallback {
		return true
	}
	if len(c.Units) > ctx.Caps.MaxTextureUnits {
		return false
	}
	for _, u := range c.Units {
		if u != nil && u.CubeMap && !ctx.Caps.CubeMaps {
			return false
		}
	}
	return true
}

// units returns the units that the hardware can provide.
func (c *TextureStateConfig) units(ctx *render.Context) []*TextureUnitConfig {
	units := c.Units
	if len(units) > ctx.Caps.MaxTextureUnits {
		units = units[:max(ctx.Caps.MaxTextureUnits, 0)]
	}
	return units
}

// state returns a new texture state; texture states are never shared
// since bindings may modify their units.
func (c *TextureStateConfig) state(ctx *render.Context) *state.TextureState {
	units := c.units(ctx)
	if len(units) == 0 {
		return state.TextureDisabled
	}

	s := &state.TextureState{Units: make([]*state.TextureUnit, len(units))}
	for i, u := range units {
		if u == nil || (u.CubeMap && !ctx.Caps.CubeMaps) {
			continue
		}
		tex := ctx.Textures.Texture(u.Texture, u.target())
		if tex == nil {
			continue
		}
		su := &state.TextureUnit{Texture: tex, EnvMode: u.EnvMode, Transform: mgl32.Ident4()}
		if u.Transform != nil {
			su.Transform = *u.Transform
		}
		modes := [4]*state.TexGenMode{&su.GenModeS, &su.GenModeT, &su.GenModeR, &su.GenModeQ}
		planes := su.GenPlanes()
		for axis, g := range u.gens() {
			if g.Enabled() {
				*modes[axis] = g.Mode
				*planes[axis] = g.Plane
			}
		}
		s.Units[i] = su
	}
	return s
}

///////////////////////////////////////////////////////////////////////////
// Shader

// Uniform sources; uniforms with a source take their values from another
// state of the pass and are refreshed every frame.
const (
	UniformModelview = "modelview"
	UniformColor     = "color"
)

type UniformConfig struct {
	Name   string    `json:"name"`
	Values []float32 `json:"values,omitempty"`
	Int    bool      `json:"int,omitempty"`
	Source string    `json:"source,omitempty"`
}

type ShaderStateConfig struct {
	Vertex     string          `json:"vertex"`
	Fragment   string          `json:"fragment"`
	Defines    []string        `json:"defines,omitempty"`
	Attributes []string        `json:"attributes,omitempty"`
	Uniforms   []UniformConfig `json:"uniforms,omitempty"`
}

// IsSupported reports whether shaders are available; with fallback, the
// pass is rendered using the fixed-function pipeline instead.
func (c *ShaderStateConfig) IsSupported(ctx *render.Context, fallback bool) bool {
	return c == nil || ctx.ShadersEnabled() || fallback
}

// state builds the shader state. It must be called after all of the
// pass's other states have been created since uniforms may be read from
// them.
func (c *ShaderStateConfig) state(ctx *render.Context, states *state.Set, updaters *[]render.Updater) *state.ShaderState {
	prog := ctx.ShaderProgram(c.Vertex, c.Fragment, c.Defines)
	if prog == nil {
		return state.ShaderDisabled
	}

	s := &state.ShaderState{Program: prog}
	for _, u := range c.Uniforms {
		su := state.Uniform{
			Name:     u.Name,
			Location: ctx.Shaders.UniformLocation(prog, u.Name),
			Values:   u.Values,
			Int:      u.Int,
		}
		if src := uniformSource(u.Source, states); src != nil {
			up := &uniformUpdater{shader: s, index: len(s.Uniforms), source: src}
			su.Values = up.values()
			*updaters = append(*updaters, up)
		}
		s.Uniforms = append(s.Uniforms, su)
	}
	return s
}

func uniformSource(name string, states *state.Set) state.RenderState {
	var src state.RenderState
	switch name {
	case UniformModelview:
		src = states[state.TransformType]
	case UniformColor:
		src = states[state.ColorType]
	}
	if state.IsNil(src) {
		return nil
	}
	return src
}

// uniformUpdater copies a value from one of a pass's states into a
// uniform of its shader state.
type uniformUpdater struct {
	shader *state.ShaderState
	index  int
	source state.RenderState
}

func (u *uniformUpdater) values() []float32 {
	switch s := u.source.(type) {
	case *state.TransformState:
		return append([]float32(nil), s.Modelview[:]...)
	case *state.ColorState:
		return append([]float32(nil), s.Color[:]...)
	}
	return nil
}

func (u *uniformUpdater) Update() {
	v := u.values()
	uni := &u.shader.Uniforms[u.index]
	if !slices.Equal(v, uni.Values) {
		uni.Values = v
		u.shader.SetDirty(true)
	}
}
