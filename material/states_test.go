// material/states_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/util"

	"github.com/go-gl/mathgl/mgl32"
)

func createStates(ctx *render.Context, scope render.Scope, p *Pass) (state.Set, []render.Updater) {
	var updaters []render.Updater
	s := p.CreateStates(ctx, scope, &render.SimpleGeometry{}, 0, &updaters)
	return s, updaters
}

func TestCreateStatesDefaults(t *testing.T) {
	ctx := newContext()
	red := &state.ColorState{Color: mgl32.Vec4{1, 0, 0, 1}}
	scope := render.NewScope("object", ctx.Scope)
	scope.Set(render.ColorStateVar, red)

	s, updaters := createStates(ctx, scope, &Pass{})
	if len(updaters) != 0 {
		t.Errorf("got %d updaters, expected none", len(updaters))
	}

	expected := map[state.Type]state.RenderState{
		state.AlphaType:     state.AlphaOpaque,
		state.ColorType:     red,
		state.ColorMaskType: state.ColorMaskAll,
		state.CullType:      state.CullBack,
		state.DepthType:     state.DepthTestWrite,
		state.FogType:       state.FogDisabled,
		state.LightType:     state.LightDisabled,
		state.LineType:      state.LineDefault,
		state.MaterialType:  state.MaterialDefault,
		state.PointType:     state.PointDefault,
		state.PolygonType:   state.PolygonDefault,
		state.ShaderType:    state.ShaderDisabled,
		state.StencilType:   state.StencilDisabled,
		state.TextureType:   state.TextureDisabled,
		state.TransformType: state.TransformIdentity,
	}
	for ty, st := range expected {
		if s[ty] != st {
			t.Errorf("%s: got %+v, expected %+v", ty, s[ty], st)
		}
	}
	if !state.IsNil(s[state.ArrayType]) {
		t.Errorf("array state set for geometry without arrays")
	}
}

func TestCreateStatesInterned(t *testing.T) {
	ctx := newContext()
	p := &Pass{
		Alpha: &AlphaStateConfig{TestFunc: state.CompareGreater, TestRef: 0.5, SrcBlend: state.BlendOne,
			DestBlend: state.BlendZero},
		Depth:   &DepthStateConfig{TestFunc: state.CompareLess, Mask: true},
		Cull:    &CullStateConfig{Face: state.FaceNone},
		Fog:     &FogStateConfig{Mode: state.FogOff},
		Stencil: &StencilStateConfig{TestFunc: state.CompareAlways, TestMask: 0xffffffff, WriteMask: 0xffffffff},
	}
	s0, _ := createStates(ctx, ctx.Scope, p)
	s1, _ := createStates(ctx, ctx.Scope, p)

	if s0[state.AlphaType] != state.AlphaMasked {
		t.Errorf("alpha: got %+v, expected the masked constant", s0[state.AlphaType])
	}
	if s0[state.DepthType] != s1[state.DepthType] {
		t.Errorf("depth states not shared")
	}
	if s0[state.CullType] != state.CullDisabled {
		t.Errorf("cull: got %+v, expected the disabled constant", s0[state.CullType])
	}
	if s0[state.FogType] != state.FogDisabled {
		t.Errorf("fog: got %+v, expected the disabled constant", s0[state.FogType])
	}
	if s0[state.StencilType] != state.StencilDisabled {
		t.Errorf("stencil: got %+v, expected the disabled constant", s0[state.StencilType])
	}
	if slices.Compare(s0.Key(), s1.Key()) != 0 {
		t.Errorf("keys differ: %v vs %v", s0.Key(), s1.Key())
	}
}

func TestIgnoreVertexColors(t *testing.T) {
	ctx := newContext()
	arrays := &state.ArrayState{
		Vertex: &state.ClientArray{Buffer: 1, Size: 3},
		Color:  &state.ClientArray{Buffer: 1, Size: 4, Offset: 12},
	}
	geom := &render.SimpleGeometry{Arrays: arrays}

	var updaters []render.Updater
	s := (&Pass{}).CreateStates(ctx, ctx.Scope, geom, 0, &updaters)
	if s[state.ArrayType] != arrays {
		t.Errorf("geometry arrays not used")
	}

	s = (&Pass{IgnoreVertexColors: true}).CreateStates(ctx, ctx.Scope, geom, 0, &updaters)
	a := s[state.ArrayType].(*state.ArrayState)
	if a.Color != nil || a.Vertex != arrays.Vertex {
		t.Errorf("got %+v, expected vertices without colors", a)
	}
	if arrays.Color == nil {
		t.Errorf("geometry arrays modified")
	}
}

func TestShaderUniforms(t *testing.T) {
	ctx := newContext()
	scope := render.NewScope("object", ctx.Scope)
	scope.Set("tint", mgl32.Vec4{0, 1, 0, 1})

	p := &Pass{
		Shader: &ShaderStateConfig{
			Vertex:   "vs",
			Fragment: "fs",
			Uniforms: []UniformConfig{
				{Name: "scale", Values: []float32{2}},
				{Name: "tint", Source: UniformColor},
			},
		},
		DynamicBindings: Bindings{&ColorBinding{Variable: "tint"}},
	}
	s, updaters := createStates(ctx, scope, p)

	sh := s[state.ShaderType].(*state.ShaderState)
	if sh.Program == nil || len(sh.Uniforms) != 2 {
		t.Fatalf("shader state: got %+v", sh)
	}
	if sh.Uniforms[0].Location != 0 || sh.Uniforms[1].Location != 1 {
		t.Errorf("uniform locations: got %d, %d", sh.Uniforms[0].Location, sh.Uniforms[1].Location)
	}

	// The color binding's updater runs before the uniform's.
	render.Updaters(updaters).Update()
	if !slices.Equal(sh.Uniforms[1].Values, []float32{0, 1, 0, 1}) {
		t.Errorf("tint: got %v, expected [0 1 0 1]", sh.Uniforms[1].Values)
	}

	sh.SetDirty(false)
	scope.Set("tint", mgl32.Vec4{0, 0, 1, 1})
	render.Updaters(updaters).Update()
	if !sh.Dirty() {
		t.Errorf("shader not dirty after uniform change")
	}
	if !slices.Equal(sh.Uniforms[1].Values, []float32{0, 0, 1, 1}) {
		t.Errorf("tint: got %v, expected [0 0 1 1]", sh.Uniforms[1].Values)
	}

	ctx.SetCompatibilityMode(true)
	if s, _ := createStates(ctx, scope, p); s[state.ShaderType] != state.ShaderDisabled {
		t.Errorf("shader used in compatibility mode")
	}
}

func TestStaticBindings(t *testing.T) {
	ctx := newContext()
	scope := render.NewScope("object", ctx.Scope)
	scope.Set("ref", float32(0.25))
	scope.Set("color", mgl32.Vec4{1, 1, 0, 1})

	p := &Pass{
		Alpha:          &AlphaStateConfig{TestFunc: state.CompareGreater, SrcBlend: state.BlendOne, DestBlend: state.BlendZero},
		StaticBindings: Bindings{&AlphaTestBinding{Variable: "ref"}, &ColorBinding{Variable: "color"}},
	}
	s, updaters := createStates(ctx, scope, p)
	if len(updaters) != 0 {
		t.Errorf("static bindings created %d updaters", len(updaters))
	}
	if a := s[state.AlphaType].(*state.AlphaState); a.TestRef != 0.25 || a.TestFunc != state.CompareGreater {
		t.Errorf("alpha: got %+v", a)
	}
	if c := s[state.ColorType].(*state.ColorState); c.Color != (mgl32.Vec4{1, 1, 0, 1}) {
		t.Errorf("color: got %v", c.Color)
	}
}

func TestProjectionBindings(t *testing.T) {
	ctx := newContext()
	scope := render.NewScope("projector", ctx.Scope)
	sPlane := mgl32.Vec4{1, 0, 0, 0}
	scope.Set("s", &sPlane)
	scope.Set("t", mgl32.Vec4{0, 1, 0, 0})

	rw := &ProjectionRewriter{Texture: "cookie", Variables: [4]string{"s", "t"}}
	r := Rewrite(ctx, rw, technique("", &Pass{}))
	p := r.Enqueuer.(*NormalEnqueuer).Passes[0]
	if len(p.StaticBindings) != 1 || len(p.DynamicBindings) != 1 {
		t.Fatalf("bindings: got %d static, %d dynamic", len(p.StaticBindings), len(p.DynamicBindings))
	}

	s, updaters := createStates(ctx, scope, p)
	ts := s[state.TextureType].(*state.TextureState)
	u := ts.Units[0]
	if u.Texture.Name != "cookie" || u.GenModeS != state.TexGenEyeLinear {
		t.Errorf("unit: got %+v", u)
	}
	if u.PlaneSources[0] != &sPlane {
		t.Errorf("s plane not aliased")
	}
	if u.Plane(1) != (mgl32.Vec4{0, 1, 0, 0}) {
		t.Errorf("t plane: got %v", u.Plane(1))
	}

	sPlane = mgl32.Vec4{0, 0, 2, 0}
	if u.Plane(0) != sPlane {
		t.Errorf("aliased plane: got %v, expected %v", u.Plane(0), sPlane)
	}

	u.SetDirty(false)
	render.Updaters(updaters).Update()
	if !u.Dirty() {
		t.Errorf("unit not marked dirty")
	}

	if d := s[state.DepthType].(*state.DepthState); d.Mask {
		t.Errorf("projection writes depth")
	}
}

func TestStateConfigJSONDefaults(t *testing.T) {
	var p Pass
	data := `{"alpha": {"test_func": "greater", "test_ref": 0.1}, "depth": {"mask": false},
              "light": {"lights": [{"diffuse": [1, 0, 0, 1]}]}}`
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		t.Fatal(err)
	}
	if p.Alpha.SrcBlend != state.BlendOne || p.Alpha.DestBlend != state.BlendZero || p.Alpha.TestRef != 0.1 {
		t.Errorf("alpha: got %+v", p.Alpha)
	}
	if p.Depth.TestFunc != state.CompareLessEqual || p.Depth.Mask {
		t.Errorf("depth: got %+v", p.Depth)
	}
	l := p.Light.Lights[0]
	if l.SpotCutoff != 180 || l.Attenuation != [3]float32{1, 0, 0} || l.Diffuse != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("light: got %+v", l)
	}
	if p.Cull != nil || p.Texture != nil {
		t.Errorf("unspecified configs set")
	}
}

const testLibrary = `{
  "render_schemes": {
    "Translucent": {"rewriter": {"type": "translucent"}},
    "Shadow": {"compatible_with_default": true}
  },
  "enqueuers": {
    "Overlay": {"type": "normal", "queue": "Overlay", "passes": [{"depth": {"test_func": "always"}}]}
  },
  "materials": {
    "Rock": {
      "type": "original",
      "techniques": [
        {"enqueuer": {"type": "normal", "passes": [{"cull": {"face": "none"}}]}},
        {"scheme": "Shadow", "enqueuer": {"type": "wrapper", "ref": "Overlay"},
         "dependencies": [{"type": "skip_color_clear"}]}
      ]
    },
    "Pebble": {"type": "derived", "material": "Rock"}
  }
}`

func TestLibrary(t *testing.T) {
	var e util.ErrorLogger
	lib := ParseLibrary("test.json", []byte(testLibrary), &e)
	if e.HaveErrors() {
		t.Fatalf("errors: %s", e.String())
	}

	ctx := newContext()
	lib.Register(ctx.Configs)
	lib.Validate(ctx.Configs, &e)
	if e.HaveErrors() {
		t.Fatalf("validation errors: %s", e.String())
	}

	if names := ctx.Configs.Names(config.KindMaterial); !slices.Equal(names, []string{"Pebble", "Rock"}) {
		t.Errorf("materials: got %v", names)
	}

	pebble := config.Resolve[*Material](ctx.Configs, config.KindMaterial, "Pebble")
	def := pebble.GetTechnique(ctx, "")
	if def == nil || def.Scheme != "" {
		t.Fatalf("default technique: got %+v", def)
	}
	if tr := pebble.GetTechnique(ctx, "Translucent"); tr == nil || tr == def {
		t.Errorf("translucent technique: got %+v", tr)
	}
	sh := pebble.GetTechnique(ctx, "Shadow")
	if sh == nil || sh.Scheme != "Shadow" || len(sh.Dependencies) != 1 {
		t.Errorf("shadow technique: got %+v", sh)
	}

	// Round trip a technique through JSON.
	b, err := json.Marshal(sh)
	if err != nil {
		t.Fatal(err)
	}
	var back Technique
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("%s: %v", b, err)
	}
	if w, ok := back.Enqueuer.(*WrapperEnqueuer); !ok || w.Ref != "Overlay" {
		t.Errorf("enqueuer: got %+v", back.Enqueuer)
	}
}

func TestLibraryErrors(t *testing.T) {
	for _, data := range []string{
		`{"materials": {"Rock": {"type": "granite"}}}`,
		`{"material": {}}`,
		`{"materials": {"Rock": {"type": "derived", "material": "A"}, "Rock": {"type": "derived", "material": "B"}}}`,
		`{"materials": {"Rock": {"type": "original", "techniques": [{"scheme": "x"}]}}}`,
	} {
		var e util.ErrorLogger
		if lib := ParseLibrary("bad.json", []byte(data), &e); lib != nil || !e.HaveErrors() {
			t.Errorf("%s: expected errors", data)
		}
	}

	var e util.ErrorLogger
	lib := ParseLibrary("refs.json",
		[]byte(`{"materials": {"Rock": {"type": "derived", "material": "Stone"}}}`), &e)
	if lib == nil {
		t.Fatalf("errors: %s", e.String())
	}
	ctx := newContext()
	lib.Register(ctx.Configs)
	lib.Validate(ctx.Configs, &e)
	if !e.HaveErrors() {
		t.Errorf("dangling reference not reported")
	}
}

func TestLoadLibraries(t *testing.T) {
	fsys := fstest.MapFS{
		"schemes.json": {Data: []byte(`{"render_schemes": {"shadow": {"compatible_with_default": true}}}`)},
		"rock.json": {Data: []byte(`{"materials": {"Rock": {"type": "original",
                   "techniques": [{"scheme": "shadow", "enqueuer": {"type": "normal", "passes": [{}]}}]}}}`)},
		"bad.json": {Data: []byte(`{"materials": {"Rock": {"type": "granite"}}}`)},
	}

	libs, err := LoadLibraries(fsys, []string{"schemes.json", "rock.json"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(libs) != 2 || libs[0].Name != "schemes.json" || libs[1].Materials["Rock"] == nil {
		t.Fatalf("got %+v", libs)
	}
	if s := libs[0].RenderSchemes["shadow"]; s.Name != "shadow" || !s.CompatibleWithDefault {
		t.Errorf("got scheme %+v", s)
	}

	_, err = LoadLibraries(fsys, []string{"rock.json", "bad.json"}, nil)
	if !errors.Is(err, ErrInvalidLibrary) || !errors.Is(err, config.ErrUnknownVariant) {
		t.Errorf("got %v, expected unknown variant error", err)
	}
	if _, err := LoadLibraries(fsys, []string{"missing.json"}, nil); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, expected missing file error", err)
	}
}

func TestDescriptorPersistence(t *testing.T) {
	ctx := newContext()
	registerMaterial(ctx, "m", technique("", &Pass{Texture: &TextureStateConfig{
		Units: []*TextureUnitConfig{{Texture: "t"}}}}))
	table := CollectDescriptors(ctx, "")

	path := filepath.Join(t.TempDir(), "descriptors.zst")
	if err := SaveDescriptors(path, table); err != nil {
		t.Fatal(err)
	}
	back, err := LoadDescriptors(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Descriptors["m"]) != 1 || !back.Descriptors["m"][0].Equal(table.Descriptors["m"][0]) {
		t.Errorf("got %+v, expected %+v", back.Descriptors, table.Descriptors)
	}
	if back.Compat != table.Compat {
		t.Errorf("capability key: got %+v, expected %+v", back.Compat, table.Compat)
	}
}
