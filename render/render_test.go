// render/render_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/clyde3d/clyde/log"
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

type depthBatch struct {
	BatchCommon
	name string
}

func (b *depthBatch) Common() *BatchCommon { return &b.BatchCommon }
func (b *depthBatch) Draw(*Encoder)        {}

func names(bs []Batch) string {
	var n []string
	for _, b := range bs {
		n = append(n, b.(*depthBatch).name)
	}
	return strings.Join(n, "")
}

func TestQueueSort(t *testing.T) {
	mk := func(name string, depth float32, key ...uint64) *depthBatch {
		return &depthBatch{name: name, BatchCommon: BatchCommon{Depth: depth, Key: key}}
	}

	tests := []struct {
		mode     SortMode
		expected string
	}{
		{SortFrontToBack, "xcabd"},
		{SortBackToFront, "xbacd"},
		{SortByState, "xbcad"},
		{SortNone, "xabcd"},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			q := NewQueue("q", 0, tc.mode)
			q.Add(mk("a", -5, 3), 1)
			q.Add(mk("b", -10, 1), 1)
			q.Add(mk("c", -1, 2), 1)
			q.Add(mk("d", -20, 4), 2)
			q.Add(mk("x", -100, 9), 0)
			q.Sort()

			if got := names(q.Batches()); got != tc.expected {
				t.Errorf("got order %s, expected %s", got, tc.expected)
			}
			if p := q.Priorities(); !slices.IsSorted(p) {
				t.Errorf("priorities %v not sorted", p)
			}
		})
	}
}

func TestQueueSortStable(t *testing.T) {
	q := NewQueue("q", 0, SortFrontToBack)
	for _, n := range []string{"a", "b", "c"} {
		q.Add(&depthBatch{name: n}, 0)
	}
	q.Sort()
	if got := names(q.Batches()); got != "abc" {
		t.Errorf("equal batches reordered: %s", got)
	}

	q.Clear()
	if q.Len() != 0 {
		t.Errorf("got %d batches after Clear", q.Len())
	}
}

func TestGroup(t *testing.T) {
	g := NewGroup()

	var qn []string
	for _, q := range g.Queues() {
		qn = append(qn, q.Name)
	}
	if !slices.Equal(qn, []string{OpaqueQueue, TransparentQueue, OverlayQueue}) {
		t.Errorf("got queues %v", qn)
	}
	if g.Queue(OpaqueQueue).Mode != SortFrontToBack || g.Queue(TransparentQueue).Mode != SortBackToFront {
		t.Errorf("unexpected default sort modes")
	}

	custom := g.Queue("Custom")
	if custom.Mode != SortByState || g.Queue("Custom") != custom {
		t.Errorf("Queue did not create a single by-state queue")
	}
	g.AddQueue(NewQueue("Late", 150, SortNone))
	qn = qn[:0]
	for _, q := range g.Queues() {
		qn = append(qn, q.Name)
	}
	if !slices.Equal(qn, []string{OpaqueQueue, "Custom", TransparentQueue, "Late", OverlayQueue}) {
		t.Errorf("got queue order %v", qn)
	}

	g.Queue(OpaqueQueue).Add(&depthBatch{name: "a"}, 0)
	g.Queue(OverlayQueue).Add(&depthBatch{name: "b"}, 0)
	if g.Len() != 2 {
		t.Errorf("got %d batches, expected 2", g.Len())
	}
	g.Clear()
	if g.Len() != 0 {
		t.Errorf("got %d batches after Clear", g.Len())
	}
}

func TestResolve(t *testing.T) {
	root := NewScope("root", nil)
	root.Set("tint", mgl32.Vec4{1, 0, 0, 1})
	root.Set("count", 3)
	child := NewScope("model", root)
	child.Set("count", "three")

	if v := Resolve(child, "tint", mgl32.Vec4{}); v != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("got %v, expected value from parent scope", v)
	}
	if v := Resolve(child, "count", 7); v != 7 {
		t.Errorf("got %d, expected default for mistyped value", v)
	}
	if v := Resolve(root, "count", 7); v != 3 {
		t.Errorf("got %d, expected 3", v)
	}
	if v := Resolve[*state.ColorState](child, ColorStateVar, state.ColorWhite); v != state.ColorWhite {
		t.Errorf("got %v, expected default", v)
	}
	if p := Path(child); !slices.Equal(p, []string{"model", "root"}) {
		t.Errorf("got path %v", p)
	}
}

func TestEncoderEmitsChangedStates(t *testing.T) {
	var cb renderer.CommandBuffer
	enc := NewEncoder(&cb)

	var a state.Set
	a.Add(state.AlphaOpaque)
	a.Add(state.DepthTestWrite)
	b := a
	b.Add(state.CullBack)

	enc.Apply(&a)
	enc.Draw(DrawCommand{Mode: renderer.Triangles, Count: 3})
	enc.Apply(&b)
	enc.Draw(DrawCommand{Mode: renderer.Triangles, Count: 6, Indexed: true})

	expected := []uint32{
		renderer.RendererAlphaFunc, renderer.RendererDisableBlend, renderer.RendererDepthFunc,
		renderer.RendererDrawArrays,
		renderer.RendererCullFace, renderer.RendererDrawElements,
	}
	if cmds := cb.Commands(); !slices.Equal(cmds, expected) {
		t.Errorf("got commands %v, expected %v", cmds, expected)
	}
	if enc.StateChanges != 3 || enc.DrawCalls != 2 {
		t.Errorf("got %d state changes and %d draws, expected 3 and 2", enc.StateChanges, enc.DrawCalls)
	}
}

func TestEncoderDirtyStates(t *testing.T) {
	var cb renderer.CommandBuffer
	enc := NewEncoder(&cb)

	color := state.ColorWhite.Copy()
	tex := &state.TextureState{Units: []*state.TextureUnit{{Texture: &state.Texture{Handle: 1}}}}
	var set state.Set
	set.Add(color)
	set.Add(tex)

	enc.Apply(&set)
	n := len(cb.Commands())
	enc.Apply(&set)
	if len(cb.Commands()) != n {
		t.Errorf("clean states were emitted again")
	}

	color.Color = mgl32.Vec4{1, 0, 0, 1}
	color.SetDirty(true)
	tex.Units[0].SetDirty(true)
	enc.Apply(&set)

	cmds := cb.Commands()[n:]
	if !slices.Contains(cmds, renderer.RendererSetRGBA) || !slices.Contains(cmds, renderer.RendererBindTexture) {
		t.Errorf("dirty states not emitted: %v", cmds)
	}
	if color.Dirty() || tex.Units[0].Dirty() {
		t.Errorf("dirty flags not cleared")
	}
}

func TestEncoderDisablesUnusedTextureUnits(t *testing.T) {
	var cb renderer.CommandBuffer
	enc := NewEncoder(&cb)

	two := &state.TextureState{Units: []*state.TextureUnit{
		{Texture: &state.Texture{Handle: 1}}, {Texture: &state.Texture{Handle: 2}}}}
	var set state.Set
	set.Add(two)
	enc.Apply(&set)

	set.Add(state.TextureDisabled)
	n := len(cb.Commands())
	enc.Apply(&set)
	if cmds := cb.Commands()[n:]; !slices.Equal(cmds, []uint32{renderer.RendererDisableTextureUnit,
		renderer.RendererDisableTextureUnit}) {
		t.Errorf("got %v, expected both units disabled", cmds)
	}
}

func TestBatches(t *testing.T) {
	var s1, s2 state.Set
	s1.Add(state.AlphaOpaque)
	s2.Add(state.AlphaTranslucent)

	b1 := NewSimpleBatch(s1, DrawCommand{Mode: renderer.Points, Count: 1})
	b2 := NewSimpleBatch(s2, DrawCommand{Mode: renderer.Points, Count: 1})
	cb := NewCompoundBatch(b1, b2)
	if !slices.Equal(cb.Key, b1.Key) {
		t.Errorf("compound batch key %v, expected first batch's key %v", cb.Key, b1.Key)
	}

	gb := NewGroupBatch()
	gb.Group.Queue(OpaqueQueue).Add(cb, 0)

	var buf renderer.CommandBuffer
	enc := NewEncoder(&buf)
	gb.Draw(enc)
	if enc.DrawCalls != 2 {
		t.Errorf("got %d draw calls, expected 2", enc.DrawCalls)
	}
}

func TestCompositor(t *testing.T) {
	var c Compositor
	plane := mgl32.Vec4{0, 0, 1, 0}
	c.AddDependency(StencilReflectionDependency{Plane: plane})
	c.AddDependency(StencilReflectionDependency{Plane: plane})
	c.AddDependency(RenderEffectDependency{Effect: "bloom", Priority: 2})
	c.AddDependency(RenderEffectDependency{Effect: "blur", Priority: 1})

	if n := len(c.Dependencies()); n != 3 {
		t.Errorf("got %d dependencies, expected 3", n)
	}
	if fx := c.RenderEffects(); len(fx) != 2 || fx[0].Effect != "blur" {
		t.Errorf("got effects %v, expected blur first", fx)
	}
	if c.SkipColorClear() {
		t.Errorf("unexpected SkipColorClear")
	}
	c.AddDependency(SkipColorClearDependency{})
	if !c.SkipColorClear() {
		t.Errorf("expected SkipColorClear")
	}
	c.Clear()
	if len(c.Dependencies()) != 0 {
		t.Errorf("Clear did not clear")
	}
}

func TestShaderLatch(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(DefaultCaps, nil, log.NewWriter("warn", &buf))
	ctx.Shaders = NewMemoryShaderCache(map[string]string{"a.vert": "", "a.frag": ""})

	if p := ctx.ShaderProgram("a.vert", "a.frag", nil); p == nil {
		t.Fatalf("expected program")
	}
	key := ctx.CapabilityKey()

	if p := ctx.ShaderProgram("b.vert", "a.frag", nil); p != nil {
		t.Errorf("expected nil program for link failure")
	}
	if ctx.ShadersEnabled() {
		t.Errorf("shaders still enabled after link failure")
	}
	if p := ctx.ShaderProgram("a.vert", "a.frag", nil); p != nil {
		t.Errorf("got program after shaders were disabled")
	}
	if ctx.CapabilityKey() == key {
		t.Errorf("capability key did not change")
	}

	ctx.DisableShaders(errors.New("again"))
	if n := strings.Count(buf.String(), "disabling shaders"); n != 1 {
		t.Errorf("got %d warnings, expected 1", n)
	}
}

func TestCompatibilityMode(t *testing.T) {
	ctx := NewContext(DefaultCaps, nil, nil)
	k := ctx.CapabilityKey()
	ctx.SetCompatibilityMode(true)
	if ctx.ShadersEnabled() || ctx.CapabilityKey() == k {
		t.Errorf("compatibility mode did not disable shaders")
	}
	ctx.SetCompatibilityMode(false)
	if ctx.CapabilityKey() != k {
		t.Errorf("capability key not restored")
	}
}

func TestMemoryCaches(t *testing.T) {
	sc := NewMemoryShaderCache(map[string]string{"v": "", "f": ""})
	p1, _ := sc.Program("v", "f", []string{"FOG"})
	p2, _ := sc.Program("v", "f", []string{"FOG"})
	if p1 != p2 {
		t.Errorf("program not cached")
	}
	if sc.UniformLocation(p1, "a") != 0 || sc.UniformLocation(p1, "b") != 1 || sc.UniformLocation(p1, "a") != 0 {
		t.Errorf("unexpected uniform locations")
	}
	if _, err := sc.Program("v", "missing", nil); !errors.Is(err, ErrShaderLink) {
		t.Errorf("got %v, expected ErrShaderLink", err)
	}

	tc := NewMemoryTextureCache()
	if tc.Texture("rock.png", state.Texture2D) != tc.Texture("rock.png", state.Texture2D) {
		t.Errorf("texture not cached")
	}
	if tc.Texture("", state.Texture2D) != nil {
		t.Errorf("expected nil texture for empty name")
	}
}
