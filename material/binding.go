// material/binding.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"

	"github.com/go-gl/mathgl/mgl32"
)

// Binding connects a pass's states to values found in the scope. A
// binding in a pass's static bindings is applied once, when the states
// are created; in the dynamic bindings, it's applied every frame.
type Binding interface {
	apply(ctx *render.Context, scope render.Scope, states *state.Set)
	updater(ctx *render.Context, scope render.Scope, states *state.Set) render.Updater
}

var bindingVariants = config.Variants[Binding]{
	"color":         func() Binding { return &ColorBinding{} },
	"alpha_test":    func() Binding { return &AlphaTestBinding{} },
	"tex_gen_plane": func() Binding { return &TexGenPlaneBinding{} },
	"texture_dirty": func() Binding { return &TextureDirtyBinding{} },
}

type Bindings []Binding

func (b Bindings) MarshalJSON() ([]byte, error) {
	return bindingVariants.EncodeSlice(b)
}

func (b *Bindings) UnmarshalJSON(data []byte) error {
	s, err := bindingVariants.DecodeSlice(data)
	if err == nil {
		*b = s
	}
	return err
}

///////////////////////////////////////////////////////////////////////////

// ColorBinding sets the pass's color from a scope variable holding either
// an mgl32.Vec4 or a *state.ColorState.
type ColorBinding struct {
	Variable string `json:"variable"`
}

func (b *ColorBinding) value(scope render.Scope) (mgl32.Vec4, bool) {
	switch v := render.Resolve[any](scope, b.Variable, nil).(type) {
	case mgl32.Vec4:
		return v, true
	case *mgl32.Vec4:
		if v != nil {
			return *v, true
		}
	case *state.ColorState:
		if v != nil {
			return v.Color, true
		}
	}
	return mgl32.Vec4{}, false
}

func (b *ColorBinding) apply(ctx *render.Context, scope render.Scope, states *state.Set) {
	if c, ok := b.value(scope); ok {
		states.Add(ctx.Interner.Color(c))
	}
}

func (b *ColorBinding) updater(ctx *render.Context, scope render.Scope, states *state.Set) render.Updater {
	cs := &state.ColorState{Color: state.ColorWhite.Color}
	if cur, ok := states[state.ColorType].(*state.ColorState); ok && cur != nil {
		cs = cur.Copy()
	}
	states.Add(cs)
	return &colorUpdater{binding: b, scope: scope, state: cs}
}

type colorUpdater struct {
	binding *ColorBinding
	scope   render.Scope
	state   *state.ColorState
}

func (u *colorUpdater) Update() {
	if c, ok := u.binding.value(u.scope); ok && c != u.state.Color {
		u.state.Color = c
		u.state.SetDirty(true)
	}
}

///////////////////////////////////////////////////////////////////////////

// AlphaTestBinding sets the alpha test reference value from a float32
// scope variable.
type AlphaTestBinding struct {
	Variable string `json:"variable"`
}

func (b *AlphaTestBinding) value(scope render.Scope) (float32, bool) {
	switch v := render.Resolve[any](scope, b.Variable, nil).(type) {
	case float32:
		return v, true
	case *float32:
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func currentAlpha(states *state.Set) state.AlphaState {
	if a, ok := states[state.AlphaType].(*state.AlphaState); ok && a != nil {
		return state.AlphaState{TestFunc: a.TestFunc, TestRef: a.TestRef, SrcBlend: a.SrcBlend, DestBlend: a.DestBlend}
	}
	return state.AlphaState{TestFunc: state.CompareGreater, SrcBlend: state.BlendOne, DestBlend: state.BlendZero}
}

func (b *AlphaTestBinding) apply(ctx *render.Context, scope render.Scope, states *state.Set) {
	if ref, ok := b.value(scope); ok {
		a := currentAlpha(states)
		a.TestRef = ref
		states.Add(ctx.Interner.Alpha(a))
	}
}

func (b *AlphaTestBinding) updater(ctx *render.Context, scope render.Scope, states *state.Set) render.Updater {
	a := currentAlpha(states)
	as := &a
	states.Add(as)
	return &alphaTestUpdater{binding: b, scope: scope, state: as}
}

type alphaTestUpdater struct {
	binding *AlphaTestBinding
	scope   render.Scope
	state   *state.AlphaState
}

func (u *alphaTestUpdater) Update() {
	if ref, ok := u.binding.value(u.scope); ok && ref != u.state.TestRef {
		u.state.TestRef = ref
		u.state.SetDirty(true)
	}
}

///////////////////////////////////////////////////////////////////////////

// TexGenPlaneBinding sets the coordinate generation planes of a texture
// unit from scope variables, one per s/t/r/q axis; axes with an empty
// variable name are left alone. A variable holding a *mgl32.Vec4 is
// aliased, so later changes to it are seen when the unit is next applied.
type TexGenPlaneBinding struct {
	Unit      int       `json:"unit"`
	Variables [4]string `json:"variables"`
}

func textureUnit(states *state.Set, unit int) *state.TextureUnit {
	ts, ok := states[state.TextureType].(*state.TextureState)
	if !ok || ts == nil || unit < 0 || unit >= len(ts.Units) {
		return nil
	}
	return ts.Units[unit]
}

// privateTextureState makes sure the set's texture state isn't one of the
// shared constants before it's modified.
func privateTextureState(states *state.Set) {
	if ts, ok := states[state.TextureType].(*state.TextureState); ok && ts == state.TextureDisabled {
		states.Add(ts.Copy())
	}
}

func (b *TexGenPlaneBinding) apply(ctx *render.Context, scope render.Scope, states *state.Set) {
	privateTextureState(states)
	u := textureUnit(states, b.Unit)
	if u == nil {
		return
	}
	planes := u.GenPlanes()
	for axis, name := range b.Variables {
		if name == "" {
			continue
		}
		switch v := render.Resolve[any](scope, name, nil).(type) {
		case mgl32.Vec4:
			*planes[axis] = v
		case *mgl32.Vec4:
			u.PlaneSources[axis] = v
		}
	}
	u.SetDirty(true)
}

func (b *TexGenPlaneBinding) updater(ctx *render.Context, scope render.Scope, states *state.Set) render.Updater {
	privateTextureState(states)
	u := textureUnit(states, b.Unit)
	if u == nil {
		return nil
	}
	return &texGenPlaneUpdater{binding: b, scope: scope, unit: u}
}

type texGenPlaneUpdater struct {
	binding *TexGenPlaneBinding
	scope   render.Scope
	unit    *state.TextureUnit
}

func (up *texGenPlaneUpdater) Update() {
	planes := up.unit.GenPlanes()
	for axis, name := range up.binding.Variables {
		if name == "" {
			continue
		}
		var v mgl32.Vec4
		switch p := render.Resolve[any](up.scope, name, nil).(type) {
		case mgl32.Vec4:
			v = p
		case *mgl32.Vec4:
			if p == nil {
				continue
			}
			v = *p
		default:
			continue
		}
		if *planes[axis] != v {
			*planes[axis] = v
			up.unit.SetDirty(true)
		}
	}
}

///////////////////////////////////////////////////////////////////////////

// TextureDirtyBinding marks a texture unit as needing to be reapplied
// every frame; it's paired with aliased texture generation planes whose
// values may change without the texture state knowing.
type TextureDirtyBinding struct {
	Unit int `json:"unit"`
}

func (b *TextureDirtyBinding) apply(ctx *render.Context, scope render.Scope, states *state.Set) {
	if u := textureUnit(states, b.Unit); u != nil {
		u.SetDirty(true)
	}
}

func (b *TextureDirtyBinding) updater(ctx *render.Context, scope render.Scope, states *state.Set) render.Updater {
	if u := textureUnit(states, b.Unit); u != nil {
		return textureDirtyUpdater{unit: u}
	}
	return nil
}

type textureDirtyUpdater struct {
	unit *state.TextureUnit
}

func (u textureDirtyUpdater) Update() {
	u.unit.SetDirty(true)
}
