// render/encoder.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// Encoder translates batches into commands in a CommandBuffer. It tracks
// the states that are currently in effect so that only states that have
// changed, or that were modified in place and marked dirty, are emitted.
type Encoder struct {
	cb      *renderer.CommandBuffer
	current state.Set
	// Number of texture units enabled by the last texture state.
	texUnits int

	StateChanges int
	DrawCalls    int
}

func NewEncoder(cb *renderer.CommandBuffer) *Encoder {
	return &Encoder{cb: cb}
}

func (e *Encoder) CommandBuffer() *renderer.CommandBuffer {
	return e.cb
}

// Reset forgets the current states and resets the renderer's state.
func (e *Encoder) Reset() {
	e.current = state.Set{}
	e.texUnits = 0
	e.cb.ResetState()
}

// Apply makes the given states current. Empty slots leave the current
// state in place.
func (e *Encoder) Apply(set *state.Set) {
	for i, s := range set {
		if state.IsNil(s) {
			continue
		}
		if s == e.current[i] && !dirty(s) {
			continue
		}
		e.emit(s)
		clean(s)
		e.current[i] = s
		e.StateChanges++
	}
}

func dirty(s state.RenderState) bool {
	if s.Dirty() {
		return true
	}
	if ts, ok := s.(*state.TextureState); ok {
		for _, u := range ts.Units {
			if u != nil && u.Dirty() {
				return true
			}
		}
	}
	return false
}

func clean(s state.RenderState) {
	s.SetDirty(false)
	if ts, ok := s.(*state.TextureState); ok {
		for _, u := range ts.Units {
			if u != nil {
				u.SetDirty(false)
			}
		}
	}
}

func (e *Encoder) Draw(cmd DrawCommand) {
	if cmd.Indexed {
		e.cb.DrawElements(cmd.Mode, int(cmd.Count), 4*int(cmd.First))
	} else {
		e.cb.DrawArrays(cmd.Mode, int(cmd.First), int(cmd.Count))
	}
	e.DrawCalls++
}

func (e *Encoder) emit(s state.RenderState) {
	cb := e.cb
	switch s := s.(type) {
	case *state.AlphaState:
		cb.AlphaFunc(s.TestFunc, s.TestRef)
		if s.Blending() {
			cb.BlendFunc(s.SrcBlend, s.DestBlend)
		} else {
			cb.DisableBlend()
		}

	case *state.ArrayState:
		cb.DisableArrays()
		if s.Vertex != nil {
			cb.VertexArray(s.Vertex)
		}
		if s.Normal != nil {
			cb.NormalArray(s.Normal)
		}
		if s.Color != nil {
			cb.ColorArray(s.Color)
		}
		for i, tc := range s.TexCoords {
			if tc != nil {
				cb.TexCoordArray(i, tc)
			}
		}
		// Generic attributes (s.Attribs) are bound by the shader state's
		// program rather than the fixed-function arrays.
		cb.ElementBuffer(s.ElementBuffer)

	case *state.ColorState:
		cb.SetRGBA(s.Color)

	case *state.ColorMaskState:
		cb.ColorMask(s.Red, s.Green, s.Blue, s.Alpha)

	case *state.CullState:
		cb.CullFace(s.Face)

	case *state.DepthState:
		cb.DepthFunc(s.TestFunc, s.Mask)

	case *state.FogState:
		cb.Fog(s.Mode, s.Density, s.Start, s.End, s.Color)

	case *state.LightState:
		cb.LightModel(len(s.Lights), s.GlobalAmbient)
		for i, l := range s.Lights {
			cb.Light(i, l)
		}

	case *state.LineState:
		cb.LineWidth(s.Width)

	case *state.MaterialState:
		cb.Material(s)

	case *state.PointState:
		cb.PointSize(s.Size)

	case *state.PolygonState:
		cb.PolygonMode(s.FrontMode, s.BackMode, s.OffsetFactor, s.OffsetUnits)

	case *state.ShaderState:
		if s.Program == nil {
			cb.UseProgram(0)
			break
		}
		cb.UseProgram(s.Program.Handle)
		for _, u := range s.Uniforms {
			cb.Uniform(u)
		}

	case *state.StencilState:
		if s.Enabled() {
			cb.Stencil(s)
		} else {
			cb.DisableStencil()
		}

	case *state.TextureState:
		for i, u := range s.Units {
			if u == nil || u.Texture == nil {
				cb.DisableTextureUnit(i)
				continue
			}
			cb.BindTexture(i, u.Texture, u.EnvMode)
			modes := [4]state.TexGenMode{u.GenModeS, u.GenModeT, u.GenModeR, u.GenModeQ}
			for axis, mode := range modes {
				cb.TexGen(i, axis, mode, u.Plane(axis))
			}
			if u.Transform == (mgl32.Mat4{}) {
				cb.TextureMatrix(i, mgl32.Ident4())
			} else {
				cb.TextureMatrix(i, u.Transform)
			}
		}
		for i := len(s.Units); i < e.texUnits; i++ {
			cb.DisableTextureUnit(i)
		}
		e.texUnits = len(s.Units)

	case *state.TransformState:
		cb.LoadModelViewMatrix(s.Modelview)
	}
}
