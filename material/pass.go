// material/pass.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"
)

// Pass is one rendering pass of a technique: the state configs that
// determine the render states, bindings that connect them to scope
// variables, and the shader used, if any.
type Pass struct {
	Alpha     *AlphaStateConfig     `json:"alpha,omitempty"`
	Color     *ColorStateConfig     `json:"color,omitempty"`
	ColorMask *ColorMaskStateConfig `json:"color_mask,omitempty"`
	Cull      *CullStateConfig      `json:"cull,omitempty"`
	Depth     *DepthStateConfig     `json:"depth,omitempty"`
	Fog       *FogStateConfig       `json:"fog,omitempty"`
	Light     *LightStateConfig     `json:"light,omitempty"`
	Line      *LineStateConfig      `json:"line,omitempty"`
	Material  *MaterialStateConfig  `json:"material,omitempty"`
	Point     *PointStateConfig     `json:"point,omitempty"`
	Polygon   *PolygonStateConfig   `json:"polygon,omitempty"`
	Shader    *ShaderStateConfig    `json:"shader,omitempty"`
	Stencil   *StencilStateConfig   `json:"stencil,omitempty"`
	Texture   *TextureStateConfig   `json:"texture,omitempty"`

	// IgnoreVertexColors draws the geometry without its color array.
	IgnoreVertexColors bool `json:"ignore_vertex_colors,omitempty"`

	// StaticBindings are applied once, when the pass's states are
	// created; DynamicBindings are applied every frame.
	StaticBindings  Bindings `json:"static_bindings,omitempty"`
	DynamicBindings Bindings `json:"dynamic_bindings,omitempty"`

	descriptor *PassDescriptor
}

// IsSupported reports whether the pass can be rendered with the
// context's capabilities.
func (p *Pass) IsSupported(ctx *render.Context, fallback bool) bool {
	return p.Material.IsSupported(ctx, fallback) && p.Shader.IsSupported(ctx, fallback) &&
		p.Texture.IsSupported(ctx, fallback)
}

// Descriptor returns the geometry requirements of the pass. The result
// is cached until the pass is invalidated.
func (p *Pass) Descriptor(ctx *render.Context) *PassDescriptor {
	if p.descriptor != nil {
		return p.descriptor
	}

	d := &PassDescriptor{
		Colors:  !p.IgnoreVertexColors,
		Normals: p.Light == nil || len(p.Light.Lights) > 0,
	}
	if p.Texture != nil {
		for i, u := range p.Texture.units(ctx) {
			if u == nil {
				continue
			}
			if u.needsTexCoords() {
				d.TexCoordSets = append(d.TexCoordSets, i)
			}
			if u.needsNormals() {
				d.Normals = true
			}
		}
	}
	if p.Shader != nil && ctx.ShadersEnabled() {
		d.VertexAttribs = append(d.VertexAttribs, p.Shader.Attributes...)
	}
	p.descriptor = d
	return d
}

// Invalidate discards cached derived data.
func (p *Pass) Invalidate() {
	p.descriptor = nil
}

// CreateStates builds the complete state set for drawing the pass's
// pidx'th geometry pass. Any per-frame updaters the pass needs are
// appended to updaters.
func (p *Pass) CreateStates(ctx *render.Context, scope render.Scope, geom render.Geometry, pidx int,
	updaters *[]render.Updater) state.Set {
	in := ctx.Interner
	var s state.Set

	if p.Alpha != nil {
		s.Add(p.Alpha.state(in))
	} else {
		s.Add(state.AlphaOpaque)
	}

	if arrays := geom.ArrayState(pidx); arrays != nil {
		if p.IgnoreVertexColors && arrays.Color != nil {
			arrays = &state.ArrayState{
				Vertex:        arrays.Vertex,
				Normal:        arrays.Normal,
				TexCoords:     arrays.TexCoords,
				Attribs:       arrays.Attribs,
				ElementBuffer: arrays.ElementBuffer,
			}
		}
		s.Add(arrays)
	}

	if p.Color != nil {
		s.Add(p.Color.state(in))
	} else {
		s.Add(render.Resolve(scope, render.ColorStateVar, state.ColorWhite))
	}

	if p.ColorMask != nil {
		s.Add(p.ColorMask.state(in))
	} else {
		s.Add(state.ColorMaskAll)
	}

	if p.Cull != nil {
		s.Add(p.Cull.state(in))
	} else {
		s.Add(state.CullBack)
	}

	if p.Depth != nil {
		s.Add(p.Depth.state(in))
	} else {
		s.Add(state.DepthTestWrite)
	}

	if p.Fog != nil {
		s.Add(p.Fog.state(in))
	} else {
		s.Add(render.Resolve(scope, render.FogStateVar, state.FogDisabled))
	}

	if p.Light != nil {
		s.Add(p.Light.state())
	} else {
		s.Add(render.Resolve(scope, render.LightStateVar, state.LightDisabled))
	}

	if p.Line != nil {
		s.Add(in.Line(p.Line.Width))
	} else {
		s.Add(state.LineDefault)
	}

	if p.Material != nil {
		s.Add(p.Material.state(ctx))
	} else {
		s.Add(state.MaterialDefault)
	}

	if p.Point != nil {
		s.Add(in.Point(p.Point.Size))
	} else {
		s.Add(state.PointDefault)
	}

	if p.Polygon != nil {
		s.Add(in.Polygon(p.Polygon.FrontMode, p.Polygon.BackMode, p.Polygon.OffsetFactor, p.Polygon.OffsetUnits))
	} else {
		s.Add(state.PolygonDefault)
	}

	if p.Stencil != nil {
		s.Add(p.Stencil.state(in))
	} else {
		s.Add(state.StencilDisabled)
	}

	if p.Texture != nil {
		s.Add(p.Texture.state(ctx))
	} else {
		s.Add(state.TextureDisabled)
	}

	s.Add(render.Resolve(scope, render.TransformStateVar, state.TransformIdentity))

	for _, b := range p.StaticBindings {
		b.apply(ctx, scope, &s)
	}
	for _, b := range p.DynamicBindings {
		if u := b.updater(ctx, scope, &s); u != nil {
			*updaters = append(*updaters, u)
		}
	}

	// Last, since uniforms may be sourced from the other states.
	if p.Shader != nil && ctx.ShadersEnabled() {
		s.Add(p.Shader.state(ctx, &s, updaters))
	} else {
		s.Add(state.ShaderDisabled)
	}

	return s
}
