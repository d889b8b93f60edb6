// material/rewriter.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"fmt"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"

	"github.com/brunoga/deep"
)

// Rewriter derives a technique for a render scheme from a technique of
// the default scheme. Rewriters never modify the technique they're given.
type Rewriter interface {
	rewriteHooks
}

// rewriteHooks are called for each part of a technique as it's walked;
// each returns the (possibly modified) part. Configs that a pass leaves
// at their defaults are passed as nil.
type rewriteHooks interface {
	alpha(c *AlphaStateConfig) *AlphaStateConfig
	depth(c *DepthStateConfig) *DepthStateConfig
	texture(c *TextureStateConfig) *TextureStateConfig
	pass(p *Pass) *Pass
	queue(q string) string
}

var rewriterVariants = config.Variants[Rewriter]{
	"depth_only":  func() Rewriter { return &DepthOnlyRewriter{} },
	"translucent": func() Rewriter { return &TranslucentRewriter{} },
	"projection":  func() Rewriter { return &ProjectionRewriter{} },
}

// Rewrite returns a rewritten copy of t.
func Rewrite(ctx *render.Context, r Rewriter, t *Technique) *Technique {
	c := t.Clone()
	c.Enqueuer = rewriteEnqueuer(ctx, r, c.Enqueuer)
	c.Invalidate()
	return c
}

func rewriteEnqueuer(ctx *render.Context, r Rewriter, e Enqueuer) Enqueuer {
	switch e := e.(type) {
	case nil:
		return nil

	case *NormalEnqueuer:
		for i, p := range e.Passes {
			e.Passes[i] = rewritePass(r, p)
		}
		e.Queue = r.queue(e.queue())
		return e

	case *CompoundEnqueuer:
		for i, sub := range e.Enqueuers {
			e.Enqueuers[i] = rewriteEnqueuer(ctx, r, sub)
		}
		return e

	case *GroupedEnqueuer:
		for i, sub := range e.Enqueuers {
			e.Enqueuers[i] = rewriteEnqueuer(ctx, r, sub)
		}
		e.Queue = r.queue(e.queue())
		return e

	case *WrapperEnqueuer:
		// The shared enqueuer is copied into the technique so that the
		// original stays untouched.
		target, err := e.Resolve(ctx)
		if err != nil {
			ctx.Logger().Warnf("rewrite: %v", err)
			return e
		}
		return rewriteEnqueuer(ctx, r, deep.MustCopy(target))

	default:
		panic(fmt.Sprintf("%T: unhandled enqueuer type", e))
	}
}

func rewritePass(r Rewriter, p *Pass) *Pass {
	p.Alpha = r.alpha(p.Alpha)
	p.Depth = r.depth(p.Depth)
	p.Texture = r.texture(p.Texture)
	p = r.pass(p)
	p.Invalidate()
	return p
}

// identityRewriter leaves everything as it is; rewriters embed it and
// override the hooks they need.
type identityRewriter struct{}

func (identityRewriter) alpha(c *AlphaStateConfig) *AlphaStateConfig       { return c }
func (identityRewriter) depth(c *DepthStateConfig) *DepthStateConfig       { return c }
func (identityRewriter) texture(c *TextureStateConfig) *TextureStateConfig { return c }
func (identityRewriter) pass(p *Pass) *Pass                                { return p }
func (identityRewriter) queue(q string) string                             { return q }

///////////////////////////////////////////////////////////////////////////
// DepthOnlyRewriter

// DepthOnlyRewriter produces techniques that only write depth, keeping
// alpha testing (and the textures it needs) so that cut-outs work.
type DepthOnlyRewriter struct {
	identityRewriter
}

func (DepthOnlyRewriter) alpha(c *AlphaStateConfig) *AlphaStateConfig {
	if !c.AlphaTest() {
		return nil
	}
	return &AlphaStateConfig{TestFunc: c.TestFunc, TestRef: c.TestRef, SrcBlend: state.BlendOne,
		DestBlend: state.BlendZero}
}

func (DepthOnlyRewriter) depth(c *DepthStateConfig) *DepthStateConfig {
	return DefaultDepthConfig()
}

func (DepthOnlyRewriter) pass(p *Pass) *Pass {
	p.ColorMask = &ColorMaskStateConfig{}
	if !p.Alpha.AlphaTest() {
		p.Texture = nil
	}
	p.Fog = nil
	p.Light = &LightStateConfig{}
	p.Material = nil
	return p
}

///////////////////////////////////////////////////////////////////////////
// TranslucentRewriter

// TranslucentRewriter produces techniques that blend into the frame and
// are drawn with the other transparent objects.
type TranslucentRewriter struct {
	identityRewriter
}

func (TranslucentRewriter) alpha(c *AlphaStateConfig) *AlphaStateConfig {
	if c == nil {
		c = DefaultAlphaConfig()
	}
	c.TestFunc = state.CompareAlways
	if c.DestBlend == state.BlendZero {
		c.DestBlend = state.BlendOneMinusSrcAlpha
	}
	return c
}

func (TranslucentRewriter) depth(c *DepthStateConfig) *DepthStateConfig {
	if c == nil {
		c = DefaultDepthConfig()
	}
	c.Mask = false
	return c
}

func (TranslucentRewriter) queue(q string) string {
	if q == render.OpaqueQueue {
		return render.TransparentQueue
	}
	return q
}

///////////////////////////////////////////////////////////////////////////
// ProjectionRewriter

// ProjectionRewriter produces techniques that project a texture onto the
// geometry (e.g. for decals or light cookies). The texture coordinates
// are generated in eye space from the planes found in the scope
// variables named by Variables.
type ProjectionRewriter struct {
	identityRewriter
	Texture   string    `json:"texture"`
	Variables [4]string `json:"variables"`
}

func (ProjectionRewriter) alpha(c *AlphaStateConfig) *AlphaStateConfig {
	return &AlphaStateConfig{TestFunc: state.CompareAlways, SrcBlend: state.BlendSrcAlpha,
		DestBlend: state.BlendOneMinusSrcAlpha}
}

func (ProjectionRewriter) depth(c *DepthStateConfig) *DepthStateConfig {
	return &DepthStateConfig{TestFunc: state.CompareLessEqual}
}

func (r ProjectionRewriter) texture(c *TextureStateConfig) *TextureStateConfig {
	eye := func() *TexGenConfig { return &TexGenConfig{Mode: state.TexGenEyeLinear} }
	return &TextureStateConfig{Units: []*TextureUnitConfig{{
		Texture: r.Texture,
		EnvMode: state.TexEnvModulate,
		GenS:    eye(),
		GenT:    eye(),
		GenR:    eye(),
		GenQ:    eye(),
	}}}
}

func (r ProjectionRewriter) pass(p *Pass) *Pass {
	if p.Texture == nil {
		return p
	}
	for i, u := range p.Texture.Units {
		if u != nil && u.GenEnabled() {
			p.StaticBindings = append(p.StaticBindings, &TexGenPlaneBinding{Unit: i, Variables: r.Variables})
			p.DynamicBindings = append(p.DynamicBindings, &TextureDirtyBinding{Unit: i})
		}
	}
	return p
}
