// material/material.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"fmt"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/util"
)

// Material is a named, configurable appearance. It is either an original
// material, with its own list of techniques, or derived from another
// material.
type Material struct {
	Name           string
	Implementation Implementation
}

// Implementation is either *Original or *Derived.
type Implementation interface {
	isImplementation()
}

var implementationVariants = config.Variants[Implementation]{
	"original": func() Implementation { return &Original{} },
	"derived":  func() Implementation { return &Derived{} },
}

// Original holds a material's techniques, in order of preference.
type Original struct {
	Techniques []*Technique `json:"techniques"`

	// Processed technique lists, by capability settings. Techniques
	// created by rewriting are appended to these.
	processed *util.SoftCache[render.CapabilityKey, *[]*Technique]
}

// Derived uses the techniques of the named material.
type Derived struct {
	Material string `json:"material"`
}

func (*Original) isImplementation() {}
func (*Derived) isImplementation()  {}

func (m Material) MarshalJSON() ([]byte, error) {
	if m.Implementation == nil {
		return nil, fmt.Errorf("%s: %w", m.Name, ErrNoImplementation)
	}
	return implementationVariants.Encode(m.Implementation)
}

func (m *Material) UnmarshalJSON(data []byte) error {
	impl, err := implementationVariants.Decode(data)
	if err != nil {
		return err
	}
	m.Implementation = impl
	return nil
}

func (m *Material) CheckJSON(json any) bool {
	_, ok := json.(map[string]any)
	return ok
}

// Original returns the original material that m is or is derived from. It
// returns nil if the chain of derivations is broken or circular.
func (m *Material) Original(ctx *render.Context) *Material {
	om, err := config.Chase(ctx.Configs, config.KindMaterial, m, func(c *Material) (string, bool) {
		if d, ok := c.Implementation.(*Derived); ok {
			return d.Material, true
		}
		return "", false
	})
	if err != nil {
		ctx.Logger().WarnOnce("material/"+m.Name, "material derivation", "material", m.Name, "error", err)
		return nil
	}
	if _, ok := om.Implementation.(*Original); !ok {
		ctx.Logger().WarnOnce("material/"+m.Name, "material derivation", "material", m.Name,
			"error", ErrNoImplementation)
		return nil
	}
	return om
}

// processedTechniques returns the techniques of o that can be used with
// the context's current capabilities: first the supported ones, then
// reduced-quality fallbacks for the rest.
func (o *Original) processedTechniques(ctx *render.Context) *[]*Technique {
	if o.processed == nil {
		o.processed = util.NewSoftCache[render.CapabilityKey, *[]*Technique](4, ctx.Memory)
	}
	return o.processed.Get(ctx.CapabilityKey(), func() *[]*Technique {
		var primary, fallback []*Technique
		for _, t := range o.Techniques {
			if p := t.Process(ctx, false); p != nil {
				primary = append(primary, p)
			} else if p := t.Process(ctx, true); p != nil {
				fallback = append(fallback, p)
			}
		}
		techs := append(primary, fallback...)
		return &techs
	})
}

// GetTechnique returns the technique to use to render the material with
// the named render scheme ("" for the default scheme), or nil if there is
// none. Techniques written for the scheme are preferred, then ones of
// compatible schemes; otherwise, if the scheme has a rewriter, a default
// technique is rewritten for it and remembered.
func (m *Material) GetTechnique(ctx *render.Context, scheme string) *Technique {
	om := m.Original(ctx)
	if om == nil {
		return nil
	}
	techs := om.Implementation.(*Original).processedTechniques(ctx)

	for _, t := range *techs {
		if t.Scheme == scheme {
			return t
		}
	}

	sc := lookupScheme(ctx, scheme)
	for _, t := range *techs {
		tc := t.SchemeConfig(ctx)
		if sc == nil {
			if tc == nil || tc.IsCompatibleWith(nil) {
				return t
			}
		} else if sc.IsCompatibleWith(tc) {
			return t
		}
	}

	if sc != nil && sc.Rewriter != nil {
		for _, t := range *techs {
			if tc := t.SchemeConfig(ctx); tc == nil || tc.IsCompatibleWith(nil) {
				r := Rewrite(ctx, sc.Rewriter, t)
				r.Scheme = scheme
				r.Invalidate()
				*techs = append(*techs, r)
				return r
			}
		}
	}

	return nil
}

// Invalidate discards the material's processed techniques and cached
// data; it's called when the material or anything it depends on changes.
func (m *Material) Invalidate() {
	if o, ok := m.Implementation.(*Original); ok {
		if o.processed != nil {
			o.processed.Invalidate()
		}
		for _, t := range o.Techniques {
			t.Invalidate()
		}
	}
}

func (m *Material) ConfigUpdated(e config.Event) {
	m.Invalidate()
}

// DependsOn returns the kinds of configs whose changes invalidate
// materials.
func (m *Material) DependsOn() []config.Kind {
	return []config.Kind{config.KindMaterial, config.KindRenderScheme, config.KindEnqueuer}
}
