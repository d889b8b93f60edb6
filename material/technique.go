// material/technique.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"encoding/json"
	"fmt"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/render"

	"github.com/brunoga/deep"
)

// Technique is one way of rendering a material, for the render scheme
// named by Scheme ("" for the default scheme).
type Technique struct {
	Scheme              string       `json:"scheme,omitempty"`
	ReceivesProjections bool         `json:"receives_projections,omitempty"`
	Dependencies        Dependencies `json:"dependencies,omitempty"`
	Deformer            Deformer     `json:"deformer,omitempty"`
	Enqueuer            Enqueuer     `json:"enqueuer"`

	scheme         *RenderScheme
	schemeResolved bool
}

type techniqueJSON struct {
	Scheme              string          `json:"scheme,omitempty"`
	ReceivesProjections bool            `json:"receives_projections,omitempty"`
	Dependencies        Dependencies    `json:"dependencies,omitempty"`
	Deformer            json.RawMessage `json:"deformer,omitempty"`
	Enqueuer            json.RawMessage `json:"enqueuer"`
}

func (t Technique) MarshalJSON() ([]byte, error) {
	j := techniqueJSON{
		Scheme:              t.Scheme,
		ReceivesProjections: t.ReceivesProjections,
		Dependencies:        t.Dependencies,
	}
	var err error
	if t.Deformer != nil {
		if j.Deformer, err = deformerVariants.Encode(t.Deformer); err != nil {
			return nil, err
		}
	}
	if t.Enqueuer != nil {
		if j.Enqueuer, err = enqueuerVariants.Encode(t.Enqueuer); err != nil {
			return nil, err
		}
	}
	return json.Marshal(j)
}

func (t *Technique) UnmarshalJSON(data []byte) error {
	var j techniqueJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if len(j.Enqueuer) == 0 || string(j.Enqueuer) == "null" {
		return ErrNoEnqueuer
	}

	enq, err := enqueuerVariants.Decode(j.Enqueuer)
	if err != nil {
		return fmt.Errorf("enqueuer: %w", err)
	}
	def, err := decodeDeformer(j.Deformer)
	if err != nil {
		return fmt.Errorf("deformer: %w", err)
	}

	*t = Technique{
		Scheme:              j.Scheme,
		ReceivesProjections: j.ReceivesProjections,
		Dependencies:        j.Dependencies,
		Deformer:            def,
		Enqueuer:            enq,
	}
	return nil
}

// SchemeConfig returns the render scheme the technique is for, or nil for
// the default scheme or an unknown one. The result is cached until the
// technique is invalidated.
func (t *Technique) SchemeConfig(ctx *render.Context) *RenderScheme {
	if !t.schemeResolved {
		t.scheme = lookupScheme(ctx, t.Scheme)
		t.schemeResolved = true
	}
	return t.scheme
}

func lookupScheme(ctx *render.Context, name string) *RenderScheme {
	if name == "" {
		return nil
	}
	return config.Resolve[*RenderScheme](ctx.Configs, config.KindRenderScheme, name)
}

// IsSupported reports whether the technique can be rendered with the
// context's capabilities. With fallback, reduced-quality renditions are
// acceptable.
func (t *Technique) IsSupported(ctx *render.Context, fallback bool) bool {
	if t.Enqueuer == nil || !t.Enqueuer.isSupported(ctx, fallback) {
		return false
	}
	for _, d := range t.Dependencies {
		if !d.isSupported(ctx) {
			return false
		}
	}
	return true
}

// Process returns the technique to use in place of t given the context's
// capabilities, or nil if it can't be used.
func (t *Technique) Process(ctx *render.Context, fallback bool) *Technique {
	if t.IsSupported(ctx, fallback) {
		return t
	}
	return nil
}

// Descriptors returns the geometry requirements of each of the
// technique's passes, in the order that geometry passes are consumed.
func (t *Technique) Descriptors(ctx *render.Context) []*PassDescriptor {
	if t.Enqueuer == nil {
		return nil
	}
	return t.Enqueuer.descriptors(ctx, nil)
}

// CreateEnqueueable returns an object that adds batches for geom, drawn
// with this technique, to target each time it's enqueued. If update is
// set, the geometry is updated first.
func (t *Technique) CreateEnqueueable(ctx *render.Context, target *render.Group, scope render.Scope,
	geom render.Geometry, update bool) render.Enqueueable {
	if t.Enqueuer == nil {
		return nil
	}
	if t.Deformer != nil {
		geom = t.Deformer.deform(ctx, scope, geom)
		update = true
	}

	pidx := 0
	e := t.Enqueuer.createEnqueueable(ctx, target, scope, geom, update, &pidx)
	if e == nil || len(t.Dependencies) == 0 {
		return e
	}

	de := &dependentEnqueueable{Enqueueable: e, compositor: ctx.Compositor}
	for _, d := range t.Dependencies {
		de.deps = append(de.deps, d.dependency())
	}
	return de
}

// Invalidate discards cached derived data.
func (t *Technique) Invalidate() {
	t.scheme = nil
	t.schemeResolved = false
	if t.Enqueuer != nil {
		t.Enqueuer.invalidate()
	}
}

// Clone returns a deep copy of the technique.
func (t *Technique) Clone() *Technique {
	c := deep.MustCopy(t)
	c.Invalidate()
	return c
}
