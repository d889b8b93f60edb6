// material/enqueuer.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"fmt"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/math"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"
)

// Enqueuer describes how a technique's passes are turned into batches and
// which render queues they go into.
type Enqueuer interface {
	isSupported(ctx *render.Context, fallback bool) bool
	// descriptors appends the descriptors of the enqueuer's passes, in the
	// order in which createEnqueueable consumes geometry passes.
	descriptors(ctx *render.Context, d []*PassDescriptor) []*PassDescriptor
	// createEnqueueable returns an object that adds batches to target
	// each time it's enqueued. Only an enqueuer given update==true
	// updates the geometry. pidx is the index of the next geometry pass.
	createEnqueueable(ctx *render.Context, target *render.Group, scope render.Scope, geom render.Geometry,
		update bool, pidx *int) render.Enqueueable
	invalidate()
}

var enqueuerVariants = config.Variants[Enqueuer]{
	"normal":   func() Enqueuer { return &NormalEnqueuer{} },
	"compound": func() Enqueuer { return &CompoundEnqueuer{} },
	"grouped":  func() Enqueuer { return &GroupedEnqueuer{} },
	"wrapper":  func() Enqueuer { return &WrapperEnqueuer{} },
}

type Enqueuers []Enqueuer

func (e Enqueuers) MarshalJSON() ([]byte, error) {
	return enqueuerVariants.EncodeSlice(e)
}

func (e *Enqueuers) UnmarshalJSON(data []byte) error {
	s, err := enqueuerVariants.DecodeSlice(data)
	if err == nil {
		*e = s
	}
	return err
}

// SharedEnqueuer holds an enqueuer that techniques refer to by name
// through a WrapperEnqueuer.
type SharedEnqueuer struct {
	Enqueuer
}

func (s SharedEnqueuer) MarshalJSON() ([]byte, error) {
	return enqueuerVariants.Encode(s.Enqueuer)
}

func (s *SharedEnqueuer) UnmarshalJSON(data []byte) error {
	e, err := enqueuerVariants.Decode(data)
	if err == nil {
		s.Enqueuer = e
	}
	return err
}

func (s *SharedEnqueuer) CheckJSON(json any) bool {
	_, ok := json.(map[string]any)
	return ok
}

// batchUpdater is run when a batch is enqueued; it updates the geometry
// (if this enqueuer owns the update) and then the passes' dynamic state.
type batchUpdater struct {
	geom     render.Geometry
	update   bool
	updaters render.Updaters
}

func (u *batchUpdater) run() {
	if u.update && u.geom.RequiresUpdate() {
		u.geom.Update()
	}
	u.updaters.Update()
}

///////////////////////////////////////////////////////////////////////////
// NormalEnqueuer

// NormalEnqueuer draws each of its passes as a batch in a single queue.
type NormalEnqueuer struct {
	// Queue names the target queue; Opaque if empty.
	Queue    string  `json:"queue,omitempty"`
	Priority int     `json:"priority,omitempty"`
	Passes   []*Pass `json:"passes"`
}

func (e *NormalEnqueuer) queue() string {
	if e.Queue == "" {
		return render.OpaqueQueue
	}
	return e.Queue
}

func (e *NormalEnqueuer) isSupported(ctx *render.Context, fallback bool) bool {
	for _, p := range e.Passes {
		if !p.IsSupported(ctx, fallback) {
			return false
		}
	}
	return true
}

func (e *NormalEnqueuer) descriptors(ctx *render.Context, d []*PassDescriptor) []*PassDescriptor {
	for _, p := range e.Passes {
		d = append(d, p.Descriptor(ctx))
	}
	return d
}

func (e *NormalEnqueuer) createEnqueueable(ctx *render.Context, target *render.Group, scope render.Scope,
	geom render.Geometry, update bool, pidx *int) render.Enqueueable {
	if len(e.Passes) == 0 {
		return nil
	}

	up := &batchUpdater{geom: geom, update: update}
	var batches []render.Batch
	var transform *state.TransformState
	for _, p := range e.Passes {
		var updaters []render.Updater
		states := p.CreateStates(ctx, scope, geom, *pidx, &updaters)
		up.updaters = append(up.updaters, updaters...)
		if transform == nil {
			transform, _ = states[state.TransformType].(*state.TransformState)
		}
		batches = append(batches, render.NewSimpleBatch(states, geom.DrawCommand(*pidx)))
		*pidx++
	}
	if transform == nil {
		transform = state.TransformIdentity
	}

	var batch render.Batch
	if len(batches) == 1 {
		batch = batches[0]
	} else {
		batch = render.NewCompoundBatch(batches...)
	}

	return &normalEnqueueable{
		target:    target,
		queue:     e.queue(),
		priority:  e.Priority,
		batch:     batch,
		geom:      geom,
		transform: transform,
		updater:   up,
	}
}

func (e *NormalEnqueuer) invalidate() {
	for _, p := range e.Passes {
		p.Invalidate()
	}
}

type normalEnqueueable struct {
	target    *render.Group
	queue     string
	priority  int
	batch     render.Batch
	geom      render.Geometry
	transform *state.TransformState
	updater   *batchUpdater
}

func (n *normalEnqueueable) Enqueue() {
	n.updater.run()
	n.batch.Common().Depth = math.TransformPointZ(n.transform.Modelview, n.geom.Center())
	n.target.Queue(n.queue).Add(n.batch, n.priority)
}

///////////////////////////////////////////////////////////////////////////
// CompoundEnqueuer

// CompoundEnqueuer runs several enqueuers over consecutive geometry
// passes.
type CompoundEnqueuer struct {
	Enqueuers Enqueuers `json:"enqueuers"`
}

func (e *CompoundEnqueuer) isSupported(ctx *render.Context, fallback bool) bool {
	for _, sub := range e.Enqueuers {
		if !sub.isSupported(ctx, fallback) {
			return false
		}
	}
	return true
}

func (e *CompoundEnqueuer) descriptors(ctx *render.Context, d []*PassDescriptor) []*PassDescriptor {
	for _, sub := range e.Enqueuers {
		d = sub.descriptors(ctx, d)
	}
	return d
}

func (e *CompoundEnqueuer) createEnqueueable(ctx *render.Context, target *render.Group, scope render.Scope,
	geom render.Geometry, update bool, pidx *int) render.Enqueueable {
	var en render.Enqueueables
	for i, sub := range e.Enqueuers {
		if s := sub.createEnqueueable(ctx, target, scope, geom, update && i == 0, pidx); s != nil {
			en = append(en, s)
		}
	}
	switch len(en) {
	case 0:
		return nil
	case 1:
		return en[0]
	default:
		return en
	}
}

func (e *CompoundEnqueuer) invalidate() {
	for _, sub := range e.Enqueuers {
		sub.invalidate()
	}
}

///////////////////////////////////////////////////////////////////////////
// GroupedEnqueuer

// GroupedEnqueuer collects the batches of its enqueuers into a nested
// group that is drawn as a single batch of the named queue.
type GroupedEnqueuer struct {
	Queue     string    `json:"queue,omitempty"`
	Priority  int       `json:"priority,omitempty"`
	Enqueuers Enqueuers `json:"enqueuers"`
}

func (e *GroupedEnqueuer) queue() string {
	if e.Queue == "" {
		return render.OpaqueQueue
	}
	return e.Queue
}

func (e *GroupedEnqueuer) isSupported(ctx *render.Context, fallback bool) bool {
	return (&CompoundEnqueuer{Enqueuers: e.Enqueuers}).isSupported(ctx, fallback)
}

func (e *GroupedEnqueuer) descriptors(ctx *render.Context, d []*PassDescriptor) []*PassDescriptor {
	return (&CompoundEnqueuer{Enqueuers: e.Enqueuers}).descriptors(ctx, d)
}

func (e *GroupedEnqueuer) createEnqueueable(ctx *render.Context, target *render.Group, scope render.Scope,
	geom render.Geometry, update bool, pidx *int) render.Enqueueable {
	batch := render.NewGroupBatch()
	sub := (&CompoundEnqueuer{Enqueuers: e.Enqueuers}).createEnqueueable(ctx, batch.Group, scope, geom, update, pidx)
	if sub == nil {
		return nil
	}
	return &groupedEnqueueable{
		target:   target,
		queue:    e.queue(),
		priority: e.Priority,
		batch:    batch,
		sub:      sub,
	}
}

func (e *GroupedEnqueuer) invalidate() {
	for _, sub := range e.Enqueuers {
		sub.invalidate()
	}
}

type groupedEnqueueable struct {
	target   *render.Group
	queue    string
	priority int
	batch    *render.GroupBatch
	sub      render.Enqueueable
}

func (g *groupedEnqueueable) Enqueue() {
	g.batch.Group.Clear()
	g.sub.Enqueue()

	// The group sorts as its first batch does.
	for _, q := range g.batch.Group.Queues() {
		if bs := q.Batches(); len(bs) > 0 {
			*g.batch.Common() = *bs[0].Common()
			break
		}
	}
	g.target.Queue(g.queue).Add(g.batch, g.priority)
}

///////////////////////////////////////////////////////////////////////////
// WrapperEnqueuer

// WrapperEnqueuer delegates to a shared enqueuer registered with the
// config manager under the name Ref.
type WrapperEnqueuer struct {
	Ref string `json:"ref"`

	resolved Enqueuer
}

// Resolve returns the shared enqueuer, following chains of wrappers, or
// an error if it doesn't exist.
func (e *WrapperEnqueuer) Resolve(ctx *render.Context) (Enqueuer, error) {
	if e.resolved != nil {
		return e.resolved, nil
	}
	r, err := config.Chase[Enqueuer](ctx.Configs, config.KindEnqueuer, e, func(en Enqueuer) (string, bool) {
		if w, ok := en.(*WrapperEnqueuer); ok {
			return w.Ref, true
		}
		return "", false
	})
	if err != nil {
		return nil, fmt.Errorf("wrapper enqueuer: %w", err)
	}
	e.resolved = r
	return r, nil
}

func (e *WrapperEnqueuer) target(ctx *render.Context) Enqueuer {
	r, err := e.Resolve(ctx)
	if err != nil {
		ctx.Logger().WarnOnce("enqueuer/"+e.Ref, "unresolved enqueuer", "error", err)
		return nil
	}
	return r
}

func (e *WrapperEnqueuer) isSupported(ctx *render.Context, fallback bool) bool {
	r := e.target(ctx)
	return r != nil && r.isSupported(ctx, fallback)
}

func (e *WrapperEnqueuer) descriptors(ctx *render.Context, d []*PassDescriptor) []*PassDescriptor {
	if r := e.target(ctx); r != nil {
		return r.descriptors(ctx, d)
	}
	return d
}

func (e *WrapperEnqueuer) createEnqueueable(ctx *render.Context, target *render.Group, scope render.Scope,
	geom render.Geometry, update bool, pidx *int) render.Enqueueable {
	if r := e.target(ctx); r != nil {
		return r.createEnqueueable(ctx, target, scope, geom, update, pidx)
	}
	return nil
}

func (e *WrapperEnqueuer) invalidate() {
	e.resolved = nil
}
