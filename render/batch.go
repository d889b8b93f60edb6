// render/batch.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"github.com/clyde3d/clyde/render/state"
)

// BatchCommon holds the values that queues sort batches by.
type BatchCommon struct {
	// Depth is the eye-space z coordinate of the batch's center; since
	// the camera looks down -z, larger values are closer.
	Depth float32
	// Key orders batches so that ones sharing states are drawn together.
	Key []uint64
}

// Batch is a unit of drawing that is sorted as a whole.
type Batch interface {
	Common() *BatchCommon
	Draw(enc *Encoder)
}

// SimpleBatch draws a geometry once with a set of states.
type SimpleBatch struct {
	BatchCommon
	States  state.Set
	Command DrawCommand
}

func NewSimpleBatch(states state.Set, cmd DrawCommand) *SimpleBatch {
	b := &SimpleBatch{States: states, Command: cmd}
	b.Key = b.States.Key()
	return b
}

func (b *SimpleBatch) Common() *BatchCommon { return &b.BatchCommon }

func (b *SimpleBatch) Draw(enc *Encoder) {
	enc.Apply(&b.States)
	enc.Draw(b.Command)
}

// CompoundBatch draws several batches in order, e.g. the passes of a
// multipass technique. It sorts using the first batch's key.
type CompoundBatch struct {
	BatchCommon
	Batches []Batch
}

func NewCompoundBatch(batches ...Batch) *CompoundBatch {
	b := &CompoundBatch{Batches: batches}
	if len(batches) > 0 {
		b.Key = batches[0].Common().Key
	}
	return b
}

func (b *CompoundBatch) Common() *BatchCommon { return &b.BatchCommon }

func (b *CompoundBatch) Draw(enc *Encoder) {
	for _, sub := range b.Batches {
		sub.Draw(enc)
	}
}

// GroupBatch draws the contents of a queue group as a unit, so that a
// set of batches can be sorted among themselves and then placed as a
// whole into an enclosing queue.
type GroupBatch struct {
	BatchCommon
	Group *Group
}

func NewGroupBatch() *GroupBatch {
	return &GroupBatch{Group: NewGroup()}
}

func (b *GroupBatch) Common() *BatchCommon { return &b.BatchCommon }

func (b *GroupBatch) Draw(enc *Encoder) {
	b.Group.Sort()
	b.Group.Render(enc)
}
