// render/queue.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"cmp"
	"slices"
)

// Names of the queues that every group has.
const (
	OpaqueQueue      = "Opaque"
	TransparentQueue = "Transparent"
	OverlayQueue     = "Overlay"
)

// SortMode determines how a queue orders batches of equal priority.
type SortMode int

const (
	// SortByState groups batches that share states.
	SortByState SortMode = iota
	// SortFrontToBack draws the closest batches first (decreasing depth).
	SortFrontToBack
	// SortBackToFront draws the farthest batches first (increasing depth).
	SortBackToFront
	// SortNone keeps insertion order.
	SortNone
)

func (m SortMode) String() string {
	return [...]string{"by_state", "front_to_back", "back_to_front", "none"}[m]
}

type queueEntry struct {
	batch    Batch
	priority int
}

// Queue collects the batches to be drawn in one frame. Batches are drawn
// in increasing priority order; within a priority they are ordered
// according to the queue's SortMode. Sorting is stable.
type Queue struct {
	Name     string
	Priority int
	Mode     SortMode

	entries []queueEntry
}

func NewQueue(name string, priority int, mode SortMode) *Queue {
	return &Queue{Name: name, Priority: priority, Mode: mode}
}

func (q *Queue) Add(b Batch, priority int) {
	q.entries = append(q.entries, queueEntry{batch: b, priority: priority})
}

func (q *Queue) Len() int {
	return len(q.entries)
}

func (q *Queue) Clear() {
	clear(q.entries)
	q.entries = q.entries[:0]
}

// Batches returns the queue's batches in their current order.
func (q *Queue) Batches() []Batch {
	b := make([]Batch, len(q.entries))
	for i, e := range q.entries {
		b[i] = e.batch
	}
	return b
}

// Priorities returns the priorities of the queue's batches in their
// current order.
func (q *Queue) Priorities() []int {
	p := make([]int, len(q.entries))
	for i, e := range q.entries {
		p[i] = e.priority
	}
	return p
}

func (q *Queue) Sort() {
	slices.SortStableFunc(q.entries, func(a, b queueEntry) int {
		if c := cmp.Compare(a.priority, b.priority); c != 0 {
			return c
		}
		ac, bc := a.batch.Common(), b.batch.Common()
		switch q.Mode {
		case SortByState:
			return slices.Compare(ac.Key, bc.Key)
		case SortFrontToBack:
			return cmp.Compare(bc.Depth, ac.Depth)
		case SortBackToFront:
			return cmp.Compare(ac.Depth, bc.Depth)
		default:
			return 0
		}
	})
}

func (q *Queue) Render(enc *Encoder) {
	for _, e := range q.entries {
		e.batch.Draw(enc)
	}
}

// Group is a set of named queues that are drawn in order of their
// priorities.
type Group struct {
	queues []*Queue
}

// NewGroup returns a group with the standard opaque, transparent, and
// overlay queues.
func NewGroup() *Group {
	g := &Group{}
	g.AddQueue(NewQueue(OpaqueQueue, 0, SortFrontToBack))
	g.AddQueue(NewQueue(TransparentQueue, 100, SortBackToFront))
	g.AddQueue(NewQueue(OverlayQueue, 200, SortNone))
	return g
}

// AddQueue adds a queue, replacing any existing queue with the same name.
func (g *Group) AddQueue(q *Queue) {
	g.queues = slices.DeleteFunc(g.queues, func(o *Queue) bool { return o.Name == q.Name })
	i, _ := slices.BinarySearchFunc(g.queues, q.Priority, func(o *Queue, p int) int {
		// Insert after existing queues of the same priority.
		return cmp.Or(cmp.Compare(o.Priority, p), -1)
	})
	g.queues = slices.Insert(g.queues, i, q)
}

// Queue returns the named queue, creating a state-sorted queue with
// priority 0 if there isn't one.
func (g *Group) Queue(name string) *Queue {
	for _, q := range g.queues {
		if q.Name == name {
			return q
		}
	}
	q := NewQueue(name, 0, SortByState)
	g.AddQueue(q)
	return q
}

// Queues returns the group's queues in drawing order.
func (g *Group) Queues() []*Queue {
	return g.queues
}

// Len returns the total number of batches in the group's queues.
func (g *Group) Len() int {
	n := 0
	for _, q := range g.queues {
		n += q.Len()
	}
	return n
}

func (g *Group) Sort() {
	for _, q := range g.queues {
		q.Sort()
	}
}

func (g *Group) Clear() {
	for _, q := range g.queues {
		q.Clear()
	}
}

func (g *Group) Render(enc *Encoder) {
	for _, q := range g.queues {
		q.Render(enc)
	}
}
