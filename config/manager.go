// config/manager.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config keeps track of named configurations and notifies
// interested parties when they change.
package config

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/clyde3d/clyde/log"

	"github.com/iancoleman/orderedmap"
)

// Kind distinguishes the namespaces that configurations live in.
type Kind string

const (
	KindMaterial     Kind = "material"
	KindRenderScheme Kind = "render_scheme"
	KindEnqueuer     Kind = "enqueuer"
)

// Event describes an update to a configuration: it was registered,
// replaced, removed (Config is nil), or explicitly marked as updated.
type Event struct {
	Kind   Kind
	Name   string
	Config any
}

func (e Event) String() string {
	return fmt.Sprintf("%s %q", e.Kind, e.Name)
}

// Listener is implemented by things that hold state derived from
// configurations. A registered config that implements Listener is
// automatically subscribed to its own updates.
type Listener interface {
	ConfigUpdated(Event)
}

// Dependent is implemented by Listener configs whose derived state also
// depends on every config of some other kinds; they are subscribed to
// those kinds when registered.
type Dependent interface {
	Listener
	DependsOn() []Kind
}

type ListenerFunc func(Event)

func (f ListenerFunc) ConfigUpdated(e Event) { f(e) }

type ref struct {
	kind Kind
	name string
}

type subscription struct {
	id int
	l  Listener
}

// Manager holds named configurations of various kinds, in registration
// order. Lookups of unknown names return nil; callers must be prepared
// for references that don't resolve.
type Manager struct {
	configs map[Kind]*orderedmap.OrderedMap

	nextID        int
	listeners     map[ref][]subscription
	kindListeners map[Kind][]subscription
	// Subscriptions made on behalf of registered configs, so they can be
	// dropped when the config is replaced or removed.
	auto map[ref][]int

	lg *log.Logger
}

func NewManager(lg *log.Logger) *Manager {
	return &Manager{
		configs:       make(map[Kind]*orderedmap.OrderedMap),
		listeners:     make(map[ref][]subscription),
		kindListeners: make(map[Kind][]subscription),
		auto:          make(map[ref][]int),
		lg:            lg,
	}
}

// Register adds or replaces the named config and notifies listeners.
func (m *Manager) Register(kind Kind, name string, c any) {
	om, ok := m.configs[kind]
	if !ok {
		om = orderedmap.New()
		m.configs[kind] = om
	}

	r := ref{kind, name}
	m.dropAuto(r)
	om.Set(name, c)

	if l, ok := c.(Listener); ok {
		m.auto[r] = append(m.auto[r], m.Subscribe(kind, name, l))
		if d, ok := c.(Dependent); ok {
			for _, k := range d.DependsOn() {
				m.auto[r] = append(m.auto[r], m.SubscribeKind(k, l))
			}
		}
	}

	m.lg.Debugf("registered %s %q", kind, name)
	m.fire(Event{Kind: kind, Name: name, Config: c})
}

// Remove removes the named config, if present, and notifies listeners.
func (m *Manager) Remove(kind Kind, name string) {
	om, ok := m.configs[kind]
	if !ok {
		return
	}
	if _, ok := om.Get(name); !ok {
		return
	}

	// Notify first so that the config itself hears about it.
	m.fire(Event{Kind: kind, Name: name})
	om.Delete(name)
	m.dropAuto(ref{kind, name})
}

func (m *Manager) dropAuto(r ref) {
	for _, id := range m.auto[r] {
		m.Unsubscribe(id)
	}
	delete(m.auto, r)
}

// Lookup returns the named config or nil if there is no such config.
func (m *Manager) Lookup(kind Kind, name string) any {
	if m == nil {
		return nil
	}
	if om, ok := m.configs[kind]; ok {
		if c, ok := om.Get(name); ok {
			return c
		}
	}
	return nil
}

// Resolve returns the named config if it exists and has type T and the
// zero value otherwise.
func Resolve[T any](m *Manager, kind Kind, name string) T {
	c, _ := m.Lookup(kind, name).(T)
	return c
}

// Names returns the names of the configs of the given kind in
// registration order.
func (m *Manager) Names(kind Kind) []string {
	if om, ok := m.configs[kind]; ok {
		return slices.Clone(om.Keys())
	}
	return nil
}

// Updated notifies listeners that the named config was modified in place.
func (m *Manager) Updated(kind Kind, name string) {
	if c := m.Lookup(kind, name); c != nil {
		m.fire(Event{Kind: kind, Name: name, Config: c})
	} else {
		m.lg.Warnf("%s %q: update of unknown config", kind, name)
	}
}

// Subscribe registers l for updates to the named config and returns an
// identifier that can be passed to Unsubscribe.
func (m *Manager) Subscribe(kind Kind, name string, l Listener) int {
	m.nextID++
	r := ref{kind, name}
	m.listeners[r] = append(m.listeners[r], subscription{id: m.nextID, l: l})
	return m.nextID
}

// SubscribeKind registers l for updates to all configs of the given kind.
func (m *Manager) SubscribeKind(kind Kind, l Listener) int {
	m.nextID++
	m.kindListeners[kind] = append(m.kindListeners[kind], subscription{id: m.nextID, l: l})
	return m.nextID
}

func (m *Manager) Unsubscribe(id int) {
	match := func(s subscription) bool { return s.id == id }
	for r, subs := range m.listeners {
		if subs = slices.DeleteFunc(subs, match); len(subs) == 0 {
			delete(m.listeners, r)
		} else {
			m.listeners[r] = subs
		}
	}
	for k, subs := range m.kindListeners {
		m.kindListeners[k] = slices.DeleteFunc(subs, match)
	}
}

func (m *Manager) fire(e Event) {
	// Copy the subscriber lists since listeners may (un)subscribe.
	subs := slices.Clone(m.listeners[ref{e.Kind, e.Name}])
	subs = append(subs, m.kindListeners[e.Kind]...)

	// A listener subscribed both ways only hears about it once.
	var notified []Listener
	for _, s := range subs {
		if slices.ContainsFunc(notified, func(l Listener) bool { return sameListener(l, s.l) }) {
			continue
		}
		notified = append(notified, s.l)
		s.l.ConfigUpdated(e)
	}
}

func sameListener(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta == tb && ta.Comparable() && a == b
}
