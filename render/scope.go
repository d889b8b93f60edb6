// render/scope.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

// Names of the scope variables that passes read their inherited states
// from.
const (
	ColorStateVar     = "colorState"
	FogStateVar       = "fogState"
	LightStateVar     = "lightState"
	TransformStateVar = "transformState"
)

// Scope is a node in a hierarchy of named values; lookups that fail in a
// scope continue in its parent.
type Scope interface {
	ScopeName() string
	ParentScope() Scope
	// Get returns the value defined in this scope (only) for name.
	Get(name string) (any, bool)
}

// Resolve looks up name in scope and its ancestors, returning def if it
// isn't found or the value found doesn't have type T.
func Resolve[T any](scope Scope, name string, def T) T {
	for s := scope; s != nil; s = s.ParentScope() {
		if v, ok := s.Get(name); ok {
			if t, ok := v.(T); ok {
				return t
			}
			return def
		}
	}
	return def
}

// SimpleScope is a Scope backed by a map.
type SimpleScope struct {
	name   string
	parent Scope
	values map[string]any
}

func NewScope(name string, parent Scope) *SimpleScope {
	return &SimpleScope{name: name, parent: parent, values: make(map[string]any)}
}

func (s *SimpleScope) ScopeName() string { return s.name }

func (s *SimpleScope) ParentScope() Scope {
	return s.parent
}

func (s *SimpleScope) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *SimpleScope) Set(name string, v any) {
	s.values[name] = v
}

// Path returns the names of the scope and its ancestors, innermost first.
func Path(scope Scope) []string {
	var p []string
	for s := scope; s != nil; s = s.ParentScope() {
		p = append(p, s.ScopeName())
	}
	return p
}
