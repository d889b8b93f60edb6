// config/chase.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import "fmt"

// Chase follows a chain of references starting from the config start.
// next reports the name of the config that c refers to if c is derived
// from another config; the first config that is not derived is
// returned. A reference that doesn't resolve to a T gives ErrNotFound
// and revisiting a name gives ErrReferenceCycle.
func Chase[T comparable](m *Manager, kind Kind, start T, next func(c T) (name string, derived bool)) (T, error) {
	var zero T
	visited := make(map[string]bool)

	c := start
	for {
		name, derived := next(c)
		if !derived {
			return c, nil
		}
		if visited[name] {
			return zero, fmt.Errorf("%s %q: %w", kind, name, ErrReferenceCycle)
		}
		visited[name] = true

		nc := Resolve[T](m, kind, name)
		if nc == zero {
			return zero, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
		}
		c = nc
	}
}
