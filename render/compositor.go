// render/compositor.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Dependency is something that must be rendered before the batches of the
// technique that registered it: a stencil mask, a reflection, an effect.
// Dependencies are value types; registering an equal dependency twice in
// one frame has no further effect.
type Dependency interface {
	isDependency()
}

// StencilReflectionDependency requests a reflection about a plane
// (in world space), masked by the stencil buffer.
type StencilReflectionDependency struct {
	Plane mgl32.Vec4
}

// StencilRefractionDependency requests a refraction through a plane with
// the given ratio of indices of refraction.
type StencilRefractionDependency struct {
	Plane mgl32.Vec4
	Ratio float32
}

// RenderEffectDependency requests the named full-screen effect.
type RenderEffectDependency struct {
	Effect   string
	Priority int
}

// SkipColorClearDependency indicates that the technique covers the whole
// screen, so the color buffer need not be cleared.
type SkipColorClearDependency struct{}

func (StencilReflectionDependency) isDependency() {}
func (StencilRefractionDependency) isDependency() {}
func (RenderEffectDependency) isDependency()      {}
func (SkipColorClearDependency) isDependency()    {}

// Compositor collects the dependencies registered during a frame.
type Compositor struct {
	deps []Dependency
}

func (c *Compositor) AddDependency(d Dependency) {
	if !slices.Contains(c.deps, d) {
		c.deps = append(c.deps, d)
	}
}

// Dependencies returns the registered dependencies in registration order.
func (c *Compositor) Dependencies() []Dependency {
	return c.deps
}

// RenderEffects returns the registered effects in priority order.
func (c *Compositor) RenderEffects() []RenderEffectDependency {
	var effects []RenderEffectDependency
	for _, d := range c.deps {
		if e, ok := d.(RenderEffectDependency); ok {
			effects = append(effects, e)
		}
	}
	slices.SortStableFunc(effects, func(a, b RenderEffectDependency) int { return a.Priority - b.Priority })
	return effects
}

func (c *Compositor) SkipColorClear() bool {
	return slices.Contains(c.deps, Dependency(SkipColorClearDependency{}))
}

// Clear forgets the dependencies; it's called at the start of each frame.
func (c *Compositor) Clear() {
	c.deps = c.deps[:0]
}
