// material/dependency.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/render"

	"github.com/go-gl/mathgl/mgl32"
)

// Dependency is a requirement that a technique places on the rendering
// of the frame as a whole; it's passed to the compositor whenever the
// technique's enqueueable is enqueued.
type Dependency interface {
	isSupported(ctx *render.Context) bool
	dependency() render.Dependency
}

var dependencyVariants = config.Variants[Dependency]{
	"stencil_reflection": func() Dependency { return &StencilReflection{} },
	"stencil_refraction": func() Dependency { return &StencilRefraction{} },
	"render_effect":      func() Dependency { return &RenderEffect{} },
	"skip_color_clear":   func() Dependency { return &SkipColorClear{} },
}

type Dependencies []Dependency

func (d Dependencies) MarshalJSON() ([]byte, error) {
	return dependencyVariants.EncodeSlice(d)
}

func (d *Dependencies) UnmarshalJSON(data []byte) error {
	s, err := dependencyVariants.DecodeSlice(data)
	if err == nil {
		*d = s
	}
	return err
}

// StencilReflection requests that the scene be reflected about Plane;
// it needs a stencil buffer.
type StencilReflection struct {
	Plane mgl32.Vec4 `json:"plane"`
}

func (d *StencilReflection) isSupported(ctx *render.Context) bool {
	return ctx.Caps.StencilBits > 0
}

func (d *StencilReflection) dependency() render.Dependency {
	return render.StencilReflectionDependency{Plane: d.Plane}
}

// StencilRefraction requests that the scene be refracted through Plane.
type StencilRefraction struct {
	Plane mgl32.Vec4 `json:"plane"`
	Ratio float32    `json:"ratio"`
}

func (d *StencilRefraction) isSupported(ctx *render.Context) bool {
	return ctx.Caps.StencilBits > 0
}

func (d *StencilRefraction) dependency() render.Dependency {
	return render.StencilRefractionDependency{Plane: d.Plane, Ratio: d.Ratio}
}

type RenderEffect struct {
	Effect   string `json:"effect"`
	Priority int    `json:"priority,omitempty"`
}

func (d *RenderEffect) isSupported(ctx *render.Context) bool { return true }

func (d *RenderEffect) dependency() render.Dependency {
	return render.RenderEffectDependency{Effect: d.Effect, Priority: d.Priority}
}

// SkipColorClear indicates that the technique draws over the entire
// frame, so the color buffer needn't be cleared.
type SkipColorClear struct{}

func (d *SkipColorClear) isSupported(ctx *render.Context) bool { return true }

func (d *SkipColorClear) dependency() render.Dependency {
	return render.SkipColorClearDependency{}
}

// dependentEnqueueable registers a technique's dependencies with the
// compositor before enqueueing its batches.
type dependentEnqueueable struct {
	render.Enqueueable
	compositor *render.Compositor
	deps       []render.Dependency
}

func (d *dependentEnqueueable) Enqueue() {
	for _, dep := range d.deps {
		d.compositor.AddDependency(dep)
	}
	d.Enqueueable.Enqueue()
}
