// render/caps.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"fmt"
	"log/slog"
)

// Caps describes what the graphics hardware can do.
type Caps struct {
	Shaders          bool
	MaxTextureUnits  int
	StencilBits      int
	SeparateSpecular bool
	CubeMaps         bool
}

// DefaultCaps are the capabilities of a typical OpenGL 2 implementation.
var DefaultCaps = Caps{
	Shaders:          true,
	MaxTextureUnits:  4,
	StencilBits:      8,
	SeparateSpecular: true,
	CubeMaps:         true,
}

func (c Caps) String() string {
	return fmt.Sprintf("shaders %v, %d texture units, %d stencil bits, separate specular %v, cube maps %v",
		c.Shaders, c.MaxTextureUnits, c.StencilBits, c.SeparateSpecular, c.CubeMaps)
}

func (c Caps) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("shaders", c.Shaders),
		slog.Int("max_texture_units", c.MaxTextureUnits),
		slog.Int("stencil_bits", c.StencilBits),
		slog.Bool("separate_specular", c.SeparateSpecular),
		slog.Bool("cube_maps", c.CubeMaps),
	)
}
