// render/cache.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"fmt"
	"strings"

	"github.com/clyde3d/clyde/render/state"
)

// ShaderCache builds shader programs. The ogl2 renderer provides an
// implementation that compiles GLSL.
type ShaderCache interface {
	Program(vertex, fragment string, defines []string) (*state.Program, error)
	UniformLocation(p *state.Program, name string) int32
}

// TextureCache provides textures by name.
type TextureCache interface {
	Texture(name string, target state.TextureTarget) *state.Texture
}

// MemoryShaderCache is a ShaderCache that "links" a program when both of
// its shaders are present in Sources; it hands out sequential handles
// and uniform locations. It is used when no GL context is available.
type MemoryShaderCache struct {
	Sources map[string]string

	programs  map[string]*state.Program
	locations map[*state.Program]map[string]int32
}

func NewMemoryShaderCache(sources map[string]string) *MemoryShaderCache {
	if sources == nil {
		sources = make(map[string]string)
	}
	return &MemoryShaderCache{
		Sources:   sources,
		programs:  make(map[string]*state.Program),
		locations: make(map[*state.Program]map[string]int32),
	}
}

func (c *MemoryShaderCache) Program(vertex, fragment string, defines []string) (*state.Program, error) {
	key := vertex + "|" + fragment + "|" + strings.Join(defines, ",")
	if p, ok := c.programs[key]; ok {
		return p, nil
	}

	for _, name := range []string{vertex, fragment} {
		if _, ok := c.Sources[name]; !ok {
			return nil, fmt.Errorf("%s: no such shader: %w", name, ErrShaderLink)
		}
	}

	p := &state.Program{
		Handle:   uint32(len(c.programs) + 1),
		Vertex:   vertex,
		Fragment: fragment,
		Defines:  defines,
	}
	c.programs[key] = p
	c.locations[p] = make(map[string]int32)
	return p, nil
}

func (c *MemoryShaderCache) UniformLocation(p *state.Program, name string) int32 {
	locs, ok := c.locations[p]
	if !ok {
		return -1
	}
	if l, ok := locs[name]; ok {
		return l
	}
	l := int32(len(locs))
	locs[name] = l
	return l
}

// MemoryTextureCache hands out texture objects with sequential handles.
type MemoryTextureCache struct {
	textures map[string]*state.Texture
}

func NewMemoryTextureCache() *MemoryTextureCache {
	return &MemoryTextureCache{textures: make(map[string]*state.Texture)}
}

func (c *MemoryTextureCache) Texture(name string, target state.TextureTarget) *state.Texture {
	if name == "" {
		return nil
	}
	if t, ok := c.textures[name]; ok {
		return t
	}
	t := &state.Texture{Handle: uint32(len(c.textures) + 1), Name: name, Target: target}
	c.textures[name] = t
	return t
}
