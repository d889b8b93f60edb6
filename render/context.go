// render/context.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"time"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/log"
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/util"
)

// Context is the state shared by everything that renders in one session:
// the hardware capabilities, configuration, interned states, and the
// collaborators that techniques talk to. Nothing in this package keeps
// global state; everything hangs off a Context.
type Context struct {
	Caps       Caps
	Configs    *config.Manager
	Interner   *state.Interner
	Compositor *Compositor
	Scope      Scope
	Shaders    ShaderCache
	Textures   TextureCache
	// Memory is consulted by soft caches; they drop their contents when
	// it reports memory pressure.
	Memory *util.MemoryMonitor

	lg *log.Logger

	compatibilityMode bool
	shadersDisabled   bool
}

// CapabilityKey identifies the settings that affect which techniques are
// usable; processed technique lists are cached per key.
type CapabilityKey struct {
	Compatibility bool
	Shaders       bool
}

func NewContext(caps Caps, configs *config.Manager, lg *log.Logger) *Context {
	if configs == nil {
		configs = config.NewManager(lg)
	}
	return &Context{
		Caps:       caps,
		Configs:    configs,
		Interner:   state.NewInterner(),
		Compositor: &Compositor{},
		Scope:      NewScope("root", nil),
		Shaders:    NewMemoryShaderCache(nil),
		Textures:   NewMemoryTextureCache(),
		Memory:     util.NewMemoryMonitor(95, 5*time.Second),
		lg:         lg,
	}
}

func (c *Context) Logger() *log.Logger {
	return c.lg
}

// CompatibilityMode reports whether only the most widely supported
// features should be used.
func (c *Context) CompatibilityMode() bool {
	return c.compatibilityMode
}

func (c *Context) SetCompatibilityMode(compat bool) {
	if compat != c.compatibilityMode {
		c.lg.Infof("compatibility mode %v", compat)
		c.compatibilityMode = compat
	}
}

// ShadersEnabled reports whether shader-based techniques may be used.
func (c *Context) ShadersEnabled() bool {
	return c.Caps.Shaders && !c.compatibilityMode && !c.shadersDisabled
}

// DisableShaders permanently disables shaders for this context; it's
// called when a program fails to build. Only the first failure is
// reported.
func (c *Context) DisableShaders(err error) {
	if c.shadersDisabled {
		return
	}
	c.shadersDisabled = true
	c.lg.Warnf("disabling shaders: %v", err)
}

// ShaderProgram returns the program built from the given shaders or nil
// if shaders are disabled or the program fails to build.
func (c *Context) ShaderProgram(vertex, fragment string, defines []string) *state.Program {
	if !c.ShadersEnabled() || c.Shaders == nil {
		return nil
	}
	p, err := c.Shaders.Program(vertex, fragment, defines)
	if err != nil {
		c.DisableShaders(err)
		return nil
	}
	return p
}

func (c *Context) CapabilityKey() CapabilityKey {
	return CapabilityKey{
		Compatibility: c.compatibilityMode,
		Shaders:       c.ShadersEnabled(),
	}
}
