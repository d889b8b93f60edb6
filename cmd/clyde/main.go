// cmd/clyde/main.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// clyde loads material libraries, resolves every material for a render
// scheme, and renders one frame of unit quads with them, reporting what
// was drawn. It's used to check material definitions against different
// hardware capabilities.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/log"
	"github.com/clyde3d/clyde/material"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/renderer"
	"github.com/clyde3d/clyde/util"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/goforj/godump"
)

var (
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	libDir      = flag.String("dir", ".", "directory that material library paths are relative to")
	shaderDir   = flag.String("shaders-dir", "shaders", "directory with GLSL shader sources")
	scheme      = flag.String("scheme", "", "render scheme to resolve techniques for (default: the default scheme)")
	compat      = flag.Bool("compat", false, "run in compatibility mode")
	shaders     = flag.Bool("shaders", true, "assume shader support")
	texUnits    = flag.Int("texunits", render.DefaultCaps.MaxTextureUnits, "number of texture units")
	stencilBits = flag.Int("stencil", render.DefaultCaps.StencilBits, "number of stencil buffer bits")
	useGL       = flag.Bool("gl", false, "render with OpenGL in a hidden window and take capabilities from it")
	dump        = flag.Bool("dump", false, "dump the resolved techniques")
	descriptors = flag.String("descriptors", "", "write the pass descriptors to this file in the cache directory")
	particles   = flag.String("particles", "", "JSON file of particle layers to simulate and render with -particle-material")
	partMat     = flag.String("particle-material", "", "material used to draw particles")
	frames      = flag.Int("frames", 60, "number of frames of particle simulation")
)

func init() {
	// GL calls must all be made from the thread that created the context.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	if len(flag.Args()) == 0 {
		fmt.Printf("usage: clyde [flags] <library.json>...\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	lg := log.New(*logLevel, *logDir)

	caps := render.DefaultCaps
	caps.Shaders = *shaders
	caps.MaxTextureUnits = *texUnits
	caps.StencilBits = *stencilBits

	var r renderer.Renderer
	var shaderCache render.ShaderCache
	if *useGL {
		glr, cleanup, err := newGLRenderer(os.DirFS(*shaderDir), lg)
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		caps.StencilBits = min(caps.StencilBits, glr.StencilBits())
		caps.MaxTextureUnits = min(caps.MaxTextureUnits, glr.MaxTextureUnits())
		r, shaderCache = glr, glr
	} else {
		sources, err := readShaderSources(*shaderDir)
		if err != nil {
			lg.Warnf("%s: %v", *shaderDir, err)
		}
		shaderCache = render.NewMemoryShaderCache(sources)
	}
	lg.Info("capabilities", "caps", caps)

	libs, err := material.LoadLibraries(os.DirFS(*libDir), flag.Args(), lg)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	ctx := render.NewContext(caps, config.NewManager(lg), lg)
	ctx.Shaders = shaderCache
	ctx.SetCompatibilityMode(*compat)
	for _, lib := range libs {
		lib.Register(ctx.Configs)
	}

	var e util.ErrorLogger
	for _, lib := range libs {
		e.Push(lib.Name)
		lib.Validate(ctx.Configs, &e)
		e.Pop()
	}
	if e.HaveErrors() {
		e.PrintErrors(lg)
		os.Exit(1)
	}

	group := render.NewGroup()
	var enqueueables render.Enqueueables
	var resolved []*material.Technique
	for i, name := range ctx.Configs.Names(config.KindMaterial) {
		m := config.Resolve[*material.Material](ctx.Configs, config.KindMaterial, name)
		t := m.GetTechnique(ctx, *scheme)
		if t == nil {
			fmt.Printf("%s: no technique for scheme %q\n", name, *scheme)
			continue
		}
		resolved = append(resolved, t)

		scope := render.NewScope(name, ctx.Scope)
		scope.Set(render.TransformStateVar,
			&state.TransformState{Modelview: mgl32.Translate3D(0, 0, -2*float32(i+1))})
		if en := t.CreateEnqueueable(ctx, group, scope, unitQuad(), false); en != nil {
			enqueueables = append(enqueueables, en)
		}
	}

	if *particles != "" {
		en, err := particleEnqueueables(ctx, group, *particles, *partMat, *frames)
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		enqueueables = append(enqueueables, en...)
	}

	if *dump {
		godump.Dump(resolved)
	}

	enqueueables.Enqueue()
	group.Sort()

	cb := renderer.GetCommandBuffer()
	defer renderer.ReturnCommandBuffer(cb)
	cb.Clear(renderer.ClearColor|renderer.ClearDepth, mgl32.Vec4{})
	enc := render.NewEncoder(cb)
	group.Render(enc)

	for _, q := range group.Queues() {
		fmt.Printf("%-12s %d batches\n", q.Name, q.Len())
	}
	for _, d := range ctx.Compositor.Dependencies() {
		fmt.Printf("dependency: %+v\n", d)
	}

	stats := cb.Stats()
	if r != nil {
		stats = r.RenderCommandBuffer(cb)
	}
	fmt.Printf("%s\n", stats)
	lg.Info("rendered frame", "stats", stats)

	if *descriptors != "" {
		table := material.CollectDescriptors(ctx, *scheme)
		if err := material.SaveDescriptors(*descriptors, table); err != nil {
			fmt.Printf("%s: %v\n", *descriptors, err)
			os.Exit(1)
		}
		fmt.Printf("wrote descriptors for %d materials to %s\n", len(table.Descriptors), *descriptors)
	}
}

// unitQuad returns a quad in the xy plane with every vertex array a
// material might ask for.
func unitQuad() render.Geometry {
	array := func(size, offset int32) *state.ClientArray {
		return &state.ClientArray{Buffer: 1, Size: size, Stride: 48, Offset: offset}
	}
	return &render.SimpleGeometry{
		Arrays: &state.ArrayState{
			Vertex:    array(3, 0),
			Normal:    array(3, 12),
			Color:     array(4, 24),
			TexCoords: []*state.ClientArray{array(2, 40), array(2, 40)},
		},
		Command: render.DrawCommand{Mode: renderer.TriangleFan, Count: 4},
	}
}

func readShaderSources(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sources := make(map[string]string)
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, err
		}
		sources[ent.Name()] = string(b)
	}
	return sources, nil
}
