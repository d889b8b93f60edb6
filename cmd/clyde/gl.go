// cmd/clyde/gl.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"io/fs"

	"github.com/clyde3d/clyde/log"
	"github.com/clyde3d/clyde/renderer/ogl2"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// newGLRenderer opens a hidden window to get an OpenGL 2.1 context and
// returns a renderer for it. The returned function closes the window.
func newGLRenderer(shaders fs.FS, lg *log.Logger) (*ogl2.Renderer, func(), error) {
	lg.Info("Starting GLFW initialization")
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	lg.Infof("GLFW: %s", glfw.GetVersionString())

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Visible, 0)
	glfw.WindowHint(glfw.StencilBits, 8)

	window, err := glfw.CreateWindow(256, 256, "clyde", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	r, err := ogl2.New(shaders, lg)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, nil, err
	}

	return r, func() {
		r.Dispose()
		window.Destroy()
		glfw.Terminate()
	}, nil
}
