// renderer/renderer.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"log/slog"
)

// Renderer executes command buffers using a particular graphics API. The
// OpenGL 2 implementation lives in the ogl2 subpackage so that code that
// only builds command buffers doesn't need to link against GL.
type Renderer interface {
	// RenderCommandBuffer executes all of the commands encoded in the
	// provided command buffer, returning statistics about what was
	// rendered.
	RenderCommandBuffer(*CommandBuffer) Stats

	// Dispose releases resources allocated by the renderer.
	Dispose()
}

// Stats encapsulates assorted statistics from rendering.
type Stats struct {
	Buffers, BufferBytes int
	DrawCalls            int
	StateChanges         int
	Vertices             int
	Primitives           int
}

// Record updates the statistics for one executed command.
func (s *Stats) Record(cmd uint32, args []uint32) {
	switch cmd {
	case RendererDrawArrays:
		s.recordDraw(Primitive(args[0]), int(args[2]))
	case RendererDrawElements:
		s.recordDraw(Primitive(args[0]), int(args[1]))
	case RendererCallBuffer, RendererResetState, RendererClear, RendererViewport,
		RendererLoadProjectionMatrix:
	default:
		s.StateChanges++
	}
}

func (s *Stats) recordDraw(p Primitive, n int) {
	s.DrawCalls++
	s.Vertices += n
	s.Primitives += p.Count(n)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d buffers (%.2f KB), %d draw calls, %d state changes: %d vertices, %d primitives",
		s.Buffers, float32(s.BufferBytes)/1024, s.DrawCalls, s.StateChanges, s.Vertices, s.Primitives)
}

func (s *Stats) Merge(o Stats) {
	s.Buffers += o.Buffers
	s.BufferBytes += o.BufferBytes
	s.DrawCalls += o.DrawCalls
	s.StateChanges += o.StateChanges
	s.Vertices += o.Vertices
	s.Primitives += o.Primitives
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("buffers", s.Buffers),
		slog.Int("buffer_memory", s.BufferBytes),
		slog.Int("draw_calls", s.DrawCalls),
		slog.Int("state_changes", s.StateChanges),
		slog.Int("vertices", s.Vertices),
		slog.Int("primitives", s.Primitives),
	)
}
