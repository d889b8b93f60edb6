// renderer/commandbuffer.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	gomath "math"
	"sync"

	"github.com/clyde3d/clyde/render/state"

	"github.com/go-gl/mathgl/mgl32"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows. Comments
// after each command briefly describe its arguments. Enumerated values
// (comparison functions, blend factors, ...) are stored using the values
// of the corresponding types in the state package; it's up to the
// Renderer to map them to its graphics API.
//
// Vertex data is not stored in the command buffer; array commands refer
// to buffer objects that are owned by the geometry being drawn.
const (
	RendererLoadProjectionMatrix = iota // 16 float32: matrix
	RendererLoadModelViewMatrix         // 16 float32: matrix
	RendererClear                       // uint32 mask (ClearColor etc.), 4 float32: RGBA
	RendererViewport                    // 4 int32: x, y, width, height
	RendererAlphaFunc                   // uint32 CompareFunc, float32 ref
	RendererBlendFunc                   // 2 uint32: src and dest BlendFactors
	RendererDisableBlend                // no args
	RendererColorMask                   // 4 uint32: r, g, b, a (0/1)
	RendererCullFace                    // uint32 CullFace; FaceNone disables culling
	RendererDepthFunc                   // uint32 CompareFunc, uint32 write mask (0/1)
	RendererFog                         // uint32 FogMode, 3 float32: density, start, end, 4 float32: RGBA
	RendererLightModel                  // uint32 number of lights, 4 float32: global ambient
	RendererLight                       // uint32 index, 24 float32: position, ambient, diffuse, specular, spot dir, exponent, cutoff, attenuation
	RendererMaterial                    // 16 float32: ambient, diffuse, specular, emission, float32 shininess, uint32 ColorMaterialMode, uint32 flags
	RendererLineWidth                   // float32
	RendererPointSize                   // float32
	RendererPolygonMode                 // 2 uint32: front, back PolygonModes, 2 float32: offset factor, units
	RendererStencil                     // uint32 CompareFunc, int32 ref, uint32 mask, 3 uint32 StencilOps, uint32 write mask
	RendererDisableStencil              // no args
	RendererSetRGBA                     // 4 float32: RGBA
	RendererUseProgram                  // uint32 program handle; 0 for fixed-function
	RendererUniform                     // int32 location, uint32 flags (1=int), uint32 n, then n float32 values
	RendererBindTexture                 // 4 uint32: unit, handle, TextureTarget, TexEnvMode
	RendererDisableTextureUnit          // uint32 unit
	RendererTexGen                      // 3 uint32: unit, axis (0-3), TexGenMode, 4 float32: plane
	RendererTextureMatrix               // uint32 unit, 16 float32: matrix
	RendererVertexArray                 // 5 uint32: buffer, n components, stride, offset (bytes), normalized
	RendererNormalArray                 // 5 uint32: as with RendererVertexArray
	RendererColorArray                  // 5 uint32: as with RendererVertexArray
	RendererTexCoordArray               // uint32 unit, then 5 uint32 as with RendererVertexArray
	RendererDisableArrays               // no args
	RendererElementBuffer               // uint32 buffer
	RendererDrawArrays                  // 3 uint32: Primitive, first, count
	RendererDrawElements                // 3 uint32: Primitive, count, offset (bytes)
	RendererCallBuffer                  // 1 int32: buffer index
	RendererResetState                  // no args
	RendererNumCommands
)

// Flags for RendererClear
const (
	ClearColor = 1 << iota
	ClearDepth
	ClearStencil
)

// Flags for RendererMaterial
const (
	MaterialTwoSide = 1 << iota
	MaterialLocalViewer
	MaterialSeparateSpecular
	MaterialFlatShading
)

// Primitive specifies how vertices are assembled by draw commands.
type Primitive int

const (
	Points Primitive = iota
	Lines
	LineStrip
	LineLoop
	Triangles
	TriangleStrip
	TriangleFan
	Quads
)

func (p Primitive) String() string {
	return [...]string{"points", "lines", "line_strip", "line_loop", "triangles", "triangle_strip",
		"triangle_fan", "quads"}[p]
}

// Count returns the number of primitives drawn from n vertices.
func (p Primitive) Count(n int) int {
	switch p {
	case Points:
		return n
	case Lines:
		return n / 2
	case LineStrip:
		return max(n-1, 0)
	case LineLoop:
		return n
	case Triangles:
		return n / 3
	case TriangleStrip, TriangleFan:
		return max(n-2, 0)
	case Quads:
		return n / 4
	default:
		return 0
	}
}

// CommandBuffer encodes a sequence of rendering commands in an
// API-agnostic manner. It makes it possible for the queues to "pre-bake"
// rendering work into a form that can be efficiently processed by a
// Renderer and possibly reused over multiple frames.
type CommandBuffer struct {
	Buf    []uint32
	called []CommandBuffer
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
	cb.called = cb.called[:0]
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		cb.Buf = append(cb.Buf, uint32(i))
	}
}

func (cb *CommandBuffer) appendMatrix(m mgl32.Mat4) {
	// mgl32 matrices are column-major, as GL expects.
	cb.appendFloats(m[:]...)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (cb *CommandBuffer) LoadProjectionMatrix(m mgl32.Mat4) {
	cb.appendInts(RendererLoadProjectionMatrix)
	cb.appendMatrix(m)
}

func (cb *CommandBuffer) LoadModelViewMatrix(m mgl32.Mat4) {
	cb.appendInts(RendererLoadModelViewMatrix)
	cb.appendMatrix(m)
}

// Clear adds a command to clear the buffers given by mask (a combination
// of ClearColor, ClearDepth, and ClearStencil); the color buffer is
// cleared to the given color.
func (cb *CommandBuffer) Clear(mask int, rgba mgl32.Vec4) {
	cb.appendInts(RendererClear, mask)
	cb.appendFloats(rgba[:]...)
}

// Viewport adds a command to the command buffer to set the viewport to the
// specified rectangle.
func (cb *CommandBuffer) Viewport(x, y, w, h int) {
	cb.appendInts(RendererViewport, x, y, w, h)
}

// AlphaFunc sets the alpha test; CompareAlways effectively disables it.
func (cb *CommandBuffer) AlphaFunc(fn state.CompareFunc, ref float32) {
	cb.appendInts(RendererAlphaFunc, int(fn))
	cb.appendFloats(ref)
}

// BlendFunc enables blending with the given factors.
func (cb *CommandBuffer) BlendFunc(src, dest state.BlendFactor) {
	cb.appendInts(RendererBlendFunc, int(src), int(dest))
}

func (cb *CommandBuffer) DisableBlend() {
	cb.appendInts(RendererDisableBlend)
}

func (cb *CommandBuffer) ColorMask(r, g, b, a bool) {
	cb.appendInts(RendererColorMask, b2i(r), b2i(g), b2i(b), b2i(a))
}

func (cb *CommandBuffer) CullFace(face state.CullFace) {
	cb.appendInts(RendererCullFace, int(face))
}

func (cb *CommandBuffer) DepthFunc(fn state.CompareFunc, mask bool) {
	cb.appendInts(RendererDepthFunc, int(fn), b2i(mask))
}

func (cb *CommandBuffer) Fog(mode state.FogMode, density, start, end float32, rgba mgl32.Vec4) {
	cb.appendInts(RendererFog, int(mode))
	cb.appendFloats(density, start, end)
	cb.appendFloats(rgba[:]...)
}

// LightModel enables lighting with n lights (which must then be specified
// using Light) or disables it if n is zero.
func (cb *CommandBuffer) LightModel(n int, globalAmbient mgl32.Vec4) {
	cb.appendInts(RendererLightModel, n)
	cb.appendFloats(globalAmbient[:]...)
}

func (cb *CommandBuffer) Light(index int, l *state.Light) {
	cb.appendInts(RendererLight, index)
	cb.appendFloats(l.Position[:]...)
	cb.appendFloats(l.Ambient[:]...)
	cb.appendFloats(l.Diffuse[:]...)
	cb.appendFloats(l.Specular[:]...)
	cb.appendFloats(l.SpotDirection[:]...)
	cb.appendFloats(l.SpotExponent, l.SpotCutoff)
	cb.appendFloats(l.Attenuation[:]...)
}

func (cb *CommandBuffer) Material(m *state.MaterialState) {
	cb.appendInts(RendererMaterial)
	cb.appendFloats(m.Ambient[:]...)
	cb.appendFloats(m.Diffuse[:]...)
	cb.appendFloats(m.Specular[:]...)
	cb.appendFloats(m.Emission[:]...)
	cb.appendFloats(m.Shininess)

	flags := 0
	if m.TwoSide {
		flags |= MaterialTwoSide
	}
	if m.LocalViewer {
		flags |= MaterialLocalViewer
	}
	if m.SeparateSpecular {
		flags |= MaterialSeparateSpecular
	}
	if m.FlatShading {
		flags |= MaterialFlatShading
	}
	cb.appendInts(int(m.ColorMaterial), flags)
}

// LineWidth adds a command to the command buffer that sets the width in
// pixels of subsequent lines that are drawn.
func (cb *CommandBuffer) LineWidth(w float32) {
	cb.appendInts(RendererLineWidth)
	cb.appendFloats(w)
}

func (cb *CommandBuffer) PointSize(s float32) {
	cb.appendInts(RendererPointSize)
	cb.appendFloats(s)
}

func (cb *CommandBuffer) PolygonMode(front, back state.PolygonMode, offsetFactor, offsetUnits float32) {
	cb.appendInts(RendererPolygonMode, int(front), int(back))
	cb.appendFloats(offsetFactor, offsetUnits)
}

func (cb *CommandBuffer) Stencil(s *state.StencilState) {
	cb.appendInts(RendererStencil, int(s.TestFunc), int(s.TestRef), int(s.TestMask),
		int(s.FailOp), int(s.DepthFailOp), int(s.PassOp), int(s.WriteMask))
}

func (cb *CommandBuffer) DisableStencil() {
	cb.appendInts(RendererDisableStencil)
}

// SetRGBA adds a command to the command buffer to set the current RGBA
// color. Subsequent draw commands will inherit this color unless they
// specify e.g., per-vertex colors themselves.
func (cb *CommandBuffer) SetRGBA(rgba mgl32.Vec4) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgba[:]...)
}

// UseProgram switches to the given shader program; 0 selects the
// fixed-function pipeline.
func (cb *CommandBuffer) UseProgram(handle uint32) {
	cb.appendInts(RendererUseProgram, int(handle))
}

func (cb *CommandBuffer) Uniform(u state.Uniform) {
	cb.appendInts(RendererUniform, int(u.Location), b2i(u.Int), len(u.Values))
	cb.appendFloats(u.Values...)
}

func (cb *CommandBuffer) BindTexture(unit int, tex *state.Texture, env state.TexEnvMode) {
	cb.appendInts(RendererBindTexture, unit, int(tex.Handle), int(tex.Target), int(env))
}

func (cb *CommandBuffer) DisableTextureUnit(unit int) {
	cb.appendInts(RendererDisableTextureUnit, unit)
}

// TexGen sets coordinate generation for one axis (0-3 for s, t, r, q)
// of a texture unit.
func (cb *CommandBuffer) TexGen(unit, axis int, mode state.TexGenMode, plane mgl32.Vec4) {
	cb.appendInts(RendererTexGen, unit, axis, int(mode))
	cb.appendFloats(plane[:]...)
}

func (cb *CommandBuffer) TextureMatrix(unit int, m mgl32.Mat4) {
	cb.appendInts(RendererTextureMatrix, unit)
	cb.appendMatrix(m)
}

func (cb *CommandBuffer) appendArray(a *state.ClientArray) {
	cb.appendInts(int(a.Buffer), int(a.Size), int(a.Stride), int(a.Offset), b2i(a.Normalized))
}

func (cb *CommandBuffer) VertexArray(a *state.ClientArray) {
	cb.appendInts(RendererVertexArray)
	cb.appendArray(a)
}

func (cb *CommandBuffer) NormalArray(a *state.ClientArray) {
	cb.appendInts(RendererNormalArray)
	cb.appendArray(a)
}

func (cb *CommandBuffer) ColorArray(a *state.ClientArray) {
	cb.appendInts(RendererColorArray)
	cb.appendArray(a)
}

func (cb *CommandBuffer) TexCoordArray(unit int, a *state.ClientArray) {
	cb.appendInts(RendererTexCoordArray, unit)
	cb.appendArray(a)
}

// DisableArrays disables all of the client-side arrays.
func (cb *CommandBuffer) DisableArrays() {
	cb.appendInts(RendererDisableArrays)
}

func (cb *CommandBuffer) ElementBuffer(buffer uint32) {
	cb.appendInts(RendererElementBuffer, int(buffer))
}

func (cb *CommandBuffer) DrawArrays(p Primitive, first, count int) {
	cb.appendInts(RendererDrawArrays, int(p), first, count)
}

// DrawElements draws count indices from the current element buffer,
// starting at the given byte offset.
func (cb *CommandBuffer) DrawElements(p Primitive, count, offset int) {
	cb.appendInts(RendererDrawElements, int(p), count, offset)
}

// Call adds a command to the command buffer that causes the commands in
// the provided command buffer to be processed and executed. After the end
// of the command buffer is reached, processing of command in the current
// command buffer continues.
func (cb *CommandBuffer) Call(sub CommandBuffer) {
	if sub.Buf == nil {
		// make it a no-op
		return
	}

	cb.appendInts(RendererCallBuffer, len(cb.called))
	// Make our own copy of the slice to ensure it isn't garbage collected.
	cb.called = append(cb.called, sub)
}

// Called returns the i'th buffer passed to Call.
func (cb *CommandBuffer) Called(i int) *CommandBuffer {
	return &cb.called[i]
}

// ResetState adds a command to the comment buffer that resets all of the
// assorted graphics state (blending, texturing, vertex arrays, etc.) to
// default values.
func (cb *CommandBuffer) ResetState() {
	cb.appendInts(RendererResetState)
}

///////////////////////////////////////////////////////////////////////////

var fixedArgs = [RendererNumCommands]int{
	RendererLoadProjectionMatrix: 16,
	RendererLoadModelViewMatrix:  16,
	RendererClear:                5,
	RendererViewport:             4,
	RendererAlphaFunc:            2,
	RendererBlendFunc:            2,
	RendererDisableBlend:         0,
	RendererColorMask:            4,
	RendererCullFace:             1,
	RendererDepthFunc:            2,
	RendererFog:                  8,
	RendererLightModel:           5,
	RendererLight:                25,
	RendererMaterial:             19,
	RendererLineWidth:            1,
	RendererPointSize:            1,
	RendererPolygonMode:          4,
	RendererStencil:              7,
	RendererDisableStencil:       0,
	RendererSetRGBA:              4,
	RendererUseProgram:           1,
	RendererUniform:              3, // plus the values
	RendererBindTexture:          4,
	RendererDisableTextureUnit:   1,
	RendererTexGen:               7,
	RendererTextureMatrix:        17,
	RendererVertexArray:          5,
	RendererNormalArray:          5,
	RendererColorArray:           5,
	RendererTexCoordArray:        6,
	RendererDisableArrays:        0,
	RendererElementBuffer:        1,
	RendererDrawArrays:           3,
	RendererDrawElements:         3,
	RendererCallBuffer:           1,
	RendererResetState:           0,
}

// Walk calls fn for each command in the buffer, including the commands of
// called buffers, passing the command and its arguments.
func (cb *CommandBuffer) Walk(fn func(cmd uint32, args []uint32)) error {
	for i := 0; i < len(cb.Buf); {
		cmd := cb.Buf[i]
		i++
		if cmd >= RendererNumCommands {
			return fmt.Errorf("%d: invalid command at offset %d", cmd, i-1)
		}

		n := fixedArgs[cmd]
		if cmd == RendererUniform && i+2 < len(cb.Buf) {
			n += int(cb.Buf[i+2])
		}
		if i+n > len(cb.Buf) {
			return fmt.Errorf("%d: truncated command at offset %d", cmd, i-1)
		}
		args := cb.Buf[i : i+n]
		i += n

		if cmd == RendererCallBuffer {
			if err := cb.called[args[0]].Walk(fn); err != nil {
				return err
			}
			continue
		}
		fn(cmd, args)
	}
	return nil
}

// Commands returns the sequence of commands in the buffer.
func (cb *CommandBuffer) Commands() []uint32 {
	var cmds []uint32
	cb.Walk(func(cmd uint32, args []uint32) { cmds = append(cmds, cmd) })
	return cmds
}

// Stats returns the statistics that rendering the buffer would produce.
func (cb *CommandBuffer) Stats() Stats {
	var s Stats
	s.Buffers = 1 + len(cb.called)
	s.BufferBytes = 4 * len(cb.Buf)
	for _, c := range cb.called {
		s.BufferBytes += 4 * len(c.Buf)
	}
	cb.Walk(func(cmd uint32, args []uint32) { s.Record(cmd, args) })
	return s
}
