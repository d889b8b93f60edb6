// renderer/ogl2/ogl2.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package ogl2 executes command buffers using the OpenGL 2.1
// fixed-function pipeline (plus GLSL programs where requested).
package ogl2

import (
	"fmt"
	"io/fs"
	gomath "math"
	"strings"
	"unsafe"

	"github.com/clyde3d/clyde/log"
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/renderer"

	"github.com/go-gl/gl/v2.1/gl"
)

type Renderer struct {
	lg       *log.Logger
	shaders  fs.FS
	programs map[uint32][]uint32 // program -> attached shaders
}

// New initializes OpenGL; it must be called with a current GL context.
// Shader sources are read from the provided file system.
func New(shaders fs.FS, lg *log.Logger) (*Renderer, error) {
	lg.Info("Starting OpenGL2 renderer initialization")
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	lg.Infof("OpenGL vendor %s renderer %s version %s", gl.GoStr(gl.GetString(gl.VENDOR)),
		gl.GoStr(gl.GetString(gl.RENDERER)), gl.GoStr(gl.GetString(gl.VERSION)))

	return &Renderer{
		lg:       lg,
		shaders:  shaders,
		programs: make(map[uint32][]uint32),
	}, nil
}

// StencilBits returns the number of bits in the stencil buffer.
func (r *Renderer) StencilBits() int {
	var bits int32
	gl.GetIntegerv(gl.STENCIL_BITS, &bits)
	return int(bits)
}

// MaxTextureUnits returns the number of fixed-function texture units.
func (r *Renderer) MaxTextureUnits() int {
	var n int32
	gl.GetIntegerv(gl.MAX_TEXTURE_UNITS, &n)
	return int(n)
}

func (r *Renderer) Dispose() {
	for p, shaders := range r.programs {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
		gl.DeleteProgram(p)
	}
	clear(r.programs)
}

///////////////////////////////////////////////////////////////////////////
// Shaders

// Program compiles and links the named vertex and fragment shaders,
// prefixing each with a #define for each of the given defines.
func (r *Renderer) Program(vertex, fragment string, defines []string) (*state.Program, error) {
	vs, err := r.compile(gl.VERTEX_SHADER, vertex, defines)
	if err != nil {
		return nil, err
	}
	fsh, err := r.compile(gl.FRAGMENT_SHADER, fragment, defines)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, err
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fsh)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(prog, n, nil, gl.Str(msg))
		gl.DeleteProgram(prog)
		gl.DeleteShader(vs)
		gl.DeleteShader(fsh)
		return nil, fmt.Errorf("%s/%s: link failed: %s", vertex, fragment, strings.TrimRight(msg, "\x00"))
	}

	r.programs[prog] = []uint32{vs, fsh}
	r.lg.Debugf("linked program %d from %s and %s", prog, vertex, fragment)
	return &state.Program{Handle: prog, Vertex: vertex, Fragment: fragment, Defines: defines}, nil
}

func (r *Renderer) compile(kind uint32, name string, defines []string) (uint32, error) {
	src, err := fs.ReadFile(r.shaders, name)
	if err != nil {
		return 0, err
	}

	var sb strings.Builder
	for _, d := range defines {
		fmt.Fprintf(&sb, "#define %s\n", d)
	}
	sb.Write(src)
	sb.WriteByte(0)

	sh := gl.CreateShader(kind)
	csrc, free := gl.Strs(sb.String())
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(sh, n, nil, gl.Str(msg))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("%s: compile failed: %s", name, strings.TrimRight(msg, "\x00"))
	}
	return sh, nil
}

func (r *Renderer) UniformLocation(p *state.Program, name string) int32 {
	return gl.GetUniformLocation(p.Handle, gl.Str(name+"\x00"))
}

///////////////////////////////////////////////////////////////////////////
// Command execution

var compareFuncs = [...]uint32{gl.NEVER, gl.LESS, gl.EQUAL, gl.LEQUAL, gl.GREATER, gl.NOTEQUAL, gl.GEQUAL, gl.ALWAYS}

var blendFactors = [...]uint32{gl.ZERO, gl.ONE, gl.SRC_COLOR, gl.ONE_MINUS_SRC_COLOR, gl.DST_COLOR,
	gl.ONE_MINUS_DST_COLOR, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.DST_ALPHA, gl.ONE_MINUS_DST_ALPHA,
	gl.SRC_ALPHA_SATURATE}

var cullFaces = [...]uint32{0, gl.BACK, gl.FRONT, gl.FRONT_AND_BACK}

var polygonModes = [...]uint32{gl.FILL, gl.LINE, gl.POINT}

var fogModes = [...]int32{0, gl.LINEAR, gl.EXP, gl.EXP2}

var texGenModes = [...]int32{0, gl.OBJECT_LINEAR, gl.EYE_LINEAR, gl.SPHERE_MAP, gl.NORMAL_MAP, gl.REFLECTION_MAP}

var texEnvModes = [...]int32{gl.MODULATE, gl.REPLACE, gl.DECAL, gl.BLEND, gl.ADD}

var stencilOps = [...]uint32{gl.KEEP, gl.ZERO, gl.REPLACE, gl.INCR, gl.DECR, gl.INVERT, gl.INCR_WRAP, gl.DECR_WRAP}

var colorMaterialModes = [...]uint32{0, gl.AMBIENT_AND_DIFFUSE, gl.AMBIENT, gl.DIFFUSE, gl.SPECULAR, gl.EMISSION}

var textureTargets = [...]uint32{gl.TEXTURE_2D, gl.TEXTURE_CUBE_MAP}

var primitives = [...]uint32{gl.POINTS, gl.LINES, gl.LINE_STRIP, gl.LINE_LOOP, gl.TRIANGLES, gl.TRIANGLE_STRIP,
	gl.TRIANGLE_FAN, gl.QUADS}

var texGenCoords = [4]uint32{gl.S, gl.T, gl.R, gl.Q}
var texGenEnables = [4]uint32{gl.TEXTURE_GEN_S, gl.TEXTURE_GEN_T, gl.TEXTURE_GEN_R, gl.TEXTURE_GEN_Q}

func enable(cap uint32, on bool) {
	if on {
		gl.Enable(cap)
	} else {
		gl.Disable(cap)
	}
}

func (r *Renderer) RenderCommandBuffer(cb *renderer.CommandBuffer) renderer.Stats {
	var stats renderer.Stats
	stats.Buffers++
	stats.BufferBytes += 4 * len(cb.Buf)

	i := 0
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	i32 := func() int32 {
		return int32(ui32())
	}
	float := func() float32 {
		return gomath.Float32frombits(ui32())
	}
	floats := func(n int) *float32 {
		ptr := (*float32)(unsafe.Pointer(&cb.Buf[i]))
		i += n
		return ptr
	}
	boolean := func() bool {
		return ui32() != 0
	}

	for i < len(cb.Buf) {
		start := i
		cmd := ui32()
		switch cmd {
		case renderer.RendererLoadProjectionMatrix:
			gl.MatrixMode(gl.PROJECTION)
			gl.LoadMatrixf(floats(16))

		case renderer.RendererLoadModelViewMatrix:
			gl.MatrixMode(gl.MODELVIEW)
			gl.LoadMatrixf(floats(16))

		case renderer.RendererClear:
			mask := ui32()
			rr, g, b, a := float(), float(), float(), float()
			var bits uint32
			if mask&renderer.ClearColor != 0 {
				gl.ClearColor(rr, g, b, a)
				bits |= gl.COLOR_BUFFER_BIT
			}
			if mask&renderer.ClearDepth != 0 {
				bits |= gl.DEPTH_BUFFER_BIT
			}
			if mask&renderer.ClearStencil != 0 {
				bits |= gl.STENCIL_BUFFER_BIT
			}
			gl.Clear(bits)

		case renderer.RendererViewport:
			x, y, w, h := i32(), i32(), i32(), i32()
			gl.Viewport(x, y, w, h)

		case renderer.RendererAlphaFunc:
			fn := state.CompareFunc(ui32())
			ref := float()
			enable(gl.ALPHA_TEST, fn != state.CompareAlways)
			gl.AlphaFunc(compareFuncs[fn], ref)

		case renderer.RendererBlendFunc:
			src, dst := ui32(), ui32()
			gl.Enable(gl.BLEND)
			gl.BlendFunc(blendFactors[src], blendFactors[dst])

		case renderer.RendererDisableBlend:
			gl.Disable(gl.BLEND)

		case renderer.RendererColorMask:
			gl.ColorMask(boolean(), boolean(), boolean(), boolean())

		case renderer.RendererCullFace:
			face := state.CullFace(ui32())
			enable(gl.CULL_FACE, face != state.FaceNone)
			if face != state.FaceNone {
				gl.CullFace(cullFaces[face])
			}

		case renderer.RendererDepthFunc:
			fn := state.CompareFunc(ui32())
			mask := boolean()
			// GL doesn't write depth when the test is disabled, so the test
			// stays on with ALWAYS instead.
			enable(gl.DEPTH_TEST, fn != state.CompareAlways || mask)
			gl.DepthFunc(compareFuncs[fn])
			gl.DepthMask(mask)

		case renderer.RendererFog:
			mode := state.FogMode(ui32())
			density, start, end := float(), float(), float()
			color := floats(4)
			enable(gl.FOG, mode != state.FogOff)
			if mode != state.FogOff {
				gl.Fogi(gl.FOG_MODE, fogModes[mode])
				gl.Fogf(gl.FOG_DENSITY, density)
				gl.Fogf(gl.FOG_START, start)
				gl.Fogf(gl.FOG_END, end)
				gl.Fogfv(gl.FOG_COLOR, color)
			}

		case renderer.RendererLightModel:
			n := int(ui32())
			gl.LightModelfv(gl.LIGHT_MODEL_AMBIENT, floats(4))
			enable(gl.LIGHTING, n > 0)
			for l := range 8 {
				enable(gl.LIGHT0+uint32(l), l < n)
			}

		case renderer.RendererLight:
			light := gl.LIGHT0 + ui32()
			gl.Lightfv(light, gl.POSITION, floats(4))
			gl.Lightfv(light, gl.AMBIENT, floats(4))
			gl.Lightfv(light, gl.DIFFUSE, floats(4))
			gl.Lightfv(light, gl.SPECULAR, floats(4))
			gl.Lightfv(light, gl.SPOT_DIRECTION, floats(3))
			gl.Lightf(light, gl.SPOT_EXPONENT, float())
			gl.Lightf(light, gl.SPOT_CUTOFF, float())
			gl.Lightf(light, gl.CONSTANT_ATTENUATION, float())
			gl.Lightf(light, gl.LINEAR_ATTENUATION, float())
			gl.Lightf(light, gl.QUADRATIC_ATTENUATION, float())

		case renderer.RendererMaterial:
			gl.Materialfv(gl.FRONT_AND_BACK, gl.AMBIENT, floats(4))
			gl.Materialfv(gl.FRONT_AND_BACK, gl.DIFFUSE, floats(4))
			gl.Materialfv(gl.FRONT_AND_BACK, gl.SPECULAR, floats(4))
			gl.Materialfv(gl.FRONT_AND_BACK, gl.EMISSION, floats(4))
			gl.Materialf(gl.FRONT_AND_BACK, gl.SHININESS, float())
			cm := state.ColorMaterialMode(ui32())
			enable(gl.COLOR_MATERIAL, cm != state.ColorMaterialDisabled)
			if cm != state.ColorMaterialDisabled {
				gl.ColorMaterial(gl.FRONT_AND_BACK, colorMaterialModes[cm])
			}
			flags := ui32()
			gl.LightModeli(gl.LIGHT_MODEL_TWO_SIDE, int32(flags&renderer.MaterialTwoSide))
			gl.LightModeli(gl.LIGHT_MODEL_LOCAL_VIEWER, int32(flags&renderer.MaterialLocalViewer))
			if flags&renderer.MaterialSeparateSpecular != 0 {
				gl.LightModeli(gl.LIGHT_MODEL_COLOR_CONTROL, gl.SEPARATE_SPECULAR_COLOR)
			} else {
				gl.LightModeli(gl.LIGHT_MODEL_COLOR_CONTROL, gl.SINGLE_COLOR)
			}
			if flags&renderer.MaterialFlatShading != 0 {
				gl.ShadeModel(gl.FLAT)
			} else {
				gl.ShadeModel(gl.SMOOTH)
			}

		case renderer.RendererLineWidth:
			gl.LineWidth(float())

		case renderer.RendererPointSize:
			gl.PointSize(float())

		case renderer.RendererPolygonMode:
			front, back := ui32(), ui32()
			factor, units := float(), float()
			gl.PolygonMode(gl.FRONT, polygonModes[front])
			gl.PolygonMode(gl.BACK, polygonModes[back])
			enable(gl.POLYGON_OFFSET_FILL, factor != 0 || units != 0)
			gl.PolygonOffset(factor, units)

		case renderer.RendererStencil:
			fn, ref, mask := ui32(), i32(), ui32()
			fail, zfail, pass := ui32(), ui32(), ui32()
			gl.Enable(gl.STENCIL_TEST)
			gl.StencilFunc(compareFuncs[fn], ref, mask)
			gl.StencilOp(stencilOps[fail], stencilOps[zfail], stencilOps[pass])
			gl.StencilMask(ui32())

		case renderer.RendererDisableStencil:
			gl.Disable(gl.STENCIL_TEST)
			gl.StencilMask(0xffffffff)

		case renderer.RendererSetRGBA:
			gl.Color4fv(floats(4))

		case renderer.RendererUseProgram:
			gl.UseProgram(ui32())

		case renderer.RendererUniform:
			loc, isInt, n := i32(), boolean(), int(ui32())
			if loc < 0 {
				i += n
				break
			}
			if isInt {
				ints := make([]int32, n)
				for j := range ints {
					ints[j] = int32(float())
				}
				gl.Uniform1iv(loc, int32(n), &ints[0])
				break
			}
			switch ptr := floats(n); n {
			case 1:
				gl.Uniform1fv(loc, 1, ptr)
			case 2:
				gl.Uniform2fv(loc, 1, ptr)
			case 3:
				gl.Uniform3fv(loc, 1, ptr)
			case 4:
				gl.Uniform4fv(loc, 1, ptr)
			case 16:
				gl.UniformMatrix4fv(loc, 1, false, ptr)
			default:
				r.lg.Errorf("%d: unsupported uniform size", n)
			}

		case renderer.RendererBindTexture:
			unit, handle, target, env := ui32(), ui32(), ui32(), ui32()
			gl.ActiveTexture(gl.TEXTURE0 + unit)
			for _, t := range textureTargets {
				enable(t, t == textureTargets[target])
			}
			gl.BindTexture(textureTargets[target], handle)
			gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, texEnvModes[env])

		case renderer.RendererDisableTextureUnit:
			gl.ActiveTexture(gl.TEXTURE0 + ui32())
			for _, t := range textureTargets {
				gl.Disable(t)
			}
			for _, e := range texGenEnables {
				gl.Disable(e)
			}

		case renderer.RendererTexGen:
			unit, axis, mode := ui32(), ui32(), state.TexGenMode(ui32())
			plane := floats(4)
			gl.ActiveTexture(gl.TEXTURE0 + unit)
			enable(texGenEnables[axis], mode != state.TexGenNone)
			if mode != state.TexGenNone {
				gl.TexGeni(texGenCoords[axis], gl.TEXTURE_GEN_MODE, texGenModes[mode])
				switch mode {
				case state.TexGenObjectLinear:
					gl.TexGenfv(texGenCoords[axis], gl.OBJECT_PLANE, plane)
				case state.TexGenEyeLinear:
					gl.TexGenfv(texGenCoords[axis], gl.EYE_PLANE, plane)
				}
			}

		case renderer.RendererTextureMatrix:
			gl.ActiveTexture(gl.TEXTURE0 + ui32())
			gl.MatrixMode(gl.TEXTURE)
			gl.LoadMatrixf(floats(16))
			gl.MatrixMode(gl.MODELVIEW)

		case renderer.RendererVertexArray, renderer.RendererNormalArray, renderer.RendererColorArray,
			renderer.RendererTexCoordArray:
			var unit uint32
			if cmd == renderer.RendererTexCoordArray {
				unit = ui32()
			}
			buffer, size, stride, offset := ui32(), i32(), i32(), int(ui32())
			ui32() // normalized; only meaningful for generic attributes

			gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
			switch cmd {
			case renderer.RendererVertexArray:
				gl.EnableClientState(gl.VERTEX_ARRAY)
				gl.VertexPointer(size, gl.FLOAT, stride, gl.PtrOffset(offset))
			case renderer.RendererNormalArray:
				gl.EnableClientState(gl.NORMAL_ARRAY)
				gl.NormalPointer(gl.FLOAT, stride, gl.PtrOffset(offset))
			case renderer.RendererColorArray:
				gl.EnableClientState(gl.COLOR_ARRAY)
				gl.ColorPointer(size, gl.FLOAT, stride, gl.PtrOffset(offset))
			case renderer.RendererTexCoordArray:
				gl.ClientActiveTexture(gl.TEXTURE0 + unit)
				gl.EnableClientState(gl.TEXTURE_COORD_ARRAY)
				gl.TexCoordPointer(size, gl.FLOAT, stride, gl.PtrOffset(offset))
			}

		case renderer.RendererDisableArrays:
			gl.DisableClientState(gl.VERTEX_ARRAY)
			gl.DisableClientState(gl.NORMAL_ARRAY)
			gl.DisableClientState(gl.COLOR_ARRAY)
			gl.DisableClientState(gl.TEXTURE_COORD_ARRAY)
			gl.BindBuffer(gl.ARRAY_BUFFER, 0)

		case renderer.RendererElementBuffer:
			gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ui32())

		case renderer.RendererDrawArrays:
			p, first, count := ui32(), i32(), i32()
			gl.DrawArrays(primitives[p], first, count)

		case renderer.RendererDrawElements:
			p, count, offset := ui32(), i32(), int(ui32())
			gl.DrawElements(primitives[p], count, gl.UNSIGNED_INT, gl.PtrOffset(offset))

		case renderer.RendererCallBuffer:
			idx := int(ui32())
			stats.Merge(r.RenderCommandBuffer(cb.Called(idx)))
			continue

		case renderer.RendererResetState:
			gl.UseProgram(0)
			gl.Disable(gl.BLEND)
			gl.Disable(gl.ALPHA_TEST)
			gl.Disable(gl.CULL_FACE)
			gl.Disable(gl.FOG)
			gl.Disable(gl.LIGHTING)
			gl.Disable(gl.STENCIL_TEST)
			gl.Disable(gl.POLYGON_OFFSET_FILL)
			gl.Enable(gl.DEPTH_TEST)
			gl.DepthFunc(gl.LEQUAL)
			gl.DepthMask(true)
			gl.ColorMask(true, true, true, true)
			gl.DisableClientState(gl.VERTEX_ARRAY)
			gl.DisableClientState(gl.NORMAL_ARRAY)
			gl.DisableClientState(gl.COLOR_ARRAY)
			gl.DisableClientState(gl.TEXTURE_COORD_ARRAY)
			gl.Disable(gl.TEXTURE_2D)

		default:
			r.lg.Errorf("%d: unhandled command", cmd)
			return stats
		}

		stats.Record(cmd, cb.Buf[start+1:i])
	}

	return stats
}
