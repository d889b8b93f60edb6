// particle/geometry.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	"github.com/clyde3d/clyde/math"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/render/state"
	"github.com/clyde3d/clyde/renderer"
	"github.com/clyde3d/clyde/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex layout: position (3), color (4), texture coordinates (2).
const (
	vertexFloats = 9
	vertexStride = 4 * vertexFloats
)

// Index data for n quads depends only on n, so it's shared between all
// layers with the same maximum particle count.
var sharedQuadIndices = util.NewSoftCache[int, []uint32](16, nil)

// InvalidateSharedData drops the shared index data; it's rebuilt on
// demand.
func InvalidateSharedData() {
	sharedQuadIndices.Invalidate()
}

func quadIndices(n int) []uint32 {
	return sharedQuadIndices.Get(n, func() []uint32 {
		idx := make([]uint32, 0, 6*n)
		for i := range uint32(n) {
			b := 4 * i
			idx = append(idx, b, b+1, b+2, b, b+2, b+3)
		}
		return idx
	})
}

// LayerGeometry draws a layer's particles as camera-facing quads. The
// caller uploads Vertices and Indices to the buffers named by
// VertexBuffer and IndexBuffer after each update.
type LayerGeometry struct {
	State        *LayerState
	VertexBuffer uint32
	IndexBuffer  uint32
	Vertices     []float32
	Indices      []uint32

	arrays *state.ArrayState
	center mgl32.Vec3
}

func NewLayerGeometry(s *LayerState, vertexBuffer, indexBuffer uint32) *LayerGeometry {
	vertex := func(size, offset int32) *state.ClientArray {
		return &state.ClientArray{Buffer: vertexBuffer, Size: size, Stride: vertexStride, Offset: offset}
	}
	return &LayerGeometry{
		State:        s,
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		Vertices:     make([]float32, 0, 4*vertexFloats*s.Config.MaxParticles),
		Indices:      quadIndices(s.Config.MaxParticles),
		arrays: &state.ArrayState{
			Vertex:        vertex(3, 0),
			Color:         vertex(4, 12),
			TexCoords:     []*state.ClientArray{vertex(2, 28)},
			ElementBuffer: indexBuffer,
		},
	}
}

func (g *LayerGeometry) Center() mgl32.Vec3                    { return g.center }
func (g *LayerGeometry) ArrayState(pass int) *state.ArrayState { return g.arrays }

func (g *LayerGeometry) DrawCommand(pass int) render.DrawCommand {
	return render.DrawCommand{Mode: renderer.Triangles, Count: int32(6 * len(g.State.Particles)), Indexed: true}
}

func (g *LayerGeometry) RequiresUpdate() bool { return true }

// Update rebuilds the vertices from the current particles.
func (g *LayerGeometry) Update() {
	// Fetched every update so that InvalidateSharedData reaches live geometries.
	g.Indices = quadIndices(g.State.Config.MaxParticles)

	view := g.State.Layer.ViewTransform()
	// The rows of the view rotation are the camera axes in layer space.
	right := mgl32.Vec3{view[0], view[4], view[8]}.Normalize()
	up := mgl32.Vec3{view[1], view[5], view[9]}.Normalize()

	corners := [4]struct {
		dx, dy float32
		s, t   float32
	}{{-1, -1, 0, 0}, {1, -1, 1, 0}, {1, 1, 1, 1}, {-1, 1, 0, 1}}

	g.Vertices = g.Vertices[:0]
	ext := math.EmptyExtent3D()
	for _, p := range g.State.Particles {
		half := p.Size / 2
		for _, c := range corners {
			v := p.Position.Add(right.Mul(c.dx * half)).Add(up.Mul(c.dy * half))
			g.Vertices = append(g.Vertices, v[0], v[1], v[2], p.Color[0], p.Color[1], p.Color[2], p.Color[3],
				c.s, c.t)
		}
		ext = ext.Union(p.Position)
	}

	if ext.IsEmpty() {
		g.center = g.State.Layer.PointToLayer(mgl32.Vec3{})
	} else {
		g.center = ext.Center()
	}
}
