// material/deformer.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"encoding/json"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/math"
	"github.com/clyde3d/clyde/render"

	"github.com/go-gl/mathgl/mgl32"
)

// Deformer wraps a technique's geometry with one that changes its shape
// every frame.
type Deformer interface {
	deform(ctx *render.Context, scope render.Scope, geom render.Geometry) render.Geometry
}

var deformerVariants = config.Variants[Deformer]{
	"skin": func() Deformer { return &SkinDeformer{} },
}

func decodeDeformer(data json.RawMessage) (Deformer, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return deformerVariants.Decode(data)
}

// SkinDeformer blends the geometry between the transforms of a set of
// bones; each bone names a scope variable holding a *mgl32.Mat4.
type SkinDeformer struct {
	Bones []string `json:"bones"`
}

func (d *SkinDeformer) deform(ctx *render.Context, scope render.Scope, geom render.Geometry) render.Geometry {
	sg := &SkinnedGeometry{Geometry: geom}
	for _, b := range d.Bones {
		if m := render.Resolve[*mgl32.Mat4](scope, b, nil); m != nil {
			sg.Bones = append(sg.Bones, m)
		} else {
			ctx.Logger().Warnf("%s: skin bone not found in scope %v", b, render.Path(scope))
		}
	}
	sg.Update()
	return sg
}

// SkinnedGeometry is a Geometry whose center follows the average of its
// bone transforms.
type SkinnedGeometry struct {
	render.Geometry
	Bones []*mgl32.Mat4

	center mgl32.Vec3
}

func (g *SkinnedGeometry) Center() mgl32.Vec3 { return g.center }

func (g *SkinnedGeometry) RequiresUpdate() bool { return true }

func (g *SkinnedGeometry) Update() {
	if g.Geometry.RequiresUpdate() {
		g.Geometry.Update()
	}

	c := g.Geometry.Center()
	if len(g.Bones) == 0 {
		g.center = c
		return
	}
	var sum mgl32.Vec3
	for _, b := range g.Bones {
		sum = sum.Add(math.TransformPoint(*b, c))
	}
	g.center = sum.Mul(1 / float32(len(g.Bones)))
}
