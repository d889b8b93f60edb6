// cmd/clyde/particles.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"os"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/material"
	"github.com/clyde3d/clyde/particle"
	"github.com/clyde3d/clyde/rand"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/util"

	"github.com/go-gl/mathgl/mgl32"
)

// particleEnqueueables simulates the particle layers in filename for the
// given number of 60Hz frames and returns enqueueables that draw them
// with the named material.
func particleEnqueueables(ctx *render.Context, group *render.Group, filename, matName string,
	frames int) (render.Enqueueables, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	util.CheckJSON[[]particle.LayerConfig](data, &e)
	if e.HaveErrors() {
		return nil, fmt.Errorf("%s: %s", filename, e.String())
	}
	var layers []particle.LayerConfig
	if err := util.UnmarshalJSONBytes(data, &layers); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	m := config.Resolve[*material.Material](ctx.Configs, config.KindMaterial, matName)
	if m == nil {
		return nil, fmt.Errorf("%s: no such material", matName)
	}
	t := m.GetTechnique(ctx, "")
	if t == nil {
		return nil, fmt.Errorf("%s: no usable technique", matName)
	}

	lg := ctx.Logger()
	emitter := mgl32.Translate3D(0, 0, -5)
	var ens render.Enqueueables
	for i := range layers {
		cfg := &layers[i]
		s := particle.NewLayerState(cfg, particle.NewEmitterLayer(emitter, cfg.MoveWithEmitter, rand.Make(int64(i))), lg)
		for range frames {
			s.Tick(1.0 / 60)
		}
		lg.Info("simulated particle layer", "layer", cfg.Name, "particles", len(s.Particles))
		fmt.Printf("%s: %d particles\n", cfg.Name, len(s.Particles))

		geom := particle.NewLayerGeometry(s, uint32(100+2*i), uint32(101+2*i))
		scope := render.NewScope(cfg.Name, ctx.Scope)
		if en := t.CreateEnqueueable(ctx, group, scope, geom, true); en != nil {
			ens = append(ens, en)
		}
	}
	return ens, nil
}
