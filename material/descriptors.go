// material/descriptors.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"slices"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/render"
	"github.com/clyde3d/clyde/util"
)

// PassDescriptor describes the vertex data that a pass needs from the
// geometry it draws.
type PassDescriptor struct {
	// TexCoordSets lists the texture units that need texture coordinates
	// from the geometry.
	TexCoordSets  []int    `msgpack:"t"`
	Colors        bool     `msgpack:"c"`
	Normals       bool     `msgpack:"n"`
	VertexAttribs []string `msgpack:"a"`
}

func (d *PassDescriptor) Equal(o *PassDescriptor) bool {
	return slices.Equal(d.TexCoordSets, o.TexCoordSets) && d.Colors == o.Colors && d.Normals == o.Normals &&
		slices.Equal(d.VertexAttribs, o.VertexAttribs)
}

// DescriptorTable holds the pass descriptors of the technique chosen for
// each material, so that geometry can be prepared before the rendering
// context exists.
type DescriptorTable struct {
	Scheme      string                       `msgpack:"s"`
	Compat      render.CapabilityKey         `msgpack:"k"`
	Descriptors map[string][]*PassDescriptor `msgpack:"d"`
}

// CollectDescriptors returns the pass descriptors for all registered
// materials for the given scheme. Materials without a usable technique
// are omitted.
func CollectDescriptors(ctx *render.Context, scheme string) *DescriptorTable {
	table := &DescriptorTable{
		Scheme:      scheme,
		Compat:      ctx.CapabilityKey(),
		Descriptors: make(map[string][]*PassDescriptor),
	}
	for _, name := range ctx.Configs.Names(config.KindMaterial) {
		m := config.Resolve[*Material](ctx.Configs, config.KindMaterial, name)
		if m == nil {
			continue
		}
		if t := m.GetTechnique(ctx, scheme); t != nil {
			table.Descriptors[name] = t.Descriptors(ctx)
		}
	}
	return table
}

// SaveDescriptors writes the table to the user's cache directory.
func SaveDescriptors(path string, table *DescriptorTable) error {
	return util.CacheStoreObject(path, table)
}

// LoadDescriptors reads a table written by SaveDescriptors.
func LoadDescriptors(path string) (*DescriptorTable, error) {
	var table DescriptorTable
	if _, err := util.CacheRetrieveObject(path, &table); err != nil {
		return nil, err
	}
	return &table, nil
}
