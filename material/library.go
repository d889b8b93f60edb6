// material/library.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/clyde3d/clyde/config"
	"github.com/clyde3d/clyde/log"
	"github.com/clyde3d/clyde/util"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidLibrary = errors.New("invalid material library")

// Library is the contents of a material definition file.
type Library struct {
	Name          string                     `json:"-"`
	RenderSchemes map[string]*RenderScheme   `json:"render_schemes,omitempty"`
	Enqueuers     map[string]*SharedEnqueuer `json:"enqueuers,omitempty"`
	Materials     map[string]*Material       `json:"materials,omitempty"`
}

// ParseLibrary decodes a material library. Problems with the JSON are
// accumulated in e; a nil Library is returned if there were any.
func ParseLibrary(name string, data []byte, e *util.ErrorLogger) *Library {
	e.Push(name)
	defer e.Pop()

	nerr := e.NumErrors()
	util.CheckJSON[Library](data, e)
	if e.NumErrors() > nerr {
		return nil
	}

	lib := &Library{Name: name}
	if err := util.UnmarshalJSONBytes(data, lib); err != nil {
		e.Error(err)
		return nil
	}

	for n, s := range lib.RenderSchemes {
		if s == nil {
			e.ErrorString("render scheme %q: no definition", n)
			continue
		}
		s.Name = n
	}
	for n, m := range lib.Materials {
		if m == nil {
			e.ErrorString("material %q: no definition", n)
			continue
		}
		m.Name = n
	}
	for n, en := range lib.Enqueuers {
		if en == nil || en.Enqueuer == nil {
			e.ErrorString("enqueuer %q: no definition", n)
		}
	}
	if e.NumErrors() > nerr {
		return nil
	}
	return lib
}

// LoadLibraries reads and parses the named library files concurrently.
// The libraries are returned in the order given.
func LoadLibraries(fsys fs.FS, names []string, lg *log.Logger) ([]*Library, error) {
	libs := make([]*Library, len(names))
	errs := make([]util.ErrorLogger, len(names))

	var eg errgroup.Group
	for i, name := range names {
		eg.Go(func() error {
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return err
			}
			libs[i] = ParseLibrary(name, data, &errs[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []error
	for i := range errs {
		if errs[i].HaveErrors() {
			errs[i].PrintErrors(lg)
			all = append(all, errs[i].Err())
		}
	}
	if len(all) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLibrary, errors.Join(all...))
	}
	return libs, nil
}

// Register adds the library's configs to the manager. Render schemes and
// enqueuers are registered before the materials that refer to them.
func (l *Library) Register(m *config.Manager) {
	for _, name := range util.SortedMapKeys(l.RenderSchemes) {
		m.Register(config.KindRenderScheme, name, l.RenderSchemes[name])
	}
	for _, name := range util.SortedMapKeys(l.Enqueuers) {
		m.Register(config.KindEnqueuer, name, l.Enqueuers[name].Enqueuer)
	}
	for _, name := range util.SortedMapKeys(l.Materials) {
		m.Register(config.KindMaterial, name, l.Materials[name])
	}
}

// Validate checks that the references in the library's configs resolve
// against the registered configs.
func (l *Library) Validate(m *config.Manager, e *util.ErrorLogger) {
	e.Push(l.Name)
	defer e.Pop()

	checkWrappers := func(en Enqueuer) {
		walkEnqueuers(en, func(en Enqueuer) {
			if w, ok := en.(*WrapperEnqueuer); ok && m.Lookup(config.KindEnqueuer, w.Ref) == nil {
				e.ErrorString("enqueuer %q: not found", w.Ref)
			}
		})
	}

	for _, name := range util.SortedMapKeys(l.Enqueuers) {
		e.Push("enqueuer " + name)
		checkWrappers(l.Enqueuers[name].Enqueuer)
		e.Pop()
	}

	for _, name := range util.SortedMapKeys(l.Materials) {
		e.Push("material " + name)
		switch impl := l.Materials[name].Implementation.(type) {
		case *Derived:
			if m.Lookup(config.KindMaterial, impl.Material) == nil {
				e.ErrorString("derived from %q: not found", impl.Material)
			}
		case *Original:
			for i, t := range impl.Techniques {
				e.Push(fmt.Sprintf("technique %d", i))
				if t.Scheme != "" && m.Lookup(config.KindRenderScheme, t.Scheme) == nil {
					e.ErrorString("render scheme %q: not found", t.Scheme)
				}
				checkWrappers(t.Enqueuer)
				e.Pop()
			}
		}
		e.Pop()
	}
}

// walkEnqueuers calls fn for en and each of the enqueuers nested within
// it. Wrapped enqueuers aren't followed.
func walkEnqueuers(en Enqueuer, fn func(Enqueuer)) {
	if en == nil {
		return
	}
	fn(en)
	switch en := en.(type) {
	case *CompoundEnqueuer:
		for _, sub := range en.Enqueuers {
			walkEnqueuers(sub, fn)
		}
	case *GroupedEnqueuer:
		for _, sub := range en.Enqueuers {
			walkEnqueuers(sub, fn)
		}
	}
}
