// util/util_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() {
		t.Errorf("new ErrorLogger has errors")
	}

	e.Push("materials")
	e.Push("Rock")
	e.ErrorString("unknown queue %q", "Opaqe")
	e.Pop()
	errBad := errors.New("bad")
	e.Error(errBad)
	e.Pop()

	if !e.HaveErrors() {
		t.Fatalf("expected errors")
	}
	expected := []string{`materials / Rock: unknown queue "Opaqe"`, "materials: bad"}
	if !slices.Equal(e.Errors(), expected) {
		t.Errorf("got %q, expected %q", e.Errors(), expected)
	}
	if e.CurrentDepth() != 0 {
		t.Errorf("got depth %d, expected 0", e.CurrentDepth())
	}

	err := e.Err()
	if !errors.Is(err, errBad) {
		t.Errorf("%v: expected to wrap %v", err, errBad)
	}
	var ce ConfigError
	if !errors.As(err, &ce) || !slices.Equal(ce.Path, []string{"materials", "Rock"}) {
		t.Errorf("got first error %+v, expected path materials/Rock", ce)
	}

	var none ErrorLogger
	if none.Err() != nil {
		t.Errorf("got %v from empty ErrorLogger", none.Err())
	}
}

func TestErrorLoggerCheckDepth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unbalanced Push")
		}
	}()

	var e ErrorLogger
	func() {
		defer e.CheckDepth(e.CurrentDepth())
		e.Push("leak")
	}()
}

func TestSoftCache(t *testing.T) {
	c := NewSoftCache[string, int](2, nil)

	computed := 0
	compute := func() int { computed++; return computed }

	if v := c.Get("a", compute); v != 1 {
		t.Errorf("got %d, expected 1", v)
	}
	if v := c.Get("a", compute); v != 1 || computed != 1 {
		t.Errorf("got %d after %d computes, expected cached 1", v, computed)
	}

	c.Get("b", compute)
	c.Get("c", compute) // evicts "a"
	if _, ok := c.Lookup("a"); ok {
		t.Errorf("expected least recently used entry to be evicted")
	}

	c.Invalidate()
	c.Invalidate()
	if c.Len() != 0 {
		t.Errorf("got %d entries after Invalidate, expected 0", c.Len())
	}
	if v := c.Get("b", compute); v != 4 {
		t.Errorf("got %d, expected recomputed value 4", v)
	}
}

func TestSoftCacheMemoryPressure(t *testing.T) {
	used := 50.
	now := time.Unix(1000, 0)
	m := &MemoryMonitor{
		Threshold:   90,
		Interval:    time.Second,
		underLimit:  true,
		usedPercent: func() (float64, error) { return used, nil },
		now:         func() time.Time { return now },
	}

	c := NewSoftCache[int, int](16, m)
	c.Put(1, 1)
	if _, ok := c.Lookup(1); !ok {
		t.Fatalf("entry dropped without memory pressure")
	}

	// Not rechecked until the interval has passed.
	used = 95
	if _, ok := c.Lookup(1); !ok {
		t.Errorf("memory monitor not rate limited")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Lookup(1); ok {
		t.Errorf("entry kept under memory pressure")
	}
	if v := c.Get(1, func() int { return 7 }); v != 7 {
		t.Errorf("got %d, expected recomputed 7", v)
	}

	m.usedPercent = func() (float64, error) { return 0, errors.New("unavailable") }
	now = now.Add(2 * time.Second)
	if m.UnderPressure() {
		t.Errorf("expected no pressure when memory usage is unavailable")
	}

	var nilMonitor *MemoryMonitor
	if nilMonitor.UnderPressure() {
		t.Errorf("nil monitor reports pressure")
	}
}

func TestStoreRetrieveObject(t *testing.T) {
	type record struct {
		Name  string
		Units []int
	}
	in := map[string]record{"Rock": {Name: "Rock", Units: []int{0, 1}}}

	var buf bytes.Buffer
	if err := StoreObject(&buf, in); err != nil {
		t.Fatal(err)
	}

	var out map[string]record
	if err := RetrieveObject(&buf, &out); err != nil {
		t.Fatal(err)
	}
	if r := out["Rock"]; r.Name != "Rock" || !slices.Equal(r.Units, []int{0, 1}) {
		t.Errorf("got %+v, expected %+v", out, in)
	}

	path := filepath.Join(t.TempDir(), "sub", "obj.msgpack.zst")
	if err := CacheStoreObject(path, in); err != nil {
		t.Fatal(err)
	}
	out = nil
	if mt, err := CacheRetrieveObject(path, &out); err != nil {
		t.Fatal(err)
	} else if mt.IsZero() {
		t.Errorf("expected modification time")
	}
	if len(out) != 1 {
		t.Errorf("got %+v, expected %+v", out, in)
	}
}

func TestSliceHelpers(t *testing.T) {
	sq := MapSlice([]int{1, 2, 3}, func(i int) int { return i * i })
	if !slices.Equal(sq, []int{1, 4, 9}) {
		t.Errorf("MapSlice: got %v", sq)
	}
	keys := SortedMapKeys(map[string]int{"b": 1, "a": 2})
	if !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("SortedMapKeys: got %v", keys)
	}
}
