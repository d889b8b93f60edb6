// util/cache.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

///////////////////////////////////////////////////////////////////////////
// SoftCache

// SoftCache is a get-or-compute cache whose entries may disappear at any
// time: when it is over capacity, when Invalidate is called, or when the
// associated MemoryMonitor reports that the system is short on memory.
// Callers must always go through Get rather than holding on to values.
type SoftCache[K comparable, V any] struct {
	lru     *lru.Cache[K, V]
	monitor *MemoryMonitor

	hits, misses, drops int
}

const DefaultSoftCacheSize = 256

// NewSoftCache returns a cache holding at most size entries. monitor may
// be nil, in which case entries are only dropped by LRU eviction and
// explicit invalidation.
func NewSoftCache[K comparable, V any](size int, monitor *MemoryMonitor) *SoftCache[K, V] {
	if size <= 0 {
		size = DefaultSoftCacheSize
	}
	c, err := lru.New[K, V](size)
	if err != nil {
		// Only happens for non-positive sizes, which we've excluded.
		panic(err)
	}
	return &SoftCache[K, V]{lru: c, monitor: monitor}
}

// Get returns the cached value for k, calling compute and caching its
// result on a miss.
func (c *SoftCache[K, V]) Get(k K, compute func() V) V {
	c.checkPressure()

	if v, ok := c.lru.Get(k); ok {
		c.hits++
		return v
	}
	c.misses++
	v := compute()
	c.lru.Add(k, v)
	return v
}

// Lookup returns the cached value for k without computing it.
func (c *SoftCache[K, V]) Lookup(k K) (V, bool) {
	c.checkPressure()
	return c.lru.Get(k)
}

func (c *SoftCache[K, V]) Put(k K, v V) {
	c.lru.Add(k, v)
}

func (c *SoftCache[K, V]) Remove(k K) {
	c.lru.Remove(k)
}

// Invalidate drops every entry. It is idempotent.
func (c *SoftCache[K, V]) Invalidate() {
	c.lru.Purge()
}

func (c *SoftCache[K, V]) Len() int {
	return c.lru.Len()
}

func (c *SoftCache[K, V]) checkPressure() {
	if c.monitor != nil && c.lru.Len() > 0 && c.monitor.UnderPressure() {
		c.drops++
		c.lru.Purge()
	}
}

func (c *SoftCache[K, V]) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("entries", c.lru.Len()),
		slog.Int("hits", c.hits),
		slog.Int("misses", c.misses),
		slog.Int("pressure_drops", c.drops))
}

///////////////////////////////////////////////////////////////////////////
// Object storage

// StoreObject writes obj to w as zstd-compressed msgpack.
func StoreObject(w io.Writer, obj any) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode object: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// RetrieveObject decodes an object previously written by StoreObject.
func RetrieveObject(r io.Reader, obj any) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	if err := msgpack.NewDecoder(zr).Decode(obj); err != nil {
		return fmt.Errorf("failed to decode object: %w", err)
	}
	return nil
}

func fullCachePath(path string) (string, error) {
	cd, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cd, "Clyde", path), nil
}

// CacheStoreObject stores obj in the user's cache directory under the
// given relative path. Absolute paths are used as is.
func CacheStoreObject(path string, obj any) error {
	if !filepath.IsAbs(path) {
		var err error
		if path, err = fullCachePath(path); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return StoreObject(f, obj)
}

// CacheRetrieveObject loads an object stored by CacheStoreObject and
// returns the modification time of the file it came from.
func CacheRetrieveObject(path string, obj any) (time.Time, error) {
	if !filepath.IsAbs(path) {
		var err error
		if path, err = fullCachePath(path); err != nil {
			return time.Time{}, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	return fi.ModTime(), RetrieveObject(f, obj)
}
