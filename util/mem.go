// util/mem.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryMonitor reports whether the system is short on memory. Queries to
// the OS are rate-limited so that it can be consulted on every cache
// access.
type MemoryMonitor struct {
	// Threshold is the used-memory percentage at or above which we are
	// considered to be under pressure.
	Threshold float64
	Interval  time.Duration

	lastCheck   time.Time
	underLimit  bool
	usedPercent func() (float64, error)
	now         func() time.Time
}

func NewMemoryMonitor(threshold float64, interval time.Duration) *MemoryMonitor {
	return &MemoryMonitor{
		Threshold:   threshold,
		Interval:    interval,
		underLimit:  true,
		usedPercent: systemUsedPercent,
		now:         time.Now,
	}
}

func systemUsedPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func (m *MemoryMonitor) UnderPressure() bool {
	if m == nil {
		return false
	}

	if t := m.now(); m.lastCheck.IsZero() || t.Sub(m.lastCheck) >= m.Interval {
		m.lastCheck = t
		if pct, err := m.usedPercent(); err == nil {
			m.underLimit = pct < m.Threshold
		} else {
			// If we can't tell, assume all is well.
			m.underLimit = true
		}
	}
	return !m.underLimit
}
