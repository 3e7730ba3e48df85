// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/compose"
)

// Memory budget errors.
var (
	// ErrMemoryBudgetExceeded is returned when a frame's resources would
	// exceed the compositor's GPU memory budget.
	ErrMemoryBudgetExceeded = errors.New("wgpu: memory budget exceeded")

	// ErrInvalidBudget is returned for a budget below MinMemoryMB.
	ErrInvalidBudget = errors.New("wgpu: memory budget too small")
)

// Default memory limits.
const (
	// DefaultMaxMemoryMB is the default GPU memory budget (256 MB).
	DefaultMaxMemoryMB = 256

	// MinMemoryMB is the minimum allowed memory budget (16 MB).
	MinMemoryMB = 16
)

// Resource classes tracked by the budget.
const (
	memTargets   = "targets"
	memTextures  = "textures"
	memInstances = "instances"
)

// MemoryStats contains GPU memory usage statistics.
type MemoryStats struct {
	// TotalBytes is the memory budget in bytes.
	TotalBytes uint64

	// UsedBytes is the memory held by resident resources.
	UsedBytes uint64

	// AvailableBytes is the remaining budget.
	AvailableBytes uint64

	// Rejections counts frames refused because they did not fit.
	Rejections uint64

	// Utilization is the fraction of the budget in use (0.0 to 1.0).
	Utilization float64
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d MB, %d rejected]",
		s.Utilization*100,
		s.UsedBytes/(1024*1024),
		s.TotalBytes/(1024*1024),
		s.Rejections)
}

// memoryBudget accounts the compositor's resident GPU allocations per
// resource class. Every class is replaced as a whole, since targets, the
// texture table and instance buffers are each rebuilt in one piece.
//
// memoryBudget is safe for concurrent use.
type memoryBudget struct {
	mu         sync.Mutex
	budget     uint64
	classes    map[string]uint64
	used       uint64
	rejections uint64
}

func newMemoryBudget(megabytes int) *memoryBudget {
	if megabytes < MinMemoryMB {
		megabytes = DefaultMaxMemoryMB
	}
	return &memoryBudget{
		budget:  uint64(megabytes) * 1024 * 1024, //nolint:gosec // G115: bounded below by MinMemoryMB
		classes: make(map[string]uint64),
	}
}

// reserve checks that replacing class with bytes stays within budget.
func (m *memoryBudget) reserve(class string, bytes uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.used - m.classes[class] + bytes
	if next > m.budget {
		m.rejections++
		return fmt.Errorf("%w: %s needs %d bytes, %d of %d in use",
			ErrMemoryBudgetExceeded, class, bytes, m.used-m.classes[class], m.budget)
	}
	return nil
}

// set records class as holding bytes.
func (m *memoryBudget) set(class string, bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used = m.used - m.classes[class] + bytes
	if bytes == 0 {
		delete(m.classes, class)
		return
	}
	m.classes[class] = bytes
}

// reset forgets every class.
func (m *memoryBudget) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.classes)
	m.used = 0
}

func (m *memoryBudget) setBudget(megabytes int) error {
	if megabytes < MinMemoryMB {
		return fmt.Errorf("%w: %d MB, minimum is %d MB", ErrInvalidBudget, megabytes, MinMemoryMB)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budget = uint64(megabytes) * 1024 * 1024 //nolint:gosec // G115: checked above
	return nil
}

func (m *memoryBudget) stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := MemoryStats{
		TotalBytes: m.budget,
		UsedBytes:  m.used,
		Rejections: m.rejections,
	}
	if m.used < m.budget {
		s.AvailableBytes = m.budget - m.used
	}
	if m.budget > 0 {
		s.Utilization = float64(m.used) / float64(m.budget)
	}
	return s
}

// targetBytes is the footprint of frameTargets: color and depth at
// samples per pixel, then single-sample resolve color, depth and blur
// scratch. Both formats are 4 bytes per sample.
func targetBytes(w, h uint32, samples int) uint64 {
	return uint64(w) * uint64(h) * (8*uint64(samples) + 12) //nolint:gosec // G115: samples is 1..16
}

// tableBytes is the footprint of a tableUpload for views and atlas.
func tableBytes(views []*compose.Texture, atlas *compose.Texture) uint64 {
	if atlas == nil {
		atlas = whitePixel
	}
	w, h := arrayExtent(views)
	array := uint64(w) * uint64(h) * 4 * uint64(len(views))
	font := uint64(atlas.Width()) * uint64(atlas.Height()) * 4 //nolint:gosec // G115: texture sizes are positive
	return array + font + uint64(len(views))*layerScaleStride
}
