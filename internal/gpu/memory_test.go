//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/gogpu/compose"
)

func TestMemoryBudgetDefaults(t *testing.T) {
	tests := []struct {
		name string
		mb   int
		want uint64
	}{
		{"explicit", 64, 64 << 20},
		{"below minimum uses default", 4, DefaultMaxMemoryMB << 20},
		{"zero uses default", 0, DefaultMaxMemoryMB << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newMemoryBudget(tt.mb).stats().TotalBytes; got != tt.want {
				t.Errorf("TotalBytes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMemoryBudgetClasses(t *testing.T) {
	m := newMemoryBudget(MinMemoryMB)
	const mb = 1 << 20

	m.set(memTargets, 10*mb)
	m.set(memTextures, 4*mb)
	if got := m.stats().UsedBytes; got != 14*mb {
		t.Fatalf("UsedBytes = %d, want %d", got, 14*mb)
	}

	// Replacing a class only counts the difference.
	if err := m.reserve(memTargets, 12*mb); err != nil {
		t.Errorf("reserve within budget: %v", err)
	}
	err := m.reserve(memTargets, 13*mb)
	if !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Errorf("reserve over budget = %v, want ErrMemoryBudgetExceeded", err)
	}
	if m.stats().Rejections != 1 {
		t.Errorf("Rejections = %d, want 1", m.stats().Rejections)
	}

	m.set(memTextures, 0)
	if got := m.stats().UsedBytes; got != 10*mb {
		t.Errorf("UsedBytes after release = %d, want %d", got, 10*mb)
	}
	m.reset()
	if s := m.stats(); s.UsedBytes != 0 || s.AvailableBytes != s.TotalBytes {
		t.Errorf("stats after reset = %+v", s)
	}
}

func TestMemoryBudgetSetBudget(t *testing.T) {
	m := newMemoryBudget(DefaultMaxMemoryMB)
	if err := m.setBudget(MinMemoryMB - 1); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("setBudget below minimum = %v", err)
	}
	if err := m.setBudget(32); err != nil {
		t.Fatalf("setBudget: %v", err)
	}
	if got := m.stats().TotalBytes; got != 32<<20 {
		t.Errorf("TotalBytes = %d", got)
	}
}

func TestMemoryStatsString(t *testing.T) {
	s := MemoryStats{TotalBytes: 64 << 20, UsedBytes: 16 << 20, Utilization: 0.25, Rejections: 2}
	got := s.String()
	for _, want := range []string{"25.0%", "16/64 MB", "2 rejected"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestTargetBytes(t *testing.T) {
	tests := []struct {
		w, h    uint32
		samples int
		want    uint64
	}{
		{1, 1, 1, 20},
		{10, 10, 4, 100 * 44},
		{1920, 1080, 16, 1920 * 1080 * 140},
	}
	for _, tt := range tests {
		if got := targetBytes(tt.w, tt.h, tt.samples); got != tt.want {
			t.Errorf("targetBytes(%d, %d, %d) = %d, want %d", tt.w, tt.h, tt.samples, got, tt.want)
		}
	}
}

func TestTableBytes(t *testing.T) {
	views := []*compose.Texture{compose.NewTexture(4, 2), compose.NewTexture(2, 4)}
	// 4x4 array of two layers, 1x1 white atlas, two scale vec4s.
	want := uint64(4*4*4*2 + 4 + 2*layerScaleStride)
	if got := tableBytes(views, nil); got != want {
		t.Errorf("tableBytes = %d, want %d", got, want)
	}
}

func TestCompositorMemoryBudgetFallsBack(t *testing.T) {
	c := newNoopCompositor(t)
	if err := c.SetMemoryBudget(MinMemoryMB); err != nil {
		t.Fatal(err)
	}
	// 1024x1024 at 4x needs 44 MB of targets.
	dst := image.NewRGBA(image.Rect(0, 0, 1024, 1024))
	err := c.RenderFrame(context.Background(), testFrame(1024, 1024, 4, false), dst)
	if !errors.Is(err, compose.ErrFallbackToCPU) || !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Fatalf("RenderFrame = %v, want budget fallback", err)
	}
	if c.MemoryStats().Rejections == 0 {
		t.Error("rejection not counted")
	}
}

func TestCompositorMemoryAccounting(t *testing.T) {
	c := newNoopCompositor(t)
	dst := image.NewRGBA(image.Rect(0, 0, 32, 16))
	if err := c.RenderFrame(context.Background(), testFrame(32, 16, 4, false), dst); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if used := c.MemoryStats().UsedBytes; used < targetBytes(32, 16, 4) {
		t.Errorf("UsedBytes = %d, want at least the targets (%d)", used, targetBytes(32, 16, 4))
	}
	c.Close()
	if used := c.MemoryStats().UsedBytes; used != 0 {
		t.Errorf("UsedBytes after Close = %d, want 0", used)
	}
}
