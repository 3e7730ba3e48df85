// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/compose"
)

// benchRecords lays out an n x n grid of rounded panels.
func benchRecords(n int) []compose.InstanceRecord {
	records := make([]compose.InstanceRecord, 0, n*n)
	step := 1 / float32(n)
	for y := range n {
		for x := range n {
			records = append(records, compose.SolidRectangle(
				mgl32.Vec2{float32(x) * step, float32(y) * step},
				mgl32.Vec2{step * 0.9, step * 0.9},
				compose.RGBA{R: 0.2, G: 0.4, B: 0.8, A: 0.9},
			).WithCornerRadius(compose.UniformRadius(6)))
		}
	}
	return records
}

// BenchmarkRender measures full frames across sample counts and sizes.
func BenchmarkRender(b *testing.B) {
	cases := []struct {
		name    string
		w, h    uint32
		samples int
		blur    bool
	}{
		{"640x360_x1", 640, 360, 1, false},
		{"640x360_x4", 640, 360, 4, false},
		{"640x360_x4_blur", 640, 360, 4, true},
		{"1920x1080_x4", 1920, 1080, 4, false},
	}
	records := benchRecords(8)
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			r := NewSoftwareRenderer(Options{})
			defer r.Close()
			ctx := context.Background()
			b.ReportAllocs()
			b.SetBytes(int64(tc.w) * int64(tc.h) * 4)
			for b.Loop() {
				frame := newFrame(tc.w, tc.h, tc.samples, records...)
				frame.Blur = tc.blur
				if _, err := r.Render(ctx, frame); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkBlur measures the two-pass blur at each kernel size step.
func BenchmarkBlur(b *testing.B) {
	widths := []struct {
		name string
		w    int
	}{
		{"k1_1024", 1024},
		{"k3_2048", 2048},
		{"k5_4096", 4096},
	}
	for _, tc := range widths {
		b.Run(tc.name, func(b *testing.B) {
			r := NewSoftwareRenderer(Options{})
			defer r.Close()
			src, _ := NewTarget(tc.w, 64, 1)
			tmp, _ := NewTarget(tc.w, 64, 1)
			dst, _ := NewTarget(tc.w, 64, 1)
			ctx := context.Background()
			for b.Loop() {
				if err := r.blur.Apply(ctx, src, tmp, dst); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
