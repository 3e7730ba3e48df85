// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/blend"
	"github.com/gogpu/compose/internal/parallel"
)

// ResolveVariant names the two resolve implementations.
type ResolveVariant uint8

const (
	// ResolveCopy copies single-sample color and depth.
	ResolveCopy ResolveVariant = iota
	// ResolveMultisample averages every sample of a pixel.
	ResolveMultisample
)

// String returns the variant name.
func (v ResolveVariant) String() string {
	if v == ResolveMultisample {
		return "msaa"
	}
	return "copy"
}

// ResolvePass turns a multisampled color and depth target into a
// single-sample one. The sample count is fixed when the pass is built, the
// way a pipeline constant is fixed at pipeline creation.
type ResolvePass struct {
	samples int
	variant ResolveVariant
	pool    *parallel.WorkerPool
}

// NewResolvePass builds a resolve pass for sampleCount samples. A count of 1
// selects the copy variant. A nil pool runs the pass on the calling goroutine.
func NewResolvePass(sampleCount int, pool *parallel.WorkerPool) (*ResolvePass, error) {
	if !compose.ValidSampleCount(sampleCount) {
		return nil, fmt.Errorf("%w: %d", compose.ErrInvalidSampleCount, sampleCount)
	}
	p := &ResolvePass{samples: sampleCount, variant: ResolveCopy, pool: pool}
	if sampleCount > 1 {
		p.variant = ResolveMultisample
	}
	return p, nil
}

// SampleCount returns the sample count the pass was built for.
func (p *ResolvePass) SampleCount() int { return p.samples }

// Variant returns the selected implementation.
func (p *ResolvePass) Variant() ResolveVariant { return p.variant }

// Execute resolves src into dst. src must have the pass's sample count and
// dst must be a single-sample target of the same size.
func (p *ResolvePass) Execute(ctx context.Context, src, dst *Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if src.samples != p.samples || dst.samples != 1 || !src.sameSize(dst) {
		return fmt.Errorf("%w: resolve x%d from %dx%d x%d to %dx%d x%d", compose.ErrTargetMismatch,
			p.samples, src.width, src.height, src.samples, dst.width, dst.height, dst.samples)
	}

	if p.variant == ResolveCopy {
		forRows(p.pool, src.height, func(y0, y1 int) { resolveCopy(src, dst, y0, y1) })
		return nil
	}
	forRows(p.pool, src.height, func(y0, y1 int) { resolveMean(src, dst, y0, y1) })
	return nil
}

func resolveCopy(src, dst *Target, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < src.width; x++ {
			dst.SetColor(x, y, 0, src.Color(x, y, 0))
			dst.SetDepth(x, y, 0, src.Depth(x, y, 0))
		}
	}
}

// resolveMean writes the arithmetic mean of the samples. Sums are kept in
// float64, where S identical float32 values add exactly for S <= 16, so
// identical samples resolve to themselves.
func resolveMean(src, dst *Target, y0, y1 int) {
	n := float64(src.samples)
	for y := y0; y < y1; y++ {
		for x := 0; x < src.width; x++ {
			var sum [4]float64
			var depth float64
			for s := range src.samples {
				c := src.Color(x, y, s)
				sum[0] += float64(c[0])
				sum[1] += float64(c[1])
				sum[2] += float64(c[2])
				sum[3] += float64(c[3])
				depth += float64(src.Depth(x, y, s))
			}
			dst.SetColor(x, y, 0, blend.Color{
				float32(sum[0] / n), float32(sum[1] / n), float32(sum[2] / n), float32(sum[3] / n),
			})
			dst.SetDepth(x, y, 0, float32(depth/n))
		}
	}
}
