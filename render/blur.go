// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/filter"
	"github.com/gogpu/compose/internal/parallel"
)

// BlurPass is the separable box blur. The kernel size follows from the
// source width (see filter.KernelSize), so a pass over a smaller mip level
// uses a narrower kernel.
type BlurPass struct {
	pool *parallel.WorkerPool
}

// NewBlurPass creates a blur pass. A nil pool runs on the calling goroutine.
func NewBlurPass(pool *parallel.WorkerPool) *BlurPass {
	return &BlurPass{pool: pool}
}

// Horizontal blurs src along X into dst.
func (p *BlurPass) Horizontal(ctx context.Context, src, dst *Target) error {
	if err := p.check(ctx, src, dst); err != nil {
		return err
	}
	k := filter.KernelSize(src.width)
	s, d := src.plane(), dst.plane()
	forRows(p.pool, src.height, func(y0, y1 int) { filter.BoxHorizontal(s, d, k, y0, y1) })
	return nil
}

// Vertical blurs src along Y into dst.
func (p *BlurPass) Vertical(ctx context.Context, src, dst *Target) error {
	if err := p.check(ctx, src, dst); err != nil {
		return err
	}
	k := filter.KernelSize(src.width)
	s, d := src.plane(), dst.plane()
	forRows(p.pool, src.height, func(y0, y1 int) { filter.BoxVertical(s, d, k, y0, y1) })
	return nil
}

// Apply runs the horizontal pass from src into tmp and the vertical pass
// from tmp into dst. src and dst may be the same target.
func (p *BlurPass) Apply(ctx context.Context, src, tmp, dst *Target) error {
	if err := p.Horizontal(ctx, src, tmp); err != nil {
		return err
	}
	return p.Vertical(ctx, tmp, dst)
}

// ApplyChain blurs every level of a mip chain in place, each with the
// kernel selected by its own width.
func (p *BlurPass) ApplyChain(ctx context.Context, levels []*Target) error {
	for i, lvl := range levels {
		tmp, err := NewTarget(lvl.width, lvl.height, 1)
		if err != nil {
			return fmt.Errorf("render: blur level %d: %w", i, err)
		}
		if err := p.Apply(ctx, lvl, tmp, lvl); err != nil {
			return fmt.Errorf("render: blur level %d: %w", i, err)
		}
	}
	return nil
}

func (p *BlurPass) check(ctx context.Context, src, dst *Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if src == dst || src.samples != 1 || dst.samples != 1 || !src.sameSize(dst) {
		return fmt.Errorf("%w: blur needs distinct single-sample targets of equal size", compose.ErrTargetMismatch)
	}
	return nil
}
