// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/blend"
	"github.com/gogpu/compose/internal/parallel"
)

func uniformTarget(t *testing.T, w, h int, c compose.RGBA) *Target {
	t.Helper()
	tgt, err := NewTarget(w, h, 1)
	if err != nil {
		t.Fatal(err)
	}
	tgt.Clear(c, 1)
	return tgt
}

func TestBlurUniformUnchanged(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()
	p := NewBlurPass(pool)

	// Widths selecting each kernel size: 1, 3, 5 and 7 taps.
	for _, w := range []int{1024, 2048, 4096, 8192} {
		src := uniformTarget(t, w, 3, compose.RGBA{R: 0.25, G: 0.5, B: 0.75, A: 0.3})
		tmp := uniformTarget(t, w, 3, compose.Transparent)
		dst := uniformTarget(t, w, 3, compose.Transparent)

		if err := p.Apply(context.Background(), src, tmp, dst); err != nil {
			t.Fatal(err)
		}
		for y := range 3 {
			for _, x := range []int{0, 1, w / 2, w - 2, w - 1} {
				if got := dst.Color(x, y, 0); got != (blend.Color{0.25, 0.5, 0.75, 1}) {
					t.Fatalf("width %d (%d,%d) = %v", w, x, y, got)
				}
			}
		}
	}
}

func TestBlurConstantUnchanged(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()
	p := NewBlurPass(pool)

	rng := rand.New(rand.NewPCG(5, 6))
	colors := []blend.Color{{0.1, 0.3, 0.7, 0.2}, {0.9, 0.01, 0.4, 1}}
	for range 4 {
		colors = append(colors, blend.Color{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()})
	}
	for _, w := range []int{2048, 4096, 8192} {
		for _, c := range colors {
			src, _ := NewTarget(w, 2, 1)
			for y := range 2 {
				for x := range w {
					src.SetColor(x, y, 0, c)
				}
			}
			tmp, _ := NewTarget(w, 2, 1)
			dst, _ := NewTarget(w, 2, 1)
			if err := p.Apply(context.Background(), src, tmp, dst); err != nil {
				t.Fatal(err)
			}
			want := blend.Color{c[0], c[1], c[2], 1}
			for y := range 2 {
				for _, x := range []int{0, 1, w / 3, w - 1} {
					if got := dst.Color(x, y, 0); got != want {
						t.Fatalf("width %d %v (%d,%d) = %v", w, c, x, y, got)
					}
				}
			}
		}
	}
}

func TestBlurSpreadsAlongAxis(t *testing.T) {
	const w, h = 2048, 5
	src := uniformTarget(t, w, h, compose.Black)
	src.SetColor(100, 2, 0, blend.Color{0.9, 0, 0, 1})
	dst := uniformTarget(t, w, h, compose.Transparent)

	p := NewBlurPass(nil)
	if err := p.Horizontal(context.Background(), src, dst); err != nil {
		t.Fatal(err)
	}
	for _, x := range []int{99, 100, 101} {
		if got := dst.Color(x, 2, 0)[0]; math.Abs(float64(got-0.3)) > 1e-6 {
			t.Errorf("horizontal x=%d red = %v, want 0.3", x, got)
		}
	}
	if got := dst.Color(102, 2, 0)[0]; got != 0 {
		t.Errorf("x=102 red = %v, outside the 3-tap kernel", got)
	}
	if got := dst.Color(100, 1, 0)[0]; got != 0 {
		t.Errorf("row above red = %v, horizontal pass leaked vertically", got)
	}

	vdst := uniformTarget(t, w, h, compose.Transparent)
	if err := p.Vertical(context.Background(), src, vdst); err != nil {
		t.Fatal(err)
	}
	for _, y := range []int{1, 2, 3} {
		if got := vdst.Color(100, y, 0)[0]; math.Abs(float64(got-0.3)) > 1e-6 {
			t.Errorf("vertical y=%d red = %v, want 0.3", y, got)
		}
	}
}

func TestBlurChecks(t *testing.T) {
	p := NewBlurPass(nil)
	a := uniformTarget(t, 8, 8, compose.Black)
	b := uniformTarget(t, 4, 4, compose.Black)
	ms, _ := NewTarget(8, 8, 4)

	if err := p.Horizontal(context.Background(), a, a); !errors.Is(err, compose.ErrTargetMismatch) {
		t.Errorf("same target: err = %v", err)
	}
	if err := p.Horizontal(context.Background(), a, b); !errors.Is(err, compose.ErrTargetMismatch) {
		t.Errorf("size mismatch: err = %v", err)
	}
	if err := p.Vertical(context.Background(), ms, a); !errors.Is(err, compose.ErrTargetMismatch) {
		t.Errorf("multisampled source: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := uniformTarget(t, 8, 8, compose.Black)
	if err := p.Horizontal(ctx, a, c); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: err = %v", err)
	}
}

func TestBlurApplyChain(t *testing.T) {
	src := uniformTarget(t, 64, 32, compose.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1})
	chain, err := MipChain(src, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewBlurPass(nil).ApplyChain(context.Background(), chain); err != nil {
		t.Fatal(err)
	}
	for i, lvl := range chain {
		got := lvl.Color(lvl.Width()/2, lvl.Height()/2, 0)
		if math.Abs(float64(got[0]-0.5)) > 1e-4 || got[3] != 1 {
			t.Errorf("level %d center = %v", i, got)
		}
	}
}
