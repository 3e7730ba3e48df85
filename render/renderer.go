// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/parallel"
)

// Renderer executes compositor frames.
//
// Renderers are safe for concurrent use; frames are independent.
type Renderer interface {
	// Render draws frame and returns the resolved (and optionally blurred)
	// single-sample result. frame.Instances is released when Render returns.
	Render(ctx context.Context, frame *compose.Frame) (*Output, error)

	// Close releases the renderer's resources.
	Close()
}

// Options configures a SoftwareRenderer.
type Options struct {
	// Workers is the size of the worker pool. Zero uses GOMAXPROCS.
	Workers int

	// ClearDepth is the depth every sample starts from. Zero means 1.
	ClearDepth float32
}

// Output is the result of one frame.
type Output struct {
	// Target holds the final single-sample color and depth.
	Target *Target

	// Samples is the sample count the rectangle pass ran with.
	Samples int

	// Blurred reports whether the blur pass ran.
	Blurred bool

	// Elapsed is the wall time spent in the passes.
	Elapsed time.Duration
}

// Image returns the final color as a premultiplied RGBA image.
func (o *Output) Image() *image.RGBA { return o.Target.Image() }

// SoftwareRenderer evaluates every pass on the CPU. Each pass is a pure
// per-pixel function run over row bands on a work-stealing pool.
//
// Example:
//
//	r := render.NewSoftwareRenderer(render.Options{})
//	defer r.Close()
//	out, err := r.Render(ctx, frame)
type SoftwareRenderer struct {
	pool       *parallel.WorkerPool
	rect       *RectanglePass
	blur       *BlurPass
	clearDepth float32

	mu       sync.Mutex
	resolves map[int]*ResolvePass
}

// NewSoftwareRenderer creates a CPU renderer.
func NewSoftwareRenderer(opts Options) *SoftwareRenderer {
	pool := parallel.NewWorkerPool(opts.Workers)
	depth := opts.ClearDepth
	if depth == 0 {
		depth = 1
	}
	return &SoftwareRenderer{
		pool:       pool,
		rect:       NewRectanglePass(pool),
		blur:       NewBlurPass(pool),
		clearDepth: depth,
		resolves:   make(map[int]*ResolvePass),
	}
}

// resolvePass returns the pass built for samples, creating it once.
func (r *SoftwareRenderer) resolvePass(samples int) (*ResolvePass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.resolves[samples]; ok {
		return p, nil
	}
	p, err := NewResolvePass(samples, r.pool)
	if err != nil {
		return nil, err
	}
	r.resolves[samples] = p
	compose.Logger().Debug("render: resolve pass built", "samples", samples, "variant", p.Variant())
	return p, nil
}

// Render draws frame: rectangle pass into a multisampled target, resolve,
// then the optional blur. A context that is done before the frame starts
// means nothing is drawn and ctx.Err() is returned; once started, a frame
// runs to completion.
func (r *SoftwareRenderer) Render(ctx context.Context, frame *compose.Frame) (*Output, error) {
	if frame == nil {
		return nil, errors.New("render: nil frame")
	}
	if frame.Instances != nil {
		defer frame.Instances.Release()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	// Passes below only observe a background context: the frame counts as
	// submitted from here on.
	run := context.WithoutCancel(ctx)

	w, h := int(frame.State.Width()), int(frame.State.Height())
	samples := frame.Samples()

	msaa, err := NewTarget(w, h, samples)
	if err != nil {
		return nil, err
	}
	msaa.Clear(frame.Clear, r.clearDepth)
	if err := r.rect.Execute(run, frame, msaa); err != nil {
		return nil, err
	}

	resolve, err := r.resolvePass(samples)
	if err != nil {
		return nil, err
	}
	resolved, err := NewTarget(w, h, 1)
	if err != nil {
		return nil, err
	}
	if err := resolve.Execute(run, msaa, resolved); err != nil {
		return nil, err
	}

	if frame.Blur {
		tmp, err := NewTarget(w, h, 1)
		if err != nil {
			return nil, err
		}
		if err := r.blur.Apply(run, resolved, tmp, resolved); err != nil {
			return nil, err
		}
	}

	out := &Output{Target: resolved, Samples: samples, Blurred: frame.Blur, Elapsed: time.Since(start)}
	instances := 0
	if frame.Instances != nil {
		instances = frame.Instances.Len()
	}
	compose.Logger().Debug("render: frame done",
		"size", [2]int{w, h},
		"instances", instances,
		"samples", samples,
		"blur", frame.Blur,
		"elapsed", out.Elapsed)
	return out, nil
}

// Close stops the worker pool.
func (r *SoftwareRenderer) Close() {
	r.pool.Close()
}

// Ensure SoftwareRenderer implements Renderer.
var _ Renderer = (*SoftwareRenderer)(nil)

// RenderImage draws frame with the registered compose.Backend when there is
// one, and with r otherwise or when the backend reports
// compose.ErrFallbackToCPU. frame.Instances is released on return.
func RenderImage(ctx context.Context, r Renderer, frame *compose.Frame) (*image.RGBA, error) {
	if frame != nil && frame.Instances != nil {
		defer frame.Instances.Release()
	}
	if b := compose.ActiveBackend(); b != nil && frame != nil && frame.State != nil {
		dst := image.NewRGBA(image.Rect(0, 0, int(frame.State.Width()), int(frame.State.Height())))
		err := b.RenderFrame(ctx, frame, dst)
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, compose.ErrFallbackToCPU) {
			return nil, err
		}
		compose.Logger().Warn("render: backend fell back to CPU", "backend", b.Name())
	}
	out, err := r.Render(ctx, frame)
	if err != nil {
		return nil, err
	}
	return out.Image(), nil
}
