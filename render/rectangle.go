// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/blend"
	"github.com/gogpu/compose/internal/parallel"
)

// RectanglePass rasterizes every instance of a frame as one axis-aligned
// quad and shades it with compose.ShadeRectangle.
//
// Rasterization follows the GPU rules the hal executor gets for free: a
// sample is covered when its location lies inside the quad (left and top
// edges inclusive), the fragment is shaded once per pixel at the pixel
// center, and the premultiplied result is blended source-over into every
// covered sample. Instances are drawn in array order.
type RectanglePass struct {
	pool  *parallel.WorkerPool
	blend blend.BlendFunc
}

// NewRectanglePass creates a pass. A nil pool runs on the calling goroutine.
func NewRectanglePass(pool *parallel.WorkerPool) *RectanglePass {
	return &RectanglePass{
		pool:  pool,
		blend: blend.GetBlendFunc(blend.BlendSourceOver),
	}
}

// Execute draws the frame's instances into dst, which must match the frame
// resolution and sample count. dst is not cleared.
func (p *RectanglePass) Execute(ctx context.Context, frame *compose.Frame, dst *Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w, h := int(frame.State.Width()), int(frame.State.Height())
	if dst.width != w || dst.height != h || dst.samples != frame.Samples() {
		return fmt.Errorf("%w: frame %dx%d x%d, target %dx%d x%d",
			compose.ErrTargetMismatch, w, h, frame.Samples(), dst.width, dst.height, dst.samples)
	}
	if frame.Instances == nil || frame.Instances.Len() == 0 {
		return nil
	}

	table := frame.Textures
	if table == nil {
		table = compose.NewTextureTable()
	}
	records := frame.Instances.Records()
	offsets := SampleOffsets(dst.samples)

	forRows(p.pool, h, func(y0, y1 int) {
		for i := range records {
			p.drawRecord(&records[i], frame.State, table, dst, offsets, y0, y1)
		}
	})
	return nil
}

// drawRecord rasterizes rows [y0, y1) of one instance.
func (p *RectanglePass) drawRecord(rec *compose.InstanceRecord, state *compose.FrameState,
	table *compose.TextureTable, dst *Target, offsets []mgl32.Vec2, y0, y1 int,
) {
	res := state.PixelSize()
	minX := rec.ScreenPosition[0] * res[0]
	minY := rec.ScreenPosition[1] * res[1]
	sizeX := rec.ScreenSize[0] * res[0]
	sizeY := rec.ScreenSize[1] * res[1]
	if sizeX <= 0 || sizeY <= 0 {
		return
	}
	maxX, maxY := minX+sizeX, minY+sizeY

	xs := clampSpan(floor32(minX), dst.width)
	xe := clampSpan(ceil32(maxX), dst.width)
	ys := max(clampSpan(floor32(minY), dst.height), y0)
	ye := min(clampSpan(ceil32(maxY), dst.height), y1)

	covered := make([]bool, len(offsets))
	for y := ys; y < ye; y++ {
		cy := float32(y) + 0.5
		for x := xs; x < xe; x++ {
			cx := float32(x) + 0.5

			hit := false
			for s, o := range offsets {
				sx, sy := cx+o[0], cy+o[1]
				covered[s] = sx >= minX && sx < maxX && sy >= minY && sy < maxY
				hit = hit || covered[s]
			}
			if !hit {
				continue
			}

			// UV is interpolated at the pixel center, even when the center
			// itself falls outside the quad.
			u := (cx - minX) / sizeX
			v := (cy - minY) / sizeY
			frag := compose.Fragment{
				Position: mgl32.Vec2{cx, cy},
				UV: mgl32.Vec2{
					rec.TexturePosition[0] + u*rec.TextureSize[0],
					rec.TexturePosition[1] + v*rec.TextureSize[1],
				},
			}
			c := compose.ShadeRectangle(frag, rec, state, table).Premultiply()
			if c.A <= 0 {
				continue
			}
			src := blend.Color{c.R, c.G, c.B, c.A}
			for s := range offsets {
				if covered[s] {
					dst.SetColor(x, y, s, p.blend(src, dst.Color(x, y, s)))
				}
			}
		}
	}
}

func floor32(v float32) int { return int(math.Floor(float64(v))) }

func ceil32(v float32) int { return int(math.Ceil(float64(v))) }

func clampSpan(v, n int) int {
	return min(max(v, 0), n)
}

// forRows runs fn over row bands of [0, height) on pool, or inline when pool
// is nil.
func forRows(pool *parallel.WorkerPool, height int, fn func(y0, y1 int)) {
	if pool == nil {
		fn(0, height)
		return
	}
	pool.Rows(height, fn)
}
