// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/blend"
	icolor "github.com/gogpu/compose/internal/color"
	"github.com/gogpu/compose/internal/filter"
)

// Target is a CPU-backed, possibly multisampled color and depth target.
//
// Color is stored premultiplied, four float32 channels per sample. Samples of
// one pixel are adjacent, so sample s of pixel (x, y) lives at
// ((y*width+x)*samples+s).
type Target struct {
	width, height int
	samples       int
	color         []float32
	depth         []float32
}

// NewTarget allocates a cleared target. The sample count must be 1, 2, 4, 8
// or 16.
func NewTarget(width, height, samples int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", compose.ErrZeroResolution, width, height)
	}
	if !compose.ValidSampleCount(samples) {
		return nil, fmt.Errorf("%w: %d", compose.ErrInvalidSampleCount, samples)
	}
	n := width * height * samples
	return &Target{
		width:   width,
		height:  height,
		samples: samples,
		color:   make([]float32, n*4),
		depth:   make([]float32, n),
	}, nil
}

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.height }

// Samples returns the number of samples per pixel.
func (t *Target) Samples() int { return t.samples }

// Descriptor returns the equivalent GPU texture description.
func (t *Target) Descriptor() TargetDescriptor {
	d := DefaultTargetDescriptor(uint32(t.width), uint32(t.height)) //nolint:gosec // G115: positive
	d.SampleCount = uint32(t.samples)                               //nolint:gosec // G115: 1..16
	return d
}

func (t *Target) index(x, y, s int) int {
	return (y*t.width+x)*t.samples + s
}

// Color returns the premultiplied color of sample s at (x, y).
func (t *Target) Color(x, y, s int) blend.Color {
	i := t.index(x, y, s) * 4
	return blend.Color{t.color[i], t.color[i+1], t.color[i+2], t.color[i+3]}
}

// SetColor stores a premultiplied color for sample s at (x, y).
func (t *Target) SetColor(x, y, s int, c blend.Color) {
	i := t.index(x, y, s) * 4
	copy(t.color[i:i+4], c[:])
}

// Depth returns the depth of sample s at (x, y).
func (t *Target) Depth(x, y, s int) float32 {
	return t.depth[t.index(x, y, s)]
}

// SetDepth stores the depth of sample s at (x, y).
func (t *Target) SetDepth(x, y, s int, d float32) {
	t.depth[t.index(x, y, s)] = d
}

// Clear fills every sample with the premultiplied color c and the depth d.
func (t *Target) Clear(c compose.RGBA, d float32) {
	for i := 0; i < len(t.color); i += 4 {
		t.color[i] = c.R
		t.color[i+1] = c.G
		t.color[i+2] = c.B
		t.color[i+3] = c.A
	}
	for i := range t.depth {
		t.depth[i] = d
	}
}

// sameSize reports whether o has the same pixel dimensions.
func (t *Target) sameSize(o *Target) bool {
	return t.width == o.width && t.height == o.height
}

// plane exposes a single-sample target to the filter kernels.
func (t *Target) plane() filter.Plane {
	return filter.Plane{Width: t.width, Height: t.height, Pix: t.color}
}

// Image quantizes sample 0 of every pixel into a premultiplied RGBA image.
// The stored values are written as-is.
func (t *Target) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := range t.height {
		for x := range t.width {
			c := t.Color(x, y, 0)
			o := img.PixOffset(x, y)
			img.Pix[o] = icolor.ToU8(c[0])
			img.Pix[o+1] = icolor.ToU8(c[1])
			img.Pix[o+2] = icolor.ToU8(c[2])
			img.Pix[o+3] = icolor.ToU8(c[3])
		}
	}
	return img
}

// SRGBImage treats the stored values as linear light and encodes them to
// an sRGB image with straight alpha.
func (t *Target) SRGBImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	for y := range t.height {
		for x := range t.width {
			c := t.Color(x, y, 0)
			u := icolor.Unpremultiply(icolor.F32{R: c[0], G: c[1], B: c[2], A: c[3]})
			img.SetNRGBA(x, y, color.NRGBA{
				R: icolor.EncodeSRGB8(u.R),
				G: icolor.EncodeSRGB8(u.G),
				B: icolor.EncodeSRGB8(u.B),
				A: icolor.ToU8(u.A),
			})
		}
	}
	return img
}

// rgba64 converts a single-sample target to a 16-bit premultiplied image.
func (t *Target) rgba64() *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, t.width, t.height))
	for y := range t.height {
		for x := range t.width {
			c := t.Color(x, y, 0)
			img.SetRGBA64(x, y, color.RGBA64{
				R: to16(c[0]),
				G: to16(c[1]),
				B: to16(c[2]),
				A: to16(c[3]),
			})
		}
	}
	return img
}

// targetFromRGBA64 converts a 16-bit premultiplied image into a
// single-sample target with depth 1.
func targetFromRGBA64(img *image.RGBA64) *Target {
	b := img.Bounds()
	t := &Target{
		width:   b.Dx(),
		height:  b.Dy(),
		samples: 1,
		color:   make([]float32, b.Dx()*b.Dy()*4),
		depth:   make([]float32, b.Dx()*b.Dy()),
	}
	for y := range t.height {
		for x := range t.width {
			c := img.RGBA64At(b.Min.X+x, b.Min.Y+y)
			t.SetColor(x, y, 0, blend.Color{
				float32(c.R) / 0xffff,
				float32(c.G) / 0xffff,
				float32(c.B) / 0xffff,
				float32(c.A) / 0xffff,
			})
		}
	}
	for i := range t.depth {
		t.depth[i] = 1
	}
	return t
}

func to16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}
