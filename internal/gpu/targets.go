// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compose/render"
)

// gpuTexture is a texture together with its default view.
type gpuTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

func (t *gpuTexture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// frameTargets holds the offscreen textures of one frame:
//   - msaa color/depth: SampleCount samples, written by the rectangle pass
//     and read by the resolve pass
//   - resolve color/depth: 1 sample, written by the resolve pass; color is
//     the blur input and output and the readback source
//   - blur scratch: 1 sample, between the horizontal and vertical pass
type frameTargets struct {
	msaaColor    gpuTexture
	msaaDepth    gpuTexture
	resolveColor gpuTexture
	resolveDepth gpuTexture
	blurScratch  gpuTexture

	width   uint32
	height  uint32
	samples uint32
}

// ensure creates or recreates the textures if the requested size or sample
// count differ from the current ones.
func (ft *frameTargets) ensure(device hal.Device, w, h, samples uint32) error {
	if ft.width == w && ft.height == h && ft.samples == samples && ft.msaaColor.tex != nil {
		return nil
	}
	ft.destroy(device)

	specs := []struct {
		dst     *gpuTexture
		label   string
		samples uint32
		format  gputypes.TextureFormat
		usage   gputypes.TextureUsage
	}{
		{&ft.msaaColor, "compose_msaa_color", samples, render.ColorFormat,
			gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding},
		{&ft.msaaDepth, "compose_msaa_depth", samples, render.DepthFormat,
			gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding},
		{&ft.resolveColor, "compose_resolve_color", 1, render.ColorFormat,
			gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc},
		{&ft.resolveDepth, "compose_resolve_depth", 1, render.DepthFormat,
			gputypes.TextureUsageRenderAttachment},
		{&ft.blurScratch, "compose_blur_scratch", 1, render.ColorFormat,
			gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding},
	}

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}
	for _, s := range specs {
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         s.label,
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   s.samples,
			Dimension:     gputypes.TextureDimension2D,
			Format:        s.format,
			Usage:         s.usage,
		})
		if err != nil {
			ft.destroy(device)
			return fmt.Errorf("create %s texture: %w", s.label, err)
		}
		s.dst.tex = tex

		aspect := gputypes.TextureAspectAll
		if s.format == render.DepthFormat {
			aspect = gputypes.TextureAspectDepthOnly
		}
		view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:     s.label + "_view",
			Format:    s.format,
			Dimension: gputypes.TextureViewDimension2D,
			Aspect:    aspect,
		})
		if err != nil {
			ft.destroy(device)
			return fmt.Errorf("create %s view: %w", s.label, err)
		}
		s.dst.view = view
	}

	ft.width = w
	ft.height = h
	ft.samples = samples
	return nil
}

// destroy releases all textures and resets the dimensions.
func (ft *frameTargets) destroy(device hal.Device) {
	for _, t := range []*gpuTexture{&ft.blurScratch, &ft.resolveDepth, &ft.resolveColor, &ft.msaaDepth, &ft.msaaColor} {
		t.destroy(device)
	}
	ft.width = 0
	ft.height = 0
	ft.samples = 0
}
