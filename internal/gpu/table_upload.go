// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compose"
)

// whitePixel stands in for a missing font atlas so the bind group is always
// complete.
var whitePixel = compose.SolidTexture(compose.RGBA{R: 1, G: 1, B: 1, A: 1})

// layerScaleStride is the size of one per-layer vec4 UV scale.
const layerScaleStride = 16

// tableUpload is the GPU copy of a TextureTable. Every table slot becomes a
// layer of one 2D array texture sized to the largest slot; smaller layers
// repeat their edge texels into the padding and the shader scales UVs by
// layer size over array size.
type tableUpload struct {
	array      gpuTexture
	atlas      gpuTexture
	layerScale hal.Buffer
	scaleBytes uint64

	// Uploaded sources. Table textures are immutable once bound, so identical
	// pointers mean identical contents.
	layers   []*compose.Texture
	atlasSrc *compose.Texture
}

// sync uploads views and atlas unless they are already resident.
func (u *tableUpload) sync(device hal.Device, queue hal.Queue, views []*compose.Texture, atlas *compose.Texture) error {
	if atlas == nil {
		atlas = whitePixel
	}
	if u.array.tex != nil && slices.Equal(u.layers, views) && u.atlasSrc == atlas {
		return nil
	}
	u.destroy(device)

	if err := u.uploadArray(device, queue, views); err != nil {
		u.destroy(device)
		return err
	}
	if err := u.uploadAtlas(device, queue, atlas); err != nil {
		u.destroy(device)
		return err
	}
	u.layers = slices.Clone(views)
	u.atlasSrc = atlas
	slogger().Debug("texture table uploaded", "layers", len(views), "atlas", atlas != whitePixel)
	return nil
}

func (u *tableUpload) uploadArray(device hal.Device, queue hal.Queue, views []*compose.Texture) error {
	w, h := arrayExtent(views)
	layers := uint32(len(views)) //nolint:gosec // G115: bounded by table size
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "compose_texture_array",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: layers},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create texture array: %w", err)
	}
	u.array.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "compose_texture_array_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: layers,
	})
	if err != nil {
		return fmt.Errorf("create texture array view: %w", err)
	}
	u.array.view = view

	for i, t := range views {
		queue.WriteTexture(&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: uint32(i)}, //nolint:gosec // G115: layer index
			Aspect:   gputypes.TextureAspectAll,
		}, paddedLayer(t, int(w), int(h)), &hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		}, &hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1})
	}

	scales := layerScales(views, w, h)
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "compose_layer_scale",
		Size:  uint64(len(scales)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create layer scale buffer: %w", err)
	}
	queue.WriteBuffer(buf, 0, scales)
	u.layerScale = buf
	u.scaleBytes = uint64(len(scales))
	return nil
}

func (u *tableUpload) uploadAtlas(device hal.Device, queue hal.Queue, atlas *compose.Texture) error {
	w := uint32(atlas.Width())  //nolint:gosec // G115: texture sizes are positive
	h := uint32(atlas.Height()) //nolint:gosec // G115: texture sizes are positive
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "compose_font_atlas",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create font atlas: %w", err)
	}
	u.atlas.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:     "compose_font_atlas_view",
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		return fmt.Errorf("create font atlas view: %w", err)
	}
	u.atlas.view = view

	queue.WriteTexture(&hal.ImageCopyTexture{
		Texture: tex,
		Aspect:  gputypes.TextureAspectAll,
	}, atlas.RGBA8(), &hal.ImageDataLayout{
		BytesPerRow:  w * 4,
		RowsPerImage: h,
	}, &hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1})
	return nil
}

func (u *tableUpload) destroy(device hal.Device) {
	if u.layerScale != nil {
		device.DestroyBuffer(u.layerScale)
		u.layerScale = nil
	}
	u.atlas.destroy(device)
	u.array.destroy(device)
	u.scaleBytes = 0
	u.layers = nil
	u.atlasSrc = nil
}

// arrayExtent returns the smallest layer size holding every view.
func arrayExtent(views []*compose.Texture) (w, h uint32) {
	var mw, mh int
	for _, t := range views {
		mw = max(mw, t.Width())
		mh = max(mh, t.Height())
	}
	return uint32(max(mw, 1)), uint32(max(mh, 1)) //nolint:gosec // G115: positive sizes
}

// paddedLayer returns t as straight-alpha RGBA8 in a w x h layer. Texels
// past t's edges repeat the nearest edge texel so filtering at the layer
// border matches clamp-to-edge on the unpadded texture.
func paddedLayer(t *compose.Texture, w, h int) []byte {
	src := t.RGBA8()
	tw, th := t.Width(), t.Height()
	if tw == w && th == h {
		return src
	}
	out := make([]byte, w*h*4)
	for y := range h {
		sy := min(y, th-1)
		for x := range w {
			sx := min(x, tw-1)
			copy(out[(y*w+x)*4:(y*w+x)*4+4], src[(sy*tw+sx)*4:])
		}
	}
	return out
}

// layerScales encodes one vec4 (layer width / w, layer height / h, 0, 0)
// per view.
func layerScales(views []*compose.Texture, w, h uint32) []byte {
	out := make([]byte, 0, len(views)*layerScaleStride)
	for _, t := range views {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(t.Width())/float32(w)))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(t.Height())/float32(h)))
		out = binary.LittleEndian.AppendUint32(out, 0)
		out = binary.LittleEndian.AppendUint32(out, 0)
	}
	return out
}
