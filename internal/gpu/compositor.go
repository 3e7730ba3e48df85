// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compose"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// instanceBuffers is the number of GPU instance buffers, one per
// InstanceStore slot.
const instanceBuffers = 2

// fenceTimeout bounds the wait for one frame's readback.
const fenceTimeout = 5 * time.Second

// ErrCompositorClosed is returned when rendering after Close.
var ErrCompositorClosed = errors.New("wgpu: compositor closed")

// instanceBuffer is a storage buffer that grows to the largest instance
// array written to it.
type instanceBuffer struct {
	buf  hal.Buffer
	size uint64
}

// Compositor executes frames as wgpu render passes: the instanced rectangle
// pass into a multisampled target, the full-screen resolve and the optional
// two-pass blur. The resolved image is read back into the caller's buffer.
// It implements compose.Backend and compose.DeviceProviderAware.
type Compositor struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	rectangles map[int]*RectanglePipeline
	resolves   map[int]*ResolvePipeline
	blur       *BlurPipeline

	targets   frameTargets
	table     tableUpload
	instances [instanceBuffers]instanceBuffer
	memory    *memoryBudget

	clearDepth float32

	gpuReady       bool
	initFailed     bool
	closed         bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

// Interface compliance checks.
var _ compose.Backend = (*Compositor)(nil)
var _ compose.DeviceProviderAware = (*Compositor)(nil)

// NewCompositor returns a compositor that opens its device on first use.
func NewCompositor() *Compositor {
	return &Compositor{clearDepth: 1, memory: newMemoryBudget(DefaultMaxMemoryMB)}
}

// SetMemoryBudget limits the GPU memory the compositor keeps resident.
// Frames that do not fit are reported as compose.ErrFallbackToCPU.
func (c *Compositor) SetMemoryBudget(megabytes int) error {
	return c.memory.setBudget(megabytes)
}

// MemoryStats returns the current GPU memory accounting.
func (c *Compositor) MemoryStats() MemoryStats {
	return c.memory.stats()
}

// Name returns the backend identifier.
func (c *Compositor) Name() string { return "wgpu" }

// Init registers the compositor. Device creation is deferred until the first
// frame or until SetDeviceProvider supplies a device, so importing the
// package never opens a second Vulkan device next to the host's.
func (c *Compositor) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
	return nil
}

// SetLogger sets the logger for the GPU backend. Called by compose.SetLogger.
func (c *Compositor) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Close releases all GPU resources held by the compositor.
func (c *Compositor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseResources()

	if !c.externalDevice {
		if c.device != nil {
			c.device.Destroy()
		}
		if c.instance != nil {
			c.instance.Destroy()
		}
	}
	c.device = nil
	c.instance = nil
	c.queue = nil
	c.gpuReady = false
	c.initFailed = false
	c.externalDevice = false
	c.closed = true
}

// releaseResources destroys pipelines, targets and buffers but keeps the
// device. Caller must hold c.mu.
func (c *Compositor) releaseResources() {
	if c.device == nil {
		return
	}
	if c.gpuReady {
		if err := c.device.WaitIdle(); err != nil {
			slogger().Warn("wgpu: wait idle before release failed", "error", err)
		}
	}
	for _, p := range c.rectangles {
		p.Destroy()
	}
	for _, p := range c.resolves {
		p.Destroy()
	}
	c.rectangles = nil
	c.resolves = nil
	if c.blur != nil {
		c.blur.Destroy()
		c.blur = nil
	}
	c.targets.destroy(c.device)
	c.table.destroy(c.device)
	for i := range c.instances {
		if c.instances[i].buf != nil {
			c.device.DestroyBuffer(c.instances[i].buf)
		}
		c.instances[i] = instanceBuffer{}
	}
	c.memory.reset()
}

// SetDeviceProvider switches the compositor to a shared GPU device from an
// external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (c *Compositor) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Resources belong to the old device.
	c.releaseResources()
	if !c.externalDevice && c.device != nil {
		c.device.Destroy()
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}

	c.device = device
	c.queue = queue
	c.externalDevice = true
	c.gpuReady = true
	c.initFailed = false
	slogger().Debug("wgpu: switched to shared GPU device")
	return nil
}

// RenderFrame draws frame on the GPU and writes the premultiplied result to
// dst. Device failures are reported as compose.ErrFallbackToCPU.
func (c *Compositor) RenderFrame(ctx context.Context, frame *compose.Frame, dst *image.RGBA) error {
	if frame == nil {
		return errors.New("wgpu: nil frame")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := frame.Validate(); err != nil {
		return err
	}
	w, h := frame.State.Width(), frame.State.Height()
	if dst == nil || dst.Bounds().Dx() != int(w) || dst.Bounds().Dy() != int(h) {
		return fmt.Errorf("%w: destination does not match %dx%d", compose.ErrTargetMismatch, w, h)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCompositorClosed
	}
	if err := c.ensureDevice(); err != nil {
		return fmt.Errorf("%w: %w", compose.ErrFallbackToCPU, err)
	}

	start := time.Now()
	samples := frame.Samples()
	if err := c.ensurePipelines(samples); err != nil {
		return fmt.Errorf("%w: %w", compose.ErrFallbackToCPU, err)
	}
	targetSize := targetBytes(w, h, samples)
	if err := c.memory.reserve(memTargets, targetSize); err != nil {
		return fmt.Errorf("%w: %w", compose.ErrFallbackToCPU, err)
	}
	if err := c.targets.ensure(c.device, w, h, uint32(samples)); err != nil { //nolint:gosec // G115: 1..16
		return err
	}
	c.memory.set(memTargets, targetSize)

	table := frame.Textures
	if table == nil {
		table = compose.NewTextureTable()
	}
	views, atlas := table.Views(true), table.FontAtlas()
	tableSize := tableBytes(views, atlas)
	if err := c.memory.reserve(memTextures, tableSize); err != nil {
		return fmt.Errorf("%w: %w", compose.ErrFallbackToCPU, err)
	}
	if err := c.table.sync(c.device, c.queue, views, atlas); err != nil {
		return err
	}
	c.memory.set(memTextures, tableSize)

	res, err := c.buildFrameResources(frame, samples)
	defer c.releaseFrameResources(res)
	if err != nil {
		return err
	}

	if err := c.encodeSubmitReadback(frame, res, dst); err != nil {
		return err
	}
	slogger().Debug("wgpu: frame rendered",
		"instances", res.instanceCount,
		"samples", samples,
		"blur", frame.Blur,
		"memory", c.memory.stats(),
		"elapsed", time.Since(start))
	return nil
}

// ensureDevice opens a standalone device on first use. A failed attempt is
// not retried. Caller must hold c.mu.
func (c *Compositor) ensureDevice() error {
	if c.gpuReady {
		return nil
	}
	if c.initFailed {
		return errors.New("GPU unavailable")
	}
	if err := c.initGPU(); err != nil {
		c.initFailed = true
		if c.instance != nil {
			c.instance.Destroy()
			c.instance = nil
		}
		slogger().Warn("wgpu: GPU init failed, using CPU", "error", err)
		return err
	}
	return nil
}

// initGPU creates a standalone Vulkan device. This is the path taken when
// no external device is provided via SetDeviceProvider.
func (c *Compositor) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	c.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	c.device = openDev.Device
	c.queue = openDev.Queue
	c.gpuReady = true
	slogger().Info("wgpu: GPU initialized (standalone)", "adapter", selected.Info.Name)
	return nil
}

// ensurePipelines builds the pipelines for a sample count on first use.
// Caller must hold c.mu.
func (c *Compositor) ensurePipelines(samples int) error {
	if c.rectangles == nil {
		c.rectangles = make(map[int]*RectanglePipeline)
		c.resolves = make(map[int]*ResolvePipeline)
	}
	if _, ok := c.rectangles[samples]; !ok {
		p, err := NewRectanglePipeline(c.device, samples)
		if err != nil {
			return err
		}
		c.rectangles[samples] = p
	}
	if _, ok := c.resolves[samples]; !ok {
		p, err := NewResolvePipeline(c.device, samples)
		if err != nil {
			return err
		}
		c.resolves[samples] = p
	}
	if c.blur == nil {
		p, err := NewBlurPipeline(c.device)
		if err != nil {
			return err
		}
		c.blur = p
	}
	return nil
}

// frameResources are the buffers and bind groups created for one frame.
type frameResources struct {
	frameState    hal.Buffer
	instanceCount uint32

	rectangleGroup hal.BindGroup
	resolveGroup   hal.BindGroup
	blurH          hal.BindGroup
	blurV          hal.BindGroup
}

func (c *Compositor) buildFrameResources(frame *compose.Frame, samples int) (*frameResources, error) {
	res := &frameResources{}

	stateBuf, err := c.createAndUploadBuffer("compose_frame_state", frame.State.Bytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return res, err
	}
	res.frameState = stateBuf

	var data []byte
	slot := 0
	if frame.Instances != nil {
		data = frame.Instances.Bytes()
		res.instanceCount = uint32(frame.Instances.Len()) //nolint:gosec // G115: bounded by store
		slot = int(frame.Instances.Frame() % instanceBuffers)
	}
	inst, err := c.instanceBuffer(slot, data)
	if err != nil {
		return res, err
	}

	res.rectangleGroup, err = c.rectangles[samples].CreateBindGroup(rectangleBindings{
		FrameState:    stateBuf,
		Instances:     inst.buf,
		InstanceBytes: max(uint64(len(data)), compose.InstanceStride),
		LayerScale:    c.table.layerScale,
		LayerBytes:    c.table.scaleBytes,
		Textures:      c.table.array.view,
		FontAtlas:     c.table.atlas.view,
	})
	if err != nil {
		return res, err
	}
	res.resolveGroup, err = c.resolves[samples].CreateBindGroup(c.targets.msaaColor.view, c.targets.msaaDepth.view)
	if err != nil {
		return res, err
	}
	if frame.Blur {
		if res.blurH, err = c.blur.CreateBindGroup(c.targets.resolveColor.view); err != nil {
			return res, err
		}
		if res.blurV, err = c.blur.CreateBindGroup(c.targets.blurScratch.view); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (c *Compositor) releaseFrameResources(res *frameResources) {
	if res == nil {
		return
	}
	for _, g := range []hal.BindGroup{res.rectangleGroup, res.resolveGroup, res.blurH, res.blurV} {
		if g != nil {
			c.device.DestroyBindGroup(g)
		}
	}
	if res.frameState != nil {
		c.device.DestroyBuffer(res.frameState)
	}
}

// instanceBuffer uploads data into the slot's buffer, growing it when needed.
// An empty frame still binds one zeroed record.
func (c *Compositor) instanceBuffer(slot int, data []byte) (*instanceBuffer, error) {
	ib := &c.instances[slot]
	need := max(uint64(len(data)), compose.InstanceStride)
	if ib.buf == nil || ib.size < need {
		other := c.instances[(slot+1)%instanceBuffers].size
		if err := c.memory.reserve(memInstances, other+need); err != nil {
			return nil, fmt.Errorf("%w: %w", compose.ErrFallbackToCPU, err)
		}
		if ib.buf != nil {
			c.device.DestroyBuffer(ib.buf)
			ib.buf = nil
		}
		buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("compose_instances_%d", slot),
			Size:  need,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("create instance buffer: %w", err)
		}
		ib.buf = buf
		ib.size = need
		c.memory.set(memInstances, other+need)
	}
	if len(data) > 0 {
		c.queue.WriteBuffer(ib.buf, 0, data)
	}
	return ib, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (c *Compositor) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	c.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// transition records a single texture barrier.
func transition(encoder hal.CommandEncoder, tex hal.Texture, from, to gputypes.TextureUsage) {
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: from,
			NewUsage: to,
		},
	}})
}

// colorPass begins a render pass with a single color attachment.
func colorPass(encoder hal.CommandEncoder, label string, view hal.TextureView) hal.RenderPassEncoder {
	return encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
}

// encodeSubmitReadback records every pass of the frame, copies the resolved
// color to a staging buffer, submits, waits and reads back into dst.
func (c *Compositor) encodeSubmitReadback(frame *compose.Frame, res *frameResources, dst *image.RGBA) error {
	t := &c.targets
	w, h := t.width, t.height

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "compose_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("compose_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	// Rectangle pass into the multisampled targets.
	bg := frame.Clear
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "compose_rectangle_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.msaaColor.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(bg.R), G: float64(bg.G), B: float64(bg.B), A: float64(bg.A)},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            t.msaaDepth.view,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: c.clearDepth,
		},
	})
	c.rectangles[frame.Samples()].Record(rp, res.rectangleGroup, res.instanceCount)
	rp.End()

	// Resolve pass reads the multisampled targets.
	transition(encoder, t.msaaColor.tex, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding)
	transition(encoder, t.msaaDepth.tex, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding)
	rp = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "compose_resolve_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.resolveColor.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            t.resolveDepth.view,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: c.clearDepth,
		},
	})
	c.resolves[frame.Samples()].Record(rp, res.resolveGroup)
	rp.End()
	transition(encoder, t.msaaColor.tex, gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment)
	transition(encoder, t.msaaDepth.tex, gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment)

	if frame.Blur {
		// Horizontal: resolve -> scratch.
		transition(encoder, t.resolveColor.tex, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding)
		rp = colorPass(encoder, "compose_blur_horizontal", t.blurScratch.view)
		c.blur.Record(rp, BlurHorizontal, res.blurH)
		rp.End()

		// Vertical: scratch -> resolve.
		transition(encoder, t.blurScratch.tex, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding)
		transition(encoder, t.resolveColor.tex, gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment)
		rp = colorPass(encoder, "compose_blur_vertical", t.resolveColor.view)
		c.blur.Record(rp, BlurVertical, res.blurV)
		rp.End()
		transition(encoder, t.blurScratch.tex, gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment)
	}

	transition(encoder, t.resolveColor.tex, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageCopySrc)

	// WebGPU requires BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingBufSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "compose_staging",
		Size:  stagingBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer c.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(t.resolveColor.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.resolveColor.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	transition(encoder, t.resolveColor.tex, gputypes.TextureUsageCopySrc, gputypes.TextureUsageRenderAttachment)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := c.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingBufSize)
	if err := c.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	copyRows(dst, readback, int(alignedBytesPerRow), int(bytesPerRow), int(h))
	return nil
}

// copyRows strips the staging row padding while copying into dst.
func copyRows(dst *image.RGBA, src []byte, srcStride, rowBytes, rows int) {
	for y := range rows {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowBytes], src[y*srcStride:y*srcStride+rowBytes])
	}
}
