// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/native"
	"github.com/gogpu/compose/render"
)

// shaderCache holds the SPIR-V of every shader specialization built by this
// package.
var shaderCache = native.NewShaderCache(32)

// ErrNilPipeline is returned when recording with a destroyed pipeline.
var ErrNilPipeline = errors.New("wgpu: pipeline is nil")

// rectangleBindings holds the per-frame resources of the rectangle pass.
// InstanceBytes and LayerBytes are the bound sizes of their buffers.
type rectangleBindings struct {
	FrameState    hal.Buffer
	Instances     hal.Buffer
	InstanceBytes uint64
	LayerScale    hal.Buffer
	LayerBytes    uint64
	Textures      hal.TextureView
	FontAtlas     hal.TextureView
}

// RectanglePipeline draws instanced rounded rectangles into a color and
// depth target with a fixed sample count. Vertices are generated from the
// vertex and instance indices, so no vertex buffer is bound.
//
// Bind group 0:
//
//	0: FrameState (uniform)
//	1: instances (read-only storage)
//	2: per-layer UV scale (read-only storage)
//	3: sprite texture array
//	4: font atlas
//	5: linear sampler
//	6: nearest sampler
type RectanglePipeline struct {
	device  hal.Device
	samples uint32

	res        native.GPUResources
	bindLayout hal.BindGroupLayout
	pipeline   hal.RenderPipeline
	linear     hal.Sampler
	nearest    hal.Sampler
}

// NewRectanglePipeline compiles the rectangle shader and builds the pipeline
// for sampleCount samples.
func NewRectanglePipeline(device hal.Device, sampleCount int) (*RectanglePipeline, error) {
	if !compose.ValidSampleCount(sampleCount) {
		return nil, fmt.Errorf("%w: %d", compose.ErrInvalidSampleCount, sampleCount)
	}
	p := &RectanglePipeline{device: device, samples: uint32(sampleCount)} //nolint:gosec // G115: 1..16
	p.res.Device = device
	if err := p.create(); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("rectangle pipeline created", "samples", sampleCount)
	return p, nil
}

func (p *RectanglePipeline) create() error {
	shader, err := shaderCache.CreateShaderModule(p.device,
		native.ShaderKey{Name: shaderRectangle, SampleCount: 1}, "rectangle_shader", rectangleSource())
	if err != nil {
		return fmt.Errorf("compile rectangle shader: %w", err)
	}
	p.res.ShaderModule = shader

	storage := &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rectangle_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{Binding: 1, Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment, Buffer: storage},
			{Binding: 2, Visibility: gputypes.ShaderStageFragment, Buffer: storage},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    4,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    5,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    6,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create rectangle bind layout: %w", err)
	}
	p.bindLayout = bindLayout
	p.res.BindLayouts = append(p.res.BindLayouts, bindLayout)

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "rectangle_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create rectangle pipeline layout: %w", err)
	}
	p.res.PipelineLayout = pipeLayout

	if p.linear, err = createSampler(p.device, "rectangle_linear_sampler", gputypes.FilterModeLinear); err != nil {
		return err
	}
	p.res.Samplers = append(p.res.Samplers, p.linear)
	if p.nearest, err = createSampler(p.device, "rectangle_nearest_sampler", gputypes.FilterModeNearest); err != nil {
		return err
	}
	p.res.Samplers = append(p.res.Samplers, p.nearest)

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "rectangle_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    render.ColorFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: passThroughDepth(false),
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.samples,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create rectangle pipeline: %w", err)
	}
	p.pipeline = pipeline
	p.res.Pipelines = append(p.res.Pipelines, pipeline)
	return nil
}

// SampleCount returns the sample count the pipeline was built for.
func (p *RectanglePipeline) SampleCount() int { return int(p.samples) }

// CreateBindGroup binds one frame's resources.
func (p *RectanglePipeline) CreateBindGroup(b rectangleBindings) (hal.BindGroup, error) {
	if p.pipeline == nil {
		return nil, ErrNilPipeline
	}
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "rectangle_bind_group",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: b.FrameState.NativeHandle(), Offset: 0, Size: compose.FrameStateSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: b.Instances.NativeHandle(), Offset: 0, Size: b.InstanceBytes,
			}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: b.LayerScale.NativeHandle(), Offset: 0, Size: b.LayerBytes,
			}},
			{Binding: 3, Resource: textureViewBinding(b.Textures)},
			{Binding: 4, Resource: textureViewBinding(b.FontAtlas)},
			{Binding: 5, Resource: samplerBinding(p.linear)},
			{Binding: 6, Resource: samplerBinding(p.nearest)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create rectangle bind group: %w", err)
	}
	return bg, nil
}

// Record draws instanceCount quads into the current render pass.
func (p *RectanglePipeline) Record(rp hal.RenderPassEncoder, bg hal.BindGroup, instanceCount uint32) {
	if instanceCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, bg, nil)
	rp.Draw(compose.QuadVertexCount, instanceCount, 0, 0)
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *RectanglePipeline) Destroy() {
	p.res.Destroy()
	p.pipeline = nil
	p.bindLayout = nil
	p.linear = nil
	p.nearest = nil
}

// createSampler creates a clamp-to-edge sampler with the given filter.
func createSampler(device hal.Device, label string, filter gputypes.FilterMode) (hal.Sampler, error) {
	s, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return s, nil
}

// passThroughDepth is a depth state that never rejects fragments. The
// resolve pass writes the averaged depth; the rectangle pass leaves the
// cleared depth untouched.
func passThroughDepth(write bool) *hal.DepthStencilState {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            render.DepthFormat,
		DepthWriteEnabled: write,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0x00,
		StencilWriteMask:  0x00,
	}
}

func textureViewBinding(v hal.TextureView) gputypes.TextureViewBinding {
	return gputypes.TextureViewBinding{TextureView: v.NativeHandle()}
}

func samplerBinding(s hal.Sampler) gputypes.SamplerBinding {
	return gputypes.SamplerBinding{Sampler: s.NativeHandle()}
}
