// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compose/internal/native"
	"github.com/gogpu/compose/render"
)

// ResolvePipeline collapses a color and depth target with SampleCount
// samples into single-sample targets with a full-screen triangle. One sample
// copies, more samples average.
type ResolvePipeline struct {
	device  hal.Device
	samples int

	res        native.GPUResources
	bindLayout hal.BindGroupLayout
	pipeline   hal.RenderPipeline
}

// NewResolvePipeline builds the resolve variant for sampleCount.
func NewResolvePipeline(device hal.Device, sampleCount int) (*ResolvePipeline, error) {
	src, err := resolveSource(sampleCount)
	if err != nil {
		return nil, err
	}
	p := &ResolvePipeline{device: device, samples: sampleCount}
	p.res.Device = device
	if err := p.create(src); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("resolve pipeline created", "samples", sampleCount)
	return p, nil
}

func (p *ResolvePipeline) create(src string) error {
	name := shaderResolve
	if p.samples > 1 {
		name = shaderResolveMSAA
	}
	shader, err := shaderCache.CreateShaderModule(p.device,
		native.ShaderKey{Name: name, SampleCount: p.samples}, name+"_shader", src)
	if err != nil {
		return fmt.Errorf("compile %s shader: %w", name, err)
	}
	p.res.ShaderModule = shader

	multisampled := p.samples > 1
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "resolve_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
					Multisampled:  multisampled,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeDepth,
					ViewDimension: gputypes.TextureViewDimension2D,
					Multisampled:  multisampled,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create resolve bind layout: %w", err)
	}
	p.bindLayout = bindLayout
	p.res.BindLayouts = append(p.res.BindLayouts, bindLayout)

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "resolve_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create resolve pipeline layout: %w", err)
	}
	p.res.PipelineLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "resolve_pipeline",
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
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: passThroughDepth(true),
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create resolve pipeline: %w", err)
	}
	p.pipeline = pipeline
	p.res.Pipelines = append(p.res.Pipelines, pipeline)
	return nil
}

// SampleCount returns the number of samples the pipeline reads.
func (p *ResolvePipeline) SampleCount() int { return p.samples }

// CreateBindGroup binds the multisampled color and depth views to read.
func (p *ResolvePipeline) CreateBindGroup(color, depth hal.TextureView) (hal.BindGroup, error) {
	if p.pipeline == nil {
		return nil, ErrNilPipeline
	}
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "resolve_bind_group",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: textureViewBinding(color)},
			{Binding: 1, Resource: textureViewBinding(depth)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create resolve bind group: %w", err)
	}
	return bg, nil
}

// Record draws the full-screen triangle.
func (p *ResolvePipeline) Record(rp hal.RenderPassEncoder, bg hal.BindGroup) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, bg, nil)
	rp.Draw(3, 1, 0, 0)
}

// Destroy releases all GPU resources held by the pipeline.
func (p *ResolvePipeline) Destroy() {
	p.res.Destroy()
	p.pipeline = nil
	p.bindLayout = nil
}
