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

// BlurDirection selects one of the two separable blur passes.
type BlurDirection int

const (
	BlurHorizontal BlurDirection = iota
	BlurVertical
)

// BlurPipeline holds the horizontal and vertical box blur pipelines. Both
// read a single-sample texture with textureLoad and write opaque color. The
// kernel width is chosen in the shader from the source width.
type BlurPipeline struct {
	device hal.Device

	res        native.GPUResources
	bindLayout hal.BindGroupLayout
	pipelines  [2]hal.RenderPipeline
}

// NewBlurPipeline compiles the blur module and builds both directions.
func NewBlurPipeline(device hal.Device) (*BlurPipeline, error) {
	p := &BlurPipeline{device: device}
	p.res.Device = device
	if err := p.create(); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("blur pipelines created")
	return p, nil
}

func (p *BlurPipeline) create() error {
	shader, err := shaderCache.CreateShaderModule(p.device,
		native.ShaderKey{Name: shaderBlur, SampleCount: 1}, "blur_shader", blurSource())
	if err != nil {
		return fmt.Errorf("compile blur shader: %w", err)
	}
	p.res.ShaderModule = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blur_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create blur bind layout: %w", err)
	}
	p.bindLayout = bindLayout
	p.res.BindLayouts = append(p.res.BindLayouts, bindLayout)

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "blur_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create blur pipeline layout: %w", err)
	}
	p.res.PipelineLayout = pipeLayout

	entries := [2]string{"fs_horizontal", "fs_vertical"}
	for i, entry := range entries {
		pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  "blur_" + entry,
			Layout: pipeLayout,
			Vertex: hal.VertexState{
				Module:     shader,
				EntryPoint: "vs_main",
			},
			Fragment: &hal.FragmentState{
				Module:     shader,
				EntryPoint: entry,
				Targets: []gputypes.ColorTargetState{
					{
						Format:    render.ColorFormat,
						WriteMask: gputypes.ColorWriteMaskAll,
					},
				},
			},
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
			return fmt.Errorf("create blur %s pipeline: %w", entry, err)
		}
		p.pipelines[i] = pipeline
		p.res.Pipelines = append(p.res.Pipelines, pipeline)
	}
	return nil
}

// CreateBindGroup binds the texture a pass reads.
func (p *BlurPipeline) CreateBindGroup(source hal.TextureView) (hal.BindGroup, error) {
	if p.pipelines[0] == nil {
		return nil, ErrNilPipeline
	}
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "blur_bind_group",
		Layout:  p.bindLayout,
		Entries: []gputypes.BindGroupEntry{{Binding: 0, Resource: textureViewBinding(source)}},
	})
	if err != nil {
		return nil, fmt.Errorf("create blur bind group: %w", err)
	}
	return bg, nil
}

// Record draws one blur direction as a full-screen triangle.
func (p *BlurPipeline) Record(rp hal.RenderPassEncoder, dir BlurDirection, bg hal.BindGroup) {
	rp.SetPipeline(p.pipelines[dir])
	rp.SetBindGroup(0, bg, nil)
	rp.Draw(3, 1, 0, 0)
}

// Destroy releases all GPU resources held by the pipeline.
func (p *BlurPipeline) Destroy() {
	p.res.Destroy()
	p.pipelines = [2]hal.RenderPipeline{}
	p.bindLayout = nil
}
