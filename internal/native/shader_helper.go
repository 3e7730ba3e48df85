// Package native compiles the compositor's WGSL shaders ahead of pipeline
// creation and owns the cleanup pattern shared by the render pipelines.
package native

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compose/internal/cache"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("failed to compile shader: %d bytes is not a SPIR-V module", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	if spirvCode[0] != spirvMagic {
		return nil, fmt.Errorf("failed to compile shader: bad magic %#08x", spirvCode[0])
	}
	return spirvCode, nil
}

// ShaderKey identifies one specialization of a shader.
type ShaderKey struct {
	Name        string
	SampleCount int
}

// compiled is a cached compilation result; err is cached too so a shader
// naga cannot lower is not recompiled every frame.
type compiled struct {
	spirv []uint32
	err   error
}

// ShaderCache memoizes WGSL to SPIR-V compilation per specialization.
type ShaderCache struct {
	entries *cache.Cache[ShaderKey, compiled]
}

// NewShaderCache creates a cache holding up to limit specializations.
func NewShaderCache(limit int) *ShaderCache {
	return &ShaderCache{entries: cache.New[ShaderKey, compiled](limit)}
}

// SPIRV returns the SPIR-V for key, compiling source on first use.
func (c *ShaderCache) SPIRV(key ShaderKey, source string) ([]uint32, error) {
	r := c.entries.GetOrCreate(key, func() compiled {
		code, err := CompileShaderToSPIRV(source)
		return compiled{spirv: code, err: err}
	})
	return r.spirv, r.err
}

// Stats returns cache statistics.
func (c *ShaderCache) Stats() cache.Stats { return c.entries.Stats() }

// CreateShaderModule creates a HAL shader module for key. It prefers SPIR-V
// compiled through the cache and hands the WGSL to the device when naga
// cannot lower the module.
func (c *ShaderCache) CreateShaderModule(device hal.Device, key ShaderKey, label, source string) (hal.ShaderModule, error) {
	if code, err := c.SPIRV(key, source); err == nil {
		return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{SPIRV: code},
		})
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: source},
	})
}

// GPUResources groups the objects a render pipeline owns so they can be
// destroyed in reverse creation order.
type GPUResources struct {
	Device         hal.Device
	ShaderModule   hal.ShaderModule
	PipelineLayout hal.PipelineLayout
	BindLayouts    []hal.BindGroupLayout
	Samplers       []hal.Sampler
	Pipelines      []hal.RenderPipeline
}

// Destroy cleans up all GPU resources in the correct order. Safe to call
// more than once.
func (r *GPUResources) Destroy() {
	if r.Device == nil {
		return
	}

	for _, p := range r.Pipelines {
		if p != nil {
			r.Device.DestroyRenderPipeline(p)
		}
	}
	if r.PipelineLayout != nil {
		r.Device.DestroyPipelineLayout(r.PipelineLayout)
	}
	for _, l := range r.BindLayouts {
		if l != nil {
			r.Device.DestroyBindGroupLayout(l)
		}
	}
	for _, s := range r.Samplers {
		if s != nil {
			r.Device.DestroySampler(s)
		}
	}
	if r.ShaderModule != nil {
		r.Device.DestroyShaderModule(r.ShaderModule)
	}
	*r = GPUResources{}
}
