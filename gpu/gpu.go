//go:build !nogpu

// Package gpu registers the wgpu compositor backend.
//
// Import this package to execute frames with GPU render pipelines:
//
//	import _ "github.com/gogpu/compose/gpu"
//
// The backend opens its device on the first frame. If no Vulkan adapter is
// available it reports compose.ErrFallbackToCPU and render.RenderImage draws
// the frame with the software renderer instead.
package gpu

import (
	"github.com/gogpu/compose"
	gpuimpl "github.com/gogpu/compose/internal/gpu"
	"github.com/gogpu/compose/render"
)

func init() {
	if err := compose.RegisterBackend(gpuimpl.NewCompositor()); err != nil {
		compose.Logger().Warn("GPU backend not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU backend to use a shared GPU device
// from the host application instead of opening its own.
//
// The provider should also implement HalDevice() any and HalQueue() any for
// direct HAL access.
func SetDeviceProvider(provider render.DeviceHandle) error {
	return compose.SetBackendDeviceProvider(provider)
}
