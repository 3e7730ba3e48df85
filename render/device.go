// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The GPU executor RECEIVES the device from the host when one is available,
// so compositor passes and the host's own rendering share one device and one
// queue. DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// Formats shared by both executors. The software executor stores floats
// internally but quantizes through the same formats on export, so the two
// produce comparable images.
const (
	// ColorFormat is the format of color targets and of the final output.
	ColorFormat = gputypes.TextureFormatRGBA8Unorm

	// DepthFormat is the format of depth targets and of the resolved depth.
	DepthFormat = gputypes.TextureFormatDepth32Float
)

// TargetDescriptor describes an offscreen target. It mirrors the subset of
// the WebGPU texture descriptor the compositor passes need.
type TargetDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the target size in pixels.
	Width, Height uint32

	// SampleCount is the number of samples per pixel (1, 2, 4, 8 or 16).
	SampleCount uint32

	// Format is the color format.
	Format gputypes.TextureFormat
}

// DefaultTargetDescriptor returns a single-sample ColorFormat descriptor.
func DefaultTargetDescriptor(width, height uint32) TargetDescriptor {
	return TargetDescriptor{
		Width:       width,
		Height:      height,
		SampleCount: 1,
		Format:      ColorFormat,
	}
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeUnknown}
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
