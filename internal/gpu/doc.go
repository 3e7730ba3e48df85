// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu executes compositor frames with wgpu render pipelines.
//
// A frame runs as up to four render passes recorded into one command buffer:
//
//	rectangle (N samples) -> resolve (1 sample) -> blur horizontal -> blur vertical
//
// The rectangle pass draws six procedurally generated vertices per instance
// with no vertex buffer bound. Instance records are read from a storage
// buffer, the texture table is a single 2D array texture and the font atlas
// is a separate 2D texture. The resolve pass is a full-screen triangle that
// copies (one sample) or averages (more samples) color and depth. Its shader
// is specialized per sample count and cached as SPIR-V.
//
// The resolved color is copied to a staging buffer and read back into the
// caller's image. Compositor opens a standalone Vulkan device lazily, or
// shares the host's device through SetDeviceProvider.
package gpu
