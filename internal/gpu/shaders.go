// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/compose"
)

// Embedded WGSL shader sources.

//go:embed shaders/rectangle.wgsl
var rectangleShaderSource string

//go:embed shaders/fullscreen.wgsl
var fullscreenShaderSource string

//go:embed shaders/dof_resolve.wgsl
var resolveShaderSource string

//go:embed shaders/dof_resolve_msaa.wgsl
var resolveMSAAShaderSource string

//go:embed shaders/blur.wgsl
var blurShaderSource string

// sampleCountDecl is the declaration in dof_resolve_msaa.wgsl that is
// rewritten with the pipeline's sample count.
const sampleCountDecl = "const SAMPLE_COUNT: i32 = 4;"

// Shader names, used as cache keys and debug labels.
const (
	shaderRectangle   = "rectangle"
	shaderResolve     = "dof_resolve"
	shaderResolveMSAA = "dof_resolve_msaa"
	shaderBlur        = "blur"
)

// rectangleSource returns the rectangle compositor module.
func rectangleSource() string { return rectangleShaderSource }

// resolveSource returns the full-screen resolve module for sampleCount
// samples: the copy variant for 1, the averaging variant specialized to the
// count otherwise.
func resolveSource(sampleCount int) (string, error) {
	if !compose.ValidSampleCount(sampleCount) {
		return "", fmt.Errorf("%w: %d", compose.ErrInvalidSampleCount, sampleCount)
	}
	if sampleCount == 1 {
		return fullscreenShaderSource + "\n" + resolveShaderSource, nil
	}
	if !strings.Contains(resolveMSAAShaderSource, sampleCountDecl) {
		return "", fmt.Errorf("dof_resolve_msaa shader has no sample count declaration")
	}
	specialized := strings.Replace(resolveMSAAShaderSource, sampleCountDecl,
		fmt.Sprintf("const SAMPLE_COUNT: i32 = %d;", sampleCount), 1)
	return fullscreenShaderSource + "\n" + specialized, nil
}

// blurSource returns the module holding both blur directions.
func blurSource() string {
	return fullscreenShaderSource + "\n" + blurShaderSource
}
