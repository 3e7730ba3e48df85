// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/go-gl/mathgl/mgl32"

// samplePositions are the standard multisample locations in 1/16 pixel units
// relative to the pixel center, indexed by sample count.
var samplePositions = map[int][][2]int8{
	1: {{0, 0}},
	2: {{4, 4}, {-4, -4}},
	4: {{-2, -6}, {6, -2}, {-6, 2}, {2, 6}},
	8: {
		{1, -3}, {-1, 3}, {5, 1}, {-3, -5},
		{-5, 5}, {-7, -1}, {3, 7}, {7, -7},
	},
	16: {
		{1, 1}, {-1, -3}, {-3, 2}, {4, -1},
		{-5, -2}, {2, 5}, {5, 3}, {3, -5},
		{-2, 6}, {0, -7}, {-4, -6}, {-6, 4},
		{-8, 0}, {7, -4}, {6, 7}, {-7, -8},
	},
}

// SampleOffsets returns the sample locations for a sample count as offsets in
// pixels from the pixel center. It returns nil for unsupported counts.
func SampleOffsets(samples int) []mgl32.Vec2 {
	pos, ok := samplePositions[samples]
	if !ok {
		return nil
	}
	out := make([]mgl32.Vec2, len(pos))
	for i, p := range pos {
		out[i] = mgl32.Vec2{float32(p[0]) / 16, float32(p[1]) / 16}
	}
	return out
}
