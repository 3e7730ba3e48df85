// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/compose"
)

// MipLevelCount returns the number of levels of a full chain for a
// width x height image, down to a 1-pixel wide or tall level.
func MipLevelCount(width, height int) int {
	n := 1
	for width > 1 && height > 1 {
		width, height = width/2, height/2
		n++
	}
	return n
}

// MipChain returns src followed by successively halved copies, levels
// entries in total. levels <= 0 builds the full chain. Each level is
// downsampled from the previous one with a bilinear filter.
func MipChain(src *Target, levels int) ([]*Target, error) {
	if src.samples != 1 {
		return nil, fmt.Errorf("%w: mip chain needs a single-sample target", compose.ErrTargetMismatch)
	}
	full := MipLevelCount(src.width, src.height)
	if levels <= 0 || levels > full {
		levels = full
	}

	chain := make([]*Target, 0, levels)
	chain = append(chain, src)
	prev := src.rgba64()
	for i := 1; i < levels; i++ {
		b := prev.Bounds()
		next := image.NewRGBA64(image.Rect(0, 0, max(b.Dx()/2, 1), max(b.Dy()/2, 1)))
		xdraw.BiLinear.Scale(next, next.Bounds(), prev, b, xdraw.Src, nil)
		chain = append(chain, targetFromRGBA64(next))
		prev = next
	}
	return chain, nil
}
