package filter

// Plane is a single-sample RGBA float image, 4 floats per pixel, row-major.
type Plane struct {
	Width, Height int
	Pix           []float32
}

// BoxHorizontal blurs rows [y0, y1) of src into dst with a box kernel of
// size k along X. Taps outside the image are clamped to the edge texel.
// Output alpha is 1. Taps are summed in float64 so a constant input comes
// back unchanged.
func BoxHorizontal(src, dst Plane, k, y0, y1 int) {
	first, last := BoxOffsets(k)
	n := float64(k)
	w := src.Width

	for y := y0; y < y1; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var r, g, b float64
			for o := first; o <= last; o++ {
				i := (row + clampInt(x+o, 0, w-1)) * 4
				r += float64(src.Pix[i])
				g += float64(src.Pix[i+1])
				b += float64(src.Pix[i+2])
			}
			j := (row + x) * 4
			dst.Pix[j] = float32(r / n)
			dst.Pix[j+1] = float32(g / n)
			dst.Pix[j+2] = float32(b / n)
			dst.Pix[j+3] = 1
		}
	}
}

// BoxVertical blurs rows [y0, y1) of dst from src with a box kernel of size
// k along Y. Taps outside the image are clamped to the edge texel.
// Output alpha is 1.
func BoxVertical(src, dst Plane, k, y0, y1 int) {
	first, last := BoxOffsets(k)
	n := float64(k)
	w, h := src.Width, src.Height

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			var r, g, b float64
			for o := first; o <= last; o++ {
				i := (clampInt(y+o, 0, h-1)*w + x) * 4
				r += float64(src.Pix[i])
				g += float64(src.Pix[i+1])
				b += float64(src.Pix[i+2])
			}
			j := (y*w + x) * 4
			dst.Pix[j] = float32(r / n)
			dst.Pix[j+1] = float32(g / n)
			dst.Pix[j+2] = float32(b / n)
			dst.Pix[j+3] = 1
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
