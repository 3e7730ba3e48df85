package filter

// Kernel sizes selected by source width. Wider sources get wider kernels so
// that blurring a mip chain softens every level by a similar screen extent.
const (
	kernelWidth8K = 8192
	kernelWidth4K = 4096
	kernelWidth2K = 2048
)

// KernelSize returns the box kernel size for a source of the given width:
// 7 from 8192 up, 5 from 4096, 3 from 2048 and 1 (passthrough) below.
func KernelSize(width int) int {
	switch {
	case width >= kernelWidth8K:
		return 7
	case width >= kernelWidth4K:
		return 5
	case width >= kernelWidth2K:
		return 3
	default:
		return 1
	}
}

// BoxOffsets returns the first and last tap offset of a box kernel of size k.
// Taps run from -(k/2) to -(k/2)+k-1, so even sizes lean left/up.
func BoxOffsets(k int) (first, last int) {
	first = -(k / 2)
	return first, first + k - 1
}
