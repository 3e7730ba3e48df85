// Package blend implements Porter-Duff compositing on premultiplied float
// colors.
//
// Operators take and return premultiplied RGBA in [0,1]. They match the
// fixed-function blend states the GPU pipelines configure, so the software
// and GPU executors composite identically.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// Color is a premultiplied RGBA value.
type Color [4]float32

// BlendMode represents a Porter-Duff compositing operation.
type BlendMode uint8

const (
	BlendClear           BlendMode = iota // Result: 0
	BlendSource                           // Result: S
	BlendDestination                      // Result: D
	BlendSourceOver                       // Result: S + D*(1-Sa) [default]
	BlendDestinationOver                  // Result: S*(1-Da) + D
	BlendPlus                             // Result: S + D (clamped to 1)
)

// BlendFunc is the signature for blend operations.
type BlendFunc func(src, dst Color) Color

// GetBlendFunc returns the blend function for the given mode.
// Returns blendSourceOver for unknown modes.
func GetBlendFunc(mode BlendMode) BlendFunc {
	switch mode {
	case BlendClear:
		return blendClear
	case BlendSource:
		return blendSource
	case BlendDestination:
		return blendDestination
	case BlendDestinationOver:
		return blendDestinationOver
	case BlendPlus:
		return blendPlus
	default:
		return blendSourceOver
	}
}

// String returns the operator name.
func (m BlendMode) String() string {
	switch m {
	case BlendClear:
		return "Clear"
	case BlendSource:
		return "Source"
	case BlendDestination:
		return "Destination"
	case BlendSourceOver:
		return "SourceOver"
	case BlendDestinationOver:
		return "DestinationOver"
	case BlendPlus:
		return "Plus"
	default:
		return "Unknown"
	}
}

func blendClear(_, _ Color) Color { return Color{} }

func blendSource(src, _ Color) Color { return src }

func blendDestination(_, dst Color) Color { return dst }

// SourceOver composites src over dst. It is the operator behind
// gputypes.BlendStatePremultiplied.
func SourceOver(src, dst Color) Color { return blendSourceOver(src, dst) }

func blendSourceOver(src, dst Color) Color {
	inv := 1 - src[3]
	return Color{
		src[0] + dst[0]*inv,
		src[1] + dst[1]*inv,
		src[2] + dst[2]*inv,
		src[3] + dst[3]*inv,
	}
}

func blendDestinationOver(src, dst Color) Color {
	return blendSourceOver(dst, src)
}

func blendPlus(src, dst Color) Color {
	return Color{
		min(src[0]+dst[0], 1),
		min(src[1]+dst[1], 1),
		min(src[2]+dst[2], 1),
		min(src[3]+dst[3], 1),
	}
}
