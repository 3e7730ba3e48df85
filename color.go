package compose

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	icolor "github.com/gogpu/compose/internal/color"
)

// RGBA is a color with float32 components in [0, 1].
// Instance colors use straight alpha; render targets hold premultiplied
// values.
type RGBA struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Transparent = RGBA{}
)

// RGB creates an opaque color.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Gray creates an opaque color with equal channels.
func Gray(v float32) RGBA {
	return RGBA{R: v, G: v, B: v, A: 1}
}

// FromColor converts a standard color.Color, unpremultiplying its channels.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// Hex creates a color from a hex string.
// Supports "RGB", "RGBA", "RRGGBB" and "RRGGBBAA", with or without '#'.
// Unparseable input yields opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b uint32
	a := uint32(255)

	switch len(hex) {
	case 3:
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
	case 8:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
		parseHex(hex[6:8], &a)
	default:
		return Black
	}

	return RGBA{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

func parseHex(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// Mul multiplies two colors channel by channel.
func (c RGBA) Mul(o RGBA) RGBA {
	return RGBA{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// Premultiply scales RGB by alpha.
func (c RGBA) Premultiply() RGBA {
	return fromF32(icolor.Premultiply(c.f32()))
}

// Unpremultiply divides RGB by alpha; zero alpha yields transparent black.
func (c RGBA) Unpremultiply() RGBA {
	return fromF32(icolor.Unpremultiply(c.f32()))
}

// Linear converts an sRGB straight-alpha color into the linear,
// premultiplied form uploaded to shaders.
func (c RGBA) Linear() RGBA {
	return fromF32(icolor.Linear(c.f32()))
}

// Vec4 returns the channels as an mgl32 vector.
func (c RGBA) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// NRGBA converts a straight-alpha color to 8 bits per channel.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: icolor.ToU8(c.R),
		G: icolor.ToU8(c.G),
		B: icolor.ToU8(c.B),
		A: icolor.ToU8(c.A),
	}
}

// Color implements conversion to the standard color.Color interface,
// treating c as straight alpha.
func (c RGBA) Color() color.Color {
	return c.NRGBA()
}

func (c RGBA) f32() icolor.F32 {
	return icolor.F32{R: c.R, G: c.G, B: c.B, A: c.A}
}

func fromF32(c icolor.F32) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
