// Package color converts compositor colors between sRGB and linear space.
//
// Instance colors are authored in sRGB with straight alpha. Shaders consume
// linear, premultiplied values, so every upload path goes through Linear.
package color

import "math"

// F32 is an RGBA color with float32 components in [0,1].
// Alpha is always linear.
type F32 struct {
	R, G, B, A float32
}

// SRGBToLinear decodes one sRGB channel.
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGB encodes one linear channel.
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// Linear converts a straight-alpha sRGB color into the premultiplied linear
// form the shaders blend with.
func Linear(c F32) F32 {
	return F32{
		R: SRGBToLinear(c.R) * c.A,
		G: SRGBToLinear(c.G) * c.A,
		B: SRGBToLinear(c.B) * c.A,
		A: c.A,
	}
}

// Premultiply scales RGB by alpha.
func Premultiply(c F32) F32 {
	return F32{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Unpremultiply divides RGB by alpha. A zero alpha yields transparent black.
func Unpremultiply(c F32) F32 {
	if c.A <= 0 {
		return F32{}
	}
	inv := 1 / c.A
	return F32{R: c.R * inv, G: c.G * inv, B: c.B * inv, A: c.A}
}

// ToU8 maps a [0,1] channel to a byte with rounding and clamping.
func ToU8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
