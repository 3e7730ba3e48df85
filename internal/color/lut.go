package color

import "math"

// decodeLUT maps an sRGB byte to its linear value.
var decodeLUT [256]float32

// encodeLUT maps a 12-bit quantized linear value to an sRGB byte.
var encodeLUT [4096]uint8

func init() {
	for i := range decodeLUT {
		decodeLUT[i] = SRGBToLinear(float32(i) / 255)
	}
	for i := range encodeLUT {
		s := LinearToSRGB(float32(i) / 4095)
		encodeLUT[i] = ToU8(s)
	}
}

// DecodeSRGB8 converts an sRGB byte to a linear float via lookup.
func DecodeSRGB8(s uint8) float32 {
	return decodeLUT[s]
}

// EncodeSRGB8 converts a linear float to an sRGB byte via lookup.
// Values outside [0,1] are clamped.
func EncodeSRGB8(l float32) uint8 {
	if l <= 0 {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return encodeLUT[int(math.Round(float64(l*4095)))]
}
