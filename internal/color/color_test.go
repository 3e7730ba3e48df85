package color

import (
	"math"
	"testing"
)

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestSRGBToLinearEdges(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"black", 0, 0},
		{"white", 1, 1},
		{"linear segment", 0.04045, 0.04045 / 12.92},
		{"mid gray", 0.5, 0.21404114},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SRGBToLinear(tt.in); !near(got, tt.want, 1e-6) {
				t.Errorf("SRGBToLinear(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i <= 100; i++ {
		v := float32(i) / 100
		if got := LinearToSRGB(SRGBToLinear(v)); !near(got, v, 1e-5) {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
}

func TestLinearPremultiplies(t *testing.T) {
	got := Linear(F32{R: 1, G: 0.5, B: 0, A: 0.5})
	want := F32{R: 0.5, G: SRGBToLinear(0.5) * 0.5, B: 0, A: 0.5}
	if !near(got.R, want.R, 1e-6) || !near(got.G, want.G, 1e-6) || got.B != 0 || got.A != 0.5 {
		t.Errorf("Linear = %+v, want %+v", got, want)
	}
}

func TestUnpremultiplyZeroAlpha(t *testing.T) {
	if got := Unpremultiply(F32{R: 0.3, A: 0}); got != (F32{}) {
		t.Errorf("Unpremultiply with zero alpha = %+v, want zero", got)
	}
	c := F32{R: 0.2, G: 0.4, B: 0.6, A: 0.5}
	if got := Unpremultiply(Premultiply(c)); !near(got.R, c.R, 1e-6) || !near(got.B, c.B, 1e-6) {
		t.Errorf("Unpremultiply(Premultiply(%+v)) = %+v", c, got)
	}
}

func TestLUTMatchesExact(t *testing.T) {
	for i := 0; i < 256; i++ {
		s := uint8(i)
		lin := DecodeSRGB8(s)
		if !near(lin, SRGBToLinear(float32(i)/255), 1e-6) {
			t.Fatalf("DecodeSRGB8(%d) = %v", i, lin)
		}
		back := int(EncodeSRGB8(lin))
		if diff := back - i; diff > 1 || diff < -1 {
			t.Errorf("EncodeSRGB8(DecodeSRGB8(%d)) = %d", i, back)
		}
	}
}

func TestToU8Clamps(t *testing.T) {
	if ToU8(-1) != 0 || ToU8(2) != 255 || ToU8(0.5) != 128 {
		t.Errorf("ToU8 clamp/round mismatch: %d %d %d", ToU8(-1), ToU8(2), ToU8(0.5))
	}
}
