package compose

import (
	"image"
	"image/color"
	"math"

	icolor "github.com/gogpu/compose/internal/color"
)

// Texture is a CPU-resident RGBA float texture with straight alpha.
// Textures are immutable once added to a TextureTable for a frame.
type Texture struct {
	width, height int
	pix           []float32
}

// NewTexture allocates a transparent texture. Non-positive sizes are
// raised to 1.
func NewTexture(width, height int) *Texture {
	width = max(width, 1)
	height = max(height, 1)
	return &Texture{width: width, height: height, pix: make([]float32, width*height*4)}
}

// SolidTexture returns a 1x1 texture of color c.
func SolidTexture(c RGBA) *Texture {
	t := NewTexture(1, 1)
	t.Set(0, 0, c)
	return t
}

// TextureFromImage copies img into a texture, keeping its encoded values.
func TextureFromImage(img image.Image) *Texture {
	return textureFromImage(img, func(v uint8) float32 { return float32(v) / 255 })
}

// TextureFromImageLinear copies img into a texture, decoding sRGB channels
// to linear. Alpha is copied unchanged.
func TextureFromImageLinear(img image.Image) *Texture {
	return textureFromImage(img, icolor.DecodeSRGB8)
}

func textureFromImage(img image.Image, decode func(uint8) float32) *Texture {
	b := img.Bounds()
	t := NewTexture(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			n := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			t.Set(x, y, RGBA{
				R: decode(n.R),
				G: decode(n.G),
				B: decode(n.B),
				A: float32(n.A) / 255,
			})
		}
	}
	return t
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// At returns the texel at (x, y). Coordinates must be in range.
func (t *Texture) At(x, y int) RGBA {
	i := (y*t.width + x) * 4
	p := t.pix[i : i+4 : i+4]
	return RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set stores c at (x, y). Coordinates must be in range.
func (t *Texture) Set(x, y int, c RGBA) {
	i := (y*t.width + x) * 4
	p := t.pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Fill sets every texel to c.
func (t *Texture) Fill(c RGBA) {
	for i := 0; i < len(t.pix); i += 4 {
		t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Load returns the texel at (x, y) with coordinates clamped to the edge.
func (t *Texture) Load(x, y int) RGBA {
	return t.At(clampInt(x, 0, t.width-1), clampInt(y, 0, t.height-1))
}

// SampleNearest samples with nearest filtering and clamp-to-edge addressing.
func (t *Texture) SampleNearest(u, v float32) RGBA {
	x := int(math.Floor(float64(u * float32(t.width))))
	y := int(math.Floor(float64(v * float32(t.height))))
	return t.Load(x, y)
}

// SampleLinear samples with bilinear filtering and clamp-to-edge
// addressing. Texel centers sit at half-integer coordinates.
func (t *Texture) SampleLinear(u, v float32) RGBA {
	fx := float64(u*float32(t.width)) - 0.5
	fy := float64(v*float32(t.height)) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	c00 := t.Load(x0, y0)
	c10 := t.Load(x0+1, y0)
	c01 := t.Load(x0, y0+1)
	c11 := t.Load(x0+1, y0+1)

	return RGBA{
		R: lerp2D(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: lerp2D(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: lerp2D(c00.B, c10.B, c01.B, c11.B, tx, ty),
		A: lerp2D(c00.A, c10.A, c01.A, c11.A, tx, ty),
	}
}

// RGBA8 returns the texels as straight-alpha 8-bit RGBA, row by row.
func (t *Texture) RGBA8() []byte {
	out := make([]byte, len(t.pix))
	for i, v := range t.pix {
		out[i] = icolor.ToU8(v)
	}
	return out
}

// Image converts the texture to an 8-bit straight-alpha image.
func (t *Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	copy(img.Pix, t.RGBA8())
	return img
}

func lerp2D(c00, c10, c01, c11, tx, ty float32) float32 {
	top := c00 + (c10-c00)*tx
	bottom := c01 + (c11-c01)*tx
	return top + (bottom-top)*ty
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
