// Package glyphs bakes a font into an atlas texture and lays out text as
// compositor text instances.
package glyphs

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/cache"
)

// atlasWidth is the fixed atlas width; height grows with the glyph set.
const atlasWidth = 512

// padding separates glyphs so linear filtering does not bleed.
const padding = 1

// ErrEmptyAtlas is returned when no rune of the set has a glyph.
var ErrEmptyAtlas = errors.New("glyphs: no glyphs in atlas")

// Glyph is one baked glyph.
type Glyph struct {
	// Bounds is the glyph bitmap in atlas pixels. Empty for blank glyphs.
	Bounds image.Rectangle
	// Bearing is the bitmap's top-left relative to the pen on the baseline.
	Bearing image.Point
	Advance fixed.Int26_6
}

// Atlas is a baked glyph set. Coverage is stored in the red, green and blue
// channels with opaque alpha; text instances read the red channel.
type Atlas struct {
	face    font.Face
	texture *compose.Texture
	glyphs  map[rune]Glyph
	metrics font.Metrics
	runs    *cache.Sharded[string, run]
}

// DefaultRunes is printable ASCII plus Latin-1 Supplement.
func DefaultRunes() []rune {
	runes := make([]rune, 0, 95+96)
	for r := rune(32); r <= 126; r++ {
		runes = append(runes, r)
	}
	for r := rune(160); r <= 255; r++ {
		runes = append(runes, r)
	}
	return runes
}

// NewGoAtlas bakes the Go Regular font at size pixels.
func NewGoAtlas(size float64) (*Atlas, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("glyphs: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("glyphs: new face: %w", err)
	}
	a, err := NewAtlas(face, DefaultRunes())
	if err != nil {
		_ = face.Close()
		return nil, err
	}
	return a, nil
}

// NewAtlas bakes runes from face with a row packer. The atlas keeps face
// for kerning; Close releases it.
func NewAtlas(face font.Face, runes []rune) (*Atlas, error) {
	type placed struct {
		r      rune
		dr     image.Rectangle
		adv    fixed.Int26_6
		origin image.Point
	}

	var items []placed
	x, y, rowH := 0, 0, 0
	for _, r := range runes {
		dr, mask, _, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		p := placed{r: r, adv: advance}
		w, h := dr.Dx(), dr.Dy()
		if mask != nil && w > 0 && h > 0 {
			if x+w+padding > atlasWidth {
				x = 0
				y += rowH + padding
				rowH = 0
			}
			p.dr = dr
			p.origin = image.Pt(x, y)
			x += w + padding
			rowH = max(rowH, h)
		}
		items = append(items, p)
	}
	if len(items) == 0 {
		return nil, ErrEmptyAtlas
	}

	// The face reuses its mask between calls, so each glyph is rasterized
	// again and drawn before the next one.
	canvas := image.NewAlpha(image.Rect(0, 0, atlasWidth, max(y+rowH, 1)))
	glyphs := make(map[rune]Glyph, len(items))
	for _, p := range items {
		g := Glyph{Bearing: p.dr.Min, Advance: p.adv}
		if !p.dr.Empty() {
			_, mask, maskp, _, _ := face.Glyph(fixed.P(0, 0), p.r)
			g.Bounds = image.Rectangle{Min: p.origin, Max: p.origin.Add(p.dr.Size())}
			draw.Draw(canvas, g.Bounds, mask, maskp, draw.Src)
		}
		glyphs[p.r] = g
	}

	return &Atlas{
		face:    face,
		texture: coverageTexture(canvas),
		glyphs:  glyphs,
		metrics: face.Metrics(),
		runs:    cache.NewSharded[string, run](runCacheCapacity, cache.StringHasher),
	}, nil
}

func coverageTexture(canvas *image.Alpha) *compose.Texture {
	b := canvas.Bounds()
	tex := compose.NewTexture(b.Dx(), b.Dy())
	for y := range b.Dy() {
		for x := range b.Dx() {
			v := float32(canvas.AlphaAt(x, y).A) / 255
			tex.Set(x, y, compose.RGBA{R: v, G: v, B: v, A: 1})
		}
	}
	return tex
}

// Texture returns the atlas texture, to bind with TextureTable.SetFontAtlas.
func (a *Atlas) Texture() *compose.Texture { return a.texture }

// Glyph returns the baked glyph for r.
func (a *Atlas) Glyph(r rune) (Glyph, bool) {
	g, ok := a.glyphs[r]
	return g, ok
}

// Len returns the number of baked glyphs.
func (a *Atlas) Len() int { return len(a.glyphs) }

// LineHeight returns the recommended baseline-to-baseline distance in pixels.
func (a *Atlas) LineHeight() int { return a.metrics.Height.Ceil() }

// Ascent returns the distance from the top of a line to its baseline.
func (a *Atlas) Ascent() int { return a.metrics.Ascent.Ceil() }

// Close releases the font face.
func (a *Atlas) Close() error {
	if a.face == nil {
		return nil
	}
	err := a.face.Close()
	a.face = nil
	return err
}
