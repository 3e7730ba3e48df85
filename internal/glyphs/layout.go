package glyphs

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/cache"
)

// fallbackRune replaces runes the atlas does not hold.
const fallbackRune = '?'

// runCacheCapacity is the number of shaped strings kept per cache shard.
const runCacheCapacity = 32

// run is a shaped string: glyph rectangles relative to the top-left of its
// first line, and the width of its longest line.
type run struct {
	glyphs []placedGlyph
	width  int
}

type placedGlyph struct {
	dst image.Rectangle // pixels, relative to the layout origin
	src image.Rectangle // atlas pixels
}

// shape NFC-normalizes text so combining sequences map to precomposed atlas
// glyphs, then places every visible glyph. Blank glyphs only advance the pen
// and '\n' starts a new line.
func (a *Atlas) shape(text string) run {
	var r run
	var pen fixed.Point26_6
	pen.Y = fixed.I(a.Ascent())
	var widest fixed.Int26_6
	prev := rune(-1)
	for _, c := range norm.NFC.String(text) {
		if c == '\n' {
			widest = max(widest, pen.X)
			pen.X = 0
			pen.Y += fixed.I(a.LineHeight())
			prev = -1
			continue
		}
		g, ok := a.glyphs[c]
		if !ok {
			c = fallbackRune
			if g, ok = a.glyphs[c]; !ok {
				continue
			}
		}
		if prev >= 0 && a.face != nil {
			pen.X += a.face.Kern(prev, c)
		}
		prev = c

		if !g.Bounds.Empty() {
			topLeft := image.Pt(pen.X.Round(), pen.Y.Round()).Add(g.Bearing)
			r.glyphs = append(r.glyphs, placedGlyph{
				dst: image.Rectangle{Min: topLeft, Max: topLeft.Add(g.Bounds.Size())},
				src: g.Bounds,
			})
		}
		pen.X += g.Advance
	}
	r.width = max(widest, pen.X).Ceil()
	return r
}

func (a *Atlas) cachedRun(text string) run {
	return a.runs.GetOrCreate(text, func() run { return a.shape(text) })
}

// Layout places text with its first line's top-left at origin (framebuffer
// pixels) on a screen of the given resolution and returns one text instance
// per visible glyph. Shaped strings are cached, so labels laid out again
// every frame skip glyph lookup.
func (a *Atlas) Layout(text string, origin image.Point, c compose.RGBA, screen mgl32.Vec2) []compose.InstanceRecord {
	r := a.cachedRun(text)
	atlasSize := mgl32.Vec2{float32(a.texture.Width()), float32(a.texture.Height())}
	records := make([]compose.InstanceRecord, 0, len(r.glyphs))
	for _, g := range r.glyphs {
		dst := g.dst.Add(origin)
		size := dst.Size()
		records = append(records, compose.TextRectangle(
			mgl32.Vec2{float32(dst.Min.X) / screen[0], float32(dst.Min.Y) / screen[1]},
			mgl32.Vec2{float32(size.X) / screen[0], float32(size.Y) / screen[1]},
			c,
			mgl32.Vec2{float32(g.src.Min.X) / atlasSize[0], float32(g.src.Min.Y) / atlasSize[1]},
			mgl32.Vec2{float32(size.X) / atlasSize[0], float32(size.Y) / atlasSize[1]},
		))
	}
	return records
}

// Measure returns the advance width of the longest line of text in pixels.
func (a *Atlas) Measure(text string) int {
	return a.cachedRun(text).width
}

// RunCacheStats reports hits and misses of the shaped-string cache.
func (a *Atlas) RunCacheStats() cache.Stats {
	return a.runs.Stats()
}
