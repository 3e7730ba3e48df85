package main

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/glyphs"
)

// layout converts framebuffer pixels to the normalized screen space the
// instance records use.
type layout struct {
	screen mgl32.Vec2
}

func (l layout) rect(x, y, w, h float32) (pos, size mgl32.Vec2) {
	return mgl32.Vec2{x / l.screen[0], y / l.screen[1]}, mgl32.Vec2{w / l.screen[0], h / l.screen[1]}
}

// checkerboard returns an n x n two-color texture with one texel per cell.
func checkerboard(n int, a, b compose.RGBA) *compose.Texture {
	tex := compose.NewTexture(n, n)
	for y := range n {
		for x := range n {
			c := a
			if (x+y)%2 == 1 {
				c = b
			}
			tex.Set(x, y, c)
		}
	}
	return tex
}

// buildScene lays out the demo: a sidebar and cards with mixed corner radii,
// the same sprite with linear and nearest filtering, a clipped banner and
// text labels. Textures are added to table.
func buildScene(screen mgl32.Vec2, table *compose.TextureTable, atlas *glyphs.Atlas) []compose.InstanceRecord {
	l := layout{screen: screen}
	w, h := screen[0], screen[1]
	pad := h * 0.04

	var records []compose.InstanceRecord
	add := func(r ...compose.InstanceRecord) { records = append(records, r...) }

	pos, size := l.rect(pad, pad, w*0.22, h-2*pad)
	add(compose.SolidRectangle(pos, size, compose.Hex("#2a2e38")).
		WithCornerRadius(compose.UniformRadius(16)))

	cardX := pad*2 + w*0.22
	cardW := (w - cardX - 2*pad) / 2
	cardH := h*0.45 - pad
	pos, size = l.rect(cardX, pad, cardW, cardH)
	add(compose.SolidRectangle(pos, size, compose.Hex("#3b6fd8")).
		WithCornerRadius(compose.CornerRadius{TopLeft: 32, TopRight: 4, BottomLeft: 4, BottomRight: 32}))
	pos, size = l.rect(cardX+cardW+pad, pad, cardW-pad, cardH)
	add(compose.SolidRectangle(pos, size, compose.Hex("#d8603b").WithAlpha(0.85)).
		WithCornerRadius(compose.CornerRadius{TopLeft: 0, TopRight: 48, BottomLeft: 48, BottomRight: 0}))

	sprite := table.Add(checkerboard(8, compose.White, compose.Hex("#202020")))
	spriteY := pad*2 + cardH
	side := min(cardW, h-spriteY-pad) * 0.8
	pos, size = l.rect(cardX, spriteY, side, side)
	add(compose.SpriteRectangle(pos, size, compose.White, sprite, false).
		WithCornerRadius(compose.UniformRadius(12)))
	pos, size = l.rect(cardX+cardW+pad, spriteY, side, side)
	add(compose.SpriteRectangle(pos, size, compose.White, sprite, true).
		WithCornerRadius(compose.UniformRadius(12)))

	// The banner extends past the sidebar and is clipped to it.
	bannerY := h * 0.6
	pos, size = l.rect(0, bannerY, w*0.5, h*0.08)
	add(compose.SolidRectangle(pos, size, compose.Hex("#58c27d")).
		WithClip(compose.ScreenClip{MinX: pad, MinY: 0, MaxX: pad + w*0.22, MaxY: h}))

	white := compose.White
	add(atlas.Layout("compose", image.Pt(int(pad*2), int(pad*2)), white, screen)...)
	add(atlas.Layout("linear\nfiltering", image.Pt(int(cardX), int(spriteY+side+4)), white, screen)...)
	add(atlas.Layout("nearest\nfiltering", image.Pt(int(cardX+cardW+pad), int(spriteY+side+4)), white, screen)...)
	return records
}
