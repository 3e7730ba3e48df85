package compose

import "github.com/go-gl/mathgl/mgl32"

// Fragment is the per-fragment input of the rectangle shader.
type Fragment struct {
	// Position is the fragment center in framebuffer pixels.
	Position mgl32.Vec2
	// UV is the interpolated texture coordinate.
	UV mgl32.Vec2
}

// ShadeRectangle computes the straight-alpha color of one fragment of the
// rectangle rec. It is a pure function of its inputs and performs no
// validation: texture indices must have been checked with ValidateInstances.
func ShadeRectangle(frag Fragment, rec *InstanceRecord, frame *FrameState, table *TextureTable) RGBA {
	if !rec.ScreenClip.Contains(frag.Position) {
		return Transparent
	}

	c := baseColor(rec, frag.UV, table)
	if rec.CornerRadius.IsZero() {
		return c
	}
	c.A *= CornerCoverage(frag.Position, rec, frame.PixelSize())
	return c
}

// baseColor resolves the unrounded color by rectangle type.
func baseColor(rec *InstanceRecord, uv mgl32.Vec2, table *TextureTable) RGBA {
	switch rec.Type {
	case RectangleSprite:
		return rec.Color.Mul(table.Lookup(rec.TextureIndex).SampleLinear(uv[0], uv[1]))
	case RectangleSpriteNearest:
		return rec.Color.Mul(table.Lookup(rec.TextureIndex).SampleNearest(uv[0], uv[1]))
	case RectangleText:
		c := rec.Color
		c.A *= table.FontAtlas().SampleLinear(uv[0], uv[1]).R
		return c
	default:
		return rec.Color
	}
}

// CornerCoverage returns the anti-aliasing factor of the rounded corners of
// rec at the pixel position p, for a framebuffer of the given size.
func CornerCoverage(p mgl32.Vec2, rec *InstanceRecord, resolution mgl32.Vec2) float32 {
	origin := mgl32.Vec2{rec.ScreenPosition[0] * resolution[0], rec.ScreenPosition[1] * resolution[1]}
	half := mgl32.Vec2{rec.ScreenSize[0] * resolution[0] * 0.5, rec.ScreenSize[1] * resolution[1] * 0.5}
	rel := p.Sub(origin.Add(half))

	// Strict comparisons: a fragment on a center line takes the left or top radius.
	r := rec.CornerRadius.Select(rel[0] > 0, rel[1] > 0)
	r = min(r, half[0], half[1])
	if r <= 0 {
		return 1
	}

	d := RoundedBoxSDF(rel, half, r)
	return edgeCoverage(d, sdfGradient(rel, half, r, d))
}
