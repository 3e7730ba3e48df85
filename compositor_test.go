package compose

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testFrame(w, h uint32) *FrameState {
	return NewFrameState(mgl32.Ident4(), mgl32.Ident4(), w, h)
}

// pixelRect builds a record from pixel coordinates on a w x h framebuffer.
func pixelRect(w, h, x, y, rw, rh float32) InstanceRecord {
	return SolidRectangle(mgl32.Vec2{x / w, y / h}, mgl32.Vec2{rw / w, rh / h}, RGBA{R: 0.2, G: 0.4, B: 0.6, A: 0.8})
}

func near32(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestShadeRectangleZeroRadiusKeepsAlpha(t *testing.T) {
	frame := testFrame(100, 100)
	table := NewTextureTable()
	rec := pixelRect(100, 100, 10, 10, 50, 30)

	for y := 10; y < 40; y++ {
		for x := 10; x < 60; x++ {
			frag := Fragment{Position: mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}}
			if got := ShadeRectangle(frag, &rec, frame, table); got != rec.Color {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, rec.Color)
			}
		}
	}
}

func TestShadeRectangleClip(t *testing.T) {
	frame := testFrame(100, 100)
	table := NewTextureTable()
	rec := pixelRect(100, 100, 0, 0, 100, 100).
		WithClip(ScreenClip{MinX: 20, MinY: 20, MaxX: 40, MaxY: 40}).
		WithCornerRadius(UniformRadius(10))

	tests := []struct {
		name   string
		p      mgl32.Vec2
		inside bool
	}{
		{"inside", mgl32.Vec2{30, 30}, true},
		{"left of clip", mgl32.Vec2{19.5, 30}, false},
		{"below clip", mgl32.Vec2{30, 40.5}, false},
		{"on clip edge", mgl32.Vec2{20, 20}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShadeRectangle(Fragment{Position: tt.p}, &rec, frame, table)
			if tt.inside && got.A == 0 {
				t.Errorf("fragment %v was clipped", tt.p)
			}
			if !tt.inside && got != Transparent {
				t.Errorf("fragment %v = %+v, want transparent", tt.p, got)
			}
		})
	}
}

func TestShadeRectangleRoundedCorners(t *testing.T) {
	frame := testFrame(200, 200)
	table := NewTextureTable()
	rec := pixelRect(200, 200, 50, 50, 100, 100).WithCornerRadius(UniformRadius(20))
	shade := func(x, y float32) float32 {
		return ShadeRectangle(Fragment{Position: mgl32.Vec2{x, y}}, &rec, frame, table).A
	}

	if a := shade(100, 100); a != rec.Color.A {
		t.Errorf("center alpha = %v, want %v", a, rec.Color.A)
	}
	if a := shade(51, 51); a != 0 {
		t.Errorf("cut corner alpha = %v, want 0", a)
	}
	if a := shade(100, 50.5); !near32(a, rec.Color.A, 1e-6) {
		t.Errorf("straight edge alpha = %v, want %v", a, rec.Color.A)
	}

	// On the rounding arc the distance is zero and coverage is one half.
	cx, cy := float32(70), float32(70)
	off := float32(20 / math.Sqrt2)
	if a := shade(cx-off, cy-off); !near32(a, rec.Color.A*0.5, 0.02) {
		t.Errorf("arc alpha = %v, want ~%v", a, rec.Color.A*0.5)
	}

	// RGB is never modified by rounding.
	c := ShadeRectangle(Fragment{Position: mgl32.Vec2{cx - off, cy - off}}, &rec, frame, table)
	if c.R != rec.Color.R || c.G != rec.Color.G || c.B != rec.Color.B {
		t.Errorf("rounding changed RGB: %+v", c)
	}
}

func TestShadeRectanglePerCornerRadius(t *testing.T) {
	frame := testFrame(100, 100)
	table := NewTextureTable()
	rec := pixelRect(100, 100, 0, 0, 100, 100).
		WithCornerRadius(CornerRadius{TopLeft: 0, TopRight: 30, BottomLeft: 0, BottomRight: 0})

	// Top-left has no rounding: its corner pixel is fully covered.
	if a := ShadeRectangle(Fragment{Position: mgl32.Vec2{0.5, 0.5}}, &rec, frame, table).A; a != rec.Color.A {
		t.Errorf("top-left corner alpha = %v, want %v", a, rec.Color.A)
	}
	// Top-right is rounded: its corner pixel is cut away.
	if a := ShadeRectangle(Fragment{Position: mgl32.Vec2{99.5, 0.5}}, &rec, frame, table).A; a != 0 {
		t.Errorf("top-right corner alpha = %v, want 0", a)
	}
}

func TestRoundedBoxSDFCenter(t *testing.T) {
	tests := []struct {
		half mgl32.Vec2
		want float32
	}{
		{mgl32.Vec2{50, 20}, -20},
		{mgl32.Vec2{10, 30}, -10},
		{mgl32.Vec2{5, 5}, -5},
	}
	for _, tt := range tests {
		if got := RoundedBoxSDF(mgl32.Vec2{}, tt.half, 0); got != tt.want {
			t.Errorf("RoundedBoxSDF(center, %v, 0) = %v, want %v", tt.half, got, tt.want)
		}
	}

	half := mgl32.Vec2{10, 10}
	if got := RoundedBoxSDF(mgl32.Vec2{10, 0}, half, 4); !near32(got, 0, 1e-6) {
		t.Errorf("edge distance = %v, want 0", got)
	}
	if got := RoundedBoxSDF(mgl32.Vec2{13, 0}, half, 4); !near32(got, 3, 1e-6) {
		t.Errorf("outside distance = %v, want 3", got)
	}
	// Corner: distance from the rounding circle center (6,6) minus radius.
	want := float32(math.Hypot(4, 4)) - 4
	if got := RoundedBoxSDF(mgl32.Vec2{10, 10}, half, 4); !near32(got, want, 1e-5) {
		t.Errorf("corner distance = %v, want %v", got, want)
	}
}

func TestCornerCoverageClampsOversizedRadius(t *testing.T) {
	res := mgl32.Vec2{100, 100}
	rec := pixelRect(100, 100, 40, 40, 20, 10).WithCornerRadius(UniformRadius(500))
	for _, p := range []mgl32.Vec2{{50, 45}, {41, 45}, {59, 45}} {
		a := CornerCoverage(p, &rec, res)
		if math.IsNaN(float64(a)) || a < 0 || a > 1 {
			t.Errorf("coverage at %v = %v, want within [0,1]", p, a)
		}
	}
	if a := CornerCoverage(mgl32.Vec2{50, 45}, &rec, res); a != 1 {
		t.Errorf("center coverage = %v, want 1", a)
	}
}

func TestShadeRectangleText(t *testing.T) {
	frame := testFrame(10, 10)
	table := NewTextureTable()
	atlas := NewTexture(4, 4)
	table.SetFontAtlas(atlas)

	base := RGBA{R: 0.9, G: 0.3, B: 0.1, A: 0.8}
	rec := TextRectangle(mgl32.Vec2{}, mgl32.Vec2{1, 1}, base, mgl32.Vec2{}, mgl32.Vec2{1, 1})
	frag := Fragment{Position: mgl32.Vec2{5, 5}, UV: mgl32.Vec2{0.5, 0.5}}

	for i := 0; i <= 10; i++ {
		coverage := float32(i) / 10
		atlas.Fill(RGBA{R: coverage, G: 0.7, B: 0.7, A: 1})
		got := ShadeRectangle(frag, &rec, frame, table)
		if !near32(got.A, base.A*coverage, 1e-6) {
			t.Errorf("coverage %v: alpha = %v, want %v", coverage, got.A, base.A*coverage)
		}
		if got.R != base.R || got.G != base.G || got.B != base.B {
			t.Errorf("coverage %v: RGB changed to %+v", coverage, got)
		}
	}
}

func TestShadeRectangleSprites(t *testing.T) {
	frame := testFrame(10, 10)
	table := NewTextureTable()
	tex := checkerTexture()
	idx := table.Add(tex)

	tint := RGBA{R: 0.5, G: 1, B: 1, A: 1}
	linear := SpriteRectangle(mgl32.Vec2{}, mgl32.Vec2{1, 1}, tint, idx, false)
	nearest := SpriteRectangle(mgl32.Vec2{}, mgl32.Vec2{1, 1}, tint, idx, true)

	mid := Fragment{Position: mgl32.Vec2{5, 5}, UV: mgl32.Vec2{0.5, 0.5}}
	if got := ShadeRectangle(mid, &linear, frame, table); !near32(got.R, 0.25, 1e-6) || !near32(got.G, 0.5, 1e-6) {
		t.Errorf("linear sprite = %+v, want averaged texels tinted", got)
	}
	if got := ShadeRectangle(mid, &nearest, frame, table); got != (RGBA{R: 0.5, G: 1, B: 1, A: 1}) {
		t.Errorf("nearest sprite = %+v, want white texel tinted", got)
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct{ x, want float32 }{
		{-1, 0}, {-0.5, 0}, {0, 0.5}, {0.5, 1}, {2, 1},
	}
	for _, tt := range tests {
		if got := Smoothstep(-0.5, 0.5, tt.x); got != tt.want {
			t.Errorf("Smoothstep(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
