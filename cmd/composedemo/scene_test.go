package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/config"
	"github.com/gogpu/compose/internal/glyphs"
)

func TestBuildScene(t *testing.T) {
	atlas, err := glyphs.NewGoAtlas(18)
	if err != nil {
		t.Fatal(err)
	}
	defer atlas.Close()

	tests := []struct {
		name   string
		screen mgl32.Vec2
	}{
		{"hd", mgl32.Vec2{1280, 720}},
		{"small", mgl32.Vec2{320, 240}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := compose.NewTextureTable()
			table.SetFontAtlas(atlas.Texture())
			records := buildScene(tt.screen, table, atlas)
			if err := compose.ValidateInstances(records, table); err != nil {
				t.Fatalf("ValidateInstances: %v", err)
			}

			counts := map[compose.RectangleType]int{}
			for _, r := range records {
				counts[r.Type]++
			}
			if counts[compose.RectangleSolid] != 4 {
				t.Errorf("solid rectangles = %d, want 4", counts[compose.RectangleSolid])
			}
			if counts[compose.RectangleSprite] != 1 || counts[compose.RectangleSpriteNearest] != 1 {
				t.Errorf("sprites = %v, want one per filter mode", counts)
			}
			if counts[compose.RectangleText] == 0 {
				t.Error("no text instances")
			}
		})
	}
}

func TestCheckerboard(t *testing.T) {
	a, b := compose.White, compose.Black
	tex := checkerboard(4, a, b)
	if tex.At(0, 0) != a || tex.At(1, 0) != b || tex.At(1, 1) != a {
		t.Error("checkerboard cells do not alternate")
	}
}

func TestApplyFlagsKeepsUnsetFields(t *testing.T) {
	s := config.Default()
	s.Width = 640
	applyFlags(&s, config.Settings{Width: 1})
	if s.Width != 640 {
		t.Errorf("Width = %d, flags were not set explicitly", s.Width)
	}
}
