package compose

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// InstanceStride is the size of one encoded InstanceRecord in bytes.
const InstanceStride = 96

// instancePadding rounds the 88 bytes of fields up to a 16-byte multiple.
const instancePadding = 8

// RectangleType selects how a rectangle's base color is produced.
// The set is closed: exactly four modes exist.
type RectangleType uint32

const (
	// RectangleSolid uses the instance color verbatim.
	RectangleSolid RectangleType = iota
	// RectangleSprite multiplies the color by a linearly filtered texture sample.
	RectangleSprite
	// RectangleSpriteNearest multiplies the color by a nearest-filtered sample.
	RectangleSpriteNearest
	// RectangleText multiplies the color's alpha by the font atlas red channel.
	RectangleText
)

// Valid reports whether t is one of the four defined modes.
func (t RectangleType) Valid() bool {
	return t <= RectangleText
}

// Textured reports whether t samples the bindless texture table.
func (t RectangleType) Textured() bool {
	return t == RectangleSprite || t == RectangleSpriteNearest
}

func (t RectangleType) String() string {
	switch t {
	case RectangleSolid:
		return "solid"
	case RectangleSprite:
		return "sprite"
	case RectangleSpriteNearest:
		return "sprite-nearest"
	case RectangleText:
		return "text"
	}
	return fmt.Sprintf("RectangleType(%d)", uint32(t))
}

// CornerRadius holds one radius per corner, in pixels.
type CornerRadius struct {
	TopLeft, TopRight, BottomLeft, BottomRight float32
}

// UniformRadius returns a CornerRadius with the same radius on every corner.
func UniformRadius(r float32) CornerRadius {
	return CornerRadius{TopLeft: r, TopRight: r, BottomLeft: r, BottomRight: r}
}

// IsZero reports whether no corner is rounded.
func (c CornerRadius) IsZero() bool {
	return c == CornerRadius{}
}

// Select returns the radius of the quadrant a point falls in.
func (c CornerRadius) Select(right, bottom bool) float32 {
	switch {
	case right && bottom:
		return c.BottomRight
	case right:
		return c.TopRight
	case bottom:
		return c.BottomLeft
	}
	return c.TopLeft
}

// ScreenClip is an axis-aligned clip rectangle in framebuffer pixels.
type ScreenClip struct {
	MinX, MinY, MaxX, MaxY float32
}

// NoClip returns a clip rectangle that never rejects a fragment.
func NoClip() ScreenClip {
	return ScreenClip{MaxX: math.MaxFloat32, MaxY: math.MaxFloat32}
}

// Contains reports whether the pixel position lies inside the clip, edges
// included.
func (c ScreenClip) Contains(p mgl32.Vec2) bool {
	return p[0] >= c.MinX && p[1] >= c.MinY && p[0] <= c.MaxX && p[1] <= c.MaxY
}

// InstanceRecord describes one drawable rectangle. Records carry no identity
// across frames; the caller rewrites the whole array every frame.
type InstanceRecord struct {
	// Color is straight-alpha RGBA.
	Color        RGBA
	CornerRadius CornerRadius
	ScreenClip   ScreenClip

	// ScreenPosition and ScreenSize are normalized to [0,1] with the origin
	// at the top-left of the screen.
	ScreenPosition mgl32.Vec2
	ScreenSize     mgl32.Vec2

	// TexturePosition and TextureSize select a UV sub-rectangle for atlases.
	TexturePosition mgl32.Vec2
	TextureSize     mgl32.Vec2

	Type RectangleType

	// TextureIndex addresses the TextureTable. Ignored for solid and text.
	TextureIndex int32
}

func newRecord(typ RectangleType, pos, size mgl32.Vec2, c RGBA) InstanceRecord {
	return InstanceRecord{
		Color:          c,
		ScreenClip:     NoClip(),
		ScreenPosition: pos,
		ScreenSize:     size,
		TextureSize:    mgl32.Vec2{1, 1},
		Type:           typ,
	}
}

// SolidRectangle returns an unclipped, unrounded solid record.
func SolidRectangle(pos, size mgl32.Vec2, c RGBA) InstanceRecord {
	return newRecord(RectangleSolid, pos, size, c)
}

// SpriteRectangle returns a record sampling the whole texture at index.
func SpriteRectangle(pos, size mgl32.Vec2, c RGBA, index int32, nearest bool) InstanceRecord {
	typ := RectangleSprite
	if nearest {
		typ = RectangleSpriteNearest
	}
	r := newRecord(typ, pos, size, c)
	r.TextureIndex = index
	return r
}

// TextRectangle returns a glyph record reading the font atlas sub-rectangle
// at uvPos/uvSize.
func TextRectangle(pos, size mgl32.Vec2, c RGBA, uvPos, uvSize mgl32.Vec2) InstanceRecord {
	r := newRecord(RectangleText, pos, size, c)
	r.TexturePosition = uvPos
	r.TextureSize = uvSize
	return r
}

// WithCornerRadius returns a copy of r with the given radii.
func (r InstanceRecord) WithCornerRadius(c CornerRadius) InstanceRecord {
	r.CornerRadius = c
	return r
}

// WithClip returns a copy of r with the given clip rectangle.
func (r InstanceRecord) WithClip(c ScreenClip) InstanceRecord {
	r.ScreenClip = c
	return r
}

// WithTextureRegion returns a copy of r sampling the given UV sub-rectangle.
func (r InstanceRecord) WithTextureRegion(pos, size mgl32.Vec2) InstanceRecord {
	r.TexturePosition = pos
	r.TextureSize = size
	return r
}

// AppendBytes appends the GPU encoding of r to buf.
func (r *InstanceRecord) AppendBytes(buf []byte) []byte {
	buf, err := binary.Append(buf, binary.LittleEndian, r)
	if err != nil {
		// InstanceRecord contains only fixed-size fields.
		panic(err)
	}
	var pad [instancePadding]byte
	return append(buf, pad[:]...)
}

// EncodeInstances packs records densely for upload.
func EncodeInstances(records []InstanceRecord) []byte {
	buf := make([]byte, 0, len(records)*InstanceStride)
	for i := range records {
		buf = records[i].AppendBytes(buf)
	}
	return buf
}

// ValidateInstances checks every record against the texture table.
// It is the host-boundary check; the shading path performs none.
func ValidateInstances(records []InstanceRecord, table *TextureTable) error {
	for i := range records {
		r := &records[i]
		if !r.Type.Valid() {
			return fmt.Errorf("instance %d: %w: %d", i, ErrInvalidRectangleType, r.Type)
		}
		switch {
		case r.Type.Textured():
			if _, err := table.Texture(r.TextureIndex); err != nil {
				return fmt.Errorf("instance %d: %w", i, err)
			}
		case r.Type == RectangleText:
			if table.FontAtlas() == nil {
				return fmt.Errorf("instance %d: %w", i, ErrMissingFontAtlas)
			}
		}
	}
	return nil
}
