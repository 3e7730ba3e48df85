package compose

import "github.com/go-gl/mathgl/mgl32"

// QuadVertexCount is the number of vertices drawn per instance.
const QuadVertexCount = 6

// FullScreenVertexCount is the number of vertices of a full-screen pass.
const FullScreenVertexCount = 3

// Corner masks: bit i is set when vertex i sits on the right (x) or bottom (y)
// edge of the unit quad.
const (
	quadMaskX uint32 = 0b1110
	quadMaskY uint32 = 0b11100
)

// QuadVertex returns the corner of a two-triangle unit quad for vertex index
// 0..5 as (x, y, u, v), with x in {0,1}, y in {0,-1} and the matching UV.
// No vertex buffer is needed.
func QuadVertex(index uint32) mgl32.Vec4 {
	x := float32((quadMaskX >> index) & 1)
	y := float32((quadMaskY >> index) & 1)
	return mgl32.Vec4{x, -y, x, y}
}

// InstanceVertex places QuadVertex(index) on the rectangle described by rec
// and returns its clip-space position and texture coordinate.
func InstanceVertex(rec *InstanceRecord, index uint32) (clip, uv mgl32.Vec2) {
	v := QuadVertex(index)
	origin := ScreenToClip(rec.ScreenPosition)
	size := mgl32.Vec2{rec.ScreenSize[0] * 2, rec.ScreenSize[1] * 2}
	clip = mgl32.Vec2{origin[0] + v[0]*size[0], origin[1] + v[1]*size[1]}
	uv = mgl32.Vec2{
		rec.TexturePosition[0] + v[2]*rec.TextureSize[0],
		rec.TexturePosition[1] + v[3]*rec.TextureSize[1],
	}
	return clip, uv
}

// FullScreenVertex returns the clip position and UV of vertex 0..2 of the
// single oversized triangle that covers the viewport. UV (0,0) is the
// top-left of the screen.
func FullScreenVertex(index uint32) (clip, uv mgl32.Vec2) {
	uv = mgl32.Vec2{float32((index << 1) & 2), float32(index & 2)}
	clip = mgl32.Vec2{uv[0]*2 - 1, 1 - uv[1]*2}
	return clip, uv
}
