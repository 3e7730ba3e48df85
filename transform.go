package compose

import "github.com/go-gl/mathgl/mgl32"

// ScreenToClip maps normalized screen space (origin top-left, Y down) to
// clip space (origin center, Y up).
func ScreenToClip(p mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{2*p[0] - 1, -2*p[1] + 1}
}

// ClipToScreen is the inverse of ScreenToClip.
func ClipToScreen(p mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{(p[0] + 1) / 2, (1 - p[1]) / 2}
}

// ScreenToPixel scales a normalized screen position by the resolution.
func ScreenToPixel(p mgl32.Vec2, width, height uint32) mgl32.Vec2 {
	return mgl32.Vec2{p[0] * float32(width), p[1] * float32(height)}
}

// PixelToScreen normalizes a framebuffer position by the resolution.
func PixelToScreen(p mgl32.Vec2, width, height uint32) mgl32.Vec2 {
	return mgl32.Vec2{p[0] / float32(width), p[1] / float32(height)}
}
