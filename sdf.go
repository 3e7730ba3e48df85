package compose

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// minGradient keeps the distance normalization finite on flat regions.
const minGradient = 1e-6

// RoundedBoxSDF returns the signed distance from rel, a position relative to
// the box center, to a box with the given half extents and corner radius.
// Negative inside, zero on the boundary, positive outside.
func RoundedBoxSDF(rel, half mgl32.Vec2, radius float32) float32 {
	// Fold into the first quadrant and measure against the inner box whose
	// corners are the centers of the rounding circles.
	dx := abs32(rel[0]) - half[0] + radius
	dy := abs32(rel[1]) - half[1] + radius

	ox := max(dx, 0)
	oy := max(dy, 0)
	outside := float32(math.Sqrt(float64(ox*ox + oy*oy)))
	inside := min(max(dx, dy), 0)

	return outside + inside - radius
}

// Smoothstep is the Hermite interpolation between edge0 and edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	t = min(max(t, 0), 1)
	return t * t * (3 - 2*t)
}

// edgeCoverage turns a distance into a coverage factor with a one pixel wide
// transition centered on the boundary. grad is the distance change per pixel.
func edgeCoverage(d, grad float32) float32 {
	return 1 - Smoothstep(-0.5, 0.5, d/max(grad, minGradient))
}

// sdfGradient estimates the per-pixel rate of change of the box distance at
// rel from half-pixel forward differences, scaled back to one pixel.
func sdfGradient(rel, half mgl32.Vec2, radius, d float32) float32 {
	ddx := RoundedBoxSDF(mgl32.Vec2{rel[0] + 0.5, rel[1]}, half, radius) - d
	ddy := RoundedBoxSDF(mgl32.Vec2{rel[0], rel[1] + 0.5}, half, radius) - d
	return 2 * float32(math.Sqrt(float64(ddx*ddx+ddy*ddy)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
