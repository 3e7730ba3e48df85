package compose

import "errors"

// Host-boundary contract violations. The per-fragment paths never return
// these; they are reported once per frame by the Validate methods.
var (
	// ErrZeroResolution is returned when a frame has a zero screen dimension.
	ErrZeroResolution = errors.New("compose: screen resolution must be at least 1x1")

	// ErrTextureIndexOutOfRange is returned when an instance references a
	// texture slot the table does not hold.
	ErrTextureIndexOutOfRange = errors.New("compose: texture index out of range")

	// ErrInvalidRectangleType is returned for a tag outside the four modes.
	ErrInvalidRectangleType = errors.New("compose: invalid rectangle type")

	// ErrMissingFontAtlas is returned when a text instance is drawn without
	// a font atlas bound.
	ErrMissingFontAtlas = errors.New("compose: text instance without font atlas")

	// ErrInvalidSampleCount is returned for a sample count other than
	// 1, 2, 4, 8 or 16.
	ErrInvalidSampleCount = errors.New("compose: invalid sample count")

	// ErrTargetMismatch is returned when a pass is given targets whose
	// size or sample count do not fit together.
	ErrTargetMismatch = errors.New("compose: target size or sample count mismatch")

	// ErrStoreClosed is returned when writing to a closed InstanceStore.
	ErrStoreClosed = errors.New("compose: instance store closed")

	// ErrFallbackToCPU indicates the registered backend cannot render a
	// frame and the caller should use the software renderer instead.
	ErrFallbackToCPU = errors.New("compose: falling back to CPU rendering")
)

// ValidSampleCount reports whether n is a supported multisample count.
func ValidSampleCount(n int) bool {
	switch n {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}
