package compose

import (
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameStateSize is the encoded size of FrameState in bytes.
const FrameStateSize = 384

// FrameState is the per-frame global uniform block. It is written once per
// frame and read by every pass. The field order matches the GPU layout:
// five matrices, two colors, then 16 bytes of integer vectors and 16 bytes of
// scalars, all 16-byte aligned.
type FrameState struct {
	View              mgl32.Mat4
	Projection        mgl32.Mat4
	InverseView       mgl32.Mat4
	InverseProjection mgl32.Mat4

	// IndicatorTransform and IndicatorColor drive the selection marker.
	IndicatorTransform mgl32.Mat4
	IndicatorColor     RGBA
	AmbientColor       RGBA

	// Resolution is the framebuffer size in pixels.
	Resolution      [2]uint32
	PointerPosition [2]uint32

	AnimationTimer  float32
	DayTimer        float32
	WaterLevel      float32
	PointLightCount uint32
}

// NewFrameState builds a frame state for the given camera and resolution,
// computing the inverse matrices on the host.
func NewFrameState(view, projection mgl32.Mat4, width, height uint32) *FrameState {
	return &FrameState{
		View:               view,
		Projection:         projection,
		InverseView:        view.Inv(),
		InverseProjection:  projection.Inv(),
		IndicatorTransform: mgl32.Ident4(),
		AmbientColor:       White,
		Resolution:         [2]uint32{width, height},
	}
}

// Width returns the horizontal resolution in pixels.
func (f *FrameState) Width() uint32 { return f.Resolution[0] }

// Height returns the vertical resolution in pixels.
func (f *FrameState) Height() uint32 { return f.Resolution[1] }

// PixelSize returns the resolution as a float vector.
func (f *FrameState) PixelSize() mgl32.Vec2 {
	return mgl32.Vec2{float32(f.Resolution[0]), float32(f.Resolution[1])}
}

// Validate checks the host-side invariants of the frame.
func (f *FrameState) Validate() error {
	if f.Resolution[0] == 0 || f.Resolution[1] == 0 {
		return fmt.Errorf("%w: got %dx%d", ErrZeroResolution, f.Resolution[0], f.Resolution[1])
	}
	return nil
}

// Bytes encodes the frame state in its little-endian GPU layout.
func (f *FrameState) Bytes() []byte {
	buf, err := binary.Append(make([]byte, 0, FrameStateSize), binary.LittleEndian, f)
	if err != nil {
		// FrameState contains only fixed-size fields.
		panic(err)
	}
	return buf
}

// Frame bundles everything a renderer needs to draw one frame.
type Frame struct {
	State     *FrameState
	Instances *FrameInstances
	Textures  *TextureTable

	// Clear is the premultiplied color the color target starts from.
	Clear RGBA

	// SampleCount is the multisample count of the rectangle pass. Zero
	// means 1.
	SampleCount int

	// Blur runs the separable blur over the resolved image.
	Blur bool
}

// Samples returns the effective sample count.
func (f *Frame) Samples() int {
	if f.SampleCount == 0 {
		return 1
	}
	return f.SampleCount
}

// Validate performs the host-boundary checks for the whole frame.
func (f *Frame) Validate() error {
	if f.State == nil {
		return fmt.Errorf("%w: nil frame state", ErrZeroResolution)
	}
	if err := f.State.Validate(); err != nil {
		return err
	}
	if !ValidSampleCount(f.Samples()) {
		return fmt.Errorf("%w: %d", ErrInvalidSampleCount, f.SampleCount)
	}
	if f.Instances == nil {
		return nil
	}
	table := f.Textures
	if table == nil {
		table = NewTextureTable()
	}
	return ValidateInstances(f.Instances.Records(), table)
}
