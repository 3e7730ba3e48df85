//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/compose"
)

// openNoopDevice creates a noop device and queue for testing.
func openNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// halProvider exposes a device the way a host application does.
type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func newNoopCompositor(t *testing.T) *Compositor {
	t.Helper()
	device, queue := openNoopDevice(t)
	c := NewCompositor()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if err := c.SetDeviceProvider(halProvider{device: device, queue: queue}); err != nil {
		t.Fatalf("SetDeviceProvider: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func testFrame(w, h uint32, samples int, blur bool) *compose.Frame {
	table := compose.NewTextureTable()
	sprite := table.Add(compose.SolidTexture(compose.RGBA{R: 1, G: 1, B: 1, A: 1}))
	records := []compose.InstanceRecord{
		compose.SolidRectangle(mgl32.Vec2{0, 0}, mgl32.Vec2{0.5, 0.5}, compose.RGBA{R: 1, A: 1}),
		compose.SpriteRectangle(mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{0.5, 0.5}, compose.RGBA{R: 1, G: 1, B: 1, A: 1}, sprite, false),
	}
	return &compose.Frame{
		State:       compose.NewFrameState(mgl32.Ident4(), mgl32.Ident4(), w, h),
		Instances:   compose.NewFrameInstances(records),
		Textures:    table,
		SampleCount: samples,
		Blur:        blur,
	}
}

func TestCompositorName(t *testing.T) {
	if got := NewCompositor().Name(); got != "wgpu" {
		t.Errorf("Name() = %q, want wgpu", got)
	}
}

func TestCompositorSetDeviceProviderRejects(t *testing.T) {
	c := NewCompositor()
	if err := c.SetDeviceProvider(struct{}{}); err == nil {
		t.Error("expected error for provider without HAL types")
	}
	if err := c.SetDeviceProvider(halProvider{}); err == nil {
		t.Error("expected error for provider with nil device")
	}
}

func TestCompositorRenderFrame(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		blur    bool
	}{
		{"single_sample", 1, false},
		{"msaa4", 4, false},
		{"msaa4_blur", 4, true},
		{"msaa8", 8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newNoopCompositor(t)
			dst := image.NewRGBA(image.Rect(0, 0, 64, 48))
			if err := c.RenderFrame(context.Background(), testFrame(64, 48, tt.samples, tt.blur), dst); err != nil {
				t.Fatalf("RenderFrame: %v", err)
			}
			if c.rectangles[tt.samples] == nil || c.resolves[tt.samples] == nil {
				t.Errorf("pipelines for %d samples not cached", tt.samples)
			}
			if c.targets.samples != uint32(tt.samples) || c.targets.width != 64 || c.targets.height != 48 {
				t.Errorf("targets = %dx%d x%d", c.targets.width, c.targets.height, c.targets.samples)
			}
		})
	}
}

func TestCompositorRenderFrameReusesResources(t *testing.T) {
	c := newNoopCompositor(t)
	dst := image.NewRGBA(image.Rect(0, 0, 32, 32))
	frame := testFrame(32, 32, 4, false)

	for i := range 3 {
		if err := c.RenderFrame(context.Background(), frame, dst); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	array := c.table.array.tex
	if err := c.RenderFrame(context.Background(), frame, dst); err != nil {
		t.Fatal(err)
	}
	if c.table.array.tex != array {
		t.Error("texture array re-uploaded for an unchanged table")
	}
	if len(c.rectangles) != 1 || len(c.resolves) != 1 {
		t.Errorf("pipeline caches = %d/%d, want 1/1", len(c.rectangles), len(c.resolves))
	}
}

func TestCompositorRenderFrameErrors(t *testing.T) {
	c := newNoopCompositor(t)

	t.Run("nil_frame", func(t *testing.T) {
		if err := c.RenderFrame(context.Background(), nil, image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("destination_mismatch", func(t *testing.T) {
		err := c.RenderFrame(context.Background(), testFrame(32, 32, 1, false), image.NewRGBA(image.Rect(0, 0, 16, 32)))
		if !errors.Is(err, compose.ErrTargetMismatch) {
			t.Errorf("error = %v, want ErrTargetMismatch", err)
		}
	})
	t.Run("invalid_sample_count", func(t *testing.T) {
		err := c.RenderFrame(context.Background(), testFrame(8, 8, 3, false), image.NewRGBA(image.Rect(0, 0, 8, 8)))
		if !errors.Is(err, compose.ErrInvalidSampleCount) {
			t.Errorf("error = %v, want ErrInvalidSampleCount", err)
		}
	})
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := c.RenderFrame(ctx, testFrame(8, 8, 1, false), image.NewRGBA(image.Rect(0, 0, 8, 8)))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestCompositorClosed(t *testing.T) {
	c := newNoopCompositor(t)
	c.Close()
	err := c.RenderFrame(context.Background(), testFrame(8, 8, 1, false), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if !errors.Is(err, ErrCompositorClosed) {
		t.Errorf("error = %v, want ErrCompositorClosed", err)
	}
}

func TestCopyRows(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	// Two rows of 8 bytes padded to 12.
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0,
		9, 10, 11, 12, 13, 14, 15, 16, 0, 0, 0, 0,
	}
	copyRows(dst, src, 12, 8, 2)
	for i, want := range []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16} {
		if dst.Pix[i] != want {
			t.Fatalf("Pix[%d] = %d, want %d", i, dst.Pix[i], want)
		}
	}
}
