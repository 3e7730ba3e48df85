package compose

import (
	"context"
	"errors"
	"image"
	"sync"
)

// Backend is an optional hardware executor for frames.
//
// Implementations live in GPU packages and register themselves on import:
//
//	import _ "github.com/gogpu/compose/gpu"
//
// A backend that cannot draw a frame returns ErrFallbackToCPU and the caller
// renders it with the software renderer instead.
type Backend interface {
	// Name returns the backend name (e.g. "vulkan").
	Name() string

	// Init acquires device resources. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// RenderFrame draws frame and writes the final premultiplied image to
	// dst, which must match the frame resolution.
	RenderFrame(ctx context.Context, frame *Frame, dst *image.RGBA) error
}

// DeviceProviderAware is implemented by backends that can reuse a device
// owned by the host application instead of opening their own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	backendMu sync.RWMutex
	backend   Backend
)

// RegisterBackend initializes b and makes it the active backend, closing the
// previous one. If Init fails b is not registered.
func RegisterBackend(b Backend) error {
	if b == nil {
		return errors.New("compose: backend must not be nil")
	}
	if err := b.Init(); err != nil {
		return err
	}
	propagateLogger(b, Logger())

	backendMu.Lock()
	old := backend
	backend = b
	backendMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// ActiveBackend returns the registered backend, or nil.
func ActiveBackend() Backend {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	return b
}

// UnregisterBackend closes and removes the active backend.
func UnregisterBackend() {
	backendMu.Lock()
	old := backend
	backend = nil
	backendMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// SetBackendDeviceProvider hands a host device to the active backend. It is
// a no-op when no backend is registered or it cannot share devices.
func SetBackendDeviceProvider(provider any) error {
	b := ActiveBackend()
	if b == nil {
		return nil
	}
	if dpa, ok := b.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
