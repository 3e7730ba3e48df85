//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/render"
)

func TestBackendRegistered(t *testing.T) {
	b := compose.ActiveBackend()
	if b == nil {
		t.Fatal("no backend registered")
	}
	if b.Name() != "wgpu" {
		t.Errorf("backend = %q, want wgpu", b.Name())
	}
}

func TestSetDeviceProviderWithoutHal(t *testing.T) {
	if err := SetDeviceProvider(render.NullDeviceHandle{}); err == nil {
		t.Error("expected error for a provider without HAL access")
	}
}
