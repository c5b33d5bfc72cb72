package headless

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/headless/internal/gpu"
)

// Adapter is a physical (or CPU) rendering adapter exposed by a Connection.
type Adapter struct {
	raw  gpu.Adapter
	conn *Connection
}

// Info returns the metadata the backend reports for the adapter.
func (a *Adapter) Info() gputypes.AdapterInfo { return a.raw.Info() }

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.raw.Info().Name }

// Backend returns the HAL backend the adapter belongs to.
func (a *Adapter) Backend() gputypes.Backend { return a.raw.Backend() }

// IsHardware reports whether the adapter renders on a GPU rather than the
// CPU rasterizer.
func (a *Adapter) IsHardware() bool { return a.raw.IsHardware() }

// AdapterInfo returns the adapter summary in gpucontext form.
func (a *Adapter) AdapterInfo() gpucontext.AdapterInfo {
	info := a.raw.Info()
	return gpucontext.AdapterInfo{Name: info.Name, Type: adapterType(a.raw)}
}

func adapterType(a gpu.Adapter) gpucontext.AdapterType {
	if !a.IsHardware() {
		return gpucontext.AdapterTypeSoftware
	}
	switch a.Info().DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	default:
		return gpucontext.AdapterTypeUnknown
	}
}
