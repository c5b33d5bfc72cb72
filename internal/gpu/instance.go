package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultBackendOrder is the preference order used when no explicit backend
// list is given. The CPU backend (BackendEmpty) comes last.
var DefaultBackendOrder = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
	gputypes.BackendEmpty,
}

// Instance is a live HAL instance for a single backend.
type Instance struct {
	backend gputypes.Backend
	raw     hal.Instance
}

// CreateInstances creates one instance per registered backend in order.
// Backends that are not compiled in for this platform, or that fail to
// initialize (missing driver, no display), are skipped with a debug log.
// Returns ErrNoInstance when nothing initialized.
func CreateInstances(order []gputypes.Backend) ([]*Instance, error) {
	if len(order) == 0 {
		order = DefaultBackendOrder
	}
	var out []*Instance
	for _, b := range order {
		backend, ok := hal.GetBackend(b)
		if !ok {
			slogger().Debug("gpu: backend not registered", "backend", b.String())
			continue
		}
		raw, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			slogger().Debug("gpu: backend unavailable", "backend", b.String(), "err", err)
			continue
		}
		out = append(out, &Instance{backend: b, raw: raw})
	}
	if len(out) == 0 {
		return nil, ErrNoInstance
	}
	return out, nil
}

// Backend returns the backend this instance was created for.
func (i *Instance) Backend() gputypes.Backend { return i.backend }

// Adapters enumerates the adapters exposed by this instance without a
// surface hint.
func (i *Instance) Adapters() []Adapter {
	if i.raw == nil {
		return nil
	}
	exposed := i.raw.EnumerateAdapters(nil)
	out := make([]Adapter, 0, len(exposed))
	for k := range exposed {
		out = append(out, Adapter{backend: i.backend, exposed: exposed[k]})
	}
	return out
}

// Destroy releases the instance. Safe to call more than once.
func (i *Instance) Destroy() {
	if i.raw != nil {
		i.raw.Destroy()
		i.raw = nil
	}
}

// Adapter is an adapter exposed by an Instance.
type Adapter struct {
	backend gputypes.Backend
	exposed hal.ExposedAdapter
}

// Info returns the adapter metadata reported by the backend.
func (a Adapter) Info() gputypes.AdapterInfo { return a.exposed.Info }

// Backend returns the backend of the instance that exposed this adapter.
func (a Adapter) Backend() gputypes.Backend { return a.backend }

// Limits returns the limits the adapter supports.
func (a Adapter) Limits() gputypes.Limits { return a.exposed.Capabilities.Limits }

// IsHardware reports whether the adapter renders on a GPU. The CPU
// rasterizer backend and CPU device types are not hardware; adapters that
// report an unknown device type on a GPU backend (GL without a surface) are.
func (a Adapter) IsHardware() bool {
	if a.backend == gputypes.BackendEmpty {
		return false
	}
	return a.exposed.Info.DeviceType != gputypes.DeviceTypeCPU
}

// IsIntegrated reports whether the adapter is an integrated GPU.
func (a Adapter) IsIntegrated() bool {
	return a.exposed.Info.DeviceType == gputypes.DeviceTypeIntegratedGPU
}
