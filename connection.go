package headless

import (
	"fmt"

	"github.com/gogpu/headless/internal/gpu"
)

// Connection is the entry point to the GPU: a set of live backend
// instances in preference order.
type Connection struct {
	instances []*gpu.Instance
}

// NewConnection initializes every registered backend allowed by opts.
// Returns ErrNoConnection when none initializes.
func NewConnection(opts ...ConnectionOption) (*Connection, error) {
	o := defaultConnectionOptions()
	for _, opt := range opts {
		opt(&o)
	}
	instances, err := gpu.CreateInstances(o.backends)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoConnection, err)
	}
	names := make([]string, len(instances))
	for i, inst := range instances {
		names[i] = inst.Backend().String()
	}
	Logger().Debug("headless: connection opened", "backends", names)
	return &Connection{instances: instances}, nil
}

// Adapters returns every adapter of every backend, in backend preference
// order.
func (c *Connection) Adapters() []*Adapter {
	var out []*Adapter
	for _, inst := range c.instances {
		for _, a := range inst.Adapters() {
			out = append(out, &Adapter{raw: a, conn: c})
		}
	}
	return out
}

func (c *Connection) pick(match func(*Adapter) bool) *Adapter {
	if c.instances == nil {
		return nil
	}
	for _, a := range c.Adapters() {
		if match(a) {
			return a
		}
	}
	return nil
}

func (c *Connection) selected(a *Adapter, kind string) *Adapter {
	Logger().Info("headless: adapter selected",
		"kind", kind,
		"name", a.Name(),
		"backend", a.Backend().String(),
		"hardware", a.IsHardware(),
	)
	return a
}

// CreateHardwareAdapter returns the first GPU adapter.
func (c *Connection) CreateHardwareAdapter() (*Adapter, error) {
	if c.instances == nil {
		return nil, ErrConnectionClosed
	}
	a := c.pick((*Adapter).IsHardware)
	if a == nil {
		return nil, ErrNoHardwareAdapter
	}
	return c.selected(a, "hardware"), nil
}

// CreateLowPowerAdapter prefers an integrated GPU, then any GPU.
func (c *Connection) CreateLowPowerAdapter() (*Adapter, error) {
	if c.instances == nil {
		return nil, ErrConnectionClosed
	}
	if a := c.pick(func(a *Adapter) bool { return a.IsHardware() && a.raw.IsIntegrated() }); a != nil {
		return c.selected(a, "low-power"), nil
	}
	a := c.pick((*Adapter).IsHardware)
	if a == nil {
		return nil, ErrNoHardwareAdapter
	}
	return c.selected(a, "low-power"), nil
}

// CreateSoftwareAdapter returns the CPU rasterizer adapter.
func (c *Connection) CreateSoftwareAdapter() (*Adapter, error) {
	if c.instances == nil {
		return nil, ErrConnectionClosed
	}
	a := c.pick(func(a *Adapter) bool { return !a.IsHardware() })
	if a == nil {
		return nil, ErrNoAdapter
	}
	return c.selected(a, "software"), nil
}

// CreateAdapter returns the first GPU adapter, falling back to the CPU
// rasterizer.
func (c *Connection) CreateAdapter() (*Adapter, error) {
	if c.instances == nil {
		return nil, ErrConnectionClosed
	}
	if a := c.pick((*Adapter).IsHardware); a != nil {
		return c.selected(a, "any"), nil
	}
	a := c.pick(func(*Adapter) bool { return true })
	if a == nil {
		return nil, ErrNoAdapter
	}
	return c.selected(a, "any"), nil
}

// CreateDevice opens a logical device on a.
func (c *Connection) CreateDevice(a *Adapter) (*Device, error) {
	if c.instances == nil {
		return nil, ErrConnectionClosed
	}
	if a == nil || a.conn != c {
		return nil, ErrForeignObject
	}
	raw, err := gpu.OpenDevice(a.raw)
	if err != nil {
		return nil, err
	}
	return newDevice(raw, a), nil
}

// Close destroys the backend instances. Devices must be closed first.
// Safe to call more than once.
func (c *Connection) Close() {
	for _, inst := range c.instances {
		inst.Destroy()
	}
	c.instances = nil
}
