package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is an opened logical device and its queue.
//
// Command buffers handed to Submit stay in flight until Wait returns, at
// which point they are freed together with any resources parked with Defer.
type Device struct {
	mu       sync.Mutex
	raw      hal.Device
	queue    hal.Queue
	adapter  Adapter
	limits   gputypes.Limits
	inflight []hal.CommandBuffer
	deferred []func(hal.Device)
}

// OpenDevice opens a logical device on the adapter with default limits and
// no optional features.
func OpenDevice(a Adapter) (*Device, error) {
	limits := gputypes.DefaultLimits()
	open, err := a.exposed.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	slogger().Info("gpu: device opened",
		"adapter", a.exposed.Info.Name,
		"backend", a.backend.String(),
		"type", a.exposed.Info.DeviceType.String(),
	)
	return &Device{raw: open.Device, queue: open.Queue, adapter: a, limits: limits}, nil
}

// HalDevice returns the underlying HAL device, or nil after Destroy.
func (d *Device) HalDevice() hal.Device { return d.raw }

// HalQueue returns the underlying HAL queue, or nil after Destroy.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// Adapter returns the adapter the device was opened on.
func (d *Device) Adapter() Adapter { return d.adapter }

// Limits returns the limits the device was opened with.
func (d *Device) Limits() gputypes.Limits { return d.limits }

// Submit submits command buffers to the queue. The buffers are released on
// the next Wait.
func (d *Device) Submit(cmds ...hal.CommandBuffer) error {
	if d.raw == nil {
		return ErrNilDevice
	}
	if len(cmds) == 0 {
		return nil
	}
	d.mu.Lock()
	d.inflight = append(d.inflight, cmds...)
	d.mu.Unlock()
	if _, err := d.queue.Submit(cmds); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

// Defer parks a release function until the GPU has finished all submitted
// work (the next Wait or Destroy).
func (d *Device) Defer(release func(hal.Device)) {
	d.mu.Lock()
	d.deferred = append(d.deferred, release)
	d.mu.Unlock()
}

// Wait blocks until the queue is idle and frees in-flight command buffers
// and deferred resources.
func (d *Device) Wait() error {
	if d.raw == nil {
		return ErrNilDevice
	}
	if err := d.raw.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	d.release()
	return nil
}

func (d *Device) release() {
	d.mu.Lock()
	cmds, deferred := d.inflight, d.deferred
	d.inflight, d.deferred = nil, nil
	d.mu.Unlock()
	for _, c := range cmds {
		d.raw.FreeCommandBuffer(c)
	}
	for _, fn := range deferred {
		fn(d.raw)
	}
}

// Destroy waits for outstanding work, then releases the device. Safe to
// call more than once.
func (d *Device) Destroy() {
	if d.raw == nil {
		return
	}
	if err := d.raw.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle before destroy failed", "err", err)
	}
	d.release()
	d.raw.Destroy()
	d.raw = nil
	d.queue = nil
}
