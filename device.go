package headless

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/headless/internal/gpu"
)

// Device is a logical GPU device. It creates and owns contexts and
// surfaces and tracks which context is current.
//
// Device implements gpucontext.DeviceProvider so other gogpu libraries can
// render into the same device.
type Device struct {
	mu       sync.Mutex
	gpu      *gpu.Device
	adapter  *Adapter
	nextID   uint32
	contexts map[uint32]*Context
	surfaces map[uint32]*Surface
	current  *Context
	closed   bool
}

var _ gpucontext.DeviceProvider = (*Device)(nil)

func newDevice(raw *gpu.Device, a *Adapter) *Device {
	return &Device{
		gpu:      raw,
		adapter:  a,
		contexts: make(map[uint32]*Context),
		surfaces: make(map[uint32]*Surface),
	}
}

func (d *Device) allocID() uint32 {
	d.nextID++
	return d.nextID
}

// Device returns the underlying hal.Device.
func (d *Device) Device() gpucontext.Device { return d.gpu.HalDevice() }

// Queue returns the underlying hal.Queue.
func (d *Device) Queue() gpucontext.Queue { return d.gpu.HalQueue() }

// SurfaceFormat returns the color format of every surface.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return gpu.TargetFormat }

// Adapter returns the *Adapter the device was opened on.
func (d *Device) Adapter() gpucontext.Adapter { return d.adapter }

// AdapterInfo returns the adapter summary.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo { return d.adapter.AdapterInfo() }

// HalDevice returns the underlying HAL device.
func (d *Device) HalDevice() hal.Device { return d.gpu.HalDevice() }

// HalQueue returns the underlying HAL queue.
func (d *Device) HalQueue() hal.Queue { return d.gpu.HalQueue() }

// CreateContextDescriptor validates attrs for this device. GL 3.0 through
// 3.3 core are supported.
func (d *Device) CreateContextDescriptor(attrs ContextAttributes) (*ContextDescriptor, error) {
	if d.closed {
		return nil, ErrDeviceClosed
	}
	if attrs.Version.Major != 3 || attrs.Version.Minor > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, attrs.Version)
	}
	if attrs.Flags&ContextCompatibility != 0 {
		return nil, fmt.Errorf("%w: compatibility profile", ErrUnsupportedFlags)
	}
	return &ContextDescriptor{device: d, attrs: attrs}, nil
}

// CreateContext creates a context from desc. When shared is non-nil the new
// context shares shaders, programs and buffers with it; vertex arrays and
// framebuffers are never shared.
func (d *Device) CreateContext(desc *ContextDescriptor, shared *Context) (*Context, error) {
	if d.closed {
		return nil, ErrDeviceClosed
	}
	if desc == nil || desc.device != d {
		return nil, ErrForeignObject
	}
	objects := newObjectStore()
	if shared != nil {
		if shared.device != d {
			return nil, ErrForeignObject
		}
		if shared.destroyed {
			return nil, ErrContextDestroyed
		}
		objects = shared.objects
	}
	objects.refs++

	d.mu.Lock()
	ctx := &Context{
		id:           d.allocID(),
		device:       d,
		attrs:        desc.attrs,
		objects:      objects,
		vertexArrays: make(map[uint32]*vertexArray),
		framebuffers: make(map[uint32]*Surface),
		state:        newGLState(),
	}
	d.contexts[ctx.id] = ctx
	d.mu.Unlock()

	Logger().Info("headless: context created", "id", ctx.id, "version", desc.attrs.Version.String(), "shared", shared != nil)
	return ctx, nil
}

func (d *Device) checkContext(ctx *Context) error {
	if ctx == nil || ctx.device != d {
		return ErrForeignObject
	}
	if ctx.destroyed {
		return ErrContextDestroyed
	}
	return nil
}

// DestroyContext waits for the GPU, then destroys ctx together with its
// bound surface and, if no other context shares them, its objects.
func (d *Device) DestroyContext(ctx *Context) error {
	if err := d.checkContext(ctx); err != nil {
		return err
	}
	if err := d.gpu.Wait(); err != nil {
		Logger().Warn("headless: wait before context destroy failed", "err", err)
	}
	if d.current == ctx {
		d.MakeNoContextCurrent()
	}
	if s := ctx.surface; s != nil {
		ctx.surface = nil
		d.forgetSurface(s)
		s.destroy()
	}
	ctx.release()

	d.mu.Lock()
	delete(d.contexts, ctx.id)
	d.mu.Unlock()
	Logger().Info("headless: context destroyed", "id", ctx.id)
	return nil
}

// CreateSurface creates an offscreen surface usable with ctx.
func (d *Device) CreateSurface(ctx *Context, access SurfaceAccess, typ SurfaceType) (*Surface, error) {
	if err := d.checkContext(ctx); err != nil {
		return nil, err
	}
	if access > SurfaceGPUCPUWriteCombined {
		return nil, fmt.Errorf("headless: unknown surface access %s", access)
	}
	size := typ.Size
	limit := int(d.gpu.Limits().MaxTextureDimension2D)
	if size.X <= 0 || size.Y <= 0 || size.X > limit || size.Y > limit {
		return nil, fmt.Errorf("%w: %dx%d (limit %d)", ErrInvalidSize, size.X, size.Y, limit)
	}

	d.mu.Lock()
	id := d.allocID()
	d.mu.Unlock()

	target, err := gpu.NewTarget(d.gpu, gpu.TargetDescriptor{
		Label:        fmt.Sprintf("surface%d", id),
		Width:        uint32(size.X),
		Height:       uint32(size.Y),
		DepthStencil: ctx.depthStencil(),
		HostWritable: access != SurfaceGPUOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	s := &Surface{
		id:     id,
		device: d,
		owner:  ctx,
		access: access,
		size:   size,
		fbo:    ctx.allocLocal(),
		target: target,
		frame:  gpu.NewFrame(target),
	}
	ctx.framebuffers[s.fbo] = s

	d.mu.Lock()
	d.surfaces[s.id] = s
	d.mu.Unlock()
	Logger().Info("headless: surface created", "id", s.id, "size", size.String(), "access", access.String())
	return s, nil
}

func (d *Device) forgetSurface(s *Surface) {
	d.mu.Lock()
	delete(d.surfaces, s.id)
	d.mu.Unlock()
}

// DestroySurface destroys a surface that is not bound to any context.
func (d *Device) DestroySurface(ctx *Context, s *Surface) error {
	if err := d.checkContext(ctx); err != nil {
		return err
	}
	if s == nil || s.device != d || s.owner != ctx {
		return ErrForeignObject
	}
	if s.destroyed {
		return ErrSurfaceDestroyed
	}
	if ctx.surface == s {
		return fmt.Errorf("%w: unbind before destroying", ErrSurfaceAlreadyBound)
	}
	if err := d.gpu.Wait(); err != nil {
		Logger().Warn("headless: wait before surface destroy failed", "err", err)
	}
	d.forgetSurface(s)
	s.destroy()
	return nil
}

// BindSurfaceToContext makes s the surface of ctx. The context takes
// ownership of the surface until it is unbound or the context is destroyed.
func (d *Device) BindSurfaceToContext(ctx *Context, s *Surface) error {
	if err := d.checkContext(ctx); err != nil {
		return err
	}
	if s == nil || s.device != d || s.owner != ctx {
		return ErrForeignObject
	}
	if s.destroyed {
		return ErrSurfaceDestroyed
	}
	if ctx.surface != nil {
		return ErrSurfaceAlreadyBound
	}
	ctx.surface = s
	if !ctx.state.viewportSet {
		ctx.state.viewport = [4]int32{0, 0, int32(s.size.X), int32(s.size.Y)}
	}
	Logger().Debug("headless: surface bound", "surface", s.id, "context", ctx.id)
	return nil
}

// UnbindSurfaceFromContext detaches and returns the surface of ctx, or nil
// when none is bound. Pending work on the surface is flushed first.
func (d *Device) UnbindSurfaceFromContext(ctx *Context) (*Surface, error) {
	if err := d.checkContext(ctx); err != nil {
		return nil, err
	}
	s := ctx.surface
	if s == nil {
		return nil, nil
	}
	if err := flushSurface(d.gpu, s); err != nil {
		return nil, err
	}
	ctx.surface = nil
	return s, nil
}

// ContextSurfaceInfo describes the surface bound to ctx.
func (d *Device) ContextSurfaceInfo(ctx *Context) (SurfaceInfo, error) {
	if err := d.checkContext(ctx); err != nil {
		return SurfaceInfo{}, err
	}
	if ctx.surface == nil {
		return SurfaceInfo{}, ErrNoSurfaceBound
	}
	return ctx.surface.info(), nil
}

// MakeContextCurrent makes ctx the current context of the device and locks
// the calling goroutine to its OS thread until MakeNoContextCurrent.
func (d *Device) MakeContextCurrent(ctx *Context) error {
	if err := d.checkContext(ctx); err != nil {
		return err
	}
	if d.current == ctx {
		return nil
	}
	if d.current == nil {
		runtime.LockOSThread()
	}
	d.current = ctx
	return nil
}

// MakeNoContextCurrent clears the current context and unlocks the OS thread.
func (d *Device) MakeNoContextCurrent() {
	if d.current == nil {
		return
	}
	d.current = nil
	runtime.UnlockOSThread()
}

// CurrentContext returns the current context, or nil.
func (d *Device) CurrentContext() *Context { return d.current }

// LoadFunctions resolves the GL function table for ctx, which must be
// current. Every requested symbol must be a known GL entry point; with no
// symbols the full table is returned.
func (d *Device) LoadFunctions(ctx *Context, symbols ...string) (*Functions, error) {
	if err := d.checkContext(ctx); err != nil {
		return nil, err
	}
	if d.current != ctx {
		return nil, ErrNotCurrent
	}
	for _, sym := range symbols {
		if _, ok := glSymbols[sym]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSymbol, sym)
		}
	}
	if ctx.gl == nil {
		ctx.gl = &Functions{ctx: ctx}
	}
	return ctx.gl, nil
}

// Close destroys every context and surface still alive, then the device.
// Safe to call more than once.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.mu.Lock()
	contexts := make([]*Context, 0, len(d.contexts))
	for _, c := range d.contexts {
		contexts = append(contexts, c)
	}
	d.mu.Unlock()
	for _, c := range contexts {
		if err := d.DestroyContext(c); err != nil {
			Logger().Warn("headless: destroy context failed", "id", c.id, "err", err)
		}
	}
	d.mu.Lock()
	for _, s := range d.surfaces {
		s.destroy()
	}
	d.surfaces = nil
	d.mu.Unlock()
	d.MakeNoContextCurrent()
	d.gpu.Destroy()
	d.closed = true
}
