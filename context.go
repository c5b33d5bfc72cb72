package headless

import (
	"fmt"

	"github.com/gogpu/naga/glsl"

	"github.com/gogpu/headless/internal/gpu"
)

// GLVersion is a GL major.minor version.
type GLVersion struct {
	Major uint8
	Minor uint8
}

func (v GLVersion) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// GLVersion33 is the default context version.
var GLVersion33 = GLVersion{Major: 3, Minor: 3}

// ContextAttributeFlags select optional context features.
type ContextAttributeFlags uint8

const (
	// ContextAlpha keeps the alpha channel of the framebuffer. Without it
	// ReadPixels reports alpha as 255.
	ContextAlpha ContextAttributeFlags = 1 << iota
	// ContextDepth adds a depth buffer to surfaces of the context.
	ContextDepth
	// ContextStencil adds a stencil buffer to surfaces of the context.
	ContextStencil
	// ContextCompatibility requests a compatibility profile. Not supported.
	ContextCompatibility
)

// ContextAttributes are the requested properties of a context.
type ContextAttributes struct {
	Version GLVersion
	Flags   ContextAttributeFlags
}

// DefaultContextAttributes returns GL 3.3 with no flags.
func DefaultContextAttributes() ContextAttributes {
	return ContextAttributes{Version: GLVersion33}
}

// glslVersion returns the shading language version the context reports
// translated shaders in.
func (a ContextAttributes) glslVersion() glsl.Version {
	if a.Version == GLVersion33 {
		return glsl.Version330
	}
	return glsl.VersionES300
}

// ContextDescriptor is a validated set of attributes bound to a device.
type ContextDescriptor struct {
	device *Device
	attrs  ContextAttributes
}

// Attributes returns the attributes the descriptor was created with.
func (d *ContextDescriptor) Attributes() ContextAttributes { return d.attrs }

// Context is a GL execution context: the GL state machine, the objects
// created through it and at most one bound surface.
type Context struct {
	id      uint32
	device  *Device
	attrs   ContextAttributes
	objects *objectStore
	surface *Surface

	// Per-context object names (vertex arrays, framebuffers).
	nextLocal    uint32
	vertexArrays map[uint32]*vertexArray
	framebuffers map[uint32]*Surface

	state     glState
	gl        *Functions
	destroyed bool
}

// ID returns the context id, unique within its device.
func (c *Context) ID() uint32 { return c.id }

// Attributes returns the attributes the context was created with.
func (c *Context) Attributes() ContextAttributes { return c.attrs }

// Device returns the device that created the context.
func (c *Context) Device() *Device { return c.device }

func (c *Context) allocLocal() uint32 {
	c.nextLocal++
	return c.nextLocal
}

// depthStencil reports whether surfaces of the context need a depth/stencil
// attachment.
func (c *Context) depthStencil() bool {
	return c.attrs.Flags&(ContextDepth|ContextStencil) != 0
}

// release frees per-context GPU state and drops the reference on the shared
// object store.
func (c *Context) release() {
	for _, s := range c.framebuffers {
		if s != c.surface && !s.destroyed {
			c.device.forgetSurface(s)
			s.destroy()
		}
	}
	c.vertexArrays = nil
	c.framebuffers = nil
	c.objects.unref(c.device.gpu)
	c.destroyed = true
}

// objectStore holds the GL objects shared between a context and the
// contexts created with it as their share context.
type objectStore struct {
	refs     int
	next     uint32
	shaders  map[uint32]*shaderObject
	programs map[uint32]*programObject
	buffers  map[uint32]*bufferObject
}

func newObjectStore() *objectStore {
	return &objectStore{
		shaders:  make(map[uint32]*shaderObject),
		programs: make(map[uint32]*programObject),
		buffers:  make(map[uint32]*bufferObject),
	}
}

func (s *objectStore) alloc() uint32 {
	s.next++
	return s.next
}

// unref drops one reference and releases GPU resources with the last one.
func (s *objectStore) unref(d *gpu.Device) {
	s.refs--
	if s.refs > 0 {
		return
	}
	for _, p := range s.programs {
		p.release(d)
	}
	for _, b := range s.buffers {
		b.release(d)
	}
	s.shaders, s.programs, s.buffers = nil, nil, nil
}
