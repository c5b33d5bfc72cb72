package headless

import (
	"fmt"
	"image"

	"github.com/gogpu/headless/internal/gpu"
)

// SurfaceAccess describes how the host may access a surface.
type SurfaceAccess uint8

const (
	// SurfaceGPUOnly surfaces are only touched by the GPU; pixels reach the
	// host through ReadPixels.
	SurfaceGPUOnly SurfaceAccess = iota
	// SurfaceGPUCPU surfaces may also be written by the host.
	SurfaceGPUCPU
	// SurfaceGPUCPUWriteCombined is SurfaceGPUCPU with write-combined memory.
	SurfaceGPUCPUWriteCombined
)

func (a SurfaceAccess) String() string {
	switch a {
	case SurfaceGPUOnly:
		return "GPUOnly"
	case SurfaceGPUCPU:
		return "GPUCPU"
	case SurfaceGPUCPUWriteCombined:
		return "GPUCPUWriteCombined"
	default:
		return fmt.Sprintf("SurfaceAccess(%d)", uint8(a))
	}
}

// SurfaceType is a generic offscreen surface of a fixed size.
type SurfaceType struct {
	Size image.Point
}

// SurfaceInfo describes a surface as seen from its context.
type SurfaceInfo struct {
	Size              image.Point
	ID                uint32
	ContextID         uint32
	FramebufferObject uint32
}

// Surface is an offscreen drawable. Its framebuffer object name is valid in
// the context that created it.
type Surface struct {
	id        uint32
	device    *Device
	owner     *Context
	access    SurfaceAccess
	size      image.Point
	fbo       uint32
	target    *gpu.Target
	frame     *gpu.Frame
	destroyed bool
}

// ID returns the surface id, unique within its device.
func (s *Surface) ID() uint32 { return s.id }

// Size returns the surface size in pixels.
func (s *Surface) Size() image.Point { return s.size }

// Access returns the host access mode of the surface.
func (s *Surface) Access() SurfaceAccess { return s.access }

func (s *Surface) info() SurfaceInfo {
	return SurfaceInfo{Size: s.size, ID: s.id, ContextID: s.owner.id, FramebufferObject: s.fbo}
}

func (s *Surface) destroy() {
	if s.destroyed {
		return
	}
	s.target.Destroy(s.device.gpu)
	if s.owner.framebuffers != nil {
		delete(s.owner.framebuffers, s.fbo)
	}
	s.destroyed = true
	Logger().Debug("headless: surface destroyed", "id", s.id)
}
