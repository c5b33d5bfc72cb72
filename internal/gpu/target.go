package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TargetFormat is the color format of every offscreen target.
const TargetFormat = gputypes.TextureFormatRGBA8Unorm

// DepthStencilFormat is the format of the optional depth/stencil attachment.
const DepthStencilFormat = gputypes.TextureFormatDepth24PlusStencil8

// TargetDescriptor describes an offscreen render target.
type TargetDescriptor struct {
	Label        string
	Width        uint32
	Height       uint32
	DepthStencil bool
	// HostWritable adds CopyDst to the color texture so the host can upload
	// into it.
	HostWritable bool
}

// Target is a single-sample RGBA8 color texture, with an optional
// depth/stencil texture, that can be rendered to and copied back to the
// host.
type Target struct {
	color     hal.Texture
	colorView hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
	width     uint32
	height    uint32
}

// NewTarget creates the textures for an offscreen target.
func NewTarget(d *Device, desc TargetDescriptor) (*Target, error) {
	if d == nil || d.raw == nil {
		return nil, ErrNilDevice
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTarget, desc.Width, desc.Height)
	}
	device := d.raw
	size := hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}

	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	if desc.HostWritable {
		usage |= gputypes.TextureUsageCopyDst
	}

	t := &Target{width: desc.Width, height: desc.Height}
	color, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label + "_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TargetFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create color texture: %w", err)
	}
	t.color = color

	colorView, err := device.CreateTextureView(color, &hal.TextureViewDescriptor{
		Label: desc.Label + "_color_view",
	})
	if err != nil {
		t.Destroy(d)
		return nil, fmt.Errorf("create color view: %w", err)
	}
	t.colorView = colorView

	if !desc.DepthStencil {
		return t, nil
	}

	depth, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label + "_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        DepthStencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Destroy(d)
		return nil, fmt.Errorf("create depth/stencil texture: %w", err)
	}
	t.depth = depth

	depthView, err := device.CreateTextureView(depth, &hal.TextureViewDescriptor{
		Label: desc.Label + "_depth_stencil_view",
	})
	if err != nil {
		t.Destroy(d)
		return nil, fmt.Errorf("create depth/stencil view: %w", err)
	}
	t.depthView = depthView
	return t, nil
}

// Size returns the target dimensions.
func (t *Target) Size() (uint32, uint32) { return t.width, t.height }

// HasDepthStencil reports whether the target has a depth/stencil attachment.
func (t *Target) HasDepthStencil() bool { return t.depthView != nil }

// Destroy releases the target textures. Views are destroyed before the
// textures they reference.
func (t *Target) Destroy(d *Device) {
	if d == nil || d.raw == nil {
		return
	}
	device := d.raw
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depth != nil {
		device.DestroyTexture(t.depth)
		t.depth = nil
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.color != nil {
		device.DestroyTexture(t.color)
		t.color = nil
	}
}
