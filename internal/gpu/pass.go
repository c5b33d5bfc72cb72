package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ClearOp clears any combination of the target's color, depth and stencil.
type ClearOp struct {
	ClearColor   bool
	Color        gputypes.Color
	ClearDepth   bool
	Depth        float32
	ClearStencil bool
	Stencil      uint32
}

// VertexBinding is a vertex buffer bound to a pipeline slot.
type VertexBinding struct {
	Buffer hal.Buffer
	Offset uint64
}

// Viewport is a viewport rectangle with a top-left origin, in pixels.
type Viewport struct {
	X, Y, Width, Height float32
}

// DrawOp is one indexed draw.
type DrawOp struct {
	Pipeline    *Pipeline
	Vertices    []VertexBinding
	Indices     hal.Buffer
	IndexFormat gputypes.IndexFormat
	IndexOffset uint64
	IndexCount  uint32
	Viewport    Viewport
}

type frameOp struct {
	clear *ClearOp
	draw  *DrawOp
}

// Frame accumulates clears and draws against a Target until it is encoded.
// A clear starts a new render pass with a clear load op; draws issued before
// any clear load the existing contents.
type Frame struct {
	target *Target
	ops    []frameOp
}

// NewFrame returns an empty frame for t.
func NewFrame(t *Target) *Frame { return &Frame{target: t} }

// Clear records a clear.
func (f *Frame) Clear(op ClearOp) { f.ops = append(f.ops, frameOp{clear: &op}) }

// Draw records an indexed draw.
func (f *Frame) Draw(op DrawOp) { f.ops = append(f.ops, frameOp{draw: &op}) }

// Pending returns the number of recorded operations not yet encoded.
func (f *Frame) Pending() int { return len(f.ops) }

// Encode records all pending operations into a command buffer and resets
// the frame. It returns a nil command buffer when nothing is pending.
func (f *Frame) Encode(d *Device, label string) (hal.CommandBuffer, error) {
	if len(f.ops) == 0 {
		return nil, nil
	}
	if d == nil || d.raw == nil {
		return nil, ErrNilDevice
	}
	ops := f.ops
	f.ops = nil

	encoder, err := d.raw.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	var rp hal.RenderPassEncoder
	passes, draws := 0, 0
	for _, op := range ops {
		if op.clear != nil {
			if rp != nil {
				rp.End()
			}
			rp = encoder.BeginRenderPass(f.passDescriptor(label, op.clear))
			passes++
			continue
		}
		if rp == nil {
			rp = encoder.BeginRenderPass(f.passDescriptor(label, nil))
			passes++
		}
		f.recordDraw(rp, op.draw)
		draws++
	}
	if rp != nil {
		rp.End()
	}

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	slogger().Debug("gpu: frame encoded", "label", label, "passes", passes, "draws", draws)
	return cmd, nil
}

func (f *Frame) passDescriptor(label string, clear *ClearOp) *hal.RenderPassDescriptor {
	color := hal.RenderPassColorAttachment{
		View:    f.target.colorView,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if clear != nil && clear.ClearColor {
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = clear.Color
	}
	desc := &hal.RenderPassDescriptor{
		Label:            label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	}
	if f.target.depthView == nil {
		return desc
	}
	ds := &hal.RenderPassDepthStencilAttachment{
		View:           f.target.depthView,
		DepthLoadOp:    gputypes.LoadOpLoad,
		DepthStoreOp:   gputypes.StoreOpStore,
		StencilLoadOp:  gputypes.LoadOpLoad,
		StencilStoreOp: gputypes.StoreOpStore,
	}
	if clear != nil && clear.ClearDepth {
		ds.DepthLoadOp = gputypes.LoadOpClear
		ds.DepthClearValue = clear.Depth
	}
	if clear != nil && clear.ClearStencil {
		ds.StencilLoadOp = gputypes.LoadOpClear
		ds.StencilClearValue = clear.Stencil
	}
	desc.DepthStencilAttachment = ds
	return desc
}

func (f *Frame) recordDraw(rp hal.RenderPassEncoder, op *DrawOp) {
	vp := op.Viewport
	rp.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, 0, 1)
	rp.SetPipeline(op.Pipeline.raw)
	for slot, vb := range op.Vertices {
		rp.SetVertexBuffer(uint32(slot), vb.Buffer, vb.Offset)
	}
	rp.SetIndexBuffer(op.Indices, op.IndexFormat, op.IndexOffset)
	rp.DrawIndexed(op.IndexCount, 1, 0, 0, 0)
}
