package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// VertexInput describes one vertex attribute sourced from its own vertex
// buffer slot. Slot i of the pipeline maps to Inputs[i].
type VertexInput struct {
	Location uint32
	Format   gputypes.VertexFormat
	Stride   uint64
}

// PipelineDescriptor describes a render pipeline targeting a Target.
type PipelineDescriptor struct {
	Label          string
	VertexModule   hal.ShaderModule
	VertexEntry    string
	FragmentModule hal.ShaderModule
	FragmentEntry  string
	Inputs         []VertexInput
	Topology       gputypes.PrimitiveTopology
	// StripIndexFormat must be set for indexed strip topologies.
	StripIndexFormat *gputypes.IndexFormat
	DepthStencil     bool
}

// Pipeline is a render pipeline and the empty layout it was created with.
type Pipeline struct {
	layout hal.PipelineLayout
	raw    hal.RenderPipeline
}

func vertexLayouts(inputs []VertexInput) []gputypes.VertexBufferLayout {
	layouts := make([]gputypes.VertexBufferLayout, 0, len(inputs))
	for _, in := range inputs {
		layouts = append(layouts, gputypes.VertexBufferLayout{
			ArrayStride: in.Stride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: in.Format, Offset: 0, ShaderLocation: in.Location},
			},
		})
	}
	return layouts
}

func keepStencil() hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
}

// NewPipeline creates a render pipeline writing opaque RGBA8 color with no
// blending and no culling.
func NewPipeline(d *Device, desc PipelineDescriptor) (*Pipeline, error) {
	if d == nil || d.raw == nil {
		return nil, ErrNilDevice
	}
	device := d.raw
	layout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: desc.Label + "_layout",
	})
	if err != nil {
		return nil, fmt.Errorf("create %s layout: %w", desc.Label, err)
	}

	var depthStencil *hal.DepthStencilState
	if desc.DepthStencil {
		depthStencil = &hal.DepthStencilState{
			Format:            DepthStencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      keepStencil(),
			StencilBack:       keepStencil(),
		}
	}

	raw, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     desc.VertexModule,
			EntryPoint: desc.VertexEntry,
			Buffers:    vertexLayouts(desc.Inputs),
		},
		Fragment: &hal.FragmentState{
			Module:     desc.FragmentModule,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    TargetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: depthStencil,
		Primitive: gputypes.PrimitiveState{
			Topology:         desc.Topology,
			StripIndexFormat: desc.StripIndexFormat,
			CullMode:         gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		device.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("create %s: %w", desc.Label, err)
	}
	slogger().Debug("gpu: render pipeline created", "label", desc.Label, "inputs", len(desc.Inputs))
	return &Pipeline{layout: layout, raw: raw}, nil
}

// Destroy releases the pipeline and its layout.
func (p *Pipeline) Destroy(d *Device) {
	if d == nil || d.raw == nil {
		return
	}
	if p.raw != nil {
		d.raw.DestroyRenderPipeline(p.raw)
		p.raw = nil
	}
	if p.layout != nil {
		d.raw.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
}
