package headless

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/headless/internal/gpu"
)

// maxVertexAttribs is the number of generic vertex attributes per vertex
// array (GL_MAX_VERTEX_ATTRIBS minimum for GL 3.x).
const maxVertexAttribs = 16

// glState is the per-context GL state machine.
type glState struct {
	clearColor  [4]float32
	clearDepth  float32
	clearStenc  int32
	viewport    [4]int32
	viewportSet bool
	drawFB      uint32
	readFB      uint32
	arrayBuffer uint32
	vertexArray uint32
	program     uint32
	errors      []Enum
	stats       FrameStats
}

func newGLState() glState {
	return glState{clearDepth: 1}
}

// setError records code unless it is already pending. GL keeps one flag per
// error kind.
func (s *glState) setError(code Enum) {
	for _, e := range s.errors {
		if e == code {
			return
		}
	}
	s.errors = append(s.errors, code)
}

type vertexAttrib struct {
	enabled bool
	buffer  uint32
	size    int32
	stride  int32
	offset  uintptr
}

type vertexArray struct {
	attribs       [maxVertexAttribs]vertexAttrib
	elementBuffer uint32
}

type shaderObject struct {
	kind     Enum
	source   string
	compiled bool
	log      string
	shader   *gpu.Shader
	// deleted marks a DeleteShader issued while the shader was still
	// attached to a program.
	deleted bool
}

func (s *shaderObject) stage() gpu.Stage {
	if s.kind == FRAGMENT_SHADER {
		return gpu.StageFragment
	}
	return gpu.StageVertex
}

type programObject struct {
	attached  []uint32
	linked    bool
	log       string
	vertex    *gpu.Shader
	fragment  *gpu.Shader
	vsModule  hal.ShaderModule
	fsModule  hal.ShaderModule
	pipelines map[string]*gpu.Pipeline
}

// pipeline returns the cached render pipeline for the given vertex inputs
// and topology, creating it on first use.
func (p *programObject) pipeline(d *gpu.Device, inputs []gpu.VertexInput, topology gputypes.PrimitiveTopology, strip *gputypes.IndexFormat, depthStencil bool) (*gpu.Pipeline, error) {
	var key strings.Builder
	fmt.Fprintf(&key, "t%d/ds%t", topology, depthStencil)
	if strip != nil {
		fmt.Fprintf(&key, "/s%d", *strip)
	}
	for _, in := range inputs {
		fmt.Fprintf(&key, "/%d:%d:%d", in.Location, in.Format, in.Stride)
	}
	if pl, ok := p.pipelines[key.String()]; ok {
		return pl, nil
	}
	pl, err := gpu.NewPipeline(d, gpu.PipelineDescriptor{
		Label:            "program_pipeline",
		VertexModule:     p.vsModule,
		VertexEntry:      p.vertex.EntryPoint,
		FragmentModule:   p.fsModule,
		FragmentEntry:    p.fragment.EntryPoint,
		Inputs:           inputs,
		Topology:         topology,
		StripIndexFormat: strip,
		DepthStencil:     depthStencil,
	})
	if err != nil {
		return nil, err
	}
	if p.pipelines == nil {
		p.pipelines = make(map[string]*gpu.Pipeline)
	}
	p.pipelines[key.String()] = pl
	return pl, nil
}

// release frees the program's GPU objects once submitted work completes.
func (p *programObject) release(d *gpu.Device) {
	pipelines, vs, fs := p.pipelines, p.vsModule, p.fsModule
	p.pipelines, p.vsModule, p.fsModule = nil, nil, nil
	p.linked = false
	d.Defer(func(hd hal.Device) {
		for _, pl := range pipelines {
			pl.Destroy(d)
		}
		if vs != nil {
			hd.DestroyShaderModule(vs)
		}
		if fs != nil {
			hd.DestroyShaderModule(fs)
		}
	})
}

type bufferObject struct {
	data  []byte
	usage Enum
	raw   hal.Buffer
}

// release frees the buffer's GPU storage once submitted work completes.
func (b *bufferObject) release(d *gpu.Device) {
	raw := b.raw
	b.raw = nil
	if raw == nil {
		return
	}
	d.Defer(func(hd hal.Device) { hd.DestroyBuffer(raw) })
}
