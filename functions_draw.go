package headless

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/headless/internal/gpu"
)

// GenBuffer returns a new buffer object name.
func (gl *Functions) GenBuffer() uint32 {
	if !gl.live() {
		return 0
	}
	objs := gl.ctx.objects
	name := objs.alloc()
	objs.buffers[name] = &bufferObject{}
	return name
}

// BindBuffer binds a buffer to ARRAY_BUFFER, or to ELEMENT_ARRAY_BUFFER of
// the bound vertex array. Name 0 unbinds.
func (gl *Functions) BindBuffer(target Enum, name uint32) {
	if !gl.live() {
		return
	}
	if name != 0 {
		if _, ok := gl.ctx.objects.buffers[name]; !ok {
			gl.setError(INVALID_VALUE)
			return
		}
	}
	s := gl.state()
	switch target {
	case ARRAY_BUFFER:
		s.arrayBuffer = name
	case ELEMENT_ARRAY_BUFFER:
		vao := gl.ctx.vertexArrays[s.vertexArray]
		if vao == nil {
			gl.setError(INVALID_OPERATION)
			return
		}
		vao.elementBuffer = name
	default:
		gl.setError(INVALID_ENUM)
	}
}

func (gl *Functions) boundBuffer(target Enum) (uint32, bool) {
	s := gl.state()
	switch target {
	case ARRAY_BUFFER:
		return s.arrayBuffer, true
	case ELEMENT_ARRAY_BUFFER:
		if vao := gl.ctx.vertexArrays[s.vertexArray]; vao != nil {
			return vao.elementBuffer, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// BufferData replaces the contents of the buffer bound to target with a
// copy of data.
func (gl *Functions) BufferData(target Enum, data []byte, usage Enum) {
	if !gl.live() {
		return
	}
	name, ok := gl.boundBuffer(target)
	if !ok {
		gl.setError(INVALID_ENUM)
		return
	}
	switch usage {
	case STREAM_DRAW, STATIC_DRAW, DYNAMIC_DRAW:
	default:
		gl.setError(INVALID_ENUM)
		return
	}
	if name == 0 {
		gl.setError(INVALID_OPERATION)
		return
	}
	b := gl.ctx.objects.buffers[name]
	dev := gl.ctx.device.gpu
	b.release(dev)
	b.data = append([]byte(nil), data...)
	b.usage = usage
	if len(data) == 0 {
		return
	}
	raw, err := gpu.UploadBuffer(dev, fmt.Sprintf("buffer%d", name), b.data,
		gputypes.BufferUsageVertex|gputypes.BufferUsageIndex)
	if err != nil {
		Logger().Warn("headless: buffer upload failed", "buffer", name, "err", err)
		gl.setError(OUT_OF_MEMORY)
		return
	}
	b.raw = raw
}

// DeleteBuffer deletes a buffer object and unbinds it everywhere in this
// context.
func (gl *Functions) DeleteBuffer(name uint32) {
	if !gl.live() || name == 0 {
		return
	}
	b, ok := gl.ctx.objects.buffers[name]
	if !ok {
		return
	}
	b.release(gl.ctx.device.gpu)
	delete(gl.ctx.objects.buffers, name)
	s := gl.state()
	if s.arrayBuffer == name {
		s.arrayBuffer = 0
	}
	for _, vao := range gl.ctx.vertexArrays {
		if vao.elementBuffer == name {
			vao.elementBuffer = 0
		}
		for i := range vao.attribs {
			if vao.attribs[i].buffer == name {
				vao.attribs[i].buffer = 0
			}
		}
	}
}

// GenVertexArray returns a new vertex array object name.
func (gl *Functions) GenVertexArray() uint32 {
	if !gl.live() {
		return 0
	}
	name := gl.ctx.allocLocal()
	gl.ctx.vertexArrays[name] = &vertexArray{}
	return name
}

// BindVertexArray binds a vertex array object. Name 0 unbinds.
func (gl *Functions) BindVertexArray(name uint32) {
	if !gl.live() {
		return
	}
	if name != 0 {
		if _, ok := gl.ctx.vertexArrays[name]; !ok {
			gl.setError(INVALID_OPERATION)
			return
		}
	}
	gl.state().vertexArray = name
}

// DeleteVertexArray deletes a vertex array object.
func (gl *Functions) DeleteVertexArray(name uint32) {
	if !gl.live() || name == 0 {
		return
	}
	delete(gl.ctx.vertexArrays, name)
	if gl.state().vertexArray == name {
		gl.state().vertexArray = 0
	}
}

func (gl *Functions) attrib(index uint32) *vertexAttrib {
	if index >= maxVertexAttribs {
		gl.setError(INVALID_VALUE)
		return nil
	}
	vao := gl.ctx.vertexArrays[gl.state().vertexArray]
	if vao == nil {
		gl.setError(INVALID_OPERATION)
		return nil
	}
	return &vao.attribs[index]
}

// EnableVertexAttribArray enables a generic vertex attribute of the bound
// vertex array.
func (gl *Functions) EnableVertexAttribArray(index uint32) {
	if !gl.live() {
		return
	}
	if a := gl.attrib(index); a != nil {
		a.enabled = true
	}
}

// DisableVertexAttribArray disables a generic vertex attribute of the bound
// vertex array.
func (gl *Functions) DisableVertexAttribArray(index uint32) {
	if !gl.live() {
		return
	}
	if a := gl.attrib(index); a != nil {
		a.enabled = false
	}
}

// VertexAttribPointer sources attribute index from the buffer bound to
// ARRAY_BUFFER. Only FLOAT components are supported; normalized has no
// effect on them. A stride of 0 means tightly packed.
func (gl *Functions) VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset uintptr) {
	if !gl.live() {
		return
	}
	if size < 1 || size > 4 || stride < 0 {
		gl.setError(INVALID_VALUE)
		return
	}
	if typ != FLOAT {
		gl.setError(INVALID_ENUM)
		return
	}
	a := gl.attrib(index)
	if a == nil {
		return
	}
	buf := gl.state().arrayBuffer
	if buf == 0 && offset != 0 {
		gl.setError(INVALID_OPERATION)
		return
	}
	a.buffer, a.size, a.stride, a.offset = buf, size, stride, offset
}

var floatFormats = [...]gputypes.VertexFormat{
	gputypes.VertexFormatFloat32,
	gputypes.VertexFormatFloat32x2,
	gputypes.VertexFormatFloat32x3,
	gputypes.VertexFormatFloat32x4,
}

func topologyOf(mode Enum) (gputypes.PrimitiveTopology, bool) {
	switch mode {
	case POINTS:
		return gputypes.PrimitiveTopologyPointList, true
	case LINES:
		return gputypes.PrimitiveTopologyLineList, true
	case LINE_STRIP:
		return gputypes.PrimitiveTopologyLineStrip, true
	case TRIANGLES:
		return gputypes.PrimitiveTopologyTriangleList, true
	case TRIANGLE_STRIP:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	default:
		return 0, false
	}
}

func indexSize(typ Enum) (int, bool) {
	switch typ {
	case UNSIGNED_BYTE:
		return 1, true
	case UNSIGNED_SHORT:
		return 2, true
	case UNSIGNED_INT:
		return 4, true
	default:
		return 0, false
	}
}

// DrawElements draws count indices of type typ, read from the element
// buffer of the bound vertex array starting at byte offset. With no active
// program the draw is skipped and counted in FrameStats.SkippedDraws.
func (gl *Functions) DrawElements(mode Enum, count int32, typ Enum, offset uintptr) {
	if !gl.live() {
		return
	}
	topology, ok := topologyOf(mode)
	if !ok {
		gl.setError(INVALID_ENUM)
		return
	}
	isize, ok := indexSize(typ)
	if !ok {
		gl.setError(INVALID_ENUM)
		return
	}
	if count < 0 {
		gl.setError(INVALID_VALUE)
		return
	}
	s := gl.state()
	fb := gl.framebuffer(s.drawFB)
	if fb == nil {
		gl.setError(INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	vao := gl.ctx.vertexArrays[s.vertexArray]
	if vao == nil {
		gl.setError(INVALID_OPERATION)
		return
	}
	if s.program == 0 {
		s.stats.SkippedDraws++
		Logger().Warn("headless: draw skipped, no program in use", "mode", mode.String(), "count", count)
		return
	}
	if count == 0 {
		return
	}
	elems := gl.ctx.objects.buffers[vao.elementBuffer]
	if elems == nil {
		gl.setError(INVALID_OPERATION)
		return
	}
	end := int(offset) + int(count)*isize
	if end > len(elems.data) {
		gl.setError(INVALID_OPERATION)
		return
	}

	inputs, bindings, ok := gl.vertexInputs(vao)
	if !ok {
		gl.setError(INVALID_OPERATION)
		return
	}
	dev := gl.ctx.device.gpu
	indices, format, indexOffset, err := gl.indexBuffer(elems, typ, offset, end)
	if err != nil {
		Logger().Warn("headless: index upload failed", "err", err)
		gl.setError(OUT_OF_MEMORY)
		return
	}

	var strip *gputypes.IndexFormat
	if topology == gputypes.PrimitiveTopologyTriangleStrip || topology == gputypes.PrimitiveTopologyLineStrip {
		strip = &format
	}
	prog := gl.ctx.objects.programs[s.program]
	pipeline, err := prog.pipeline(dev, inputs, topology, strip, fb.target.HasDepthStencil())
	if err != nil {
		Logger().Warn("headless: pipeline creation failed", "program", s.program, "err", err)
		gl.setError(INVALID_OPERATION)
		return
	}

	fb.frame.Draw(gpu.DrawOp{
		Pipeline:    pipeline,
		Vertices:    bindings,
		Indices:     indices,
		IndexFormat: format,
		IndexOffset: indexOffset,
		IndexCount:  uint32(count),
		Viewport:    gl.viewportFor(fb),
	})
	s.stats.Draws++
}

// vertexInputs collects the enabled attributes of vao in index order. It
// fails when an enabled attribute has no buffer storage.
func (gl *Functions) vertexInputs(vao *vertexArray) ([]gpu.VertexInput, []gpu.VertexBinding, bool) {
	var inputs []gpu.VertexInput
	var bindings []gpu.VertexBinding
	for i := range vao.attribs {
		a := &vao.attribs[i]
		if !a.enabled {
			continue
		}
		b := gl.ctx.objects.buffers[a.buffer]
		if b == nil || b.raw == nil {
			return nil, nil, false
		}
		stride := uint64(a.stride)
		if stride == 0 {
			stride = uint64(a.size) * 4
		}
		inputs = append(inputs, gpu.VertexInput{
			Location: uint32(i),
			Format:   floatFormats[a.size-1],
			Stride:   stride,
		})
		bindings = append(bindings, gpu.VertexBinding{Buffer: b.raw, Offset: uint64(a.offset)})
	}
	return inputs, bindings, true
}

// indexBuffer returns a GPU index buffer for elems[offset:end]. 8-bit
// indices and offsets not aligned to the index size go through a widened
// or repacked temporary buffer released after the frame completes.
func (gl *Functions) indexBuffer(elems *bufferObject, typ Enum, offset uintptr, end int) (hal.Buffer, gputypes.IndexFormat, uint64, error) {
	format := gputypes.IndexFormatUint16
	if typ == UNSIGNED_INT {
		format = gputypes.IndexFormatUint32
	}
	isize, _ := indexSize(typ)
	if typ != UNSIGNED_BYTE && elems.raw != nil && int(offset)%isize == 0 {
		return elems.raw, format, uint64(offset), nil
	}
	data := elems.data[offset:end]
	if typ == UNSIGNED_BYTE {
		data = gpu.WidenIndices8(data)
	}
	dev := gl.ctx.device.gpu
	buf, err := gpu.UploadBuffer(dev, "draw_indices", data, gputypes.BufferUsageIndex)
	if err != nil {
		return nil, format, 0, err
	}
	dev.Defer(func(hd hal.Device) { hd.DestroyBuffer(buf) })
	return buf, format, 0, nil
}

// viewportFor converts the GL viewport (lower-left origin) to a top-left
// origin rectangle clipped to the framebuffer.
func (gl *Functions) viewportFor(fb *Surface) gpu.Viewport {
	v := gl.state().viewport
	fbW, fbH := float32(fb.size.X), float32(fb.size.Y)
	x, w := float32(v[0]), float32(v[2])
	y := fbH - float32(v[1]) - float32(v[3])
	h := float32(v[3])
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	w = min(w, fbW-x)
	h = min(h, fbH-y)
	return gpu.Viewport{X: x, Y: y, Width: max(w, 0), Height: max(h, 0)}
}

// Float32Bytes returns the little-endian bytes of v, as BufferData expects
// for FLOAT attributes.
func Float32Bytes(v []float32) []byte {
	out := make([]byte, 0, len(v)*4)
	for _, f := range v {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}
