package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyAlignment is the alignment required for buffer sizes and write offsets.
const copyAlignment = 4

// UploadBuffer creates a GPU buffer holding data. The buffer size is rounded
// up to a multiple of four bytes and CopyDst is always added to usage.
func UploadBuffer(d *Device, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	if d == nil || d.raw == nil {
		return nil, ErrNilDevice
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	padded := data
	if rem := len(data) % copyAlignment; rem != 0 {
		padded = make([]byte, len(data)+copyAlignment-rem)
		copy(padded, data)
	}
	buf, err := d.raw.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(padded)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, padded); err != nil {
		d.raw.DestroyBuffer(buf)
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	slogger().Debug("gpu: buffer uploaded", "label", label, "bytes", len(data))
	return buf, nil
}

// WidenIndices8 converts 8-bit indices to little-endian 16-bit indices.
// WebGPU has no 8-bit index format.
func WidenIndices8(src []byte) []byte {
	out := make([]byte, len(src)*2)
	for i, v := range src {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
