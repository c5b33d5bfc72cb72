package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row pitch alignment WebGPU (and DX12) require for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// rowPitch returns the staging row pitch for a copy of width RGBA8 texels.
// The CPU rasterizer copies tightly packed rows and ignores the pitch.
func rowPitch(d *Device, width uint32) uint32 {
	bytesPerRow := width * 4
	if d.adapter.backend == gputypes.BackendEmpty {
		return bytesPerRow
	}
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// ReadTarget copies the color texture of t back to host memory. Prior work
// must already be submitted; ReadTarget submits its own copy and waits for
// the queue to go idle. The result holds width*height*4 bytes in top-down
// row order.
func ReadTarget(d *Device, t *Target, label string) ([]byte, error) {
	if d == nil || d.raw == nil {
		return nil, ErrNilDevice
	}
	if t == nil || t.color == nil {
		return nil, ErrInvalidTarget
	}
	w, h := t.Size()
	bytesPerRow := w * 4
	alignedBytesPerRow := rowPitch(d, w)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.raw.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.raw.DestroyBuffer(staging)

	encoder, err := d.raw.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	// The render pass leaves the texture in attachment layout; the copy
	// needs it as a copy source. No-op on Metal, GLES and the CPU backend.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.color, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase: hal.ImageCopyTexture{
			Texture: t.color,
			Aspect:  gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	if err := d.Submit(cmd); err != nil {
		return nil, err
	}
	if err := d.Wait(); err != nil {
		return nil, err
	}

	mapping, err := d.raw.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	mapped := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	out := make([]byte, uint64(bytesPerRow)*uint64(h))
	if alignedBytesPerRow == bytesPerRow {
		copy(out, mapped)
	} else {
		for row := uint32(0); row < h; row++ {
			src := int(row) * int(alignedBytesPerRow)
			dst := int(row) * int(bytesPerRow)
			copy(out[dst:dst+int(bytesPerRow)], mapped[src:src+int(bytesPerRow)])
		}
	}
	if err := d.raw.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return out, nil
}
