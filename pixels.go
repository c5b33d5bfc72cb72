package headless

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/gogpu/headless/internal/imageio"
)

// PixelBuffer holds an RGBA8 frame read back from a surface.
// len(Pix) is always Width*Height*4. Rows are in the order ReadPixels
// produced them: bottom row first.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer allocates a zeroed buffer for a width x height frame.
// Negative sizes are treated as 0.
func NewPixelBuffer(width, height int) *PixelBuffer {
	width, height = max(width, 0), max(height, 0)
	return &PixelBuffer{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// At returns the RGBA bytes of the pixel at column x of stored row y.
func (p *PixelBuffer) At(x, y int) [4]byte {
	off := (y*p.Width + x) * 4
	return [4]byte{p.Pix[off], p.Pix[off+1], p.Pix[off+2], p.Pix[off+3]}
}

// ToImage wraps the buffer as an *image.NRGBA sharing Pix. Stored row 0
// becomes image row 0.
func (p *PixelBuffer) ToImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// Encode writes the buffer to w in the format named by ext (".png",
// ".bmp", ".tif", ".tiff", ".webp"; empty means PNG).
func (p *PixelBuffer) Encode(w io.Writer, ext string) error {
	f, err := imageio.FormatFromPath("x" + ext)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if len(p.Pix) != p.Width*p.Height*4 {
		return fmt.Errorf("headless: pixel buffer holds %d bytes, want %d", len(p.Pix), p.Width*p.Height*4)
	}
	return imageio.Encode(w, p.ToImage(), f)
}

// Save encodes the buffer to path, choosing the format from the extension.
// The image is written to a temporary file in the same directory and
// renamed into place, so a failed save never leaves a partial file. An
// existing file at path is replaced.
func (p *PixelBuffer) Save(path string) (err error) {
	ext := filepath.Ext(path)
	if _, ferr := imageio.FormatFromPath(path); ferr != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, ferr)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = p.Encode(tmp, ext); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	Logger().Info("headless: image written", "path", path, "width", p.Width, "height", p.Height)
	return nil
}
