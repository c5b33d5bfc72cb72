package headless

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// gradient returns an opaque test frame with distinct pixels.
func gradient(w, h int) *PixelBuffer {
	p := NewPixelBuffer(w, h)
	for y := range h {
		for x := range w {
			off := (y*w + x) * 4
			p.Pix[off] = byte(x * 255 / max(w-1, 1))
			p.Pix[off+1] = byte(y * 255 / max(h-1, 1))
			p.Pix[off+2] = byte((x + y) % 256)
			p.Pix[off+3] = 255
		}
	}
	return p
}

func TestNewPixelBuffer(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{640, 480, 640 * 480 * 4},
		{1, 1, 4},
		{0, 10, 0},
		{-3, 10, 0},
	}
	for _, tt := range tests {
		if got := len(NewPixelBuffer(tt.w, tt.h).Pix); got != tt.want {
			t.Errorf("NewPixelBuffer(%d, %d) len = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestPixelBufferPNGRoundTrip(t *testing.T) {
	p := gradient(37, 21)
	var buf bytes.Buffer
	if err := p.Encode(&buf, ".png"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded %T, want *image.NRGBA (8-bit RGBA color type)", img)
	}
	if nrgba.Bounds() != image.Rect(0, 0, 37, 21) {
		t.Fatalf("bounds = %v", nrgba.Bounds())
	}
	if !bytes.Equal(nrgba.Pix, p.Pix) {
		t.Error("decoded pixels differ from the buffer")
	}
}

func TestPixelBufferFormats(t *testing.T) {
	p := gradient(16, 9)
	want := p.ToImage()

	tests := []struct {
		ext    string
		decode func(r *bytes.Reader) (image.Image, error)
	}{
		{".bmp", func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }},
		{".tiff", func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }},
		{".webp", func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) }},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			var buf bytes.Buffer
			if err := p.Encode(&buf, tt.ext); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			img, err := tt.decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.Bounds() != want.Bounds() {
				t.Fatalf("bounds = %v, want %v", img.Bounds(), want.Bounds())
			}
			for y := range 9 {
				for x := range 16 {
					r0, g0, b0, a0 := want.At(x, y).RGBA()
					r1, g1, b1, a1 := img.At(x, y).RGBA()
					if r0>>8 != r1>>8 || g0>>8 != g1>>8 || b0>>8 != b1>>8 || a0>>8 != a1>>8 {
						t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, img.At(x, y), want.At(x, y))
					}
				}
			}
		})
	}
}

func TestPixelBufferSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	p := gradient(64, 48)

	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Save(path); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("saving the same frame twice produced different files")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only test.png", len(entries))
	}
}

func TestPixelBufferSaveUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.jpg")

	err := gradient(4, 4).Save(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Save err = %v, want ErrUnsupportedFormat", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("failed save left %d files behind", len(entries))
	}
}

func TestPixelBufferSaveMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "frame.png")
	if err := gradient(4, 4).Save(path); err == nil {
		t.Fatal("Save into a missing directory succeeded")
	}
}

func TestPixelBufferEncodeCorrupt(t *testing.T) {
	p := &PixelBuffer{Width: 4, Height: 4, Pix: make([]byte, 10)}
	if err := p.Encode(&bytes.Buffer{}, ".png"); err == nil {
		t.Error("Encode accepted a buffer with the wrong length")
	}
}
