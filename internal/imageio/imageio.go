// Package imageio encodes RGBA8 frames to image files.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image format.
type Format uint8

const (
	PNG Format = iota
	BMP
	TIFF
	WebP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	case WebP:
		return "webp"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ErrUnknownFormat is returned for file extensions with no encoder.
var ErrUnknownFormat = errors.New("imageio: unknown image format")

// FormatFromPath picks the format from the file extension. A path with no
// extension is PNG.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".webp":
		return WebP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img *image.NRGBA, f Format) error {
	switch f {
	case PNG:
		return EncodePNG(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case WebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}
