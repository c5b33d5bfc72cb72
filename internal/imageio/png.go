package imageio

import (
	"bufio"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"io"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// EncodePNG writes img as an 8-bit RGBA (color type 6) PNG regardless of
// its opacity. Pixel data is written straight from img.Pix, so an
// *image.NRGBA holding straight alpha round-trips byte for byte.
func EncodePNG(w io.Writer, img *image.NRGBA) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("imageio: invalid PNG size %dx%d", width, height)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(pngSignature); err != nil {
		return err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8  // bit depth
	ihdr[9] = 6  // color type: truecolor with alpha
	ihdr[10] = 0 // compression: deflate
	ihdr[11] = 0 // filter method
	ihdr[12] = 0 // interlace: none
	if err := writeChunk(bw, "IHDR", ihdr[:]); err != nil {
		return err
	}

	idat := &chunkWriter{w: bw, name: "IDAT"}
	zw, err := zlib.NewWriterLevel(idat, zlib.BestCompression)
	if err != nil {
		return err
	}
	rowLen := width * 4
	for y := 0; y < height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		if _, err := zw.Write([]byte{0}); err != nil { // filter type: none
			return err
		}
		if _, err := zw.Write(img.Pix[off : off+rowLen]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := idat.flush(); err != nil {
		return err
	}
	if err := writeChunk(bw, "IEND", nil); err != nil {
		return err
	}
	return bw.Flush()
}

func writeChunk(w io.Writer, name string, data []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(data)))
	copy(hdr[4:8], name)
	crc := crc32.NewIEEE()
	crc.Write(hdr[4:8])
	crc.Write(data)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())
	for _, p := range [][]byte{hdr[:], data, tail[:]} {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// maxChunk bounds the size of a single IDAT chunk.
const maxChunk = 1 << 16

// chunkWriter buffers compressed data and emits it as IDAT chunks.
type chunkWriter struct {
	w    io.Writer
	name string
	buf  []byte
}

func (c *chunkWriter) Write(p []byte) (int, error) {
	n := len(p)
	c.buf = append(c.buf, p...)
	for len(c.buf) >= maxChunk {
		if err := writeChunk(c.w, c.name, c.buf[:maxChunk]); err != nil {
			return 0, err
		}
		c.buf = c.buf[maxChunk:]
	}
	return n, nil
}

func (c *chunkWriter) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	err := writeChunk(c.w, c.name, c.buf)
	c.buf = nil
	return err
}
