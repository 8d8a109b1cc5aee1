package imgfilter

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

const headerLen = 14 + 40

// ErrUnsupportedFormat is returned when the input is not an uncompressed 24-bit BMP.
var ErrUnsupportedFormat = errors.New("unsupported format: only uncompressed 24-bit BMP is supported")

func checkHeader(b []byte) error {
	if len(b) < headerLen || b[0] != 'B' || b[1] != 'M' {
		return fmt.Errorf("%w: missing BMP signature", ErrUnsupportedFormat)
	}
	if bpp := binary.LittleEndian.Uint16(b[28:30]); bpp != 24 {
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, bpp)
	}
	if compression := binary.LittleEndian.Uint32(b[30:34]); compression != 0 {
		return fmt.Errorf("%w: compression %d", ErrUnsupportedFormat, compression)
	}
	return nil
}

// Decode reads an uncompressed 24-bit BMP from r.
// Both bottom-up and top-down row orders are accepted.
func Decode(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(headerLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	config, err := DecodeConfig(bytes.NewReader(header))
	if err != nil {
		return nil, err
	}
	if w, h := config.Width, config.Height; w > 0 && h > 0 && (w > MaxPixels/h || w*h > MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, w, h, MaxPixels)
	}
	m, err := bmp.Decode(br)
	if err != nil {
		return nil, err
	}
	if m.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimensions, m.Bounds().Size())
	}
	return FromImage(m), nil
}

// DecodeConfig returns the color model and dimensions of a BMP without decoding the pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	return bmp.DecodeConfig(r)
}

// Open loads an image from file.
func Open(file string) (*Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Write encodes img to w as a 24-bit BMP.
func Write(w io.Writer, img *Image) error {
	return Encode(w, img)
}

// Save saves img to output as a 24-bit BMP.
func Save(output string, img *Image) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}
