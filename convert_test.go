package imgfilter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// rawBMP builds a BMP file by hand. rows are listed top to bottom as BGR triples.
func rawBMP(width, height int, bpp uint16, topDown bool, rows [][]byte) []byte {
	stride := (width*int(bpp)/8 + 3) &^ 3
	var buf bytes.Buffer
	buf.WriteString("BM")
	binary.Write(&buf, binary.LittleEndian, uint32(headerLen+stride*height))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(headerLen))
	h := int32(height)
	if topDown {
		h = -h
	}
	binary.Write(&buf, binary.LittleEndian, uint32(40))
	binary.Write(&buf, binary.LittleEndian, int32(width))
	binary.Write(&buf, binary.LittleEndian, h)
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, bpp)
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(stride*height))
	binary.Write(&buf, binary.LittleEndian, [4]uint32{})
	for i := range rows {
		row := rows[i]
		if !topDown {
			row = rows[len(rows)-1-i]
		}
		padded := make([]byte, stride)
		copy(padded, row)
		buf.Write(padded)
	}
	return buf.Bytes()
}

func TestDecodeOrientation(t *testing.T) {
	// red, green / blue, white
	rows := [][]byte{
		{0, 0, 255, 0, 255, 0},
		{255, 0, 0, 255, 255, 255},
	}
	want := newImage(t, 2, 2,
		Color{1, 0, 0}, Color{0, 1, 0},
		Color{0, 0, 1}, Color{1, 1, 1},
	)
	for _, topDown := range []bool{false, true} {
		img, err := Decode(bytes.NewReader(rawBMP(2, 2, 24, topDown, rows)))
		if err != nil {
			t.Fatalf("topDown=%v: %v", topDown, err)
		}
		compare(t, want, img)
	}
}

func TestDecodeError(t *testing.T) {
	transparent := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	transparent.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 4})
	var rgba bytes.Buffer
	if err := bmp.Encode(&rgba, transparent); err != nil {
		t.Fatal(err)
	}
	var gray bytes.Buffer
	if err := bmp.Encode(&gray, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	compressed := rawBMP(1, 1, 24, false, [][]byte{{1, 2, 3}})
	binary.LittleEndian.PutUint32(compressed[30:34], 1)

	testCase := []struct {
		name string
		data []byte
	}{
		{"text", []byte("Hello")},
		{"empty", nil},
		{"32bpp", rgba.Bytes()},
		{"8bpp", gray.Bytes()},
		{"rle", compressed},
	}
	for _, tc := range testCase {
		if _, err := Decode(bytes.NewReader(tc.data)); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s: want ErrUnsupportedFormat, got %v", tc.name, err)
		}
	}

	huge := rawBMP(1, 1, 24, false, [][]byte{{1, 2, 3}})
	binary.LittleEndian.PutUint32(huge[18:22], 100000)
	binary.LittleEndian.PutUint32(huge[22:26], 100000)
	if _, err := Decode(bytes.NewReader(huge)); !errors.Is(err, ErrAllocation) {
		t.Errorf("oversized header want ErrAllocation, got %v", err)
	}

	truncated := rawBMP(4, 4, 24, false, make([][]byte, 4))
	if _, err := Decode(bytes.NewReader(truncated[:len(truncated)-10])); err == nil {
		t.Error("truncated pixel data want error")
	}
}

func TestEncodeDecode(t *testing.T) {
	img := randomImage(t, 7, 5, 30)
	var buf bytes.Buffer
	if err := Write(&buf, img); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if bpp := binary.LittleEndian.Uint16(b[28:30]); bpp != 24 {
		t.Fatalf("want 24-bit output, got %d", bpp)
	}

	cfg, err := DecodeConfig(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 7 || cfg.Height != 5 {
		t.Fatalf("wrong config %dx%d", cfg.Width, cfg.Height)
	}

	m0, err := Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	compareApprox(t, img, m0, 0.5/255+1e-6)

	// quantized images survive another round trip unchanged
	buf.Reset()
	if err := Encode(&buf, m0); err != nil {
		t.Fatal(err)
	}
	m1, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	compare(t, m0, m1)

	if err := Encode(&buf, nil); !errors.Is(err, ErrNilImage) {
		t.Fatalf("want ErrNilImage, got %v", err)
	}
}

func TestOpenSave(t *testing.T) {
	if _, err := Open("/invalid/path"); err == nil {
		t.Error("Open invalid path want error")
	}
	dir := t.TempDir()
	img := randomImage(t, 3, 3, 31)
	if err := Save(filepath.Join(dir, "missing", "out.bmp"), img); err == nil {
		t.Error("Save invalid path want error")
	}
	output := filepath.Join(dir, "out.bmp")
	if err := Save(output, img); err != nil {
		t.Fatal(err)
	}
	m, err := Open(output)
	if err != nil {
		t.Fatal(err)
	}
	compareApprox(t, img, m, 0.5/255+1e-6)

	text := filepath.Join(dir, "text.bmp")
	if err := os.WriteFile(text, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(text); err == nil {
		t.Error("Open invalid image want error")
	}
}

func TestIsBMP(t *testing.T) {
	testCase := []struct {
		name string
		want bool
	}{
		{"a.bmp", true},
		{"dir/A.BMP", true},
		{"a.png", false},
		{"bmp", false},
		{"a.bmp.tmp", false},
	}
	for _, tc := range testCase {
		if got := IsBMP(tc.name); got != tc.want {
			t.Errorf("IsBMP(%q): want %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestConvertExt(t *testing.T) {
	testCase := []struct {
		name string
		want string
	}{
		{"a.bmp", "a.bmp"},
		{"dir/A.BMP", "dir/A.bmp"},
		{"noext", "noext.bmp"},
	}
	for _, tc := range testCase {
		if got := ConvertExt(tc.name); got != tc.want {
			t.Errorf("ConvertExt(%q): want %q, got %q", tc.name, tc.want, got)
		}
	}
}
