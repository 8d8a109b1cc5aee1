package imgfilter

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Ext is the file extension used for output images.
const Ext = ".bmp"

// IsBMP reports whether filename has a BMP extension.
func IsBMP(filename string) bool {
	format, err := imaging.FormatFromFilename(filename)
	return err == nil && format == imaging.BMP
}

// ConvertExt replaces the extension of filename with Ext.
func ConvertExt(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + Ext
}

// Encode writes img to w as a 24-bit BMP.
// Channels are rounded to 8 bits and clamped to [0, 255].
func Encode(w io.Writer, img *Image) error {
	if img == nil {
		return ErrNilImage
	}
	return imaging.Encode(w, img.NRGBA(), imaging.BMP)
}
