package imgfilter

import (
	"fmt"
	"math"

	"github.com/disintegration/imaging"
)

// Resize resamples img to width x height with a Lanczos filter.
// If one of width or height is 0, the image aspect ratio is preserved.
func Resize(img *Image, width, height int) (*Image, error) {
	if width < 0 || height < 0 || (width == 0 && height == 0) {
		return nil, fmt.Errorf("resize: %w: %dx%d", ErrInvalidDimensions, width, height)
	}
	w, h := float64(width), float64(height)
	if width == 0 {
		w = math.Max(1, math.Floor(h*float64(img.Width)/float64(img.Height)+0.5))
	}
	if height == 0 {
		h = math.Max(1, math.Floor(w*float64(img.Height)/float64(img.Width)+0.5))
	}
	if w*h > MaxPixels {
		return nil, fmt.Errorf("resize: %w: %.0fx%.0f exceeds %d pixels", ErrAllocation, w, h, MaxPixels)
	}
	if int(w) == img.Width && int(h) == img.Height {
		return img.Clone(), nil
	}
	return FromImage(imaging.Resize(img.NRGBA(), width, height, imaging.Lanczos)), nil
}
