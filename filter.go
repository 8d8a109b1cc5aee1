package imgfilter

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnknownFilter is returned by Apply for a filter it does not recognize.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrInvalidParameter is returned when a filter parameter is outside its domain.
	ErrInvalidParameter = errors.New("invalid filter parameter")
)

// Filter is one pipeline stage. The set of filters is closed;
// the concrete types are Crop, Grayscale, Negative, Sharpen, EdgeDetect,
// Median, GaussianBlur, Crystallize, Glass and ResizeFilter.
type Filter interface {
	fmt.Stringer
	filter()
}

// Crop keeps the top-left Width x Height rectangle.
type Crop struct{ Width, Height int }

// Grayscale converts to perceptual luma.
type Grayscale struct{}

// Negative inverts every channel.
type Negative struct{}

// Sharpen applies a 3x3 sharpening kernel.
type Sharpen struct{}

// EdgeDetect produces a binary Laplacian edge mask.
type EdgeDetect struct{ Threshold float32 }

// Median applies a Window x Window per-channel median.
type Median struct{ Window int }

// GaussianBlur blurs with standard deviation Sigma.
type GaussianBlur struct{ Sigma float32 }

// Crystallize flattens Voronoi cells of roughly CellSize pixels.
type Crystallize struct{ CellSize int }

// Glass jitters sampling coordinates by up to Distortion pixels.
type Glass struct{ Distortion float32 }

// ResizeFilter resamples to Width x Height.
type ResizeFilter struct{ Width, Height int }

func (Crop) filter()         {}
func (Grayscale) filter()    {}
func (Negative) filter()     {}
func (Sharpen) filter()      {}
func (EdgeDetect) filter()   {}
func (Median) filter()       {}
func (GaussianBlur) filter() {}
func (Crystallize) filter()  {}
func (Glass) filter()        {}
func (ResizeFilter) filter() {}

func (f Crop) String() string       { return fmt.Sprintf("crop(%d,%d)", f.Width, f.Height) }
func (Grayscale) String() string    { return "gs" }
func (Negative) String() string     { return "neg" }
func (Sharpen) String() string      { return "sharp" }
func (f EdgeDetect) String() string { return "edge(" + formatFloat(f.Threshold) + ")" }
func (f Median) String() string     { return "med(" + strconv.Itoa(f.Window) + ")" }
func (f GaussianBlur) String() string {
	return "blur(" + formatFloat(f.Sigma) + ")"
}
func (f Crystallize) String() string  { return "crystal(" + strconv.Itoa(f.CellSize) + ")" }
func (f Glass) String() string        { return "glass(" + formatFloat(f.Distortion) + ")" }
func (f ResizeFilter) String() string { return fmt.Sprintf("resize(%d,%d)", f.Width, f.Height) }

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// Apply runs a single filter on img and returns a newly allocated result.
// On error the result is nil.
func Apply(f Filter, img *Image) (*Image, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	switch f := f.(type) {
	case Crop:
		return CropImage(img, f.Width, f.Height)
	case Grayscale:
		return ToGrayscale(img), nil
	case Negative:
		return Negate(img), nil
	case Sharpen:
		return SharpenImage(img), nil
	case EdgeDetect:
		return DetectEdges(img, f.Threshold), nil
	case Median:
		return MedianFilter(img, f.Window)
	case GaussianBlur:
		return Blur(img, f.Sigma)
	case Crystallize:
		return CrystallizeImage(img, f.CellSize)
	case Glass:
		return Distort(img, f.Distortion)
	case ResizeFilter:
		return Resize(img, f.Width, f.Height)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownFilter, f)
	}
}
