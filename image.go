package imgfilter

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// MaxPixels is the largest number of pixels New will allocate.
const MaxPixels = 1 << 28

var (
	// ErrInvalidDimensions is returned when a non-positive width or height is requested.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrAllocation is returned when a pixel buffer cannot be obtained.
	ErrAllocation = errors.New("cannot allocate pixel buffer")
	// ErrNilImage is returned when a nil image is passed where one is required.
	ErrNilImage = errors.New("nil image")
)

// Color is a linear RGB color with channels nominally in [0, 1].
// Values outside that range are allowed as intermediate results.
type Color struct {
	R, G, B float32
}

// Black and White are the two colors produced by edge detection.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

func (c Color) clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Image is a dense row-major grid of colors.
// The color at (x, y) is Pix[y*Width+x].
type Image struct {
	Width  int
	Height int
	Pix    []Color
}

// New creates a black image of the given size.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > math.MaxInt/height || width*height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, width, height, MaxPixels)
	}
	return &Image{Width: width, Height: height, Pix: make([]Color, width*height)}, nil
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	pix := make([]Color, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Width: img.Width, Height: img.Height, Pix: pix}
}

// Bounds returns the image rectangle anchored at the origin.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At returns the color at (x, y). The caller guarantees the point is in range.
func (img *Image) At(x, y int) Color {
	return img.Pix[y*img.Width+x]
}

// Set sets the color at (x, y). The caller guarantees the point is in range.
func (img *Image) Set(x, y int, c Color) {
	img.Pix[y*img.Width+x] = c
}

// AtClamped returns the color at (x, y), replicating edge pixels for
// coordinates outside the image.
func (img *Image) AtClamped(x, y int) Color {
	x = max(0, min(img.Width-1, x))
	y = max(0, min(img.Height-1, y))
	return img.Pix[y*img.Width+x]
}

// In reports whether (x, y) lies inside the image.
func (img *Image) In(x, y int) bool {
	return x >= 0 && x < img.Width && y >= 0 && y < img.Height
}

// FromImage converts any image.Image into a float image.
func FromImage(src image.Image) *Image {
	nrgba := imaging.Clone(src)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	img := &Image{Width: w, Height: h, Pix: make([]Color, w*h)}
	parallel(0, h, func(ys <-chan int) {
		for y := range ys {
			row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
			for x := range w {
				s := row[x*4 : x*4+3 : x*4+3]
				img.Pix[y*w+x] = Color{float32(s[0]) / 255, float32(s[1]) / 255, float32(s[2]) / 255}
			}
		}
	})
	return img
}

// NRGBA quantizes the image to 8 bits per channel with opaque alpha.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			i := y * dst.Stride
			for _, c := range img.Pix[y*img.Width : (y+1)*img.Width] {
				d := dst.Pix[i : i+4 : i+4]
				d[0] = clamp(float64(c.R) * 255)
				d[1] = clamp(float64(c.G) * 255)
				d[2] = clamp(float64(c.B) * 255)
				d[3] = 0xff
				i += 4
			}
		}
	})
	return dst
}
