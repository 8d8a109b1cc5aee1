package imgfilter

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

var (
	sharpenKernel = [3][3]float32{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	laplacianKernel = [3][3]float32{
		{-1, -1, -1},
		{-1, 8, -1},
		{-1, -1, -1},
	}
)

// CropImage returns the top-left rectangle of img of at most width x height pixels.
// It never enlarges the image.
func CropImage(img *Image, width, height int) (*Image, error) {
	dst, err := New(min(width, img.Width), min(height, img.Height))
	if err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}
	for y := range dst.Height {
		copy(dst.Pix[y*dst.Width:(y+1)*dst.Width], img.Pix[y*img.Width:])
	}
	return dst, nil
}

// ToGrayscale replaces every pixel by its luma 0.299R + 0.587G + 0.114B.
// Pixels that are already neutral are kept as is.
func ToGrayscale(img *Image) *Image {
	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			for i := y * img.Width; i < (y+1)*img.Width; i++ {
				c := img.Pix[i]
				if c.R == c.G && c.G == c.B {
					dst.Pix[i] = c
					continue
				}
				l := 0.299*c.R + 0.587*c.G + 0.114*c.B
				dst.Pix[i] = Color{l, l, l}
			}
		}
	})
	return dst
}

// Negate inverts every channel: c' = 1 - c.
func Negate(img *Image) *Image {
	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			for i := y * img.Width; i < (y+1)*img.Width; i++ {
				c := img.Pix[i]
				dst.Pix[i] = Color{1 - c.R, 1 - c.G, 1 - c.B}
			}
		}
	})
	return dst
}

func convolve3(img *Image, kernel *[3][3]float32, x, y int) Color {
	var sum Color
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			w := kernel[ky+1][kx+1]
			if w == 0 {
				continue
			}
			c := img.AtClamped(x+kx, y+ky)
			sum.R += c.R * w
			sum.G += c.G * w
			sum.B += c.B * w
		}
	}
	return sum
}

// SharpenImage convolves img with a 3x3 sharpening kernel and clamps the result to [0, 1].
func SharpenImage(img *Image) *Image {
	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			for x := range img.Width {
				dst.Set(x, y, convolve3(img, &sharpenKernel, x, y).clamp())
			}
		}
	})
	return dst
}

// DetectEdges converts img to grayscale, applies a 3x3 Laplacian and marks
// pixels whose raw response exceeds threshold white, all others black.
func DetectEdges(img *Image, threshold float32) *Image {
	gray := ToGrayscale(img)
	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			for x := range img.Width {
				// gray channels are equal, R carries the response
				if convolve3(gray, &laplacianKernel, x, y).R > threshold {
					dst.Set(x, y, White)
				} else {
					dst.Set(x, y, Black)
				}
			}
		}
	})
	return dst
}

// MedianFilter replaces each channel of every pixel with the median of that
// channel over the window x window neighborhood. Channels are sorted
// independently, so the result is not a vector median.
func MedianFilter(img *Image, window int) (*Image, error) {
	if window < 1 {
		return nil, fmt.Errorf("median: %w: window %d", ErrInvalidDimensions, window)
	}
	radius := window / 2
	side := 2*radius + 1
	if side > math.MaxInt/side || side*side > MaxPixels {
		return nil, fmt.Errorf("median: %w: window %d", ErrAllocation, window)
	}
	count := side * side
	mid := count / 2

	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	parallel(0, img.Height, func(ys <-chan int) {
		reds := make([]float32, count)
		greens := make([]float32, count)
		blues := make([]float32, count)
		for y := range ys {
			for x := range img.Width {
				n := 0
				for wy := -radius; wy <= radius; wy++ {
					for wx := -radius; wx <= radius; wx++ {
						c := img.AtClamped(x+wx, y+wy)
						reds[n], greens[n], blues[n] = c.R, c.G, c.B
						n++
					}
				}
				slices.Sort(reds)
				slices.Sort(greens)
				slices.Sort(blues)
				dst.Set(x, y, Color{reds[mid], greens[mid], blues[mid]})
			}
		}
	})
	return dst, nil
}

// gaussianKernel returns normalized weights for offsets -radius..radius.
// Offsets beyond limit are folded into the two end taps, which is exact for
// clamped sampling along an axis of at most limit+1 pixels.
func gaussianKernel(sigma float32, radius, limit int) []float32 {
	size := max(0, min(radius, limit))
	half := make([]float64, size+1)
	s2 := 2 * float64(sigma) * float64(sigma)
	var sum, tail float64
	for d := 0; d <= radius; d++ {
		w := math.Exp(-float64(d) * float64(d) / s2)
		if d == 0 {
			sum += w
		} else {
			sum += 2 * w
		}
		if d <= size {
			half[d] = w
		} else {
			tail += w
		}
	}
	half[size] += tail

	kernel := make([]float32, 2*size+1)
	for d, w := range half {
		kernel[size-d] = float32(w / sum)
		kernel[size+d] = float32(w / sum)
	}
	return kernel
}

// Blur applies a separable Gaussian blur with the given standard deviation.
// The kernel radius is ceil(3*sigma).
func Blur(img *Image, sigma float32) (*Image, error) {
	if !(sigma > 0) || math.IsInf(float64(sigma), 0) {
		return nil, fmt.Errorf("blur: %w: sigma %v", ErrInvalidParameter, sigma)
	}
	r := math.Ceil(3 * float64(sigma))
	if r > MaxPixels {
		return nil, fmt.Errorf("blur: %w: sigma %v", ErrAllocation, sigma)
	}
	radius := int(r)
	horizontal := gaussianKernel(sigma, radius, img.Width-1)
	vertical := gaussianKernel(sigma, radius, img.Height-1)

	tmp := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	hr := len(horizontal) / 2
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			for x := range img.Width {
				var sum Color
				for k, w := range horizontal {
					c := img.AtClamped(x+k-hr, y)
					sum.R += c.R * w
					sum.G += c.G * w
					sum.B += c.B * w
				}
				tmp.Set(x, y, sum)
			}
		}
	})

	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	vr := len(vertical) / 2
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			for x := range img.Width {
				var sum Color
				for k, w := range vertical {
					c := tmp.AtClamped(x, y+k-vr)
					sum.R += c.R * w
					sum.G += c.G * w
					sum.B += c.B * w
				}
				dst.Set(x, y, sum)
			}
		}
	})
	return dst, nil
}

// CrystallizeImage splits img into Voronoi regions around one jittered seed
// per cellSize x cellSize grid cell and paints each region with its mean color.
// The seeds depend only on cellSize and the image size, so the result is
// deterministic.
func CrystallizeImage(img *Image, cellSize int) (*Image, error) {
	if cellSize < 1 {
		return nil, fmt.Errorf("crystallize: %w: cell size %d", ErrInvalidDimensions, cellSize)
	}
	cols := (img.Width-1)/cellSize + 1
	rows := (img.Height-1)/cellSize + 1

	rng := rand.New(rand.NewPCG(uint64(cellSize), uint64(img.Width)<<32|uint64(img.Height)))
	seeds := make([][2]int, cols*rows)
	for j := range rows {
		for i := range cols {
			seeds[j*cols+i] = [2]int{
				min(i*cellSize+rng.IntN(cellSize), img.Width-1),
				min(j*cellSize+rng.IntN(cellSize), img.Height-1),
			}
		}
	}

	labels := make([]int, len(img.Pix))
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			cy := y / cellSize
			for x := range img.Width {
				cx := x / cellSize
				best, bestDist := -1, math.MaxInt
				for j := max(0, cy-1); j <= min(rows-1, cy+1); j++ {
					for i := max(0, cx-1); i <= min(cols-1, cx+1); i++ {
						s := seeds[j*cols+i]
						dx, dy := s[0]-x, s[1]-y
						if d := dx*dx + dy*dy; d < bestDist {
							best, bestDist = j*cols+i, d
						}
					}
				}
				labels[y*img.Width+x] = best
			}
		}
	})

	type acc struct {
		r, g, b float64
		n       int
	}
	sums := make([]acc, len(seeds))
	for i, l := range labels {
		c := img.Pix[i]
		a := &sums[l]
		a.r += float64(c.R)
		a.g += float64(c.G)
		a.b += float64(c.B)
		a.n++
	}
	means := make([]Color, len(seeds))
	for i, a := range sums {
		if a.n > 0 {
			means[i] = Color{float32(a.r / float64(a.n)), float32(a.g / float64(a.n)), float32(a.b / float64(a.n))}
		}
	}

	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			for i := y * img.Width; i < (y+1)*img.Width; i++ {
				dst.Pix[i] = means[labels[i]]
			}
		}
	})
	return dst, nil
}

// Distort produces a frosted glass effect: every pixel is sampled from a
// pseudo-random position at most distortion pixels away on each axis.
// Offsets are seeded per row, so the same input always gives the same output.
func Distort(img *Image, distortion float32) (*Image, error) {
	if !(distortion >= 0) || math.IsInf(float64(distortion), 0) {
		return nil, fmt.Errorf("glass: %w: distortion %v", ErrInvalidParameter, distortion)
	}
	seed := uint64(math.Float32bits(distortion))
	dst := &Image{Width: img.Width, Height: img.Height, Pix: make([]Color, len(img.Pix))}
	parallel(0, img.Height, func(ys <-chan int) {
		for y := range ys {
			rng := rand.New(rand.NewPCG(seed, uint64(y)))
			for x := range img.Width {
				dx := int(math.Round(float64((rng.Float32()*2 - 1) * distortion)))
				dy := int(math.Round(float64((rng.Float32()*2 - 1) * distortion)))
				dst.Set(x, y, img.AtClamped(x+dx, y+dy))
			}
		}
	})
	return dst, nil
}
