package imgfilter

import (
	"fmt"
	"strings"
)

// StageError reports the pipeline stage that failed.
type StageError struct {
	Index  int // zero-based position of the stage
	Filter Filter
	Err    error
}

func (e *StageError) Error() string {
	if e.Filter == nil {
		return fmt.Sprintf("stage %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("stage %d (%s): %v", e.Index+1, e.Filter, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline is an ordered list of filters applied one after another.
// Filters can only be appended; the order they are added in is the order they run in.
type Pipeline struct {
	filters []Filter
}

// NewPipeline creates a pipeline initialized with the given filters.
func NewPipeline(filters ...Filter) *Pipeline {
	p := new(Pipeline)
	for _, f := range filters {
		p.Add(f)
	}
	return p
}

// Add appends f to the pipeline. Parameters are not validated until Apply.
func (p *Pipeline) Add(f Filter) *Pipeline {
	p.filters = append(p.filters, f)
	return p
}

// AddCrop appends a Crop filter.
func (p *Pipeline) AddCrop(width, height int) *Pipeline {
	return p.Add(Crop{Width: width, Height: height})
}

// AddGrayscale appends a Grayscale filter.
func (p *Pipeline) AddGrayscale() *Pipeline { return p.Add(Grayscale{}) }

// AddNegative appends a Negative filter.
func (p *Pipeline) AddNegative() *Pipeline { return p.Add(Negative{}) }

// AddSharpen appends a Sharpen filter.
func (p *Pipeline) AddSharpen() *Pipeline { return p.Add(Sharpen{}) }

// AddEdgeDetect appends an EdgeDetect filter.
func (p *Pipeline) AddEdgeDetect(threshold float32) *Pipeline {
	return p.Add(EdgeDetect{Threshold: threshold})
}

// AddMedian appends a Median filter.
func (p *Pipeline) AddMedian(window int) *Pipeline { return p.Add(Median{Window: window}) }

// AddGaussianBlur appends a GaussianBlur filter.
func (p *Pipeline) AddGaussianBlur(sigma float32) *Pipeline {
	return p.Add(GaussianBlur{Sigma: sigma})
}

// AddCrystallize appends a Crystallize filter.
func (p *Pipeline) AddCrystallize(cellSize int) *Pipeline {
	return p.Add(Crystallize{CellSize: cellSize})
}

// AddGlass appends a Glass filter.
func (p *Pipeline) AddGlass(distortion float32) *Pipeline {
	return p.Add(Glass{Distortion: distortion})
}

// AddResize appends a ResizeFilter.
func (p *Pipeline) AddResize(width, height int) *Pipeline {
	return p.Add(ResizeFilter{Width: width, Height: height})
}

// Len returns the number of filters.
func (p *Pipeline) Len() int { return len(p.filters) }

// Filters returns a copy of the filter list.
func (p *Pipeline) Filters() []Filter {
	return append([]Filter(nil), p.filters...)
}

func (p *Pipeline) String() string {
	s := make([]string, len(p.filters))
	for i, f := range p.filters {
		if f == nil {
			s[i] = "<nil>"
			continue
		}
		s[i] = f.String()
	}
	return strings.Join(s, " | ")
}

// Apply runs every filter in order and returns the final image.
// The input image is never modified. If any stage fails, Apply returns
// a *StageError and no image.
func (p *Pipeline) Apply(img *Image) (*Image, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	current := img.Clone()
	for i, f := range p.filters {
		next, err := Apply(f, current)
		if err != nil {
			return nil, &StageError{Index: i, Filter: f, Err: err}
		}
		current = next
	}
	return current, nil
}
