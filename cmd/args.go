package main

import (
	"fmt"
	"strconv"

	"github.com/sunshineplan/imgfilter"
)

// ArgError is a filter argument that could not be parsed.
type ArgError struct {
	Flag string
	Msg  string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("%s: %s", e.Flag, e.Msg)
}

func intArgs(flag string, args []string, n int) ([]int, error) {
	if len(args) < n {
		return nil, &ArgError{flag, fmt.Sprintf("requires %d integer argument(s)", n)}
	}
	res := make([]int, n)
	for i := range n {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, &ArgError{flag, fmt.Sprintf("invalid integer %q", args[i])}
		}
		res[i] = v
	}
	return res, nil
}

func floatArg(flag string, args []string) (float32, error) {
	if len(args) < 1 {
		return 0, &ArgError{flag, "requires a numeric argument"}
	}
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return 0, &ArgError{flag, fmt.Sprintf("invalid number %q", args[0])}
	}
	return float32(v), nil
}

// parseFilters turns the filter tokens following the input and output paths
// into a pipeline. Filters run in the order they are given.
func parseFilters(args []string) (*imgfilter.Pipeline, error) {
	p := imgfilter.NewPipeline()
	for i := 0; i < len(args); i++ {
		flag, rest := args[i], args[i+1:]
		switch flag {
		case "-crop", "-resize":
			v, err := intArgs(flag, rest, 2)
			if err != nil {
				return nil, err
			}
			if flag == "-crop" {
				p.AddCrop(v[0], v[1])
			} else {
				p.AddResize(v[0], v[1])
			}
			i += 2
		case "-gs":
			p.AddGrayscale()
		case "-neg":
			p.AddNegative()
		case "-sharp":
			p.AddSharpen()
		case "-med", "-crystal":
			v, err := intArgs(flag, rest, 1)
			if err != nil {
				return nil, err
			}
			if flag == "-med" {
				p.AddMedian(v[0])
			} else {
				p.AddCrystallize(v[0])
			}
			i++
		case "-edge", "-blur", "-glass":
			v, err := floatArg(flag, rest)
			if err != nil {
				return nil, err
			}
			switch flag {
			case "-edge":
				p.AddEdgeDetect(v)
			case "-blur":
				p.AddGaussianBlur(v)
			default:
				p.AddGlass(v)
			}
			i++
		default:
			return nil, &ArgError{flag, "unknown filter"}
		}
	}
	return p, nil
}
