package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sunshineplan/imgfilter"
	"github.com/sunshineplan/progressbar"
	"github.com/sunshineplan/utils/log"
	"github.com/vharitonsky/iniflags"
	"golang.org/x/sync/errgroup"
)

var (
	force  = flag.Bool("force", false, "")
	worker = flag.Int("worker", 5, "")
	procs  = flag.Int("procs", 0, "")
	quiet  = flag.Bool("quiet", false, "")
	debug  = flag.Bool("debug", false, "")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	fmt.Fprint(flag.CommandLine.Output(), `
  imgfilter [options] <input> <output> [filters...]

  input is a 24-bit BMP file or a directory of them.
  output is a BMP file, or a directory the results are written into.

Options:
  --force
		force overwrite (default: false)
  --worker
		number of images processed at the same time in directory mode (default: 5)
  --procs
		goroutines used by each filter, 0 means GOMAXPROCS (default: 0)
  --quiet
		hide progress (default: false)
  --debug
		log every converted image (default: false)

Filters (applied in the given order):
  -crop W H       keep the top-left W x H area
  -gs             grayscale
  -neg            negative
  -sharp          sharpen
  -edge T         edge detection with threshold T
  -med N          median filter with an N x N window
  -blur S         gaussian blur with sigma S
  -crystal N      crystallize with cell size N
  -glass D        glass distortion of up to D pixels
  -resize W H     resize, 0 for W or H keeps the aspect ratio
`)
}

func main() {
	var code int
	defer func() { os.Exit(code) }()

	self, err := os.Executable()
	if err != nil {
		log.Error("Failed to get self path", "error", err)
		code = 1
		return
	}

	flag.Usage = usage
	iniflags.SetConfigFile(filepath.Join(filepath.Dir(self), "config.ini"))
	iniflags.SetAllowMissingConfigFile(true)
	iniflags.Parse()

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		code = 2
		return
	}
	src, dst := args[0], args[1]
	task, err := parseFilters(args[2:])
	if err != nil {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		flag.Usage()
		code = 2
		return
	}
	imgfilter.SetMaxProcs(*procs)

	srcInfo, err := os.Stat(src)
	if err != nil {
		log.Error("Failed to get FileInfo", "name", src, "error", err)
		code = 1
		return
	}
	switch mode := srcInfo.Mode(); {
	case mode.IsDir():
		code = runDir(task, src, dst)
	case mode.IsRegular():
		code = runFile(task, src, dst)
	default:
		log.Error("Unknown source", "name", src)
		code = 1
	}
}

func runFile(task *imgfilter.Pipeline, src, dst string) int {
	output := dst
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		output = filepath.Join(dst, imgfilter.ConvertExt(filepath.Base(src)))
	}
	if !imgfilter.IsBMP(output) {
		log.Error("Output must be a BMP file", "name", output)
		return 1
	}
	start := time.Now()
	if err := convert(task, src, output, *force); err != nil {
		if errors.Is(err, errSkip) {
			log.Error("Destination already exist", "name", output)
		}
		return 1
	}
	log.Info("Done", "output", output, "filters", task.Len(), "elapsed", time.Since(start))
	return 0
}

func runDir(task *imgfilter.Pipeline, src, dst string) int {
	if info, err := os.Stat(dst); err == nil {
		if !info.IsDir() {
			log.Error("Destination is not a directory", "name", dst)
			return 1
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Error("Failed to get FileInfo", "name", dst, "error", err)
		return 1
	}

	images := loadImages(src)
	total := len(images)
	log.Info("Total images", "count", total)
	if total == 0 {
		return 0
	}

	start := time.Now()
	add, finish := func() {}, func() {}
	if !*quiet {
		pb := progressbar.New(total)
		pb.Start()
		add, finish = func() { pb.Add(1) }, func() { pb.Wait() }
	}
	var failed, skipped atomic.Int64
	var g errgroup.Group
	g.SetLimit(max(1, *worker))
	for _, image := range images {
		g.Go(func() error {
			defer add()
			rel, err := filepath.Rel(src, image)
			if err != nil {
				log.Error("Failed to get relative path", "image", image, "error", err)
				failed.Add(1)
				return nil
			}
			output := imgfilter.ConvertExt(filepath.Join(dst, rel))
			if err := convert(task, image, output, *force); err != nil {
				if errors.Is(err, errSkip) {
					skipped.Add(1)
					if *debug {
						log.Info("Skip", "output", output)
					}
				} else {
					failed.Add(1)
				}
				return nil
			}
			if *debug {
				log.Info("Converted", "image", image, "output", output)
			}
			return nil
		})
	}
	g.Wait()
	finish()

	log.Info("Job done", "total", total, "skipped", skipped.Load(), "failed", failed.Load(), "elapsed", time.Since(start))
	if failed.Load() > 0 {
		return 1
	}
	return 0
}
