package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sunshineplan/imgfilter"
	"github.com/sunshineplan/utils/log"
)

var errSkip = errors.New("skip")

func loadImages(root string) (imgs []string) {
	var message atomic.Value
	var width int
	done, stopped := make(chan struct{}), make(chan struct{})
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m, _ := message.Load().(string)
				if !*quiet {
					fmt.Fprintf(os.Stdout, "\r%s\r%s", strings.Repeat(" ", width), m)
				}
				width = len(m)
			}
		}
	}()
	var dir string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error("Failed to walk", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() && imgfilter.IsBMP(d.Name()) {
			imgs = append(imgs, path)
		}
		if d.IsDir() {
			dir = path
		}
		message.Store(fmt.Sprintf("Found images: %d, Scanning directory %s", len(imgs), dir))
		return nil
	})
	close(done)
	<-stopped
	if !*quiet {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", width))
	}
	return
}

func convert(p *imgfilter.Pipeline, image, output string, force bool) (err error) {
	if _, err = os.Stat(output); err == nil {
		if !force {
			return errSkip
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Error("Failed to get FileInfo", "name", output, "error", err)
		return
	}
	path := filepath.Dir(output)
	if err = os.MkdirAll(path, 0755); err != nil {
		log.Error("Failed to create directory", "path", path, "error", err)
		return
	}
	img, err := imgfilter.Open(image)
	if err != nil {
		log.Error("Failed to open image", "image", image, "error", err)
		return
	}
	res, err := p.Apply(img)
	if err != nil {
		log.Error("Failed to apply filters", "image", image, "error", err)
		return
	}
	f, err := os.CreateTemp(path, "*.tmp")
	if err != nil {
		log.Error("Failed to create temporary file", "path", path, "error", err)
		return
	}
	defer os.Remove(f.Name())
	if err = imgfilter.Encode(f, res); err != nil {
		f.Close()
		log.Error("Failed to encode image", "image", image, "error", err)
		return
	}
	if err = f.Close(); err != nil {
		log.Error("Failed to close file", "name", f.Name(), "error", err)
		return
	}
	if err = os.Rename(f.Name(), output); err != nil {
		log.Error("Failed to move file", "from", f.Name(), "to", output, "error", err)
	}
	return
}
