package main

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/sunshineplan/imgfilter"
)

func writeImage(t *testing.T, path string, c imgfilter.Color) {
	t.Helper()
	img, err := imgfilter.New(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Pix {
		img.Pix[i] = c
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := imgfilter.Save(path, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadImages(t *testing.T) {
	*quiet = true
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.bmp"), imgfilter.White)
	writeImage(t, filepath.Join(dir, "sub", "b.BMP"), imgfilter.White)
	if err := os.WriteFile(filepath.Join(dir, "c.png"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	got := loadImages(dir)
	slices.Sort(got)
	want := []string{filepath.Join(dir, "a.bmp"), filepath.Join(dir, "sub", "b.BMP")}
	if !slices.Equal(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.bmp")
	output := filepath.Join(dir, "out", "in.bmp")
	writeImage(t, input, imgfilter.White)

	p, err := parseFilters([]string{"-crop", "2", "2", "-neg"})
	if err != nil {
		t.Fatal(err)
	}
	if err := convert(p, input, output, false); err != nil {
		t.Fatal(err)
	}
	img, err := imgfilter.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("want 2x2, got %dx%d", img.Width, img.Height)
	}
	for _, c := range img.Pix {
		if c != imgfilter.Black {
			t.Fatalf("want black, got %v", c)
		}
	}

	if err := convert(p, input, output, false); !errors.Is(err, errSkip) {
		t.Fatalf("want errSkip, got %v", err)
	}
	if err := convert(p, input, output, true); err != nil {
		t.Fatal(err)
	}

	bad, err := parseFilters([]string{"-neg", "-med", "0"})
	if err != nil {
		t.Fatal(err)
	}
	failed := filepath.Join(dir, "out", "failed.bmp")
	var se *imgfilter.StageError
	if err := convert(bad, input, failed, false); !errors.As(err, &se) || se.Index != 1 {
		t.Fatalf("want failure at stage 2, got %v", err)
	}
	if _, err := os.Stat(failed); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("failed conversion left an output file")
	}
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("want only in.bmp in output directory, got %d entries", len(entries))
	}
}
