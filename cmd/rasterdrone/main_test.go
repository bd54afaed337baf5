// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"rescribe.xyz/rasterdrone"
	"rescribe.xyz/rasterdrone/extract"
	"rescribe.xyz/rasterdrone/internal/pipeline"
	"rescribe.xyz/rasterdrone/sample"
)

func TestParseFormats(t *testing.T) {
	cases := []struct {
		in   string
		want []string
		err  bool
	}{
		{"csv,pdf,png", []string{"csv", "pdf", "png"}, false},
		{"CSV", []string{"csv"}, false},
		{" pdf , ", []string{"pdf"}, false},
		{"", nil, true},
		{"csv,svg", nil, true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := parseFormats(c.in)
			if c.err {
				if err == nil {
					t.Fatalf("expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Error parsing formats: %v", err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %v, expected %v", got, c.want)
			}
			for _, f := range c.want {
				if !got[f] {
					t.Errorf("format %s missing from %v", f, got)
				}
			}
		})
	}
}

func TestBuildParams(t *testing.T) {
	pre, samp, err := buildParams("whiteonblack", "sauvola", 0.3, 128, 31, 10, 0.4, "grid", 500, 8)
	if err != nil {
		t.Fatalf("Error building params: %v", err)
	}
	wantPre := pipeline.PreprocessingParams{
		Polarity:         extract.WhiteOnBlack,
		Resize:           image.Point{128, 128},
		Percentile:       0.3,
		Threshold:        pipeline.Sauvola,
		WindowSize:       31,
		ThresholdPercent: 10,
		SauvolaK:         0.4,
	}
	if pre != wantPre {
		t.Errorf("got %+v, expected %+v", pre, wantPre)
	}
	if samp.Strategy != (sample.Grid{CellSize: 8, MaxUnsampled: 500}) {
		t.Errorf("got strategy %+v", samp.Strategy)
	}

	_, samp, err = buildParams("blackonwhite", "none", 0.5, 0, 50, 15, 0.5, "farthest", 20, 0)
	if err != nil {
		t.Fatalf("Error building params: %v", err)
	}
	if samp.Strategy != (sample.FarthestPoint{Count: 20}) {
		t.Errorf("got strategy %+v", samp.Strategy)
	}

	bad := []struct {
		name                          string
		polarity, threshold, strategy string
		resize, cell                  int
	}{
		{"polarity", "greyongrey", "none", "farthest", 0, 1},
		{"threshold", "blackonwhite", "otsu", "farthest", 0, 1},
		{"strategy", "blackonwhite", "none", "random", 0, 1},
		{"cell", "blackonwhite", "none", "grid", 0, 0},
		{"resize", "blackonwhite", "none", "farthest", -1, 1},
	}
	for _, c := range bad {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := buildParams(c.polarity, c.threshold, 0.5, c.resize, 50, 15, 0.5, c.strategy, 10, c.cell)
			if err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func writePng(t *testing.T, path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Could not create %s: %v", path, err)
	}
	defer f.Close()
	err = png.Encode(f, img)
	if err != nil {
		t.Fatalf("Could not encode %s: %v", path, err)
	}
}

func TestProcessImages(t *testing.T) {
	indir := t.TempDir()
	outdir := t.TempDir()

	dots := image.NewGray(image.Rect(0, 0, 30, 20))
	for y := 0; y < 20; y += 4 {
		for x := 0; x < 30; x += 4 {
			dots.SetGray(x, y, color.Gray{255})
		}
	}
	single := image.NewGray(image.Rect(0, 0, 10, 10))
	single.SetGray(3, 3, color.Gray{255})
	black := image.NewGray(image.Rect(0, 0, 10, 10))

	writePng(t, filepath.Join(indir, "dots.png"), dots)
	writePng(t, filepath.Join(indir, "single.png"), single)
	writePng(t, filepath.Join(indir, "black.png"), black)

	ctx := context.Background()
	paths, err := pipeline.ImageFiles(ctx, indir)
	if err != nil {
		t.Fatalf("Error finding images: %v", err)
	}

	var log strings.Builder
	logger := zerolog.New(&log)
	p := pipeline.New()
	p.Logger = &logger
	p.Preprocessing = pipeline.PreprocessingParams{
		Polarity:   extract.WhiteOnBlack,
		Percentile: 1,
		Threshold:  pipeline.NoThreshold,
	}
	p.Sampling = pipeline.SamplingParams{Strategy: sample.FarthestPoint{Count: 12}}

	opts := exportOpts{
		size:    10,
		unit:    rasterdrone.Metres,
		formats: map[string]bool{"csv": true, "pdf": true, "png": true},
	}
	done, written, err := processImages(ctx, indir, paths, p, outdir, opts, &logger)
	if err != nil {
		t.Fatalf("Error processing images: %v\nLog: %s", err, log.String())
	}
	if done != 1 {
		t.Errorf("expected 1 image to be exported, got %d", done)
	}
	want := []string{"dots.csv", "dots.graph.png", "layouts.pdf"}
	if len(written) != len(want) {
		t.Fatalf("got written files %v, expected %v", written, want)
	}
	for i, n := range want {
		if written[i] != filepath.Join(outdir, n) {
			t.Errorf("got written file %s, expected %s", written[i], filepath.Join(outdir, n))
		}
	}

	for _, n := range []string{"dots.csv", "dots.graph.png", "layouts.pdf"} {
		if _, err := os.Stat(filepath.Join(outdir, n)); err != nil {
			t.Errorf("expected output %s: %v", n, err)
		}
	}
	for _, n := range []string{"single.csv", "black.csv"} {
		if _, err := os.Stat(filepath.Join(outdir, n)); err == nil {
			t.Errorf("unexpected output %s", n)
		}
	}

	csv, err := os.ReadFile(filepath.Join(outdir, "dots.csv"))
	if err != nil {
		t.Fatalf("Could not read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	if lines[0] != "x_m,y_m" || len(lines) != 13 {
		t.Errorf("unexpected csv contents:\n%s", csv)
	}

	if !strings.Contains(log.String(), "all points are in the same place") {
		t.Errorf("zero range image not logged, log: %s", log.String())
	}
}

func TestProcessImagesNames(t *testing.T) {
	indir := t.TempDir()
	outdir := t.TempDir()

	left := image.NewGray(image.Rect(0, 0, 10, 10))
	left.SetGray(0, 0, color.Gray{255})
	left.SetGray(2, 9, color.Gray{255})
	right := image.NewGray(image.Rect(0, 0, 10, 10))
	right.SetGray(9, 0, color.Gray{255})
	right.SetGray(9, 3, color.Gray{255})
	right.SetGray(5, 5, color.Gray{255})

	for _, d := range []string{"a", "b"} {
		err := os.MkdirAll(filepath.Join(indir, d), 0700)
		if err != nil {
			t.Fatalf("Could not create directory: %v", err)
		}
	}
	writePng(t, filepath.Join(indir, "a", "logo.png"), left)
	writePng(t, filepath.Join(indir, "b", "logo.png"), right)
	writePng(t, filepath.Join(indir, "logo.png"), left)
	f, err := os.Create(filepath.Join(indir, "logo.gif"))
	if err != nil {
		t.Fatalf("Could not create gif: %v", err)
	}
	err = gif.Encode(f, right, nil)
	f.Close()
	if err != nil {
		t.Fatalf("Could not encode gif: %v", err)
	}

	ctx := context.Background()
	paths, err := pipeline.ImageFiles(ctx, indir)
	if err != nil {
		t.Fatalf("Error finding images: %v", err)
	}

	logger := zerolog.Nop()
	p := pipeline.New()
	p.Preprocessing = pipeline.PreprocessingParams{Polarity: extract.WhiteOnBlack, Percentile: 1}
	p.Sampling = pipeline.SamplingParams{Strategy: sample.FarthestPoint{Count: 10}}
	opts := exportOpts{size: 10, unit: rasterdrone.Metres, formats: map[string]bool{"csv": true}}

	done, written, err := processImages(ctx, indir, paths, p, outdir, opts, &logger)
	if err != nil {
		t.Fatalf("Error processing images: %v", err)
	}
	if done != 4 || len(written) != 4 {
		t.Fatalf("expected 4 images exported, got %d: %v", done, written)
	}

	lines := map[string]int{"a_logo.csv": 3, "b_logo.csv": 4, "logo_png.csv": 3, "logo_gif.csv": 4}
	for n, l := range lines {
		b, err := os.ReadFile(filepath.Join(outdir, n))
		if err != nil {
			t.Errorf("expected output %s: %v", n, err)
			continue
		}
		if got := len(strings.Split(strings.TrimSpace(string(b)), "\n")); got != l {
			t.Errorf("%s has %d lines, expected %d", n, got, l)
		}
	}
}

func TestExportNames(t *testing.T) {
	root := filepath.Join("in", "imgs")
	cases := []struct {
		name  string
		paths []string
		want  []string
		err   bool
	}{
		{"single", []string{filepath.Join(root, "logo.png")}, []string{"logo"}, false},
		{"subdirs", []string{filepath.Join(root, "a", "logo.png"), filepath.Join(root, "b", "logo.png")}, []string{"a_logo", "b_logo"}, false},
		{"extensions", []string{filepath.Join(root, "logo.JPG"), filepath.Join(root, "logo.png")}, []string{"logo_jpg", "logo_png"}, false},
		{"outside", []string{filepath.Join("other", "logo.png")}, []string{"logo"}, false},
		{"clash", []string{filepath.Join(root, "a_logo.png"), filepath.Join(root, "a", "logo.png")}, nil, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := exportNames(root, c.paths)
			if c.err {
				if err == nil {
					t.Fatalf("expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Error finding names: %v", err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %v, expected %v", got, c.want)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Errorf("got %v, expected %v", got, c.want)
				}
			}
		})
	}
}

func TestGuiHelpers(t *testing.T) {
	p := pipeline.New()
	if summary(p) != "No image loaded" {
		t.Errorf("unexpected summary %q", summary(p))
	}
	if b := previewImage(p, rasterdrone.DefaultLights()).Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("expected a placeholder preview, got %v", b)
	}

	img := image.NewGray(image.Rect(0, 0, 6, 4))
	img.SetGray(1, 1, color.Gray{255})
	img.SetGray(4, 2, color.Gray{255})
	p.Preprocessing = pipeline.PreprocessingParams{Polarity: extract.WhiteOnBlack, Percentile: 1}
	p.SetImage(img)
	_, _, err := p.Update()
	if err != nil {
		t.Fatalf("Error updating: %v", err)
	}

	if summary(p) != "2 of 2 points (6x4)" {
		t.Errorf("unexpected summary %q", summary(p))
	}
	white := rasterdrone.Lights{Intensity: 1, Color: color.RGBA{255, 255, 255, 255}}
	prev := previewImage(p, white)
	if prev.Bounds() != img.Bounds() {
		t.Fatalf("preview is %v, expected %v", prev.Bounds(), img.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			if color.GrayModel.Convert(prev.At(x, y)) != img.At(x, y) {
				t.Errorf("preview differs at %d,%d", x, y)
			}
		}
	}

	glow := previewImage(p, rasterdrone.DefaultLights())
	if r, _, _, _ := glow.At(2, 1).RGBA(); r == 0 {
		t.Errorf("expected light to spread next to a point")
	}

	if got := toRGBA(color.NRGBA{10, 20, 30, 255}); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("unexpected colour %v", got)
	}

	s := strategyFor("grid", 40, 7)
	if strategyName(s) != "grid" || count(s) != 40 || cellSize(s, 1) != 7 {
		t.Errorf("unexpected grid strategy %+v", s)
	}
	s = strategyFor("farthest", 40, 7)
	if strategyName(s) != "farthest" || count(s) != 40 || cellSize(s, 1) != 1 {
		t.Errorf("unexpected farthest strategy %+v", s)
	}
}

func TestManageStorage(t *testing.T) {
	conn := &rasterdrone.LocalConn{Dir: t.TempDir()}
	err := conn.Init()
	if err != nil {
		t.Fatalf("Could not initialise local connection: %v", err)
	}

	outdir := t.TempDir()
	writePng(t, filepath.Join(outdir, "a.png"), image.NewGray(image.Rect(0, 0, 2, 2)))
	err = pipeline.UploadOutputs(context.Background(), outdir, "show", conn)
	if err != nil {
		t.Fatalf("Error uploading: %v", err)
	}

	var out strings.Builder
	err = manageStorage(conn, "", "", true, "", &out)
	if err != nil {
		t.Fatalf("Error listing: %v", err)
	}
	if !strings.HasPrefix(out.String(), "show\t1 files\t") {
		t.Errorf("unexpected listing %q", out.String())
	}

	dldir := t.TempDir()
	out.Reset()
	err = manageStorage(conn, "show", "", false, dldir, &out)
	if err != nil {
		t.Fatalf("Error downloading: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dldir, "a.png")); err != nil {
		t.Errorf("download not found: %v", err)
	}

	out.Reset()
	err = manageStorage(conn, "", "show", true, "", &out)
	if err != nil {
		t.Fatalf("Error removing: %v", err)
	}
	if out.String() != "Removed 1 files for show\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
