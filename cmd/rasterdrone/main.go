// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// rasterdrone turns images into sets of evenly spread points, and
// saves them as csv, pdf layout sheets and png graphs, optionally
// storing them locally or in the cloud.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"rescribe.xyz/rasterdrone"
	"rescribe.xyz/rasterdrone/extract"
	"rescribe.xyz/rasterdrone/internal/pipeline"
	"rescribe.xyz/rasterdrone/sample"
)

const usage = `Usage: rasterdrone [-v] [-gui] [-n num] [-s farthest|grid] [-cell num]
                   [-p percentile] [-threshold none|bradley|sauvola] [-w num]
                   [-t num] [-k num] [-wipe] [-resize num] [-polarity blackonwhite|whiteonblack]
                   [-size num] [-unit m|cm|mm|ft] [-f csv,pdf,png]
                   [-c local|aws] [-o name] imgfile|imgdir [outdir]
       rasterdrone [-gui] [imgfile]
       rasterdrone [-c local|aws] [-get name] [-rm name] [-ls] [outdir]

Turns an image, or every image in a directory, into a set of evenly
spread points, and saves them to outdir (the current directory by
default) as csv files, a pdf with a layout sheet for each image, and
png graphs.

If -o is given the files which were saved are then uploaded to storage,
under the given name. -get downloads files which were uploaded that way, to
outdir, -rm removes them, and -ls lists everything which has been
uploaded.

With -gui a previewer window is opened for imgfile instead, which
updates the points as the settings are changed.
`

type Storer interface {
	Init() error
	DeleteObjects(bucket string, keys []string) error
	ListObjects(bucket string, prefix string) ([]string, error)
	ListObjectsWithMeta(bucket string, prefix string) ([]rasterdrone.ObjMeta, error)
	Download(bucket string, key string, fn string) error
	Upload(bucket string, key string, path string) error
	StorageId() string
	Log(v ...interface{})
}

type exportOpts struct {
	size    float64
	unit    rasterdrone.Unit
	formats map[string]bool
}

// parseFormats parses a comma separated list of output formats
func parseFormats(s string) (map[string]bool, error) {
	formats := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(strings.ToLower(f))
		switch f {
		case "csv", "pdf", "png":
			formats[f] = true
		case "":
		default:
			return nil, fmt.Errorf("Unknown format %q, should be csv, pdf or png", f)
		}
	}
	if len(formats) == 0 {
		return nil, errors.New("No output formats given")
	}
	return formats, nil
}

// buildParams creates the pipeline parameters from the command
// line settings
func buildParams(polarity, threshold string, percentile float64, resize, wsize, tperc int, k float64, strategy string, n, cell int) (pipeline.PreprocessingParams, pipeline.SamplingParams, error) {
	var pre pipeline.PreprocessingParams
	var samp pipeline.SamplingParams

	pol, err := extract.ParsePolarity(polarity)
	if err != nil {
		return pre, samp, err
	}
	method, err := pipeline.ParseThresholdMethod(threshold)
	if err != nil {
		return pre, samp, err
	}
	if resize < 0 {
		return pre, samp, fmt.Errorf("Invalid resize %d, should be 0 or more", resize)
	}

	pre = pipeline.PreprocessingParams{
		Polarity:         pol,
		Resize:           image.Point{resize, resize},
		Percentile:       percentile,
		Threshold:        method,
		WindowSize:       wsize,
		ThresholdPercent: tperc,
		SauvolaK:         k,
	}

	var s sample.Strategy
	switch strategy {
	case "grid":
		s, err = sample.ParseStrategy(strategy, cell)
		if g, ok := s.(sample.Grid); ok {
			g.MaxUnsampled = n
			s = g
		}
	default:
		s, err = sample.ParseStrategy(strategy, n)
	}
	if err != nil {
		return pre, samp, err
	}
	samp = pipeline.SamplingParams{Strategy: s}

	return pre, samp, nil
}

// exportName turns a path relative to the input directory into a
// name to save outputs under, e.g. "a/logo.png" becomes "a_logo"
func exportName(rel string, withExt bool) string {
	ext := filepath.Ext(rel)
	name := strings.TrimSuffix(filepath.ToSlash(rel), ext)
	name = strings.ReplaceAll(name, "/", "_")
	if withExt && ext != "" {
		name += "_" + strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	return name
}

// exportNames finds a unique name for the outputs of each image,
// from its path relative to root. Images whose names would clash,
// like logo.png and logo.jpg, keep their extension in the name.
func exportNames(root string, paths []string) ([]string, error) {
	rels := make([]string, len(paths))
	seen := make(map[string]int)
	for i, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			rel = filepath.Base(path)
		}
		rels[i] = rel
		seen[exportName(rel, false)]++
	}

	names := make([]string, len(paths))
	used := make(map[string]string)
	for i, rel := range rels {
		name := exportName(rel, false)
		if seen[name] > 1 {
			name = exportName(rel, true)
		}
		if prev, ok := used[name]; ok {
			return nil, fmt.Errorf("Images %s and %s would both be saved as %s", prev, paths[i], name)
		}
		used[name] = paths[i]
		names[i] = name
	}
	return names, nil
}

// exportCoords saves coords in each of the requested formats to
// outdir, named after the image, adding a page to pdf if it is set.
// The paths of the files written are returned.
func exportCoords(name string, out *rasterdrone.CoordinateOutput, coords []rasterdrone.Coordinate, outdir string, opts exportOpts, pdf *rasterdrone.LayoutPDF) ([]string, error) {
	points, err := rasterdrone.Normalize(coords, opts.size)
	if err != nil {
		return nil, fmt.Errorf("Error normalising coordinates: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("No points found in %s", name)
	}

	var written []string

	if opts.formats["csv"] {
		fn := filepath.Join(outdir, name+".csv")
		f, err := os.Create(fn)
		if err != nil {
			return written, fmt.Errorf("Error creating file %s: %v", fn, err)
		}
		defer f.Close()
		err = rasterdrone.WriteCSV(f, points, opts.unit)
		if err != nil {
			return written, fmt.Errorf("Error writing %s: %v", fn, err)
		}
		written = append(written, fn)
	}

	if opts.formats["png"] {
		fn := filepath.Join(outdir, name+".graph.png")
		f, err := os.Create(fn)
		if err != nil {
			return written, fmt.Errorf("Error creating file %s: %v", fn, err)
		}
		defer f.Close()
		err = rasterdrone.Graph(coords, out.Width, out.Height, name, f)
		if err != nil {
			return written, fmt.Errorf("Error graphing %s: %v", fn, err)
		}
		written = append(written, fn)
	}

	if pdf != nil {
		err = pdf.AddLayout(points, opts.unit, name)
		if err != nil {
			return written, fmt.Errorf("Error adding %s to pdf: %v", name, err)
		}
	}

	return written, nil
}

// processImages runs each image through the pipeline and exports
// the results, returning the number of images which were exported
// and the paths of every file written. Outputs are named after each
// image's path relative to root.
func processImages(ctx context.Context, root string, paths []string, p *pipeline.Pipeline, outdir string, opts exportOpts, logger *zerolog.Logger) (int, []string, error) {
	names, err := exportNames(root, paths)
	if err != nil {
		return 0, nil, err
	}

	var pdf *rasterdrone.LayoutPDF
	if opts.formats["pdf"] {
		pdf = &rasterdrone.LayoutPDF{}
		err := pdf.Setup()
		if err != nil {
			return 0, nil, fmt.Errorf("Error setting up pdf: %v", err)
		}
	}

	done := 0
	var written []string
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return done, written, ctx.Err()
		default:
		}

		logger.Info().Str("image", path).Msg("Processing")

		img, err := pipeline.DecodeImage(path)
		if err != nil {
			return done, written, err
		}
		p.SetImage(img)
		_, _, err = p.Update()
		if err != nil {
			return done, written, fmt.Errorf("Error processing %s: %w", path, err)
		}

		coords := p.Coordinates()
		if len(coords) == 0 {
			logger.Warn().Str("image", path).Msg("Skipping export, as no points were found")
			continue
		}
		files, err := exportCoords(names[i], p.Intermediate(), coords, outdir, opts, pdf)
		written = append(written, files...)
		if errors.Is(err, rasterdrone.ErrZeroRange) {
			logger.Warn().Str("image", path).Msg("Skipping export, as all points are in the same place")
			continue
		}
		if err != nil {
			return done, written, err
		}
		done++
	}

	if pdf != nil && done > 0 {
		fn := filepath.Join(outdir, "layouts.pdf")
		err := pdf.Save(fn)
		if err != nil {
			return done, written, fmt.Errorf("Error saving pdf %s: %v", fn, err)
		}
		written = append(written, fn)
	}

	return done, written, nil
}

// manageStorage downloads, removes or lists uploaded files, writing
// a summary of what was done to w
func manageStorage(conn Storer, get, rm string, ls bool, outdir string, w io.Writer) error {
	if get != "" {
		if outdir == "" {
			outdir = "."
		}
		paths, err := pipeline.DownloadAll(outdir, get, conn)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Downloaded %d files to %s\n", len(paths), outdir)
	}

	if rm != "" {
		n, err := pipeline.RemoveStored(rm, conn)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Removed %d files for %s\n", n, rm)
	}

	if ls {
		sets, err := pipeline.ListStored(conn)
		if err != nil {
			return err
		}
		for _, s := range sets {
			fmt.Fprintf(w, "%s\t%d files\t%s\n", s.Name, s.Files, s.Date.Format(time.RFC3339))
		}
	}

	return nil
}

func main() {
	verbose := flag.Bool("v", false, "verbose")
	gui := flag.Bool("gui", false, "open a previewer window for an image")
	n := flag.Int("n", 1000, "number of points to sample (grid sampling leaves this many or fewer unsampled)")
	strategy := flag.String("s", "farthest", "sampling strategy: farthest or grid")
	cell := flag.Int("cell", 10, "cell size in pixels for grid sampling")
	percentile := flag.Float64("p", 0.5, "fraction of the brightest pixels to keep, from 0 to 1")
	threshold := flag.String("threshold", "bradley", "thresholding to apply before extraction: none, bradley or sauvola")
	wsize := flag.Int("w", 50, "window size for thresholding")
	tperc := flag.Int("t", 15, "threshold percent for bradley thresholding")
	ksize := flag.Float64("k", 0.5, "k for sauvola thresholding")
	wipe := flag.Bool("wipe", false, "clear dark margins at the edges of images after thresholding")
	resize := flag.Int("resize", 256, "size of the box to shrink images to fit within before extraction (0 to disable)")
	polarity := flag.String("polarity", "blackonwhite", "image polarity: blackonwhite or whiteonblack")
	size := flag.Float64("size", 100, "physical size of the longest side of the layout")
	unitname := flag.String("unit", "m", "physical unit: m, cm, mm or ft")
	formatlist := flag.String("f", "csv,pdf,png", "comma separated list of formats to save")
	conntype := flag.String("c", "local", "storage type to use: local or aws")
	name := flag.String("o", "", "name to upload saved files under")
	get := flag.String("get", "", "name of uploaded files to download")
	rm := flag.String("rm", "", "name of uploaded files to remove from storage")
	ls := flag.Bool("ls", false, "list the names of uploaded files in storage")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	storing := *get != "" || *rm != "" || *ls
	switch {
	case storing && flag.NArg() > 1,
		*gui && flag.NArg() > 1,
		!storing && !*gui && (flag.NArg() < 1 || flag.NArg() > 2):
		flag.Usage()
		os.Exit(1)
	}

	var conn Storer
	if storing || *name != "" {
		switch *conntype {
		case "local":
			conn = &rasterdrone.LocalConn{Logger: &logger}
		case "aws":
			conn = &rasterdrone.AwsConn{Logger: &logger}
		default:
			logger.Fatal().Str("type", *conntype).Msg("Unknown connection type")
		}
		conn.Log("Setting up session")
		err := conn.Init()
		if err != nil {
			logger.Fatal().Err(err).Msg("Error setting up connection")
		}
		conn.Log("Finished setting up session")
	}

	if storing {
		err := manageStorage(conn, *get, *rm, *ls, flag.Arg(0), os.Stdout)
		if err != nil {
			logger.Fatal().Err(err).Msg("Error managing storage")
		}
		return
	}

	pre, samp, err := buildParams(*polarity, *threshold, *percentile, *resize, *wsize, *tperc, *ksize, *strategy, *n, *cell)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid settings")
	}
	pre.Wipe = *wipe
	unit, err := rasterdrone.ParseUnit(*unitname)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid settings")
	}
	formats, err := parseFormats(*formatlist)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid settings")
	}

	p := pipeline.New()
	p.Preprocessing = pre
	p.Sampling = samp
	p.Logger = &logger

	if *gui {
		err = startGui(&logger, p, flag.Arg(0))
		if err != nil {
			logger.Fatal().Err(err).Msg("Error running previewer")
		}
		return
	}

	ctx := context.Background()

	in := flag.Arg(0)
	outdir := "."
	if flag.NArg() > 1 {
		outdir = flag.Arg(1)
	}
	err = os.MkdirAll(outdir, 0755)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", outdir).Msg("Error creating output directory")
	}

	root := filepath.Dir(in)
	paths := []string{in}
	info, err := os.Stat(in)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error opening input")
	}
	if info.IsDir() {
		root = in
		err = pipeline.CheckImages(ctx, in)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", in).Msg("Error with images")
		}
		paths, err = pipeline.ImageFiles(ctx, in)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", in).Msg("Error finding images")
		}
	}

	opts := exportOpts{size: *size, unit: unit, formats: formats}
	done, written, err := processImages(ctx, root, paths, p, outdir, opts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error processing images")
	}
	logger.Info().Int("images", done).Str("dir", outdir).Msg("Finished")

	if conn != nil {
		err = pipeline.UploadFiles(ctx, written, *name, conn)
		if err != nil {
			logger.Fatal().Err(err).Msg("Error uploading")
		}
		logger.Info().Str("name", *name).Msg("Uploaded")
	}
}
