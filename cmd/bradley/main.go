// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// bradley binarizes an image with Bradley's adaptive thresholding,
// or Sauvola's if -k is given.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/rs/zerolog"
	"rescribe.xyz/rasterdrone/internal/pipeline"
	"rescribe.xyz/rasterdrone/preproc"
)

const usage = `Usage: bradley [-w num] [-t num] [-k num] [-wipe thresh] [-wipew num] inimg outimg

Binarizes an image using Bradley's adaptive thresholding, which copes
well with uneven lighting. If -k is set Sauvola's algorithm is used
instead. Dark margins can then be wiped with -wipe. The result is saved
as a png.
`

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	wsize := flag.Int("w", 50, "Window size")
	tperc := flag.Int("t", 15, "Threshold percent for bradley algorithm")
	ksize := flag.Float64("k", 0, "K for sauvola algorithm (0 to use bradley)")
	wipe := flag.Float64("wipe", 0, "Wipe dark margins, using this threshold for the proportion of black pixels below which a window is determined to be the edge (0 to disable)")
	wipewsize := flag.Int("wipew", 5, "Window size for margin wiping")
	flag.Parse()
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	img, err := pipeline.DecodeImage(flag.Arg(0))
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not read image")
	}
	gray := preproc.ToGray(img)

	var thresh *image.Gray
	if *ksize > 0 {
		thresh, err = preproc.Sauvola(gray, *ksize, *wsize)
	} else {
		thresh, err = preproc.Bradley(gray, *wsize, *tperc)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not binarize image")
	}

	if *wipe > 0 {
		thresh, err = preproc.Wipe(thresh, *wipewsize, *wipe)
		if err != nil {
			logger.Fatal().Err(err).Msg("Could not wipe image")
		}
	}

	f, err := os.Create(flag.Arg(1))
	if err != nil {
		logger.Fatal().Err(err).Str("file", flag.Arg(1)).Msg("Could not create file")
	}
	defer f.Close()
	err = png.Encode(f, thresh)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not encode image")
	}
}
