// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"image"

	"rescribe.xyz/rasterdrone/extract"
	"rescribe.xyz/rasterdrone/sample"
)

// ThresholdMethod is the binarisation applied before extraction
type ThresholdMethod int

const (
	NoThreshold ThresholdMethod = iota
	Bradley
	Sauvola
)

func (m ThresholdMethod) String() string {
	switch m {
	case NoThreshold:
		return "none"
	case Bradley:
		return "bradley"
	case Sauvola:
		return "sauvola"
	}
	return fmt.Sprintf("ThresholdMethod(%d)", int(m))
}

// ParseThresholdMethod returns the ThresholdMethod named by s
func ParseThresholdMethod(s string) (ThresholdMethod, error) {
	for _, m := range []ThresholdMethod{NoThreshold, Bradley, Sauvola} {
		if m.String() == s {
			return m, nil
		}
	}
	return NoThreshold, fmt.Errorf("Unknown threshold method %q, should be none, bradley or sauvola", s)
}

// Settings for wiping margins
const (
	wipeWindow    = 5
	wipeThreshold = 0.05
)

// PreprocessingParams control how an image is turned into a
// CoordinateOutput. Resize is the box the image is shrunk to fit
// within; a zero Resize leaves the image at its original size. Wipe
// clears dark margins after thresholding.
type PreprocessingParams struct {
	Polarity         extract.Polarity
	Resize           image.Point
	Percentile       float64
	Threshold        ThresholdMethod
	WindowSize       int
	ThresholdPercent int
	SauvolaK         float64
	Wipe             bool
}

// SamplingParams control how the coordinates of a CoordinateOutput
// are reduced
type SamplingParams struct {
	Strategy sample.Strategy
}

func DefaultPreprocessing() PreprocessingParams {
	return PreprocessingParams{
		Polarity:         extract.BlackOnWhite,
		Resize:           image.Point{256, 256},
		Percentile:       0.5,
		Threshold:        Bradley,
		WindowSize:       50,
		ThresholdPercent: 15,
		SauvolaK:         0.5,
	}
}

func DefaultSampling() SamplingParams {
	return SamplingParams{Strategy: sample.FarthestPoint{Count: 1000}}
}
