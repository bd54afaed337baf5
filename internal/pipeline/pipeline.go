// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// pipeline is a package used by the rasterdrone command, which
// handles turning an image into sampled coordinates, rerunning only
// the parts which are affected by a change. Note that it is
// considered an "internal" package, not intended for external use,
// and no guarantee is made of the stability of any interfaces
// provided.
package pipeline

import (
	"fmt"
	"image"

	"github.com/rs/zerolog"
	"rescribe.xyz/rasterdrone"
	"rescribe.xyz/rasterdrone/extract"
	"rescribe.xyz/rasterdrone/preproc"
	"rescribe.xyz/rasterdrone/sample"
)

type PreprocessFunc func(image.Image, PreprocessingParams) (*rasterdrone.CoordinateOutput, error)
type SampleFunc func(*rasterdrone.CoordinateOutput, SamplingParams) ([]rasterdrone.Coordinate, error)

// preprocessingKey identifies a preprocessing run. The generation
// changes whenever a new image is set, so a new image is always
// preprocessed even if the parameters are unchanged.
type preprocessingKey struct {
	params     PreprocessingParams
	generation uint64
}

// Pipeline holds an image and the parameters to process it with,
// along with the cached results of each stage. It is not safe for
// concurrent use.
type Pipeline struct {
	Preprocessing PreprocessingParams
	Sampling      SamplingParams

	// these may be set before the first Update, or left to defaults
	Logger     *zerolog.Logger
	Preprocess PreprocessFunc
	Sample     SampleFunc

	img        image.Image
	generation uint64
	resample   bool
	pre        Stage[preprocessingKey, *rasterdrone.CoordinateOutput]
	samp       Stage[SamplingParams, []rasterdrone.Coordinate]
}

// New returns a Pipeline with the default parameters and no image
func New() *Pipeline {
	return &Pipeline{
		Preprocessing: DefaultPreprocessing(),
		Sampling:      DefaultSampling(),
	}
}

func (p *Pipeline) setDefaults() {
	if p.Logger == nil {
		l := zerolog.Nop()
		p.Logger = &l
	}
	if p.Preprocess == nil {
		p.Preprocess = RunPreprocessing
	}
	if p.Sample == nil {
		p.Sample = RunSampling
	}
}

// SetImage replaces the image to be processed, which will be
// processed fully on the next Update. A nil img unloads the image.
func (p *Pipeline) SetImage(img image.Image) {
	p.img = img
	p.generation++
}

// HasImage reports whether an image is loaded
func (p *Pipeline) HasImage() bool {
	return p.img != nil
}

// Generation returns a number which changes each time SetImage is
// called
func (p *Pipeline) Generation() uint64 {
	return p.generation
}

// Update brings the outputs up to date with the current image and
// parameters, running each stage at most once. It returns whether
// preprocessing and sampling were run. If a stage fails its error is
// returned, and the outputs from before the call are kept.
func (p *Pipeline) Update() (bool, bool, error) {
	p.setDefaults()

	key := preprocessingKey{params: p.Preprocessing, generation: p.generation}
	out, prerun, err := p.pre.Run(key, false, func(k preprocessingKey) (*rasterdrone.CoordinateOutput, error) {
		if p.img == nil {
			return nil, nil
		}
		p.Logger.Debug().
			Uint64("generation", k.generation).
			Stringer("threshold", k.params.Threshold).
			Float64("percentile", k.params.Percentile).
			Msg("Preprocessing")
		return p.Preprocess(p.img, k.params)
	})
	if err != nil {
		return prerun, false, fmt.Errorf("Error preprocessing image: %w", err)
	}

	// sampling must run against any new preprocessing output, even
	// if an earlier attempt to do so failed
	if prerun {
		p.resample = true
	}
	coords, samprun, err := p.samp.Run(p.Sampling, p.resample, func(s SamplingParams) ([]rasterdrone.Coordinate, error) {
		if out == nil {
			return []rasterdrone.Coordinate{}, nil
		}
		p.Logger.Debug().Int("coordinates", out.Len()).Msg("Sampling")
		return p.Sample(out, s)
	})
	if err != nil {
		return prerun, samprun, fmt.Errorf("Error sampling coordinates: %w", err)
	}
	p.resample = false

	if samprun {
		p.Logger.Info().
			Int("extracted", out.Len()).
			Int("sampled", len(coords)).
			Msg("Updated coordinates")
	}

	return prerun, samprun, nil
}

// Intermediate returns all the coordinates extracted from the image
// by the last successful preprocessing, or nil if there is no image.
// It should not be modified.
func (p *Pipeline) Intermediate() *rasterdrone.CoordinateOutput {
	return p.pre.Output()
}

// Coordinates returns the sampled coordinates from the last
// successful sampling. It should not be modified.
func (p *Pipeline) Coordinates() []rasterdrone.Coordinate {
	c := p.samp.Output()
	if c == nil {
		return []rasterdrone.Coordinate{}
	}
	return c
}

// RunPreprocessing thresholds, wipes and resizes img as set in
// params, and extracts the coordinates of its brightest pixels
func RunPreprocessing(img image.Image, params PreprocessingParams) (*rasterdrone.CoordinateOutput, error) {
	var err error
	switch params.Threshold {
	case Bradley:
		img, err = preproc.Bradley(preproc.ToGray(img), params.WindowSize, params.ThresholdPercent)
	case Sauvola:
		img, err = preproc.Sauvola(preproc.ToGray(img), params.SauvolaK, params.WindowSize)
	}
	if err != nil {
		return nil, fmt.Errorf("Error thresholding with %s: %w", params.Threshold, err)
	}

	if params.Wipe {
		img, err = preproc.Wipe(preproc.ToGray(img), wipeWindow, wipeThreshold)
		if err != nil {
			return nil, fmt.Errorf("Error wiping margins: %w", err)
		}
	}

	img = preproc.Thumbnail(img, params.Resize)

	coords := extract.Coordinates(img, params.Percentile, params.Polarity)
	b := img.Bounds()
	return rasterdrone.NewCoordinateOutput(coords, uint32(b.Dx()), uint32(b.Dy()))
}

// RunSampling samples the coordinates of out as set in params. A nil
// out gives no coordinates.
func RunSampling(out *rasterdrone.CoordinateOutput, params SamplingParams) ([]rasterdrone.Coordinate, error) {
	if out == nil {
		return []rasterdrone.Coordinate{}, nil
	}
	return sample.Sample(out.Coords, params.Strategy)
}
