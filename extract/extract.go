// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// extract finds the coordinates of the brightest pixels in an
// image.
package extract

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"rescribe.xyz/rasterdrone"
)

// Polarity describes whether the subject of an image is brighter
// or darker than its background
type Polarity int

const (
	// BlackOnWhite images have dark marks on a bright background,
	// so darkness is what is ranked
	BlackOnWhite Polarity = iota
	// WhiteOnBlack images have bright marks on a dark background
	WhiteOnBlack
)

func (p Polarity) String() string {
	switch p {
	case BlackOnWhite:
		return "blackonwhite"
	case WhiteOnBlack:
		return "whiteonblack"
	}
	return fmt.Sprintf("Polarity(%d)", int(p))
}

// ParsePolarity returns the Polarity named by s
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "blackonwhite":
		return BlackOnWhite, nil
	case "whiteonblack":
		return WhiteOnBlack, nil
	}
	return 0, fmt.Errorf("Unknown polarity %q, should be blackonwhite or whiteonblack", s)
}

// Brightness returns the perceptual brightness of a colour, from 0
// to 255, weighted by its opacity. For BlackOnWhite the luminance
// is inverted first, so dark opaque pixels are the brightest.
func Brightness(c color.Color, p Polarity) float64 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	// weights are in thousandths so that white is exactly 255
	lum := 299*int(n.R) + 587*int(n.G) + 114*int(n.B)
	if p == BlackOnWhite {
		lum = 255000 - lum
	}
	return float64(lum) / 1000 * (float64(n.A) / 255)
}

type pixel struct {
	brightness float64
	coord      rasterdrone.Coordinate
}

// Coordinates returns the coordinates of the brightest fraction of
// pixels in an image, brightest first. Pixels with no brightness
// are never included, and percentile is clamped to between 0 and 1.
// Pixels of equal brightness are kept in the order they appear,
// row by row. Coordinates are relative to the top left of the image.
func Coordinates(img image.Image, percentile float64, p Polarity) []rasterdrone.Coordinate {
	if math.IsNaN(percentile) || percentile < 0 {
		percentile = 0
	}
	if percentile > 1 {
		percentile = 1
	}

	b := img.Bounds()
	var pixels []pixel
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := Brightness(img.At(x, y), p)
			if v > 0 {
				c := rasterdrone.Coordinate{X: uint32(x - b.Min.X), Y: uint32(y - b.Min.Y)}
				pixels = append(pixels, pixel{v, c})
			}
		}
	}

	sort.SliceStable(pixels, func(i, j int) bool { return pixels[i].brightness > pixels[j].brightness })

	n := int(math.Round(float64(len(pixels)) * percentile))
	coords := make([]rasterdrone.Coordinate, n)
	for i := range coords {
		coords[i] = pixels[i].coord
	}
	return coords
}
