// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package rasterdrone

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var ErrOutOfBounds = errors.New("coordinate outside of image")

// Coordinate is the position of a pixel in an image
type Coordinate struct {
	X, Y uint32
}

// Equal reports whether two coordinates refer to the same pixel
func (c Coordinate) Equal(o Coordinate) bool {
	return c == o
}

// DistanceSquared returns the squared Euclidean distance between
// two coordinates
func (c Coordinate) DistanceSquared(o Coordinate) uint64 {
	dx := absdiff(c.X, o.X)
	dy := absdiff(c.Y, o.Y)
	return dx*dx + dy*dy
}

func absdiff(a, b uint32) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// CoordinateOutput is a set of coordinates along with the
// dimensions of the image they were taken from. It should not be
// modified once created; use Clone to get a copy to change.
type CoordinateOutput struct {
	Coords        []Coordinate
	Width, Height uint32
}

// NewCoordinateOutput creates a CoordinateOutput, checking that
// every coordinate is within the width and height given
func NewCoordinateOutput(coords []Coordinate, width, height uint32) (*CoordinateOutput, error) {
	for _, c := range coords {
		if c.X >= width || c.Y >= height {
			return nil, fmt.Errorf("%w: %v is not within %dx%d", ErrOutOfBounds, c, width, height)
		}
	}
	return &CoordinateOutput{Coords: coords, Width: width, Height: height}, nil
}

// Clone returns a deep copy of the CoordinateOutput
func (o *CoordinateOutput) Clone() *CoordinateOutput {
	if o == nil {
		return nil
	}
	coords := make([]Coordinate, len(o.Coords))
	copy(coords, o.Coords)
	return &CoordinateOutput{Coords: coords, Width: o.Width, Height: o.Height}
}

// Len returns the number of coordinates, treating a nil
// CoordinateOutput as empty
func (o *CoordinateOutput) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Coords)
}

// CoordinatesToImage creates a black image with a white pixel at
// each coordinate. Coordinates outside the image are skipped.
func CoordinatesToImage(width, height uint32, coords []Coordinate) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, int(width), int(height)))
	for _, c := range coords {
		if c.X < width && c.Y < height {
			img.SetGray(int(c.X), int(c.Y), color.Gray{255})
		}
	}
	return img
}
