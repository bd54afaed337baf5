// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package rasterdrone

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrZeroRange = errors.New("all coordinates are at the same position, so cannot be normalised")

// Unit is a physical unit of length
type Unit string

const (
	Metres      Unit = "m"
	Centimetres Unit = "cm"
	Millimetres Unit = "mm"
	Feet        Unit = "ft"
)

// mm is the number of millimetres in each unit
var mm = map[Unit]float64{
	Metres:      1000,
	Centimetres: 10,
	Millimetres: 1,
	Feet:        304.8,
}

// ParseUnit returns the Unit named by s
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if _, ok := mm[u]; !ok {
		return "", fmt.Errorf("Unknown unit %q, should be one of m, cm, mm or ft", s)
	}
	return u, nil
}

// Millimetres converts a length in unit u to millimetres
func (u Unit) Millimetres(v float64) float64 {
	return v * mm[u]
}

// Point is a position in physical space
type Point struct {
	X, Y float64
}

// Normalize maps coordinates into a square with sides of length
// size, preserving their aspect ratio. The largest of the x and y
// ranges of the coordinates spans the full size, and y is flipped
// so that the top of the image becomes the top of the square.
func Normalize(coords []Coordinate, size float64) ([]Point, error) {
	if len(coords) == 0 {
		return []Point{}, nil
	}

	minx, miny := coords[0].X, coords[0].Y
	maxx, maxy := minx, miny
	for _, c := range coords[1:] {
		if c.X < minx {
			minx = c.X
		}
		if c.X > maxx {
			maxx = c.X
		}
		if c.Y < miny {
			miny = c.Y
		}
		if c.Y > maxy {
			maxy = c.Y
		}
	}

	xrange := float64(maxx - minx)
	yrange := float64(maxy - miny)
	r := xrange
	if yrange > r {
		r = yrange
	}
	if r == 0 {
		return nil, ErrZeroRange
	}
	scale := size / r

	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{
			X: float64(c.X-minx) * scale,
			Y: float64(maxy-c.Y) * scale,
		}
	}
	return points, nil
}

// Extent returns the width and height taken up by a set of points,
// measured from the origin
func Extent(points []Point) (float64, float64) {
	var w, h float64
	for _, p := range points {
		if p.X > w {
			w = p.X
		}
		if p.Y > h {
			h = p.Y
		}
	}
	return w, h
}

// WriteCSV writes points as CSV, with a header row naming the
// unit used
func WriteCSV(w io.Writer, points []Point, unit Unit) error {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{"x_" + string(unit), "y_" + string(unit)})
	if err != nil {
		return fmt.Errorf("Error writing csv header: %v", err)
	}
	for _, p := range points {
		err = cw.Write([]string{
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
		})
		if err != nil {
			return fmt.Errorf("Error writing csv row: %v", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
