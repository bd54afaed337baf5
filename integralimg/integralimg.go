// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// integralimg provides summed-area tables of grayscale images,
// which allow the sum of any rectangular area of pixels to be
// found with just four lookups.
package integralimg

import (
	"image"
)

// I is the Integral Image. The value at [y][x] is the sum of all
// pixels in the rectangle from (0, 0) to (x, y) inclusive, with
// coordinates relative to the top left of the source image.
type I [][]uint64

// Window is a part of an Integral Image
type Window struct {
	sum    uint64
	width  int
	height int
}

// ToIntegralImg creates an integral image
func ToIntegralImg(img *image.Gray) I {
	b := img.Bounds()
	integral := make(I, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		newrow := make([]uint64, b.Dx())
		var rowsum uint64
		for x := 0; x < b.Dx(); x++ {
			rowsum += uint64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			newrow[x] = rowsum
			if y > 0 {
				newrow[x] += integral[y-1][x]
			}
		}
		integral[y] = newrow
	}
	return integral
}

// Width returns the number of columns in the Integral Image
func (i I) Width() int {
	if len(i) == 0 {
		return 0
	}
	return len(i[0])
}

// Height returns the number of rows in the Integral Image
func (i I) Height() int {
	return len(i)
}

// Total returns the sum of every pixel in the source image, which
// is the bottom right value of the Integral Image.
func (i I) Total() uint64 {
	if i.Height() == 0 || i.Width() == 0 {
		return 0
	}
	return i[i.Height()-1][i.Width()-1]
}

// Sum returns the sum of pixels in the rectangle from (x1, y1) to
// (x2, y2), inclusive of both corners. The corners must be inside
// the image, with x1 <= x2 and y1 <= y2.
func (i I) Sum(x1, y1, x2, y2 int) uint64 {
	var left, above, aboveleft uint64
	if x1 > 0 {
		left = i[y2][x1-1]
	}
	if y1 > 0 {
		above = i[y1-1][x2]
	}
	if x1 > 0 && y1 > 0 {
		aboveleft = i[y1-1][x1-1]
	}
	return i[y2][x2] + aboveleft - left - above
}

// GetWindow gets the sum of the part of an Integral Image which
// extends size/2 pixels in each direction from (x, y), clipped to
// the image edges, plus the dimensions of the part.
func (i I) GetWindow(x, y, size int) Window {
	step := size / 2

	minx, miny := 0, 0
	maxy := i.Height() - 1
	maxx := i.Width() - 1

	if y > step {
		miny = y - step
	}
	if x > step {
		minx = x - step
	}

	if maxy > (y + step) {
		maxy = y + step
	}
	if maxx > (x + step) {
		maxx = x + step
	}

	return Window{i.Sum(minx, miny, maxx, maxy), maxx - minx, maxy - miny}
}

// Sum returns the sum of all pixels in a Window
func (w Window) Sum() uint64 {
	return w.sum
}

// Size returns the size of a Window, measured as the distance
// between its corners rather than the count of pixels within it,
// as in Bradley and Roth's formulation.
func (w Window) Size() int {
	return w.width * w.height
}

// Pixels returns the number of pixels within a Window
func (w Window) Pixels() int {
	return (w.width + 1) * (w.height + 1)
}

// Proportion returns the proportion of pixels in a Window which are
// black, assuming the image it came from is binary
func (w Window) Proportion() float64 {
	return 1 - float64(w.sum)/float64(255*w.Pixels())
}

// GetVerticalWindow gets the sum of the full height strip of an
// Integral Image which is width pixels wide, starting at x
func (i I) GetVerticalWindow(x, width int) Window {
	maxx := x + width - 1
	if maxx > i.Width()-1 {
		maxx = i.Width() - 1
	}
	maxy := i.Height() - 1
	return Window{i.Sum(x, 0, maxx, maxy), maxx - x, maxy}
}

// GetHorizontalWindow gets the sum of the full width strip of an
// Integral Image which is height pixels high, starting at y
func (i I) GetHorizontalWindow(y, height int) Window {
	maxy := y + height - 1
	if maxy > i.Height()-1 {
		maxy = i.Height() - 1
	}
	maxx := i.Width() - 1
	return Window{i.Sum(0, y, maxx, maxy), maxx, maxy - y}
}
