// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package preproc

import (
	"errors"
	"image"

	"rescribe.xyz/rasterdrone/integralimg"
)

var ErrInvalidProportion = errors.New("proportion must be between 0 and 1")

// stripper returns the proportion of black pixels in a strip
// starting at pos which is size pixels across
type stripper func(pos int, size int) float64

// findbestedge goes through every line from pos to pos+size to
// find the one with the lowest proportion of black pixels
func findbestedge(prop stripper, pos int, size int) int {
	best := pos
	bestprop := prop(pos, 1)
	for i := pos + 1; i < pos+size; i++ {
		p := prop(i, 1)
		if p < bestprop {
			best = i
			bestprop = p
		}
	}
	return best
}

// findedges finds the edges of the main content along a dimension
// of length n, by moving a window of wsize from the middle outwards
// in both directions, stopping when it reaches a point at which
// there is no higher a proportion of black pixels than thresh. The
// content is from low up to (but excluding) high.
func findedges(prop stripper, n int, wsize int, thresh float64) (int, int) {
	low, high := 0, n

	for i := n / 2; i <= n-wsize; i++ {
		if prop(i, wsize) <= thresh {
			high = findbestedge(prop, i, wsize)
			break
		}
	}

	for i := n/2 - wsize; i >= 0; i-- {
		if prop(i, wsize) <= thresh {
			low = findbestedge(prop, i, wsize)
			break
		}
	}

	return low, high
}

// Wipe fills the parts of a binary image which fall outside the
// main content with white, first at the sides and then at the top
// and bottom. This clears dark margins such as the edges of a
// photographed page. thresh is the proportion of black pixels in a
// window of wsize pixels below which it is considered outside the
// content.
func Wipe(img *image.Gray, wsize int, thresh float64) (*image.Gray, error) {
	if wsize <= 0 {
		return nil, ErrInvalidWindow
	}
	if thresh < 0 || thresh > 1 {
		return nil, ErrInvalidProportion
	}

	b := img.Bounds()
	new := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if b.Empty() {
		return new, nil
	}
	for y := 0; y < b.Dy(); y++ {
		copy(new.Pix[y*new.Stride:y*new.Stride+b.Dx()], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
	}

	integral := integralimg.ToIntegralImg(new)
	left, right := findedges(func(x, w int) float64 {
		return integral.GetVerticalWindow(x, w).Proportion()
	}, b.Dx(), wsize, thresh)
	whiten(new, image.Rect(0, 0, left, b.Dy()))
	whiten(new, image.Rect(right, 0, b.Dx(), b.Dy()))

	integral = integralimg.ToIntegralImg(new)
	top, bottom := findedges(func(y, h int) float64 {
		return integral.GetHorizontalWindow(y, h).Proportion()
	}, b.Dy(), wsize, thresh)
	whiten(new, image.Rect(0, 0, b.Dx(), top))
	whiten(new, image.Rect(0, bottom, b.Dx(), b.Dy()))

	return new, nil
}

// whiten sets every pixel in r to white
func whiten(img *image.Gray, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[img.PixOffset(x, y)] = 255
		}
	}
}
