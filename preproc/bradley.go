// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package preproc

import (
	"errors"
	"image"
	"image/color"

	"rescribe.xyz/rasterdrone/integralimg"
)

var (
	ErrInvalidWindow  = errors.New("window size must be greater than zero")
	ErrInvalidPercent = errors.New("threshold percent must be between 0 and 100")
)

// Bradley binarizes an image using Bradley and Roth's adaptive
// thresholding, see paper "Adaptive Thresholding Using the Integral
// Image" (2007). A pixel becomes black if it is more than t percent
// darker than the average of the window of size s surrounding it,
// and white otherwise.
func Bradley(img *image.Gray, s int, t int) (*image.Gray, error) {
	if s <= 0 {
		return nil, ErrInvalidWindow
	}
	if t < 0 || t > 100 {
		return nil, ErrInvalidPercent
	}

	b := img.Bounds()
	new := image.NewGray(b)
	integral := integralimg.ToIntegralImg(img)

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			w := integral.GetWindow(x, y, s)
			v := uint64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			threshold := w.Sum() * uint64(100-t) / 100
			if v*uint64(w.Size()) <= threshold {
				new.SetGray(b.Min.X+x, b.Min.Y+y, color.Gray{0})
			} else {
				new.SetGray(b.Min.X+x, b.Min.Y+y, color.Gray{255})
			}
		}
	}

	return new, nil
}
