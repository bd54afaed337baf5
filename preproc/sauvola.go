// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package preproc

import (
	"image"

	rescribepreproc "rescribe.xyz/preproc"
)

// Sauvola binarizes an image with Sauvola's algorithm, see paper
// "Adaptive document image binarization" (2000), using integral
// images. The window size is made odd if it isn't already.
func Sauvola(img *image.Gray, ksize float64, windowsize int) (*image.Gray, error) {
	if windowsize <= 0 {
		return nil, ErrInvalidWindow
	}
	if windowsize%2 == 0 {
		windowsize++
	}
	return rescribepreproc.IntegralSauvola(img, ksize, windowsize), nil
}
