// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package preproc

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ToGray converts any image to grayscale, with its top left
// corner at (0, 0)
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Thumbnail scales an image down to fit within bound, preserving
// its aspect ratio. Images which already fit, and bounds with a
// zero or negative side, leave the image untouched; images are
// never scaled up.
func Thumbnail(img image.Image, bound image.Point) image.Image {
	b := img.Bounds()
	if bound.X <= 0 || bound.Y <= 0 {
		return img
	}
	if b.Dx() <= bound.X && b.Dy() <= bound.Y {
		return img
	}

	scale := math.Min(float64(bound.X)/float64(b.Dx()), float64(bound.Y)/float64(b.Dy()))
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w > bound.X {
		w = bound.X
	}
	if h > bound.Y {
		h = bound.Y
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
