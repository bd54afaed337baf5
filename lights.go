// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package rasterdrone

import (
	"image"
	"image/color"
	"math"
)

// Lights describes how each point is drawn by RenderLights, as a
// glow which fades out to nothing at Radius pixels from the point
type Lights struct {
	Radius    float64
	Intensity float64
	Color     color.RGBA
}

// DefaultLights returns a warm white glow
func DefaultLights() Lights {
	return Lights{
		Radius:    10,
		Intensity: 1,
		Color:     color.RGBA{255, 204, 128, 255},
	}
}

// RenderLights draws each coordinate as a light on a black image of
// the given size. Overlapping lights add together, up to full
// brightness. A Radius below 1 draws single pixels.
func RenderLights(width, height uint32, coords []Coordinate, l Lights) *image.RGBA {
	w, h := int(width), int(height)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	acc := make([]float64, w*h)

	r := int(math.Ceil(l.Radius))
	for _, c := range coords {
		cx, cy := int(c.X), int(c.Y)
		if cx >= w || cy >= h {
			continue
		}
		if l.Radius < 1 {
			acc[cy*w+cx] += l.Intensity
			continue
		}
		for y := max(0, cy-r); y <= min(h-1, cy+r); y++ {
			for x := max(0, cx-r); x <= min(w-1, cx+r); x++ {
				d := math.Hypot(float64(x-cx), float64(y-cy))
				if d >= l.Radius {
					continue
				}
				f := 1 - d/l.Radius
				acc[y*w+x] += l.Intensity * f * f
			}
		}
	}

	for i, v := range acc {
		if v <= 0 {
			img.Pix[i*4+3] = 255
			continue
		}
		if v > 1 {
			v = 1
		}
		img.Pix[i*4] = uint8(math.Round(float64(l.Color.R) * v))
		img.Pix[i*4+1] = uint8(math.Round(float64(l.Color.G) * v))
		img.Pix[i*4+2] = uint8(math.Round(float64(l.Color.B) * v))
		img.Pix[i*4+3] = 255
	}

	return img
}
