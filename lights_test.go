// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package rasterdrone

import (
	"image/color"
	"testing"
)

func TestRenderLights(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	amber := color.RGBA{200, 100, 50, 255}

	cases := []struct {
		name   string
		coords []Coordinate
		lights Lights
		x, y   int
		want   color.RGBA
	}{
		{"pixel", []Coordinate{{1, 1}}, Lights{0, 1, white}, 1, 1, white},
		{"pixelunlit", []Coordinate{{1, 1}}, Lights{0, 1, white}, 2, 1, black},
		{"outside", []Coordinate{{9, 9}}, Lights{0, 1, white}, 4, 4, black},
		{"centre", []Coordinate{{4, 4}}, Lights{3, 1, amber}, 4, 4, amber},
		{"falloff", []Coordinate{{4, 4}}, Lights{3, 1, amber}, 5, 4, color.RGBA{89, 44, 22, 255}},
		{"edge", []Coordinate{{4, 4}}, Lights{3, 1, amber}, 7, 4, black},
		{"clamped", []Coordinate{{4, 4}}, Lights{3, 5, amber}, 4, 4, amber},
		{"overlap", []Coordinate{{2, 2}, {2, 2}}, Lights{0, 0.6, amber}, 2, 2, amber},
		{"dim", []Coordinate{{2, 2}}, Lights{0, 0.5, amber}, 2, 2, color.RGBA{100, 50, 25, 255}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img := RenderLights(8, 8, c.coords, c.lights)
			if got := img.RGBAAt(c.x, c.y); got != c.want {
				t.Errorf("Expected %v at (%d, %d), got %v", c.want, c.x, c.y, got)
			}
		})
	}
}

func TestRenderLightsSize(t *testing.T) {
	img := RenderLights(5, 3, nil, DefaultLights())
	b := img.Bounds()
	if b.Dx() != 5 || b.Dy() != 3 {
		t.Fatalf("Expected a 5x3 image, got %v", b)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			if got := img.RGBAAt(x, y); got != (color.RGBA{0, 0, 0, 255}) {
				t.Errorf("Expected black at (%d, %d), got %v", x, y, got)
			}
		}
	}
}
