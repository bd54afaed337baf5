// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package rasterdrone

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const graphWidth = 1920
const graphHeight = 1920
const dotWidth = 4

// graphValues converts coordinates to graph values, flipping y so
// that row 0 of an image of the given height is at height-1
func graphValues(coords []Coordinate, height uint32) ([]float64, []float64) {
	var xvalues, yvalues []float64
	for _, c := range coords {
		xvalues = append(xvalues, float64(c.X))
		yvalues = append(yvalues, float64(height)-1-float64(c.Y))
	}
	return xvalues, yvalues
}

// Graph creates a scatter graph of coordinates taken from an image
// of the given width and height, as a PNG. The y axis is flipped so
// that the points appear the same way up as in the image.
func Graph(coords []Coordinate, width, height uint32, title string, w io.Writer) error {
	if len(coords) == 0 {
		return errors.New("No coordinates to graph")
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("Invalid image dimensions %dx%d", width, height)
	}

	xvalues, yvalues := graphValues(coords, height)

	points := chart.ContinuousSeries{
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    dotWidth,
			DotColor:    drawing.ColorFromHex("ffcc80"),
		},
		XValues: xvalues,
		YValues: yvalues,
	}

	// keep the graph the same shape as the image
	gw, gh := graphWidth, graphHeight
	if width > height {
		gh = int(float64(graphHeight) * float64(height) / float64(width))
	} else {
		gw = int(float64(graphWidth) * float64(width) / float64(height))
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%d points)", title, len(coords)),
		Width:  gw,
		Height: gh,
		TitleStyle: chart.Style{
			FontColor: drawing.ColorWhite,
		},
		Background: chart.Style{
			FillColor: drawing.ColorBlack,
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorFromHex("101014"),
		},
		XAxis: chart.XAxis{
			Name: "x",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: float64(width),
			},
		},
		YAxis: chart.YAxis{
			Name: "y",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: float64(height),
			},
		},
		Series: []chart.Series{points},
	}
	return graph.Render(chart.PNG, w)
}
