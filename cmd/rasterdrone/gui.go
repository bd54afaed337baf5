// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
	"rescribe.xyz/rasterdrone"
	"rescribe.xyz/rasterdrone/extract"
	"rescribe.xyz/rasterdrone/internal/pipeline"
	"rescribe.xyz/rasterdrone/sample"
)

const maxPreviewCount = 5000
const maxCellSize = 100

// previewImage renders the sampled coordinates of p as lights, at
// the size of the preprocessed image
func previewImage(p *pipeline.Pipeline, l rasterdrone.Lights) image.Image {
	out := p.Intermediate()
	if out == nil || out.Width == 0 || out.Height == 0 {
		return image.NewGray(image.Rect(0, 0, 1, 1))
	}
	return rasterdrone.RenderLights(out.Width, out.Height, p.Coordinates(), l)
}

// toRGBA converts any colour to a fully opaque color.RGBA
func toRGBA(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
}

// summary describes the current output of p
func summary(p *pipeline.Pipeline) string {
	if !p.HasImage() {
		return "No image loaded"
	}
	out := p.Intermediate()
	return fmt.Sprintf("%d of %d points (%dx%d)", len(p.Coordinates()), out.Len(), out.Width, out.Height)
}

// count returns the number of points a strategy samples, or for
// grid sampling the most which are left unsampled
func count(s sample.Strategy) int {
	switch v := s.(type) {
	case sample.FarthestPoint:
		return v.Count
	case sample.Grid:
		return v.MaxUnsampled
	}
	return 0
}

// cellSize returns the cell size of a Grid strategy, or def for any
// other strategy
func cellSize(s sample.Strategy, def uint32) uint32 {
	if g, ok := s.(sample.Grid); ok {
		return g.CellSize
	}
	return def
}

// strategyFor creates a strategy by name, keeping the count and
// cell size given
func strategyFor(name string, n int, cell uint32) sample.Strategy {
	if name == "grid" {
		return sample.Grid{CellSize: cell, MaxUnsampled: n}
	}
	return sample.FarthestPoint{Count: n}
}

func strategyName(s sample.Strategy) string {
	if _, ok := s.(sample.Grid); ok {
		return "grid"
	}
	return "farthest"
}

// startGui opens a previewer window for an image, which reruns the
// pipeline whenever a setting is changed
func startGui(logger *zerolog.Logger, p *pipeline.Pipeline, path string) error {
	myApp := app.New()
	myWindow := myApp.NewWindow("Rasterdrone Preview")

	lights := rasterdrone.DefaultLights()

	preview := canvas.NewImageFromImage(previewImage(p, lights))
	preview.FillMode = canvas.ImageFillContain
	preview.ScaleMode = canvas.ImageScalePixels
	preview.SetMinSize(fyne.NewSize(512, 512))

	status := widget.NewLabel(summary(p))

	redraw := func() {
		preview.Image = previewImage(p, lights)
		preview.Refresh()
		status.SetText(summary(p))
	}

	refresh := func() {
		prerun, samprun, err := p.Update()
		if err != nil {
			logger.Error().Err(err).Msg("Error updating preview")
			status.SetText(err.Error())
			return
		}
		if !prerun && !samprun {
			return
		}
		redraw()
	}

	load := func(path string) {
		img, err := pipeline.DecodeImage(path)
		if err != nil {
			dialog.ShowError(err, myWindow)
			return
		}
		p.SetImage(img)
		myWindow.SetTitle("Rasterdrone Preview - " + filepath.Base(path))
		refresh()
	}

	openbtn := widget.NewButtonWithIcon("Open image", theme.FolderOpenIcon(), func() {
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				_ = r.Close()
				load(r.URI().Path())
			}
		}, myWindow)
	})

	cell := cellSize(p.Sampling.Strategy, 10)

	countSlider := widget.NewSlider(1, maxPreviewCount)
	countSlider.Step = 1
	countSlider.Value = float64(count(p.Sampling.Strategy))
	countSlider.OnChanged = func(v float64) {
		p.Sampling.Strategy = strategyFor(strategyName(p.Sampling.Strategy), int(v), cell)
		refresh()
	}

	cellSlider := widget.NewSlider(1, maxCellSize)
	cellSlider.Step = 1
	cellSlider.Value = float64(cell)
	cellSlider.OnChanged = func(v float64) {
		cell = uint32(v)
		p.Sampling.Strategy = strategyFor(strategyName(p.Sampling.Strategy), count(p.Sampling.Strategy), cell)
		refresh()
	}

	strategySelect := widget.NewSelect([]string{"farthest", "grid"}, func(s string) {
		p.Sampling.Strategy = strategyFor(s, count(p.Sampling.Strategy), cell)
		refresh()
	})
	strategySelect.Selected = strategyName(p.Sampling.Strategy)

	percSlider := widget.NewSlider(0, 1)
	percSlider.Step = 0.01
	percSlider.Value = p.Preprocessing.Percentile
	percSlider.OnChanged = func(v float64) {
		p.Preprocessing.Percentile = v
		refresh()
	}

	thresholdSelect := widget.NewSelect([]string{"none", "bradley", "sauvola"}, func(s string) {
		m, err := pipeline.ParseThresholdMethod(s)
		if err != nil {
			return
		}
		p.Preprocessing.Threshold = m
		refresh()
	})
	thresholdSelect.Selected = p.Preprocessing.Threshold.String()

	wsizeSlider := widget.NewSlider(1, 200)
	wsizeSlider.Step = 1
	wsizeSlider.Value = float64(p.Preprocessing.WindowSize)
	wsizeSlider.OnChanged = func(v float64) {
		p.Preprocessing.WindowSize = int(v)
		refresh()
	}

	tpercSlider := widget.NewSlider(0, 100)
	tpercSlider.Step = 1
	tpercSlider.Value = float64(p.Preprocessing.ThresholdPercent)
	tpercSlider.OnChanged = func(v float64) {
		p.Preprocessing.ThresholdPercent = int(v)
		refresh()
	}

	wipeCheck := widget.NewCheck("Wipe margins", func(b bool) {
		p.Preprocessing.Wipe = b
		refresh()
	})
	wipeCheck.Checked = p.Preprocessing.Wipe

	polaritySelect := widget.NewSelect([]string{extract.BlackOnWhite.String(), extract.WhiteOnBlack.String()}, func(s string) {
		pol, err := extract.ParsePolarity(s)
		if err != nil {
			return
		}
		p.Preprocessing.Polarity = pol
		refresh()
	})
	polaritySelect.Selected = p.Preprocessing.Polarity.String()

	radiusSlider := widget.NewSlider(0, 20)
	radiusSlider.Step = 0.5
	radiusSlider.Value = lights.Radius
	radiusSlider.OnChanged = func(v float64) {
		lights.Radius = v
		redraw()
	}

	intensitySlider := widget.NewSlider(0.1, 5)
	intensitySlider.Step = 0.1
	intensitySlider.Value = lights.Intensity
	intensitySlider.OnChanged = func(v float64) {
		lights.Intensity = v
		redraw()
	}

	colourbtn := widget.NewButton("Light colour", func() {
		picker := dialog.NewColorPicker("Light colour", "Choose the colour of the lights", func(c color.Color) {
			lights.Color = toRGBA(c)
			redraw()
		}, myWindow)
		picker.Advanced = true
		picker.SetColor(lights.Color)
		picker.Show()
	})

	form := widget.NewForm(
		widget.NewFormItem("Sampling", strategySelect),
		widget.NewFormItem("Points", countSlider),
		widget.NewFormItem("Grid cell", cellSlider),
		widget.NewFormItem("Percentile", percSlider),
		widget.NewFormItem("Polarity", polaritySelect),
		widget.NewFormItem("Threshold", thresholdSelect),
		widget.NewFormItem("Window", wsizeSlider),
		widget.NewFormItem("Percent", tpercSlider),
		widget.NewFormItem("", wipeCheck),
		widget.NewFormItem("Light radius", radiusSlider),
		widget.NewFormItem("Intensity", intensitySlider),
		widget.NewFormItem("", colourbtn),
	)

	controls := container.NewVBox(openbtn, form)
	content := container.NewBorder(nil, status, nil, controls, preview)

	myWindow.SetContent(content)
	myWindow.Resize(fyne.NewSize(960, 600))

	if path != "" {
		load(path)
	}

	myWindow.ShowAndRun()

	return nil
}
