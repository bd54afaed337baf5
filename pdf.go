// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package rasterdrone

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/nickjwhite/gofpdf"
)

const pageMargin = 15 // pageMargin in mm
const dotRadius = 1.2 // dotRadius in mm

type LayoutPDF struct {
	fpdf *gofpdf.Fpdf
}

// Setup creates a new PDF with appropriate settings and fonts
func (p *LayoutPDF) Setup() error {
	p.fpdf = gofpdf.New("P", "mm", "A4", "")
	p.fpdf.SetFont("Helvetica", "", 10)
	p.fpdf.SetAutoPageBreak(false, float64(0))
	return p.fpdf.Error()
}

// scaleFor finds how many mm on the page each mm of a layout w by h
// mm in size should take up to fit within the page margins
func scaleFor(w, h, pagew, pageh float64) float64 {
	areaw := pagew - 2*pageMargin
	areah := pageh - 2*pageMargin
	scale := math.Inf(1)
	if w > 0 {
		scale = areaw / w
	}
	if h > 0 {
		scale = math.Min(scale, areah/h)
	}
	if math.IsInf(scale, 1) {
		return 1
	}
	return scale
}

// AddLayout adds a page to the pdf with a dot for each point, scaled
// to fit the page, and a caption giving the scale and dimensions
func (p *LayoutPDF) AddLayout(points []Point, unit Unit, title string) error {
	if len(points) == 0 {
		return errors.New("No points to lay out")
	}

	p.fpdf.AddPage()
	pagew, pageh := p.fpdf.GetPageSize()

	w, h := Extent(points)
	wmm, hmm := unit.Millimetres(w), unit.Millimetres(h)
	scale := scaleFor(wmm, hmm, pagew, pageh)

	p.fpdf.SetXY(pageMargin, pageMargin/2)
	p.fpdf.CellFormat(pagew-2*pageMargin, 5, title, "", 0, "L", false, 0, "")
	caption := fmt.Sprintf("%d points, %.2f x %.2f %s, scale 1:%.0f", len(points), w, h, unit, 1/scale)
	p.fpdf.SetXY(pageMargin, pageh-pageMargin/2-5)
	p.fpdf.CellFormat(pagew-2*pageMargin, 5, caption, "", 0, "L", false, 0, "")

	p.fpdf.SetDrawColor(180, 180, 180)
	p.fpdf.Rect(pageMargin, pageMargin, wmm*scale, hmm*scale, "D")

	p.fpdf.SetFillColor(0, 0, 0)
	for _, pt := range points {
		x := pageMargin + unit.Millimetres(pt.X)*scale
		y := pageMargin + (hmm-unit.Millimetres(pt.Y))*scale
		p.fpdf.Circle(x, y, dotRadius, "F")
	}

	return p.fpdf.Error()
}

// Write writes the PDF to w
func (p *LayoutPDF) Write(w io.Writer) error {
	return p.fpdf.Output(w)
}

// Save saves the PDF to the file at path
func (p *LayoutPDF) Save(path string) error {
	return p.fpdf.OutputFileAndClose(path)
}
