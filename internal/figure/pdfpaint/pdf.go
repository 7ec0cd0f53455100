// Package pdfpaint replays figures into a PDF page by wrapping
// github.com/jung-kurt/gofpdf. Output is vector: polygons and strokes become
// PDF path operators, typography uses the Helvetica core font.
package pdfpaint

import (
	"image/color"

	"github.com/jung-kurt/gofpdf"

	"github.com/mapposter/mapposter/internal/figure"
)

var _ figure.Painter = (*Painter)(nil) // assert interface conformance

// fadeSteps is the number of constant-alpha strips approximating the edge
// fade ramp. PDF has no per-pixel alpha gradients in the path model gofpdf
// exposes, so the ramp is quantized.
const fadeSteps = 48

// Painter writes figure operations into a rectangular box on a gofpdf page.
// Coordinates are converted from figure points to millimeters so the figure
// exactly fills the box.
type Painter struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	offX float64 // mm, left edge of the artwork box
	offY float64 // mm, top edge of the artwork box
	boxW float64 // mm
	boxH float64 // mm
	figW float64 // points
	figH float64 // points
}

// NewPainter targets the box at (offX, offY) with size boxW×boxH (all mm) on
// the current page. figW/figH are the figure dimensions in points.
func NewPainter(pdf *gofpdf.Fpdf, offX, offY, boxW, boxH, figW, figH float64) *Painter {
	return &Painter{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		offX: offX, offY: offY,
		boxW: boxW, boxH: boxH,
		figW: figW, figH: figH,
	}
}

func (p *Painter) pt(q figure.Point) (float64, float64) {
	return p.offX + q.X/p.figW*p.boxW, p.offY + q.Y/p.figH*p.boxH
}

// scale converts a length in figure points to mm using the horizontal axis.
func (p *Painter) scale(v float64) float64 {
	return v / p.figW * p.boxW
}

func setFill(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setDraw(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func (p *Painter) Clear(c color.NRGBA) {
	// Clip everything to the artwork box: the figure over-scans its canvas so
	// bleed is covered, and the clip keeps it out of the crop-mark margin.
	p.pdf.ClipRect(p.offX, p.offY, p.boxW, p.boxH, false)
	setFill(p.pdf, c)
	p.pdf.Rect(p.offX, p.offY, p.boxW, p.boxH, "F")
}

// Close ends the clip region opened by Clear. Call after the replay.
func (p *Painter) Close() {
	p.pdf.ClipEnd()
}

func (p *Painter) FillPolygon(rings [][]figure.Point, c color.NRGBA) {
	setFill(p.pdf, c)
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		x, y := p.pt(ring[0])
		p.pdf.MoveTo(x, y)
		for _, q := range ring[1:] {
			x, y = p.pt(q)
			p.pdf.LineTo(x, y)
		}
		p.pdf.ClosePath()
	}
	p.pdf.DrawPath("f*")
}

func (p *Painter) StrokePolyline(pts []figure.Point, c color.NRGBA, width float64) {
	setDraw(p.pdf, c)
	p.pdf.SetLineWidth(p.scale(width))
	p.pdf.SetLineCapStyle("round")
	p.pdf.SetLineJoinStyle("round")
	x, y := p.pt(pts[0])
	p.pdf.MoveTo(x, y)
	for _, q := range pts[1:] {
		x, y = p.pt(q)
		p.pdf.LineTo(x, y)
	}
	p.pdf.DrawPath("D")
}

func (p *Painter) EdgeFade(fade figure.FadeOp) {
	heightMM := fade.Height / p.figH * p.boxH
	if heightMM <= 0 {
		return
	}
	step := heightMM / fadeSteps
	setFill(p.pdf, fade.Color)
	baseAlpha := float64(fade.Color.A) / 255
	for i := 0; i < fadeSteps; i++ {
		alpha := baseAlpha * (1 - (float64(i)+0.5)/fadeSteps)
		var y float64
		if fade.Top {
			y = p.offY + float64(i)*step
		} else {
			y = p.offY + p.boxH - float64(i+1)*step
		}
		p.pdf.SetAlpha(alpha, "Normal")
		p.pdf.Rect(p.offX, y, p.boxW, step, "F")
	}
	p.pdf.SetAlpha(1, "Normal")
}

func (p *Painter) Text(t figure.TextOp) {
	style := ""
	if t.Bold {
		style = "B"
	}
	// Font size tracks the figure-to-box scale so typography keeps its
	// proportion on every paper size.
	sizePt := t.Size / p.figW * p.boxW / 25.4 * 72
	p.pdf.SetFont("Helvetica", style, sizePt)
	p.pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))
	if t.Opacity < 1 {
		p.pdf.SetAlpha(t.Opacity, "Normal")
		defer p.pdf.SetAlpha(1, "Normal")
	}
	s := p.tr(t.Text)
	x, y := p.pt(t.At)
	switch t.Anchor {
	case figure.AnchorCenter:
		x -= p.pdf.GetStringWidth(s) / 2
	case figure.AnchorEnd:
		x -= p.pdf.GetStringWidth(s)
	}
	p.pdf.Text(x, y, s)
}
