// Package compose formats a rendered figure onto a physical page.
//
// The composer only places geometry. It never alters color content: the home
// variant scales the artwork to exactly fill the trim size, the print-ready
// variant adds a 3mm bleed on every side and corner crop marks outside it.
package compose

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/mapposter/mapposter/internal/figure"
	"github.com/mapposter/mapposter/internal/figure/epspaint"
	"github.com/mapposter/mapposter/internal/figure/pdfpaint"
)

type PaperSize string

const (
	A3 PaperSize = "A3"
	A4 PaperSize = "A4"
	A5 PaperSize = "A5"
)

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
	Square    Orientation = "square"
)

// PageSpec selects the physical page geometry for one export.
type PageSpec struct {
	Size        PaperSize
	Orientation Orientation
	PrintReady  bool
}

const (
	// BleedMM is the extra artwork margin beyond the trim size on each edge.
	BleedMM = 3.0
	// MarkLenMM is the length of each crop mark.
	MarkLenMM = 5.0
	// MarkOffsetMM is how far outside the trim edge a crop mark starts.
	MarkOffsetMM = 3.0

	markWidthMM = 0.2
	mmPerInch   = 25.4
)

// paperSizesMM holds portrait (width, height) pairs.
var paperSizesMM = map[PaperSize][2]float64{
	A3: {297, 420},
	A4: {210, 297},
	A5: {148, 210},
}

// PageDims is a resolved page geometry, all in millimeters with the origin at
// the top-left of the media box.
type PageDims struct {
	TrimW, TrimH   float64 // final size after cutting
	MediaW, MediaH float64 // physical sheet
	ArtX, ArtY     float64 // top-left of the artwork box
	ArtW, ArtH     float64 // artwork box (trim, or trim + bleed on each side)
	Bleed          float64 // 0 for the home variant
}

// ParsePaperSize validates a user-supplied size string.
func ParsePaperSize(s string) (PaperSize, error) {
	ps := PaperSize(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := paperSizesMM[ps]; !ok {
		return "", fmt.Errorf("unsupported paper size %q (want A3, A4 or A5)", s)
	}
	return ps, nil
}

// ParseOrientation validates a user-supplied orientation string.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case Portrait:
		return Portrait, nil
	case Landscape:
		return Landscape, nil
	case Square:
		return Square, nil
	}
	return "", fmt.Errorf("unsupported orientation %q (want portrait, landscape or square)", s)
}

// Resolve maps a PageSpec to physical dimensions. Landscape swaps the
// portrait pair; square takes the smaller side for both.
func Resolve(spec PageSpec) (PageDims, error) {
	wh, ok := paperSizesMM[spec.Size]
	if !ok {
		return PageDims{}, fmt.Errorf("unsupported paper size %q", spec.Size)
	}
	w, h := wh[0], wh[1]
	switch spec.Orientation {
	case Portrait:
	case Landscape:
		w, h = h, w
	case Square:
		if h < w {
			w = h
		}
		h = w
	default:
		return PageDims{}, fmt.Errorf("unsupported orientation %q", spec.Orientation)
	}

	d := PageDims{TrimW: w, TrimH: h}
	if !spec.PrintReady {
		d.MediaW, d.MediaH = w, h
		d.ArtW, d.ArtH = w, h
		return d, nil
	}

	// Print-ready: artwork covers trim + bleed; crop marks live in a margin
	// outside the bleed, so the sheet grows by bleed + mark length per side.
	margin := BleedMM + MarkLenMM
	d.Bleed = BleedMM
	d.MediaW = w + 2*margin
	d.MediaH = h + 2*margin
	d.ArtX = margin - BleedMM
	d.ArtY = margin - BleedMM
	d.ArtW = w + 2*BleedMM
	d.ArtH = h + 2*BleedMM
	return d, nil
}

// AspectRatio returns the width/height the artwork must be rendered at so a
// figure fills the artwork box without distortion.
func AspectRatio(spec PageSpec) (float64, error) {
	d, err := Resolve(spec)
	if err != nil {
		return 0, err
	}
	return d.ArtW / d.ArtH, nil
}

// markLine is one crop mark segment in media coordinates (mm, top-left origin).
type markLine struct {
	X1, Y1, X2, Y2 float64
}

// cropMarks returns the eight corner marks: per trim corner one horizontal and
// one vertical segment, each MarkLenMM long, starting MarkOffsetMM outside the
// trim edge and extending away from the artwork.
func cropMarks(d PageDims) []markLine {
	left := d.ArtX + d.Bleed
	top := d.ArtY + d.Bleed
	right := left + d.TrimW
	bottom := top + d.TrimH

	var marks []markLine
	for _, corner := range [][2]float64{{left, top}, {right, top}, {left, bottom}, {right, bottom}} {
		cx, cy := corner[0], corner[1]
		if cx == left {
			marks = append(marks, markLine{cx - MarkOffsetMM - MarkLenMM, cy, cx - MarkOffsetMM, cy})
		} else {
			marks = append(marks, markLine{cx + MarkOffsetMM, cy, cx + MarkOffsetMM + MarkLenMM, cy})
		}
		if cy == top {
			marks = append(marks, markLine{cx, cy - MarkOffsetMM - MarkLenMM, cx, cy - MarkOffsetMM})
		} else {
			marks = append(marks, markLine{cx, cy + MarkOffsetMM, cx, cy + MarkOffsetMM + MarkLenMM})
		}
	}
	return marks
}

// PDF composes the figure onto a PDF page and returns the document bytes.
func PDF(fig *figure.Figure, spec PageSpec, title string) ([]byte, PageDims, error) {
	d, err := Resolve(spec)
	if err != nil {
		return nil, PageDims{}, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: d.MediaW, Ht: d.MediaH},
	})
	pdf.SetTitle(title, true)
	pdf.SetCreator("mapposter", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()

	p := pdfpaint.NewPainter(pdf, d.ArtX, d.ArtY, d.ArtW, d.ArtH, fig.Width, fig.Height)
	fig.Replay(p)
	p.Close()

	if spec.PrintReady {
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(markWidthMM)
		for _, m := range cropMarks(d) {
			pdf.Line(m.X1, m.Y1, m.X2, m.Y2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, PageDims{}, fmt.Errorf("emit pdf: %w", err)
	}
	return buf.Bytes(), d, nil
}

// EPS composes the figure into an Encapsulated PostScript document.
func EPS(fig *figure.Figure, spec PageSpec, title string) ([]byte, PageDims, error) {
	d, err := Resolve(spec)
	if err != nil {
		return nil, PageDims{}, err
	}
	pt := func(mm float64) float64 { return mm / mmPerInch * 72 }

	doc := epspaint.NewDoc(pt(d.MediaW), pt(d.MediaH), title)
	p := doc.Painter(pt(d.ArtX), pt(d.ArtY), pt(d.ArtW), pt(d.ArtH), fig.Width, fig.Height)
	fig.Replay(p)
	p.Close()

	if spec.PrintReady {
		black := color.NRGBA{A: 0xFF}
		for _, m := range cropMarks(d) {
			doc.Line(pt(m.X1), pt(m.Y1), pt(m.X2), pt(m.Y2), pt(markWidthMM), black)
		}
	}
	return doc.Bytes(), d, nil
}
