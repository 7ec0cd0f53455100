// Package epspaint replays figures into Encapsulated PostScript.
//
// PostScript has no transparency model, so the alpha effects the raster and
// PDF backends composite (edge fades, caption opacity) degrade here to opaque
// colors interpolated toward the poster background.
package epspaint

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/mapposter/mapposter/internal/figure"
)

const fadeSteps = 48

// Doc is one EPS document. Coordinates handed to it are in points with the
// origin at the top-left (figure convention); the emitter flips to the
// PostScript bottom-left origin.
type Doc struct {
	buf    bytes.Buffer
	width  float64
	height float64
}

func NewDoc(widthPt, heightPt float64, title string) *Doc {
	d := &Doc{width: widthPt, height: heightPt}
	fmt.Fprintf(&d.buf, "%%!PS-Adobe-3.0 EPSF-3.0\n")
	fmt.Fprintf(&d.buf, "%%%%BoundingBox: 0 0 %d %d\n", int(math.Ceil(widthPt)), int(math.Ceil(heightPt)))
	fmt.Fprintf(&d.buf, "%%%%Title: %s\n", psEscape(title))
	fmt.Fprintf(&d.buf, "%%%%LanguageLevel: 2\n")
	fmt.Fprintf(&d.buf, "%%%%Pages: 1\n")
	fmt.Fprintf(&d.buf, "%%%%EndComments\n")
	// Latin-1 copies of the core fonts so the degree sign in coordinate
	// captions encodes as \260.
	for _, f := range []string{"Helvetica", "Helvetica-Bold"} {
		fmt.Fprintf(&d.buf,
			"/%s-L1 /%s findfont dup length dict copy dup /Encoding ISOLatin1Encoding put definefont pop\n",
			f, f)
	}
	return d
}

// Bytes finalizes the document.
func (d *Doc) Bytes() []byte {
	out := make([]byte, d.buf.Len(), d.buf.Len()+32)
	copy(out, d.buf.Bytes())
	return append(out, []byte("showpage\n%%EOF\n")...)
}

// flipY converts a top-origin y to the PostScript bottom-origin.
func (d *Doc) flipY(y float64) float64 { return d.height - y }

func (d *Doc) setColor(c color.NRGBA) {
	fmt.Fprintf(&d.buf, "%.4f %.4f %.4f setrgbcolor\n",
		float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// Rect fills an axis-aligned rectangle given in top-origin coordinates.
func (d *Doc) Rect(x, y, w, h float64, c color.NRGBA) {
	d.setColor(c)
	fmt.Fprintf(&d.buf, "newpath %.2f %.2f %.2f %.2f rectfill\n", x, d.flipY(y+h), w, h)
}

// Line strokes one segment, used by the page composer for crop marks.
func (d *Doc) Line(x1, y1, x2, y2, width float64, c color.NRGBA) {
	d.setColor(c)
	fmt.Fprintf(&d.buf, "%.2f setlinewidth newpath %.2f %.2f moveto %.2f %.2f lineto stroke\n",
		width, x1, d.flipY(y1), x2, d.flipY(y2))
}

var _ figure.Painter = (*Painter)(nil) // assert interface conformance

// Painter maps one figure into a box of the document.
type Painter struct {
	doc        *Doc
	offX, offY float64 // pt, top-left of the artwork box
	boxW, boxH float64 // pt
	figW, figH float64 // figure points
	bg         color.NRGBA
}

func (d *Doc) Painter(offX, offY, boxW, boxH, figW, figH float64) *Painter {
	return &Painter{doc: d, offX: offX, offY: offY, boxW: boxW, boxH: boxH, figW: figW, figH: figH}
}

func (p *Painter) pt(q figure.Point) (float64, float64) {
	x := p.offX + q.X/p.figW*p.boxW
	y := p.offY + q.Y/p.figH*p.boxH
	return x, p.doc.flipY(y)
}

func (p *Painter) scale(v float64) float64 { return v / p.figW * p.boxW }

func (p *Painter) Clear(c color.NRGBA) {
	p.bg = c
	fmt.Fprintf(&p.doc.buf, "gsave newpath %.2f %.2f %.2f %.2f rectclip\n",
		p.offX, p.doc.flipY(p.offY+p.boxH), p.boxW, p.boxH)
	p.doc.Rect(p.offX, p.offY, p.boxW, p.boxH, c)
}

// Close pops the clip region opened by Clear. Call after the replay.
func (p *Painter) Close() {
	fmt.Fprintf(&p.doc.buf, "grestore\n")
}

func (p *Painter) FillPolygon(rings [][]figure.Point, c color.NRGBA) {
	p.doc.setColor(c)
	fmt.Fprintf(&p.doc.buf, "newpath\n")
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		x, y := p.pt(ring[0])
		fmt.Fprintf(&p.doc.buf, "%.2f %.2f moveto\n", x, y)
		for _, q := range ring[1:] {
			x, y = p.pt(q)
			fmt.Fprintf(&p.doc.buf, "%.2f %.2f lineto\n", x, y)
		}
		fmt.Fprintf(&p.doc.buf, "closepath\n")
	}
	fmt.Fprintf(&p.doc.buf, "eofill\n")
}

func (p *Painter) StrokePolyline(pts []figure.Point, c color.NRGBA, width float64) {
	p.doc.setColor(c)
	fmt.Fprintf(&p.doc.buf, "1 setlinecap 1 setlinejoin %.3f setlinewidth newpath\n", p.scale(width))
	x, y := p.pt(pts[0])
	fmt.Fprintf(&p.doc.buf, "%.2f %.2f moveto\n", x, y)
	for _, q := range pts[1:] {
		x, y = p.pt(q)
		fmt.Fprintf(&p.doc.buf, "%.2f %.2f lineto\n", x, y)
	}
	fmt.Fprintf(&p.doc.buf, "stroke\n")
}

func (p *Painter) EdgeFade(fade figure.FadeOp) {
	heightPt := fade.Height / p.figH * p.boxH
	if heightPt <= 0 {
		return
	}
	step := heightPt / fadeSteps
	baseAlpha := float64(fade.Color.A) / 255
	for i := 0; i < fadeSteps; i++ {
		alpha := baseAlpha * (1 - (float64(i)+0.5)/fadeSteps)
		var y float64
		if fade.Top {
			y = p.offY + float64(i)*step
		} else {
			y = p.offY + p.boxH - float64(i+1)*step
		}
		p.doc.Rect(p.offX, y, p.boxW, step, lerpColor(p.bg, fade.Color, alpha))
	}
}

func (p *Painter) Text(t figure.TextOp) {
	font := "Helvetica-L1"
	if t.Bold {
		font = "Helvetica-Bold-L1"
	}
	sizePt := t.Size / p.figW * p.boxW
	col := t.Color
	if t.Opacity < 1 {
		col = lerpColor(p.bg, col, t.Opacity)
	}
	p.doc.setColor(col)
	x, y := p.pt(t.At)
	fmt.Fprintf(&p.doc.buf, "/%s findfont %.2f scalefont setfont\n", font, sizePt)
	fmt.Fprintf(&p.doc.buf, "%.2f %.2f moveto\n", x, y)
	s := psEscape(t.Text)
	switch t.Anchor {
	case figure.AnchorCenter:
		fmt.Fprintf(&p.doc.buf, "(%s) dup stringwidth pop 2 div neg 0 rmoveto show\n", s)
	case figure.AnchorEnd:
		fmt.Fprintf(&p.doc.buf, "(%s) dup stringwidth pop neg 0 rmoveto show\n", s)
	default:
		fmt.Fprintf(&p.doc.buf, "(%s) show\n", s)
	}
}

func lerpColor(from, to color.NRGBA, t float64) color.NRGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.NRGBA{
		R: lerp(from.R, to.R),
		G: lerp(from.G, to.G),
		B: lerp(from.B, to.B),
		A: 0xFF,
	}
}

// psEscape encodes a string for a PostScript literal under ISOLatin1.
func psEscape(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 128:
			b.WriteRune(r)
		case r <= 255:
			fmt.Fprintf(&b, "\\%03o", r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
