// Package figure records a poster as a backend-independent display list.
//
// A Figure is built once by the renderer and replayed onto any Painter: the
// raster backend for PNG, the PDF backend for print export, the PostScript
// backend for EPS. Replaying the same figure onto the same backend always
// produces identical output; there is no hidden drawing state.
package figure

import "image/color"

// Point is a canvas coordinate in points (1/72 inch), origin top-left, Y down.
type Point struct {
	X, Y float64
}

// Anchor positions text relative to its X coordinate.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorCenter
	AnchorEnd
)

// TextOp is one piece of typography.
type TextOp struct {
	Text    string
	At      Point
	Size    float64 // font size in points
	Color   color.NRGBA
	Opacity float64 // 0..1
	Bold    bool
	Anchor  Anchor
}

// FadeOp is a vertical alpha ramp composited over the artwork at the top or
// bottom edge: solid at the edge, transparent Height points inward.
type FadeOp struct {
	Top    bool
	Height float64
	Color  color.NRGBA
}

type opKind int

const (
	opPolygon opKind = iota
	opPolyline
	opFade
	opText
)

type op struct {
	kind  opKind
	rings [][]Point
	pts   []Point
	color color.NRGBA
	width float64
	fade  FadeOp
	text  TextOp
}

// Figure is a recorded poster. Width and Height are in points.
type Figure struct {
	Width, Height float64
	background    color.NRGBA
	ops           []op
}

func New(width, height float64, background color.NRGBA) *Figure {
	return &Figure{Width: width, Height: height, background: background}
}

// Background returns the fill the canvas is cleared to before replay.
func (f *Figure) Background() color.NRGBA { return f.background }

// FillPolygon records a filled polygon. The first ring is the outer boundary,
// the rest are holes (even-odd fill).
func (f *Figure) FillPolygon(rings [][]Point, c color.NRGBA) {
	if len(rings) == 0 {
		return
	}
	f.ops = append(f.ops, op{kind: opPolygon, rings: rings, color: c})
}

// StrokePolyline records an open stroked path with round caps and joins.
func (f *Figure) StrokePolyline(pts []Point, c color.NRGBA, width float64) {
	if len(pts) < 2 {
		return
	}
	f.ops = append(f.ops, op{kind: opPolyline, pts: pts, color: c, width: width})
}

func (f *Figure) EdgeFade(fade FadeOp) {
	f.ops = append(f.ops, op{kind: opFade, fade: fade})
}

func (f *Figure) Text(t TextOp) {
	if t.Opacity == 0 {
		t.Opacity = 1
	}
	f.ops = append(f.ops, op{kind: opText, text: t})
}

// Painter replays recorded operations onto a concrete backend. Implementations
// receive coordinates in figure points and convert to their own units.
type Painter interface {
	// Clear fills the whole canvas; always the first call of a replay.
	Clear(c color.NRGBA)
	FillPolygon(rings [][]Point, c color.NRGBA)
	StrokePolyline(pts []Point, c color.NRGBA, width float64)
	EdgeFade(fade FadeOp)
	Text(t TextOp)
}

// Replay paints the figure onto p in recorded order.
func (f *Figure) Replay(p Painter) {
	p.Clear(f.background)
	for _, o := range f.ops {
		switch o.kind {
		case opPolygon:
			p.FillPolygon(o.rings, o.color)
		case opPolyline:
			p.StrokePolyline(o.pts, o.color, o.width)
		case opFade:
			p.EdgeFade(o.fade)
		case opText:
			p.Text(o.text)
		}
	}
}

// OpCount reports how many operations are recorded, background excluded.
func (f *Figure) OpCount() int { return len(f.ops) }
