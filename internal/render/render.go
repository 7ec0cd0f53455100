// Package render turns a geometry snapshot and a theme into a poster figure.
//
// Drawing order is a strict invariant: background, then all water, then all
// parks, then roads class by class. Road color and stroke width come from the
// theme's exhaustive per-class style table. Layout is fully deterministic.
package render

import (
	"math"
	"strings"

	"github.com/mapposter/mapposter/internal/core/model"
	"github.com/mapposter/mapposter/internal/figure"
	"github.com/mapposter/mapposter/internal/theme"
)

// Canvas height in points (16 inches, the original poster proportion).
const baseHeightPt = 1152.0

// DefaultAspect is width/height when no page format is requested (3:4).
const DefaultAspect = 0.75

const (
	topFadeFrac    = 0.08
	bottomFadeFrac = 0.20
)

// Params carries the non-geometry inputs of one render.
type Params struct {
	City    string
	Country string
	Center  model.Coordinate
	BBox    model.BBox
	// AspectRatio is width/height of the canvas; zero means DefaultAspect.
	// Page exports pass the target page ratio so the artwork is generated at
	// the right shape instead of being distorted to fit.
	AspectRatio float64
}

// Render builds the poster figure. Empty layers are fine: a request over open
// ocean still produces a styled background with typography.
func Render(layers model.GeometryLayers, th theme.Theme, p Params) *figure.Figure {
	aspect := p.AspectRatio
	if aspect <= 0 {
		aspect = DefaultAspect
	}
	w := baseHeightPt * aspect
	h := baseHeightPt

	pal := th.Palette()
	fig := figure.New(w, h, pal.Background)
	proj := newProjection(p.BBox, w, h)

	for _, poly := range layers.Water {
		fig.FillPolygon(proj.rings(poly.Rings), pal.Water)
	}
	for _, poly := range layers.Parks {
		fig.FillPolygon(proj.rings(poly.Rings), pal.Parks)
	}
	for _, class := range model.RoadClasses {
		style := pal.Roads[class]
		for _, seg := range layers.Roads {
			if seg.Class != class {
				continue
			}
			fig.StrokePolyline(proj.line(seg.Points), style.Color, style.Width)
		}
	}

	fig.EdgeFade(figure.FadeOp{Top: true, Height: h * topFadeFrac, Color: pal.GradientColor})
	fig.EdgeFade(figure.FadeOp{Top: false, Height: h * bottomFadeFrac, Color: pal.GradientColor})

	addTypography(fig, p, pal)
	return fig
}

// addTypography lays out the title block at the original poster's relative
// positions (fractions of canvas height from the top).
func addTypography(fig *figure.Figure, p Params, pal theme.Palette) {
	w, h := fig.Width, fig.Height
	centerX := w / 2

	fig.Text(figure.TextOp{
		Text:   SpacedTitle(p.City),
		At:     figure.Point{X: centerX, Y: 0.86*h + 28*0.35},
		Size:   28,
		Color:  pal.Text,
		Bold:   true,
		Anchor: figure.AnchorCenter,
	})

	// decorative rule between title and country
	fig.StrokePolyline(
		[]figure.Point{{X: 0.35 * w, Y: 0.875 * h}, {X: 0.65 * w, Y: 0.875 * h}},
		pal.Text, 1,
	)

	if p.Country != "" {
		fig.Text(figure.TextOp{
			Text:   strings.ToUpper(p.Country),
			At:     figure.Point{X: centerX, Y: 0.90*h + 12*0.35},
			Size:   12,
			Color:  pal.Text,
			Anchor: figure.AnchorCenter,
		})
	}

	fig.Text(figure.TextOp{
		Text:    p.Center.String(),
		At:      figure.Point{X: centerX, Y: 0.93*h + 10*0.35},
		Size:    10,
		Color:   pal.Text,
		Opacity: 0.7,
		Anchor:  figure.AnchorCenter,
	})

	fig.Text(figure.TextOp{
		Text:    "© OpenStreetMap",
		At:      figure.Point{X: 0.98 * w, Y: 0.98 * h},
		Size:    6,
		Color:   pal.Text,
		Opacity: 0.5,
		Anchor:  figure.AnchorEnd,
	})
}

// SpacedTitle renders a city name as spaced capitals: "Paris" → "P A R I S".
func SpacedTitle(city string) string {
	up := strings.ToUpper(strings.TrimSpace(city))
	parts := make([]string, 0, len(up))
	for _, r := range up {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, "  ")
}

// projection maps WGS84 coordinates onto the canvas: local equirectangular
// about the bbox center with the x axis compressed by cos(latitude), scaled
// uniformly to COVER the canvas. Covering (rather than fitting) guarantees
// artwork extends past every edge, so print bleed is real map content.
type projection struct {
	centerLat float64
	centerLon float64
	cosLat    float64
	scale     float64
	w, h      float64
}

func newProjection(b model.BBox, w, h float64) projection {
	c := b.Center()
	cosLat := math.Cos(c.Lat * math.Pi / 180)
	if cosLat < 1e-9 {
		cosLat = 1e-9
	}
	spanX := (b.MaxLon - b.MinLon) * cosLat
	spanY := b.MaxLat - b.MinLat
	scale := 1.0
	if spanX > 0 && spanY > 0 {
		scale = math.Max(w/spanX, h/spanY)
	}
	return projection{
		centerLat: c.Lat,
		centerLon: c.Lon,
		cosLat:    cosLat,
		scale:     scale,
		w:         w, h: h,
	}
}

func (p projection) point(c model.Coordinate) figure.Point {
	x := (c.Lon - p.centerLon) * p.cosLat * p.scale
	y := (p.centerLat - c.Lat) * p.scale
	return figure.Point{X: p.w/2 + x, Y: p.h/2 + y}
}

func (p projection) line(pts []model.Coordinate) []figure.Point {
	out := make([]figure.Point, len(pts))
	for i, c := range pts {
		out[i] = p.point(c)
	}
	return out
}

func (p projection) rings(rings [][]model.Coordinate) [][]figure.Point {
	out := make([][]figure.Point, len(rings))
	for i, ring := range rings {
		out[i] = p.line(ring)
	}
	return out
}
