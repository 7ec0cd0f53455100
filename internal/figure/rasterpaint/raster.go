// Package rasterpaint renders figures into raster images by wrapping rasterx.
package rasterpaint

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/mapposter/mapposter/internal/figure"
)

var _ figure.Painter = (*Painter)(nil) // assert interface conformance

// Painter rasterizes figure operations into an RGBA image. One Painter serves
// one replay; scale converts figure points to device pixels.
type Painter struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher
	scale   float64
	dpi     float64
}

func NewPainter(widthPx, heightPx int, scale float64) *Painter {
	img := image.NewRGBA(image.Rect(0, 0, widthPx, heightPx))
	scanner := rasterx.NewScannerGV(widthPx, heightPx, img, img.Bounds())
	return &Painter{
		img:     img,
		scanner: scanner,
		filler:  rasterx.NewFiller(widthPx, heightPx, scanner),
		dasher:  rasterx.NewDasher(widthPx, heightPx, scanner),
		scale:   scale,
		dpi:     scale * 72,
	}
}

// Render replays fig at the given DPI and returns the image.
func Render(fig *figure.Figure, dpi int) *image.RGBA {
	scale := float64(dpi) / 72
	w := int(math.Round(fig.Width * scale))
	h := int(math.Round(fig.Height * scale))
	p := NewPainter(w, h, scale)
	fig.Replay(p)
	return p.Image()
}

// EncodePNG replays fig at the given DPI and encodes the result.
func EncodePNG(fig *figure.Figure, dpi int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Render(fig, dpi)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Painter) Image() *image.RGBA { return p.img }

func (p *Painter) fixed(pt figure.Point) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(pt.X * p.scale * 64),
		Y: fixed.Int26_6(pt.Y * p.scale * 64),
	}
}

func (p *Painter) Clear(c color.NRGBA) {
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (p *Painter) FillPolygon(rings [][]figure.Point, c color.NRGBA) {
	p.scanner.SetColor(c)
	p.filler.SetWinding(false) // even-odd so holes stay open
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		p.filler.Start(p.fixed(ring[0]))
		for _, pt := range ring[1:] {
			p.filler.Line(p.fixed(pt))
		}
		p.filler.Stop(true)
	}
	p.filler.Draw()
	p.filler.Clear()
}

func (p *Painter) StrokePolyline(pts []figure.Point, c color.NRGBA, width float64) {
	p.scanner.SetColor(c)
	p.dasher.SetStroke(
		fixed.Int26_6(width*p.scale*64), fixed.Int26_6(4*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round,
		nil, 0,
	)
	p.dasher.Start(p.fixed(pts[0]))
	for _, pt := range pts[1:] {
		p.dasher.Line(p.fixed(pt))
	}
	p.dasher.Stop(false)
	p.dasher.Draw()
	p.dasher.Clear()
}

// EdgeFade composites a vertical alpha ramp directly over the pixels: solid
// color at the edge, fully transparent Height points inward.
func (p *Painter) EdgeFade(fade figure.FadeOp) {
	b := p.img.Bounds()
	fadePx := int(math.Round(fade.Height * p.scale))
	if fadePx <= 0 {
		return
	}
	if fadePx > b.Dy() {
		fadePx = b.Dy()
	}
	for i := 0; i < fadePx; i++ {
		// i is distance from the faded edge
		alpha := 1 - float64(i)/float64(fadePx)
		y := i
		if !fade.Top {
			y = b.Max.Y - 1 - i
		}
		blendRow(p.img, y, fade.Color, alpha)
	}
}

func blendRow(img *image.RGBA, y int, c color.NRGBA, alpha float64) {
	b := img.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	a := uint32(math.Round(alpha * float64(c.A)))
	if a == 0 {
		return
	}
	sr := uint32(c.R) * a
	sg := uint32(c.G) * a
	sb := uint32(c.B) * a
	inv := 255 - a
	row := img.PixOffset(b.Min.X, y)
	pix := img.Pix
	for x := b.Min.X; x < b.Max.X; x++ {
		pix[row+0] = uint8((sr + uint32(pix[row+0])*inv) / 255)
		pix[row+1] = uint8((sg + uint32(pix[row+1])*inv) / 255)
		pix[row+2] = uint8((sb + uint32(pix[row+2])*inv) / 255)
		pix[row+3] = uint8((255*a + uint32(pix[row+3])*inv) / 255)
		row += 4
	}
}

var (
	fontOnce    sync.Once
	fontRegular *sfnt.Font
	fontBold    *sfnt.Font
	fontErr     error
)

func loadFonts() (*sfnt.Font, *sfnt.Font, error) {
	fontOnce.Do(func() {
		fontRegular, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		fontBold, fontErr = opentype.Parse(gobold.TTF)
	})
	return fontRegular, fontBold, fontErr
}

func (p *Painter) Text(t figure.TextOp) {
	regular, bold, err := loadFonts()
	if err != nil {
		// bundled fonts; parse failure is unreachable in practice
		panic(fmt.Sprintf("load bundled fonts: %v", err))
	}
	f := regular
	if t.Bold {
		f = bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    t.Size,
		DPI:     p.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(fmt.Sprintf("build font face: %v", err))
	}
	defer func() { _ = face.Close() }()

	col := t.Color
	col.A = uint8(math.Round(t.Opacity * float64(col.A)))

	d := font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  p.fixed(t.At),
	}
	switch t.Anchor {
	case figure.AnchorCenter:
		d.Dot.X -= d.MeasureString(t.Text) / 2
	case figure.AnchorEnd:
		d.Dot.X -= d.MeasureString(t.Text)
	}
	d.DrawString(t.Text)
}
