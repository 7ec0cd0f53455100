package rasterpaint

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/mapposter/mapposter/internal/figure"
)

func testFigure() *figure.Figure {
	bg := color.NRGBA{R: 0x0A, G: 0x0A, B: 0x0A, A: 0xFF}
	fig := figure.New(300, 400, bg)
	fig.FillPolygon([][]figure.Point{{{X: 50, Y: 50}, {X: 150, Y: 50}, {X: 150, Y: 150}, {X: 50, Y: 50}}},
		color.NRGBA{B: 0xFF, A: 0xFF})
	fig.StrokePolyline([]figure.Point{{X: 0, Y: 200}, {X: 300, Y: 200}}, color.NRGBA{R: 0xFF, A: 0xFF}, 2)
	fig.EdgeFade(figure.FadeOp{Top: true, Height: 32, Color: bg})
	fig.Text(figure.TextOp{Text: "T E S T", At: figure.Point{X: 150, Y: 350}, Size: 14,
		Color: color.NRGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}, Bold: true, Anchor: figure.AnchorCenter})
	return fig
}

func TestRenderDimensions(t *testing.T) {
	img := Render(testFigure(), 72)
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 400 {
		t.Errorf("bounds at 72 dpi = %v, want 300x400", b)
	}
	img = Render(testFigure(), 144)
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 800 {
		t.Errorf("bounds at 144 dpi = %v, want 600x800", b)
	}
}

func TestRenderBackground(t *testing.T) {
	img := Render(testFigure(), 72)
	// corner pixel away from any geometry
	r, g, b, a := img.At(299, 399).RGBA()
	if r>>8 != 0x0A || g>>8 != 0x0A || b>>8 != 0x0A || a>>8 != 0xFF {
		t.Errorf("background pixel = %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestRenderDrawsGeometry(t *testing.T) {
	img := Render(testFigure(), 72)

	// inside the filled triangle
	if r, _, b, _ := img.At(90, 80).RGBA(); b>>8 < 0x80 || r>>8 > 0x40 {
		t.Error("fill color missing inside polygon")
	}
	// on the stroked line
	if r, _, _, _ := img.At(150, 200).RGBA(); r>>8 < 0x80 {
		t.Error("stroke color missing on polyline")
	}
}

func TestEncodePNGDeterministic(t *testing.T) {
	a, err := EncodePNG(testFigure(), 96)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	b, err := EncodePNG(testFigure(), 96)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same figure encoded to different bytes")
	}
}

func TestEdgeFadeBlends(t *testing.T) {
	bg := color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	fig := figure.New(100, 100, bg)
	fig.EdgeFade(figure.FadeOp{Top: true, Height: 50, Color: color.NRGBA{A: 0xFF}})

	img := Render(fig, 72)
	top, _, _, _ := img.At(50, 0).RGBA()
	mid, _, _, _ := img.At(50, 25).RGBA()
	below, _, _, _ := img.At(50, 60).RGBA()

	if top>>8 > 0x08 {
		t.Errorf("edge row not solid fade color: %d", top>>8)
	}
	if mid>>8 <= top>>8 || mid>>8 >= below>>8 {
		t.Errorf("fade is not a ramp: top=%d mid=%d below=%d", top>>8, mid>>8, below>>8)
	}
	if below>>8 != 0xFF {
		t.Errorf("pixel beyond fade changed: %d", below>>8)
	}
}

func TestEmptyFigureStillRenders(t *testing.T) {
	fig := figure.New(100, 100, color.NRGBA{R: 1, G: 2, B: 3, A: 0xFF})
	data, err := EncodePNG(fig, 72)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty output")
	}
}
