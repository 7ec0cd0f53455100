package epspaint

import (
	"image/color"
	"strings"
	"testing"

	"github.com/mapposter/mapposter/internal/figure"
)

func renderDoc() string {
	doc := NewDoc(595, 842, "test poster")
	p := doc.Painter(0, 0, 595, 842, 300, 400)
	p.Clear(color.NRGBA{R: 0x0A, G: 0x0A, B: 0x0A, A: 0xFF})
	p.FillPolygon([][]figure.Point{{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}, {X: 10, Y: 10}}},
		color.NRGBA{B: 0xFF, A: 0xFF})
	p.StrokePolyline([]figure.Point{{X: 0, Y: 100}, {X: 300, Y: 100}}, color.NRGBA{R: 0xFF, A: 0xFF}, 1.2)
	p.EdgeFade(figure.FadeOp{Top: true, Height: 32, Color: color.NRGBA{R: 0x0A, G: 0x0A, B: 0x0A, A: 0xFF}})
	p.Text(figure.TextOp{Text: "50.11°N / 8.68°E", At: figure.Point{X: 150, Y: 380}, Size: 10,
		Color: color.NRGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}, Opacity: 0.7, Anchor: figure.AnchorCenter})
	p.Close()
	return string(doc.Bytes())
}

func TestDocumentStructure(t *testing.T) {
	out := renderDoc()

	for _, want := range []string{
		"%!PS-Adobe-3.0 EPSF-3.0\n",
		"%%BoundingBox: 0 0 595 842\n",
		"%%Title: test poster\n",
		"%%EndComments\n",
		"ISOLatin1Encoding",
		"eofill",
		"setlinecap",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "showpage\n%%EOF\n") {
		t.Error("missing trailer")
	}
}

func TestDegreeSignEncodesAsLatin1(t *testing.T) {
	out := renderDoc()
	if !strings.Contains(out, `\260`) {
		t.Error("degree sign not re-encoded as octal Latin-1")
	}
	if strings.Contains(out, "°") {
		t.Error("raw UTF-8 degree sign leaked into the document")
	}
}

func TestDeterministicOutput(t *testing.T) {
	if renderDoc() != renderDoc() {
		t.Error("identical replays produced different documents")
	}
}

func TestFadeDegradesToOpaqueStrips(t *testing.T) {
	out := renderDoc()
	// no PostScript alpha operators exist; fades become stacked rectfills
	if got := strings.Count(out, "rectfill"); got < fadeSteps {
		t.Errorf("rectfill count = %d, want at least %d fade strips", got, fadeSteps)
	}
}

func TestLerpColor(t *testing.T) {
	from := color.NRGBA{R: 0, G: 0, B: 0, A: 0xFF}
	to := color.NRGBA{R: 200, G: 100, B: 50, A: 0xFF}

	if got := lerpColor(from, to, 0); got != from {
		t.Errorf("t=0: %v, want %v", got, from)
	}
	if got := lerpColor(from, to, 1); got != to {
		t.Errorf("t=1: %v, want %v", got, to)
	}
	mid := lerpColor(from, to, 0.5)
	if mid.R != 100 || mid.G != 50 || mid.B != 25 {
		t.Errorf("t=0.5: %v", mid)
	}
}

func TestPSEscape(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain", "plain"},
		{"(paren)", `\(paren\)`},
		{`back\slash`, `back\\slash`},
		{"°", `\260`},
	}
	for _, tc := range cases {
		if got := psEscape(tc.in); got != tc.want {
			t.Errorf("psEscape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
