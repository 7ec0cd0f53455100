// Package theme loads and validates named poster styles.
//
// A theme is one JSON file in the theme directory. All fields except
// description are mandatory and must hold #RGB or #RRGGBB colors; unknown keys
// are rejected rather than ignored so a typo in a user-authored theme fails
// loudly instead of silently falling back.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/mapposter/mapposter/internal/core/model"
)

var (
	ErrNotFound = errors.New("theme not found")
	ErrInvalid  = errors.New("theme invalid")
)

type Theme struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Background      string `json:"bg"`
	Text            string `json:"text"`
	GradientColor   string `json:"gradient_color"`
	Water           string `json:"water"`
	Parks           string `json:"parks"`
	RoadMotorway    string `json:"road_motorway"`
	RoadPrimary     string `json:"road_primary"`
	RoadSecondary   string `json:"road_secondary"`
	RoadTertiary    string `json:"road_tertiary"`
	RoadResidential string `json:"road_residential"`
	RoadDefault     string `json:"road_default"`
}

// requiredFields pairs each mandatory key with an accessor, used both for
// presence checks and color validation.
func (t Theme) requiredFields() []struct {
	key, val string
} {
	return []struct{ key, val string }{
		{"name", t.Name},
		{"bg", t.Background},
		{"text", t.Text},
		{"gradient_color", t.GradientColor},
		{"water", t.Water},
		{"parks", t.Parks},
		{"road_motorway", t.RoadMotorway},
		{"road_primary", t.RoadPrimary},
		{"road_secondary", t.RoadSecondary},
		{"road_tertiary", t.RoadTertiary},
		{"road_residential", t.RoadResidential},
		{"road_default", t.RoadDefault},
	}
}

// Validate fails closed: every required key present and every color parseable.
func (t Theme) Validate() error {
	for _, f := range t.requiredFields() {
		if strings.TrimSpace(f.val) == "" {
			return fmt.Errorf("%w: missing required field %q", ErrInvalid, f.key)
		}
		if f.key == "name" {
			continue
		}
		if _, err := ParseHexColor(f.val); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalid, f.key, err)
		}
	}
	return nil
}

func decodeStrict(data []byte) (Theme, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	var t Theme
	if err := dec.Decode(&t); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Palette is the parsed, render-ready form of a Theme.
type Palette struct {
	Background    color.NRGBA
	Text          color.NRGBA
	GradientColor color.NRGBA
	Water         color.NRGBA
	Parks         color.NRGBA
	Roads         [len(model.RoadClasses)]RoadStyle
}

// RoadStyle is the stroke styling for one road class. Width is in canvas
// points; residential streets are thinnest, motorways thickest.
type RoadStyle struct {
	Color color.NRGBA
	Width float64
}

// road widths, matching the hierarchy the original poster styling used
var roadWidths = [len(model.RoadClasses)]float64{
	model.RoadMotorway:    1.2,
	model.RoadPrimary:     1.0,
	model.RoadSecondary:   0.8,
	model.RoadTertiary:    0.6,
	model.RoadResidential: 0.4,
	model.RoadDefault:     0.3,
}

// Palette parses every color field. Themes are validated at load time, so a
// parse failure here is a programming error and panics.
func (t Theme) Palette() Palette {
	var p Palette
	p.Background = mustHex(t.Background)
	p.Text = mustHex(t.Text)
	p.GradientColor = mustHex(t.GradientColor)
	p.Water = mustHex(t.Water)
	p.Parks = mustHex(t.Parks)

	roadColors := [len(model.RoadClasses)]string{
		model.RoadMotorway:    t.RoadMotorway,
		model.RoadPrimary:     t.RoadPrimary,
		model.RoadSecondary:   t.RoadSecondary,
		model.RoadTertiary:    t.RoadTertiary,
		model.RoadResidential: t.RoadResidential,
		model.RoadDefault:     t.RoadDefault,
	}
	for _, rc := range model.RoadClasses {
		p.Roads[rc] = RoadStyle{Color: mustHex(roadColors[rc]), Width: roadWidths[rc]}
	}
	return p
}

func mustHex(s string) color.NRGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(fmt.Sprintf("theme color %q not validated: %v", s, err))
	}
	return c
}

// ParseHexColor parses #RGB or #RRGGBB.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("color %q must start with '#'", s)
	}
	hexDigit := func(b byte) (uint8, error) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', nil
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, nil
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, nil
		}
		return 0, fmt.Errorf("invalid hex digit %q", string(b))
	}
	byteAt := func(i int) (uint8, error) {
		hi, err := hexDigit(s[i])
		if err != nil {
			return 0, err
		}
		lo, err := hexDigit(s[i+1])
		if err != nil {
			return 0, err
		}
		return hi<<4 | lo, nil
	}
	switch len(s) {
	case 7:
		r, err := byteAt(1)
		if err != nil {
			return color.NRGBA{}, err
		}
		g, err := byteAt(3)
		if err != nil {
			return color.NRGBA{}, err
		}
		b, err := byteAt(5)
		if err != nil {
			return color.NRGBA{}, err
		}
		return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, nil
	case 4:
		var out [3]uint8
		for i := 0; i < 3; i++ {
			d, err := hexDigit(s[1+i])
			if err != nil {
				return color.NRGBA{}, err
			}
			out[i] = d<<4 | d
		}
		return color.NRGBA{R: out[0], G: out[1], B: out[2], A: 0xFF}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("color %q must be #RGB or #RRGGBB", s)
	}
}
