// Package model defines core domain types shared across the service.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String renders the compass caption used on posters, e.g. "50.11°N / 8.68°E".
func (c Coordinate) String() string {
	ns := "N"
	if c.Lat < 0 {
		ns = "S"
	}
	ew := "E"
	if c.Lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.2f°%s / %.2f°%s", math.Abs(c.Lat), ns, math.Abs(c.Lon), ew)
}

type BBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

const earthRadiusM = 6371000.0

// BBoxAround returns the bounding box of a square with the given half-side
// (in meters) centered on c.
func BBoxAround(c Coordinate, radiusM float64) BBox {
	dLat := (radiusM / earthRadiusM) * (180 / math.Pi)
	cosLat := math.Cos(c.Lat * math.Pi / 180)
	if cosLat < 1e-9 {
		cosLat = 1e-9
	}
	dLon := dLat / cosLat
	return BBox{
		MinLat: c.Lat - dLat, MinLon: c.Lon - dLon,
		MaxLat: c.Lat + dLat, MaxLon: c.Lon + dLon,
	}
}

func (b BBox) Center() Coordinate {
	return Coordinate{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// String renders "south,west,north,east", the order Overpass expects.
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

// RoadClass is the street hierarchy level driving stroke color and width.
// The declaration order is the drawing order within the road layer.
type RoadClass int

const (
	RoadMotorway RoadClass = iota
	RoadPrimary
	RoadSecondary
	RoadTertiary
	RoadResidential
	RoadDefault
)

// RoadClasses lists every class in drawing order.
var RoadClasses = [...]RoadClass{
	RoadMotorway, RoadPrimary, RoadSecondary, RoadTertiary, RoadResidential, RoadDefault,
}

func (r RoadClass) String() string {
	switch r {
	case RoadMotorway:
		return "motorway"
	case RoadPrimary:
		return "primary"
	case RoadSecondary:
		return "secondary"
	case RoadTertiary:
		return "tertiary"
	case RoadResidential:
		return "residential"
	default:
		return "default"
	}
}

// ClassifyHighway maps an OSM highway tag to a RoadClass. Unknown tags fall
// back to RoadDefault rather than failing, so sparse or exotic regions still render.
func ClassifyHighway(tag string) RoadClass {
	switch tag {
	case "motorway", "motorway_link":
		return RoadMotorway
	case "trunk", "trunk_link", "primary", "primary_link":
		return RoadPrimary
	case "secondary", "secondary_link":
		return RoadSecondary
	case "tertiary", "tertiary_link":
		return RoadTertiary
	case "residential", "living_street":
		return RoadResidential
	default:
		return RoadDefault
	}
}

type RoadSegment struct {
	Class  RoadClass
	Points []Coordinate
}

// Polygon holds one outer ring followed by zero or more holes.
type Polygon struct {
	Rings [][]Coordinate
}

// GeometryLayers is the vector snapshot a render consumes. Any layer may be
// empty; rendering must still succeed.
type GeometryLayers struct {
	Roads []RoadSegment
	Water []Polygon
	Parks []Polygon
}

// RenderRequest is one poster job, created from CLI or HTTP input and
// consumed once.
type RenderRequest struct {
	City    string
	Country string
	Theme   string
	RadiusM int
	DPI     int
}

func (r RenderRequest) Validate() error {
	if strings.TrimSpace(r.City) == "" {
		return errors.New("city is required")
	}
	if r.RadiusM <= 0 {
		return fmt.Errorf("radius must be positive, got %d", r.RadiusM)
	}
	if r.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", r.DPI)
	}
	return nil
}

// Slug normalizes a city name for filenames: lowercased, spaces to underscores.
func Slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
