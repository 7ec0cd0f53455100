package model

import (
	"math"
	"testing"
)

func TestCoordinateString(t *testing.T) {
	cases := []struct {
		c    Coordinate
		want string
	}{
		{Coordinate{Lat: 50.1109, Lon: 8.6821}, "50.11°N / 8.68°E"},
		{Coordinate{Lat: -33.8688, Lon: 151.2093}, "33.87°S / 151.21°E"},
		{Coordinate{Lat: 40.7128, Lon: -74.0060}, "40.71°N / 74.01°W"},
		{Coordinate{Lat: 0, Lon: 0}, "0.00°N / 0.00°E"},
	}
	for _, tc := range cases {
		if got := tc.c.String(); got != tc.want {
			t.Errorf("%+v.String() = %q, want %q", tc.c, got, tc.want)
		}
	}
}

func TestBBoxAround(t *testing.T) {
	c := Coordinate{Lat: 50.1109, Lon: 8.6821}
	b := BBoxAround(c, 12000)

	if got := b.Center(); math.Abs(got.Lat-c.Lat) > 1e-9 || math.Abs(got.Lon-c.Lon) > 1e-9 {
		t.Errorf("center = %+v, want %+v", got, c)
	}
	// 12km of latitude is about 0.108 degrees.
	dLat := b.MaxLat - b.MinLat
	if dLat < 0.21 || dLat > 0.22 {
		t.Errorf("lat span = %f, want ~0.216", dLat)
	}
	// longitude span widens with latitude
	dLon := b.MaxLon - b.MinLon
	if dLon <= dLat {
		t.Errorf("lon span %f should exceed lat span %f at 50°N", dLon, dLat)
	}
}

func TestBBoxString(t *testing.T) {
	b := BBox{MinLat: 50.1, MinLon: 8.6, MaxLat: 50.2, MaxLon: 8.7}
	want := "50.100000,8.600000,50.200000,8.700000"
	if got := b.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestClassifyHighway(t *testing.T) {
	cases := []struct {
		tag  string
		want RoadClass
	}{
		{"motorway", RoadMotorway},
		{"motorway_link", RoadMotorway},
		{"trunk", RoadPrimary},
		{"trunk_link", RoadPrimary},
		{"primary", RoadPrimary},
		{"primary_link", RoadPrimary},
		{"secondary", RoadSecondary},
		{"secondary_link", RoadSecondary},
		{"tertiary", RoadTertiary},
		{"tertiary_link", RoadTertiary},
		{"residential", RoadResidential},
		{"living_street", RoadResidential},
		{"footway", RoadDefault},
		{"cycleway", RoadDefault},
		{"", RoadDefault},
		{"bus_guideway", RoadDefault},
	}
	for _, tc := range cases {
		if got := ClassifyHighway(tc.tag); got != tc.want {
			t.Errorf("ClassifyHighway(%q) = %v, want %v", tc.tag, got, tc.want)
		}
	}
}

func TestRoadClassesCoverEveryClass(t *testing.T) {
	seen := map[RoadClass]bool{}
	for _, c := range RoadClasses {
		seen[c] = true
	}
	for c := RoadMotorway; c <= RoadDefault; c++ {
		if !seen[c] {
			t.Errorf("RoadClasses missing %v", c)
		}
	}
}

func TestRenderRequestValidate(t *testing.T) {
	ok := RenderRequest{City: "Frankfurt", RadiusM: 12000, DPI: 300}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []RenderRequest{
		{RadiusM: 12000, DPI: 300},
		{City: "  ", RadiusM: 12000, DPI: 300},
		{City: "Frankfurt", RadiusM: 0, DPI: 300},
		{City: "Frankfurt", RadiusM: -1, DPI: 300},
		{City: "Frankfurt", RadiusM: 12000, DPI: 0},
	}
	for i, req := range cases {
		if err := req.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, req)
		}
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Frankfurt", "frankfurt"},
		{"New York", "new_york"},
		{"  Rio de Janeiro  ", "rio_de_janeiro"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
