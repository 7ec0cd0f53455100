package overpass

import (
	"encoding/json"
	"fmt"

	"github.com/mapposter/mapposter/internal/core/model"
)

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry []vertex          `json:"geometry"`
}

type vertex struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (e element) coords() []model.Coordinate {
	pts := make([]model.Coordinate, 0, len(e.Geometry))
	for _, v := range e.Geometry {
		pts = append(pts, model.Coordinate{Lat: v.Lat, Lon: v.Lon})
	}
	return pts
}

func parseRoads(body []byte) ([]model.RoadSegment, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	segs := make([]model.RoadSegment, 0, len(resp.Elements))
	for _, e := range resp.Elements {
		if e.Type != "way" || len(e.Geometry) < 2 {
			continue
		}
		segs = append(segs, model.RoadSegment{
			Class:  model.ClassifyHighway(e.Tags["highway"]),
			Points: e.coords(),
		})
	}
	return segs, nil
}

// parsePolygons keeps closed ways only. Open waterway centerlines and
// unstitched relation fragments would render as jagged fills, so they are
// skipped.
func parsePolygons(body []byte) ([]model.Polygon, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	var polys []model.Polygon
	for _, e := range resp.Elements {
		if e.Type != "way" || len(e.Geometry) < 4 {
			continue
		}
		first, last := e.Geometry[0], e.Geometry[len(e.Geometry)-1]
		if first.Lat != last.Lat || first.Lon != last.Lon {
			continue
		}
		polys = append(polys, model.Polygon{Rings: [][]model.Coordinate{e.coords()}})
	}
	return polys, nil
}
