package overpass

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mapposter/mapposter/internal/core/model"
)

const roadsJSON = `{"elements":[
  {"type":"way","id":1,"tags":{"highway":"motorway"},
   "geometry":[{"lat":50.0,"lon":8.0},{"lat":50.001,"lon":8.001}]},
  {"type":"way","id":2,"tags":{"highway":"residential"},
   "geometry":[{"lat":50.0,"lon":8.0},{"lat":50.0,"lon":8.002}]},
  {"type":"way","id":3,"tags":{"highway":"footway"},
   "geometry":[{"lat":50.0,"lon":8.0},{"lat":50.0,"lon":8.003}]},
  {"type":"way","id":4,"tags":{"highway":"service"},
   "geometry":[{"lat":50.0,"lon":8.0}]}
]}`

const waterJSON = `{"elements":[
  {"type":"way","id":10,"tags":{"natural":"water"},
   "geometry":[{"lat":50.0,"lon":8.0},{"lat":50.001,"lon":8.0},
               {"lat":50.001,"lon":8.001},{"lat":50.0,"lon":8.0}]},
  {"type":"way","id":11,"tags":{"waterway":"river"},
   "geometry":[{"lat":50.0,"lon":8.0},{"lat":50.002,"lon":8.002},
               {"lat":50.003,"lon":8.003},{"lat":50.004,"lon":8.004}]}
]}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeOverpass routes requests by the tags mentioned in the posted query.
func fakeOverpass(t *testing.T, parksStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read query: %v", err)
		}
		q, err := url.QueryUnescape(string(body))
		if err != nil {
			t.Errorf("unescape query: %v", err)
		}
		switch {
		case strings.Contains(q, `"highway"`):
			_, _ = w.Write([]byte(roadsJSON))
		case strings.Contains(q, `"waterway"`):
			_, _ = w.Write([]byte(waterJSON))
		case strings.Contains(q, `"leisure"`):
			w.WriteHeader(parksStatus)
			_, _ = w.Write([]byte(`{"elements":[]}`))
		default:
			t.Errorf("unexpected query: %s", q)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLayers(t *testing.T) {
	srv := fakeOverpass(t, http.StatusOK)
	c := New(discardLogger(), srv.Client(), srv.URL, 5*time.Second)

	layers, err := c.FetchLayers(context.Background(), model.Coordinate{Lat: 50, Lon: 8}, 1000)
	if err != nil {
		t.Fatalf("FetchLayers: %v", err)
	}

	if got := len(layers.Roads); got != 3 {
		t.Fatalf("roads = %d, want 3 (single-vertex way dropped)", got)
	}
	wantClasses := []model.RoadClass{model.RoadMotorway, model.RoadResidential, model.RoadDefault}
	for i, seg := range layers.Roads {
		if seg.Class != wantClasses[i] {
			t.Errorf("road %d class = %v, want %v", i, seg.Class, wantClasses[i])
		}
	}

	if got := len(layers.Water); got != 1 {
		t.Fatalf("water = %d, want 1 (open river centerline skipped)", got)
	}
	if got := len(layers.Water[0].Rings[0]); got != 4 {
		t.Errorf("water ring length = %d, want 4", got)
	}
	if len(layers.Parks) != 0 {
		t.Errorf("parks = %d, want 0", len(layers.Parks))
	}
}

func TestFetchLayersParksDegrade(t *testing.T) {
	srv := fakeOverpass(t, http.StatusGatewayTimeout)
	c := New(discardLogger(), srv.Client(), srv.URL, 5*time.Second)

	layers, err := c.FetchLayers(context.Background(), model.Coordinate{Lat: 50, Lon: 8}, 1000)
	if err != nil {
		t.Fatalf("FetchLayers should tolerate a parks failure, got %v", err)
	}
	if len(layers.Parks) != 0 {
		t.Errorf("parks = %d, want 0 after upstream failure", len(layers.Parks))
	}
	if len(layers.Roads) == 0 {
		t.Error("roads lost alongside the parks failure")
	}
}

func TestFetchLayersRoadsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	c := New(discardLogger(), srv.Client(), srv.URL, 5*time.Second)

	if _, err := c.FetchLayers(context.Background(), model.Coordinate{Lat: 50, Lon: 8}, 1000); err == nil {
		t.Fatal("expected error when the street network fetch fails")
	}
}
