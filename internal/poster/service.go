// Package poster runs the full pipeline for one request: resolve the theme,
// geocode the city, fetch geometry, render, compose and write the output.
package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mapposter/mapposter/internal/compose"
	"github.com/mapposter/mapposter/internal/core/model"
	"github.com/mapposter/mapposter/internal/figure"
	"github.com/mapposter/mapposter/internal/figure/rasterpaint"
	"github.com/mapposter/mapposter/internal/observability"
	"github.com/mapposter/mapposter/internal/render"
	"github.com/mapposter/mapposter/internal/theme"
	"github.com/mapposter/mapposter/internal/writer"
)

// ErrBadRequest marks caller mistakes: missing fields, unknown paper sizes,
// bad formats. ErrUpstream marks geometry provider failures.
var (
	ErrBadRequest = errors.New("bad request")
	ErrUpstream   = errors.New("upstream failure")
)

type Geocoder interface {
	Lookup(ctx context.Context, city, country string) (model.Coordinate, error)
}

type Fetcher interface {
	FetchLayers(ctx context.Context, center model.Coordinate, radiusM int) (model.GeometryLayers, error)
}

// GeometryCache is optional; a nil cache means every request fetches live.
type GeometryCache interface {
	Get(ctx context.Context, center model.Coordinate, radiusM int) (model.GeometryLayers, bool)
	Put(ctx context.Context, center model.Coordinate, radiusM int, layers model.GeometryLayers)
}

type Service struct {
	logger   *slog.Logger
	themes   *theme.Store
	geocoder Geocoder
	fetcher  Fetcher
	cache    GeometryCache
	outDir   string
	now      func() time.Time
}

func NewService(log *slog.Logger, themes *theme.Store, geocoder Geocoder, fetcher Fetcher, cache GeometryCache, outDir string) *Service {
	return &Service{
		logger:   log,
		themes:   themes,
		geocoder: geocoder,
		fetcher:  fetcher,
		cache:    cache,
		outDir:   outDir,
		now:      time.Now,
	}
}

// Result describes one written poster.
type Result struct {
	Path     string           `json:"path"`
	Filename string           `json:"filename"`
	City     string           `json:"city"`
	Theme    string           `json:"theme"`
	Center   model.Coordinate `json:"center"`
	Format   string           `json:"format"`
}

// prepare runs the shared front half of both operations. The theme is
// resolved before any network call so a bad theme id fails instantly.
func (s *Service) prepare(ctx context.Context, req model.RenderRequest, aspect float64) (*figure.Figure, model.Coordinate, error) {
	if err := req.Validate(); err != nil {
		return nil, model.Coordinate{}, fmt.Errorf("%w: %s", ErrBadRequest, err)
	}

	th, err := s.themes.Load(req.Theme)
	if err != nil {
		return nil, model.Coordinate{}, err
	}

	start := s.now()
	center, err := s.geocoder.Lookup(ctx, req.City, req.Country)
	observability.ObserveStage("geocode", time.Since(start).Seconds())
	if err != nil {
		return nil, model.Coordinate{}, fmt.Errorf("geocode %q: %w", req.City, err)
	}
	s.logger.Info("geocoded", "city", req.City, "lat", center.Lat, "lon", center.Lon)

	layers, err := s.loadLayers(ctx, center, req.RadiusM)
	if err != nil {
		return nil, model.Coordinate{}, err
	}

	bbox := model.BBoxAround(center, float64(req.RadiusM))
	start = s.now()
	fig := render.Render(layers, th, render.Params{
		City:        req.City,
		Country:     req.Country,
		Center:      center,
		BBox:        bbox,
		AspectRatio: aspect,
	})
	observability.ObserveStage("render", time.Since(start).Seconds())

	return fig, center, nil
}

func (s *Service) loadLayers(ctx context.Context, center model.Coordinate, radiusM int) (model.GeometryLayers, error) {
	if s.cache != nil {
		if layers, ok := s.cache.Get(ctx, center, radiusM); ok {
			s.logger.Debug("geometry cache hit", "lat", center.Lat, "lon", center.Lon)
			return layers, nil
		}
	}
	start := s.now()
	layers, err := s.fetcher.FetchLayers(ctx, center, radiusM)
	observability.ObserveStage("fetch", time.Since(start).Seconds())
	if err != nil {
		return model.GeometryLayers{}, fmt.Errorf("%w: %s", ErrUpstream, err)
	}
	if s.cache != nil {
		s.cache.Put(ctx, center, radiusM, layers)
	}
	return layers, nil
}

// CreatePoster renders a PNG poster and writes it to the output directory.
func (s *Service) CreatePoster(ctx context.Context, req model.RenderRequest) (Result, error) {
	fig, center, err := s.prepare(ctx, req, 0)
	if err != nil {
		return Result{}, err
	}

	start := s.now()
	data, err := rasterpaint.EncodePNG(fig, req.DPI)
	observability.ObserveStage("encode", time.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("encode png: %w", err)
	}

	filename := writer.PNGFilename(req.City, req.Theme, s.now())
	path, err := writer.Write(data, s.outDir, filename)
	if err != nil {
		return Result{}, err
	}
	observability.IncPoster("png", req.Theme)
	s.logger.Info("poster written", "path", path, "bytes", len(data))
	return Result{
		Path: path, Filename: filename,
		City: req.City, Theme: req.Theme, Center: center, Format: "png",
	}, nil
}

// ExportPage renders a print page (PDF or EPS) at the given paper spec.
func (s *Service) ExportPage(ctx context.Context, req model.RenderRequest, spec compose.PageSpec, format writer.Format) (Result, error) {
	aspect, err := compose.AspectRatio(spec)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrBadRequest, err)
	}

	fig, center, err := s.prepare(ctx, req, aspect)
	if err != nil {
		return Result{}, err
	}

	title := fmt.Sprintf("%s map poster", req.City)
	start := s.now()
	var data []byte
	switch format {
	case writer.EPS:
		data, _, err = compose.EPS(fig, spec, title)
	case writer.PDF:
		data, _, err = compose.PDF(fig, spec, title)
	default:
		return Result{}, fmt.Errorf("%w: format %q is not a page format", ErrBadRequest, format)
	}
	observability.ObserveStage("compose", time.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("compose %s page: %w", format, err)
	}

	filename := writer.PageFilename(req.City, req.Theme, spec, format)
	path, err := writer.Write(data, s.outDir, filename)
	if err != nil {
		return Result{}, err
	}
	observability.IncPoster(string(format), req.Theme)
	s.logger.Info("page written", "path", path, "bytes", len(data))
	return Result{
		Path: path, Filename: filename,
		City: req.City, Theme: req.Theme, Center: center, Format: string(format),
	}, nil
}

// Themes lists the available theme ids.
func (s *Service) Themes() ([]string, error) {
	return s.themes.List()
}

// Geocode resolves a city without rendering, for the lookup endpoint.
func (s *Service) Geocode(ctx context.Context, city, country string) (model.Coordinate, error) {
	return s.geocoder.Lookup(ctx, city, country)
}
