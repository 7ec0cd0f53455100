// Package router holds the HTTP handlers and their input validation.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mapposter/mapposter/internal/compose"
	"github.com/mapposter/mapposter/internal/core/config"
	"github.com/mapposter/mapposter/internal/core/model"
	"github.com/mapposter/mapposter/internal/geocode"
	"github.com/mapposter/mapposter/internal/observability"
	"github.com/mapposter/mapposter/internal/poster"
	"github.com/mapposter/mapposter/internal/theme"
	"github.com/mapposter/mapposter/internal/writer"
)

// PosterService is the slice of the pipeline the handlers need.
type PosterService interface {
	Themes() ([]string, error)
	Geocode(ctx context.Context, city, country string) (model.Coordinate, error)
	CreatePoster(ctx context.Context, req model.RenderRequest) (poster.Result, error)
	ExportPage(ctx context.Context, req model.RenderRequest, spec compose.PageSpec, format writer.Format) (poster.Result, error)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps pipeline errors onto HTTP statuses: caller mistakes are 400,
// an unknown theme or city is 404 or 422, provider trouble is 502, anything
// else is 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, poster.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, theme.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, geocode.ErrNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, poster.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= 500 {
		logger.Error("request failed", "err", err)
	} else {
		logger.Warn("request rejected", "status", code, "err", err)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

// HandleThemes lists available theme ids.
func HandleThemes(logger *slog.Logger, svc PosterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		ids, err := svc.Themes()
		if err != nil {
			writeError(logger, sw, err)
		} else {
			writeJSON(sw, http.StatusOK, map[string][]string{"themes": ids})
		}
		observability.ObserveHTTP(r.Method, "/themes", sw.code, time.Since(start).Seconds())
	}
}

// HandleGeocode resolves a city without rendering.
func HandleGeocode(logger *slog.Logger, svc PosterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		city := strings.TrimSpace(r.URL.Query().Get("city"))
		country := strings.TrimSpace(r.URL.Query().Get("country"))
		if city == "" {
			writeError(logger, sw, fmt.Errorf("%w: missing required parameter: city", poster.ErrBadRequest))
			observability.ObserveHTTP(r.Method, "/geocode", sw.code, time.Since(start).Seconds())
			return
		}

		coord, err := svc.Geocode(r.Context(), city, country)
		if err != nil {
			writeError(logger, sw, err)
		} else {
			writeJSON(sw, http.StatusOK, map[string]any{
				"city": city, "lat": coord.Lat, "lon": coord.Lon, "display": coord.String(),
			})
		}
		observability.ObserveHTTP(r.Method, "/geocode", sw.code, time.Since(start).Seconds())
	}
}

type posterRequest struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Theme   string `json:"theme"`
	RadiusM int    `json:"radius_m"`
	DPI     int    `json:"dpi"`

	// export-only fields
	Size        string `json:"size"`
	Orientation string `json:"orientation"`
	PrintReady  bool   `json:"print_ready"`
	Format      string `json:"format"`
}

func decodeRequest(r *http.Request, cfg config.Config) (posterRequest, error) {
	var pr posterRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pr); err != nil {
		return posterRequest{}, fmt.Errorf("%w: decode body: %s", poster.ErrBadRequest, err)
	}
	if pr.Theme == "" {
		pr.Theme = cfg.DefaultTheme
	}
	if pr.RadiusM == 0 {
		pr.RadiusM = cfg.DefaultRadius
	}
	if pr.DPI == 0 {
		pr.DPI = cfg.DefaultDPI
	}
	return pr, nil
}

func (pr posterRequest) renderRequest() model.RenderRequest {
	return model.RenderRequest{
		City:    pr.City,
		Country: pr.Country,
		Theme:   pr.Theme,
		RadiusM: pr.RadiusM,
		DPI:     pr.DPI,
	}
}

func (pr posterRequest) pageSpec() (compose.PageSpec, error) {
	size := pr.Size
	if size == "" {
		size = "A4"
	}
	ps, err := compose.ParsePaperSize(size)
	if err != nil {
		return compose.PageSpec{}, fmt.Errorf("%w: %s", poster.ErrBadRequest, err)
	}
	orient := pr.Orientation
	if orient == "" {
		orient = "portrait"
	}
	po, err := compose.ParseOrientation(orient)
	if err != nil {
		return compose.PageSpec{}, fmt.Errorf("%w: %s", poster.ErrBadRequest, err)
	}
	return compose.PageSpec{Size: ps, Orientation: po, PrintReady: pr.PrintReady}, nil
}

// HandleCreatePoster runs the PNG pipeline for a JSON request body.
func HandleCreatePoster(logger *slog.Logger, cfg config.Config, svc PosterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		pr, err := decodeRequest(r, cfg)
		if err != nil {
			writeError(logger, sw, err)
			observability.ObserveHTTP(r.Method, "/posters", sw.code, time.Since(start).Seconds())
			return
		}

		res, err := svc.CreatePoster(r.Context(), pr.renderRequest())
		if err != nil {
			writeError(logger, sw, err)
		} else {
			writeJSON(sw, http.StatusCreated, res)
		}
		observability.ObserveHTTP(r.Method, "/posters", sw.code, time.Since(start).Seconds())
	}
}

// HandleExportPage runs the print page pipeline (PDF or EPS).
func HandleExportPage(logger *slog.Logger, cfg config.Config, svc PosterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		route := "/posters/export"

		pr, err := decodeRequest(r, cfg)
		if err != nil {
			writeError(logger, sw, err)
			observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
			return
		}

		spec, err := pr.pageSpec()
		if err != nil {
			writeError(logger, sw, err)
			observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
			return
		}
		format, err := writer.ParseFormat(pr.Format)
		if err != nil || format == writer.PNG {
			if err == nil {
				err = errors.New("png is not a page format")
			}
			writeError(logger, sw, fmt.Errorf("%w: %s", poster.ErrBadRequest, err))
			observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
			return
		}

		res, err := svc.ExportPage(r.Context(), pr.renderRequest(), spec, format)
		if err != nil {
			writeError(logger, sw, err)
		} else {
			writeJSON(sw, http.StatusCreated, res)
		}
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}
