package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mapposter/mapposter/internal/core/config"
	"github.com/mapposter/mapposter/internal/core/health"
	middleware "github.com/mapposter/mapposter/internal/core/middleware"
	"github.com/mapposter/mapposter/internal/core/router"
)

// Run sets up the HTTP surface and serves until ctx is canceled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, svc router.PosterService) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/themes", router.HandleThemes(logger, svc))
	r.Get("/geocode", router.HandleGeocode(logger, svc))
	r.Post("/posters", router.HandleCreatePoster(logger, cfg, svc))
	r.Post("/posters/export", router.HandleExportPage(logger, cfg, svc))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// renders can take a while against slow upstreams
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
