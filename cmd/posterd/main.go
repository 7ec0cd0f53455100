package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mapposter/mapposter/internal/core/config"
	"github.com/mapposter/mapposter/internal/core/httpclient"
	"github.com/mapposter/mapposter/internal/core/server"
	"github.com/mapposter/mapposter/internal/geocode"
	"github.com/mapposter/mapposter/internal/geomcache"
	"github.com/mapposter/mapposter/internal/logger"
	"github.com/mapposter/mapposter/internal/observability"
	"github.com/mapposter/mapposter/internal/overpass"
	"github.com/mapposter/mapposter/internal/poster"
	"github.com/mapposter/mapposter/internal/theme"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "posterd",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting posterd",
		"addr", cfg.Addr,
		"version", Version,
		"nominatim", cfg.NominatimURL,
		"overpass", cfg.OverpassURL,
		"cache", cfg.CacheEnabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.NewOutbound()

	geocoder, err := geocode.New(appLog, httpClient, cfg.NominatimURL, cfg.UserAgent, cfg.GeocodeTimeout)
	if err != nil {
		appLog.Error("geocoder setup failed", "err", err)
		return 1
	}
	fetcher := overpass.New(appLog, httpClient, cfg.OverpassURL, cfg.FetchTimeout)

	var cache poster.GeometryCache
	if cfg.CacheEnabled {
		gc, err := geomcache.New(ctx, appLog, cfg.RedisAddr, cfg.CacheTTL, cfg.CacheRes, cfg.CacheTimeout)
		if err != nil {
			appLog.Error("geometry cache setup failed", "err", err)
			return 1
		}
		defer func() { _ = gc.Close() }()
		cache = gc
	}

	svc := poster.NewService(appLog, theme.NewStore(cfg.ThemesDir), geocoder, fetcher, cache, cfg.OutputDir)

	if err := server.Run(ctx, cfg, appLog, svc); err != nil {
		appLog.Error("server failed", "err", err)
		return 1
	}
	appLog.Info("shutdown complete")
	return 0
}
