package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mapposter/mapposter/internal/compose"
	"github.com/mapposter/mapposter/internal/core/config"
	"github.com/mapposter/mapposter/internal/core/httpclient"
	"github.com/mapposter/mapposter/internal/core/model"
	"github.com/mapposter/mapposter/internal/geocode"
	"github.com/mapposter/mapposter/internal/logger"
	"github.com/mapposter/mapposter/internal/overpass"
	"github.com/mapposter/mapposter/internal/poster"
	"github.com/mapposter/mapposter/internal/theme"
	"github.com/mapposter/mapposter/internal/writer"
)

type cliFlags struct {
	city        string
	country     string
	theme       string
	radius      int
	dpi         int
	out         string
	format      string
	size        string
	orientation string
	printReady  bool
	listThemes  bool
	quiet       bool
}

func loadFlags(cfg config.Config) cliFlags {
	var f cliFlags
	flag.StringVar(&f.city, "city", "", "City to render (required)")
	flag.StringVar(&f.country, "country", "", "Country, disambiguates the city")
	flag.StringVar(&f.theme, "theme", cfg.DefaultTheme, "Theme id")
	flag.IntVar(&f.radius, "radius", cfg.DefaultRadius, "Map radius in meters")
	flag.IntVar(&f.dpi, "dpi", cfg.DefaultDPI, "Raster resolution (png only)")
	flag.StringVar(&f.out, "out", cfg.OutputDir, "Output directory")
	flag.StringVar(&f.format, "format", "png", "Output format: png, pdf or eps")
	flag.StringVar(&f.size, "size", "A4", "Paper size for pdf/eps: A3, A4 or A5")
	flag.StringVar(&f.orientation, "orientation", "portrait", "portrait, landscape or square")
	flag.BoolVar(&f.printReady, "print-ready", false, "Add bleed and crop marks (pdf/eps)")
	flag.BoolVar(&f.listThemes, "list-themes", false, "List available themes and exit")
	flag.BoolVar(&f.quiet, "quiet", false, "Suppress progress logging")
	flag.Parse()
	return f
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()
	f := loadFlags(cfg)

	level := cfg.LogLevel
	if f.quiet {
		level = "error"
	}
	zl := logger.Build(logger.Config{Level: level, Console: true, Component: "poster"}, os.Stderr)
	appLog := logger.NewSlog(&zl)

	themes := theme.NewStore(cfg.ThemesDir)

	if f.listThemes {
		ids, err := themes.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list themes:", err)
			return 1
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return 0
	}

	if strings.TrimSpace(f.city) == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -city")
		flag.Usage()
		return 1
	}

	format, err := writer.ParseFormat(strings.ToLower(f.format))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.NewOutbound()
	geocoder, err := geocode.New(appLog, httpClient, cfg.NominatimURL, cfg.UserAgent, cfg.GeocodeTimeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "geocoder setup:", err)
		return 1
	}
	fetcher := overpass.New(appLog, httpClient, cfg.OverpassURL, cfg.FetchTimeout)
	svc := poster.NewService(appLog, themes, geocoder, fetcher, nil, f.out)

	req := model.RenderRequest{
		City:    f.city,
		Country: f.country,
		Theme:   f.theme,
		RadiusM: f.radius,
		DPI:     f.dpi,
	}

	var res poster.Result
	if format == writer.PNG {
		res, err = svc.CreatePoster(ctx, req)
	} else {
		var spec compose.PageSpec
		if spec.Size, err = compose.ParsePaperSize(f.size); err == nil {
			spec.Orientation, err = compose.ParseOrientation(f.orientation)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		spec.PrintReady = f.printReady
		res, err = svc.ExportPage(ctx, req, spec, format)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "poster failed:", err)
		return 1
	}

	fmt.Println(res.Path)
	return 0
}
