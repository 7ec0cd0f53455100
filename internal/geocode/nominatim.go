// Package geocode resolves place names to coordinates via Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mapposter/mapposter/internal/core/model"
	"github.com/mapposter/mapposter/internal/observability"
)

// ErrNotFound means the city/country pair resolved to no coordinates. It is
// fatal for the request and surfaced verbatim to the caller.
var ErrNotFound = errors.New("location not found")

const memoSize = 256

type Client struct {
	logger    *slog.Logger
	client    *http.Client
	searchURL *url.URL
	userAgent string
	timeout   time.Duration
	memo      *lru.Cache[string, model.Coordinate]
}

func New(logger *slog.Logger, client *http.Client, base, userAgent string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse nominatim url: %w", err)
	}
	// geocoding results are effectively immutable; a tiny in-process memo
	// spares the upstream on repeated lookups of the same place
	memo, err := lru.New[string, model.Coordinate](memoSize)
	if err != nil {
		return nil, fmt.Errorf("init geocode memo: %w", err)
	}
	return &Client{
		logger:    logger,
		client:    client,
		searchURL: u,
		userAgent: userAgent,
		timeout:   timeout,
		memo:      memo,
	}, nil
}

// Lookup resolves "city, country" to a coordinate.
func (c *Client) Lookup(ctx context.Context, city, country string) (model.Coordinate, error) {
	query := strings.TrimSpace(city)
	if country = strings.TrimSpace(country); country != "" {
		query += ", " + country
	}
	key := strings.ToLower(query)
	if coord, ok := c.memo.Get(key); ok {
		return coord, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.searchURL
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	observability.ObserveUpstreamLatency("nominatim", time.Since(start).Seconds())
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return model.Coordinate{}, fmt.Errorf("geocode %q: upstream status %d: %s", query, resp.StatusCode, string(b))
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return model.Coordinate{}, fmt.Errorf("geocode %q: decode response: %w", query, err)
	}
	if len(results) == 0 {
		return model.Coordinate{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("geocode %q: parse lat: %w", query, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("geocode %q: parse lon: %w", query, err)
	}

	coord := model.Coordinate{Lat: lat, Lon: lon}
	c.memo.Add(key, coord)
	c.logger.Debug("geocoded", "query", query, "lat", lat, "lon", lon)
	return coord, nil
}
