// Package overpass fetches street, water and park geometry from the Overpass
// API and shapes it into render-ready layers.
package overpass

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mapposter/mapposter/internal/core/model"
	"github.com/mapposter/mapposter/internal/observability"
)

type Client struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

func New(logger *slog.Logger, client *http.Client, endpoint string, timeout time.Duration) *Client {
	return &Client{logger: logger, client: client, endpoint: endpoint, timeout: timeout}
}

func (c *Client) timeoutSeconds() int {
	s := int(c.timeout / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

func (c *Client) roadsQuery(b model.BBox) string {
	return fmt.Sprintf(`[out:json][timeout:%d];way["highway"](%s);out geom;`,
		c.timeoutSeconds(), b)
}

func (c *Client) waterQuery(b model.BBox) string {
	return fmt.Sprintf(`[out:json][timeout:%d];(way["natural"~"^(water|bay)$"](%s);way["waterway"](%s););out geom;`,
		c.timeoutSeconds(), b, b)
}

func (c *Client) parksQuery(b model.BBox) string {
	return fmt.Sprintf(`[out:json][timeout:%d];(way["leisure"="park"](%s);way["landuse"~"^(grass|forest)$"](%s););out geom;`,
		c.timeoutSeconds(), b, b)
}

func (c *Client) run(ctx context.Context, query string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("data", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	observability.ObserveUpstreamLatency("overpass", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(b))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// FetchLayers pulls all three layers around the center. A road fetch failure
// is fatal; water and park failures degrade to empty layers so sparse regions
// still render, matching the tolerant behavior posters always had.
func (c *Client) FetchLayers(ctx context.Context, center model.Coordinate, radiusM int) (model.GeometryLayers, error) {
	bbox := model.BBoxAround(center, float64(radiusM))
	var layers model.GeometryLayers

	body, err := c.run(ctx, c.roadsQuery(bbox))
	if err != nil {
		return model.GeometryLayers{}, fmt.Errorf("fetch street network: %w", err)
	}
	layers.Roads, err = parseRoads(body)
	if err != nil {
		return model.GeometryLayers{}, fmt.Errorf("parse street network: %w", err)
	}

	if body, err = c.run(ctx, c.waterQuery(bbox)); err != nil {
		c.logger.Warn("water fetch failed, rendering without water", "err", err)
	} else if layers.Water, err = parsePolygons(body); err != nil {
		c.logger.Warn("water parse failed, rendering without water", "err", err)
		layers.Water = nil
	}

	if body, err = c.run(ctx, c.parksQuery(bbox)); err != nil {
		c.logger.Warn("parks fetch failed, rendering without parks", "err", err)
	} else if layers.Parks, err = parsePolygons(body); err != nil {
		c.logger.Warn("parks parse failed, rendering without parks", "err", err)
		layers.Parks = nil
	}

	c.logger.Debug("geometry fetched",
		"roads", len(layers.Roads), "water", len(layers.Water), "parks", len(layers.Parks))
	return layers, nil
}
