// Package geomcache caches fetched geometry snapshots in Redis, keyed by the
// H3 cell of the request center so nearby requests for the same area reuse
// one upstream fetch.
package geomcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/uber/h3-go/v4"

	"github.com/mapposter/mapposter/internal/core/model"
	"github.com/mapposter/mapposter/internal/observability"
)

type Cache struct {
	logger    *slog.Logger
	rdb       *redis.Client
	ttl       time.Duration
	res       int
	opTimeout time.Duration
}

func New(ctx context.Context, logger *slog.Logger, addr string, ttl time.Duration, res int, opTimeout time.Duration) (*Cache, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{logger: logger, rdb: rdb, ttl: ttl, res: res, opTimeout: opTimeout}, nil
}

// Key collapses the request center to an H3 cell at the configured resolution
// and folds the radius into a digest, so two requests for roughly the same
// spot and radius share a snapshot.
func (c *Cache) Key(center model.Coordinate, radiusM int) (string, error) {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: center.Lat, Lng: center.Lon}, c.res)
	if err != nil {
		return "", fmt.Errorf("h3 cell for %v: %w", center, err)
	}
	sum := xxhash.Sum64String(fmt.Sprintf("r=%d", radiusM))
	return fmt.Sprintf("geom:%d:%s:%016x", c.res, cell, sum), nil
}

// Get is best effort: any failure counts as a miss so the pipeline falls
// through to the live fetch.
func (c *Cache) Get(ctx context.Context, center model.Coordinate, radiusM int) (model.GeometryLayers, bool) {
	key, err := c.Key(center, radiusM)
	if err != nil {
		c.logger.Warn("cache key", "err", err)
		observability.IncCacheError()
		return model.GeometryLayers{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.IncCacheMiss()
		return model.GeometryLayers{}, false
	}
	if err != nil {
		c.logger.Warn("cache get", "key", key, "err", err)
		observability.IncCacheError()
		return model.GeometryLayers{}, false
	}

	var layers model.GeometryLayers
	if err := json.Unmarshal(raw, &layers); err != nil {
		c.logger.Warn("cache decode, dropping entry", "key", key, "err", err)
		observability.IncCacheError()
		c.del(key)
		return model.GeometryLayers{}, false
	}
	observability.IncCacheHit()
	return layers, true
}

// Put stores a snapshot with the configured TTL. Failures are logged and
// swallowed; caching never fails a render.
func (c *Cache) Put(ctx context.Context, center model.Coordinate, radiusM int, layers model.GeometryLayers) {
	key, err := c.Key(center, radiusM)
	if err != nil {
		c.logger.Warn("cache key", "err", err)
		observability.IncCacheError()
		return
	}
	raw, err := json.Marshal(layers)
	if err != nil {
		c.logger.Warn("cache encode", "key", key, "err", err)
		observability.IncCacheError()
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set", "key", key, "err", err)
		observability.IncCacheError()
	}
}

func (c *Cache) del(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache del", "key", key, "err", err)
	}
}

func (c *Cache) Close() error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
