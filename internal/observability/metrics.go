// Package observability exposes Prometheus metrics for the poster pipeline.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"upstream"},
	)

	renderDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_duration_seconds",
			Help:    "Time spent in a pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"stage"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geomcache_results_total",
			Help: "Geometry cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	postersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posters_generated_total",
			Help: "Posters generated by format and theme.",
		},
		[]string{"format", "theme"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func ObserveStage(stage string, durationSeconds float64) {
	renderDurationSeconds.WithLabelValues(stage).Observe(durationSeconds)
}

func IncCacheHit()  { cacheResults.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheResults.WithLabelValues("miss").Inc() }
func IncCacheError() {
	cacheResults.WithLabelValues("error").Inc()
}

func IncPoster(format, theme string) {
	postersTotal.WithLabelValues(format, theme).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
