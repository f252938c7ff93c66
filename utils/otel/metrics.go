package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OTel metric instruments for history-server.
var Metrics *HistoryServerMetrics

// HistoryServerMetrics contains all metric instruments.
type HistoryServerMetrics struct {
	CacheHitsTotal   metric.Int64Counter
	CacheMissesTotal metric.Int64Counter
	CacheErrorsTotal metric.Int64Counter
	SearchDuration   metric.Float64Histogram
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("history-server")

	cacheHits, err := meter.Int64Counter("history_server_cache_hits_total",
		metric.WithDescription("Total number of search cache hits"),
	)
	if err != nil {
		return err
	}

	cacheMisses, err := meter.Int64Counter("history_server_cache_misses_total",
		metric.WithDescription("Total number of search cache misses"),
	)
	if err != nil {
		return err
	}

	cacheErrors, err := meter.Int64Counter("history_server_cache_errors_total",
		metric.WithDescription("Total number of absorbed cache-store faults"),
	)
	if err != nil {
		return err
	}

	searchDuration, err := meter.Float64Histogram("history_server_search_duration_seconds",
		metric.WithDescription("Search request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	Metrics = &HistoryServerMetrics{
		CacheHitsTotal:   cacheHits,
		CacheMissesTotal: cacheMisses,
		CacheErrorsTotal: cacheErrors,
		SearchDuration:   searchDuration,
	}

	return nil
}

// RecordCacheHit increments the cache hit counter. Safe to call before
// InitMetrics.
func RecordCacheHit(ctx context.Context) {
	if Metrics == nil {
		return
	}
	Metrics.CacheHitsTotal.Add(ctx, 1)
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss(ctx context.Context) {
	if Metrics == nil {
		return
	}
	Metrics.CacheMissesTotal.Add(ctx, 1)
}

// RecordCacheError counts an absorbed cache-store fault by operation
// (get, set, encode, decode).
func RecordCacheError(ctx context.Context, operation string) {
	if Metrics == nil {
		return
	}
	Metrics.CacheErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordSearchDuration records how long a search request took.
func RecordSearchDuration(ctx context.Context, seconds float64, cached bool) {
	if Metrics == nil {
		return
	}
	Metrics.SearchDuration.Record(ctx, seconds, metric.WithAttributes(attribute.Bool("cached", cached)))
}
