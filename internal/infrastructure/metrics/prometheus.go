package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the Market Data Service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_data_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_data_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Cache Metrics
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_cache_lookups_total",
			Help: "Total number of cache lookups by kind and state",
		},
		[]string{"kind", "state"}, // kind: quote/history, state: fresh/stale/miss
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_data_cache_entries",
			Help: "Number of entries currently in cache",
		},
		[]string{"kind"},
	)

	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"reason"}, // reason: lru/expired/purge
	)

	// Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_upstream_requests_total",
			Help: "Total number of upstream provider requests",
		},
		[]string{"provider", "operation", "result"}, // result: success/rate_limited/error
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_data_upstream_request_duration_seconds",
			Help:    "Upstream provider request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"provider", "operation"},
	)

	UpstreamFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_upstream_fallbacks_total",
			Help: "Total number of calls served by the fallback provider",
		},
		[]string{"operation", "reason", "result"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_upstream_retries_total",
			Help: "Total number of retries caused by upstream rate limiting",
		},
		[]string{"operation", "attempt"},
	)

	UpstreamBackoffDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_data_upstream_backoff_duration_seconds",
			Help:    "Duration of backoff delays due to upstream rate limiting",
			Buckets: []float64{0.5, 1.0, 2.0, 4.0, 8.0, 16.0},
		},
		[]string{"operation"},
	)

	PacingWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "market_data_pacing_wait_seconds",
			Help:    "Time spent waiting for the upstream pacer between history calls",
			Buckets: []float64{0, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		},
	)

	// Business Metrics
	SymbolsRequestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_symbols_requested_total",
			Help: "Total number of symbols requested per batch kind",
		},
		[]string{"kind"},
	)

	SymbolErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_symbol_errors_total",
			Help: "Total number of per-symbol errors returned in batch responses",
		},
		[]string{"kind", "reason"}, // reason: no_data/rate_limited/upstream
	)

	BackgroundRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_background_refreshes_total",
			Help: "Total number of stale-while-revalidate refreshes",
		},
		[]string{"kind", "result"}, // result: success/error/dropped/deduplicated
	)

	SnapshotOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_snapshot_operations_total",
			Help: "Total number of snapshot store operations",
		},
		[]string{"backend", "operation", "result"},
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_rate_limit_requests_total",
			Help: "Total number of requests processed by the inbound rate limiter",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_data_stream_clients",
			Help: "Number of connected quote stream clients",
		},
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_data_application_info",
			Help: "Application information",
		},
		[]string{"version", "provider", "go_version"},
	)

	UptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_data_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordCacheLookup records the FRESH/STALE/MISS outcome of a lookup
func RecordCacheLookup(kind, state string) {
	CacheLookupsTotal.WithLabelValues(kind, state).Inc()
}

// UpdateCacheEntries sets the cache size gauge
func UpdateCacheEntries(kind string, n int) {
	CacheEntries.WithLabelValues(kind).Set(float64(n))
}

// RecordCacheEviction records an eviction
func RecordCacheEviction(reason string, n int) {
	CacheEvictionsTotal.WithLabelValues(reason).Add(float64(n))
}

// RecordUpstreamCall records upstream call metrics
func RecordUpstreamCall(provider, operation, result string, duration float64) {
	UpstreamRequestsTotal.WithLabelValues(provider, operation, result).Inc()
	UpstreamRequestDuration.WithLabelValues(provider, operation).Observe(duration)
}

// RecordUpstreamFallback records a primary failure handed to the fallback provider
func RecordUpstreamFallback(operation, reason, result string) {
	UpstreamFallbacksTotal.WithLabelValues(operation, reason, result).Inc()
}

// RecordUpstreamRetry records a retry and the delay before it
func RecordUpstreamRetry(operation string, attempt uint, delaySeconds float64) {
	UpstreamRetries.WithLabelValues(operation, strconv.FormatUint(uint64(attempt), 10)).Inc()
	UpstreamBackoffDuration.WithLabelValues(operation).Observe(delaySeconds)
}

// RecordPacingWait records time spent blocked on the pacer
func RecordPacingWait(seconds float64) {
	PacingWaitDuration.Observe(seconds)
}

// RecordSymbolsRequested counts symbols in an incoming batch
func RecordSymbolsRequested(kind string, n int) {
	SymbolsRequestedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordSymbolError counts a per-symbol error entry
func RecordSymbolError(kind, reason string) {
	SymbolErrorsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordBackgroundRefresh records the outcome of a stale refresh
func RecordBackgroundRefresh(kind, result string) {
	BackgroundRefreshesTotal.WithLabelValues(kind, result).Inc()
}

// RecordSnapshotOperation records a snapshot store call
func RecordSnapshotOperation(backend, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SnapshotOperationsTotal.WithLabelValues(backend, operation, result).Inc()
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, provider, goVersion string) {
	ApplicationInfo.WithLabelValues(version, provider, goVersion).Set(1)
}

// UpdateUptime updates application uptime
func UpdateUptime(seconds float64) {
	UptimeSeconds.Set(seconds)
}
