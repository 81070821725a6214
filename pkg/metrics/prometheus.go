// Package metrics provides Prometheus metrics for the regulation matrix
// data-access layer and its snapshot host.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultSampleInterval = 10 * time.Second
)

// defaultLatencyBucketsMs covers snapshot reads from a CDN up to slow backends.
var defaultLatencyBucketsMs = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // read-only defaults

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	latencyBucketsMs []float64
	enabled          bool
	sampleInterval   time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Data-access router
	routerRequests         *prometheus.CounterVec
	routerRequestDuration  *prometheus.HistogramVec
	routerSimulatedWrites  *prometheus.CounterVec
	routerStaticFetchFails prometheus.Counter

	// Query cache
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheCoalesced     prometheus.Counter
	cacheInvalidations prometheus.Counter
	cacheEntries       prometheus.Gauge

	// Snapshot host
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Configure rebuilds the global manager on a fresh registry with opts. It is
// meant to run once at startup, before anything records or exposes metrics.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "regmatrix",
		subsystem:        "dataaccess",
		latencyBucketsMs: defaultLatencyBucketsMs,
		enabled:          true,
		sampleInterval:   defaultSampleInterval,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.constLabels)

	m.routerRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "requests_total",
			Help:        "Logical requests handled by the router by deployment mode, method and outcome",
			ConstLabels: constLabels,
		},
		[]string{"mode", "method", "outcome"},
	)

	m.routerRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "request_duration_milliseconds",
			Help:        "Router request latency in milliseconds",
			Buckets:     m.latencyBucketsMs,
			ConstLabels: constLabels,
		},
		[]string{"mode", "method"},
	)

	m.routerSimulatedWrites = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "simulated_writes_total",
			Help:        "Writes answered with a synthetic success in static deployments",
			ConstLabels: constLabels,
		},
		[]string{"method"},
	)

	m.routerStaticFetchFails = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "static_fetch_failures_total",
		Help:        "Static snapshot reads that failed",
		ConstLabels: constLabels,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "query",
		Name:        "cache_hits_total",
		Help:        "Reads answered from the query cache",
		ConstLabels: constLabels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "query",
		Name:        "cache_misses_total",
		Help:        "Reads that triggered a fetch",
		ConstLabels: constLabels,
	})

	m.cacheCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "query",
		Name:        "cache_coalesced_total",
		Help:        "Reads that joined an in-flight fetch for the same key",
		ConstLabels: constLabels,
	})

	m.cacheInvalidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "query",
		Name:        "cache_invalidations_total",
		Help:        "Cache entries dropped by explicit invalidation",
		ConstLabels: constLabels,
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "query",
		Name:        "cache_entries",
		Help:        "Current number of cached logical paths",
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   "site",
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   "site",
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.latencyBucketsMs,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   "site",
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   "site",
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})
}

// RecordRouterRequest counts one routed request.
func (m *Manager) RecordRouterRequest(mode, method, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.routerRequests.WithLabelValues(mode, method, outcome).Inc()
	m.routerRequestDuration.WithLabelValues(mode, method).Observe(latencyMs)
}

// Router metrics.

// RecordRouterRequest counts one routed request on the global manager.
func RecordRouterRequest(mode, method, outcome string, latencyMs float64) {
	globalManager.RecordRouterRequest(mode, method, outcome, latencyMs)
}

// RecordSimulatedWrite increments the simulated write counter.
func RecordSimulatedWrite(method string) {
	globalManager.routerSimulatedWrites.WithLabelValues(method).Inc()
}

// RecordStaticFetchFailure increments the static snapshot failure counter.
func RecordStaticFetchFailure() {
	globalManager.routerStaticFetchFails.Inc()
}

// Query cache metrics.

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheCoalesced increments the coalesced read counter.
func RecordCacheCoalesced() {
	globalManager.cacheCoalesced.Inc()
}

// RecordCacheInvalidations adds n dropped entries.
func RecordCacheInvalidations(n int) {
	globalManager.cacheInvalidations.Add(float64(n))
}

// UpdateCacheEntries sets the number of cached keys.
func UpdateCacheEntries(n int) {
	globalManager.cacheEntries.Set(float64(n))
}

// Snapshot host metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SampleInterval reports how often runtime gauges should be sampled.
func (m *Manager) SampleInterval() time.Duration {
	return m.sampleInterval
}

// SampleInterval reports the global manager's sampling interval.
func SampleInterval() time.Duration {
	return globalManager.SampleInterval()
}
