// Package metrics exposes the Prometheus collectors of the quote service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// QuotesTotal counts quote computations by outcome.
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotes_total",
			Help: "Total number of quote computations",
		},
		[]string{"status"},
	)

	// QuoteDuration tracks how long a quote takes to compute.
	QuoteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quote_duration_seconds",
			Help:    "Quote computation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	// CostCalculationsTotal counts cost engine runs by material, process and outcome.
	CostCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_calculations_total",
			Help: "Total number of fabrication cost calculations",
		},
		[]string{"material", "process", "status"},
	)

	// LimitViolationsTotal counts limit corrections and strict rejections by tier and type.
	LimitViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "limit_violations_total",
			Help: "Total number of pricing limit violations",
		},
		[]string{"tier", "type", "mode"},
	)

	// PricingTablesVersion exposes the version of the active pricing tables.
	PricingTablesVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricing_tables_version",
			Help: "Version of the active pricing tables (0 means built-in defaults)",
		},
	)

	// CircuitBreakerState exposes breaker state by name: 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	// CacheOperationsTotal tracks cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// CacheSize tracks current cache size.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current cache size",
		},
	)

	// LogEntriesTotal counts request and audit entries shipped to the logs collection.
	LogEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log_entries_total",
			Help: "Request and audit log entries by shipping outcome",
		},
		[]string{"result"},
	)

	// RateLimitDecisionsTotal counts limiter outcomes per store backend.
	RateLimitDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limiter decisions by backend and result",
		},
		[]string{"backend", "result"},
	)

	// IdempotencyReplaysTotal counts idempotency store lookups.
	IdempotencyReplaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotency_lookups_total",
			Help: "Idempotency key lookups by backend and result",
		},
		[]string{"backend", "result"},
	)

	// RequestTimeoutsTotal counts requests answered 504 by the deadline middleware.
	RequestTimeoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_timeouts_total",
			Help: "Requests that ran past their deadline, by route",
		},
		[]string{"route"},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordQuote records the duration and outcome of a quote.
func RecordQuote(duration time.Duration, status string) {
	QuoteDuration.Observe(duration.Seconds())
	QuotesTotal.WithLabelValues(status).Inc()
}

// RecordCostCalculation counts one cost engine run.
func RecordCostCalculation(material, process, status string) {
	CostCalculationsTotal.WithLabelValues(material, process, status).Inc()
}

// RecordLimitViolation counts one violation. mode is "corrective" or "strict".
func RecordLimitViolation(tier, violationType, mode string) {
	LimitViolationsTotal.WithLabelValues(tier, violationType, mode).Inc()
}

// SetPricingTablesVersion publishes the active tables version.
func SetPricingTablesVersion(version int) {
	PricingTablesVersion.Set(float64(version))
}

// SetCircuitBreakerState publishes a breaker state.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheMetrics updates cache size and capacity metrics.
func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}

// RecordLogEntries counts n log entries with the given outcome
// (accepted, dropped, shipped or failed).
func RecordLogEntries(result string, n int) {
	LogEntriesTotal.WithLabelValues(result).Add(float64(n))
}

// RecordRateLimit counts one limiter decision: allowed, limited or error.
func RecordRateLimit(backend, result string) {
	RateLimitDecisionsTotal.WithLabelValues(backend, result).Inc()
}

// RecordIdempotencyLookup counts one replay lookup: hit, miss or error.
func RecordIdempotencyLookup(backend, result string) {
	IdempotencyReplaysTotal.WithLabelValues(backend, result).Inc()
}

// RecordTimeout counts one request that ran past its deadline.
func RecordTimeout(route string) {
	RequestTimeoutsTotal.WithLabelValues(route).Inc()
}
