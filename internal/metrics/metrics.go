// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderwise_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wanderwise_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderwise_upstream_requests_total",
			Help: "Upstream API calls by service and outcome (success, not_found, unavailable)",
		},
		[]string{"service", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wanderwise_upstream_request_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wanderwise_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderwise_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	ClimateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderwise_climate_cache_lookups_total",
			Help: "Climate cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	ClimateCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderwise_climate_cache_invalidations_total",
			Help: "Climate cache invalidations by source (http, mqtt) and scope (one, all)",
		},
		[]string{"source", "scope"},
	)

	RecommendationCountries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wanderwise_recommendation_countries_total",
			Help: "Candidate countries processed by the pipeline, by disposition (kept, filtered, skipped)",
		},
		[]string{"disposition"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstream records one upstream call.
func RecordUpstream(service, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
	UpstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}
