// Package metrics exposes Prometheus instrumentation for the advisor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface metrics
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spot_advisor_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"endpoint", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spot_advisor_request_duration_seconds",
			Help:    "End-to-end request latency per endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// Upstream collaborator metrics
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spot_advisor_upstream_requests_total",
			Help: "Total number of provider API calls by source and outcome",
		},
		[]string{"source", "outcome"}, // source: catalog, pricing, eviction
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spot_advisor_upstream_duration_seconds",
			Help:    "Provider API call latency by source",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	cacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spot_advisor_cache_events_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"}, // hit or miss
	)
)

// ObserveRequest records one handled HTTP request.
func ObserveRequest(endpoint, status string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(endpoint, status).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveUpstream records one provider API call.
func ObserveUpstream(source string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	upstreamRequestsTotal.WithLabelValues(source, outcome).Inc()
	upstreamDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// CacheHit records a cache hit.
func CacheHit() {
	cacheEventsTotal.WithLabelValues("hit").Inc()
}

// CacheMiss records a cache miss.
func CacheMiss() {
	cacheEventsTotal.WithLabelValues("miss").Inc()
}
