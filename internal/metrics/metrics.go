// Package metrics exposes Prometheus collectors for the catalog client.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestAttemptsTotal    *prometheus.CounterVec
	requestDurationSeconds  *prometheus.HistogramVec
	endpointFallbacksTotal  *prometheus.CounterVec
	cacheDegradedReadsTotal prometheus.Counter
	submissionsTotal        *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		requestAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_request_attempts_total",
				Help: "Total request attempts, labeled by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		)

		requestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_request_duration_seconds",
				Help:    "Histogram of per-attempt latencies, labeled by operation.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		)

		endpointFallbacksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_endpoint_fallbacks_total",
				Help: "Times the executor moved past a candidate endpoint, labeled by operation.",
			},
			[]string{"operation"},
		)

		cacheDegradedReadsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_cache_degraded_reads_total",
				Help: "Cache reads answered from the seed set because storage was unreadable.",
			},
		)

		submissionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_submissions_total",
				Help: "Form submissions, labeled by terminal state.",
			},
			[]string{"state"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAttempt records one executor attempt.
func ObserveAttempt(operation, outcome string, duration time.Duration) {
	Init()
	requestAttemptsTotal.WithLabelValues(operation, outcome).Inc()
	requestDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveFallback records the executor abandoning a candidate endpoint.
func ObserveFallback(operation string) {
	Init()
	endpointFallbacksTotal.WithLabelValues(operation).Inc()
}

// ObserveDegradedRead records a cache read served from the seed set.
func ObserveDegradedRead() {
	Init()
	cacheDegradedReadsTotal.Inc()
}

// ObserveSubmission records a submission reaching a terminal state.
func ObserveSubmission(state string) {
	Init()
	submissionsTotal.WithLabelValues(state).Inc()
}
