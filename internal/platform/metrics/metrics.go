package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripplanner",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})

	// Provider metrics
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Total geocode/route provider calls by outcome",
	}, []string{"provider", "op", "outcome"})

	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripplanner",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Latency of geocode/route provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"provider", "op"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"cache"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripplanner",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Itinerary sessions currently held in memory",
	})

	StaleRoutesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Subsystem: "route",
		Name:      "stale_discarded_total",
		Help:      "Route responses dropped because the itinerary changed in flight",
	})
)

// Outcome labels for ProviderRequests.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// ObserveProvider records one provider call. notFound marks an empty-result
// answer, which is a valid response rather than a failure.
func ObserveProvider(provider, op string, start time.Time, err error, notFound bool) {
	outcome := OutcomeOK
	switch {
	case notFound:
		outcome = OutcomeNotFound
	case err != nil:
		outcome = OutcomeError
	}
	ProviderRequests.WithLabelValues(provider, op, outcome).Inc()
	ProviderDuration.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
}
