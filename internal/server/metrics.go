package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics groups the collectors of one server. Each server owns its own
// registry so that several servers (or tests) can coexist in a process.
type metrics struct {
	registry *prometheus.Registry

	surfacesTotal   *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	rejectedTotal   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		surfacesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "optsurf",
			Name:      "surfaces_computed_total",
			Help:      "Surfaces computed, by quantity",
		}, []string{"greek"}),
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "optsurf",
			Name:      "compute_duration_seconds",
			Help:      "Time spent computing a response, by endpoint",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"endpoint"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optsurf",
			Name:      "cache_hits_total",
			Help:      "Responses served from the cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optsurf",
			Name:      "cache_misses_total",
			Help:      "Responses computed because no cached copy existed",
		}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "optsurf",
			Name:      "rejected_requests_total",
			Help:      "Requests rejected with a client error, by error code",
		}, []string{"code"}),
	}

	m.registry.MustRegister(
		m.surfacesTotal,
		m.computeDuration,
		m.cacheHits,
		m.cacheMisses,
		m.rejectedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
