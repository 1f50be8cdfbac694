// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "map_provider_requests_total",
			Help: "Requests sent to the map provider by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "map_provider_request_duration_seconds",
			Help:    "Map provider request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commute_cache_lookups_total",
			Help: "Geocode and route cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "commute_cache_entries",
			Help: "Current number of cached geocodes and routes",
		},
		[]string{"cache"},
	)

	MatchCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_total",
			Help: "Apartments evaluated by matching runs, by outcome",
		},
		[]string{"status"},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_run_duration_seconds",
			Help:    "Wall time of one matching run",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)
)
