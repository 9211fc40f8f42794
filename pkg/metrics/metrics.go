package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offline_cache_hits_total",
		Help: "Total number of resource cache hits",
	})

	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offline_cache_misses_total",
		Help: "Total number of resource cache misses",
	})

	CacheStores = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offline_cache_stores_total",
		Help: "Total number of resource cache store operations",
	})

	CacheErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offline_cache_errors_total",
		Help: "Total number of resource cache errors",
	}, []string{"operation"})

	CacheOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "offline_cache_operation_duration_seconds",
		Help:    "Duration of cache backend operations in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"backend", "operation"})

	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offline_upstream_requests_total",
		Help: "Total number of upstream resource fetches by outcome",
	}, []string{"outcome"})

	UpstreamLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "offline_upstream_latency_seconds",
		Help:    "Latency of upstream resource fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})

	CoalescedRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offline_coalesced_requests_total",
		Help: "Total number of cache misses served by an in-flight fetch for the same key",
	})

	SeededTiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offline_seeded_tiles_total",
		Help: "Total number of tiles processed by region seeding by outcome",
	}, []string{"outcome"})
)

var initOnce sync.Once

// Init registers all collectors with the default registerer. It must run once
// at startup before metrics are scraped; later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			CacheHits,
			CacheMisses,
			CacheStores,
			CacheErrors,
			CacheOperationDuration,
			UpstreamRequests,
			UpstreamLatency,
			CoalescedRequests,
			SeededTiles,
		)
	})
}
