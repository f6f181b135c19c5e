package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by cached outcome (success, failure)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bfj_cache_hits_total",
			Help: "Total number of request cache hits",
		},
		[]string{"outcome"},
	)

	// CacheMisses tracks cache misses, including expired entries
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bfj_cache_misses_total",
			Help: "Total number of request cache misses",
		},
	)

	// CacheEvictions tracks entries removed on read because their TTL elapsed
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bfj_cache_evictions_total",
			Help: "Total number of expired entries evicted on read",
		},
	)

	// CacheStores tracks entries written by outcome (success, failure)
	CacheStores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bfj_cache_stores_total",
			Help: "Total number of outcomes written to the request cache",
		},
		[]string{"outcome"},
	)

	// CacheEntries tracks resident entries across all caches in the process
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bfj_cache_entries",
			Help: "Current number of entries held by request caches",
		},
	)
)
