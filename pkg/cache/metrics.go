package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by store (detail, name).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "looter_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks cache misses by store.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "looter_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"store"},
	)

	// CacheEntries tracks the current number of cached entries by store.
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "looter_cache_entries",
			Help: "Current number of response cache entries",
		},
		[]string{"store"},
	)

	// CacheErrors tracks backend operation errors (redis only).
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "looter_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"},
	)
)

const (
	storeDetail = "detail"
	storeName   = "name"
)
