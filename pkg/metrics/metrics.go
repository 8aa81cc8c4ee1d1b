// Package metrics documents the Prometheus metrics exported by the
// pipeline. All metrics are defined in their owning packages (zkb, esi,
// cache, ratelimit) via promauto to keep registration next to use.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by all packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Reference
//
// List requests (pkg/zkb):
//   - zkb_requests_total{status} (Counter): list page requests by HTTP status
//   - zkb_request_duration_seconds (Histogram): list request duration
//
// Detail and name requests (pkg/esi):
//   - esi_requests_total{endpoint, status} (Counter): requests by endpoint and status
//   - esi_request_duration_seconds{endpoint} (Histogram): request duration
//
// Response cache (pkg/cache):
//   - looter_cache_hits_total{store} (Counter): hits by store (detail, name)
//   - looter_cache_misses_total{store} (Counter): misses by store
//   - looter_cache_entries{store} (Gauge): current entry count (memory backend)
//   - looter_cache_errors_total{operation} (Counter): redis backend errors
//
// Error budget (pkg/ratelimit):
//   - esi_errors_remaining (Gauge): errors remaining in the ESI limit window
//   - esi_rate_limit_blocks_total (Counter): batches blocked at critical budget
//   - esi_rate_limit_throttles_total (Counter): batches throttled at warning budget
//
// Example queries:
//
//   # Cache hit rate per store
//   sum by (store) (rate(looter_cache_hits_total[5m])) /
//   (sum by (store) (rate(looter_cache_hits_total[5m])) + sum by (store) (rate(looter_cache_misses_total[5m])))
//
//   # Rate-limit pressure
//   esi_errors_remaining < 20
