// Package cache provides the shared two-level response cache of the
// fetch-and-hydrate pipeline: one store mapping killmail IDs to hydrated
// detail records, one mapping entity IDs to resolved names.
//
// Both stores are write-once per key and grow monotonically for the
// process lifetime; entries are never evicted or overwritten. The cache is
// the only state shared across concurrent pipeline invocations, so every
// store guards its map with its own mutex, held only for the duration of a
// single read or write, never across a network call. A race where two
// invocations fetch and write the same key is harmless: detail records are
// immutable once known and names are permanent, so the overwrite that is
// suppressed would have carried identical data.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	store.PutDetail(ctx, 12345, km)
//	km, ok := store.GetDetail(ctx, 12345)
//
//	store.PutName(ctx, 30000142, "Jita")
//	name, ok := store.GetName(ctx, 30000142)
//
// # Backends
//
// NewMemoryStore is the default and matches the process-lifetime cache
// model. NewRedisStore keeps the same write-once semantics on a Redis
// backend for deployments that run more than one instance behind a
// balancer and want to share hydration work.
//
// # Metrics
//
//   - looter_cache_hits_total{store} - Cache hits by store (detail, name)
//   - looter_cache_misses_total{store} - Cache misses by store
//   - looter_cache_errors_total{operation} - Redis operation errors
package cache
