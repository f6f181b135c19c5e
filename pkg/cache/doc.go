// Package cache provides the in-memory request cache used by the client.
//
// The cache memoizes the outcome of each distinct request for a fixed TTL:
//
// - Deterministic request keys built from endpoint and query parameters
// - Successes and (optionally) failures are both cacheable outcomes
// - Expiry is checked lazily on read; stale entries are evicted on lookup
// - Sharded storage so unrelated keys do not share a lock
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create a store that caches for one minute, including failures
//	store := cache.NewStore[[]byte](cache.Config{
//		TTL:           time.Minute,
//		CacheFailures: true,
//	})
//
//	// Create a key
//	key := cache.NewKey("kills", url.Values{"uuid": []string{"86dc8a9f"}})
//
//	// Look up, then store on miss
//	if outcome, ok := store.Lookup(key); ok {
//		return outcome.Unpack()
//	}
//	data, err := fetch()
//	if err != nil {
//		store.Store(key, cache.Failure[[]byte](err))
//	} else {
//		store.Store(key, cache.Success(data))
//	}
//
// # Disabling
//
// A TTL of zero disables caching: Store retains nothing and every Lookup
// is a miss. With CacheFailures=false only successes are retained.
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - bfj_cache_hits_total{outcome} - Cache hits by cached outcome
//   - bfj_cache_misses_total - Cache misses (including expired entries)
//   - bfj_cache_evictions_total - Expired entries evicted on read
//   - bfj_cache_stores_total{outcome} - Outcomes written
//   - bfj_cache_entries - Resident entries
package cache
