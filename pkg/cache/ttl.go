package cache

import "time"

const (
	// DefaultTTL is how long outcomes are cached when no TTL is configured.
	DefaultTTL = 5 * time.Minute

	// DefaultShards is the number of independently locked shards.
	DefaultShards = 32
)

// Expired reports whether an entry created at createdAt is stale at now.
// A non-positive ttl means caching is disabled, so every entry is expired.
func Expired(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(createdAt) >= ttl
}
