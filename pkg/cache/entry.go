package cache

import (
	"time"
)

// Entry is a cached outcome together with the time it was stored.
// Entries are never modified after insertion; a newer Store replaces the
// whole entry.
type Entry[V any] struct {
	// Key is the request key the entry belongs to
	Key Key

	// Outcome is the cached success or failure
	Outcome Outcome[V]

	// CreatedAt is when the entry was stored
	CreatedAt time.Time
}

// IsExpired reports whether the entry is stale for the given TTL at now.
func (e *Entry[V]) IsExpired(ttl time.Duration, now time.Time) bool {
	return Expired(e.CreatedAt, ttl, now)
}

// Age returns how long ago the entry was stored.
func (e *Entry[V]) Age(now time.Time) time.Duration {
	age := now.Sub(e.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}
