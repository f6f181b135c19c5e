package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

var errNilFailure = errors.New("cache: failure outcome without error")

// Config controls what a Store retains and for how long.
type Config struct {
	// TTL is how long an outcome stays fresh. Zero disables caching.
	TTL time.Duration

	// CacheFailures allows failure outcomes to be stored.
	CacheFailures bool

	// Shards is the number of independently locked partitions (default: DefaultShards).
	Shards int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           DefaultTTL,
		CacheFailures: true,
		Shards:        DefaultShards,
	}
}

// Enabled reports whether the configuration retains anything at all.
func (c Config) Enabled() bool {
	return c.TTL > 0
}

// Option customizes a Store.
type Option func(*storeOptions)

type storeOptions struct {
	now    func() time.Time
	logger zerolog.Logger
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// Store is a sharded in-memory request cache with lazy TTL expiry.
// All methods are safe for concurrent use; keys on different shards never
// contend for the same lock.
type Store[V any] struct {
	shards []*shard[V]
	config Config
	now    func() time.Time
	logger zerolog.Logger
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[Key]*Entry[V]
}

// NewStore creates an empty Store.
func NewStore[V any](cfg Config, opts ...Option) *Store[V] {
	if cfg.Shards <= 0 {
		cfg.Shards = DefaultShards
	}

	o := storeOptions{
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	shards := make([]*shard[V], cfg.Shards)
	for i := range shards {
		shards[i] = &shard[V]{entries: make(map[Key]*Entry[V])}
	}

	return &Store[V]{
		shards: shards,
		config: cfg,
		now:    o.now,
		logger: o.logger,
	}
}

// Config returns the store configuration.
func (s *Store[V]) Config() Config {
	return s.config
}

// Lookup returns the stored outcome for key if it is still fresh.
// Stale entries are removed on the way out.
func (s *Store[V]) Lookup(key Key) (Outcome[V], bool) {
	return s.LookupIf(key, nil)
}

// LookupIf is Lookup with a caller-side acceptance check. A fresh entry
// rejected by accept is left in place and counted as a miss. A nil accept
// takes every fresh entry.
func (s *Store[V]) LookupIf(key Key, accept func(Outcome[V]) bool) (Outcome[V], bool) {
	if !s.config.Enabled() {
		CacheMisses.Inc()
		return Outcome[V]{}, false
	}

	sh := s.shardFor(key)

	sh.mu.RLock()
	entry, ok := sh.entries[key]
	sh.mu.RUnlock()

	if !ok {
		CacheMisses.Inc()
		return Outcome[V]{}, false
	}

	if entry.IsExpired(s.config.TTL, s.now()) {
		sh.mu.Lock()
		// Only evict the entry we saw; a concurrent Store may have replaced it.
		if current, ok := sh.entries[key]; ok && current == entry {
			delete(sh.entries, key)
			CacheEntries.Dec()
			CacheEvictions.Inc()
		}
		sh.mu.Unlock()

		s.logger.Debug().
			Str("key", key.String()).
			Dur("age", entry.Age(s.now())).
			Msg("Evicted expired cache entry")
		CacheMisses.Inc()
		return Outcome[V]{}, false
	}

	if accept != nil && !accept(entry.Outcome) {
		CacheMisses.Inc()
		return Outcome[V]{}, false
	}

	CacheHits.WithLabelValues(entry.Outcome.label()).Inc()
	return entry.Outcome, true
}

// Store records outcome for key, stamped with the current time.
// It returns false when the outcome is not retained: caching is disabled,
// or the outcome is a failure and failures are not cached.
func (s *Store[V]) Store(key Key, outcome Outcome[V]) bool {
	if !s.config.Enabled() {
		return false
	}
	if outcome.IsFailure() && !s.config.CacheFailures {
		return false
	}

	entry := &Entry[V]{
		Key:       key,
		Outcome:   outcome,
		CreatedAt: s.now(),
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	_, existed := sh.entries[key]
	sh.entries[key] = entry
	sh.mu.Unlock()

	if !existed {
		CacheEntries.Inc()
	}
	CacheStores.WithLabelValues(outcome.label()).Inc()

	s.logger.Debug().
		Str("key", key.String()).
		Str("outcome", outcome.label()).
		Dur("ttl", s.config.TTL).
		Msg("Cached outcome")
	return true
}

// Delete removes the entry for key, if any.
func (s *Store[V]) Delete(key Key) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	if _, ok := sh.entries[key]; ok {
		delete(sh.entries, key)
		CacheEntries.Dec()
	}
	sh.mu.Unlock()
}

// Len returns the number of resident entries, fresh or not.
func (s *Store[V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}

// Purge drops every entry.
func (s *Store[V]) Purge() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		CacheEntries.Sub(float64(len(sh.entries)))
		sh.entries = make(map[Key]*Entry[V])
		sh.mu.Unlock()
	}
}

func (s *Store[V]) shardFor(key Key) *shard[V] {
	h := xxhash.Sum64String(key.Endpoint + "?" + key.Query)
	return s.shards[h%uint64(len(s.shards))]
}
