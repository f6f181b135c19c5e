package client

import (
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/tastac/bfj-client/pkg/cache"
)

const (
	// DefaultBaseURL is the public Battlefields API root.
	DefaultBaseURL = "https://api.battlefieldsmc.net/api"

	// DefaultUserAgent identifies this library to the API.
	DefaultUserAgent = "bfj-client/0.1.0"

	// DefaultShutdownTimeout is how long Shutdown waits for in-flight requests.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultHTTPTimeout bounds a single HTTP round trip.
	DefaultHTTPTimeout = 30 * time.Second
)

// ExceptionHandler observes every fetch-time error. It is called on the
// worker goroutine that ran the fetch, possibly concurrently from several
// workers, so it must be safe for concurrent use. Panics are recovered.
type ExceptionHandler func(err error)

// Config holds the client configuration.
type Config struct {
	// Workers is the worker pool size (default: number of CPUs)
	Workers int

	// ExceptionHandler is notified of every fetch error (default: log at error level)
	ExceptionHandler ExceptionHandler

	// ShutdownTimeout is how long Shutdown waits before cancelling in-flight work
	ShutdownTimeout time.Duration

	// Caching
	CacheTTL      time.Duration // Zero disables caching
	CacheFailures bool          // Also cache failed fetches
	CacheShards   int           // Lock partitions in the request cache

	// HTTP plumbing
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client

	// Logger overrides the component logger (default: global zerolog logger)
	Logger *zerolog.Logger

	// TracerProvider supplies the tracer for fetch spans (default: otel global)
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:         runtime.NumCPU(),
		ShutdownTimeout: DefaultShutdownTimeout,
		CacheTTL:        cache.DefaultTTL,
		CacheFailures:   true,
		CacheShards:     cache.DefaultShards,
		BaseURL:         DefaultBaseURL,
		UserAgent:       DefaultUserAgent,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}

	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must be >= 0 (got %s)", c.ShutdownTimeout)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must be >= 0 (got %s)", c.CacheTTL)
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base url must be http or https (got %q)", c.BaseURL)
		}
	}

	return nil
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults(logger zerolog.Logger) Config {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if c.ExceptionHandler == nil {
		c.ExceptionHandler = logExceptionHandler(logger)
	}
	return c
}

// logExceptionHandler is the default ExceptionHandler.
func logExceptionHandler(logger zerolog.Logger) ExceptionHandler {
	return func(err error) {
		logger.Error().
			Err(err).
			Str("error_class", string(Classify(err))).
			Msg("Request failed")
	}
}

// baseLogger is the configured logger without a component field; each
// component derives its own from it.
func (c Config) baseLogger() zerolog.Logger {
	if c.Logger != nil {
		return *c.Logger
	}
	return log.Logger
}

func componentLogger(base zerolog.Logger, component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}
