// Package client provides the asynchronous Battlefields API client: a
// dispatcher that runs fetches on a bounded worker pool, memoizes outcomes
// in a TTL cache and shuts down within a deadline.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tastac/bfj-client/pkg/cache"
	"github.com/tastac/bfj-client/pkg/workerpool"
)

const tracerName = "github.com/tastac/bfj-client/pkg/client"

// State is the lifecycle state of a client.
type State = workerpool.State

// Lifecycle states: Running -> ShuttingDown -> Terminated.
const (
	StateRunning      = workerpool.StateRunning
	StateShuttingDown = workerpool.StateShuttingDown
	StateTerminated   = workerpool.StateTerminated
)

// Client is the Battlefields API client. Each Client owns its own request
// cache and worker pool; several clients can coexist in one process.
type Client struct {
	config     Config
	logger     zerolog.Logger
	httpClient *http.Client
	baseURL    *url.URL
	tracer     trace.Tracer

	cache *cache.Store[any]
	pool  *workerpool.Pool

	state          atomic.Int32
	shutdownOnce   sync.Once
	shutdownResult bool
}

// New creates a new client and starts its worker pool.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := cfg.baseLogger()
	logger := componentLogger(base, "bfj-client")
	cfg = cfg.withDefaults(logger)

	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	store := cache.NewStore[any](
		cache.Config{
			TTL:           cfg.CacheTTL,
			CacheFailures: cfg.CacheFailures,
			Shards:        cfg.CacheShards,
		},
		cache.WithLogger(componentLogger(base, "bfj-cache")),
	)

	pool := workerpool.New(
		"bfj-worker",
		cfg.Workers,
		componentLogger(base, "bfj-pool"),
	)

	logger.Info().
		Str("base_url", baseURL.String()).
		Int("workers", pool.Size()).
		Dur("cache_ttl", cfg.CacheTTL).
		Bool("cache_failures", cfg.CacheFailures).
		Msg("Client started")

	return &Client{
		config:     cfg,
		logger:     logger,
		httpClient: cfg.HTTPClient,
		baseURL:    baseURL,
		tracer:     tp.Tracer(tracerName),
		cache:      store,
		pool:       pool,
	}, nil
}

// State returns the client's lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Shutdown stops accepting requests and waits up to the configured
// ShutdownTimeout for in-flight requests. Requests still running at the
// deadline are cancelled. It returns true if everything finished in time.
//
// Shutdown is idempotent: later calls return the first call's result
// without draining again.
func (c *Client) Shutdown() bool {
	c.shutdownOnce.Do(func() {
		c.state.Store(int32(StateShuttingDown))
		c.logger.Info().
			Int("pending", c.pool.Pending()).
			Dur("timeout", c.config.ShutdownTimeout).
			Msg("Shutting down client")

		graceful := c.pool.Shutdown(c.config.ShutdownTimeout)
		c.cache.Purge()
		c.state.Store(int32(StateTerminated))

		if graceful {
			shutdownsTotal.WithLabelValues("graceful").Inc()
			c.logger.Info().Msg("Client shut down")
		} else {
			shutdownsTotal.WithLabelValues("forced").Inc()
			c.logger.Warn().Msg("Client shut down forcibly, in-flight requests cancelled")
		}
		c.shutdownResult = graceful
	})
	return c.shutdownResult
}

// Close implements io.Closer. It returns ErrShutdownTimeout if Shutdown
// had to cancel in-flight requests.
func (c *Client) Close() error {
	if !c.Shutdown() {
		return ErrShutdownTimeout
	}
	return nil
}

// Cache returns the request cache (for testing and cache administration).
func (c *Client) Cache() *cache.Store[any] {
	return c.cache
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
