package client

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tastac/bfj-client/pkg/cache"
)

// Fetcher performs one blocking fetch-and-parse. ctx is cancelled only when
// a client shutdown exceeds its timeout.
type Fetcher[T any] func(ctx context.Context) (T, error)

// fetched pairs the value handed to the caller with the form kept in the
// cache. The two must not share mutable memory.
type fetched[T any] struct {
	value  T
	cached any
}

// Request returns a future for the outcome of fetch, identified by key.
//
// A fresh cached outcome settles the future immediately without touching
// the worker pool. Otherwise fetch runs on a worker; its outcome is stored
// in the cache and then settles the future. Requests on a client that is
// shutting down are rejected with ErrClientClosed. Requests still queued
// when a shutdown deadline passes are rejected with the cancellation error
// and fetch is never called.
//
// Byte slices are copied into and out of the cache, so every caller owns
// the []byte it receives. Other reference types (slices, maps, pointers)
// are shared between hits and must be treated as read-only; GetJSON avoids
// this by decoding a fresh value per hit.
//
// Concurrent misses for the same key are not coalesced: each one runs its
// own fetch and the last to finish wins the cache slot.
func Request[T any](c *Client, key cache.Key, fetch Fetcher[T]) *Future[T] {
	return dispatch(c, key,
		func(ctx context.Context) (fetched[T], error) {
			value, err := fetch(ctx)
			return fetched[T]{value: value, cached: snapshot(value)}, err
		},
		loadValue[T],
	)
}

// dispatch implements Request. load turns a cached success value back into
// a T for one caller; it returns false when the cached form does not fit.
func dispatch[T any](c *Client, key cache.Key, fetch Fetcher[fetched[T]], load func(raw any) (T, bool)) *Future[T] {
	if c.State() != StateRunning {
		requestsTotal.WithLabelValues(key.Endpoint, "closed").Inc()
		return Rejected[T](ErrClientClosed)
	}

	var hit *Future[T]
	mismatch := false
	accept := func(outcome cache.Outcome[any]) bool {
		if outcome.IsFailure() {
			hit = Rejected[T](outcome.Err())
			return true
		}
		value, ok := load(outcome.Value())
		if !ok {
			mismatch = true
			return false
		}
		hit = Resolved(value)
		return true
	}

	if outcome, ok := c.cache.LookupIf(key, accept); ok {
		requestsTotal.WithLabelValues(key.Endpoint, "hit").Inc()
		c.logger.Debug().
			Str("key", key.String()).
			Bool("failure", outcome.IsFailure()).
			Msg("Serving cached outcome")
		return hit
	}
	if mismatch {
		c.logger.Debug().
			Str("key", key.String()).
			Msg("Cached outcome has a different type, refetching")
	}

	future := newFuture[T]()
	submitted := c.pool.Submit(func(ctx context.Context) {
		// The shutdown deadline passed while this task was queued.
		if err := ctx.Err(); err != nil {
			requestsCancelled.WithLabelValues(key.Endpoint).Inc()
			future.reject(err)
			return
		}

		result, err := runFetch(ctx, c, key, fetch)
		if err != nil {
			c.reportException(err)
			// Cancellation caused by a forced shutdown is not a property of the key.
			if ctx.Err() == nil {
				c.cache.Store(key, cache.Failure[any](err))
			}
			future.reject(err)
			return
		}

		if ctx.Err() == nil {
			c.cache.Store(key, cache.Success(result.cached))
		}
		future.resolve(result.value)
	})

	if !submitted {
		requestsTotal.WithLabelValues(key.Endpoint, "closed").Inc()
		future.reject(ErrClientClosed)
		return future
	}

	requestsTotal.WithLabelValues(key.Endpoint, "miss").Inc()
	c.logger.Debug().
		Str("key", key.String()).
		Msg("Submitted fetch")
	return future
}

// loadValue returns a cached value as a T, copying byte slices.
func loadValue[T any](raw any) (T, bool) {
	if raw == nil {
		var zero T
		return zero, true
	}

	value, ok := raw.(T)
	if !ok {
		return value, false
	}
	return snapshot(value), true
}

// snapshot copies byte payloads; other values are returned as is.
func snapshot[T any](value T) T {
	switch v := any(value).(type) {
	case []byte:
		return any(bytes.Clone(v)).(T)
	case json.RawMessage:
		return any(json.RawMessage(bytes.Clone(v))).(T)
	}
	return value
}

// runFetch invokes fetch inside a span, converting panics into errors.
func runFetch[T any](ctx context.Context, c *Client, key cache.Key, fetch Fetcher[T]) (value T, err error) {
	ctx, span := c.tracer.Start(ctx, "bfj.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("bfj.endpoint", key.Endpoint),
			attribute.String("bfj.key", key.String()),
		),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Key: key.String(), Value: r}
		}

		fetchDuration.WithLabelValues(key.Endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			class := Classify(err)
			errorsTotal.WithLabelValues(string(class)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("bfj.error_class", string(class)))
		}
		span.End()
	}()

	return fetch(ctx)
}

// reportException hands err to the configured ExceptionHandler. A panicking
// handler is logged and otherwise ignored so the worker stays healthy.
func (c *Client) reportException(err error) {
	defer func() {
		if r := recover(); r != nil {
			exceptionHandlerPanics.Inc()
			c.logger.Warn().
				Interface("panic", r).
				AnErr("cause", err).
				Msg("Exception handler panicked")
		}
	}()

	c.config.ExceptionHandler(err)
}
