package client

import (
	"context"
	"sync"
	"time"
)

// Future is the pending result of a request. It is settled exactly once;
// later settlement attempts are ignored.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve settles the future with a value. It reports whether this call
// settled the future.
func (f *Future[T]) resolve(value T) bool {
	settled := false
	f.once.Do(func() {
		f.value = value
		close(f.done)
		settled = true
	})
	return settled
}

// reject settles the future with an error. It reports whether this call
// settled the future.
func (f *Future[T]) reject(err error) bool {
	settled := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Done returns a channel that is closed once the future is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the future is settled, without blocking.
func (f *Future[T]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the future is settled and returns its result.
// Every call returns the same result.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext is like Get but gives up when ctx is done.
// Giving up does not cancel the underlying request.
func (f *Future[T]) GetWithContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetWithTimeout is like Get but gives up after timeout.
func (f *Future[T]) GetWithTimeout(timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.GetWithContext(ctx)
}

// Then returns a future holding fn applied to this future's value.
// Errors pass through unchanged. fn runs on the goroutine that settles f,
// or on a helper goroutine if f is still pending.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := newFuture[U]()

	settle := func() {
		value, err := f.Get()
		if err != nil {
			next.reject(err)
			return
		}
		mapped, err := fn(value)
		if err != nil {
			next.reject(err)
			return
		}
		next.resolve(mapped)
	}

	if f.IsReady() {
		settle()
	} else {
		go settle()
	}
	return next
}

// Resolved returns an already settled successful future.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.resolve(value)
	return f
}

// Rejected returns an already settled failed future.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.reject(err)
	return f
}
