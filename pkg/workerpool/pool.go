// Package workerpool provides a fixed-size pool of labelled worker goroutines
// that execute submitted tasks off the caller's goroutine.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of work. ctx is cancelled when a shutdown deadline elapses;
// long-running tasks should observe it.
type Task func(ctx context.Context)

// State is the lifecycle state of a pool.
type State int32

const (
	// StateRunning accepts and executes tasks.
	StateRunning State = iota

	// StateShuttingDown rejects new tasks and drains the queue.
	StateShuttingDown

	// StateTerminated means every worker has exited.
	StateTerminated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Pool is a fixed set of workers consuming an unbounded FIFO queue.
// Submit never blocks the caller.
type Pool struct {
	name   string
	size   int
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Task
	running int
	state   State

	done chan struct{}
}

// New starts a pool of size workers named "<name>-<n>".
// A size <= 0 uses the number of available CPUs.
func New(name string, size int, logger zerolog.Logger) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if name == "" {
		name = "worker"
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:   name,
		size:   size,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	var g errgroup.Group
	for i := 0; i < size; i++ {
		workerName := fmt.Sprintf("%s-%d", name, i+1)
		g.Go(func() error {
			p.worker(workerName)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		p.mu.Lock()
		p.state = StateTerminated
		p.mu.Unlock()
		close(p.done)
	}()

	logger.Debug().
		Str("pool", name).
		Int("workers", size).
		Msg("Worker pool started")

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// State returns the current lifecycle state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Done is closed once every worker has exited.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Submit enqueues task. It returns false, without running task, once
// shutdown has begun.
func (p *Pool) Submit(task Task) bool {
	if task == nil {
		return false
	}

	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		tasksTotal.WithLabelValues("rejected").Inc()
		return false
	}
	p.queue = append(p.queue, task)
	p.mu.Unlock()

	queueDepth.Inc()
	p.cond.Signal()
	return true
}

// Shutdown stops accepting tasks and waits up to timeout for queued and
// running tasks to finish. If the deadline elapses with work outstanding,
// the task context is cancelled so remaining tasks can abort, and Shutdown
// returns false. It returns true when all tasks completed in time, which an
// idle pool satisfies even with a zero timeout.
//
// Shutdown must be called once; callers that need idempotence memoize the
// result (see client.Client).
func (p *Pool) Shutdown(timeout time.Duration) bool {
	p.mu.Lock()
	if p.state == StateRunning {
		p.state = StateShuttingDown
	}
	pending := len(p.queue)
	p.mu.Unlock()
	p.cond.Broadcast()

	p.logger.Debug().
		Str("pool", p.name).
		Int("pending", pending).
		Dur("timeout", timeout).
		Msg("Worker pool shutting down")

	if waitUntil(p.done, timeout) || p.idle() {
		p.cancel()
		return true
	}

	p.logger.Warn().
		Str("pool", p.name).
		Int("pending", p.Pending()).
		Dur("timeout", timeout).
		Msg("Shutdown timeout exceeded, cancelling remaining tasks")
	p.cancel()
	return false
}

// worker pulls tasks until the queue is empty and shutdown has begun.
func (p *Pool) worker(name string) {
	logger := p.logger.With().Str("worker", name).Logger()
	processed := 0

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && p.state == StateRunning {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			break
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.running++
		p.mu.Unlock()

		queueDepth.Dec()
		p.run(logger, task)
		processed++

		p.mu.Lock()
		p.running--
		p.mu.Unlock()
	}

	if processed > 0 {
		logger.Debug().
			Int("tasks_processed", processed).
			Msg("Worker completed")
	}
}

// idle reports whether no task is queued or running. Workers that are
// merely exiting do not count as outstanding work.
func (p *Pool) idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) == 0 && p.running == 0
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// run executes one task, keeping the worker alive if the task panics.
func (p *Pool) run(logger zerolog.Logger, task Task) {
	start := time.Now()
	activeWorkers.Inc()
	defer func() {
		activeWorkers.Dec()
		taskDuration.Observe(time.Since(start).Seconds())

		if r := recover(); r != nil {
			tasksTotal.WithLabelValues("panic").Inc()
			logger.Error().
				Interface("panic", r).
				Msg("Task panicked")
			return
		}
		tasksTotal.WithLabelValues("completed").Inc()
	}()

	task(p.ctx)
}

// waitUntil waits for done to close or timeout to elapse.
// A non-positive timeout only checks whether done is already closed.
func waitUntil(done <-chan struct{}, timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
