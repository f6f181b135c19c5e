package workerpool

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestNew_DefaultSize(t *testing.T) {
	p := New("test", 0, testLogger())
	defer p.Shutdown(time.Second)

	if p.Size() != runtime.NumCPU() {
		t.Errorf("Size() = %d, want %d", p.Size(), runtime.NumCPU())
	}
	if p.State() != StateRunning {
		t.Errorf("State() = %v, want running", p.State())
	}
}

func TestPool_ExecutesTasks(t *testing.T) {
	p := New("test", 4, testLogger())
	defer p.Shutdown(time.Second)

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if !p.Submit(func(ctx context.Context) {
			defer wg.Done()
			count.Add(1)
		}) {
			t.Fatal("Submit() = false on running pool")
		}
	}

	wg.Wait()
	if count.Load() != 100 {
		t.Errorf("executed %d tasks, want 100", count.Load())
	}
}

func TestPool_SubmitDoesNotBlock(t *testing.T) {
	p := New("test", 1, testLogger())

	release := make(chan struct{})
	p.Submit(func(ctx context.Context) { <-release })

	// The single worker is busy; further submissions queue up without blocking.
	start := time.Now()
	for i := 0; i < 1000; i++ {
		p.Submit(func(ctx context.Context) {})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Submit() blocked for %v", elapsed)
	}
	if p.Pending() == 0 {
		t.Error("Pending() = 0, want queued tasks")
	}

	close(release)
	if !p.Shutdown(5 * time.Second) {
		t.Error("Shutdown() = false, want graceful drain")
	}
	if p.Pending() != 0 {
		t.Errorf("Pending() = %d after drain, want 0", p.Pending())
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New("test", 2, testLogger())
	if !p.Shutdown(time.Second) {
		t.Fatal("Shutdown() = false on idle pool")
	}

	rejectedBefore := testutil.ToFloat64(tasksTotal.WithLabelValues("rejected"))

	var ran atomic.Bool
	if p.Submit(func(ctx context.Context) { ran.Store(true) }) {
		t.Error("Submit() = true after shutdown")
	}
	if p.Submit(nil) {
		t.Error("Submit(nil) = true")
	}

	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Error("rejected task was executed")
	}
	if p.State() != StateTerminated {
		t.Errorf("State() = %v, want terminated", p.State())
	}
	if got := testutil.ToFloat64(tasksTotal.WithLabelValues("rejected")) - rejectedBefore; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	p := New("test", 2, testLogger())

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		p.Submit(func(ctx context.Context) {
			time.Sleep(5 * time.Millisecond)
			count.Add(1)
		})
	}

	if !p.Shutdown(5 * time.Second) {
		t.Fatal("Shutdown() = false, want true")
	}
	if count.Load() != 20 {
		t.Errorf("completed %d tasks, want 20", count.Load())
	}
}

func TestPool_ShutdownTimeout(t *testing.T) {
	p := New("test", 1, testLogger())

	started := make(chan struct{})
	var cancelled atomic.Bool
	p.Submit(func(ctx context.Context) {
		close(started)
		select {
		case <-ctx.Done():
			cancelled.Store(true)
		case <-time.After(10 * time.Second):
		}
	})

	// Queued behind the blocked task; must still run, with a cancelled context.
	queuedCtxErr := make(chan error, 1)
	p.Submit(func(ctx context.Context) {
		queuedCtxErr <- ctx.Err()
	})

	<-started
	start := time.Now()
	graceful := p.Shutdown(100 * time.Millisecond)
	elapsed := time.Since(start)

	if graceful {
		t.Error("Shutdown() = true, want forced termination")
	}
	if elapsed > 2*time.Second {
		t.Errorf("Shutdown() took %v, want about 100ms", elapsed)
	}

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after cancellation")
	}
	if !cancelled.Load() {
		t.Error("blocked task did not observe cancellation")
	}

	select {
	case err := <-queuedCtxErr:
		if err == nil {
			t.Error("queued task ran with live context after forced shutdown")
		}
	default:
		t.Error("queued task was never executed")
	}
}

func TestPool_ZeroTimeout(t *testing.T) {
	p := New("test", 1, testLogger())

	release := make(chan struct{})
	p.Submit(func(ctx context.Context) { <-release })

	if p.Shutdown(0) {
		t.Error("Shutdown(0) = true while a task is running")
	}
	close(release)
	<-p.Done()
}

func TestPool_ZeroTimeoutIdle(t *testing.T) {
	p := New("test", 2, testLogger())

	if !p.Shutdown(0) {
		t.Error("Shutdown(0) of an idle pool = false, want true")
	}

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after shutdown")
	}
}

func TestPool_ZeroTimeoutAfterWorkFinished(t *testing.T) {
	p := New("test", 2, testLogger())

	done := make(chan struct{})
	p.Submit(func(ctx context.Context) { close(done) })
	<-done

	deadline := time.Now().Add(2 * time.Second)
	for p.Running() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if !p.Shutdown(0) {
		t.Error("Shutdown(0) after all tasks finished = false, want true")
	}
}

func TestPool_RecoversPanics(t *testing.T) {
	p := New("test", 1, testLogger())
	defer p.Shutdown(time.Second)

	panicsBefore := testutil.ToFloat64(tasksTotal.WithLabelValues("panic"))

	p.Submit(func(ctx context.Context) { panic("boom") })

	done := make(chan struct{})
	p.Submit(func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}

	if got := testutil.ToFloat64(tasksTotal.WithLabelValues("panic")) - panicsBefore; got != 1 {
		t.Errorf("panic delta = %v, want 1", got)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "running"},
		{StateShuttingDown, "shutting_down"},
		{StateTerminated, "terminated"},
		{State(9), "state(9)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
