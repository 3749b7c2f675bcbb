package core

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

func TestWorkerPool_ExecutesJobs(t *testing.T) {
	pool := NewWorkerPool(4, nil)
	pool.Start()
	defer pool.Shutdown()

	var executed atomic.Int32
	var wg sync.WaitGroup
	const jobs = 50

	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		err := pool.Enqueue(func() {
			executed.Add(1)
			wg.Done()
		})
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	wg.Wait()

	if got := executed.Load(); got != jobs {
		t.Errorf("executed %d jobs, want %d", got, jobs)
	}
}

func TestWorkerPool_FIFOWithSingleWorker(t *testing.T) {
	pool := NewWorkerPool(1, nil)

	// Enqueue before Start so ordering cannot race with execution.
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	const jobs = 20

	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		i := i
		if err := pool.Enqueue(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	pool.Start()
	wg.Wait()
	pool.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("execution order = %v, want ascending", order)
		}
	}
}

func TestWorkerPool_EnqueueAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(2, nil)
	pool.Start()
	pool.Shutdown()

	err := pool.Enqueue(func() { t.Error("job ran after shutdown") })
	if !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("Enqueue after Shutdown = %v, want ErrPoolStopped", err)
	}
	if !pool.IsStopped() {
		t.Error("IsStopped() = false after Shutdown")
	}
}

func TestWorkerPool_ShutdownAbandonsQueuedJobs(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	pool.Start()

	// Hold the single worker so the rest of the queue cannot drain.
	block := make(chan struct{})
	running := make(chan struct{})
	if err := pool.Enqueue(func() {
		close(running)
		<-block
	}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	<-running

	var abandoned atomic.Int32
	for i := 0; i < 10; i++ {
		if err := pool.Enqueue(func() { abandoned.Add(1) }); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()
	close(block)
	<-done

	if got := abandoned.Load(); got != 0 {
		t.Errorf("%d queued jobs ran after shutdown, want 0", got)
	}
	if pool.QueuedJobs() != 0 {
		t.Errorf("QueuedJobs() = %d after shutdown, want 0", pool.QueuedJobs())
	}
}

func TestWorkerPool_ShutdownIdempotent(t *testing.T) {
	pool := NewWorkerPool(2, nil)
	pool.Start()
	pool.Shutdown()
	pool.Shutdown()

	// Start after Shutdown must not revive the pool.
	pool.Start()
	if err := pool.Enqueue(func() {}); !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("Enqueue after revive attempt = %v, want ErrPoolStopped", err)
	}
}

func TestWorkerPool_GrowTarget(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	pool.Start()
	defer pool.Shutdown()

	pool.SetTarget(4)

	if got := pool.Target(); got != 4 {
		t.Fatalf("Target() = %d, want 4", got)
	}
	waitFor(t, 2*time.Second, func() bool {
		return pool.WorkerCount() == 4
	}, "worker count did not grow to 4")
}

func TestWorkerPool_ShrinkTargetConverges(t *testing.T) {
	pool := NewWorkerPool(6, nil)
	pool.Start()
	defer pool.Shutdown()

	waitFor(t, 2*time.Second, func() bool {
		return pool.WorkerCount() == 6
	}, "worker count did not reach 6")

	pool.SetTarget(2)

	waitFor(t, 2*time.Second, func() bool {
		return pool.WorkerCount() == 2
	}, "worker count did not shrink to 2")

	// The shrunk pool still executes jobs.
	var executed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		if err := pool.Enqueue(func() {
			executed.Add(1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	wg.Wait()
	if executed.Load() != 10 {
		t.Errorf("executed %d jobs after shrink, want 10", executed.Load())
	}
}

func TestWorkerPool_ShrinkWaitsForRunningJob(t *testing.T) {
	pool := NewWorkerPool(2, nil)
	pool.Start()
	defer pool.Shutdown()

	block := make(chan struct{})
	running := make(chan struct{})
	finished := make(chan struct{})
	if err := pool.Enqueue(func() {
		close(running)
		<-block
		close(finished)
	}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	<-running

	pool.SetTarget(1)

	// The in-flight job must finish; shrinking never interrupts it.
	select {
	case <-finished:
		t.Fatal("job finished before being released")
	case <-time.After(50 * time.Millisecond):
	}
	close(block)
	<-finished

	waitFor(t, 2*time.Second, func() bool {
		return pool.WorkerCount() == 1
	}, "worker count did not shrink to 1")
}

func TestWorkerPool_PanicDoesNotKillWorker(t *testing.T) {
	var panics atomic.Int32
	handler := panicHandlerFunc(func(workerID int, panicInfo any, stack []byte) {
		panics.Add(1)
	})

	pool := NewWorkerPool(1, &PoolConfig{PanicHandler: handler})
	pool.Start()
	defer pool.Shutdown()

	if err := pool.Enqueue(func() { panic("boom") }); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// The same worker must survive to run the next job.
	done := make(chan struct{})
	if err := pool.Enqueue(func() { close(done) }); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job after panic never ran")
	}
	if got := panics.Load(); got != 1 {
		t.Errorf("panic handler fired %d times, want 1", got)
	}
}

func TestWorkerPool_DefaultWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0, nil)
	if pool.Target() <= 0 {
		t.Errorf("Target() = %d for workers <= 0, want > 0", pool.Target())
	}
}

func TestWorkerPool_RejectedJobMetric(t *testing.T) {
	metrics := &countingMetrics{}
	pool := NewWorkerPool(1, &PoolConfig{Metrics: metrics})
	pool.Start()
	pool.Shutdown()

	_ = pool.Enqueue(func() {})

	if got := metrics.rejected.Load(); got != 1 {
		t.Errorf("rejected metric = %d, want 1", got)
	}
}

type panicHandlerFunc func(workerID int, panicInfo any, stack []byte)

func (f panicHandlerFunc) HandlePanic(workerID int, panicInfo any, stack []byte) {
	f(workerID, panicInfo, stack)
}

type countingMetrics struct {
	rejected atomic.Int32
	panics   atomic.Int32
}

func (m *countingMetrics) RecordRenderDuration(format string, duration time.Duration) {}
func (m *countingMetrics) RecordRenderFailure(reason string)                          {}
func (m *countingMetrics) RecordQueueDepth(depth int)                                 {}
func (m *countingMetrics) RecordJobRejected(reason string)                            { m.rejected.Add(1) }
func (m *countingMetrics) RecordWorkerPanic()                                         { m.panics.Add(1) }
