package core

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// signalBuffer sizes the wakeup channel. Signals are only hints; the
// queue is the source of truth, so a dropped signal is harmless as long
// as workers re-check the queue after every job.
const signalBuffer = 128

// WorkerPool executes submitted jobs on a resizable set of worker
// goroutines sharing one FIFO queue.
//
// Resizing: growing starts the missing workers immediately. Shrinking
// lowers the target and broadcasts a wakeup; each worker re-checks the
// target at its idle point (between jobs) and exits if it is surplus, so
// a worker mid-job always finishes that job first. The live count
// converges on the target; it never exceeds the most recent target once
// every worker has passed an idle point.
type WorkerPool struct {
	queue  *JobQueue
	signal chan struct{}

	mu       sync.Mutex
	live     int
	target   int
	nextID   int
	started  bool
	resizeCh chan struct{} // closed and replaced on every retarget

	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool

	wg   sync.WaitGroup
	busy atomic.Int32

	logger       Logger
	panicHandler PanicHandler
	metrics      Metrics
}

// NewWorkerPool creates a pool targeting the given worker count.
// workers <= 0 selects the number of available CPUs. The pool is idle
// until Start is called.
func NewWorkerPool(workers int, config *PoolConfig) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if config == nil {
		config = DefaultPoolConfig()
	}

	p := &WorkerPool{
		queue:        NewJobQueue(),
		signal:       make(chan struct{}, signalBuffer),
		target:       workers,
		resizeCh:     make(chan struct{}),
		stopCh:       make(chan struct{}),
		logger:       config.Logger,
		panicHandler: config.PanicHandler,
		metrics:      config.Metrics,
	}
	if p.logger == nil {
		p.logger = NewNoOpLogger()
	}
	if p.panicHandler == nil {
		p.panicHandler = &DefaultPanicHandler{Logger: p.logger}
	}
	if p.metrics == nil {
		p.metrics = &NilMetrics{}
	}
	return p
}

// Start launches the target number of workers. Calling Start on a
// running or stopped pool is a no-op.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped.Load() {
		return
	}
	p.started = true
	p.spawnLocked(p.target - p.live)
	p.logger.Info("worker pool started", F("workers", p.target))
}

// Enqueue appends a job to the FIFO queue and wakes a worker. It returns
// ErrPoolStopped after Shutdown; it never blocks beyond a short lock hold.
func (p *WorkerPool) Enqueue(job Job) error {
	if p.stopped.Load() {
		p.metrics.RecordJobRejected("pool stopped")
		return ErrPoolStopped
	}

	p.queue.Push(job)
	p.metrics.RecordQueueDepth(p.queue.Len())

	select {
	case p.signal <- struct{}{}:
	default:
		// Buffer full: enough wakeups are already pending.
	}
	return nil
}

// SetTarget changes the desired worker count at runtime. n <= 0 selects
// the number of available CPUs. Growing spawns workers immediately;
// shrinking takes effect as workers reach their next idle point.
func (p *WorkerPool) SetTarget(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped.Load() || n == p.target {
		return
	}

	p.logger.Info("retargeting worker pool", F("from", p.target), F("to", n))
	p.target = n

	if p.started && p.live < p.target {
		p.spawnLocked(p.target - p.live)
	}

	// Broadcast so idle workers re-check the target.
	close(p.resizeCh)
	p.resizeCh = make(chan struct{})
}

// Shutdown stops the pool: no new jobs are accepted, every worker is
// woken and joined, and jobs still queued are abandoned without being
// executed (their callbacks never fire). Idempotent.
func (p *WorkerPool) Shutdown() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		close(p.stopCh)
	})
	p.wg.Wait()

	if abandoned := p.queue.Clear(); abandoned > 0 {
		p.logger.Warn("abandoning queued jobs at shutdown", F("count", abandoned))
	}
}

// WorkerCount returns the number of live workers.
func (p *WorkerPool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Target returns the desired worker count.
func (p *WorkerPool) Target() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// QueuedJobs returns the number of jobs waiting in the queue.
func (p *WorkerPool) QueuedJobs() int {
	return p.queue.Len()
}

// ActiveJobs returns the number of jobs currently executing.
func (p *WorkerPool) ActiveJobs() int {
	return int(p.busy.Load())
}

// IsStopped reports whether Shutdown has been initiated.
func (p *WorkerPool) IsStopped() bool {
	return p.stopped.Load()
}

func (p *WorkerPool) spawnLocked(n int) {
	for i := 0; i < n; i++ {
		id := p.nextID
		p.nextID++
		p.live++
		p.wg.Add(1)
		go p.worker(id)
	}
}

// worker is the loop each pool goroutine runs: re-check stop and surplus
// at every idle point, otherwise dequeue one job in FIFO order and
// execute it exactly once.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		if p.stopped.Load() {
			p.retire(id)
			return
		}

		p.mu.Lock()
		if p.live > p.target {
			p.live--
			p.mu.Unlock()
			p.logger.Debug("surplus worker exiting", F("worker", id))
			return
		}
		resize := p.resizeCh
		p.mu.Unlock()

		if job, ok := p.queue.Pop(); ok {
			p.run(id, job)
			continue
		}

		select {
		case <-p.signal:
		case <-resize:
		case <-p.stopCh:
			p.retire(id)
			return
		}
	}
}

func (p *WorkerPool) retire(id int) {
	p.mu.Lock()
	p.live--
	p.mu.Unlock()
}

func (p *WorkerPool) run(id int, job Job) {
	p.busy.Add(1)
	defer p.busy.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.metrics.RecordWorkerPanic()
			p.panicHandler.HandlePanic(id, r, debug.Stack())
		}
	}()

	job()
	p.metrics.RecordQueueDepth(p.queue.Len())
}
