package textrender

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/textrender/textrender/core"
	"github.com/textrender/textrender/render"
)

// RenderEngine is the capability that turns a task's content, style and
// options into encoded image bytes. The engine treats it as a black box;
// implementations must be safe for concurrent Render calls.
type RenderEngine interface {
	// Initialize prepares the engine. Called once before any Render.
	Initialize() error

	// Shutdown releases engine resources. No Render call is in flight
	// when it runs.
	Shutdown()

	// Render produces the encoded output for the task, or an error
	// describing why the task cannot be rendered.
	Render(task *core.Task) ([]byte, error)

	// Name identifies the engine in logs and errors.
	Name() string
}

// Config holds construction options for an Engine.
// All fields are optional.
type Config struct {
	// Renderer is the render engine to drive. Defaults to the built-in
	// engine from the render package.
	Renderer RenderEngine

	// Workers is the initial pool size. 0 selects the number of
	// available CPUs.
	Workers int

	// Logger receives engine lifecycle events. Defaults to NoOpLogger.
	Logger core.Logger

	// Metrics collects render and pool metrics. Defaults to NilMetrics.
	Metrics core.Metrics

	// PanicHandler handles panics escaping jobs on pool workers.
	PanicHandler core.PanicHandler
}

// Engine owns a render engine, a worker pool and the task table, and is
// the single authority resolving handles to tasks. Construct one per
// independent rendering context; the package-level functions in global.go
// are a compatibility shim over a shared default Engine.
type Engine struct {
	mu          sync.Mutex
	initialized atomic.Bool
	renderer    RenderEngine
	pool        *core.WorkerPool
	tasks       *core.TaskTable
	workers     int

	logger       core.Logger
	metrics      core.Metrics
	panicHandler core.PanicHandler

	// Last-error slot: process-wide per engine, most-recent-write-wins.
	// Concurrent operations on different tasks can overwrite each other's
	// message. Kept as a compatibility shim; prefer the error returned by
	// each call.
	errMu   sync.Mutex
	lastErr string
}

// NewEngine creates an engine from the config. The engine does nothing
// until Initialize is called.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = &Config{}
	}

	e := &Engine{
		renderer:     config.Renderer,
		workers:      config.Workers,
		tasks:        core.NewTaskTable(),
		logger:       config.Logger,
		metrics:      config.Metrics,
		panicHandler: config.PanicHandler,
	}
	if e.renderer == nil {
		e.renderer = render.New()
	}
	if e.logger == nil {
		e.logger = core.NewNoOpLogger()
	}
	if e.metrics == nil {
		e.metrics = &core.NilMetrics{}
	}
	return e
}

// Initialize starts the render engine and the worker pool. Idempotent;
// safe to call again after a failed attempt.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized.Load() {
		return nil
	}

	if err := e.renderer.Initialize(); err != nil {
		msg := fmt.Sprintf("initialize render engine %s: %v", e.renderer.Name(), err)
		e.setLastError(msg)
		return fmt.Errorf("%w: %s", core.ErrInitialization, msg)
	}

	e.pool = core.NewWorkerPool(e.workers, &core.PoolConfig{
		Logger:       e.logger,
		PanicHandler: e.panicHandler,
		Metrics:      e.metrics,
	})
	e.pool.Start()

	e.initialized.Store(true)
	e.logger.Info("engine initialized",
		core.F("renderer", e.renderer.Name()),
		core.F("workers", e.pool.Target()))
	return nil
}

// Shutdown stops the pool, releases the render engine and clears all
// tracked tasks. Queued async tasks are abandoned: they do not execute
// and their callbacks never fire. After Shutdown every entry point fails
// with ErrNotInitialized until Initialize succeeds again. Idempotent.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized.Load() {
		return
	}
	e.initialized.Store(false)

	e.pool.Shutdown()
	e.renderer.Shutdown()
	e.tasks.Clear()
	e.logger.Info("engine shut down")
}

// IsInitialized reports whether the engine is running.
func (e *Engine) IsInitialized() bool {
	return e.initialized.Load()
}

// CreateTask allocates a task for the given content, style and options
// and returns its handle. A nil options pointer selects the defaults.
func (e *Engine) CreateTask(content, style string, options *core.RenderOptions) (core.Handle, error) {
	if !e.initialized.Load() {
		e.setLastError("engine not initialized")
		return core.NilHandle, core.ErrNotInitialized
	}
	if content == "" {
		e.setLastError("content must not be empty")
		return core.NilHandle, fmt.Errorf("%w: content must not be empty", core.ErrInvalidInput)
	}

	opts := core.DefaultRenderOptions()
	if options != nil {
		opts = *options
	}

	task := core.NewTask(content, style, opts)
	return e.tasks.Insert(task), nil
}

// FreeTask removes the engine's reference to the task. Unknown or stale
// handles are a no-op. A worker mid-render keeps its own reference, so
// freeing a task does not interrupt or corrupt an in-flight render.
func (e *Engine) FreeTask(h core.Handle) {
	e.tasks.Remove(h)
}

// GetTask resolves a handle to its task for inspection.
func (e *Engine) GetTask(h core.Handle) (*core.Task, bool) {
	return e.tasks.Get(h)
}

// TaskCount returns the number of tasks the engine currently tracks.
func (e *Engine) TaskCount() int {
	return e.tasks.Len()
}

// RenderSync renders the task on the calling goroutine, blocking for the
// full render duration. On success with a non-empty outputPath the result
// is also persisted to that path; a failed write fails the call even
// though rendering succeeded.
func (e *Engine) RenderSync(h core.Handle, outputPath string) error {
	if !e.initialized.Load() {
		e.setLastError("engine not initialized")
		return core.ErrNotInitialized
	}
	task, ok := e.tasks.Get(h)
	if !ok {
		e.setLastError("invalid task handle")
		return core.ErrInvalidHandle
	}
	return e.runTask(task, outputPath)
}

// RenderAsync registers the callback on the task and submits it to the
// worker pool, returning as soon as the submission is accepted or
// rejected. A worker later performs the same steps as RenderSync and then
// fires the callback exactly once with the final success flag.
func (e *Engine) RenderAsync(h core.Handle, outputPath string, callback core.CompletionFunc) error {
	if !e.initialized.Load() {
		e.setLastError("engine not initialized")
		return core.ErrNotInitialized
	}
	task, ok := e.tasks.Get(h)
	if !ok {
		e.setLastError("invalid task handle")
		return core.ErrInvalidHandle
	}

	task.SetCallback(callback)

	job := func() {
		err := e.runTask(task, outputPath)
		task.ExecuteCallback(err == nil)
	}
	if err := e.pool.Enqueue(job); err != nil {
		e.setLastError(fmt.Sprintf("submit task: %v", err))
		return err
	}
	return nil
}

// runTask drives one render to a terminal state: Running, then Completed
// or Failed, with the optional output write folded into the outcome.
func (e *Engine) runTask(task *core.Task, outputPath string) error {
	task.BeginRun()

	start := time.Now()
	result, err := e.render(task)
	if err != nil {
		msg := fmt.Sprintf("render: %v", err)
		task.Fail(msg)
		e.setLastError(msg)
		e.metrics.RecordRenderFailure("render")
		return fmt.Errorf("%w: %v", core.ErrRenderFailed, err)
	}

	task.Complete(result)
	e.metrics.RecordRenderDuration(task.Options().Format.String(), time.Since(start))

	if outputPath != "" && len(result) > 0 {
		if err := os.WriteFile(outputPath, result, 0o644); err != nil {
			msg := fmt.Sprintf("write output %s: %v", outputPath, err)
			task.Fail(msg)
			e.setLastError(msg)
			e.metrics.RecordRenderFailure("output write")
			return fmt.Errorf("%w: %v", core.ErrOutputWrite, err)
		}
	}
	return nil
}

// render calls the render engine with panic containment: a panicking
// engine is reported as a render failure, never propagated to callers or
// pool workers.
func (e *Engine) render(task *core.Task) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in render engine: %v", r)
		}
	}()
	return e.renderer.Render(task)
}

// GetResult returns a copy of the encoded output. The caller owns the
// returned slice. It fails unless the task has reached StatusCompleted
// with output.
func (e *Engine) GetResult(h core.Handle) ([]byte, error) {
	task, ok := e.tasks.Get(h)
	if !ok {
		e.setLastError("invalid task handle")
		return nil, core.ErrInvalidHandle
	}

	if st := task.Status(); st != core.StatusCompleted {
		e.setLastError(fmt.Sprintf("result not available: task is %s", st))
		return nil, fmt.Errorf("%w: result not available, task is %s", core.ErrInvalidInput, st)
	}
	result := task.Result()
	if len(result) == 0 {
		e.setLastError("render produced no output")
		return nil, fmt.Errorf("%w: render produced no output", core.ErrRenderFailed)
	}
	return result, nil
}

// SetMaxThreads changes the worker pool target. n == 0 auto-detects from
// available hardware concurrency. When the engine is not running the
// value applies at the next Initialize.
func (e *Engine) SetMaxThreads(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.workers = n
	if e.initialized.Load() {
		e.pool.SetTarget(n)
	}
}

// EngineStats is a point-in-time snapshot of the engine's runtime state.
type EngineStats struct {
	Running bool
	Workers int
	Queued  int
	Active  int
	Tasks   int
}

// Stats returns a snapshot of pool and task-table state.
func (e *Engine) Stats() EngineStats {
	stats := EngineStats{
		Running: e.initialized.Load(),
		Tasks:   e.tasks.Len(),
	}
	if stats.Running {
		stats.Workers = e.pool.WorkerCount()
		stats.Queued = e.pool.QueuedJobs()
		stats.Active = e.pool.ActiveJobs()
	}
	return stats
}

// LastError returns the most recent error message, if any. This is a
// single slot shared by all operations on the engine; prefer per-call
// errors.
func (e *Engine) LastError() (string, bool) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.lastErr, e.lastErr != ""
}

func (e *Engine) setLastError(msg string) {
	e.errMu.Lock()
	e.lastErr = msg
	e.errMu.Unlock()
}
