package core

import "time"

// =============================================================================
// PanicHandler: Interface for handling job panics
// =============================================================================

// PanicHandler is called when a job panics on a pool worker.
// This allows custom panic handling, logging, and recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a job panics.
	//
	// Parameters:
	// - workerID: The ID of the worker the job ran on
	// - panicInfo: The panic value recovered from the job
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler logs panics through the configured Logger.
type DefaultPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic and its stack trace.
func (h *DefaultPanicHandler) HandlePanic(workerID int, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Error("worker panic",
		F("worker", workerID),
		F("panic", panicInfo),
		F("stack", string(stackTrace)))
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting engine and pool metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting render throughput,
// and must be safe for concurrent use.
type Metrics interface {
	// RecordRenderDuration records how long one render took, labeled by
	// output format.
	RecordRenderDuration(format string, duration time.Duration)

	// RecordRenderFailure records a failed render or output write.
	RecordRenderFailure(reason string)

	// RecordQueueDepth records the current pool queue depth.
	RecordQueueDepth(depth int)

	// RecordJobRejected records a submission rejected by the pool
	// (e.g. after shutdown).
	RecordJobRejected(reason string)

	// RecordWorkerPanic records that a job panicked on a worker.
	RecordWorkerPanic()
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordRenderDuration(format string, duration time.Duration) {}
func (m *NilMetrics) RecordRenderFailure(reason string)                          {}
func (m *NilMetrics) RecordQueueDepth(depth int)                                 {}
func (m *NilMetrics) RecordJobRejected(reason string)                            {}
func (m *NilMetrics) RecordWorkerPanic()                                         {}

// =============================================================================
// PoolConfig: Configuration for WorkerPool
// =============================================================================

// PoolConfig holds configuration options for WorkerPool.
// All fields are optional; if not provided, default implementations will be used.
type PoolConfig struct {
	// Logger receives pool lifecycle events. Defaults to NoOpLogger.
	Logger Logger

	// PanicHandler is called when a job panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record pool metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// DefaultPoolConfig returns a config with default handlers.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Logger:       NewNoOpLogger(),
		PanicHandler: &DefaultPanicHandler{},
		Metrics:      &NilMetrics{},
	}
}
