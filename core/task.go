package core

import (
	"sync"
	"sync/atomic"
)

// TaskStatus tracks a task through its lifecycle. Transitions are
// forward-only: Pending -> Running -> Completed or Failed.
type TaskStatus int32

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusCompleted
	StatusFailed

	// StatusCancelled is reserved for future use. No operation currently
	// moves a task into this state.
	StatusCancelled
)

func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a final state.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CompletionFunc is invoked exactly once when an asynchronously submitted
// task reaches a terminal state. It runs on whichever goroutine drove the
// task there (a pool worker for async renders), so it must not assume any
// particular thread identity and should not block for long: it occupies
// pool capacity while it runs. Any state the callback needs should be
// captured in the closure.
type CompletionFunc func(handle Handle, success bool)

// Task is one unit of render work: immutable input captured at creation,
// plus mutable status/result state driven by the engine.
//
// The status field is the synchronization point for readers on other
// goroutines: observe a terminal status first, then read the result or
// error message, never the reverse.
type Task struct {
	handle  Handle
	content string
	style   string
	options RenderOptions

	status atomic.Int32

	mu       sync.Mutex
	errMsg   string
	result   []byte
	callback CompletionFunc
}

// NewTask creates a task in StatusPending with an empty result.
func NewTask(content, style string, options RenderOptions) *Task {
	t := &Task{
		content: content,
		style:   style,
		options: options,
	}
	t.status.Store(int32(StatusPending))
	return t
}

// Handle returns the identity assigned when the task was registered.
func (t *Task) Handle() Handle { return t.handle }

func (t *Task) bind(h Handle) { t.handle = h }

// Content returns the markup captured at creation.
func (t *Task) Content() string { return t.content }

// Style returns the style sheet captured at creation.
func (t *Task) Style() string { return t.style }

// Options returns the rendering configuration snapshot.
func (t *Task) Options() RenderOptions { return t.options }

// Status returns the current lifecycle state. Safe from any goroutine.
func (t *Task) Status() TaskStatus {
	return TaskStatus(t.status.Load())
}

// ErrorMessage returns the failure description, empty unless the task is
// in StatusFailed.
func (t *Task) ErrorMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// Result returns a copy of the encoded output. It is non-empty only when
// the task is in StatusCompleted.
func (t *Task) Result() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.result) == 0 {
		return nil
	}
	out := make([]byte, len(t.result))
	copy(out, t.result)
	return out
}

// HasResult reports whether a completed render produced output, without
// copying the buffer.
func (t *Task) HasResult() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.result) > 0
}

// BeginRun moves the task into StatusRunning and clears any state left by
// a previous run, so re-rendering overwrites result and status
// deterministically.
func (t *Task) BeginRun() {
	t.mu.Lock()
	t.errMsg = ""
	t.result = nil
	t.mu.Unlock()
	t.status.Store(int32(StatusRunning))
}

// Complete stores the encoded output and moves the task to
// StatusCompleted. The buffer is stored before the status flips, so a
// reader that observes StatusCompleted sees the final result.
func (t *Task) Complete(result []byte) {
	t.mu.Lock()
	t.errMsg = ""
	t.result = result
	t.mu.Unlock()
	t.status.Store(int32(StatusCompleted))
}

// Fail records the failure message and moves the task to StatusFailed.
// The result is cleared: a non-empty result implies StatusCompleted.
func (t *Task) Fail(msg string) {
	t.mu.Lock()
	t.errMsg = msg
	t.result = nil
	t.mu.Unlock()
	t.status.Store(int32(StatusFailed))
}

// SetCallback registers the completion notification for async use.
// Calling it again replaces the previous registration; doing so is
// allowed but discouraged.
func (t *Task) SetCallback(cb CompletionFunc) {
	t.mu.Lock()
	t.callback = cb
	t.mu.Unlock()
}

// ExecuteCallback invokes the registered callback, if any, with the final
// success flag. The callback runs outside the task lock.
func (t *Task) ExecuteCallback(success bool) {
	t.mu.Lock()
	cb := t.callback
	t.mu.Unlock()
	if cb != nil {
		cb(t.handle, success)
	}
}
