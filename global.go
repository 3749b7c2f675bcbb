package textrender

import (
	"sync"

	"github.com/textrender/textrender/core"
)

// Package-level compatibility shim mirroring the stable ABI shared with
// other-language bindings: one shared default Engine behind boolean-result
// entry points, with failures reported through the last-error slot.
// New Go code should construct an Engine directly; these functions exist
// for callers porting from the C surface.
//
// There is no FreeBuffer counterpart: GetResult returns a copy owned by
// the caller and the garbage collector reclaims it.

var (
	defaultMu     sync.Mutex
	defaultEngine *Engine
)

func getDefaultEngine() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = NewEngine(nil)
	}
	return defaultEngine
}

// Init initializes the shared default engine. It reports success; on
// failure the reason is available from GetLastError. Idempotent.
func Init() bool {
	return getDefaultEngine().Initialize() == nil
}

// Shutdown stops the shared default engine and clears its tasks.
func Shutdown() {
	getDefaultEngine().Shutdown()
}

// CreateTask allocates a render task on the default engine. It returns
// NilHandle on failure; consult GetLastError for the reason. A nil
// options pointer selects GetDefaultOptions.
func CreateTask(content, style string, options *core.RenderOptions) core.Handle {
	h, err := getDefaultEngine().CreateTask(content, style, options)
	if err != nil {
		return core.NilHandle
	}
	return h
}

// Render renders the task synchronously on the calling goroutine,
// optionally persisting the result to outputPath.
func Render(h core.Handle, outputPath string) bool {
	return getDefaultEngine().RenderSync(h, outputPath) == nil
}

// RenderAsync submits the task to the default engine's worker pool. It
// reports whether the submission was accepted; the callback later fires
// exactly once with the final success flag.
func RenderAsync(h core.Handle, outputPath string, callback core.CompletionFunc) bool {
	return getDefaultEngine().RenderAsync(h, outputPath, callback) == nil
}

// GetResult returns a caller-owned copy of the task's encoded output.
// Valid only once the task status is StatusCompleted.
func GetResult(h core.Handle) ([]byte, error) {
	return getDefaultEngine().GetResult(h)
}

// FreeTask releases the default engine's reference to the task. Safe to
// call while a worker is still rendering the task.
func FreeTask(h core.Handle) {
	getDefaultEngine().FreeTask(h)
}

// GetLastError returns the default engine's most recent error message.
func GetLastError() (string, bool) {
	return getDefaultEngine().LastError()
}

// SetMaxThreads sets the default engine's worker pool target. 0 selects
// the number of available CPUs.
func SetMaxThreads(n int) {
	getDefaultEngine().SetMaxThreads(n)
}

// GetDefaultOptions returns the documented default render options.
func GetDefaultOptions() core.RenderOptions {
	return core.DefaultRenderOptions()
}
