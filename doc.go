// Package textrender turns text and lightweight markup into encoded
// images, scheduled on a concurrent task engine.
//
// Rendering itself is delegated to a RenderEngine (a pure-Go default
// lives in the render package); the value of this library is the task
// lifecycle around it: opaque generation-tagged handles, a forward-only
// task state machine, a worker pool that can be resized at runtime
// without losing or duplicating work, and error reporting that works
// across a boundary with no exceptions.
//
// # Quick Start
//
// Construct an engine, create a task, render it:
//
//	engine := textrender.NewEngine(nil)
//	if err := engine.Initialize(); err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Shutdown()
//
//	h, err := engine.CreateTask("<h1>Hello</h1>", "h1 { color: #336699; }", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.FreeTask(h)
//
//	if err := engine.RenderSync(h, "out.png"); err != nil {
//		log.Fatal(err)
//	}
//
// Asynchronous rendering submits the task to the engine's worker pool and
// fires a callback exactly once when the task reaches a terminal state:
//
//	engine.RenderAsync(h, "out.png", func(h textrender.Handle, ok bool) {
//		// Runs on a pool worker.
//	})
//
// # Key Concepts
//
// Handle: opaque task identity, stable for the task's lifetime. Handles
// are generation-tagged, so a handle kept past FreeTask is detectably
// stale instead of silently resolving to an unrelated task.
//
// Task: immutable input (content, style, options) plus a forward-only
// status machine: Pending -> Running -> Completed or Failed. A non-empty
// result implies Completed; a non-empty error message implies Failed.
//
// WorkerPool: a resizable set of workers draining one FIFO queue.
// SetMaxThreads grows the pool immediately and shrinks it as workers
// reach idle points; a worker mid-render always finishes its task.
//
// # Compatibility surface
//
// The package-level functions (Init, CreateTask, Render, RenderAsync,
// GetResult, FreeTask, GetLastError, SetMaxThreads, GetDefaultOptions)
// mirror the stable ABI shared with other-language bindings. They operate
// on a shared default Engine and report failures through a single
// last-error slot. New Go code should construct an Engine directly and
// use the per-call errors instead.
package textrender
