package textrender

import "github.com/textrender/textrender/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the textrender package for most use cases.

// Handle is the opaque identity for a task.
type Handle = core.Handle

// NilHandle never resolves to a task.
const NilHandle = core.NilHandle

// Task is one unit of render work.
type Task = core.Task

// TaskStatus tracks a task through its lifecycle.
type TaskStatus = core.TaskStatus

// Status constants
const (
	StatusPending   TaskStatus = core.StatusPending
	StatusRunning   TaskStatus = core.StatusRunning
	StatusCompleted TaskStatus = core.StatusCompleted
	StatusFailed    TaskStatus = core.StatusFailed
	StatusCancelled TaskStatus = core.StatusCancelled
)

// CompletionFunc is the typed async completion notification.
type CompletionFunc = core.CompletionFunc

// RenderOptions is the rendering configuration snapshot.
type RenderOptions = core.RenderOptions

// Resolution, Format and BackgroundType select output characteristics.
type (
	Resolution     = core.Resolution
	Format         = core.Format
	BackgroundType = core.BackgroundType
)

// Resolution constants
const (
	ResolutionAuto  Resolution = core.ResolutionAuto
	Resolution720p  Resolution = core.Resolution720p
	Resolution1080p Resolution = core.Resolution1080p
	Resolution2K    Resolution = core.Resolution2K
	Resolution4K    Resolution = core.Resolution4K
	Resolution8K    Resolution = core.Resolution8K
)

// Format constants
const (
	FormatPNG  Format = core.FormatPNG
	FormatJPEG Format = core.FormatJPEG
	FormatWEBP Format = core.FormatWEBP
	FormatBMP  Format = core.FormatBMP
	FormatTIFF Format = core.FormatTIFF
	FormatHEIC Format = core.FormatHEIC
	FormatAVIF Format = core.FormatAVIF
)

// Background constants
const (
	BackgroundSolid BackgroundType = core.BackgroundSolid
	BackgroundImage BackgroundType = core.BackgroundImage
)

// DefaultRenderOptions returns the documented default options.
var DefaultRenderOptions = core.DefaultRenderOptions

// Error taxonomy re-exports
var (
	ErrNotInitialized = core.ErrNotInitialized
	ErrInvalidHandle  = core.ErrInvalidHandle
	ErrInvalidInput   = core.ErrInvalidInput
	ErrRenderFailed   = core.ErrRenderFailed
	ErrOutputWrite    = core.ErrOutputWrite
	ErrPoolStopped    = core.ErrPoolStopped
	ErrInitialization = core.ErrInitialization
)
