// Package render provides the built-in RenderEngine: a pure-Go pipeline
// that parses lightweight markup plus a small style-sheet subset, lays the
// text out on a raster canvas and encodes the pixels into the requested
// image format.
package render

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/textrender/textrender/core"
)

const (
	defaultWidth  = 800
	marginX       = 24
	marginY       = 24
	minAutoHeight = 120
	maxAutoHeight = 8192
)

// Engine is the built-in render engine. One Engine serves concurrent
// Render calls; the parsed fonts are immutable after Initialize.
type Engine struct {
	mu    sync.Mutex
	fonts *fontSet
}

type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
	mono    *opentype.Font
}

// New creates an engine. It is unusable until Initialize succeeds.
func New() *Engine {
	return &Engine{}
}

// Name identifies the engine in logs and errors.
func (e *Engine) Name() string { return "builtin" }

// Initialize parses the embedded font families. Idempotent.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fonts != nil {
		return nil
	}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fmt.Errorf("parse bold font: %w", err)
	}
	mono, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("parse mono font: %w", err)
	}

	e.fonts = &fontSet{regular: regular, bold: bold, mono: mono}
	return nil
}

// Shutdown releases the parsed fonts.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	e.fonts = nil
	e.mu.Unlock()
}

// Render turns the task's content, style and options into encoded image
// bytes.
func (e *Engine) Render(task *core.Task) ([]byte, error) {
	e.mu.Lock()
	fonts := e.fonts
	e.mu.Unlock()
	if fonts == nil {
		return nil, fmt.Errorf("render engine not initialized")
	}

	opts := task.Options()

	doc, err := parseDocument(task.Content(), task.Style())
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	width, height, err := e.canvasSize(fonts, doc, opts)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := fillBackground(img, doc, opts); err != nil {
		return nil, fmt.Errorf("draw background: %w", err)
	}

	if err := drawDocument(img, fonts, doc, width); err != nil {
		return nil, fmt.Errorf("draw content: %w", err)
	}

	if opts.BorderRadius > 0 {
		roundCorners(img, opts.BorderRadius)
	}

	return encode(img, opts.Format, opts.Quality)
}

// canvasSize resolves the output dimensions: preset resolutions win,
// then custom dimensions, then content measurement for the height at the
// default width.
func (e *Engine) canvasSize(fonts *fontSet, doc *document, opts core.RenderOptions) (int, int, error) {
	if w, h := opts.Resolution.Dimensions(); w > 0 {
		return w, h, nil
	}

	width := opts.CustomWidth
	if width <= 0 {
		width = defaultWidth
	}

	height := opts.CustomHeight
	if height <= 0 {
		measured, err := measureHeight(fonts, doc, width)
		if err != nil {
			return 0, 0, err
		}
		height = measured
		if height < minAutoHeight {
			height = minAutoHeight
		}
		if height > maxAutoHeight {
			height = maxAutoHeight
		}
	}
	return width, height, nil
}
