package core

import "time"

// Resolution selects the output pixel dimensions.
type Resolution int

const (
	// ResolutionAuto sizes the canvas from custom dimensions when set,
	// otherwise from the measured content.
	ResolutionAuto Resolution = iota
	Resolution720p
	Resolution1080p
	Resolution2K
	Resolution4K
	Resolution8K
)

// Dimensions returns the preset pixel size, or (0, 0) for ResolutionAuto.
func (r Resolution) Dimensions() (width, height int) {
	switch r {
	case Resolution720p:
		return 1280, 720
	case Resolution1080p:
		return 1920, 1080
	case Resolution2K:
		return 2560, 1440
	case Resolution4K:
		return 3840, 2160
	case Resolution8K:
		return 7680, 4320
	default:
		return 0, 0
	}
}

func (r Resolution) String() string {
	switch r {
	case ResolutionAuto:
		return "auto"
	case Resolution720p:
		return "720p"
	case Resolution1080p:
		return "1080p"
	case Resolution2K:
		return "2k"
	case Resolution4K:
		return "4k"
	case Resolution8K:
		return "8k"
	default:
		return "unknown"
	}
}

// Format selects the output image codec.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatWEBP
	FormatBMP
	FormatTIFF
	FormatHEIC
	FormatAVIF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatWEBP:
		return "webp"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	case FormatHEIC:
		return "heic"
	case FormatAVIF:
		return "avif"
	default:
		return "unknown"
	}
}

// BackgroundType selects how the canvas is filled before content is drawn.
type BackgroundType int

const (
	BackgroundSolid BackgroundType = iota
	BackgroundImage
)

// RenderOptions is the immutable rendering configuration captured when a
// task is created. Zero values are not meaningful defaults; start from
// DefaultRenderOptions and override.
type RenderOptions struct {
	Resolution Resolution
	Format     Format

	// Quality applies to lossy formats, 0-100.
	Quality int

	// CustomWidth and CustomHeight are used when Resolution is
	// ResolutionAuto. Zero means unset.
	CustomWidth  int
	CustomHeight int

	BackgroundType  BackgroundType
	BackgroundColor uint32 // ARGB
	BackgroundImage string
	BackgroundBlur  float64 // 0-100

	// BorderRadius rounds the output corners, in pixels.
	BorderRadius int

	// EnableScripts toggles script execution for engines that support it.
	// The built-in engine ignores it.
	EnableScripts bool

	// Timeout is advisory input to the render engine; the task engine
	// itself does not enforce it.
	Timeout time.Duration
}

// DefaultRenderOptions returns the documented defaults: auto resolution,
// PNG output at quality 90, unset custom dimensions, a solid opaque white
// background, no border radius, scripts disabled, 30 second timeout.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Resolution:      ResolutionAuto,
		Format:          FormatPNG,
		Quality:         90,
		BackgroundType:  BackgroundSolid,
		BackgroundColor: 0xFFFFFFFF,
		Timeout:         30 * time.Second,
	}
}
