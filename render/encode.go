package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/textrender/textrender/core"
)

// encode serializes the canvas into the requested format. Formats without
// a Go encoder (WEBP, HEIC, AVIF) are reported as render failures rather
// than silently substituted.
func encode(img image.Image, format core.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case core.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case core.FormatJPEG:
		opts := &jpeg.Options{Quality: clampQuality(quality)}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case core.FormatBMP:
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode bmp: %w", err)
		}
	case core.FormatTIFF:
		opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
		if err := tiff.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode tiff: %w", err)
		}
	default:
		return nil, fmt.Errorf("no encoder available for %s output", format)
	}

	return buf.Bytes(), nil
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
