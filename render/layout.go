package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	lineSpacing = 1.45
	blockGap    = 0.6 // fraction of the block's font size
)

func (b *block) fontFor(fonts *fontSet) *opentype.Font {
	switch {
	case b.mono:
		return fonts.mono
	case b.bold:
		return fonts.bold
	default:
		return fonts.regular
	}
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// measureHeight runs layout without drawing and returns the content
// height at the given canvas width.
func measureHeight(fonts *fontSet, doc *document, width int) (int, error) {
	return layoutBlocks(fonts, doc, width, nil)
}

// drawDocument lays the blocks out top to bottom and rasterizes them
// onto the canvas.
func drawDocument(dst *image.RGBA, fonts *fontSet, doc *document, width int) error {
	_, err := layoutBlocks(fonts, doc, width, dst)
	return err
}

// layoutBlocks is the single layout pass. With a nil destination it only
// measures; with a destination it also draws. Keeping one code path
// guarantees measure and draw agree on positions.
func layoutBlocks(fonts *fontSet, doc *document, width int, dst *image.RGBA) (int, error) {
	maxLineWidth := width - 2*marginX
	if maxLineWidth < 16 {
		maxLineWidth = 16
	}

	y := marginY
	for _, b := range doc.blocks {
		face, err := newFace(b.fontFor(fonts), b.size)
		if err != nil {
			return 0, err
		}

		metrics := face.Metrics()
		ascent := metrics.Ascent.Ceil()
		lineHeight := int(b.size * lineSpacing)

		for _, line := range wrapText(face, b.text, maxLineWidth) {
			if dst != nil && line != "" {
				x := marginX
				switch b.align {
				case alignCenter:
					x = marginX + (maxLineWidth-font.MeasureString(face, line).Ceil())/2
				case alignRight:
					x = marginX + maxLineWidth - font.MeasureString(face, line).Ceil()
				}
				if x < marginX {
					x = marginX
				}
				drawLine(dst, face, line, b.color, x, y+ascent)
			}
			y += lineHeight
		}
		y += int(b.size * blockGap)

		if closer, ok := face.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	return y + marginY, nil
}

func drawLine(dst *image.RGBA, face font.Face, line string, col color.NRGBA, x, baseline int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(line)
}

// wrapText splits on hard newlines, then greedily word-wraps each line to
// the maximum pixel width. A single word wider than the line is emitted
// on its own line rather than broken.
func wrapText(face font.Face, text string, maxWidth int) []string {
	var out []string
	for _, hard := range strings.Split(text, "\n") {
		words := strings.Fields(hard)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if font.MeasureString(face, candidate).Ceil() > maxWidth {
				out = append(out, line)
				line = word
				continue
			}
			line = candidate
		}
		out = append(out, line)
	}
	return out
}
