package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	xdraw "golang.org/x/image/draw"

	// Background images may arrive in any of the decodable formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/textrender/textrender/core"
)

// fillBackground paints the canvas before any content is drawn: either a
// solid color (the style sheet's body background-color wins over the
// option) or an image loaded from disk, cover-scaled and centered, with
// an optional box blur.
func fillBackground(dst *image.RGBA, doc *document, opts core.RenderOptions) error {
	if opts.BackgroundType == core.BackgroundImage && opts.BackgroundImage != "" {
		return drawImageBackground(dst, opts)
	}

	col := argbToNRGBA(opts.BackgroundColor)
	if c, ok := doc.pageBackground(); ok {
		col = c
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	return nil
}

func drawImageBackground(dst *image.RGBA, opts core.RenderOptions) error {
	f, err := os.Open(opts.BackgroundImage)
	if err != nil {
		return fmt.Errorf("open background image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode background image: %w", err)
	}

	bounds := dst.Bounds()
	srcBounds := src.Bounds()
	if srcBounds.Dx() == 0 || srcBounds.Dy() == 0 {
		return fmt.Errorf("background image %s is empty", opts.BackgroundImage)
	}

	// Cover scaling: fill the canvas completely, cropping the overflow,
	// keeping the image centered.
	scaleX := float64(bounds.Dx()) / float64(srcBounds.Dx())
	scaleY := float64(bounds.Dy()) / float64(srcBounds.Dy())
	scale := scaleX
	if scaleY > scale {
		scale = scaleY
	}

	scaledW := int(float64(srcBounds.Dx())*scale + 0.5)
	scaledH := int(float64(srcBounds.Dy())*scale + 0.5)
	offsetX := (bounds.Dx() - scaledW) / 2
	offsetY := (bounds.Dy() - scaledH) / 2
	target := image.Rect(offsetX, offsetY, offsetX+scaledW, offsetY+scaledH)

	xdraw.CatmullRom.Scale(dst, target, src, srcBounds, xdraw.Src, nil)

	if opts.BackgroundBlur > 0 {
		boxBlur(dst, blurRadius(opts.BackgroundBlur))
	}
	return nil
}

// blurRadius maps the 0-100 blur amount onto a pixel radius.
func blurRadius(amount float64) int {
	if amount > 100 {
		amount = 100
	}
	r := int(amount / 100 * 24)
	if r < 1 {
		r = 1
	}
	return r
}

// boxBlur applies a two-pass (horizontal then vertical) box blur in
// place. A box blur is a cheap approximation of a Gaussian and is plenty
// for a background layer.
func boxBlur(img *image.RGBA, radius int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 || radius <= 0 {
		return
	}

	tmp := image.NewRGBA(bounds)
	blurPass(img.Pix, tmp.Pix, w, h, img.Stride, radius, true)
	blurPass(tmp.Pix, img.Pix, w, h, img.Stride, radius, false)
}

func blurPass(src, dst []uint8, w, h, stride, radius int, horizontal bool) {
	length := w
	lines := h
	if !horizontal {
		length = h
		lines = w
	}

	at := func(line, i int) int {
		if horizontal {
			return line*stride + i*4
		}
		return i*stride + line*4
	}

	for line := 0; line < lines; line++ {
		var sumR, sumG, sumB, sumA int
		window := 0

		// Prime the window around index 0.
		for i := -radius; i <= radius; i++ {
			j := clampIndex(i, length)
			o := at(line, j)
			sumR += int(src[o])
			sumG += int(src[o+1])
			sumB += int(src[o+2])
			sumA += int(src[o+3])
			window++
		}

		for i := 0; i < length; i++ {
			o := at(line, i)
			dst[o] = uint8(sumR / window)
			dst[o+1] = uint8(sumG / window)
			dst[o+2] = uint8(sumB / window)
			dst[o+3] = uint8(sumA / window)

			// Slide: drop i-radius, add i+radius+1.
			drop := at(line, clampIndex(i-radius, length))
			add := at(line, clampIndex(i+radius+1, length))
			sumR += int(src[add]) - int(src[drop])
			sumG += int(src[add+1]) - int(src[drop+1])
			sumB += int(src[add+2]) - int(src[drop+2])
			sumA += int(src[add+3]) - int(src[drop+3])
		}
	}
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}

// roundCorners clears pixels outside a rounded rectangle so the output
// corners are transparent. Formats without alpha flatten the transparency
// at encode time.
func roundCorners(img *image.RGBA, radius int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	maxRadius := w / 2
	if h/2 < maxRadius {
		maxRadius = h / 2
	}
	if radius > maxRadius {
		radius = maxRadius
	}
	if radius <= 0 {
		return
	}

	rr := radius * radius
	clear := color.NRGBA{}
	for y := 0; y < radius; y++ {
		for x := 0; x < radius; x++ {
			dx := radius - 1 - x
			dy := radius - 1 - y
			if dx*dx+dy*dy > rr {
				img.Set(bounds.Min.X+x, bounds.Min.Y+y, clear)
				img.Set(bounds.Max.X-1-x, bounds.Min.Y+y, clear)
				img.Set(bounds.Min.X+x, bounds.Max.Y-1-y, clear)
				img.Set(bounds.Max.X-1-x, bounds.Max.Y-1-y, clear)
			}
		}
	}
}

func argbToNRGBA(argb uint32) color.NRGBA {
	return color.NRGBA{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}
