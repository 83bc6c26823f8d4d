package media

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	"adforge/config"
)

// placeholderColor is the uniform fill used when no product image could be
// downloaded. Near-black keeps captions readable on the fallback frame.
var placeholderColor = color.RGBA{R: 16, G: 16, B: 24, A: 255}

// WritePlaceholder writes a canvas-sized uniform-color JPEG to path and
// returns the path.
func WritePlaceholder(path string) (string, error) {
	img := NewSolidFrame(config.CanvasWidth, config.CanvasHeight, placeholderColor)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create placeholder file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return path, nil
}

// NewSolidFrame returns a w×h image filled with a single color.
func NewSolidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}
