package main

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
)

// loadRGBA reads an image file of any format image.Decode recognizes
// (PNG, JPEG, BMP, TIFF) and returns an RGBA canvas view plus the raw
// source bytes (for content-hash computation).
func loadRGBA(path string) (*canvas.Buffer, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		bounds := img.Bounds()
		converted := image.NewRGBA(bounds)
		draw.Draw(converted, bounds, img, bounds.Min, draw.Src)
		rgba = converted
	}

	return canvas.FromImage(rgba), raw, nil
}

// rgbaView wraps a canvas.Buffer as a stdlib *image.RGBA sharing the same
// backing pixels, for use with image/png and image/jpeg encoders.
func rgbaView(buf *canvas.Buffer) *image.RGBA {
	return &image.RGBA{
		Pix:    buf.Pix,
		Stride: buf.Width * 4,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}
}

