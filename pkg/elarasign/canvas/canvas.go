// Package canvas provides the RGBA pixel buffer abstraction the embedding
// and extraction layers operate on: (x,y) <-> byte-offset mapping and
// rectangular region iteration.
package canvas

import (
	"fmt"
	"image"

	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
)

// MinWidth and MinHeight are the smallest dimensions sign_image accepts.
const (
	MinWidth  = 128
	MinHeight = 128
)

// Buffer wraps a mutable RGBA pixel plane with width/height and exposes
// (x,y) <-> offset mapping for the embedding layers. It never owns the
// backing array's lifetime; callers mutate in place.
type Buffer struct {
	Pix    []byte // 4 bytes per pixel: R, G, B, A
	Width  int
	Height int
}

// FromImage builds a Buffer view over a standard library *image.RGBA,
// sharing the same backing array (mutations are visible to both).
func FromImage(img *image.RGBA) *Buffer {
	return &Buffer{
		Pix:    img.Pix,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
	}
}

// Offset returns the index into Pix of pixel (x,y)'s first (red) byte.
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// ValidateMinimumSize returns elaraerrors.ErrImageTooSmall when the buffer
// is below the engine's 128x128 floor.
func (b *Buffer) ValidateMinimumSize() error {
	if b.Width < MinWidth || b.Height < MinHeight {
		return fmt.Errorf("%w: got %dx%d, need at least %dx%d", elaraerrors.ErrImageTooSmall, b.Width, b.Height, MinWidth, MinHeight)
	}
	return nil
}

// Region is a rectangular pixel area, anchored at (X,Y), W wide and H tall.
type Region struct {
	X, Y, W, H int
}

// Slots iterates the region's pixels in row-major order, yielding each
// pixel's region-relative slot index (row*W + col). This is the same slot
// order the LSB embedder and extractor walk.
func (r Region) Slots() []int {
	offsets := make([]int, 0, r.W*r.H)
	for row := 0; row < r.H; row++ {
		for col := 0; col < r.W; col++ {
			offsets = append(offsets, row*r.W+col)
		}
	}
	return offsets
}

// Count returns the number of pixel slots in the region.
func (r Region) Count() int {
	return r.W * r.H
}

// FitsIn reports whether the region lies entirely within a buffer of the
// given dimensions.
func (r Region) FitsIn(width, height int) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= width && r.Y+r.H <= height
}

// Overlaps reports whether two regions share any pixel.
func (r Region) Overlaps(other Region) bool {
	if r.X+r.W <= other.X || other.X+other.W <= r.X {
		return false
	}
	if r.Y+r.H <= other.Y || other.Y+other.H <= r.Y {
		return false
	}
	return true
}

// Zero overwrites every pixel in the region with opaque black, used by
// crop-resilience tests to simulate cropping/destroying a location.
func (b *Buffer) Zero(r Region) {
	for row := 0; row < r.H; row++ {
		for col := 0; col < r.W; col++ {
			off := b.Offset(r.X+col, r.Y+row)
			b.Pix[off+0] = 0
			b.Pix[off+1] = 0
			b.Pix[off+2] = 0
			b.Pix[off+3] = 255
		}
	}
}
