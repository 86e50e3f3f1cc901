// Package lsb embeds and extracts a byte sequence into the least
// significant bit of the blue channel across a rectangular pixel region,
// one bit per pixel, row-major, MSB-first within each byte. The blue
// channel is chosen because human luminance sensitivity to blue is
// lowest; alpha is never touched, preserving transparency. Embedding
// never reads or depends on pixels outside the declared region, and is
// idempotent: embedding the same record at the same location twice
// yields the same pixel state.
package lsb

import (
	"fmt"

	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
)

// Embed writes payload's bits into region's blue-channel LSBs, MSB-first
// within each byte, row-major within the region.
func Embed(buf *canvas.Buffer, region canvas.Region, payload []byte) error {
	needed := len(payload) * 8
	if region.Count() < needed {
		return fmt.Errorf("%w: region holds %d bits, payload needs %d", elaraerrors.ErrImageTooSmall, region.Count(), needed)
	}
	if !region.FitsIn(buf.Width, buf.Height) {
		return fmt.Errorf("%w: region does not fit a %dx%d buffer", elaraerrors.ErrImageTooSmall, buf.Width, buf.Height)
	}

	slot := 0
	for _, b := range payload {
		for bit := 7; bit >= 0; bit-- {
			row := slot / region.W
			col := slot % region.W
			off := buf.Offset(region.X+col, region.Y+row)

			v := (b >> uint(bit)) & 1
			buf.Pix[off+2] = (buf.Pix[off+2] &^ 1) | v

			slot++
		}
	}
	return nil
}

// Extract reads n bytes back out of region's blue-channel LSBs.
func Extract(buf *canvas.Buffer, region canvas.Region, n int) ([]byte, error) {
	needed := n * 8
	if region.Count() < needed {
		return nil, fmt.Errorf("%w: region holds %d bits, need %d", elaraerrors.ErrImageTooSmall, region.Count(), needed)
	}
	if !region.FitsIn(buf.Width, buf.Height) {
		return nil, fmt.Errorf("%w: region does not fit a %dx%d buffer", elaraerrors.ErrImageTooSmall, buf.Width, buf.Height)
	}

	out := make([]byte, n)
	slot := 0
	for i := 0; i < n; i++ {
		var b byte
		for bit := 7; bit >= 0; bit-- {
			row := slot / region.W
			col := slot % region.W
			off := buf.Offset(region.X+col, region.Y+row)

			v := buf.Pix[off+2] & 1
			b = (b << 1) | v

			slot++
		}
		out[i] = b
	}
	return out, nil
}

// CheckNoOverlap returns elaraerrors.ErrRegionOverlap if any two regions in
// regions overlap.
func CheckNoOverlap(regions ...canvas.Region) error {
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Overlaps(regions[j]) {
				return fmt.Errorf("%w: region %d overlaps region %d", elaraerrors.ErrRegionOverlap, i, j)
			}
		}
	}
	return nil
}
