package lsb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
)

func newTestBuffer(w, h int) *canvas.Buffer {
	pix := make([]byte, w*h*4)
	for i := range pix {
		if i%4 == 3 {
			pix[i] = 255
		} else {
			pix[i] = 200
		}
	}
	return &canvas.Buffer{Pix: pix, Width: w, Height: h}
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	buf := newTestBuffer(64, 16)
	region := canvas.Region{X: 0, Y: 0, W: 48, H: 8}
	payload := []byte("ELARA\x02\x01 extra bytes here!! padding to 48 bytes..")[:48]

	require.NoError(t, Embed(buf, region, payload))

	got, err := Extract(buf, region, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestEmbedNeverTouchesAlphaOrOtherChannels(t *testing.T) {
	buf := newTestBuffer(64, 16)
	region := canvas.Region{X: 0, Y: 0, W: 48, H: 8}
	payload := make([]byte, 48)
	for i := range payload {
		payload[i] = 0xFF
	}

	require.NoError(t, Embed(buf, region, payload))

	for i := 0; i < region.Count(); i++ {
		off := buf.Offset(region.X+i%region.W, region.Y+i/region.W)
		require.Equal(t, byte(200), buf.Pix[off+0], "red untouched")
		require.Equal(t, byte(200), buf.Pix[off+1], "green untouched")
		require.Equal(t, byte(255), buf.Pix[off+3], "alpha untouched")
	}
}

func TestEmbedIsIdempotent(t *testing.T) {
	buf1 := newTestBuffer(64, 16)
	buf2 := newTestBuffer(64, 16)
	region := canvas.Region{X: 0, Y: 0, W: 48, H: 8}
	payload := []byte("ELARA\x02\x01 extra bytes here!! padding to 48 bytes..")[:48]

	require.NoError(t, Embed(buf1, region, payload))
	require.NoError(t, Embed(buf1, region, payload))
	require.NoError(t, Embed(buf2, region, payload))

	require.Equal(t, buf1.Pix, buf2.Pix)
}

func TestEmbedRejectsRegionTooSmall(t *testing.T) {
	buf := newTestBuffer(64, 16)
	region := canvas.Region{X: 0, Y: 0, W: 4, H: 4} // only 16 bits available
	err := Embed(buf, region, make([]byte, 48))
	require.Error(t, err)
}

func TestCheckNoOverlapDetectsOverlap(t *testing.T) {
	a := canvas.Region{X: 0, Y: 0, W: 48, H: 8}
	b := canvas.Region{X: 20, Y: 0, W: 48, H: 8}
	require.Error(t, CheckNoOverlap(a, b))
}

func TestCheckNoOverlapAllowsDisjoint(t *testing.T) {
	a := canvas.Region{X: 0, Y: 0, W: 48, H: 8}
	b := canvas.Region{X: 100, Y: 0, W: 48, H: 8}
	require.NoError(t, CheckNoOverlap(a, b))
}
