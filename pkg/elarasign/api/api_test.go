package api

import (
	"image"

	"github.com/stretchr/testify/require"

	"testing"

	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
	"github.com/elarasign/elarasign/pkg/elarasign/forensic"
	"github.com/elarasign/elarasign/pkg/elarasign/hashing"
	"github.com/elarasign/elarasign/pkg/elarasign/locate"
	"github.com/elarasign/elarasign/pkg/elarasign/metadata"
	"github.com/elarasign/elarasign/pkg/elarasign/signature"
)

func solidBuffer(w, h int, r, g, b byte) *canvas.Buffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(x, y)
			img.Pix[off+0] = r
			img.Pix[off+1] = g
			img.Pix[off+2] = b
			img.Pix[off+3] = 255
		}
	}
	return canvas.FromImage(img)
}

func sampleMetadata(content []byte) *metadata.Record {
	return &metadata.Record{
		SignatureVersion: metadata.SignatureVersion,
		Generator:        "test",
		GeneratedAt:      "2026-07-29T00:00:00Z",
		UserFingerprint:  metadata.UserFingerprint("user-1"),
		KeyFingerprint:   "instance-a",
		ContentType:      metadata.ContentImage,
		ContentHash:      metadata.ContentHash(content),
		PromptHash:       metadata.PromptHash(""),
		GenerationMethod: metadata.GenerationAI,
	}
}

func TestSignImageThenVerifyRoundTrip(t *testing.T) {
	buf := solidBuffer(256, 256, 128, 200, 100)
	content := []byte("raw source bytes")
	rec := sampleMetadata(content)

	result, err := SignImage(buf, content, rec, 1700000000, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []signature.Location{signature.LocationTL, signature.LocationTR, signature.LocationBC}, result.LocationsEmbedded)

	verify := VerifyImage(buf, content, &result.MetaHash)
	require.True(t, verify.Signed)
	require.False(t, verify.TamperDetected)
	require.ElementsMatch(t, []signature.Location{signature.LocationTL, signature.LocationTR, signature.LocationBC}, verify.ValidLocations)
}

func TestSignImageIsIdempotent(t *testing.T) {
	buf1 := solidBuffer(256, 256, 10, 20, 30)
	buf2 := solidBuffer(256, 256, 10, 20, 30)
	content := []byte("identical content")
	rec := sampleMetadata(content)

	_, err := SignImage(buf1, content, rec, 42, nil)
	require.NoError(t, err)
	_, err = SignImage(buf1, content, rec, 42, nil)
	require.NoError(t, err)

	_, err = SignImage(buf2, content, rec, 42, nil)
	require.NoError(t, err)

	require.Equal(t, buf1.Pix, buf2.Pix)
}

func TestMetaHashAndContentHashAreDeterministic(t *testing.T) {
	content := []byte("deterministic content")
	rec := sampleMetadata(content)

	hash1, err := rec.MetaHash()
	require.NoError(t, err)
	hash2, err := rec.MetaHash()
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)

	require.Equal(t, metadata.ContentHash(content), metadata.ContentHash(content))
}

func TestCropOneLocationSurvives(t *testing.T) {
	buf := solidBuffer(256, 256, 128, 200, 100)
	content := []byte("crop-one test")
	rec := sampleMetadata(content)

	_, err := SignImage(buf, content, rec, 1700000000, nil)
	require.NoError(t, err)

	regions := locate.Regions(buf.Width, buf.Height)
	buf.Zero(regions[signature.LocationTL])

	verify := VerifyImage(buf, content, nil)
	require.True(t, verify.Signed)
	require.GreaterOrEqual(t, len(verify.ValidLocations), 2)
}

func TestCropTwoLocationsSurvives(t *testing.T) {
	buf := solidBuffer(256, 256, 128, 200, 100)
	content := []byte("crop-two test")
	rec := sampleMetadata(content)

	_, err := SignImage(buf, content, rec, 1700000000, nil)
	require.NoError(t, err)

	regions := locate.Regions(buf.Width, buf.Height)
	buf.Zero(regions[signature.LocationTL])
	buf.Zero(regions[signature.LocationTR])

	verify := VerifyImage(buf, content, nil)
	require.True(t, verify.Signed)
	require.GreaterOrEqual(t, len(verify.ValidLocations), 1)
}

func TestCropThreeLocationsDestroysSignature(t *testing.T) {
	buf := solidBuffer(256, 256, 128, 200, 100)
	content := []byte("crop-three test")
	rec := sampleMetadata(content)

	_, err := SignImage(buf, content, rec, 1700000000, nil)
	require.NoError(t, err)

	regions := locate.Regions(buf.Width, buf.Height)
	buf.Zero(regions[signature.LocationTL])
	buf.Zero(regions[signature.LocationTR])
	buf.Zero(regions[signature.LocationBC])

	verify := VerifyImage(buf, content, nil)
	require.False(t, verify.Signed)
}

func TestContentTamperIsDetected(t *testing.T) {
	buf := solidBuffer(256, 256, 128, 200, 100)
	content := []byte("tamper test")
	rec := sampleMetadata(content)

	_, err := SignImage(buf, content, rec, 1700000000, nil)
	require.NoError(t, err)

	// content_hash is computed over the caller-supplied raw bytes, not the
	// pixel buffer, so tampering the original content (without touching any
	// pixel) must still be caught on verify.
	tamperedContent := append([]byte(nil), content...)
	tamperedContent[0] ^= 0x01

	verify := VerifyImage(buf, tamperedContent, nil)
	require.True(t, verify.Signed)
	require.True(t, verify.TamperDetected)
}

func TestVerifyWithoutRawContentIsIndeterminate(t *testing.T) {
	buf := solidBuffer(256, 256, 128, 200, 100)
	content := []byte("indeterminate test")
	rec := sampleMetadata(content)

	_, err := SignImage(buf, content, rec, 1700000000, nil)
	require.NoError(t, err)

	verify := VerifyImage(buf, nil, nil)
	require.True(t, verify.Signed)
	require.True(t, verify.IntegrityIndeterminate)
	require.False(t, verify.TamperDetected)
}

func TestSignImageRejectsUndersizedBuffer(t *testing.T) {
	buf := solidBuffer(50, 30, 0, 0, 0)
	content := []byte("too small")
	rec := sampleMetadata(content)

	_, err := SignImage(buf, content, rec, 1700000000, nil)
	require.ErrorIs(t, err, elaraerrors.ErrImageTooSmall)
}

func TestReadSignatureAndHasSignature(t *testing.T) {
	buf := solidBuffer(256, 256, 50, 50, 50)
	content := []byte("s6 style test")
	rec := sampleMetadata(content)

	_, err := SignImage(buf, content, rec, 1700000000, nil)
	require.NoError(t, err)

	require.True(t, HasSignature(buf))

	read := ReadSignature(buf)
	require.True(t, read.IsElara)
	require.Equal(t, "2.0", read.Version)
	require.NotNil(t, read.Timestamp)
	require.EqualValues(t, 1700000000, *read.Timestamp)
}

func TestForensicAnnotationRoundTripsThroughSignAndUnlock(t *testing.T) {
	buf := solidBuffer(256, 256, 60, 70, 80)
	content := []byte("forensic pipeline test")
	rec := sampleMetadata(content)

	masterKey := "a"
	for len(masterKey) < 64 {
		masterKey += "a"
	}

	payload := forensic.AccountabilityPayload{
		Timestamp: 1700000000,
		Platform:  forensic.PlatformWeb,
	}
	copy(payload.UserFingerprintShort[:], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	copy(payload.IP[:], []byte{10, 0, 0, 1})

	result, err := SignImage(buf, content, rec, 1700000000, &ForensicContext{
		Enabled:   true,
		MasterKey: masterKey,
		Payload:   payload,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ForensicAnnotationBase64)

	unlocked, err := ForensicUnlock(result.ForensicAnnotationBase64, masterKey, result.MetaHash)
	require.NoError(t, err)
	require.Equal(t, payload, unlocked)

	wrongKey := "b"
	for len(wrongKey) < 64 {
		wrongKey += "b"
	}
	_, err = ForensicUnlock(result.ForensicAnnotationBase64, wrongKey, result.MetaHash)
	require.ErrorIs(t, err, elaraerrors.ErrForensicAuthFailed)
}

func TestForensicAuthFailsOnWrongKeyDirect(t *testing.T) {
	payload := forensic.AccountabilityPayload{Timestamp: 5, Platform: forensic.PlatformAPI}
	key, err := forensic.MasterKeyFromHex(repeatHex("a"))
	require.NoError(t, err)
	otherKey, err := forensic.MasterKeyFromHex(repeatHex("b"))
	require.NoError(t, err)

	metaHash := hashing.SHA256([]byte("salt"))
	blob, err := forensic.EncryptAccountability(payload, key, metaHash)
	require.NoError(t, err)

	_, err = forensic.DecryptAccountability(blob, otherKey, metaHash)
	require.ErrorIs(t, err, elaraerrors.ErrForensicAuthFailed)
}

func repeatHex(ch string) string {
	out := ""
	for len(out) < 64 {
		out += ch
	}
	return out
}

