package forensic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(fill byte) [32]byte {
	var k [32]byte
	for i := range k {
		k[i] = fill
	}
	return k
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(0xAA)
	var metaHash [32]byte
	copy(metaHash[:], []byte("file-meta-hash-for-round-trip!!"))

	payload := AccountabilityPayload{
		Timestamp:            1234567890,
		UserFingerprintShort: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
		IP:                   [4]byte{10, 0, 0, 1},
		Platform:             PlatformWeb,
	}

	blob, err := EncryptAccountability(payload, key, metaHash)
	require.NoError(t, err)
	require.Len(t, blob, CipherSize)

	got, err := DecryptAccountability(blob, key, metaHash)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestDecryptFailsOnBitFlip(t *testing.T) {
	key := testKey(0xBB)
	var metaHash [32]byte
	copy(metaHash[:], []byte("another-meta-hash-value-here!!!"))

	payload := AccountabilityPayload{Timestamp: 1, Platform: PlatformMobile}
	blob, err := EncryptAccountability(payload, key, metaHash)
	require.NoError(t, err)

	blob[20] ^= 0xFF

	_, err = DecryptAccountability(blob, key, metaHash)
	require.ErrorContains(t, err, "forensic payload authentication failed")
}

func TestDecryptFailsOnWrongKey(t *testing.T) {
	key := testKey(0xCC)
	wrongKey := testKey(0xDD)
	var metaHash [32]byte
	copy(metaHash[:], []byte("yet-another-meta-hash-value!!!!"))

	payload := AccountabilityPayload{Timestamp: 99, Platform: PlatformBatch}
	blob, err := EncryptAccountability(payload, key, metaHash)
	require.NoError(t, err)

	_, err = DecryptAccountability(blob, wrongKey, metaHash)
	require.Error(t, err)
}

func TestBase64RoundTrip(t *testing.T) {
	key := testKey(0x11)
	var metaHash [32]byte
	copy(metaHash[:], []byte("base64-path-meta-hash-value!!!!"))

	payload := AccountabilityPayload{Timestamp: 42, Platform: PlatformAPI}
	encoded, err := EncryptAccountabilityBase64(payload, key, metaHash)
	require.NoError(t, err)

	got, err := DecryptAccountabilityBase64(encoded, key, metaHash)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestIsValidMasterKeyFormat(t *testing.T) {
	all64a := ""
	for i := 0; i < 64; i++ {
		all64a += "a"
	}
	require.True(t, IsValidMasterKeyFormat(all64a))
	require.False(t, IsValidMasterKeyFormat(all64a[:63]))

	all64z := ""
	for i := 0; i < 64; i++ {
		all64z += "z"
	}
	require.False(t, IsValidMasterKeyFormat(all64z))
}

func TestMasterKeyFromHexRejectsBadFormat(t *testing.T) {
	_, err := MasterKeyFromHex("not-hex")
	require.Error(t, err)
}
