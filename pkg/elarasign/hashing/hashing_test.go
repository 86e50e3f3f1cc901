package hashing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC32Conformance(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want uint32
	}{
		{"empty", "", 0x00000000},
		{"a", "a", 0xE8B7BE43},
		{"1234", "1234", 0x9BE3E0A3},
		{"123456789", "123456789", 0xCBF43926},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CRC32([]byte(tc.in))
			require.Equal(t, tc.want, got, "CRC32(%q)", tc.in)
		})
	}
}

func TestSHA256HexConformance(t *testing.T) {
	got := SHA256Hex([]byte("hello world"))
	require.True(t, len(got) == 64)
	require.Contains(t, got, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde"[:8])
}

func TestSHA256Deterministic(t *testing.T) {
	data := []byte("provenance payload")
	a := SHA256Hex(data)
	b := SHA256Hex(data)
	require.Equal(t, a, b)
}

func TestStreamingCRC32MatchesOneShot(t *testing.T) {
	data := []byte("streamed checksum input spanning multiple writes")
	h := NewStreamingCRC32()
	_, err := h.Write(data[:10])
	require.NoError(t, err)
	_, err = h.Write(data[10:])
	require.NoError(t, err)

	require.Equal(t, CRC32(data), h.Sum32())
}
