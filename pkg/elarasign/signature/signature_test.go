package signature

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elarasign/elarasign/pkg/elarasign/hashing"
)

func crc32CoveringFirst44(buf [RecordSize]byte) uint32 {
	return hashing.CRC32(buf[0:44])
}

func TestPackUnpackRoundTrip(t *testing.T) {
	var metaHash, contentHash [32]byte
	for i := range metaHash {
		metaHash[i] = byte(i)
		contentHash[i] = byte(255 - i)
	}

	packed := Pack(LocationTL, 1706000000, metaHash, contentHash, FlagForensicPresent)
	require.Len(t, packed, RecordSize)
	require.Equal(t, "ELARA", string(packed[0:5]))

	unpacked, err := Unpack(packed[:])
	require.NoError(t, err)
	require.True(t, unpacked.IsValid)
	require.Equal(t, LocationTL, unpacked.Location)
	require.Equal(t, uint32(1706000000), unpacked.Timestamp)
	require.Equal(t, FlagForensicPresent, unpacked.Flags)
	require.Equal(t, metaHash[:16], unpacked.MetaHashPrefix[:])
	require.Equal(t, contentHash[:16], unpacked.ContentHashPrefix[:])
}

func TestUnpackDetectsCorruption(t *testing.T) {
	var metaHash, contentHash [32]byte
	packed := Pack(LocationBC, 100, metaHash, contentHash, 0)
	packed[20] ^= 0xFF // flip a byte inside meta_hash_prefix, CRC now stale

	unpacked, err := Unpack(packed[:])
	require.NoError(t, err)
	require.False(t, unpacked.IsValid)
	require.Equal(t, LocationBC, unpacked.Location)
}

func TestUnpackRejectsBadMagic(t *testing.T) {
	var metaHash, contentHash [32]byte
	packed := Pack(LocationTR, 1, metaHash, contentHash, 0)
	packed[0] = 'X'

	_, err := Unpack(packed[:])
	require.Error(t, err)
}

func TestUnpackRejectsWrongLength(t *testing.T) {
	_, err := Unpack([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestUnpackRejectsBadLocation(t *testing.T) {
	var metaHash, contentHash [32]byte
	packed := Pack(LocationTL, 1, metaHash, contentHash, 0)
	packed[6] = 9 // invalid location id

	_, err := Unpack(packed[:])
	require.Error(t, err)
}

func TestUnpackRecognizesLegacyVersion(t *testing.T) {
	var metaHash, contentHash [32]byte
	packed := Pack(LocationTL, 1, metaHash, contentHash, 0)
	packed[5] = LegacyVersion // mutate version byte, then recompute the CRC it covers
	newCRC := crc32CoveringFirst44(packed)
	packed[44] = byte(newCRC >> 24)
	packed[45] = byte(newCRC >> 16)
	packed[46] = byte(newCRC >> 8)
	packed[47] = byte(newCRC)

	unpacked, err := Unpack(packed[:])
	require.NoError(t, err)
	require.True(t, unpacked.IsLegacy)
}
