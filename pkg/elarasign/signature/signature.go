// Package signature implements the 48-byte SignatureRecord wire format: the
// compact, CRC-validated binary record embedded at each of the three pixel
// locations. Binary layout is big-endian where multi-byte, per the v2
// protocol.
package signature

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
	"github.com/elarasign/elarasign/pkg/elarasign/hashing"
)

// RecordSize is the fixed size of a packed SignatureRecord on the wire.
const RecordSize = 48

// Version is the only version this engine writes. Version 0x01 ("legacy")
// is recognized on read but never produced.
const Version byte = 0x02

// LegacyVersion is the v1 record version, read-only compatibility.
const LegacyVersion byte = 0x01

// Magic is the fixed 5-byte ASCII prefix of every SignatureRecord.
var Magic = [5]byte{'E', 'L', 'A', 'R', 'A'}

// Location identifies one of the three embed regions.
type Location uint8

const (
	LocationTL Location = 1
	LocationTR Location = 2
	LocationBC Location = 3
)

func (l Location) String() string {
	switch l {
	case LocationTL:
		return "TL"
	case LocationTR:
		return "TR"
	case LocationBC:
		return "BC"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(l))
	}
}

// FlagForensicPresent marks bit 0 of the flags byte: a forensic payload
// has been written elsewhere (as a container-level annotation).
const FlagForensicPresent uint8 = 1 << 0

var sigLogger = hclog.New(&hclog.LoggerOptions{
	Name:  "elarasign.signature",
	Level: hclog.Trace,
})

// Unpacked is the result of parsing a candidate 48-byte record. Fields are
// populated best-effort even when IsValid is false, so callers can report
// diagnostics on a CRC failure.
type Unpacked struct {
	Location          Location
	Timestamp         uint32
	MetaHashPrefix    [16]byte
	ContentHashPrefix [16]byte
	Flags             uint8
	CRC32             uint32
	IsValid           bool
	IsLegacy          bool
}

// Pack builds the 48-byte wire record for one location and appends the
// CRC-32 over bytes 0..43.
func Pack(location Location, timestamp uint32, metaHash, contentHash [32]byte, flags uint8) [RecordSize]byte {
	sigLogger.Trace("📦 packing signature record", "location", location.String(), "timestamp", timestamp)

	var buf [RecordSize]byte
	copy(buf[0:5], Magic[:])
	buf[5] = Version
	buf[6] = uint8(location)
	binary.BigEndian.PutUint32(buf[7:11], timestamp)
	copy(buf[11:27], metaHash[:16])
	copy(buf[27:43], contentHash[:16])
	buf[43] = flags

	crc := hashing.CRC32(buf[0:44])
	binary.BigEndian.PutUint32(buf[44:48], crc)

	sigLogger.Debug("✅ packed signature record", "location", location.String(), "crc32", fmt.Sprintf("0x%08x", crc))

	return buf
}

// Unpack validates length, magic, version, and CRC, returning the parsed
// fields regardless of CRC outcome so callers can report diagnostics. Any
// magic or version mismatch fails fast with elaraerrors.ErrBadSignature.
func Unpack(data []byte) (Unpacked, error) {
	if len(data) != RecordSize {
		return Unpacked{}, fmt.Errorf("%w: expected %d bytes, got %d", elaraerrors.ErrBadSignature, RecordSize, len(data))
	}

	var magic [5]byte
	copy(magic[:], data[0:5])
	if magic != Magic {
		sigLogger.Trace("🔍 magic mismatch, not an elara signature")
		return Unpacked{}, fmt.Errorf("%w: bad magic", elaraerrors.ErrBadSignature)
	}

	version := data[5]
	if version != Version && version != LegacyVersion {
		return Unpacked{}, fmt.Errorf("%w: unsupported version 0x%02x", elaraerrors.ErrBadSignature, version)
	}

	location := Location(data[6])
	switch location {
	case LocationTL, LocationTR, LocationBC:
	default:
		return Unpacked{}, fmt.Errorf("%w: invalid location_id %d", elaraerrors.ErrBadSignature, data[6])
	}

	u := Unpacked{
		Location:  location,
		Timestamp: binary.BigEndian.Uint32(data[7:11]),
		Flags:     data[43],
		CRC32:     binary.BigEndian.Uint32(data[44:48]),
		IsLegacy:  version == LegacyVersion,
	}
	copy(u.MetaHashPrefix[:], data[11:27])
	copy(u.ContentHashPrefix[:], data[27:43])

	expectedCRC := hashing.CRC32(data[0:44])
	u.IsValid = expectedCRC == u.CRC32

	if !u.IsValid {
		sigLogger.Debug("⚠️ signature record CRC mismatch", "location", location.String(), "expected", fmt.Sprintf("0x%08x", expectedCRC), "got", fmt.Sprintf("0x%08x", u.CRC32))
	}

	return u, nil
}
