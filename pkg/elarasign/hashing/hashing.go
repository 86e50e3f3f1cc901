// Package hashing provides the SHA-256 and CRC-32 primitives the engine's
// other layers build on. Deterministic, streaming-capable, no locale or
// line-ending transformation.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"hash/crc32"
	"io"
)

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA256Hex returns the lowercase hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := SHA256(data)
	return hex.EncodeToString(sum[:])
}

// NewStreamingSHA256 returns a hash.Hash that callers can Write to
// incrementally (e.g. while reading a large source file) before calling
// Sum(nil) to obtain the digest.
func NewStreamingSHA256() hash.Hash {
	return sha256.New()
}

// ieeeTable is the standard CRC-32 IEEE 802.3 polynomial table
// (0xEDB88320, reflected input/output, initial and final 0xFFFFFFFF).
var ieeeTable = crc32.MakeTable(crc32.IEEE)

// CRC32 computes the CRC-32/IEEE checksum of data.
//
// Conformance vector: CRC32([]byte("1234")) == 0x9BE3E0A3.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, ieeeTable)
}

// NewStreamingCRC32 returns a hash.Hash32 for incremental CRC-32 computation.
func NewStreamingCRC32() hash.Hash32 {
	return crc32.New(ieeeTable)
}

// CopyHash streams r through h, discarding the bytes, useful for hashing
// large files without holding them fully in memory.
func CopyHash(h hash.Hash, r io.Reader) error {
	_, err := io.Copy(h, r)
	return err
}
