// Package forensic implements the operator-only encrypted accountability
// payload: a 17-byte AccountabilityPayload, AES-256-GCM encrypted under a
// key HKDF-derived from the operator master key and bound to the
// signature's meta_hash. The resulting 45-byte record
// (iv(12) || ciphertext(17) || tag(16)) is stored as an opaque
// base64-encoded container annotation, never in pixels.
package forensic

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"

	"golang.org/x/crypto/hkdf"

	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
)

// hkdfInfo is the fixed info string binding derived keys to this protocol
// version. Binding to meta_hash as salt ensures a single master key cannot
// decrypt across files with identical payloads.
const hkdfInfo = "elaraSign-forensic-v2"

// PayloadSize is the fixed plaintext width of an AccountabilityPayload.
const PayloadSize = 17

// CipherSize is the fixed width of the wire record: iv(12) || ciphertext(17) || tag(16).
const CipherSize = 12 + PayloadSize + 16

// PlatformCode enumerates the small fixed platform enum carried in the
// accountability payload.
type PlatformCode uint8

const (
	PlatformUnknown PlatformCode = 0
	PlatformWeb     PlatformCode = 1
	PlatformMobile  PlatformCode = 2
	PlatformAPI     PlatformCode = 3
	PlatformBatch   PlatformCode = 4
)

// AccountabilityPayload is the plaintext 17-byte operator record:
// timestamp(4) || user_fingerprint_short(8) || ip_bytes(4) || platform_code(1).
type AccountabilityPayload struct {
	Timestamp            uint32
	UserFingerprintShort [8]byte
	IP                   [4]byte // all-zero means unknown
	Platform             PlatformCode
}

// Pack serializes the payload to its fixed 17-byte wire form.
func (p AccountabilityPayload) Pack() [PayloadSize]byte {
	var buf [PayloadSize]byte
	binary.BigEndian.PutUint32(buf[0:4], p.Timestamp)
	copy(buf[4:12], p.UserFingerprintShort[:])
	copy(buf[12:16], p.IP[:])
	buf[16] = byte(p.Platform)
	return buf
}

// UnpackAccountabilityPayload parses 17 bytes back into a payload.
func UnpackAccountabilityPayload(data []byte) (AccountabilityPayload, error) {
	if len(data) != PayloadSize {
		return AccountabilityPayload{}, fmt.Errorf("forensic: expected %d plaintext bytes, got %d", PayloadSize, len(data))
	}
	var p AccountabilityPayload
	p.Timestamp = binary.BigEndian.Uint32(data[0:4])
	copy(p.UserFingerprintShort[:], data[4:12])
	copy(p.IP[:], data[12:16])
	p.Platform = PlatformCode(data[16])
	return p, nil
}

var masterKeyFormat = regexp.MustCompile(`^[0-9a-f]{64}$`)

// IsValidMasterKeyFormat checks that key is 64 lowercase hex characters.
// This is a pure format check, not a proof of possession.
func IsValidMasterKeyFormat(key string) bool {
	return masterKeyFormat.MatchString(key)
}

func deriveSubkey(masterKey [32]byte, salt []byte) ([32]byte, error) {
	reader := hkdf.New(sha256.New, masterKey[:], salt, []byte(hkdfInfo))
	var subkey [32]byte
	if _, err := io.ReadFull(reader, subkey[:]); err != nil {
		return [32]byte{}, err
	}
	return subkey, nil
}

// EncryptAccountability encrypts payload under a key derived via
// HKDF-SHA256 from masterKey, salted with the signature's meta_hash,
// returning the 45-byte iv || ciphertext || tag record.
func EncryptAccountability(payload AccountabilityPayload, masterKey [32]byte, metaHash [32]byte) ([]byte, error) {
	subkey, err := deriveSubkey(masterKey, metaHash[:])
	if err != nil {
		return nil, fmt.Errorf("deriving forensic subkey: %w", err)
	}

	block, err := aes.NewCipher(subkey[:])
	if err != nil {
		return nil, fmt.Errorf("constructing aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("constructing gcm mode: %w", err)
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}

	plaintext := payload.Pack()
	sealed := gcm.Seal(nil, iv, plaintext[:], nil)

	out := make([]byte, 0, len(iv)+len(sealed))
	out = append(out, iv...)
	out = append(out, sealed...)
	return out, nil
}

// EncryptAccountabilityBase64 is EncryptAccountability followed by
// base64-encoding, the form billboard annotations actually carry.
func EncryptAccountabilityBase64(payload AccountabilityPayload, masterKey [32]byte, metaHash [32]byte) (string, error) {
	raw, err := EncryptAccountability(payload, masterKey, metaHash)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecryptAccountability re-derives the subkey, verifies the GCM tag, and
// returns the plaintext payload. A wrong master key or tampered
// ciphertext fails at the tag-verification step with
// elaraerrors.ErrForensicAuthFailed and leaks no plaintext bit.
func DecryptAccountability(blob []byte, masterKey [32]byte, metaHash [32]byte) (AccountabilityPayload, error) {
	if len(blob) != CipherSize {
		return AccountabilityPayload{}, fmt.Errorf("%w: expected %d bytes, got %d", elaraerrors.ErrForensicAuthFailed, CipherSize, len(blob))
	}

	subkey, err := deriveSubkey(masterKey, metaHash[:])
	if err != nil {
		return AccountabilityPayload{}, fmt.Errorf("deriving forensic subkey: %w", err)
	}

	block, err := aes.NewCipher(subkey[:])
	if err != nil {
		return AccountabilityPayload{}, fmt.Errorf("constructing aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return AccountabilityPayload{}, fmt.Errorf("constructing gcm mode: %w", err)
	}

	iv := blob[:gcm.NonceSize()]
	sealed := blob[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return AccountabilityPayload{}, fmt.Errorf("%w", elaraerrors.ErrForensicAuthFailed)
	}

	return UnpackAccountabilityPayload(plaintext)
}

// DecryptAccountabilityBase64 decodes a base64 billboard annotation and
// decrypts it.
func DecryptAccountabilityBase64(encoded string, masterKey [32]byte, metaHash [32]byte) (AccountabilityPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return AccountabilityPayload{}, fmt.Errorf("%w: bad base64 annotation", elaraerrors.ErrForensicAuthFailed)
	}
	return DecryptAccountability(raw, masterKey, metaHash)
}

// MasterKeyFromHex parses a 64-char lowercase hex master key string into
// its 32-byte form, validating format first.
func MasterKeyFromHex(key string) ([32]byte, error) {
	if !IsValidMasterKeyFormat(key) {
		return [32]byte{}, elaraerrors.ErrBadKeyFormat
	}
	raw, err := hex.DecodeString(key)
	if err != nil {
		return [32]byte{}, elaraerrors.ErrBadKeyFormat
	}
	var out [32]byte
	copy(out[:], raw)
	return out, nil
}
