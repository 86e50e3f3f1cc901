// Package metadata implements the canonical content-provenance object
// ("MetadataRecord") and its deterministic JSON serialization. The
// canonical byte form is the pre-image of meta_hash and is therefore part
// of the engine's public wire contract: sorted keys, UTF-8, no
// insignificant whitespace, absent optional fields omitted.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
	"github.com/elarasign/elarasign/pkg/elarasign/hashing"
)

// SignatureVersion is the constant version string stamped into every
// MetadataRecord produced by this engine.
const SignatureVersion = "2.0"

// ContentType enumerates the supported content categories.
type ContentType string

const (
	ContentImage    ContentType = "image"
	ContentDocument ContentType = "document"
	ContentAudio    ContentType = "audio"
	ContentVideo    ContentType = "video"
)

// GenerationMethod enumerates how the content was produced.
type GenerationMethod string

const (
	GenerationAI      GenerationMethod = "ai"
	GenerationHuman   GenerationMethod = "human"
	GenerationMixed   GenerationMethod = "mixed"
	GenerationUnknown GenerationMethod = "unknown"
)

// noPromptPlaceholder is hashed once for the absent-prompt case per spec §4.2.
const noPromptPlaceholder = "no-prompt-provided"

// NoPromptHash is the fixed prompt_hash value used when no prompt text is
// available to hash.
var NoPromptHash = hashing.SHA256Hex([]byte(noPromptPlaceholder))

// Record is the canonical content-provenance object. Once built it is
// immutable; callers should treat a *Record as read-only after
// construction.
type Record struct {
	SignatureVersion string           `json:"signature_version"`
	Generator        string           `json:"generator"`
	GeneratedAt      string           `json:"generated_at"`
	UserFingerprint  string           `json:"user_fingerprint"`
	KeyFingerprint   string           `json:"key_fingerprint"`
	ContentType      ContentType      `json:"content_type"`
	ContentHash      string           `json:"content_hash"`
	CharacterID      string           `json:"character_id,omitempty"`
	ModelUsed        string           `json:"model_used,omitempty"`
	PromptHash       string           `json:"prompt_hash"`
	Seed             *uint64          `json:"seed,omitempty"`
	GenerationMethod GenerationMethod `json:"generation_method"`
}

// Validate checks that the required fields of the spec's data model are
// present and well-formed, returning elaraerrors.ErrBadMetadata wrapped
// with the offending field when not.
func (r *Record) Validate() error {
	if r.SignatureVersion != SignatureVersion {
		return fmt.Errorf("%w: signature_version must be %q", elaraerrors.ErrBadMetadata, SignatureVersion)
	}
	if r.Generator == "" {
		return fmt.Errorf("%w: generator is required", elaraerrors.ErrBadMetadata)
	}
	if r.GeneratedAt == "" {
		return fmt.Errorf("%w: generated_at is required", elaraerrors.ErrBadMetadata)
	}
	if len(r.UserFingerprint) != 64 {
		return fmt.Errorf("%w: user_fingerprint must be 64 lowercase hex chars", elaraerrors.ErrBadMetadata)
	}
	if r.KeyFingerprint == "" {
		return fmt.Errorf("%w: key_fingerprint is required", elaraerrors.ErrBadMetadata)
	}
	switch r.ContentType {
	case ContentImage, ContentDocument, ContentAudio, ContentVideo:
	default:
		return fmt.Errorf("%w: unknown content_type %q", elaraerrors.ErrBadMetadata, r.ContentType)
	}
	if len(r.ContentHash) != 64 {
		return fmt.Errorf("%w: content_hash must be 64 lowercase hex chars", elaraerrors.ErrBadMetadata)
	}
	if len(r.PromptHash) != 64 {
		return fmt.Errorf("%w: prompt_hash must be 64 lowercase hex chars", elaraerrors.ErrBadMetadata)
	}
	switch r.GenerationMethod {
	case GenerationAI, GenerationHuman, GenerationMixed, GenerationUnknown:
	default:
		return fmt.Errorf("%w: unknown generation_method %q", elaraerrors.ErrBadMetadata, r.GenerationMethod)
	}
	if !bytes.Equal([]byte(r.Generator), bytes.ToValidUTF8([]byte(r.Generator), nil)) {
		return fmt.Errorf("%w: generator must be UTF-8", elaraerrors.ErrBadMetadata)
	}
	return nil
}

// Canonical returns the deterministic JSON serialization of the record:
// keys sorted lexicographically, no insignificant whitespace, UTF-8.
// This exact byte form is the pre-image of MetaHash.
func (r *Record) Canonical() ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata record: %w", err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("re-decoding metadata record: %w", err)
	}

	keys := make([]string, 0, len(generic))
	for k := range generic {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(generic[k])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MetaHash returns SHA-256 of the canonical JSON serialization — the
// identity of this signing event.
func (r *Record) MetaHash() ([32]byte, error) {
	canonical, err := r.Canonical()
	if err != nil {
		return [32]byte{}, err
	}
	return hashing.SHA256(canonical), nil
}

// UserFingerprint derives the user_fingerprint field from a user identifier.
func UserFingerprint(userID string) string {
	return hashing.SHA256Hex([]byte(userID))
}

// PromptHash derives the prompt_hash field from prompt text, or returns the
// fixed placeholder hash when promptText is empty.
func PromptHash(promptText string) string {
	if promptText == "" {
		return NoPromptHash
	}
	return hashing.SHA256Hex([]byte(promptText))
}

// ContentHash computes the content_hash field from raw content bytes.
func ContentHash(raw []byte) string {
	return hashing.SHA256Hex(raw)
}
