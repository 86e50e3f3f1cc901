// Package api exposes the engine's public contract: SignImage, VerifyImage,
// ReadSignature, HasSignature, and ForensicUnlock, per spec §4.9.
package api

import (
	"encoding/hex"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
	"github.com/elarasign/elarasign/pkg/elarasign/forensic"
	"github.com/elarasign/elarasign/pkg/elarasign/locate"
	"github.com/elarasign/elarasign/pkg/elarasign/metadata"
	"github.com/elarasign/elarasign/pkg/elarasign/signature"
	"github.com/elarasign/elarasign/pkg/elarasign/spread"
)

var apiLogger = hclog.New(&hclog.LoggerOptions{
	Name:  "elarasign.api",
	Level: hclog.Trace,
})

// ForensicContext carries the operator-only inputs to SignImage that
// produce a forensic annotation. MasterKey must be 64 lowercase hex
// characters; if Enabled is false, no forensic payload is written.
type ForensicContext struct {
	Enabled   bool
	MasterKey string
	Payload   forensic.AccountabilityPayload
}

// SignResult is the outcome of SignImage.
type SignResult struct {
	MetaHash                 [32]byte
	ContentHash              [32]byte
	LocationsEmbedded        []signature.Location
	SpreadApplied            bool
	ForensicAnnotationBase64 string
}

// SignImage embeds the LSB and spread-spectrum signature layers into buf
// in place, and returns the hashes plus an optional forensic
// annotation for the caller's billboard layer to carry. rawContent is the
// original content bytes content_hash is computed over (the caller's
// source image bytes, not the mutated pixel buffer).
func SignImage(buf *canvas.Buffer, rawContent []byte, rec *metadata.Record, timestamp uint32, forensicCtx *ForensicContext) (SignResult, error) {
	if err := buf.ValidateMinimumSize(); err != nil {
		return SignResult{}, err
	}
	if err := rec.Validate(); err != nil {
		return SignResult{}, err
	}

	metaHash, err := rec.MetaHash()
	if err != nil {
		return SignResult{}, fmt.Errorf("computing meta_hash: %w", err)
	}
	contentHash := metadata.ContentHash(rawContent)
	contentHashRaw, err := hex.DecodeString(contentHash)
	if err != nil {
		return SignResult{}, fmt.Errorf("decoding content_hash: %w", err)
	}
	var contentHashBytes [32]byte
	copy(contentHashBytes[:], contentHashRaw)

	var flags uint8
	var annotation string
	if forensicCtx != nil && forensicCtx.Enabled {
		masterKey, err := forensic.MasterKeyFromHex(forensicCtx.MasterKey)
		if err != nil {
			return SignResult{}, err
		}
		annotation, err = forensic.EncryptAccountabilityBase64(forensicCtx.Payload, masterKey, metaHash)
		if err != nil {
			return SignResult{}, fmt.Errorf("encrypting forensic payload: %w", err)
		}
		flags |= signature.FlagForensicPresent
	}

	if err := locate.Sign(buf, timestamp, metaHash, contentHashBytes, flags); err != nil {
		return SignResult{}, err
	}

	spreadApplied := false
	if err := spread.Embed(buf, metaHash); err != nil {
		return SignResult{}, err
	}
	blocksWide, blocksHigh := spread.BlockCount(buf.Width, buf.Height)
	if blocksWide*blocksHigh >= spread.MinBlocksForSpread {
		spreadApplied = true
	}

	apiLogger.Info("✅ signed image", "meta_hash", fmt.Sprintf("%x", metaHash)[:16], "spread_applied", spreadApplied)

	return SignResult{
		MetaHash:                 metaHash,
		ContentHash:              contentHashBytes,
		LocationsEmbedded:        []signature.Location{signature.LocationTL, signature.LocationTR, signature.LocationBC},
		SpreadApplied:            spreadApplied,
		ForensicAnnotationBase64: annotation,
	}, nil
}

// VerifyResult is the outcome of VerifyImage.
type VerifyResult struct {
	Signed                 bool
	ValidLocations         []signature.Location
	BestRecord             *signature.Unpacked
	SpreadConfidence       *float64
	TamperDetected         bool
	IntegrityIndeterminate bool
}

// VerifyImage extracts and votes across the three LSB locations,
// optionally correlates the spread-spectrum layer (when expectedMetaHash
// is supplied), and — when rawContent is non-nil — re-hashes content to
// detect tampering. If rawContent is nil, integrity is reported
// indeterminate rather than checked.
func VerifyImage(buf *canvas.Buffer, rawContent []byte, expectedMetaHash *[32]byte) VerifyResult {
	extraction := locate.Extract(buf)

	result := VerifyResult{
		Signed:         extraction.Signed,
		ValidLocations: extraction.ValidLocations,
		BestRecord:     extraction.Best,
	}

	if expectedMetaHash != nil {
		report, err := spread.Detect(buf, *expectedMetaHash)
		if err == nil && !report.BlocksSkipped {
			conf := report.Confidence
			result.SpreadConfidence = &conf
		}
	}

	if !extraction.Signed || extraction.Best == nil {
		result.IntegrityIndeterminate = rawContent == nil
		return result
	}

	if rawContent == nil {
		result.IntegrityIndeterminate = true
		return result
	}

	contentHash := metadata.ContentHash(rawContent)
	if contentHashBytes, err := hex.DecodeString(contentHash); err == nil && len(contentHashBytes) >= 16 {
		if string(contentHashBytes[:16]) != string(extraction.Best.ContentHashPrefix[:]) {
			result.TamperDetected = true
		}
	}

	return result
}

// ReadResult is the outcome of ReadSignature.
type ReadResult struct {
	IsElara        bool
	Version        string
	Timestamp      *uint32
	MetaHashPrefix *[16]byte
	ValidLocations []signature.Location
	LegacyDetected bool
}

// ReadSignature reports what the LSB layer contains without performing
// any hashing or voting beyond per-location classification.
func ReadSignature(buf *canvas.Buffer) ReadResult {
	extraction := locate.Extract(buf)

	result := ReadResult{ValidLocations: extraction.ValidLocations}
	for _, f := range extraction.Findings {
		if f.Present {
			result.IsElara = true
			if f.Record.IsLegacy {
				result.LegacyDetected = true
			}
			if f.Valid {
				ts := f.Record.Timestamp
				result.Timestamp = &ts
				prefix := f.Record.MetaHashPrefix
				result.MetaHashPrefix = &prefix
				result.Version = "2.0"
			}
		}
	}
	return result
}

// HasSignature is a fast boolean check: does any location carry a valid
// elaraSign record.
func HasSignature(buf *canvas.Buffer) bool {
	return locate.Extract(buf).Signed
}

// ForensicUnlock decrypts an operator's forensic annotation.
// annotationBase64 is the base64 form billboard layers store; use
// forensic.DecryptAccountability directly for the raw 45-byte record.
func ForensicUnlock(annotationBase64 string, masterKeyHex string, metaHash [32]byte) (forensic.AccountabilityPayload, error) {
	masterKey, err := forensic.MasterKeyFromHex(masterKeyHex)
	if err != nil {
		return forensic.AccountabilityPayload{}, err
	}
	return forensic.DecryptAccountabilityBase64(annotationBase64, masterKey, metaHash)
}

