// Package elaraerrors defines the sentinel error kinds the engine reports.
package elaraerrors

import "errors"

var (
	// Sign-time failures 🔏
	ErrImageTooSmall = errors.New("❌ image below the 128×128 minimum")
	ErrBadMetadata   = errors.New("❌ metadata record missing required fields or not UTF-8")

	// Embedding/extraction failures 📐
	ErrRegionOverlap = errors.New("❌ proposed embed regions overlap")
	ErrBadSignature  = errors.New("❌ signature bytes do not parse as a v2 record")

	// Verification findings (soft-fail, carried in reports) 🔍
	ErrIntegrityMismatch = errors.New("❌ content hash does not match signature record")

	// Forensic payload failures 🔒
	ErrForensicAuthFailed = errors.New("❌ forensic payload authentication failed")
	ErrBadKeyFormat       = errors.New("❌ master key is not 64 lowercase hex characters")

	// Container boundary failures 📦
	ErrContainerDecode = errors.New("❌ billboard layer could not parse the container metadata")
)
