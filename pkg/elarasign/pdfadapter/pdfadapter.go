// Package pdfadapter is the thin PDF container adapter described in spec
// §6: it reuses the MetadataRecord and signature-hash computation of the
// image core, writing /Info dictionary fields and custom catalog entries.
// PDF verification is presence-only — content-hash rebinding is out of
// scope because PDF re-serialization perturbs bytes.
package pdfadapter

import (
	"fmt"
	"strings"

	"github.com/elarasign/elarasign/pkg/elarasign/metadata"
)

// InfoFields are the standard /Info dictionary fields this adapter writes.
type InfoFields struct {
	Creator  string
	Producer string
	Keywords string
	Subject  string
}

// CatalogFields are the custom catalog-level entries this adapter writes,
// named exactly per spec §6.
type CatalogFields struct {
	ElaraSign        string // "true"
	ElaraSignature   string // hex signature digest
	ElaraContentHash string
	ElaraMethod      string
	ElaraGenerator   string
	ElaraTimestamp   string
	ElaraFingerprint string
	ElaraModel       string // optional
	ElaraCharacter   string // optional
	ElaraPromptHash  string // optional
}

// BuildAnnotations derives the /Info and catalog fields from a
// MetadataRecord, for a PDF-writing collaborator to splice into its own
// object graph. The core does not touch PDF bytes itself.
func BuildAnnotations(rec *metadata.Record) (InfoFields, CatalogFields, error) {
	if err := rec.Validate(); err != nil {
		return InfoFields{}, CatalogFields{}, err
	}

	metaHash, err := rec.MetaHash()
	if err != nil {
		return InfoFields{}, CatalogFields{}, fmt.Errorf("computing meta_hash: %w", err)
	}

	info := InfoFields{
		Creator:  "elaraSign/" + rec.SignatureVersion,
		Producer: rec.Generator,
		Keywords: "elaraSign,provenance," + string(rec.ContentType),
		Subject:  "Content provenance record",
	}

	catalog := CatalogFields{
		ElaraSign:        "true",
		ElaraSignature:   fmt.Sprintf("%x", metaHash),
		ElaraContentHash: rec.ContentHash,
		ElaraMethod:      string(rec.GenerationMethod),
		ElaraGenerator:   rec.Generator,
		ElaraTimestamp:   rec.GeneratedAt,
		ElaraFingerprint: rec.UserFingerprint,
		ElaraModel:       rec.ModelUsed,
		ElaraCharacter:   rec.CharacterID,
		ElaraPromptHash:  rec.PromptHash,
	}

	return info, catalog, nil
}

// PresenceResult is the outcome of scanning a PDF's extracted strings for
// the catalog markers this adapter writes. PDF verification is
// presence-only.
type PresenceResult struct {
	Present bool
	Fields  map[string]string
}

// catalogKeys lists the catalog entry names this adapter recognizes when
// scanning a decoded PDF catalog dictionary's string values.
var catalogKeys = []string{
	"ElaraSign", "ElaraSignature", "ElaraContentHash", "ElaraMethod",
	"ElaraGenerator", "ElaraTimestamp", "ElaraFingerprint", "ElaraModel",
	"ElaraCharacter", "ElaraPromptHash",
}

// ScanCatalogDict inspects a caller-supplied map of catalog dictionary
// entries (as a PDF-parsing collaborator would extract it) and reports
// which elaraSign fields are present.
func ScanCatalogDict(entries map[string]string) PresenceResult {
	found := make(map[string]string)
	for _, key := range catalogKeys {
		if v, ok := entries[key]; ok && strings.TrimSpace(v) != "" {
			found[key] = v
		}
	}
	return PresenceResult{
		Present: len(found) > 0,
		Fields:  found,
	}
}
