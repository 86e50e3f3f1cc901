package pdfadapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elarasign/elarasign/pkg/elarasign/metadata"
)

func sampleRecord() *metadata.Record {
	return &metadata.Record{
		SignatureVersion: metadata.SignatureVersion,
		Generator:        "test",
		GeneratedAt:      "2026-07-29T00:00:00Z",
		UserFingerprint:  metadata.UserFingerprint("user-1"),
		KeyFingerprint:   "instance-a",
		ContentType:      metadata.ContentDocument,
		ContentHash:      metadata.ContentHash([]byte("pdf bytes")),
		PromptHash:       metadata.PromptHash(""),
		GenerationMethod: metadata.GenerationHuman,
	}
}

func TestBuildAnnotations(t *testing.T) {
	rec := sampleRecord()
	info, catalog, err := BuildAnnotations(rec)
	require.NoError(t, err)
	require.Equal(t, "test", info.Producer)
	require.Equal(t, "true", catalog.ElaraSign)
	require.Len(t, catalog.ElaraSignature, 64)
}

func TestBuildAnnotationsRejectsInvalidRecord(t *testing.T) {
	rec := sampleRecord()
	rec.ContentType = "sculpture"
	_, _, err := BuildAnnotations(rec)
	require.Error(t, err)
}

func TestScanCatalogDictDetectsPresence(t *testing.T) {
	result := ScanCatalogDict(map[string]string{
		"ElaraSign":      "true",
		"ElaraGenerator": "test",
		"Unrelated":      "ignored",
	})
	require.True(t, result.Present)
	require.Equal(t, "true", result.Fields["ElaraSign"])
	require.NotContains(t, result.Fields, "Unrelated")
}

func TestScanCatalogDictReportsAbsence(t *testing.T) {
	result := ScanCatalogDict(map[string]string{"Title": "whatever"})
	require.False(t, result.Present)
}
