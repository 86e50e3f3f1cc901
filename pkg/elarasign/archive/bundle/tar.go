// Package bundle implements the TAR archive operation for elarasign
// export bundles: a single-member archive holding the signed image.
package bundle

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/elarasign/elarasign/pkg/elarasign/archive"
)

func init() {
	archive.Register(NewTarOperation(""))
}

// TarOperation wraps a single named file's bytes in a POSIX TAR archive.
type TarOperation struct {
	archive.BaseOperation
	// EntryName is the archive member name written by Apply; defaults to
	// "payload" when empty.
	EntryName string
}

// NewTarOperation creates a TAR operation for the given archive member name.
func NewTarOperation(entryName string) *TarOperation {
	return &TarOperation{
		BaseOperation: archive.BaseOperation{OpID: archive.OpTar, OpName: "TAR"},
		EntryName:     entryName,
	}
}

func (o *TarOperation) name() string {
	if o.EntryName == "" {
		return "payload"
	}
	return o.EntryName
}

// Apply writes input as the sole member of a new TAR archive.
func (o *TarOperation) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	header := &tar.Header{
		Name:    o.name(),
		Mode:    0600,
		Size:    int64(len(input)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return nil, fmt.Errorf("writing tar header: %w", err)
	}
	if _, err := tw.Write(input); err != nil {
		return nil, fmt.Errorf("writing tar data: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}
	return buf.Bytes(), nil
}

// ApplyStream streams input into a single-member TAR archive.
func (o *TarOperation) ApplyStream(input io.Reader, output io.Writer) error {
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	packed, err := o.Apply(data)
	if err != nil {
		return err
	}
	_, err = output.Write(packed)
	return err
}

// Reverse extracts the first (only) member of a TAR archive.
func (o *TarOperation) Reverse(input []byte) ([]byte, error) {
	tr := tar.NewReader(bytes.NewReader(input))

	header, err := tr.Next()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty tar archive")
		}
		return nil, fmt.Errorf("reading tar header: %w", err)
	}
	if header.Size < 0 || header.Size > 1<<30 {
		return nil, fmt.Errorf("invalid file size: %d", header.Size)
	}

	data := make([]byte, header.Size)
	if _, err := io.ReadFull(tr, data); err != nil {
		return nil, fmt.Errorf("reading tar data: %w", err)
	}
	return data, nil
}

// ReverseStream extracts the first member of a TAR archive stream.
func (o *TarOperation) ReverseStream(input io.Reader, output io.Writer) error {
	tr := tar.NewReader(input)

	header, err := tr.Next()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty tar archive")
		}
		return fmt.Errorf("reading tar header: %w", err)
	}
	if header.Size < 0 || header.Size > 1<<30 {
		return fmt.Errorf("invalid file size: %d", header.Size)
	}
	_, err = io.CopyN(output, tr, header.Size)
	return err
}

// EstimateSize approximates TAR overhead: a 512-byte header plus padding
// to a 512-byte boundary, plus the two zero end-of-archive blocks.
func (o *TarOperation) EstimateSize(inputSize int64) int64 {
	padding := (512 - (inputSize % 512)) % 512
	return 512 + inputSize + padding + 1024
}
