// Package compress implements the gzip and bzip2 export operations.
package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/elarasign/elarasign/pkg/elarasign/archive"
)

func init() {
	archive.Register(NewGzipOperation())
}

// GzipOperation compresses export bundles with stdlib gzip.
type GzipOperation struct {
	archive.BaseOperation
}

func NewGzipOperation() *GzipOperation {
	return &GzipOperation{
		BaseOperation: archive.BaseOperation{OpID: archive.OpGzip, OpName: "GZIP"},
	}
}

func (o *GzipOperation) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(input); err != nil {
		gw.Close()
		return nil, fmt.Errorf("writing gzip data: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (o *GzipOperation) ApplyStream(input io.Reader, output io.Writer) error {
	gw := gzip.NewWriter(output)
	defer gw.Close()
	if _, err := io.Copy(gw, input); err != nil {
		return fmt.Errorf("compressing stream: %w", err)
	}
	return gw.Close()
}

func (o *GzipOperation) Reverse(input []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gr.Close()
	return io.ReadAll(gr)
}

func (o *GzipOperation) ReverseStream(input io.Reader, output io.Writer) error {
	gr, err := gzip.NewReader(input)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gr.Close()
	_, err = io.Copy(output, gr)
	return err
}

func (o *GzipOperation) EstimateSize(inputSize int64) int64 {
	return (inputSize*8)/10 + 18
}
