// Package archive implements a small, registry-based chain of reversible
// transforms (tar bundling, gzip/bzip2 compression) used by the CLI's
// export command to package a signed image for audit handoff.
package archive

import (
	"fmt"
	"io"
)

const (
	OpNone = 0x00

	OpTar = 0x01 // POSIX TAR archive

	OpGzip  = 0x10
	OpBzip2 = 0x13
)

// Operation is a single reversible transform in an export chain.
type Operation interface {
	ID() uint8
	Name() string
	Apply(input []byte) ([]byte, error)
	ApplyStream(input io.Reader, output io.Writer) error
	Reverse(input []byte) ([]byte, error)
	ReverseStream(input io.Reader, output io.Writer) error
	CanReverse() bool
	EstimateSize(inputSize int64) int64
}

// BaseOperation provides the common ID/Name/defaults for Operation
// implementations.
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8   { return o.OpID }
func (o *BaseOperation) Name() string { return o.OpName }
func (o *BaseOperation) CanReverse() bool { return true }
func (o *BaseOperation) EstimateSize(inputSize int64) int64 { return inputSize }

// Registry maps operation IDs to implementations, populated by each
// operation's init().
var Registry = make(map[uint8]Operation)

// Register adds an operation to the registry.
func Register(op Operation) {
	Registry[op.ID()] = op
}

// Get retrieves a registered operation by ID.
func Get(id uint8) (Operation, error) {
	op, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("archive: unknown operation 0x%02x", id)
	}
	return op, nil
}

// GetName returns a human-readable name for an operation ID.
func GetName(id uint8) string {
	switch id {
	case OpNone:
		return "NONE"
	case OpTar:
		return "TAR"
	case OpGzip:
		return "GZIP"
	case OpBzip2:
		return "BZIP2"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}
