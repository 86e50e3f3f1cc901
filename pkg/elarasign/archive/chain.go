package archive

import "fmt"

// Apply runs data through each operation in order (e.g. tar then bzip2).
func Apply(data []byte, ops []uint8) ([]byte, error) {
	current := data
	for _, opID := range ops {
		op, err := Get(opID)
		if err != nil {
			return nil, fmt.Errorf("export operation 0x%02x: %w", opID, err)
		}
		result, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op.Name(), err)
		}
		current = result
	}
	return current, nil
}

// Reverse undoes a chain of operations in reverse order.
func Reverse(data []byte, ops []uint8) ([]byte, error) {
	current := data
	for i := len(ops) - 1; i >= 0; i-- {
		opID := ops[i]
		op, err := Get(opID)
		if err != nil {
			return nil, fmt.Errorf("export operation 0x%02x: %w", opID, err)
		}
		if !op.CanReverse() {
			return nil, fmt.Errorf("operation %s is not reversible", op.Name())
		}
		result, err := op.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", op.Name(), err)
		}
		current = result
	}
	return current, nil
}

// ChainForFormat resolves a short format name ("tar.gz", "tar.bz2") to its
// operation chain for the export CLI flag.
func ChainForFormat(format string) ([]uint8, error) {
	switch format {
	case "tar.gz", "tgz":
		return []uint8{OpTar, OpGzip}, nil
	case "tar.bz2", "tbz2":
		return []uint8{OpTar, OpBzip2}, nil
	case "tar":
		return []uint8{OpTar}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}
}
