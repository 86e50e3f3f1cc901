package archive

import "fmt"

// BuildExportBundle tars imageBytes under entryName then compresses with
// the leg named by format ("tar.gz" or "tar.bz2"). This is the archive
// the CLI's export command writes to disk; the billboard, LSB, and
// spread-spectrum layers already live inside imageBytes, so the bundle
// carries only the image — the forensic annotation, if any, is delivered
// to the caller separately as an opaque string.
func BuildExportBundle(imageBytes []byte, entryName string, format string, tarOp Operation) ([]byte, error) {
	tarred, err := tarOp.Apply(imageBytes)
	if err != nil {
		return nil, fmt.Errorf("tarring export bundle: %w", err)
	}

	switch format {
	case "tar":
		return tarred, nil
	case "tar.gz", "tgz":
		op, err := Get(OpGzip)
		if err != nil {
			return nil, err
		}
		return op.Apply(tarred)
	case "tar.bz2", "tbz2":
		op, err := Get(OpBzip2)
		if err != nil {
			return nil, err
		}
		return op.Apply(tarred)
	default:
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}
}
