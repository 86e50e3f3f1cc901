// Package billboard writes and reads the human-readable provenance layer:
// PNG tEXt/zTXt chunks and JPEG APP1 EXIF fields. This layer is
// informational — its presence without a valid LSB or spread-spectrum
// layer is reported as "metadata only" and is not considered verified
// provenance.
package billboard

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
	"github.com/elarasign/elarasign/pkg/elarasign/hashing"
)

// PNGKeyword is the tEXt/zTXt keyword every chunk this package writes uses.
const PNGKeyword = "elaraSign:v2"

// PNGForensicKeyword carries the base64 forensic ciphertext.
const PNGForensicKeyword = "elaraSign:forensic"

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

var billboardLogger = hclog.New(&hclog.LoggerOptions{
	Name:  "elarasign.billboard",
	Level: hclog.Trace,
})

type rawChunk struct {
	Type string
	Data []byte
}

func parseChunks(png []byte) ([]rawChunk, error) {
	if len(png) < 8 || !bytes.Equal(png[:8], pngSignature) {
		return nil, fmt.Errorf("%w: not a PNG file", elaraerrors.ErrContainerDecode)
	}

	var chunks []rawChunk
	pos := 8
	for pos+8 <= len(png) {
		length := binary.BigEndian.Uint32(png[pos : pos+4])
		typ := string(png[pos+4 : pos+8])
		dataStart := pos + 8
		dataEnd := dataStart + int(length)
		if dataEnd+4 > len(png) {
			return nil, fmt.Errorf("%w: truncated chunk %q", elaraerrors.ErrContainerDecode, typ)
		}
		data := png[dataStart:dataEnd]
		chunks = append(chunks, rawChunk{Type: typ, Data: data})
		pos = dataEnd + 4
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

func encodeChunk(buf *bytes.Buffer, typ string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])

	body := append([]byte(typ), data...)
	buf.Write(body)

	crc := hashing.CRC32(body)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	buf.Write(crcBuf[:])
}

func deflateZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WritePNG inserts a tEXt chunk (short summary), a zTXt chunk (the full
// canonical metadata JSON, zlib-deflated), and — when forensicBase64 is
// non-empty — an elaraSign:forensic tEXt chunk, all placed immediately
// after IHDR and before IDAT, per the PNG chunk ordering rule.
func WritePNG(png []byte, summary string, canonicalJSON []byte, forensicBase64 string) ([]byte, error) {
	chunks, err := parseChunks(png)
	if err != nil {
		return nil, err
	}

	compressed, err := deflateZlib(canonicalJSON)
	if err != nil {
		return nil, fmt.Errorf("compressing zTXt payload: %w", err)
	}

	var out bytes.Buffer
	out.Write(pngSignature)

	inserted := false
	for _, c := range chunks {
		encodeChunk(&out, c.Type, c.Data)
		if c.Type == "IHDR" && !inserted {
			textData := append([]byte(PNGKeyword+"\x00"), []byte(summary)...)
			encodeChunk(&out, "tEXt", textData)

			ztxtData := append([]byte(PNGKeyword+"\x00\x00"), compressed...)
			encodeChunk(&out, "zTXt", ztxtData)

			if forensicBase64 != "" {
				forensicData := append([]byte(PNGForensicKeyword+"\x00"), []byte(forensicBase64)...)
				encodeChunk(&out, "tEXt", forensicData)
			}
			inserted = true
			billboardLogger.Debug("✅ inserted billboard chunks after IHDR")
		}
	}

	if !inserted {
		return nil, fmt.Errorf("%w: no IHDR chunk found", elaraerrors.ErrContainerDecode)
	}

	return out.Bytes(), nil
}

// ReadResult is what ReadPNG recovers from the billboard layer.
type ReadResult struct {
	Present        bool
	Summary        string
	CanonicalJSON  []byte
	ForensicBase64 string
}

// ReadPNG recovers the billboard annotations from a PNG file, if present.
func ReadPNG(png []byte) (ReadResult, error) {
	chunks, err := parseChunks(png)
	if err != nil {
		return ReadResult{}, err
	}

	var result ReadResult
	for _, c := range chunks {
		switch c.Type {
		case "tEXt":
			keyword, text, ok := splitNullTerminated(c.Data)
			if !ok {
				continue
			}
			switch keyword {
			case PNGKeyword:
				result.Present = true
				result.Summary = string(text)
			case PNGForensicKeyword:
				result.Present = true
				result.ForensicBase64 = string(text)
			}
		case "zTXt":
			keyword, rest, ok := splitNullTerminated(c.Data)
			if !ok || keyword != PNGKeyword || len(rest) < 1 {
				continue
			}
			// rest[0] is the compression method (always 0, zlib-deflate).
			decompressed, err := inflateZlib(rest[1:])
			if err != nil {
				return ReadResult{}, fmt.Errorf("%w: bad zTXt payload: %v", elaraerrors.ErrContainerDecode, err)
			}
			result.Present = true
			result.CanonicalJSON = decompressed
		}
	}

	return result, nil
}

func splitNullTerminated(data []byte) (string, []byte, bool) {
	idx := bytes.IndexByte(data, 0)
	if idx < 0 {
		return "", nil, false
	}
	return string(data[:idx]), data[idx+1:], true
}
