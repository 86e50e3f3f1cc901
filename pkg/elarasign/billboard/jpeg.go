package billboard

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/elarasign/elarasign/pkg/elarasign/elaraerrors"
)

// Standard TIFF tag numbers used by the APP1 EXIF billboard, per spec §6.
const (
	tagImageDescription = 0x010E
	tagSoftware         = 0x0131
	tagCopyright        = 0x8298
	tagUserComment      = 0x9286

	// tagMetaHash is a private-range tag carrying the short
	// "elaraSign:metaHash" string, not part of the standard TIFF tag set.
	tagMetaHash = 0xC351
)

const (
	tiffTypeASCII     = 2
	tiffTypeUndefined = 7
)

// exifASCIIDesignation prefixes a UNDEFINED-typed UserComment to declare
// its character encoding, per the EXIF spec.
var exifASCIIDesignation = []byte("ASCII\x00\x00\x00")

type ifdEntry struct {
	tag      uint16
	typ      uint16
	count    uint32
	value    []byte // raw bytes, padded/truncated to 4 if inline
	overflow []byte // non-nil when value doesn't fit inline
}

func asciiEntry(tag uint16, text string) ifdEntry {
	data := append([]byte(text), 0) // null-terminated
	return ifdEntry{tag: tag, typ: tiffTypeASCII, count: uint32(len(data)), overflow: data}
}

func undefinedEntry(tag uint16, data []byte) ifdEntry {
	return ifdEntry{tag: tag, typ: tiffTypeUndefined, count: uint32(len(data)), overflow: data}
}

// buildTIFF assembles a single-IFD little-endian TIFF block (the payload
// of an APP1 Exif segment, following the 6-byte "Exif\0\0" prefix).
func buildTIFF(entries []ifdEntry) []byte {
	const headerSize = 8
	ifdEntrySize := 12
	ifdSize := 2 + len(entries)*ifdEntrySize + 4

	overflowOffset := headerSize + ifdSize
	var overflowArea bytes.Buffer

	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(0x002A))
	binary.Write(&buf, binary.LittleEndian, uint32(headerSize))

	binary.Write(&buf, binary.LittleEndian, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, binary.LittleEndian, e.tag)
		binary.Write(&buf, binary.LittleEndian, e.typ)
		binary.Write(&buf, binary.LittleEndian, e.count)

		if len(e.overflow) <= 4 {
			var inline [4]byte
			copy(inline[:], e.overflow)
			buf.Write(inline[:])
		} else {
			binary.Write(&buf, binary.LittleEndian, uint32(overflowOffset+overflowArea.Len()))
			overflowArea.Write(e.overflow)
			if overflowArea.Len()%2 == 1 {
				overflowArea.WriteByte(0) // word-align, TIFF convention
			}
		}
	}
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // no next IFD

	buf.Write(overflowArea.Bytes())
	return buf.Bytes()
}

// WriteJPEG inserts an APP1 EXIF segment carrying Software, Copyright,
// ImageDescription, UserComment (the canonical JSON), and a custom
// elaraSign:metaHash field, immediately after the JPEG SOI marker.
func WriteJPEG(jpg []byte, canonicalJSON []byte, metaHashHex string) ([]byte, error) {
	if len(jpg) < 2 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		return nil, fmt.Errorf("%w: not a JPEG file", elaraerrors.ErrContainerDecode)
	}

	entries := []ifdEntry{
		asciiEntry(tagImageDescription, "elaraSign content provenance record"),
		asciiEntry(tagSoftware, "elaraSign/2.0"),
		asciiEntry(tagCopyright, "elaraSign"),
		undefinedEntry(tagUserComment, append(append([]byte{}, exifASCIIDesignation...), canonicalJSON...)),
		asciiEntry(tagMetaHash, "elaraSign:metaHash="+metaHashHex),
	}
	tiff := buildTIFF(entries)

	segment := append([]byte("Exif\x00\x00"), tiff...)
	segLen := len(segment) + 2 // length field includes itself, not the marker

	var app1 bytes.Buffer
	app1.WriteByte(0xFF)
	app1.WriteByte(0xE1)
	binary.Write(&app1, binary.BigEndian, uint16(segLen))
	app1.Write(segment)

	var out bytes.Buffer
	out.Write(jpg[:2]) // SOI
	out.Write(app1.Bytes())
	out.Write(jpg[2:])

	return out.Bytes(), nil
}

// ReadJPEG recovers the billboard annotations from the first APP1/Exif
// segment found in jpg, if any.
func ReadJPEG(jpg []byte) (ReadResult, error) {
	if len(jpg) < 2 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		return ReadResult{}, fmt.Errorf("%w: not a JPEG file", elaraerrors.ErrContainerDecode)
	}

	pos := 2
	for pos+4 <= len(jpg) {
		if jpg[pos] != 0xFF {
			break
		}
		marker := jpg[pos+1]
		if marker == 0xD9 || marker == 0xDA { // EOI or start of scan, stop scanning segments
			break
		}
		segLen := int(binary.BigEndian.Uint16(jpg[pos+2 : pos+4]))
		segStart := pos + 4
		segEnd := pos + 2 + segLen
		if segEnd > len(jpg) {
			break
		}

		if marker == 0xE1 && bytes.HasPrefix(jpg[segStart:segEnd], []byte("Exif\x00\x00")) {
			return parseExifSegment(jpg[segStart+6 : segEnd])
		}

		pos = segEnd
	}

	return ReadResult{}, nil
}

func parseExifSegment(tiff []byte) (ReadResult, error) {
	if len(tiff) < 8 || string(tiff[0:2]) != "II" {
		return ReadResult{}, fmt.Errorf("%w: unsupported TIFF byte order", elaraerrors.ErrContainerDecode)
	}

	ifdOffset := binary.LittleEndian.Uint32(tiff[4:8])
	if int(ifdOffset)+2 > len(tiff) {
		return ReadResult{}, fmt.Errorf("%w: bad IFD offset", elaraerrors.ErrContainerDecode)
	}

	count := binary.LittleEndian.Uint16(tiff[ifdOffset : ifdOffset+2])
	result := ReadResult{}

	for i := 0; i < int(count); i++ {
		entryOffset := int(ifdOffset) + 2 + i*12
		if entryOffset+12 > len(tiff) {
			break
		}
		tag := binary.LittleEndian.Uint16(tiff[entryOffset : entryOffset+2])
		typ := binary.LittleEndian.Uint16(tiff[entryOffset+2 : entryOffset+4])
		cnt := binary.LittleEndian.Uint32(tiff[entryOffset+4 : entryOffset+8])
		valueField := tiff[entryOffset+8 : entryOffset+12]

		var data []byte
		if cnt <= 4 {
			data = valueField[:cnt]
		} else {
			off := binary.LittleEndian.Uint32(valueField)
			if int(off)+int(cnt) > len(tiff) {
				continue
			}
			data = tiff[off : off+cnt]
		}

		switch tag {
		case tagUserComment:
			if typ == tiffTypeUndefined && len(data) >= len(exifASCIIDesignation) {
				result.Present = true
				result.CanonicalJSON = data[len(exifASCIIDesignation):]
			}
		case tagMetaHash:
			result.Present = true
			result.Summary = trimNull(data)
		}
	}

	return result, nil
}

func trimNull(data []byte) string {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		return string(data[:idx])
	}
	return string(data)
}
