// Package locate implements the multi-location orchestrator: picking the
// three non-overlapping pixel regions (TL, TR, BC), embedding a
// SignatureRecord at each, and extracting + voting across them on read.
package locate

import (
	"github.com/hashicorp/go-hclog"

	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
	"github.com/elarasign/elarasign/pkg/elarasign/lsb"
	"github.com/elarasign/elarasign/pkg/elarasign/signature"
)

// regionWidth and regionHeight are the fixed dimensions of each of the
// three embed regions (48 bytes x 8 bits/byte laid out one bit per pixel).
const (
	regionWidth  = 48
	regionHeight = 8
)

var orchestratorLogger = hclog.New(&hclog.LoggerOptions{
	Name:  "elarasign.locate",
	Level: hclog.Trace,
})

// Regions computes the three fixed, non-overlapping embed regions for a
// buffer of the given dimensions, per spec §3's LocationSlot layout.
func Regions(width, height int) map[signature.Location]canvas.Region {
	return map[signature.Location]canvas.Region{
		signature.LocationTL: {X: 0, Y: 0, W: regionWidth, H: regionHeight},
		signature.LocationTR: {X: width - regionWidth, Y: 0, W: regionWidth, H: regionHeight},
		signature.LocationBC: {X: (width - regionWidth) / 2, Y: height - regionHeight, W: regionWidth, H: regionHeight},
	}
}

// Sign embeds a SignatureRecord at all three locations, each carrying the
// same timestamp/hashes/flags, differing only in location_id.
func Sign(buf *canvas.Buffer, timestamp uint32, metaHash, contentHash [32]byte, flags uint8) error {
	regions := Regions(buf.Width, buf.Height)

	ordered := []signature.Location{signature.LocationTL, signature.LocationTR, signature.LocationBC}
	regionList := make([]canvas.Region, 0, 3)
	for _, loc := range ordered {
		regionList = append(regionList, regions[loc])
	}
	if err := lsb.CheckNoOverlap(regionList...); err != nil {
		return err
	}

	for _, loc := range ordered {
		record := signature.Pack(loc, timestamp, metaHash, contentHash, flags)
		if err := lsb.Embed(buf, regions[loc], record[:]); err != nil {
			return err
		}
		orchestratorLogger.Debug("✅ embedded signature record", "location", loc.String())
	}
	return nil
}

// LocationFinding classifies a single location's extraction result.
type LocationFinding struct {
	Location signature.Location
	Present  bool // magic/version parsed
	Valid    bool // CRC passed
	Record   signature.Unpacked
}

// ExtractionReport is the result of pulling and voting across all three
// locations.
type ExtractionReport struct {
	Findings             []LocationFinding
	Signed               bool
	ValidLocations       []signature.Location
	Best                 *signature.Unpacked
	ReducedRedundancy    bool
	DisagreeingLocations []signature.Location
}

// Extract pulls 48 bytes from each of the three locations, unpacks them,
// and applies the voting policy of spec §4.5: present if >=1 location is
// valid; when >=2 are valid their fields are ground truth and a third
// disagreeing location is flagged; when exactly 1 is valid it is accepted
// with reduced redundancy noted.
func Extract(buf *canvas.Buffer) ExtractionReport {
	regions := Regions(buf.Width, buf.Height)
	ordered := []signature.Location{signature.LocationTL, signature.LocationTR, signature.LocationBC}

	report := ExtractionReport{}

	var valid []LocationFinding
	for _, loc := range ordered {
		region := regions[loc]
		finding := LocationFinding{Location: loc}

		if !region.FitsIn(buf.Width, buf.Height) {
			report.Findings = append(report.Findings, finding)
			continue
		}

		raw, err := lsb.Extract(buf, region, signature.RecordSize)
		if err != nil {
			report.Findings = append(report.Findings, finding)
			continue
		}

		unpacked, err := signature.Unpack(raw)
		if err != nil {
			report.Findings = append(report.Findings, finding)
			continue
		}

		finding.Present = true
		finding.Record = unpacked
		finding.Valid = unpacked.IsValid
		report.Findings = append(report.Findings, finding)

		if finding.Valid {
			valid = append(valid, finding)
			report.ValidLocations = append(report.ValidLocations, loc)
		}
	}

	if len(valid) == 0 {
		report.Signed = false
		return report
	}

	report.Signed = true
	best := valid[0].Record
	report.Best = &best

	if len(valid) == 1 {
		report.ReducedRedundancy = true
	}

	if len(valid) >= 2 {
		for _, f := range valid[1:] {
			if f.Record.Timestamp != best.Timestamp ||
				f.Record.MetaHashPrefix != best.MetaHashPrefix ||
				f.Record.ContentHashPrefix != best.ContentHashPrefix {
				report.DisagreeingLocations = append(report.DisagreeingLocations, f.Location)
			}
		}
	}

	return report
}
