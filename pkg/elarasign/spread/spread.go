// Package spread implements the DCT spread-spectrum watermark: an additive
// signal spread across the mid-frequency coefficients of every 8x8
// luminance block, keyed by meta_hash via a PN sequence, that survives
// JPEG recompression and screenshots down to the documented quality
// threshold. This is the v2 protocol's hardest subcomponent; embed and
// detect must agree bit-for-bit on the block order, coefficient set, PN
// sequence, and reduction order.
package spread

import (
	"math"

	"github.com/hashicorp/go-hclog"

	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
)

// Alpha and Beta are the fixed v2 protocol embedding-strength constants.
// Changing them is wire-breaking.
const (
	Alpha = 0.1
	Beta  = 0.5
)

// DetectionThreshold is the normalized correlation above which the
// watermark is reported present.
const DetectionThreshold = 0.35

// MinBlocksForSpread is the minimum complete-block count below which the
// spread-spectrum layer is skipped entirely (very small images).
const MinBlocksForSpread = 64

// FlatLuminanceVarianceFloor is the total mid-frequency coefficient-energy
// sum, over all blocks, below which Detect sets LowEnergyWarn. Embed's
// boosted beta floor for near-flat planes is decided separately, by
// isNearFlat's variance test.
const FlatLuminanceVarianceFloor = 1.0

var spreadLogger = hclog.New(&hclog.LoggerOptions{
	Name:  "elarasign.spread",
	Level: hclog.Trace,
})

// Embed applies the additive spread-spectrum watermark, keyed by
// metaHash, across every complete 8x8 block of buf's luminance plane.
// Blocks with fewer than MinBlocksForSpread total are left untouched.
func Embed(buf *canvas.Buffer, metaHash [32]byte) error {
	blocksWide, blocksHigh := BlockCount(buf.Width, buf.Height)
	total := blocksWide * blocksHigh
	if total < MinBlocksForSpread {
		spreadLogger.Debug("⏭️ skipping spread-spectrum layer, too few blocks", "blocks", total)
		return nil
	}

	// Embed reads from CarrierLuminance (R+G only), never full Luminance,
	// so that re-signing an already-signed buffer recomputes identical
	// mid-frequency targets instead of drifting from its own prior output.
	plane := CarrierLuminance(buf)

	beta := Beta
	if isNearFlat(plane) {
		beta = Beta * 4
		spreadLogger.Debug("📐 near-flat luminance plane, boosting beta floor")
	}

	pn, err := DerivePNSequence(metaHash, total*PositionsPerBlock)
	if err != nil {
		return err
	}

	i := 0
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			block := ExtractBlock(plane, buf.Width, bx, by)
			coeffs := ForwardDCT(block)

			for j, flatIdx := range midFrequencyFlatIndices {
				c := coeffs[flatIdx]
				sign := float64(pn[i*PositionsPerBlock+j])
				coeffs[flatIdx] = c + Alpha*sign*math.Abs(c) + beta*sign
			}

			reconstructed := InverseDCT(coeffs)
			WriteBlueFromLuminance(buf, bx, by, reconstructed)
			i++
		}
	}

	spreadLogger.Debug("✅ spread-spectrum watermark embedded", "blocks", total)
	return nil
}

// DetectionReport is the result of correlating a candidate image against
// the PN sequence derived from a claimed meta_hash.
type DetectionReport struct {
	Present       bool
	Correlation   float64
	Confidence    float64
	BlocksSkipped bool
	LowEnergyWarn bool
}

// Detect repeats the forward DCT on buf, regenerates the PN sequence from
// metaHash, and computes normalized correlation over the same
// mid-frequency positions in the same block order. The block-sum
// reduction is always performed in canonical row-major order with a
// single accumulator, so correlation values are bit-identical regardless
// of how many worker goroutines a caller might otherwise use elsewhere in
// the pipeline — see spec §5's determinism requirement.
func Detect(buf *canvas.Buffer, metaHash [32]byte) (DetectionReport, error) {
	blocksWide, blocksHigh := BlockCount(buf.Width, buf.Height)
	total := blocksWide * blocksHigh
	if total < MinBlocksForSpread {
		return DetectionReport{BlocksSkipped: true}, nil
	}

	plane := Luminance(buf)

	pn, err := DerivePNSequence(metaHash, total*PositionsPerBlock)
	if err != nil {
		return DetectionReport{}, err
	}

	var dotProduct, energySum, pnEnergySum float64
	i := 0
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			block := ExtractBlock(plane, buf.Width, bx, by)
			coeffs := ForwardDCT(block)

			for j, flatIdx := range midFrequencyFlatIndices {
				c := coeffs[flatIdx]
				p := float64(pn[i*PositionsPerBlock+j])
				dotProduct += c * p
				energySum += c * c
				pnEnergySum += p * p
			}
			i++
		}
	}

	report := DetectionReport{}
	if energySum < FlatLuminanceVarianceFloor {
		report.LowEnergyWarn = true
	}

	denom := math.Sqrt(energySum * pnEnergySum)
	if denom > 0 {
		report.Correlation = dotProduct / denom
	}

	report.Confidence = clamp01(report.Correlation)
	report.Present = report.Correlation >= DetectionThreshold

	return report, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isNearFlat(plane []float64) bool {
	if len(plane) == 0 {
		return true
	}
	mean := 0.0
	for _, v := range plane {
		mean += v
	}
	mean /= float64(len(plane))

	var variance float64
	for _, v := range plane {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(plane))

	return variance < 4.0
}
