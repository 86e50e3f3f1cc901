package spread

// zigzag maps a zig-zag scan position to a flat row-major index (u*8+v)
// into an 8x8 DCT coefficient block. Position 0 is the DC term; positions
// 1..63 visit the AC coefficients from lowest to highest frequency,
// roughly speaking. Adapted from the JPEG zig-zag order documented in
// google-wuffs' lowleveljpeg package.
var zigzag = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// midFrequencyZigzagIndices is the fixed v2 protocol constant: the
// zig-zag positions used to carry the spread-spectrum watermark. Chosen to
// sit above perceptual masking for low frequencies (visible edits) and
// below the high-frequency band lost to JPEG compression. This exact set
// must be identical in embed and detect; changing it is wire-breaking.
var midFrequencyZigzagIndices = [8]int{4, 5, 6, 7, 8, 9, 10, 11}

// midFrequencyFlatIndices is midFrequencyZigzagIndices translated through
// zigzag into flat block indices, computed once at package init.
var midFrequencyFlatIndices = func() [8]int {
	var flat [8]int
	for i, z := range midFrequencyZigzagIndices {
		flat[i] = int(zigzag[z])
	}
	return flat
}()

// PositionsPerBlock is the number of mid-frequency coefficients carried
// per 8x8 block.
const PositionsPerBlock = 8
