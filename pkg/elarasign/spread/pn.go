package spread

import "golang.org/x/crypto/chacha20"

// pnNonce is fixed (not secret) — the PN sequence's only entropy source is
// the meta_hash-derived key, matching spec §4.6's "keyed PRNG" requirement
// while staying reproducible bit-for-bit across implementations.
var pnNonce = [chacha20.NonceSize]byte{}

// DerivePNSequence derives a deterministic {-1,+1} sequence of length n
// from the first 32 bytes of meta_hash, via a ChaCha20 keystream: each
// output byte's low bit selects the sign. Two implementations in
// different languages produce identical sequences from the same seed
// because ChaCha20 keystream generation is a fully specified, published
// algorithm (RFC 8439).
func DerivePNSequence(metaHash [32]byte, n int) ([]int8, error) {
	cipher, err := chacha20.NewUnauthenticatedCipher(metaHash[:], pnNonce[:])
	if err != nil {
		return nil, err
	}

	zeros := make([]byte, n)
	keystream := make([]byte, n)
	cipher.XORKeyStream(keystream, zeros)

	pn := make([]int8, n)
	for i, b := range keystream {
		if b&1 == 1 {
			pn[i] = 1
		} else {
			pn[i] = -1
		}
	}
	return pn, nil
}
