package cripta

import "math/bits"

const roundRotation = 11

type MagmaRoundFunction struct{}

// Transform runs every nibble of the word through its own S-box.
func Transform(word uint32) uint32 {
	var result uint32
	for i := 0; i < 8; i++ {
		nibble := (word >> (4 * i)) & 0xF
		result |= uint32(MagmaSBox[i][nibble]) << (4 * i)
	}
	return result
}

// Apply computes g[k](a): addition mod 2^32, substitution, rotation by 11.
func (mrf *MagmaRoundFunction) Apply(half uint32, roundKey uint32) uint32 {
	return bits.RotateLeft32(Transform(half+roundKey), roundRotation)
}
