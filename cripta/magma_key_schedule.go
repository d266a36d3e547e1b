package cripta

import (
	"encoding/binary"
	"fmt"
)

const (
	MagmaKeySize     = 7
	MagmaRoundsCount = 32

	expandedKeyWords = 8
	forwardRounds    = 24
)

type MagmaKeySchedule struct{}

// ExpandKey stretches a 56-bit key to 256 bits: the key repeated four times
// followed by its first four bytes, read as eight big-endian words.
func ExpandKey(masterKey []uint8) ([expandedKeyWords]uint32, error) {
	var words [expandedKeyWords]uint32
	if len(masterKey) != MagmaKeySize {
		return words, fmt.Errorf("%w: got %d bytes, need %d", ErrInvalidKeyLength, len(masterKey), MagmaKeySize)
	}

	expanded := make([]uint8, 0, expandedKeyWords*4)
	for i := 0; i < 4; i++ {
		expanded = append(expanded, masterKey...)
	}
	expanded = append(expanded, masterKey[:4]...)

	for i := range words {
		words[i] = binary.BigEndian.Uint32(expanded[i*4:])
	}
	return words, nil
}

func (mks *MagmaKeySchedule) GenerateRoundKeys(masterKey []uint8) ([]uint32, error) {
	words, err := ExpandKey(masterKey)
	if err != nil {
		return nil, err
	}

	roundKeys := make([]uint32, MagmaRoundsCount)
	for i := 0; i < forwardRounds; i++ {
		roundKeys[i] = words[i%expandedKeyWords]
	}
	// last eight rounds walk the expanded key backwards
	for i := 0; i < expandedKeyWords; i++ {
		roundKeys[forwardRounds+i] = words[expandedKeyWords-1-i]
	}

	return roundKeys, nil
}
