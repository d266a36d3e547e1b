package cripta

import (
	"encoding/binary"
	"fmt"
)

type FeistelNetwork struct {
	keySchedule   IKeySchedule
	roundFunction IRoundFunction

	blockSize   int
	roundsCount int

	roundKeys []uint32
}

func NewFeistelNetwork(
	keyScheduleImpl IKeySchedule,
	roundFunctionImpl IRoundFunction,
	roundsCount int,
) (*FeistelNetwork, error) {

	if keyScheduleImpl == nil {
		return nil, fmt.Errorf("key schedule implementation cannot be nil")
	}
	if roundFunctionImpl == nil {
		return nil, fmt.Errorf("round function implementation cannot be nil")
	}
	if roundsCount < 0 {
		return nil, fmt.Errorf("rounds count cannot be negative: %d", roundsCount)
	}

	fRoundsCount := roundsCount
	if fRoundsCount == 0 {
		fRoundsCount = MagmaRoundsCount
	}

	return &FeistelNetwork{
		keySchedule:   keyScheduleImpl,
		roundFunction: roundFunctionImpl,
		blockSize:     8,
		roundsCount:   fRoundsCount,
	}, nil
}

func (fn *FeistelNetwork) GetBlockSize() int {
	return fn.blockSize
}

func (fn *FeistelNetwork) GetRoundsCount() int {
	return fn.roundsCount
}

// RoundKeys returns a copy of the current schedule.
func (fn *FeistelNetwork) RoundKeys() []uint32 {
	keys := make([]uint32, len(fn.roundKeys))
	copy(keys, fn.roundKeys)
	return keys
}

func (fn *FeistelNetwork) SetKey(key []uint8) error {
	roundKeys, err := fn.keySchedule.GenerateRoundKeys(key)
	if err != nil {
		return fmt.Errorf("failed to generate round keys: %w", err)
	}

	if len(roundKeys) < fn.roundsCount {
		return fmt.Errorf("key schedule generated insufficient round keys: got %d, need %d",
			len(roundKeys), fn.roundsCount)
	}

	fn.roundKeys = roundKeys
	return nil
}

// EncryptWord runs the rounds over the 64-bit block in schedule order.
// The last round leaves the halves in place instead of swapping them.
func (fn *FeistelNetwork) EncryptWord(block uint64) uint64 {
	high, low := uint32(block>>32), uint32(block)

	last := fn.roundsCount - 1
	for round := 0; round < last; round++ {
		high, low = low, high^fn.roundFunction.Apply(low, fn.roundKeys[round])
	}
	high ^= fn.roundFunction.Apply(low, fn.roundKeys[last])

	return uint64(high)<<32 | uint64(low)
}

// DecryptWord is EncryptWord with the schedule traversed backwards.
func (fn *FeistelNetwork) DecryptWord(block uint64) uint64 {
	high, low := uint32(block>>32), uint32(block)

	for round := fn.roundsCount - 1; round > 0; round-- {
		high, low = low, high^fn.roundFunction.Apply(low, fn.roundKeys[round])
	}
	high ^= fn.roundFunction.Apply(low, fn.roundKeys[0])

	return uint64(high)<<32 | uint64(low)
}

func (fn *FeistelNetwork) EncryptBlock(plainBlock []uint8) ([]uint8, error) {
	if len(plainBlock) != fn.blockSize {
		return nil, fmt.Errorf("plain block size must match configured block size: got %d, need %d",
			len(plainBlock), fn.blockSize)
	}
	if len(fn.roundKeys) == 0 {
		return nil, fmt.Errorf("%w: call SetKey() before encryption", ErrKeyNotSet)
	}

	result := make([]uint8, fn.blockSize)
	binary.BigEndian.PutUint64(result, fn.EncryptWord(binary.BigEndian.Uint64(plainBlock)))
	return result, nil
}

func (fn *FeistelNetwork) DecryptBlock(cipherBlock []uint8) ([]uint8, error) {
	if len(cipherBlock) != fn.blockSize {
		return nil, fmt.Errorf("cipher block size must match configured block size: got %d, need %d",
			len(cipherBlock), fn.blockSize)
	}
	if len(fn.roundKeys) == 0 {
		return nil, fmt.Errorf("%w: call SetKey() before decryption", ErrKeyNotSet)
	}

	result := make([]uint8, fn.blockSize)
	binary.BigEndian.PutUint64(result, fn.DecryptWord(binary.BigEndian.Uint64(cipherBlock)))
	return result, nil
}
