package cripta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nPaBwaYT/magma/cripta"
)

var testKey = []uint8{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}

func TestExpandKey(t *testing.T) {
	words, err := cripta.ExpandKey(testKey)
	require.NoError(t, err)

	assert.Equal(t, [8]uint32{
		0x01020304, 0x05060701, 0x02030405, 0x06070102,
		0x03040506, 0x07010203, 0x04050607, 0x01020304,
	}, words)
}

func TestMagmaKeySchedule_GenerateRoundKeys(t *testing.T) {
	ks := &cripta.MagmaKeySchedule{}

	roundKeys, err := ks.GenerateRoundKeys(testKey)
	require.NoError(t, err)
	require.Len(t, roundKeys, cripta.MagmaRoundsCount)

	words, err := cripta.ExpandKey(testKey)
	require.NoError(t, err)

	for i := 0; i < 24; i++ {
		assert.Equal(t, words[i%8], roundKeys[i], "round %d", i)
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, words[7-i], roundKeys[24+i], "round %d", 24+i)
	}
}

func TestMagmaKeySchedule_Deterministic(t *testing.T) {
	ks := &cripta.MagmaKeySchedule{}

	first, err := ks.GenerateRoundKeys(testKey)
	require.NoError(t, err)
	second, err := ks.GenerateRoundKeys(testKey)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMagmaKeySchedule_DoesNotRetainKey(t *testing.T) {
	ks := &cripta.MagmaKeySchedule{}
	key := append([]uint8(nil), testKey...)

	before, err := ks.GenerateRoundKeys(key)
	require.NoError(t, err)
	key[0] = 0xff

	assert.Equal(t, uint32(0x01020304), before[0])
}

func TestMagmaKeySchedule_InvalidKeyLength(t *testing.T) {
	ks := &cripta.MagmaKeySchedule{}

	tests := []struct {
		name string
		key  []uint8
	}{
		{"nil", nil},
		{"empty", []uint8{}},
		{"too short", make([]uint8, 6)},
		{"too long", make([]uint8, 8)},
		{"full 256-bit key", make([]uint8, 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundKeys, err := ks.GenerateRoundKeys(tt.key)
			assert.ErrorIs(t, err, cripta.ErrInvalidKeyLength)
			assert.Nil(t, roundKeys)
		})
	}
}
