package cripta_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nPaBwaYT/magma/cripta"
)

func sequence(n int) []uint8 {
	data := make([]uint8, n)
	for i := range data {
		data[i] = uint8(i + 1)
	}
	return data
}

func TestPad_Unpad(t *testing.T) {
	tests := []struct {
		length    int
		padLength int
	}{
		{0, 8},
		{7, 8},
		{8, 16},
		{15, 16},
		{16, 24},
	}
	for _, tt := range tests {
		data := sequence(tt.length)

		padded := cripta.Pad(data)
		require.Len(t, padded, tt.padLength, "length %d", tt.length)
		assert.Equal(t, uint8(0x80), padded[tt.length])
		assert.True(t, bytes.Equal(make([]uint8, tt.padLength-tt.length-1), padded[tt.length+1:]))

		unpadded, err := cripta.Unpad(padded)
		require.NoError(t, err)
		assert.Equal(t, data, unpadded, "length %d", tt.length)
	}
}

func TestPad_DoesNotModifyInput(t *testing.T) {
	data := sequence(5)
	_ = cripta.Pad(data)
	assert.Equal(t, sequence(5), data)
}

func TestUnpad_DataEndingInZeros(t *testing.T) {
	data := []uint8{0x10, 0x00, 0x00}
	unpadded, err := cripta.Unpad(cripta.Pad(data))
	require.NoError(t, err)
	assert.Equal(t, data, unpadded)
}

func TestUnpad_Unrecognized(t *testing.T) {
	tests := []struct {
		name string
		data []uint8
	}{
		{"empty", []uint8{}},
		{"all zeros", make([]uint8, 8)},
		{"wrong marker", []uint8{1, 2, 3, 4, 5, 6, 0x81, 0x00}},
		{"no padding at all", sequence(8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cripta.Unpad(tt.data)
			assert.ErrorIs(t, err, cripta.ErrUnrecognizedPadding)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestUnpad_MarkerOnly(t *testing.T) {
	got, err := cripta.Unpad([]uint8{0x80, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPaddingModes_RoundTrip(t *testing.T) {
	modes := []cripta.PaddingMode{
		cripta.PaddingModeMarker,
		cripta.PaddingModePKCS7,
		cripta.PaddingModeANSIX923,
		cripta.PaddingModeISO10126,
	}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			for _, length := range []int{0, 1, 7, 8, 9, 16} {
				data := sequence(length)
				padded, err := cripta.ApplyPadding(data, mode, 8)
				require.NoError(t, err)
				assert.Zero(t, len(padded)%8)
				assert.Greater(t, len(padded), length)

				unpadded, err := cripta.RemovePadding(padded, mode, 8)
				require.NoError(t, err)
				assert.Equal(t, data, unpadded, "length %d", length)
			}
		})
	}
}

func TestPaddingModeZeros_StripsTrailingZeros(t *testing.T) {
	padded, err := cripta.ApplyPadding([]uint8{1, 2, 3}, cripta.PaddingModeZeros, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 0, 0, 0, 0, 0}, padded)

	unpadded, err := cripta.RemovePadding(padded, cripta.PaddingModeZeros, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, unpadded)
}

func TestPaddingModePKCS7_Unrecognized(t *testing.T) {
	data := []uint8{1, 2, 3, 4, 5, 6, 2, 3}
	got, err := cripta.RemovePadding(data, cripta.PaddingModePKCS7, 8)
	assert.ErrorIs(t, err, cripta.ErrUnrecognizedPadding)
	assert.Equal(t, data, got)

	got, err = cripta.RemovePadding([]uint8{1, 2, 3, 4, 5, 6, 7, 0}, cripta.PaddingModeANSIX923, 8)
	assert.ErrorIs(t, err, cripta.ErrUnrecognizedPadding)
	assert.Len(t, got, 8)
}

func TestApplyPadding_InvalidArguments(t *testing.T) {
	_, err := cripta.ApplyPadding([]uint8{1}, cripta.PaddingMode(42), 8)
	assert.Error(t, err)
	_, err = cripta.ApplyPadding([]uint8{1}, cripta.PaddingModeMarker, 0)
	assert.Error(t, err)
}
