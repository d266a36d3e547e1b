package cripta

import (
	"crypto/rand"
	"fmt"
)

type PaddingMode int

const (
	// PaddingModeMarker appends 0x80 and zero-fills to the block boundary.
	PaddingModeMarker PaddingMode = iota
	PaddingModeZeros
	PaddingModeANSIX923
	PaddingModePKCS7
	PaddingModeISO10126
)

const paddingMarker = 0x80

func (m PaddingMode) String() string {
	switch m {
	case PaddingModeMarker:
		return "marker"
	case PaddingModeZeros:
		return "zeros"
	case PaddingModeANSIX923:
		return "ansi"
	case PaddingModePKCS7:
		return "pkcs7"
	case PaddingModeISO10126:
		return "iso"
	default:
		return fmt.Sprintf("PaddingMode(%d)", int(m))
	}
}

// Pad applies marker padding for the Magma block size.
// Aligned input still gains a whole block so that Unpad is never ambiguous.
func Pad(data []uint8) []uint8 {
	padded, _ := ApplyPadding(data, PaddingModeMarker, MagmaBlockSize)
	return padded
}

// Unpad strips marker padding. When the last non-zero byte is not the marker
// the data comes back untouched together with ErrUnrecognizedPadding.
func Unpad(data []uint8) ([]uint8, error) {
	return RemovePadding(data, PaddingModeMarker, MagmaBlockSize)
}

func ApplyPadding(data []uint8, mode PaddingMode, blockSize int) ([]uint8, error) {
	if blockSize <= 0 || blockSize > 255 {
		return nil, fmt.Errorf("unsupported block size for padding: %d", blockSize)
	}

	dataLength := len(data)
	paddingLength := blockSize - (dataLength % blockSize)

	padded := make([]uint8, dataLength+paddingLength)
	copy(padded, data)

	switch mode {
	case PaddingModeMarker:
		padded[dataLength] = paddingMarker

	case PaddingModeZeros:
		// tail is already zero

	case PaddingModePKCS7:
		for i := dataLength; i < len(padded); i++ {
			padded[i] = uint8(paddingLength)
		}

	case PaddingModeANSIX923:
		padded[len(padded)-1] = uint8(paddingLength)

	case PaddingModeISO10126:
		if paddingLength > 1 {
			if _, err := rand.Read(padded[dataLength : len(padded)-1]); err != nil {
				return nil, fmt.Errorf("failed to generate random bytes: %w", err)
			}
		}
		padded[len(padded)-1] = uint8(paddingLength)

	default:
		return nil, fmt.Errorf("unsupported padding mode: %v", mode)
	}

	return padded, nil
}

func RemovePadding(data []uint8, mode PaddingMode, blockSize int) ([]uint8, error) {
	if len(data) == 0 {
		return data, unrecognized(mode, "empty input")
	}

	switch mode {
	case PaddingModeMarker:
		pos := len(data) - 1
		for pos > 0 && data[pos] == 0x00 {
			pos--
		}
		if data[pos] != paddingMarker {
			return data, unrecognized(mode, fmt.Sprintf("byte 0x%02x at offset %d", data[pos], pos))
		}
		return data[:pos], nil

	case PaddingModeZeros:
		for i := len(data) - 1; i >= 0; i-- {
			if data[i] != 0 {
				return data[:i+1], nil
			}
		}
		return []uint8{}, nil
	}

	paddingLength := int(data[len(data)-1])
	if paddingLength == 0 || paddingLength > blockSize || paddingLength > len(data) {
		return data, unrecognized(mode, fmt.Sprintf("length byte %d", paddingLength))
	}

	switch mode {
	case PaddingModePKCS7:
		for i := len(data) - paddingLength; i < len(data); i++ {
			if data[i] != uint8(paddingLength) {
				return data, unrecognized(mode, fmt.Sprintf("byte 0x%02x at offset %d", data[i], i))
			}
		}

	case PaddingModeANSIX923:
		for i := len(data) - paddingLength; i < len(data)-1; i++ {
			if data[i] != 0 {
				return data, unrecognized(mode, fmt.Sprintf("byte 0x%02x at offset %d", data[i], i))
			}
		}

	case PaddingModeISO10126:
		// filler is random, only the length byte can be checked

	default:
		return data, fmt.Errorf("unsupported padding mode: %v", mode)
	}

	return data[:len(data)-paddingLength], nil
}

func unrecognized(mode PaddingMode, detail string) error {
	return fmt.Errorf("%w: %s padding, %s", ErrUnrecognizedPadding, mode, detail)
}
