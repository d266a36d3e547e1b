// Package corrupt damages ciphertext in controlled ways to show that the
// cipher neither detects nor contains modifications.
package corrupt

import (
	"errors"
	"fmt"
)

const BlockSize = 8

var ErrOutOfRange = errors.New("position out of range")

type Operation string

const (
	OpDeleteByte  Operation = "delete-byte"
	OpDeleteBlock Operation = "delete-block"
	OpInsertBlock Operation = "insert-block"
	OpSwapBlocks  Operation = "swap-blocks"
)

// Operations lists every supported mutation.
var Operations = []Operation{OpDeleteByte, OpDeleteBlock, OpInsertBlock, OpSwapBlocks}

func numBlocks(data []uint8) int {
	return len(data) / BlockSize
}

// DeleteByte returns a copy of data without the byte at pos.
func DeleteByte(data []uint8, pos int) ([]uint8, error) {
	if pos < 0 || pos >= len(data) {
		return nil, fmt.Errorf("%w: byte %d of %d", ErrOutOfRange, pos, len(data))
	}
	result := make([]uint8, 0, len(data)-1)
	result = append(result, data[:pos]...)
	return append(result, data[pos+1:]...), nil
}

// DeleteBlock returns a copy of data without the index-th 8-byte block.
func DeleteBlock(data []uint8, index int) ([]uint8, error) {
	if index < 0 || index >= numBlocks(data) {
		return nil, fmt.Errorf("%w: block %d of %d", ErrOutOfRange, index, numBlocks(data))
	}
	start := index * BlockSize
	result := make([]uint8, 0, len(data)-BlockSize)
	result = append(result, data[:start]...)
	return append(result, data[start+BlockSize:]...), nil
}

// InsertBlock returns a copy of data with block placed before block index.
// index may equal the block count to append.
func InsertBlock(data []uint8, index int, block []uint8) ([]uint8, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("inserted block must be %d bytes, got %d", BlockSize, len(block))
	}
	if index < 0 || index > numBlocks(data) {
		return nil, fmt.Errorf("%w: block %d of %d", ErrOutOfRange, index, numBlocks(data))
	}
	start := index * BlockSize
	result := make([]uint8, 0, len(data)+BlockSize)
	result = append(result, data[:start]...)
	result = append(result, block...)
	return append(result, data[start:]...), nil
}

// SwapBlocks returns a copy of data with blocks i and j exchanged.
func SwapBlocks(data []uint8, i, j int) ([]uint8, error) {
	n := numBlocks(data)
	if i < 0 || i >= n || j < 0 || j >= n {
		return nil, fmt.Errorf("%w: blocks %d and %d of %d", ErrOutOfRange, i, j, n)
	}
	result := make([]uint8, len(data))
	copy(result, data)
	bi := result[i*BlockSize : (i+1)*BlockSize]
	bj := result[j*BlockSize : (j+1)*BlockSize]
	tmp := make([]uint8, BlockSize)
	copy(tmp, bi)
	copy(bi, bj)
	copy(bj, tmp)
	return result, nil
}

// Apply runs op on data. index is the byte or block position, other is the
// second block for swaps, and filler is the block inserted by OpInsertBlock.
func Apply(op Operation, data []uint8, index, other int, filler []uint8) ([]uint8, error) {
	switch op {
	case OpDeleteByte:
		return DeleteByte(data, index)
	case OpDeleteBlock:
		return DeleteBlock(data, index)
	case OpInsertBlock:
		return InsertBlock(data, index, filler)
	case OpSwapBlocks:
		return SwapBlocks(data, index, other)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// FirstDifference returns the offset of the first byte where a and b differ,
// or -1 when they are equal.
func FirstDifference(a, b []uint8) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
