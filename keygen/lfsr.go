package keygen

import (
	"errors"
)

// lfsrTaps is the Galois feedback mask for x^32 + x^22 + x^2 + x + 1.
const lfsrTaps uint32 = 0x80200003

var ErrZeroSeed = errors.New("lfsr seed must be non-zero")

// LFSR is a 32-bit Galois linear feedback shift register. Its output is
// predictable from a handful of bytes: use it for reproducible demo keys only,
// never for keys that protect real data.
type LFSR struct {
	state uint32
}

func NewLFSR(seed uint32) (*LFSR, error) {
	if seed == 0 {
		return nil, ErrZeroSeed
	}
	return &LFSR{state: seed}, nil
}

func (l *LFSR) nextBit() uint8 {
	bit := uint8(l.state & 1)
	l.state >>= 1
	if bit == 1 {
		l.state ^= lfsrTaps
	}
	return bit
}

func (l *LFSR) NextByte() uint8 {
	var b uint8
	for i := 0; i < 8; i++ {
		b = b<<1 | l.nextBit()
	}
	return b
}

// Read fills p with generator output. It never fails.
func (l *LFSR) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = l.NextByte()
	}
	return len(p), nil
}
