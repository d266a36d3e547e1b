package keygen

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/nPaBwaYT/magma/cripta"
)

// Generate reads a fresh 56-bit key from r, crypto/rand when r is nil.
func Generate(r io.Reader) ([]uint8, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]uint8, cripta.MagmaKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to read random key: %w", err)
	}
	return key, nil
}
