package cripta

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKeyLength     = errors.New("invalid key length")
	ErrKeyExhausted         = errors.New("key usage limit exceeded")
	ErrMisalignedCiphertext = errors.New("ciphertext length is not a multiple of the block size")
	ErrUnrecognizedPadding  = errors.New("padding not recognized")
	ErrKeyNotSet            = errors.New("key not set")
)

// FileAccessError reports a failed open, read or write of Path.
type FileAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}
