package validators

import (
	"encoding/hex"

	"github.com/go-playground/validator/v10"
)

const blockSize = 8

// ValidateHexBlock accepts a hex string that decodes to exactly one block.
func ValidateHexBlock(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	// don't validate empty value
	if value == "" {
		return true
	}

	decoded, err := hex.DecodeString(value)
	if err != nil {
		return false
	}
	return len(decoded) == blockSize
}
