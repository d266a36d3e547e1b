package cripta

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

const MagmaBlockSize = 8

type MagmaCipher struct {
	feistel *FeistelNetwork
}

var _ cipher.Block = (*MagmaCipher)(nil)

func NewMagmaCipher() (*MagmaCipher, error) {
	feistel, err := NewFeistelNetwork(
		&MagmaKeySchedule{},
		&MagmaRoundFunction{},
		MagmaRoundsCount,
	)
	if err != nil {
		return nil, err
	}

	return &MagmaCipher{
		feistel: feistel,
	}, nil
}

// NewCipher returns a keyed cipher ready for block operations.
func NewCipher(key []uint8) (*MagmaCipher, error) {
	c, err := NewMagmaCipher()
	if err != nil {
		return nil, err
	}
	if err := c.SetKey(key); err != nil {
		return nil, err
	}
	return c, nil
}

func (mc *MagmaCipher) SetKey(key []uint8) error {
	if len(key) != MagmaKeySize {
		return fmt.Errorf("%w: Magma key must be %d bytes (56 bits), got %d", ErrInvalidKeyLength, MagmaKeySize, len(key))
	}

	err := mc.feistel.SetKey(key)
	if err != nil {
		return fmt.Errorf("failed to set key in feistel network: %w", err)
	}

	return nil
}

func (mc *MagmaCipher) RoundKeys() []uint32 {
	return mc.feistel.RoundKeys()
}

func (mc *MagmaCipher) EncryptBlock(plainBlock []uint8) ([]uint8, error) {
	cipherBlock, err := mc.feistel.EncryptBlock(plainBlock)
	if err != nil {
		return nil, fmt.Errorf("feistel encryption failed: %w", err)
	}
	return cipherBlock, nil
}

func (mc *MagmaCipher) DecryptBlock(cipherBlock []uint8) ([]uint8, error) {
	plainBlock, err := mc.feistel.DecryptBlock(cipherBlock)
	if err != nil {
		return nil, fmt.Errorf("feistel decryption failed: %w", err)
	}
	return plainBlock, nil
}

func (mc *MagmaCipher) BlockSize() int {
	return MagmaBlockSize
}

// Encrypt implements cipher.Block. Like the standard library ciphers it
// panics on short buffers or a missing key.
func (mc *MagmaCipher) Encrypt(dst, src []byte) {
	mc.mustBeReady(dst, src)
	binary.BigEndian.PutUint64(dst, mc.feistel.EncryptWord(binary.BigEndian.Uint64(src)))
}

// Decrypt implements cipher.Block.
func (mc *MagmaCipher) Decrypt(dst, src []byte) {
	mc.mustBeReady(dst, src)
	binary.BigEndian.PutUint64(dst, mc.feistel.DecryptWord(binary.BigEndian.Uint64(src)))
}

func (mc *MagmaCipher) mustBeReady(dst, src []byte) {
	if len(src) < MagmaBlockSize {
		panic("cripta: input not full block")
	}
	if len(dst) < MagmaBlockSize {
		panic("cripta: output not full block")
	}
	if len(mc.feistel.roundKeys) == 0 {
		panic("cripta: key not set")
	}
}
