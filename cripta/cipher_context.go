package cripta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

type CipherMode int

const (
	CipherModeECB CipherMode = iota
	CipherModeCBC
	CipherModeCFB
	CipherModeOFB
	CipherModeCTR
)

func (m CipherMode) String() string {
	switch m {
	case CipherModeECB:
		return "ecb"
	case CipherModeCBC:
		return "cbc"
	case CipherModeCFB:
		return "cfb"
	case CipherModeOFB:
		return "ofb"
	case CipherModeCTR:
		return "ctr"
	default:
		return fmt.Sprintf("CipherMode(%d)", int(m))
	}
}

type CipherContext struct {
	cipher      ISymmetricCipher
	mode        CipherMode
	paddingMode PaddingMode
	iv          []uint8
	blockSize   int
	parallel    bool
	strict      bool

	tracker *UsageTracker
	keyID   string
	logger  *zerolog.Logger
}

type ContextOption func(*CipherContext)

// WithParallel spreads ECB and CTR blocks across all CPUs.
func WithParallel(parallel bool) ContextOption {
	return func(ctx *CipherContext) {
		ctx.parallel = parallel
	}
}

// WithStrict makes Decrypt reject ciphertext with a partial trailing block
// instead of copying those bytes through.
func WithStrict(strict bool) ContextOption {
	return func(ctx *CipherContext) {
		ctx.strict = strict
	}
}

// WithUsageTracker charges every Encrypt call against keyID.
func WithUsageTracker(tracker *UsageTracker, keyID string) ContextOption {
	return func(ctx *CipherContext) {
		ctx.tracker = tracker
		ctx.keyID = keyID
	}
}

func WithLogger(logger *zerolog.Logger) ContextOption {
	return func(ctx *CipherContext) {
		ctx.logger = logger
	}
}

func NewCipherContext(
	cipher ISymmetricCipher,
	mode CipherMode,
	paddingMode PaddingMode,
	iv []uint8,
	opts ...ContextOption,
) (*CipherContext, error) {

	if cipher == nil {
		return nil, fmt.Errorf("cipher implementation cannot be nil")
	}
	if mode < CipherModeECB || mode > CipherModeCTR {
		return nil, fmt.Errorf("unsupported cipher mode: %v", mode)
	}

	ctx := &CipherContext{
		cipher:      cipher,
		mode:        mode,
		paddingMode: paddingMode,
		blockSize:   MagmaBlockSize,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	if ctx.logger == nil {
		nop := zerolog.Nop()
		ctx.logger = &nop
	}

	switch {
	case mode == CipherModeECB:
		ctx.iv = nil
	case len(iv) == 0:
		ctx.iv = make([]uint8, ctx.blockSize)
	case len(iv) != ctx.blockSize:
		return nil, fmt.Errorf("IV must be %d bytes, got %d", ctx.blockSize, len(iv))
	default:
		ctx.iv = make([]uint8, len(iv))
		copy(ctx.iv, iv)
	}

	return ctx, nil
}

func (ctx *CipherContext) xorBlocks(dest []uint8, src []uint8) []uint8 {
	minSize := min(len(dest), len(src))
	result := make([]uint8, minSize)
	for i := 0; i < minSize; i++ {
		result[i] = dest[i] ^ src[i]
	}
	return result
}

// counterAt returns the CTR counter block for block index i.
func (ctx *CipherContext) counterAt(i int) []uint8 {
	counter := make([]uint8, ctx.blockSize)
	binary.BigEndian.PutUint64(counter, binary.BigEndian.Uint64(ctx.iv)+uint64(i))
	return counter
}

// processParallel applies transform to every block of data, splitting the
// blocks between workers. Each result lands at its block's own offset.
func (ctx *CipherContext) processParallel(
	data []uint8,
	transform func(index int, block []uint8) ([]uint8, error),
) ([]uint8, error) {
	numBlocks := len(data) / ctx.blockSize
	output := make([]uint8, numBlocks*ctx.blockSize)
	if numBlocks == 0 {
		return output, nil
	}

	numThreads := min(max(runtime.NumCPU(), 1), numBlocks)

	var wg sync.WaitGroup
	errs := make(chan error, numThreads)

	blocksPerThread := (numBlocks + numThreads - 1) / numThreads

	for t := 0; t < numThreads; t++ {
		startBlock := t * blocksPerThread
		endBlock := min(startBlock+blocksPerThread, numBlocks)
		if startBlock >= numBlocks {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			for i := start; i < end; i++ {
				block := data[i*ctx.blockSize : (i+1)*ctx.blockSize]
				processed, err := transform(i, block)
				if err != nil {
					errs <- fmt.Errorf("block %d: %w", i, err)
					return
				}
				copy(output[i*ctx.blockSize:], processed)
			}
		}(startBlock, endBlock)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		return nil, err
	}

	return output, nil
}

func (ctx *CipherContext) ctrBlock(index int, block []uint8) ([]uint8, error) {
	keystream, err := ctx.cipher.EncryptBlock(ctx.counterAt(index))
	if err != nil {
		return nil, fmt.Errorf("CTR keystream failed: %w", err)
	}
	return ctx.xorBlocks(keystream, block), nil
}

func (ctx *CipherContext) encryptBlocks(padded []uint8) ([]uint8, error) {
	if ctx.parallel {
		switch ctx.mode {
		case CipherModeECB:
			return ctx.processParallel(padded, func(_ int, block []uint8) ([]uint8, error) {
				return ctx.cipher.EncryptBlock(block)
			})
		case CipherModeCTR:
			return ctx.processParallel(padded, ctx.ctrBlock)
		}
	}

	ciphertext := make([]uint8, 0, len(padded))
	feedback := make([]uint8, len(ctx.iv))
	copy(feedback, ctx.iv)

	for i := 0; i+ctx.blockSize <= len(padded); i += ctx.blockSize {
		block := padded[i : i+ctx.blockSize]

		var encryptedBlock []uint8
		var err error

		switch ctx.mode {
		case CipherModeECB:
			encryptedBlock, err = ctx.cipher.EncryptBlock(block)

		case CipherModeCBC:
			encryptedBlock, err = ctx.cipher.EncryptBlock(ctx.xorBlocks(block, feedback))
			feedback = encryptedBlock

		case CipherModeCFB:
			encryptedBlock, err = ctx.cipher.EncryptBlock(feedback)
			if err == nil {
				encryptedBlock = ctx.xorBlocks(encryptedBlock, block)
				feedback = encryptedBlock
			}

		case CipherModeOFB:
			feedback, err = ctx.cipher.EncryptBlock(feedback)
			if err == nil {
				encryptedBlock = ctx.xorBlocks(feedback, block)
			}

		case CipherModeCTR:
			encryptedBlock, err = ctx.ctrBlock(i/ctx.blockSize, block)
		}

		if err != nil {
			return nil, fmt.Errorf("%s encryption failed at block %d: %w", ctx.mode, i/ctx.blockSize, err)
		}
		ciphertext = append(ciphertext, encryptedBlock...)
	}

	return ciphertext, nil
}

func (ctx *CipherContext) decryptBlocks(ciphertext []uint8) ([]uint8, error) {
	if ctx.parallel {
		switch ctx.mode {
		case CipherModeECB:
			return ctx.processParallel(ciphertext, func(_ int, block []uint8) ([]uint8, error) {
				return ctx.cipher.DecryptBlock(block)
			})
		case CipherModeCTR:
			return ctx.processParallel(ciphertext, ctx.ctrBlock)
		}
	}

	plaintext := make([]uint8, 0, len(ciphertext))
	feedback := make([]uint8, len(ctx.iv))
	copy(feedback, ctx.iv)

	for i := 0; i+ctx.blockSize <= len(ciphertext); i += ctx.blockSize {
		block := ciphertext[i : i+ctx.blockSize]

		var decryptedBlock []uint8
		var err error

		switch ctx.mode {
		case CipherModeECB:
			decryptedBlock, err = ctx.cipher.DecryptBlock(block)

		case CipherModeCBC:
			decryptedBlock, err = ctx.cipher.DecryptBlock(block)
			if err == nil {
				decryptedBlock = ctx.xorBlocks(decryptedBlock, feedback)
				feedback = block
			}

		case CipherModeCFB:
			decryptedBlock, err = ctx.cipher.EncryptBlock(feedback)
			if err == nil {
				decryptedBlock = ctx.xorBlocks(decryptedBlock, block)
				feedback = block
			}

		case CipherModeOFB:
			feedback, err = ctx.cipher.EncryptBlock(feedback)
			if err == nil {
				decryptedBlock = ctx.xorBlocks(feedback, block)
			}

		case CipherModeCTR:
			decryptedBlock, err = ctx.ctrBlock(i/ctx.blockSize, block)
		}

		if err != nil {
			return nil, fmt.Errorf("%s decryption failed at block %d: %w", ctx.mode, i/ctx.blockSize, err)
		}
		plaintext = append(plaintext, decryptedBlock...)
	}

	return plaintext, nil
}

// Encrypt pads and encrypts plaintext. When a usage tracker is attached the
// bytes are charged to the key first; an exhausted key yields no ciphertext.
func (ctx *CipherContext) Encrypt(plaintext []uint8) ([]uint8, UsageStatus, error) {
	status := UsageOK
	if ctx.tracker != nil {
		var err error
		status, err = ctx.tracker.Record(ctx.keyID, len(plaintext))
		if err != nil {
			return nil, status, err
		}
	}

	padded, err := ApplyPadding(plaintext, ctx.paddingMode, ctx.blockSize)
	if err != nil {
		return nil, status, fmt.Errorf("padding failed: %w", err)
	}

	ciphertext, err := ctx.encryptBlocks(padded)
	if err != nil {
		return nil, status, err
	}

	ctx.logger.Debug().
		Stringer("mode", ctx.mode).
		Stringer("padding", ctx.paddingMode).
		Int("plaintext", len(plaintext)).
		Int("ciphertext", len(ciphertext)).
		Msg("Encrypted")

	return ciphertext, status, nil
}

// Decrypt decrypts and unpads ciphertext. Trailing bytes that do not form a
// whole block are copied through unless the context is strict.
// If the padding is not recognized the decrypted data is still returned,
// alongside an error matching ErrUnrecognizedPadding.
func (ctx *CipherContext) Decrypt(ciphertext []uint8) ([]uint8, error) {
	tail := len(ciphertext) % ctx.blockSize
	if tail != 0 && ctx.strict {
		return nil, fmt.Errorf("%w: %d bytes", ErrMisalignedCiphertext, len(ciphertext))
	}

	aligned := ciphertext[:len(ciphertext)-tail]
	plaintext, err := ctx.decryptBlocks(aligned)
	if err != nil {
		return nil, err
	}

	if tail != 0 {
		ctx.logger.Warn().
			Int("bytes", tail).
			Msg("Ciphertext is not block aligned, copying trailing bytes as is")
		plaintext = append(plaintext, ciphertext[len(aligned):]...)
	}

	unpadded, err := RemovePadding(plaintext, ctx.paddingMode, ctx.blockSize)
	if err != nil {
		if errors.Is(err, ErrUnrecognizedPadding) {
			ctx.logger.Warn().Err(err).Msg("Returning decrypted data with padding left in place")
		}
		return unpadded, err
	}

	return unpadded, nil
}

func (ctx *CipherContext) EncryptFile(inputPath string, outputPath string) (UsageStatus, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return UsageOK, &FileAccessError{Op: "read", Path: inputPath, Err: err}
	}

	encrypted, status, err := ctx.Encrypt(data)
	if err != nil {
		return status, fmt.Errorf("encryption failed: %w", err)
	}

	if err = os.WriteFile(outputPath, encrypted, 0644); err != nil {
		return status, &FileAccessError{Op: "write", Path: outputPath, Err: err}
	}

	return status, nil
}

// DecryptFile writes the output even when the padding is unrecognized and
// reports that condition through the returned error.
func (ctx *CipherContext) DecryptFile(inputPath string, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return &FileAccessError{Op: "read", Path: inputPath, Err: err}
	}

	decrypted, decryptErr := ctx.Decrypt(data)
	if decryptErr != nil && !errors.Is(decryptErr, ErrUnrecognizedPadding) {
		return fmt.Errorf("decryption failed: %w", decryptErr)
	}

	if err = os.WriteFile(outputPath, decrypted, 0644); err != nil {
		return &FileAccessError{Op: "write", Path: outputPath, Err: err}
	}

	return decryptErr
}

func (ctx *CipherContext) GetMode() CipherMode {
	return ctx.mode
}

func (ctx *CipherContext) GetPaddingMode() PaddingMode {
	return ctx.paddingMode
}

func (ctx *CipherContext) GetBlockSize() int {
	return ctx.blockSize
}

// KeyID names the key that Encrypt charges usage to.
func (ctx *CipherContext) KeyID() string {
	return ctx.keyID
}

func (ctx *CipherContext) IV() []uint8 {
	iv := make([]uint8, len(ctx.iv))
	copy(iv, ctx.iv)
	return iv
}

// LoadKeyFile reads a raw 56-bit key.
func LoadKeyFile(path string) ([]uint8, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileAccessError{Op: "read", Path: path, Err: err}
	}
	if len(key) != MagmaKeySize {
		return nil, fmt.Errorf("%w: key file %s holds %d bytes, need %d",
			ErrInvalidKeyLength, path, len(key), MagmaKeySize)
	}
	return key, nil
}

// SaveKeyFile writes a raw 56-bit key readable only by the owner.
func SaveKeyFile(path string, key []uint8) error {
	if len(key) != MagmaKeySize {
		return fmt.Errorf("%w: got %d bytes, need %d", ErrInvalidKeyLength, len(key), MagmaKeySize)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	return nil
}
