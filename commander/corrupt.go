package commander

import (
	"errors"
	"fmt"
	"os"

	"github.com/nPaBwaYT/magma/application"
	"github.com/nPaBwaYT/magma/corrupt"
	"github.com/nPaBwaYT/magma/cripta"
)

type CorruptCmd struct {
	Op    string `default:"swap-blocks" enum:"delete-byte,delete-block,insert-block,swap-blocks" help:"Kind of damage to apply"` // nolint:lll
	Index int    `default:"0" help:"Byte (delete-byte) or block position to damage"`
	Other int    `default:"1" help:"Second block for swap-blocks, block to duplicate for insert-block"`

	Mode    string `short:"m" default:"ecb"    enum:"ecb,cbc,cfb,ofb,ctr"          help:"Block cipher mode the ciphertext was made with"` // nolint:lll
	Padding string `short:"p" default:"marker" enum:"marker,zeros,pkcs7,ansi,iso" help:"Padding scheme the ciphertext was made with"`      // nolint:lll
	IV      string `validate:"omitempty,hexblock" help:"Initialization vector in hex (8 bytes)"`

	Input     string `default:"output.enc"    help:"Ciphertext to damage"`
	Output    string `default:"corrupted.enc" help:"Where to write the damaged ciphertext"`
	Decrypted string `default:"corrupted.txt" help:"Where to write the decryption of the damaged ciphertext"`
	Original  string `default:"input.txt"     help:"Plaintext to compare the decryption against"`
}

func (c *CorruptCmd) Run(globals *Globals, builder *application.Builder) error {
	container, err := builder.Container()
	if err != nil {
		return err
	}
	if err = container.Validate.Struct(c); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	ciphertext, err := os.ReadFile(c.Input)
	if err != nil {
		return &cripta.FileAccessError{Op: "read", Path: c.Input, Err: err}
	}

	var filler []uint8
	op := corrupt.Operation(c.Op)
	if op == corrupt.OpInsertBlock {
		if c.Other < 0 || c.Other >= len(ciphertext)/corrupt.BlockSize {
			return fmt.Errorf("%w: no block %d to duplicate", corrupt.ErrOutOfRange, c.Other)
		}
		filler = ciphertext[c.Other*corrupt.BlockSize : (c.Other+1)*corrupt.BlockSize]
	}

	damaged, err := corrupt.Apply(op, ciphertext, c.Index, c.Other, filler)
	if err != nil {
		return err
	}
	container.Metrics.Corruptions.WithLabelValues(c.Op).Inc()
	if err = os.WriteFile(c.Output, damaged, 0644); err != nil {
		return &cripta.FileAccessError{Op: "write", Path: c.Output, Err: err}
	}

	// the damaged file is fed back through the permissive decryption path
	ctx, err := newCipherContext(globals, container, c.Mode, c.Padding, c.IV)
	if err != nil {
		return err
	}
	err = ctx.DecryptFile(c.Output, c.Decrypted)
	switch {
	case errors.Is(err, cripta.ErrUnrecognizedPadding):
		container.Metrics.PaddingUnrecognized.Inc()
		container.Logger.Warn().Err(err).Msg("Damaged ciphertext decrypted with unrecognized padding")
	case err != nil:
		return err
	}
	if metricsErr := writeMetrics(globals, container); metricsErr != nil {
		container.Logger.Error().Err(metricsErr).Msg("Unable to write metrics")
	}

	w := globals.out()
	fmt.Fprintf(w, "Applied %s to %s: %d -> %d bytes, written to %s\n",
		c.Op, c.Input, len(ciphertext), len(damaged), c.Output)

	original, err := os.ReadFile(c.Original)
	if err != nil {
		container.Logger.Debug().Err(err).Msg("No original plaintext to compare with")
		return nil
	}
	decrypted, err := os.ReadFile(c.Decrypted)
	if err != nil {
		return &cripta.FileAccessError{Op: "read", Path: c.Decrypted, Err: err}
	}

	diff := corrupt.FirstDifference(original, decrypted)
	if diff < 0 {
		fmt.Fprintf(w, "Decrypted data still matches %s\n", c.Original)
	} else {
		fmt.Fprintf(w, "Decrypted data diverges from %s at byte %d (block %d)\n",
			c.Original, diff, diff/corrupt.BlockSize)
	}
	return nil
}
