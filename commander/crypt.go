package commander

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nPaBwaYT/magma/application"
	"github.com/nPaBwaYT/magma/cripta"
)

const (
	defaultPlainFile     = "input.txt"
	defaultCipherFile    = "output.enc"
	defaultDecryptedFile = "output.txt"
)

type CryptCmd struct {
	Encrypt bool `short:"e" xor:"direction" help:"Encrypt the input file"`
	Decrypt bool `short:"d" xor:"direction" help:"Decrypt the input file"`

	Mode     string `short:"m" default:"ecb"    enum:"ecb,cbc,cfb,ofb,ctr"          help:"Block cipher mode"`
	Padding  string `short:"p" default:"marker" enum:"marker,zeros,pkcs7,ansi,iso" help:"Padding scheme"`
	IV       string `validate:"omitempty,hexblock" help:"Initialization vector in hex (8 bytes), zero when omitted"`
	Parallel bool   `help:"Process blocks on all CPUs (ECB and CTR only)"`
	Strict   bool   `help:"Refuse ciphertext whose length is not a multiple of 8 bytes"`

	Input    string `help:"Input file (input.txt when encrypting, output.enc when decrypting)"`
	Output   string `help:"Output file (output.enc when encrypting, output.txt when decrypting)"`
	Original string `default:"input.txt" help:"Plaintext to compare the decrypted output against, if it exists"`
}

func (c *CryptCmd) paths() (string, string) {
	input, output := c.Input, c.Output
	if c.Encrypt {
		if input == "" {
			input = defaultPlainFile
		}
		if output == "" {
			output = defaultCipherFile
		}
	} else {
		if input == "" {
			input = defaultCipherFile
		}
		if output == "" {
			output = defaultDecryptedFile
		}
	}
	return input, output
}

func (c *CryptCmd) Run(globals *Globals, builder *application.Builder) error {
	if c.Encrypt == c.Decrypt {
		return ErrUsage
	}

	container, err := builder.Container()
	if err != nil {
		return err
	}
	if err = container.Validate.Struct(c); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	ctx, err := newCipherContext(globals, container, c.Mode, c.Padding, c.IV,
		cripta.WithParallel(c.Parallel),
		cripta.WithStrict(c.Strict),
	)
	if err != nil {
		return err
	}

	input, output := c.paths()
	op := "decrypt"
	if c.Encrypt {
		op = "encrypt"
	}

	start := container.Clock.Now()
	err = c.process(ctx, container, op, input, output)
	duration := container.Clock.Since(start)
	container.Metrics.Durations.WithLabelValues(op).Observe(duration.Seconds())

	if err != nil {
		container.Metrics.Failures.WithLabelValues(op).Inc()
	}
	if metricsErr := writeMetrics(globals, container); metricsErr != nil {
		container.Logger.Error().Err(metricsErr).Msg("Unable to write metrics")
	}
	if err != nil {
		return err
	}

	c.report(globals, input, output, duration)

	if c.Decrypt {
		compareWithOriginal(globals, container, c.Original, output)
	}

	return nil
}

func (c *CryptCmd) process(
	ctx *cripta.CipherContext,
	container *application.Container,
	op, input, output string,
) error {
	logger := container.Logger.With().
		Str("op", op).
		Str("input", input).
		Str("output", output).
		Logger()

	var err error
	if c.Encrypt {
		var status cripta.UsageStatus
		status, err = ctx.EncryptFile(input, output)
		container.Metrics.ObserveKeyUsage(ctx.KeyID(), container.Tracker.Used(ctx.KeyID()))
		switch {
		case errors.Is(err, cripta.ErrKeyExhausted):
			container.Metrics.KeyUsageRejections.Inc()
		case status == cripta.UsageWarning:
			container.Metrics.KeyUsageWarnings.Inc()
		}
	} else {
		err = ctx.DecryptFile(input, output)
		if errors.Is(err, cripta.ErrUnrecognizedPadding) {
			container.Metrics.PaddingUnrecognized.Inc()
			logger.Warn().Err(err).Msg("Decrypted data may be corrupted")
			err = nil
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("Operation failed")
		return err
	}

	if info, statErr := os.Stat(input); statErr == nil {
		container.Metrics.ProcessedBytes.WithLabelValues(op).Add(float64(info.Size()))
		container.Metrics.ProcessedBlocks.WithLabelValues(op).Add(float64(info.Size() / cripta.MagmaBlockSize))
	}
	logger.Info().Msg("Operation completed")
	return nil
}

func (c *CryptCmd) report(globals *Globals, input, output string, duration time.Duration) {
	p := message.NewPrinter(language.English)
	w := globals.out()

	if c.Encrypt {
		p.Fprintf(w, "Encryption completed: %s -> %s\n", input, output)
	} else {
		p.Fprintf(w, "Decryption completed: %s -> %s\n", input, output)
	}
	if info, err := os.Stat(input); err == nil {
		p.Fprintf(w, "  Size: %d bytes\n", info.Size())
	}
	p.Fprintf(w, "  Mode: %s, padding: %s\n", c.Mode, c.Padding)
	p.Fprintf(w, "  Elapsed: %.3f seconds\n", duration.Seconds())
}

func compareWithOriginal(globals *Globals, container *application.Container, originalPath, decryptedPath string) {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		container.Logger.Debug().Err(err).Msg("No original plaintext to compare with")
		return
	}
	decrypted, err := os.ReadFile(decryptedPath)
	if err != nil {
		container.Logger.Error().Err(err).Str("path", decryptedPath).Msg("Unable to read decrypted output")
		return
	}
	if bytes.Equal(original, decrypted) {
		fmt.Fprintf(globals.out(), "Decrypted data matches %s\n", originalPath)
	} else {
		fmt.Fprintf(globals.out(), "Warning: decrypted data does NOT match %s\n", originalPath)
	}
}

func newCipherContext(
	globals *Globals,
	container *application.Container,
	mode, padding, ivHex string,
	opts ...cripta.ContextOption,
) (*cripta.CipherContext, error) {
	cipherMode, err := parseCipherMode(mode)
	if err != nil {
		return nil, err
	}
	paddingMode, err := parsePaddingMode(padding)
	if err != nil {
		return nil, err
	}

	var iv []uint8
	if ivHex != "" {
		iv, err = hex.DecodeString(ivHex)
		if err != nil {
			return nil, fmt.Errorf("invalid IV: %w", err)
		}
	}

	key, err := cripta.LoadKeyFile(globals.Key)
	if err != nil {
		container.Logger.Error().Err(err).Str("key", globals.Key).Msg("Unable to load key")
		return nil, err
	}

	cipher, err := cripta.NewCipher(key)
	if err != nil {
		return nil, err
	}

	opts = append(opts,
		cripta.WithUsageTracker(container.Tracker, globals.Key),
		cripta.WithLogger(container.Logger),
	)
	return cripta.NewCipherContext(cipher, cipherMode, paddingMode, iv, opts...)
}

func writeMetrics(globals *Globals, container *application.Container) error {
	if globals.MetricsFile == "" {
		return nil
	}
	return container.Metrics.WriteTextfile(globals.MetricsFile)
}
