package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/fx"

	"github.com/nPaBwaYT/magma/application"
	"github.com/nPaBwaYT/magma/commander"
	"github.com/nPaBwaYT/magma/logging"
)

/*
Encrypt input.txt into output.enc with the key in key.key
go run . -e

Decrypt output.enc into output.txt
go run . -d

Generate a key, encrypt in CBC mode with an explicit IV
go run . keygen
go run . -e -m=cbc --iv=0123456789abcdef

Damage the ciphertext and look at the decryption
go run . corrupt --op=swap-blocks --index=0 --other=1

Key lifetime: a warning is logged past 10 KiB per key, encryption is refused past 20 KiB.
*/

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cli := commander.CLI{}
	parser, err := kong.New(
		&cli,
		kong.Name("magma"),
		kong.Description("GOST 28147-89 (Magma) file cipher with a 56-bit key"),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Summary:   true,
			FlagsLast: true,
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "magma: %v\n", err)
		return 1
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "magma: %v\n", err)
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) && parseErr.Context != nil {
			_ = parseErr.Context.PrintUsage(false)
		}
		return 1
	}
	cli.Globals.Stdout = stdout

	builder := application.NewBuilder(
		fx.Supply(logging.Config{
			LogLevel:  cli.Globals.LogLevel,
			LogOutput: cli.Globals.LogOutput,
		}),
		fx.Provide(logging.Provide),
		fx.WithLogger(logging.FxLogger),
		fx.Supply(cli.Globals.UsageLimits()),
		application.Module,
	)

	if err = ctx.Run(&cli.Globals, builder); err != nil {
		fmt.Fprintf(stderr, "magma: %v\n", err)
		if errors.Is(err, commander.ErrUsage) {
			_ = ctx.PrintUsage(false)
		}
		return 1
	}
	return 0
}
