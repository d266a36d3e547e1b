package commander

import (
	"fmt"
	"io"

	"github.com/nPaBwaYT/magma/application"
	"github.com/nPaBwaYT/magma/cripta"
	"github.com/nPaBwaYT/magma/keygen"
)

type KeygenCmd struct {
	LFSR   bool   `name:"lfsr" help:"Use the reproducible LFSR generator (demo keys only, not secure)"`
	Seed   uint32 `default:"1" help:"Seed for the LFSR generator"`
	Output string `help:"Where to write the key (defaults to --key)"`
}

func (c *KeygenCmd) Run(globals *Globals, builder *application.Builder) error {
	container, err := builder.Container()
	if err != nil {
		return err
	}

	var source io.Reader
	if c.LFSR {
		lfsr, err := keygen.NewLFSR(c.Seed)
		if err != nil {
			return err
		}
		container.Logger.Warn().
			Uint32("seed", c.Seed).
			Msg("Generating a predictable LFSR key, do not use it to protect real data")
		source = lfsr
	}

	key, err := keygen.Generate(source)
	if err != nil {
		return err
	}

	output := c.Output
	if output == "" {
		output = globals.Key
	}
	if err = cripta.SaveKeyFile(output, key); err != nil {
		return err
	}
	container.Tracker.Reset(output)

	container.Logger.Info().Str("key", output).Bool("lfsr", c.LFSR).Msg("Key generated")
	fmt.Fprintf(globals.out(), "Key written to %s: %x\n", output, key)
	return nil
}
