package commander

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nPaBwaYT/magma/cripta"
)

var ErrUsage = errors.New("exactly one of -e (encrypt) or -d (decrypt) must be given")

type Globals struct {
	LogLevel  string `default:"info"    enum:"debug,info,warn,error"      help:"Sets the minimum severity level for log messages"`
	LogOutput string `default:"console" enum:"console,stdout,stderr,json" help:"Specifies the format for log output"`

	Key string `default:"key.key" help:"Path to the raw 7-byte key file, also used as the key identifier for usage accounting"` // nolint:lll

	WarnLimit int `default:"10240" help:"Bytes encrypted under one key after which a rotation warning is logged"`
	MaxLimit  int `default:"20480" help:"Bytes encrypted under one key after which encryption is refused"`

	MetricsFile string `help:"Write Prometheus metrics of the run to this file"`

	Stdout io.Writer `kong:"-"`
}

func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Globals) UsageLimits() cripta.UsageLimits {
	return cripta.UsageLimits{
		Warn:    g.WarnLimit,
		Ceiling: g.MaxLimit,
	}
}

type CLI struct {
	Globals

	Crypt   CryptCmd   `cmd:"" default:"withargs" help:"Encrypt input.txt into output.enc (-e) or decrypt output.enc into output.txt (-d)"` // nolint:lll
	Keygen  KeygenCmd  `cmd:"" help:"Generate a new 56-bit key file"`
	Corrupt CorruptCmd `cmd:"" help:"Damage a ciphertext and decrypt it to show that errors are neither detected nor contained"` // nolint:lll
}

func parseCipherMode(mode string) (cripta.CipherMode, error) {
	switch mode {
	case "ecb", "":
		return cripta.CipherModeECB, nil
	case "cbc":
		return cripta.CipherModeCBC, nil
	case "cfb":
		return cripta.CipherModeCFB, nil
	case "ofb":
		return cripta.CipherModeOFB, nil
	case "ctr":
		return cripta.CipherModeCTR, nil
	default:
		return 0, fmt.Errorf("unknown cipher mode: %s", mode)
	}
}

func parsePaddingMode(padding string) (cripta.PaddingMode, error) {
	switch padding {
	case "marker", "":
		return cripta.PaddingModeMarker, nil
	case "zeros":
		return cripta.PaddingModeZeros, nil
	case "pkcs7":
		return cripta.PaddingModePKCS7, nil
	case "ansi":
		return cripta.PaddingModeANSIX923, nil
	case "iso":
		return cripta.PaddingModeISO10126, nil
	default:
		return 0, fmt.Errorf("unknown padding mode: %s", padding)
	}
}
