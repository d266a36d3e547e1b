package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/nPaBwaYT/magma/cripta"
	"github.com/nPaBwaYT/magma/logging"
	"github.com/nPaBwaYT/magma/metrics"
	"github.com/nPaBwaYT/magma/validation"
)

// Container holds the process-wide services a command needs.
type Container struct {
	Logger   *zerolog.Logger
	Clock    clockwork.Clock
	Validate *validator.Validate
	Metrics  *metrics.Collector
	Tracker  *cripta.UsageTracker
}

func provideUsageTracker(
	limits cripta.UsageLimits,
	validate *validator.Validate,
	logger *zerolog.Logger,
) (*cripta.UsageTracker, error) {
	if err := validate.Struct(limits); err != nil {
		return nil, fmt.Errorf("invalid usage limits: %w", err)
	}
	return cripta.NewUsageTracker(limits, logger)
}

type Builder struct {
	opts []fx.Option
}

func NewBuilder(opts ...fx.Option) *Builder {
	return &Builder{
		opts: opts,
	}
}

func (b *Builder) Add(opts ...fx.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

func (b *Builder) Build() *fx.App {
	return fx.New(b.opts...)
}

// Container resolves the services without starting any lifecycle hooks.
func (b *Builder) Container() (*Container, error) {
	var c Container
	app := fx.New(append(b.opts,
		fx.Populate(&c.Logger, &c.Clock, &c.Validate, &c.Metrics, &c.Tracker),
	)...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

var Module = fx.Module("application",
	fx.Invoke(logging.NoGlobal),
	fx.Provide(clockwork.NewRealClock),
	fx.Provide(validation.New),
	fx.Provide(metrics.New),
	fx.Provide(provideUsageTracker),
)
