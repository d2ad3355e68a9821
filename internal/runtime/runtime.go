package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/esnya/ResoBotGW/internal/config"
	"github.com/esnya/ResoBotGW/internal/logging"
)

// Process exit codes returned by Run.
const (
	ExitOK         = 0
	ExitConfig     = 2
	ExitUnexpected = 3
)

// Runner is the agent application loop. Run blocks until the work is done or
// ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// RunnerFactory builds a Runner once configuration has been loaded. The
// logger already carries the run's correlation id.
type RunnerFactory func(cfg *config.Config, log *logging.Logger) (Runner, error)

// Options controls one Run.
type Options struct {
	// DryRun skips configuration loading and runner start-up.
	DryRun bool
	// Runner is used as-is when set.
	Runner Runner
	// NewRunner builds the runner from the loaded config when Runner is nil.
	// When both are nil a NoopRunner is used.
	NewRunner RunnerFactory
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime's logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConfigLoader replaces config.Load, mainly for tests.
func WithConfigLoader(load func() (*config.Config, error)) Option {
	return func(r *Runtime) {
		if load != nil {
			r.loadConfig = load
		}
	}
}

// Runtime owns the gateway lifecycle: configuration, runner selection and
// mapping failures to exit codes.
type Runtime struct {
	logger     *logging.Logger
	loadConfig func() (*config.Config, error)
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		logger:     logging.NopLogger(),
		loadConfig: config.Load,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run runs the gateway until the runner returns or ctx is cancelled and
// returns a process exit code. Success and context cancellation map to
// ExitOK, configuration errors to ExitConfig, anything else to
// ExitUnexpected.
func (r *Runtime) Run(ctx context.Context, opts Options) (code int) {
	cid := logging.NewCorrelationID()
	ctx = logging.ContextWithCorrelationID(ctx, cid)
	log := r.logger.WithCorrelationID(cid)
	log.Info("starting gateway", "dry_run", opts.DryRun)

	defer func() {
		if p := recover(); p != nil {
			log.Error("unexpected error", "panic", fmt.Sprint(p))
			code = ExitUnexpected
		}
	}()

	if opts.DryRun {
		log.Debug("dry run: skipping external service initialization")
		return ExitOK
	}

	cfg, err := r.loadConfig()
	if err != nil {
		log.Error("configuration error", "error", err.Error())
		return ExitConfig
	}

	runner, err := r.selectRunner(cfg, log, opts)
	if err != nil {
		return r.exitCode(log, err)
	}

	return r.exitCode(log, runner.Run(ctx))
}

func (r *Runtime) selectRunner(cfg *config.Config, log *logging.Logger, opts Options) (Runner, error) {
	switch {
	case opts.Runner != nil:
		return opts.Runner, nil
	case opts.NewRunner != nil:
		return opts.NewRunner(cfg, log)
	default:
		return NewNoopRunner(cfg.Runner.PollInterval(), log), nil
	}
}

func (r *Runtime) exitCode(log *logging.Logger, err error) int {
	var verrs config.ValidationErrors
	switch {
	case err == nil:
		log.Info("gateway stopped")
		return ExitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info("cancelled; shutting down cleanly")
		return ExitOK
	case errors.As(err, &verrs):
		log.Error("configuration error", "error", err.Error())
		return ExitConfig
	default:
		log.Error("unexpected error", "error", err.Error())
		return ExitUnexpected
	}
}
