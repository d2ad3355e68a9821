package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/esnya/ResoBotGW/internal/arbiter"
	"github.com/esnya/ResoBotGW/internal/compat"
	"github.com/esnya/ResoBotGW/internal/config"
	"github.com/esnya/ResoBotGW/internal/coordinator"
	"github.com/esnya/ResoBotGW/internal/event"
	"github.com/esnya/ResoBotGW/internal/logging"
	"github.com/esnya/ResoBotGW/internal/runtime"
	"github.com/esnya/ResoBotGW/internal/scenario"
)

var (
	runDryRun   bool
	runLogLevel string
	runScenario string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway runtime and block until SIGINT or SIGTERM.

With --scenario, the tick loop replays the proposals scripted in the file
through the arbiter at the configured tick interval. Without it the gateway
idles until stopped.

Exit codes: 0 on success or cancellation, 2 on configuration errors,
3 on unexpected errors.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "skip configuration validation and external initialization")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "drive the tick loop from a scenario file")
}

func runRun(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("log-level") {
		viper.Set("logging.level", runLogLevel)
	}

	log, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return &ExitError{Code: runtime.ExitConfig}
	}
	defer func() { _ = log.Close() }()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := runtime.Options{DryRun: runDryRun}
	if runScenario != "" {
		opts.NewRunner = scenarioRunner(runScenario)
	}

	code := runtime.New(runtime.WithLogger(log)).Run(ctx, opts)
	if code != runtime.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

// scenarioRunner returns a factory for a TickLoop fed by the scenario at
// path. The scenario's clock drives the arbiter and its cross bans are
// added to the configured ones.
func scenarioRunner(path string) runtime.RunnerFactory {
	return func(cfg *config.Config, log *logging.Logger) (runtime.Runner, error) {
		sc, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}

		b := compat.NewBuilder()
		if err := b.BanNames(cfg.Arbiter.CrossBans...); err != nil {
			return nil, err
		}
		if err := b.BanNames(sc.Matrix().Bans()...); err != nil {
			return nil, err
		}

		feed := sc.Feed()
		bus := event.NewBus(event.WithBusLogger(log))
		arb := arbiter.New(
			arbiter.WithClock(feed.Clock()),
			arbiter.WithMatrix(b.Build()),
			arbiter.WithLogger(log),
		)
		coord := coordinator.New(arb, bus,
			coordinator.WithCommitTopic(cfg.Arbiter.CommitTopic),
			coordinator.WithGatherTimeout(cfg.Arbiter.GatherTimeout()),
			coordinator.WithLogger(log),
		)

		if _, err := bus.Subscribe(coord.Topic(), func(e event.Event) {
			ce := e.(event.CommitEvent)
			for _, in := range ce.Intents {
				log.WithAgent(in.Agent()).Info("intent committed",
					"kind", in.Kind(), "tier", in.Tier().String(), "now_ms", ce.NowMs)
			}
		}); err != nil {
			return nil, err
		}
		if _, err := bus.Subscribe(event.TopicLockPreempted, func(e event.Event) {
			pe := e.(event.LockPreemptedEvent)
			log.WithAgent(pe.Lock.Holder).Info("lock preempted",
				"resource", pe.Lock.Resource.String(), "by", pe.By.Agent())
		}); err != nil {
			return nil, err
		}

		log.Info("scenario loaded", "scenario", sc.Name, "ticks", len(sc.Ticks()), "agents", len(sc.AgentNames()))
		return &runtime.TickLoop{
			Coordinator: coord,
			Proposers:   feed.Proposers(),
			Interval:    cfg.Arbiter.TickInterval(),
			Logger:      log,
			Next:        feed.Advance,
		}, nil
	}
}
