package runtime

import (
	"context"
	"time"

	"github.com/esnya/ResoBotGW/internal/arbiter"
	"github.com/esnya/ResoBotGW/internal/coordinator"
	"github.com/esnya/ResoBotGW/internal/logging"
)

// NoopRunner idles until cancelled. It stands in until a model adapter is
// configured.
type NoopRunner struct {
	PollInterval time.Duration
	Logger       *logging.Logger
}

// NewNoopRunner creates a NoopRunner. A non-positive interval uses 500ms.
func NewNoopRunner(poll time.Duration, log *logging.Logger) *NoopRunner {
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	if log == nil {
		log = logging.NopLogger()
	}
	return &NoopRunner{PollInterval: poll, Logger: log}
}

// Run blocks until ctx is done and returns ctx.Err().
func (n *NoopRunner) Run(ctx context.Context) error {
	n.Logger.Warn("noop runner active: agent orchestration not configured")

	ticker := time.NewTicker(n.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			n.Logger.Info("noop runner cancelled; shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TickLoop drives a Coordinator at a fixed interval with concurrent
// proposers. A failed gather is logged and the loop moves on to the next
// tick.
type TickLoop struct {
	Coordinator *coordinator.Coordinator
	Proposers   []coordinator.AsyncProposer
	Interval    time.Duration
	Logger      *logging.Logger

	// Next, if set, is called before every tick; returning false ends the
	// loop successfully.
	Next func() bool
	// OnReport, if set, receives every decided tick.
	OnReport func(arbiter.Report)
}

// Run ticks until ctx is cancelled or Next reports no more work.
func (l *TickLoop) Run(ctx context.Context) error {
	log := l.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	interval := l.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var tick uint64
	for {
		if l.Next != nil && !l.Next() {
			log.Info("tick loop finished", "ticks", tick)
			return nil
		}
		tick++

		report, err := l.Coordinator.EvaluateAsync(ctx, l.Proposers)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			log.WithTick(tick).Warn("tick skipped", "error", err.Error())
		case l.OnReport != nil:
			l.OnReport(report)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
