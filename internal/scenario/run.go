package scenario

import (
	"context"
	"fmt"

	"github.com/esnya/ResoBotGW/internal/arbiter"
	"github.com/esnya/ResoBotGW/internal/coordinator"
	"github.com/esnya/ResoBotGW/internal/event"
	"github.com/esnya/ResoBotGW/internal/lock"
	"github.com/esnya/ResoBotGW/internal/logging"
)

// TickResult is the outcome of one replayed tick.
type TickResult struct {
	Index  int            `json:"index"`
	AtMs   int64          `json:"at_ms"`
	Report arbiter.Report `json:"report"`
	// Locks is the lock table after the tick.
	Locks []lock.Lock `json:"locks"`
}

// Options controls a replay.
type Options struct {
	// Bus receives the coordinator's events. A private bus is used if nil.
	Bus         *event.Bus
	CommitTopic string
	Logger      *logging.Logger
	// OnTick, if set, is called after every tick.
	OnTick func(TickResult)
}

// Run replays sc against a fresh arbiter whose clock follows the scenario's
// tick times. It stops at the first failed gather or when ctx is done and
// returns the ticks completed so far.
func Run(ctx context.Context, sc *Scenario, opts Options) ([]TickResult, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus(event.WithBusLogger(log))
	}

	feed := sc.Feed()
	arb := arbiter.New(
		arbiter.WithClock(feed.Clock()),
		arbiter.WithMatrix(sc.Matrix()),
		arbiter.WithLogger(log),
	)
	coord := coordinator.New(arb, bus,
		coordinator.WithCommitTopic(opts.CommitTopic),
		coordinator.WithLogger(log),
	)
	proposers := feed.Proposers()

	results := make([]TickResult, 0, len(sc.ticks))
	for feed.Advance() {
		tick, _ := feed.Current()
		report, err := coord.EvaluateAsync(ctx, proposers)
		if err != nil {
			return results, fmt.Errorf("tick %d: %w", tick.Index, err)
		}
		res := TickResult{
			Index:  tick.Index,
			AtMs:   tick.AtMs,
			Report: report,
			Locks:  arb.Locks(),
		}
		results = append(results, res)
		if opts.OnTick != nil {
			opts.OnTick(res)
		}
	}
	log.Debug("scenario replayed", "scenario", sc.Name, "ticks", len(results))
	return results, nil
}
