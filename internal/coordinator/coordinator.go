package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/esnya/ResoBotGW/internal/arbiter"
	"github.com/esnya/ResoBotGW/internal/event"
	"github.com/esnya/ResoBotGW/internal/intent"
	"github.com/esnya/ResoBotGW/internal/logging"
)

// ErrGatherFailed wraps the first proposer failure of a concurrent gather.
var ErrGatherFailed = errors.New("gather failed")

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCommitTopic sets the topic commit events are published on. An empty
// topic keeps the default.
func WithCommitTopic(topic string) Option {
	return func(c *Coordinator) {
		if topic != "" {
			c.topic = topic
		}
	}
}

// WithGatherTimeout bounds how long TickAsync waits for proposers. Zero
// means no bound.
func WithGatherTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.gatherTimeout = d }
}

// WithLogger sets the coordinator's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator gathers proposals, hands them to an Arbiter and announces the
// committed batch on the bus.
type Coordinator struct {
	arbiter       *arbiter.Arbiter
	bus           *event.Bus
	topic         string
	gatherTimeout time.Duration
	logger        *logging.Logger
}

// New creates a Coordinator for arb publishing on bus.
func New(arb *arbiter.Arbiter, bus *event.Bus, opts ...Option) *Coordinator {
	c := &Coordinator{
		arbiter: arb,
		bus:     bus,
		topic:   event.DefaultCommitTopic,
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Topic returns the commit topic.
func (c *Coordinator) Topic() string { return c.topic }

// Arbiter returns the arbiter the coordinator decides with.
func (c *Coordinator) Arbiter() *arbiter.Arbiter { return c.arbiter }

// Tick asks each proposer in order, arbitrates the concatenated proposals
// and returns the committed intents.
func (c *Coordinator) Tick(proposers []Proposer) []intent.Intent {
	return c.Evaluate(proposers).Committed
}

// Evaluate is Tick returning the full report.
func (c *Coordinator) Evaluate(proposers []Proposer) arbiter.Report {
	var proposals []intent.Intent
	for _, p := range proposers {
		proposals = append(proposals, p.Propose()...)
	}
	return c.decide(proposals)
}

// TickAsync runs all proposers concurrently and waits for every one of them.
// If any proposer fails, no decision is made and the returned error wraps
// ErrGatherFailed. If ctx is cancelled during the gather, ctx's error is
// returned and no decision is made.
func (c *Coordinator) TickAsync(ctx context.Context, proposers []AsyncProposer) ([]intent.Intent, error) {
	report, err := c.EvaluateAsync(ctx, proposers)
	if err != nil {
		return nil, err
	}
	return report.Committed, nil
}

// EvaluateAsync is TickAsync returning the full report.
func (c *Coordinator) EvaluateAsync(ctx context.Context, proposers []AsyncProposer) (arbiter.Report, error) {
	proposals, err := c.gather(ctx, proposers)
	if err != nil {
		return arbiter.Report{}, err
	}
	return c.decide(proposals), nil
}

func (c *Coordinator) gather(ctx context.Context, proposers []AsyncProposer) ([]intent.Intent, error) {
	gctx := ctx
	if c.gatherTimeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, c.gatherTimeout)
		defer cancel()
	}

	results := make([][]intent.Intent, len(proposers))
	g, gctx := errgroup.WithContext(gctx)
	for i, p := range proposers {
		g.Go(func() error {
			got, err := p.Propose(gctx)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrGatherFailed, proposerName(p, i), err)
			}
			results[i] = got
			return nil
		})
	}
	err := g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		c.logger.Debug("gather cancelled", "proposers", len(proposers))
		return nil, ctxErr
	}
	if err != nil {
		c.logger.Warn("gather failed", "error", err.Error())
		if c.bus != nil {
			c.bus.Publish(event.NewGatherFailedEvent(err))
		}
		return nil, err
	}

	var proposals []intent.Intent
	for _, r := range results {
		proposals = append(proposals, r...)
	}
	return proposals, nil
}

func (c *Coordinator) decide(proposals []intent.Intent) arbiter.Report {
	report := c.arbiter.Evaluate(proposals)
	c.logger.Debug("tick decided",
		"now_ms", report.NowMs,
		"proposed", len(proposals),
		"committed", len(report.Committed),
		"rejected", len(report.Rejected))

	if c.bus == nil {
		return report
	}
	for _, p := range report.Preempted {
		c.bus.Publish(event.NewLockPreemptedEvent(p.Lock, p.By, report.NowMs))
	}
	if len(report.Committed) > 0 {
		c.bus.Publish(event.NewCommitEvent(c.topic, report.Committed, report.NowMs))
	}
	return report
}
