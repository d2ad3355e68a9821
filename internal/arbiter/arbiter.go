package arbiter

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/esnya/ResoBotGW/internal/compat"
	"github.com/esnya/ResoBotGW/internal/intent"
	"github.com/esnya/ResoBotGW/internal/lock"
	"github.com/esnya/ResoBotGW/internal/logging"
)

// Clock returns the current time in milliseconds. It must be monotonic.
type Clock func() int64

// SystemClock returns a Clock anchored at the current wall time that advances
// with the monotonic clock, so wall-clock adjustments never move it backwards.
func SystemClock() Clock {
	start := time.Now()
	base := start.UnixMilli()
	return func() int64 {
		return base + time.Since(start).Milliseconds()
	}
}

// FixedClock returns a Clock that always reports ms.
func FixedClock(ms int64) Clock {
	return func() int64 { return ms }
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithClock sets the time source. The default is SystemClock.
func WithClock(c Clock) Option {
	return func(a *Arbiter) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithMatrix sets the compatibility matrix. The default bans only
// self-conflicts.
func WithMatrix(m compat.Matrix) Option {
	return func(a *Arbiter) { a.matrix = m }
}

// WithLogger sets the logger used for per-tick debug output.
func WithLogger(l *logging.Logger) Option {
	return func(a *Arbiter) {
		if l != nil {
			a.logger = l
		}
	}
}

// Arbiter owns the lock table and commits compatible, priority-respecting
// subsets of proposals.
type Arbiter struct {
	mu     sync.Mutex
	clock  Clock
	matrix compat.Matrix
	locks  *lock.Table
	logger *logging.Logger
	ticks  uint64
}

// New creates an Arbiter with an empty lock table.
func New(opts ...Option) *Arbiter {
	a := &Arbiter{
		clock:  SystemClock(),
		matrix: compat.Default(),
		locks:  lock.NewTable(),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tick evaluates proposals at the current time and returns the committed
// intents in commitment order.
func (a *Arbiter) Tick(proposals []intent.Intent) []intent.Intent {
	return a.Evaluate(proposals).Committed
}

// Evaluate runs one tick and returns the full decision report.
func (a *Arbiter) Evaluate(proposals []intent.Intent) Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	a.ticks++
	log := a.logger.WithTick(a.ticks)

	report := Report{
		NowMs:     now,
		Committed: make([]intent.Intent, 0, len(proposals)),
		Expired:   a.locks.Expire(now),
	}
	for _, l := range report.Expired {
		log.Debug("lock expired", "resource", string(l.Resource), "holder", l.Holder, "until_ms", l.UntilMs)
	}

	for _, candidate := range order(proposals) {
		if rej, ok := a.conflicting(candidate, report.Committed); ok {
			report.Rejected = append(report.Rejected, rej)
			log.Debug("intent rejected", "intent", candidate.String(), "reason", string(rej.Reason), "blocker", rej.Blocker)
			continue
		}

		preemptable, rej, ok := a.inspectLocks(candidate, now)
		if !ok {
			report.Rejected = append(report.Rejected, rej)
			log.Debug("intent rejected", "intent", candidate.String(), "reason", string(rej.Reason),
				"resource", string(rej.Resource), "blocker", rej.Blocker)
			continue
		}

		for _, r := range preemptable {
			evicted, _ := a.locks.Release(r)
			report.Preempted = append(report.Preempted, Preemption{Lock: evicted, By: candidate})
			log.Debug("lock preempted", "resource", string(r), "holder", evicted.Holder,
				"holder_tier", evicted.Tier.String(), "by", candidate.Agent())
		}

		until := now + candidate.EffectiveHoldMs()
		for _, r := range candidate.Resources() {
			a.locks.Acquire(r, candidate.Agent(), candidate.Tier(), until)
		}
		report.Committed = append(report.Committed, candidate)
		log.Debug("intent committed", "intent", candidate.String(), "until_ms", until)
	}

	return report
}

// Locks returns a snapshot of the lock table in canonical resource order.
// The snapshot may include locks that have passed their expiry but have not
// yet been swept by a tick.
func (a *Arbiter) Locks() []lock.Lock {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.locks.Snapshot()
}

// Matrix returns the compatibility matrix in use.
func (a *Arbiter) Matrix() compat.Matrix {
	return a.matrix
}

// order returns a stably sorted copy: tier ascending, then score descending.
func order(proposals []intent.Intent) []intent.Intent {
	ordered := slices.Clone(proposals)
	slices.SortStableFunc(ordered, func(x, y intent.Intent) int {
		if c := cmp.Compare(x.Tier(), y.Tier()); c != 0 {
			return c
		}
		return cmp.Compare(y.Score(), x.Score())
	})
	return ordered
}

// conflicting reports the first already-committed intent the candidate
// cannot coexist with.
func (a *Arbiter) conflicting(candidate intent.Intent, committed []intent.Intent) (Rejection, bool) {
	res := candidate.Resources()
	for _, c := range committed {
		if !a.matrix.Compatible(res, c.Resources()) {
			return Rejection{
				Intent:  candidate,
				Reason:  ReasonConflict,
				Blocker: c.Agent(),
			}, true
		}
	}
	return Rejection{}, false
}

// inspectLocks classifies the live locks on the candidate's resources. It
// returns the resources whose locks may be preempted, or a rejection when a
// lock of equal or higher priority stands in the way.
func (a *Arbiter) inspectLocks(candidate intent.Intent, now int64) ([]intent.Resource, Rejection, bool) {
	var preemptable []intent.Resource
	for _, r := range candidate.Resources() {
		held, live := a.locks.Live(r, now)
		if !live {
			continue
		}
		switch {
		case candidate.Tier().Outranks(held.Tier):
			preemptable = append(preemptable, r)
		case held.Tier == candidate.Tier():
			return nil, Rejection{Intent: candidate, Reason: ReasonSameTier, Resource: r, Blocker: held.Holder}, false
		default:
			return nil, Rejection{Intent: candidate, Reason: ReasonHigherTier, Resource: r, Blocker: held.Holder}, false
		}
	}
	return preemptable, Rejection{}, true
}
