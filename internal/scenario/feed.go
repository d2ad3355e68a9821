package scenario

import (
	"context"
	"sync"

	"github.com/esnya/ResoBotGW/internal/arbiter"
	"github.com/esnya/ResoBotGW/internal/coordinator"
	"github.com/esnya/ResoBotGW/internal/intent"
)

// Feed walks a scenario one tick at a time. Its proposers report the
// current tick's intents for their agent, and its clock reports the current
// tick's time. A Feed is safe for concurrent use by proposers.
type Feed struct {
	sc  *Scenario
	mu  sync.RWMutex
	pos int
}

// Feed returns a Feed positioned before the first tick.
func (s *Scenario) Feed() *Feed {
	return &Feed{sc: s, pos: -1}
}

// Advance moves to the next tick and reports whether one exists.
func (f *Feed) Advance() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pos < len(f.sc.ticks) {
		f.pos++
	}
	return f.pos < len(f.sc.ticks)
}

// Current returns the tick the feed is positioned on.
func (f *Feed) Current() (Tick, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.pos < 0 || f.pos >= len(f.sc.ticks) {
		return Tick{}, false
	}
	return f.sc.ticks[f.pos], true
}

// Clock reports the current tick's time, or start_ms before the first
// tick.
func (f *Feed) Clock() arbiter.Clock {
	return func() int64 {
		if t, ok := f.Current(); ok {
			return t.AtMs
		}
		return f.sc.StartMs
	}
}

// Proposers returns one proposer per agent in order of first appearance.
func (f *Feed) Proposers() []coordinator.AsyncProposer {
	out := make([]coordinator.AsyncProposer, 0, len(f.sc.agents))
	for _, name := range f.sc.agents {
		p, err := coordinator.NewAgentProposer(f.sc.AgentSpec(name), f.source(name))
		if err != nil {
			// Agent names come from validated intents, so the spec is valid.
			panic(err)
		}
		out = append(out, p)
	}
	return out
}

func (f *Feed) source(agent string) coordinator.AsyncProposer {
	return coordinator.AsyncProposerFunc(func(ctx context.Context) ([]intent.Intent, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, ok := f.Current()
		if !ok {
			return nil, nil
		}
		var mine []intent.Intent
		for _, in := range t.Intents {
			if in.Agent() == agent {
				mine = append(mine, in)
			}
		}
		return mine, nil
	})
}
