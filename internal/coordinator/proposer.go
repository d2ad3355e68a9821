package coordinator

import (
	"context"
	"fmt"

	"github.com/esnya/ResoBotGW/internal/intent"
)

// Proposer supplies intents for the current tick.
type Proposer interface {
	Propose() []intent.Intent
}

// AsyncProposer supplies intents for the current tick and may block. It
// should return promptly once ctx is done.
type AsyncProposer interface {
	Propose(ctx context.Context) ([]intent.Intent, error)
}

// ProposerFunc adapts a plain function to Proposer.
type ProposerFunc func() []intent.Intent

// Propose calls f.
func (f ProposerFunc) Propose() []intent.Intent { return f() }

// AsyncProposerFunc adapts a function to AsyncProposer.
type AsyncProposerFunc func(ctx context.Context) ([]intent.Intent, error)

// Propose calls f.
func (f AsyncProposerFunc) Propose(ctx context.Context) ([]intent.Intent, error) { return f(ctx) }

// Static returns a Proposer that always proposes the given intents.
func Static(intents ...intent.Intent) Proposer {
	return ProposerFunc(func() []intent.Intent { return intents })
}

// Async lifts a Proposer into an AsyncProposer that never fails.
func Async(p Proposer) AsyncProposer {
	return AsyncProposerFunc(func(context.Context) ([]intent.Intent, error) {
		return p.Propose(), nil
	})
}

// named is implemented by proposers that have a display name.
type named interface {
	Name() string
}

func proposerName(p any, index int) string {
	if n, ok := p.(named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("proposer[%d]", index)
}
