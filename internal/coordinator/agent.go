package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/esnya/ResoBotGW/internal/intent"
)

// ReasoningEffort is the reasoning budget requested from an agent's model.
type ReasoningEffort string

const (
	ReasoningMinimal ReasoningEffort = "minimal"
	ReasoningLow     ReasoningEffort = "low"
	ReasoningMedium  ReasoningEffort = "medium"
	ReasoningHigh    ReasoningEffort = "high"
)

// ReasoningEfforts returns the accepted efforts from cheapest to most
// expensive.
func ReasoningEfforts() []ReasoningEffort {
	return []ReasoningEffort{ReasoningMinimal, ReasoningLow, ReasoningMedium, ReasoningHigh}
}

// Valid reports whether e is one of the known efforts.
func (e ReasoningEffort) Valid() bool {
	switch e {
	case ReasoningMinimal, ReasoningLow, ReasoningMedium, ReasoningHigh:
		return true
	}
	return false
}

// ParseReasoningEffort parses an effort name case-insensitively.
func ParseReasoningEffort(s string) (ReasoningEffort, error) {
	e := ReasoningEffort(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("invalid reasoning effort %q (valid: minimal, low, medium, high)", s)
	}
	return e, nil
}

// AgentSpec describes an agent taking part in arbitration. Model and
// Instructions are carried for the model adapter; the coordinator only uses
// Name.
type AgentSpec struct {
	Name         string          `yaml:"name" json:"name"`
	Model        string          `yaml:"model,omitempty" json:"model,omitempty"`
	Instructions string          `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	Reasoning    ReasoningEffort `yaml:"reasoning,omitempty" json:"reasoning,omitempty"`
}

// Validate checks that the spec names the agent and, if set, uses a known
// reasoning effort.
func (s AgentSpec) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("agent name must be non-empty"))
	}
	if s.Reasoning != "" && !s.Reasoning.Valid() {
		errs = append(errs, fmt.Errorf("agent %q: invalid reasoning effort %q", s.Name, s.Reasoning))
	}
	return errors.Join(errs...)
}

// AgentProposer is an AsyncProposer bound to an agent. Intents it returns
// must be owned by that agent.
type AgentProposer struct {
	spec   AgentSpec
	source AsyncProposer
}

// NewAgentProposer validates spec and wraps source.
func NewAgentProposer(spec AgentSpec, source AsyncProposer) (*AgentProposer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("agent %q: proposer must be non-nil", spec.Name)
	}
	return &AgentProposer{spec: spec, source: source}, nil
}

// Spec returns the agent's spec.
func (p *AgentProposer) Spec() AgentSpec { return p.spec }

// Name returns the agent name.
func (p *AgentProposer) Name() string { return p.spec.Name }

// Propose asks the wrapped source for intents and checks their ownership.
func (p *AgentProposer) Propose(ctx context.Context) ([]intent.Intent, error) {
	got, err := p.source.Propose(ctx)
	if err != nil {
		return nil, err
	}
	for _, in := range got {
		if in.Agent() != p.spec.Name {
			return nil, fmt.Errorf("agent %q proposed intent owned by %q", p.spec.Name, in.Agent())
		}
	}
	return got, nil
}
