package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/esnya/ResoBotGW/internal/compat"
	"github.com/esnya/ResoBotGW/internal/coordinator"
	"github.com/esnya/ResoBotGW/internal/intent"
)

// Proposal is one intent as written in a scenario file.
type Proposal struct {
	Agent     string            `yaml:"agent"`
	Kind      string            `yaml:"kind"`
	Params    map[string]any    `yaml:"params,omitempty"`
	Resources []intent.Resource `yaml:"resources"`
	Score     float64           `yaml:"score,omitempty"`
	HoldMs    int64             `yaml:"hold_ms,omitempty"`
	Tier      *intent.Tier      `yaml:"tier"`
}

// Step is one tick as written in a scenario file. AtMs sets the tick time
// absolutely; AdvanceMs moves it relative to the previous tick. With
// neither, the tick happens at the previous tick's time (or start_ms).
type Step struct {
	AtMs      *int64     `yaml:"at_ms,omitempty"`
	AdvanceMs *int64     `yaml:"advance_ms,omitempty"`
	Proposals []Proposal `yaml:"proposals"`
}

// Scenario is a scripted sequence of ticks replayed against a stepped clock.
type Scenario struct {
	Name      string                  `yaml:"name"`
	StartMs   int64                   `yaml:"start_ms"`
	Agents    []coordinator.AgentSpec `yaml:"agents,omitempty"`
	CrossBans []string                `yaml:"cross_bans,omitempty"`
	Steps     []Step                  `yaml:"ticks"`

	ticks  []Tick
	agents []string
	matrix compat.Matrix
}

// Tick is a compiled step: its resolved time and validated intents.
type Tick struct {
	Index   int
	AtMs    int64
	Intents []intent.Intent
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a YAML scenario and validates every tick and proposal.
// Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario is empty")
		}
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.compile(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) compile() error {
	for _, a := range s.Agents {
		if err := a.Validate(); err != nil {
			return err
		}
	}

	b := compat.NewBuilder()
	if err := b.BanNames(s.CrossBans...); err != nil {
		return err
	}
	s.matrix = b.Build()

	now := s.StartMs
	s.ticks = make([]Tick, 0, len(s.Steps))
	s.agents = s.agents[:0]
	for i, step := range s.Steps {
		switch {
		case step.AtMs != nil && step.AdvanceMs != nil:
			return fmt.Errorf("tick %d: at_ms and advance_ms are mutually exclusive", i)
		case step.AtMs != nil:
			if *step.AtMs < now {
				return fmt.Errorf("tick %d: at_ms %d is before the previous tick (%d)", i, *step.AtMs, now)
			}
			now = *step.AtMs
		case step.AdvanceMs != nil:
			if *step.AdvanceMs < 0 {
				return fmt.Errorf("tick %d: advance_ms must be non-negative", i)
			}
			now += *step.AdvanceMs
		}

		tick := Tick{Index: i, AtMs: now}
		for j, p := range step.Proposals {
			if p.Tier == nil {
				return fmt.Errorf("tick %d proposal %d: tier is required", i, j)
			}
			in, err := intent.New(intent.Spec{
				Agent:     p.Agent,
				Kind:      p.Kind,
				Params:    p.Params,
				Resources: p.Resources,
				Score:     p.Score,
				HoldMs:    p.HoldMs,
				Tier:      *p.Tier,
			})
			if err != nil {
				return fmt.Errorf("tick %d proposal %d: %w", i, j, err)
			}
			tick.Intents = append(tick.Intents, in)
			if !slices.Contains(s.agents, in.Agent()) {
				s.agents = append(s.agents, in.Agent())
			}
		}
		s.ticks = append(s.ticks, tick)
	}
	return nil
}

// Ticks returns the compiled ticks in order.
func (s *Scenario) Ticks() []Tick {
	return slices.Clone(s.ticks)
}

// AgentNames returns every proposing agent in order of first appearance.
func (s *Scenario) AgentNames() []string {
	return slices.Clone(s.agents)
}

// Matrix returns the compatibility matrix for the scenario's cross bans.
func (s *Scenario) Matrix() compat.Matrix {
	return s.matrix
}

// AgentSpec returns the declared spec for name, or a bare spec naming it.
func (s *Scenario) AgentSpec(name string) coordinator.AgentSpec {
	for _, a := range s.Agents {
		if a.Name == name {
			return a
		}
	}
	return coordinator.AgentSpec{Name: name}
}
