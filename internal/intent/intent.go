package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Sentinel errors returned by New and the parse helpers.
var (
	// ErrNoResources is returned when an intent requires no resources.
	ErrNoResources = errors.New("intent requires at least one resource")

	// ErrDuplicateResource is returned when a resource is listed more than once.
	ErrDuplicateResource = errors.New("duplicate resource")

	// ErrUnknownResource is returned for names outside the resource set.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrUnknownTier is returned for tiers outside reflex..planner.
	ErrUnknownTier = errors.New("unknown tier")

	// ErrEmptyAgent is returned when an intent has no owning agent.
	ErrEmptyAgent = errors.New("intent agent must be non-empty")

	// ErrInvalidScore is returned for NaN scores, which cannot be ordered.
	ErrInvalidScore = errors.New("intent score must be a number")
)

// Spec carries the fields used to build an Intent.
type Spec struct {
	Agent     string
	Kind      string
	Params    map[string]any
	Resources []Resource
	Score     float64
	HoldMs    int64
	Tier      Tier
}

// Intent is one proposed action: an agent asking for a set of resources for
// HoldMs milliseconds at a given tier. The zero value is not a valid intent;
// build one with New.
type Intent struct {
	agent     string
	kind      string
	params    map[string]any
	resources []Resource
	score     float64
	holdMs    int64
	tier      Tier
}

// New validates s and returns the corresponding Intent. Params and Resources
// are copied, so later changes to s do not leak into the Intent.
func New(s Spec) (Intent, error) {
	agent := strings.TrimSpace(s.Agent)
	if agent == "" {
		return Intent{}, ErrEmptyAgent
	}
	if len(s.Resources) == 0 {
		return Intent{}, fmt.Errorf("%s/%s: %w", agent, s.Kind, ErrNoResources)
	}
	seen := make(map[Resource]bool, len(s.Resources))
	for _, r := range s.Resources {
		if !r.Valid() {
			return Intent{}, fmt.Errorf("%s/%s: %w: %q", agent, s.Kind, ErrUnknownResource, string(r))
		}
		if seen[r] {
			return Intent{}, fmt.Errorf("%s/%s: %w: %s", agent, s.Kind, ErrDuplicateResource, r)
		}
		seen[r] = true
	}
	if !s.Tier.Valid() {
		return Intent{}, fmt.Errorf("%s/%s: %w: %d", agent, s.Kind, ErrUnknownTier, int(s.Tier))
	}
	if math.IsNaN(s.Score) {
		return Intent{}, fmt.Errorf("%s/%s: %w", agent, s.Kind, ErrInvalidScore)
	}

	params := maps.Clone(s.Params)
	if params == nil {
		params = map[string]any{}
	}
	return Intent{
		agent:     agent,
		kind:      s.Kind,
		params:    params,
		resources: slices.Clone(s.Resources),
		score:     s.Score,
		holdMs:    s.HoldMs,
		tier:      s.Tier,
	}, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and
// static tables.
func MustNew(s Spec) Intent {
	in, err := New(s)
	if err != nil {
		panic(err)
	}
	return in
}

func (i Intent) Agent() string  { return i.agent }
func (i Intent) Kind() string   { return i.kind }
func (i Intent) Score() float64 { return i.score }
func (i Intent) Tier() Tier     { return i.tier }

// HoldMs returns the requested hold duration as proposed.
func (i Intent) HoldMs() int64 { return i.holdMs }

// EffectiveHoldMs is the hold actually reserved on commit: at least 1ms, so a
// zero or negative hold still covers the instant it was committed at.
func (i Intent) EffectiveHoldMs() int64 {
	return max(1, i.holdMs)
}

// Resources returns a copy of the required resources in proposal order.
func (i Intent) Resources() []Resource {
	return slices.Clone(i.resources)
}

// Requires reports whether the intent needs r.
func (i Intent) Requires(r Resource) bool {
	return slices.Contains(i.resources, r)
}

// Params returns a copy of the opaque parameter payload.
func (i Intent) Params() map[string]any {
	return maps.Clone(i.params)
}

// Param returns a single parameter value.
func (i Intent) Param(key string) (any, bool) {
	v, ok := i.params[key]
	return v, ok
}

func (i Intent) String() string {
	names := make([]string, len(i.resources))
	for n, r := range i.resources {
		names[n] = string(r)
	}
	return fmt.Sprintf("%s/%s[%s tier=%s score=%g hold=%dms]",
		i.agent, i.kind, strings.Join(names, ","), i.tier, i.score, i.holdMs)
}

// jsonIntent is the wire shape used for events and reports.
type jsonIntent struct {
	Agent     string         `json:"agent"`
	Kind      string         `json:"kind"`
	Params    map[string]any `json:"params"`
	Resources []Resource     `json:"resources"`
	Score     float64        `json:"score"`
	HoldMs    int64          `json:"hold_ms"`
	Tier      Tier           `json:"tier"`
}

// MarshalJSON encodes the intent with its fields exposed.
func (i Intent) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonIntent{
		Agent:     i.agent,
		Kind:      i.kind,
		Params:    i.params,
		Resources: i.resources,
		Score:     i.score,
		HoldMs:    i.holdMs,
		Tier:      i.tier,
	})
}

// UnmarshalJSON decodes and validates an intent, so a decoded Intent obeys
// the same rules as one built with New.
func (i *Intent) UnmarshalJSON(data []byte) error {
	var raw jsonIntent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in, err := New(Spec(raw))
	if err != nil {
		return err
	}
	*i = in
	return nil
}
