package intent

import (
	"fmt"
	"strings"
)

// Tier is a priority class. Lower values are higher priority.
type Tier int

const (
	Reflex Tier = iota
	Safety
	Activity
	Planner
)

var tierNames = [...]string{
	Reflex:   "reflex",
	Safety:   "safety",
	Activity: "activity",
	Planner:  "planner",
}

// Tiers returns every tier from highest to lowest priority.
func Tiers() []Tier {
	return []Tier{Reflex, Safety, Activity, Planner}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= Reflex && t <= Planner
}

// Outranks reports whether t has strictly higher priority than other.
func (t Tier) Outranks(other Tier) bool {
	return t < other
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseTier converts a tier name ("reflex", "Safety", ...) or its ordinal
// ("0".."3") to a Tier.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if name == n || name == fmt.Sprint(i) {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts either a tier name or its ordinal.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
