package intent

import (
	"fmt"
	"strings"
)

// Resource is a contended, physically embodied capability.
type Resource string

const (
	Speech     Resource = "speech"
	Locomotion Resource = "locomotion"
	Head       Resource = "head"
	HandLeft   Resource = "handsL"
	HandRight  Resource = "handsR"
	UI         Resource = "ui"
	Sensors    Resource = "sensors"
)

var allResources = []Resource{Speech, Locomotion, Head, HandLeft, HandRight, UI, Sensors}

// All returns every resource in canonical order.
func All() []Resource {
	out := make([]Resource, len(allResources))
	copy(out, allResources)
	return out
}

// Index returns the position of r in canonical order, or -1 if r is unknown.
func (r Resource) Index() int {
	for i, known := range allResources {
		if r == known {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the known resources.
func (r Resource) Valid() bool {
	return r.Index() >= 0
}

func (r Resource) String() string { return string(r) }

// ParseResource converts a name to a Resource. Matching is case-insensitive,
// so "handsl" and "handsL" both resolve to HandLeft.
func ParseResource(s string) (Resource, error) {
	name := strings.TrimSpace(s)
	for _, r := range allResources {
		if strings.EqualFold(name, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

// UnmarshalText lets scenario files and JSON payloads name resources loosely.
func (r *Resource) UnmarshalText(text []byte) error {
	parsed, err := ParseResource(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
