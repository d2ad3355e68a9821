// Package compat holds the resource compatibility relation consulted by the
// arbiter when deciding whether two intents may be committed in the same tick.
//
// The relation is symmetric. A resource is always incompatible with itself;
// every other pair is compatible unless a [Builder] explicitly bans it. A
// built [Matrix] is immutable and safe to share between arbiters.
package compat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/esnya/ResoBotGW/internal/intent"
)

type pair struct {
	a, b intent.Resource
}

// key orders the pair so (a, b) and (b, a) share one entry.
func key(a, b intent.Resource) pair {
	if a.Index() > b.Index() || (a.Index() == b.Index() && a > b) {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

// Matrix answers whether two resources may be held by different intents
// committed in the same tick.
type Matrix struct {
	banned map[pair]struct{}
}

// Default returns the matrix with only self-conflicts banned.
func Default() Matrix {
	return NewBuilder().Build()
}

// Allowed reports whether a and b may be used simultaneously by two
// different intents.
func (m Matrix) Allowed(a, b intent.Resource) bool {
	if a == b {
		return false
	}
	_, banned := m.banned[key(a, b)]
	return !banned
}

// Compatible reports whether two resource sets can be committed together.
// Every cross pair is checked, not only matching resources, so explicit
// cross-resource bans are honored.
func (m Matrix) Compatible(as, bs []intent.Resource) bool {
	for _, a := range as {
		for _, b := range bs {
			if !m.Allowed(a, b) {
				return false
			}
		}
	}
	return true
}

// Bans returns the explicit cross-resource bans as "a|b" strings, sorted.
// Self-conflicts are implicit and not listed.
func (m Matrix) Bans() []string {
	out := make([]string, 0, len(m.banned))
	for p := range m.banned {
		out = append(out, string(p.a)+"|"+string(p.b))
	}
	sort.Strings(out)
	return out
}

// Builder accumulates bans before producing an immutable Matrix.
type Builder struct {
	banned map[pair]struct{}
}

// NewBuilder returns a Builder with no explicit bans.
func NewBuilder() *Builder {
	return &Builder{banned: make(map[pair]struct{})}
}

// Ban forbids a and b from being committed together, in both directions.
// Banning a resource with itself is accepted and has no further effect.
func (b *Builder) Ban(x, y intent.Resource) *Builder {
	if x != y {
		b.banned[key(x, y)] = struct{}{}
	}
	return b
}

// BanNames is like Ban but parses resource names, as read from config.
func (b *Builder) BanNames(pairs ...string) error {
	for _, p := range pairs {
		left, right, ok := strings.Cut(p, "|")
		if !ok {
			return fmt.Errorf("compat: ban %q must have the form a|b", p)
		}
		x, err := intent.ParseResource(left)
		if err != nil {
			return fmt.Errorf("compat: ban %q: %w", p, err)
		}
		y, err := intent.ParseResource(right)
		if err != nil {
			return fmt.Errorf("compat: ban %q: %w", p, err)
		}
		b.Ban(x, y)
	}
	return nil
}

// Build returns an immutable Matrix. The builder may keep being used; later
// bans do not affect matrices already built.
func (b *Builder) Build() Matrix {
	banned := make(map[pair]struct{}, len(b.banned))
	for p := range b.banned {
		banned[p] = struct{}{}
	}
	return Matrix{banned: banned}
}
