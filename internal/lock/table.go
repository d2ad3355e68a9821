// Package lock provides the time-bounded resource lock table used by the
// arbiter.
//
// A [Table] maps each resource to at most one [Lock]. Locks are never removed
// in the background: [Table.Expire] sweeps them when the owner asks, which the
// arbiter does once at the start of every tick.
//
// # Thread Safety
//
// A Table is not safe for concurrent use. It is owned by exactly one arbiter,
// which serializes all access to it.
package lock

import (
	"fmt"
	"sort"

	"github.com/esnya/ResoBotGW/internal/intent"
)

// Lock is a claim on one resource by one agent until UntilMs.
type Lock struct {
	Resource intent.Resource `json:"resource"`
	Holder   string          `json:"holder"`
	Tier     intent.Tier     `json:"tier"`
	UntilMs  int64           `json:"until_ms"`
}

// LiveAt reports whether the lock still reserves its resource at nowMs.
// A lock whose UntilMs has been reached no longer blocks anything.
func (l Lock) LiveAt(nowMs int64) bool {
	return l.UntilMs > nowMs
}

func (l Lock) String() string {
	return fmt.Sprintf("%s held by %s (%s) until %d", l.Resource, l.Holder, l.Tier, l.UntilMs)
}

// Table holds the current lock for each resource.
type Table struct {
	locks map[intent.Resource]Lock
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{locks: make(map[intent.Resource]Lock)}
}

// Get returns the lock on r, live or not.
func (t *Table) Get(r intent.Resource) (Lock, bool) {
	l, ok := t.locks[r]
	return l, ok
}

// Live returns the lock on r only if it is still live at nowMs.
func (t *Table) Live(r intent.Resource, nowMs int64) (Lock, bool) {
	l, ok := t.locks[r]
	if !ok || !l.LiveAt(nowMs) {
		return Lock{}, false
	}
	return l, true
}

// Acquire installs a lock on r for holder, replacing any existing lock.
func (t *Table) Acquire(r intent.Resource, holder string, tier intent.Tier, untilMs int64) Lock {
	l := Lock{Resource: r, Holder: holder, Tier: tier, UntilMs: untilMs}
	t.locks[r] = l
	return l
}

// Release removes the lock on r and returns it.
func (t *Table) Release(r intent.Resource) (Lock, bool) {
	l, ok := t.locks[r]
	if ok {
		delete(t.locks, r)
	}
	return l, ok
}

// Expire removes every lock whose UntilMs is at or before nowMs and returns
// the removed locks in canonical resource order.
func (t *Table) Expire(nowMs int64) []Lock {
	var expired []Lock
	for r, l := range t.locks {
		if !l.LiveAt(nowMs) {
			expired = append(expired, l)
			delete(t.locks, r)
		}
	}
	sortLocks(expired)
	return expired
}

// HeldBy returns the resources currently locked by holder, in canonical order.
func (t *Table) HeldBy(holder string) []intent.Resource {
	var out []intent.Resource
	for r, l := range t.locks {
		if l.Holder == holder {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// Snapshot returns a copy of every lock in canonical resource order.
func (t *Table) Snapshot() []Lock {
	out := make([]Lock, 0, len(t.locks))
	for _, l := range t.locks {
		out = append(out, l)
	}
	sortLocks(out)
	return out
}

// Len returns the number of locks held, including ones not yet swept.
func (t *Table) Len() int {
	return len(t.locks)
}

func sortLocks(locks []Lock) {
	sort.Slice(locks, func(i, j int) bool {
		return locks[i].Resource.Index() < locks[j].Resource.Index()
	})
}
