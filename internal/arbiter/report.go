package arbiter

import (
	"github.com/esnya/ResoBotGW/internal/intent"
	"github.com/esnya/ResoBotGW/internal/lock"
)

// RejectReason explains why an intent was left out of a tick's commit set.
type RejectReason string

const (
	// ReasonConflict: incompatible with an intent committed earlier in the
	// same tick.
	ReasonConflict RejectReason = "conflict"

	// ReasonHigherTier: a resource is locked by a higher-priority tier.
	ReasonHigherTier RejectReason = "held_by_higher_tier"

	// ReasonSameTier: a resource is locked by the same tier, which cannot be
	// preempted.
	ReasonSameTier RejectReason = "held_by_same_tier"
)

// Rejection records one intent that was not committed.
type Rejection struct {
	Intent intent.Intent `json:"intent"`
	Reason RejectReason  `json:"reason"`
	// Resource is the locked resource that blocked the intent. Empty for
	// ReasonConflict.
	Resource intent.Resource `json:"resource,omitempty"`
	// Blocker is the agent of the conflicting intent or the lock holder.
	Blocker string `json:"blocker"`
}

// Preemption records a lock evicted in favor of a higher-priority intent.
type Preemption struct {
	Lock lock.Lock     `json:"lock"`
	By   intent.Intent `json:"by"`
}

// Report is the full outcome of one tick.
type Report struct {
	NowMs     int64           `json:"now_ms"`
	Committed []intent.Intent `json:"committed"`
	Rejected  []Rejection     `json:"rejected,omitempty"`
	Expired   []lock.Lock     `json:"expired,omitempty"`
	Preempted []Preemption    `json:"preempted,omitempty"`
}

// RejectedFor returns the rejection recorded for the intent proposed by agent
// with the given kind, if any.
func (r Report) RejectedFor(agent, kind string) (Rejection, bool) {
	for _, rej := range r.Rejected {
		if rej.Intent.Agent() == agent && rej.Intent.Kind() == kind {
			return rej, true
		}
	}
	return Rejection{}, false
}
