// Package intent defines the data model shared by every stage of arbitration:
// the contended [Resource] set, the priority [Tier] order, and the immutable
// [Intent] value an agent proposes each tick.
//
// # Resources
//
// Resources are a closed set of physically embodied capabilities. [All]
// returns them in canonical order, which is also the order used when
// reporting lock tables:
//
//	speech, locomotion, head, handsL, handsR, ui, sensors
//
// # Tiers
//
// Tiers are totally ordered and a smaller ordinal means a higher priority:
//
//	reflex (0) < safety (1) < activity (2) < planner (3)
//
// Use [Tier.Outranks] rather than comparing ordinals directly.
//
// # Intents
//
// An [Intent] is built with [New], which refuses malformed input (no
// resources, duplicate resources, unknown tiers, NaN scores). Once built an
// Intent never changes; accessors that expose collections return copies.
//
//	in, err := intent.New(intent.Spec{
//	    Agent:     "dlg",
//	    Kind:      "say",
//	    Resources: []intent.Resource{intent.Speech},
//	    Score:     1.0,
//	    HoldMs:    50,
//	    Tier:      intent.Reflex,
//	})
package intent
