// Package scenario replays scripted arbitration runs from YAML files.
//
// A scenario lists ticks, each with a time and the intents proposed at that
// time:
//
//	name: preemption
//	start_ms: 1000
//	ticks:
//	  - proposals:
//	      - {agent: planner, kind: narrate, resources: [speech], tier: planner, hold_ms: 500}
//	  - advance_ms: 0
//	    proposals:
//	      - {agent: reflex, kind: yelp, resources: [speech], tier: reflex, hold_ms: 100}
//
// Each agent becomes one concurrent proposer, ordered by first appearance in
// the file, so ties between equal intents are broken by that order rather
// than by position within a tick.
package scenario
