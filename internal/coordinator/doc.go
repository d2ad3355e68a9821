// Package coordinator runs arbitration ticks: it gathers intents from
// proposers, lets an [arbiter.Arbiter] decide, and publishes the committed
// batch on an [event.Bus].
//
// Two proposer shapes are supported. A [Proposer] is called synchronously
// in order by [Coordinator.Tick]. An [AsyncProposer] may block; they are run
// concurrently by [Coordinator.TickAsync], which waits for all of them and
// abandons the tick if any fails or the context is cancelled. Proposals are
// always concatenated in proposer order, never in completion order, so the
// decision is the same either way.
package coordinator
