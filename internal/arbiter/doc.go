// Package arbiter decides, once per tick, which proposed intents are
// committed.
//
// # Algorithm
//
// [Arbiter.Tick] reads the clock once and then:
//
//  1. Sweeps every lock whose expiry is at or before now.
//  2. Stable-sorts proposals by tier (highest priority first), then by score
//     (highest first). Proposals equal on both keys keep their input order.
//  3. Walks the sorted proposals greedily. A candidate is rejected when it is
//     incompatible with an intent already committed this tick, or when any of
//     its resources carries a live lock of the same or a higher-priority tier.
//     Live locks of strictly lower-priority tiers are preempted.
//  4. Locks every resource of an accepted candidate until now plus its hold
//     (at least one millisecond) and appends it to the committed list.
//
// Rejection is not an error: a rejected intent is simply absent from the
// result. [Arbiter.Evaluate] returns the full [Report] including rejection
// reasons, expired locks and preempted locks.
//
// # Thread Safety
//
// Ticks on one Arbiter never overlap; Evaluate and Tick hold an internal
// mutex for the whole decision. The decision phase performs no I/O and does
// not block on anything but that mutex.
package arbiter
