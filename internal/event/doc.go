// Package event provides the synchronous pub-sub bus the coordinator uses to
// announce arbitration results.
//
// # Main Types
//
//   - [Event]: interface implemented by every event (EventType, Timestamp)
//   - [Bus]: synchronous dispatcher, safe for concurrent use
//   - [CommitEvent]: the ordered intents committed by one tick
//   - [LockPreemptedEvent]: a lock evicted by a higher-priority intent
//   - [GatherFailedEvent]: a concurrent gather that failed before arbitration
//
// Handlers run on the publisher's goroutine in subscription order. A handler
// that panics is recovered and logged; the remaining handlers still run.
//
// # Basic Usage
//
//	bus := event.NewBus()
//	id, err := bus.Subscribe(event.DefaultCommitTopic, func(e event.Event) {
//	    commit := e.(event.CommitEvent)
//	    for _, in := range commit.Intents {
//	        fmt.Println(in)
//	    }
//	})
//	if err != nil {
//	    return err
//	}
//	defer bus.Unsubscribe(id)
package event
