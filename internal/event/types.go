package event

import (
	"time"

	"github.com/esnya/ResoBotGW/internal/intent"
	"github.com/esnya/ResoBotGW/internal/lock"
)

// Topics published by the coordinator. The commit topic is configurable;
// DefaultCommitTopic is used when none is set.
const (
	DefaultCommitTopic = "commit"
	TopicGatherFailed  = "gather.failed"
	TopicLockPreempted = "lock.preempted"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns the topic the event is published on.
	EventType() string

	// Timestamp returns when the event was created.
	Timestamp() time.Time
}

type baseEvent struct {
	topic     string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.topic }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(topic string) baseEvent {
	return baseEvent{topic: topic, timestamp: time.Now()}
}

// CommitEvent announces the intents committed by one tick, in commitment
// order.
type CommitEvent struct {
	baseEvent
	Intents []intent.Intent
	NowMs   int64
}

// NewCommitEvent creates a CommitEvent on topic. An empty topic falls back to
// DefaultCommitTopic.
func NewCommitEvent(topic string, intents []intent.Intent, nowMs int64) CommitEvent {
	if topic == "" {
		topic = DefaultCommitTopic
	}
	return CommitEvent{
		baseEvent: newBaseEvent(topic),
		Intents:   intents,
		NowMs:     nowMs,
	}
}

// Topic returns the topic the commit was published on.
func (e CommitEvent) Topic() string { return e.topic }

// GatherFailedEvent is published when a concurrent gather fails and the tick
// is abandoned.
type GatherFailedEvent struct {
	baseEvent
	Err error
}

// NewGatherFailedEvent creates a GatherFailedEvent.
func NewGatherFailedEvent(err error) GatherFailedEvent {
	return GatherFailedEvent{baseEvent: newBaseEvent(TopicGatherFailed), Err: err}
}

// LockPreemptedEvent is published for every lock evicted by a higher-priority
// intent.
type LockPreemptedEvent struct {
	baseEvent
	Lock  lock.Lock
	By    intent.Intent
	NowMs int64
}

// NewLockPreemptedEvent creates a LockPreemptedEvent.
func NewLockPreemptedEvent(l lock.Lock, by intent.Intent, nowMs int64) LockPreemptedEvent {
	return LockPreemptedEvent{
		baseEvent: newBaseEvent(TopicLockPreempted),
		Lock:      l,
		By:        by,
		NowMs:     nowMs,
	}
}
