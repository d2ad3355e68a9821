package event

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/esnya/ResoBotGW/internal/logging"
)

// ErrEmptyTopic is returned when subscribing to an empty topic.
var ErrEmptyTopic = errors.New("topic must be non-empty")

// wildcard is the internal topic used by SubscribeAll.
const wildcard = "*"

// Handler is a function that handles an event.
type Handler func(Event)

type subscription struct {
	id      string
	topic   string
	handler Handler
}

// Bus is a synchronous pub-sub event bus. Handlers run on the publishing
// goroutine in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription // topic -> subscriptions
	nextID atomic.Uint64
	logger *logging.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBusLogger sets the logger used to report panicking handlers.
func WithBusLogger(l *logging.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an empty event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:   make(map[string][]subscription),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for topic and returns a subscription id.
func (b *Bus) Subscribe(topic string, handler Handler) (string, error) {
	if topic == "" {
		return "", ErrEmptyTopic
	}
	if handler == nil {
		return "", errors.New("handler must be non-nil")
	}
	return b.add(topic, handler), nil
}

// SubscribeAll registers a handler that receives every published event,
// after the topic-specific handlers.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.add(wildcard, handler)
}

func (b *Bus) add(topic string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := fmt.Sprintf("sub-%d", b.nextID.Add(1))
	b.subs[topic] = append(b.subs[topic], subscription{id: id, topic: topic, handler: handler})
	return id
}

// Unsubscribe removes a subscription by id. It reports whether the
// subscription existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subs := range b.subs {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			rest := make([]subscription, 0, len(subs)-1)
			rest = append(rest, subs[:i]...)
			rest = append(rest, subs[i+1:]...)
			if len(rest) == 0 {
				delete(b.subs, topic)
			} else {
				b.subs[topic] = rest
			}
			return true
		}
	}
	return false
}

// Publish delivers ev to the handlers subscribed to ev.EventType(), then to
// wildcard handlers. A panicking handler is logged and skipped.
func (b *Bus) Publish(ev Event) {
	topic := ev.EventType()

	b.mu.RLock()
	targets := make([]subscription, 0, len(b.subs[topic])+len(b.subs[wildcard]))
	targets = append(targets, b.subs[topic]...)
	if topic != wildcard {
		targets = append(targets, b.subs[wildcard]...)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		b.safeCall(sub, ev)
	}
}

func (b *Bus) safeCall(sub subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"topic", ev.EventType(),
				"subscription", sub.id,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	sub.handler(ev)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscription)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, subs := range b.subs {
		n += len(subs)
	}
	return n
}
