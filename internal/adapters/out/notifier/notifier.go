// Package notifier provides the in-process publish/subscribe event channel
// delivering offers to couriers and status updates to customers. Delivery is
// best-effort push notification: a slow subscriber loses events rather than
// blocking dispatch, and the assignment store remains the source of truth.
package notifier

import (
	"context"
	"log/slog"
	"sync"

	"dispatch/internal/core/ports"
)

// subscriberBufferSize bounds each subscription channel. Publish never
// blocks: events beyond the buffer are dropped and counted against the
// subscriber, not the publisher.
const subscriberBufferSize = 16

// InMemoryNotifier implements the notifier port with per-topic fan-out over
// buffered channels. Safe for concurrent use.
type InMemoryNotifier struct {
	mu     sync.RWMutex
	topics map[string]map[int]chan ports.Event
	nextID int
	logger *slog.Logger
}

// NewInMemoryNotifier creates an event channel with no subscribers.
func NewInMemoryNotifier(logger *slog.Logger) *InMemoryNotifier {
	return &InMemoryNotifier{
		topics: make(map[string]map[int]chan ports.Event),
		logger: logger.With("component", "notifier"),
	}
}

// Publish delivers an event to current subscribers of the topic. Subscribers
// whose buffers are full miss the event; publishing to a topic with no
// subscribers is a successful no-op.
func (n *InMemoryNotifier) Publish(_ context.Context, topic string, payload any) error {
	event := ports.Event{Topic: topic, Payload: payload}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for id, ch := range n.topics[topic] {
		select {
		case ch <- event:
		default:
			n.logger.Warn("subscriber buffer full, event dropped",
				"topic", topic,
				"subscriber", id)
		}
	}
	return nil
}

// Subscribe returns a stream of events for a topic and a cancel function
// releasing the subscription. Cancel is idempotent and closes the stream.
func (n *InMemoryNotifier) Subscribe(topic string) (<-chan ports.Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	subscribers, ok := n.topics[topic]
	if !ok {
		subscribers = make(map[int]chan ports.Event)
		n.topics[topic] = subscribers
	}

	id := n.nextID
	n.nextID++

	ch := make(chan ports.Event, subscriberBufferSize)
	subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()

			delete(n.topics[topic], id)
			if len(n.topics[topic]) == 0 {
				delete(n.topics, topic)
			}
			close(ch)
		})
	}

	return ch, cancel
}
