package ports

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// TopicOrderStatus carries order status progress for customers.
const TopicOrderStatus = "order.status"

// CourierTopic returns the per-courier topic offers are delivered on.
func CourierTopic(courierID kernel.UUID) string {
	return fmt.Sprintf("courier.%s", courierID)
}

// OfferEvent notifies one courier of a time-boxed, exclusive offer.
type OfferEvent struct {
	OrderID    kernel.UUID
	CourierID  kernel.UUID
	DistanceKm float64
	ExpiresAt  time.Time
}

// Order status values published on TopicOrderStatus.
const (
	OrderStatusSearching        = "searching_for_courier"
	OrderStatusCourierAssigned  = "courier_assigned"
	OrderStatusAssignmentFailed = "assignment_failed"
)

// OrderStatusEvent notifies customers of dispatch progress. On abandonment
// the status is OrderStatusAssignmentFailed; acting on it (auto-cancel,
// escalation) is the external order service's decision.
type OrderStatusEvent struct {
	OrderID   kernel.UUID
	Status    string
	CourierID *kernel.UUID
}

// Event is one published message on a topic.
type Event struct {
	Topic   string
	Payload any
}

// EventPublisher is the outbound half of the event channel.
type EventPublisher interface {
	// Publish delivers an event to current subscribers of the topic.
	// Delivery is best-effort push notification; the assignment store
	// remains the source of truth.
	Publish(ctx context.Context, topic string, payload any) error
}

// EventSubscriber is the inbound half of the event channel.
type EventSubscriber interface {
	// Subscribe returns a stream of events for a topic and a cancel
	// function releasing the subscription.
	Subscribe(topic string) (<-chan Event, func())
}

// Notifier is the full publish/subscribe event channel delivering offers to
// couriers and status changes to customers.
type Notifier interface {
	EventPublisher
	EventSubscriber
}
