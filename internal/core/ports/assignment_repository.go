// Package ports defines the contracts between the dispatch core and
// infrastructure: the durable assignment store, the job queue, the courier
// location registry, and the external collaborators (order store, courier
// directory, configuration store, event channel). These interfaces enable
// dependency inversion and testability.
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// AssignmentRepository is the persistence contract for PendingAssignment
// aggregates — the durable record of orders awaiting courier assignment.
type AssignmentRepository interface {
	// Add persists a new assignment. Adding a second assignment for the
	// same order is a no-op: at most one PendingAssignment exists per
	// orderId.
	Add(ctx context.Context, aggregate *assignment.PendingAssignment) error

	// Update persists changes to an existing assignment.
	Update(ctx context.Context, aggregate *assignment.PendingAssignment) error

	// Remove deletes the assignment for an order. Idempotent: removing a
	// missing assignment is not an error.
	Remove(ctx context.Context, orderID kernel.UUID) error

	// GetByOrderID retrieves the assignment for an order.
	// Returns an ObjectNotFoundError when none exists.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*assignment.PendingAssignment, error)

	// GetOfferForCourier retrieves the assignment holding an outstanding
	// offer for the given courier, if any.
	// Returns an ObjectNotFoundError when none exists.
	GetOfferForCourier(ctx context.Context, courierID kernel.UUID) (*assignment.PendingAssignment, error)

	// DueForProcessing returns assignments with nextAttemptAt <= now and no
	// outstanding offer, ordered by priority desc then createdAt asc,
	// capped at limit to bound scanner batch size.
	DueForProcessing(ctx context.Context, now time.Time, limit int) ([]*assignment.PendingAssignment, error)

	// OfferedAndExpired returns assignments whose outstanding offer's
	// response deadline has passed. The scanner turns these into failed
	// attempts; there are no process-local offer timers.
	OfferedAndExpired(ctx context.Context, now time.Time) ([]*assignment.PendingAssignment, error)
}
