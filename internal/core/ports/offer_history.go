package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// OfferHistory records which couriers have already been offered each order,
// guaranteeing no courier is asked twice for the same order. Entries are
// ephemeral: the history is cleared when the order is finalized (assigned,
// cancelled, or abandoned).
type OfferHistory interface {
	// Append records that a courier received an offer for an order.
	// Appending the same courier twice is a no-op.
	Append(ctx context.Context, orderID, courierID kernel.UUID) error

	// Offered returns the couriers already offered this order.
	Offered(ctx context.Context, orderID kernel.UUID) ([]kernel.UUID, error)

	// Clear drops the history for an order on finalization.
	Clear(ctx context.Context, orderID kernel.UUID) error
}
