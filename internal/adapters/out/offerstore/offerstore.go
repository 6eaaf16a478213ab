// Package offerstore keeps per-order offer history in process memory: which
// couriers have already been asked, so no courier sees the same order twice.
// Entries live only while the order is searching and are cleared on
// finalization.
package offerstore

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
)

// InMemoryOfferHistory implements the offer history with a mutex-guarded map
// of per-order courier sets. Safe for concurrent use.
type InMemoryOfferHistory struct {
	mu     sync.Mutex
	orders map[kernel.UUID]*orderHistory
}

// orderHistory preserves insertion order alongside the uniqueness set so
// Offered returns couriers in the order they were tried.
type orderHistory struct {
	seen    map[kernel.UUID]struct{}
	ordered []kernel.UUID
}

// NewInMemoryOfferHistory creates an empty offer history.
func NewInMemoryOfferHistory() *InMemoryOfferHistory {
	return &InMemoryOfferHistory{
		orders: make(map[kernel.UUID]*orderHistory),
	}
}

// Append records that a courier received an offer for an order. Appending the
// same courier twice is a no-op.
func (h *InMemoryOfferHistory) Append(_ context.Context, orderID, courierID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := courierID.Validate(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	history, ok := h.orders[orderID]
	if !ok {
		history = &orderHistory{seen: make(map[kernel.UUID]struct{})}
		h.orders[orderID] = history
	}

	if _, dup := history.seen[courierID]; dup {
		return nil
	}

	history.seen[courierID] = struct{}{}
	history.ordered = append(history.ordered, courierID)
	return nil
}

// Offered returns the couriers already offered this order, in offer order.
func (h *InMemoryOfferHistory) Offered(_ context.Context, orderID kernel.UUID) ([]kernel.UUID, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	history, ok := h.orders[orderID]
	if !ok {
		return nil, nil
	}

	offered := make([]kernel.UUID, len(history.ordered))
	copy(offered, history.ordered)
	return offered, nil
}

// Clear drops the history for an order on finalization. Clearing an unknown
// order is a no-op.
func (h *InMemoryOfferHistory) Clear(_ context.Context, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.orders, orderID)
	return nil
}
