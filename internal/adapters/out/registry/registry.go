// Package registry keeps the live courier location registry in process
// memory. Heartbeats replace entries wholesale; the matcher filters staleness
// itself, so the registry never expires anything on its own.
package registry

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// InMemoryRegistry implements the courier location source with a mutex-guarded
// map keyed by courier ID. Safe for concurrent use.
type InMemoryRegistry struct {
	mu      sync.RWMutex
	entries map[kernel.UUID]courier.ActiveCourier
}

// NewInMemoryRegistry creates an empty courier location registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		entries: make(map[kernel.UUID]courier.ActiveCourier),
	}
}

// UpdateLocation records a courier heartbeat, replacing any previous entry
// for the courier.
func (r *InMemoryRegistry) UpdateLocation(_ context.Context, entry courier.ActiveCourier) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.CourierID()] = entry
	return nil
}

// Snapshot returns the current registry contents. The snapshot may include
// stale entries; filtering is the matcher's concern.
func (r *InMemoryRegistry) Snapshot(_ context.Context) ([]courier.ActiveCourier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]courier.ActiveCourier, 0, len(r.entries))
	for _, entry := range r.entries {
		snapshot = append(snapshot, entry)
	}
	return snapshot, nil
}

// Remove drops a courier from the registry. Removing an unknown courier is a
// no-op.
func (r *InMemoryRegistry) Remove(_ context.Context, courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, courierID)
	return nil
}
