package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

// OrderView is the dispatcher's read model of an externally owned order:
// just enough to validate assignability and run the matcher.
type OrderView struct {
	OrderID   kernel.UUID
	Pickup    kernel.GeoPoint
	CourierID *kernel.UUID
}

// OrderStore is the external order service boundary. The dispatcher reads
// order state and performs exactly one guarded write: the conditional
// courier assignment that decides accept races.
type OrderStore interface {
	// GetConfirmedOrder returns the order if it is currently in the
	// confirmed state. Returns an ObjectNotFoundError when the order does
	// not exist or is in any other state — either way the assignment is no
	// longer valid.
	GetConfirmedOrder(ctx context.Context, orderID kernel.UUID) (*OrderView, error)

	// TrySetCourier atomically assigns a courier to a confirmed, unassigned
	// order. Returns false without side effects if the order already has a
	// courier or left the confirmed state: under two simultaneous accepts
	// exactly one call returns true.
	TrySetCourier(ctx context.Context, orderID, courierID kernel.UUID) (bool, error)
}

// CourierDirectory is the external courier account service boundary,
// supplying the profile snapshots that eligibility scoring runs over.
type CourierDirectory interface {
	// GetProfile returns the courier's current directory record.
	// Returns an ObjectNotFoundError for unknown couriers.
	GetProfile(ctx context.Context, courierID kernel.UUID) (*courier.Profile, error)
}

// CourierLocationSource feeds the matcher with live courier positions.
// The bundled implementation is process-local memory updated by heartbeats;
// in a multi-instance deployment it can be backed by a shared cache without
// changing matcher logic — per-process state is then an accepted
// approximation, since couriers heartbeat frequently.
type CourierLocationSource interface {
	// UpdateLocation records a courier heartbeat, replacing any previous
	// entry for the courier.
	UpdateLocation(ctx context.Context, entry courier.ActiveCourier) error

	// Snapshot returns the current registry contents. Staleness filtering
	// is the matcher's concern; the snapshot may include unrefreshed
	// entries.
	Snapshot(ctx context.Context) ([]courier.ActiveCourier, error)

	// Remove drops a courier from the registry, e.g. on explicit sign-off.
	Remove(ctx context.Context, courierID kernel.UUID) error
}

// ConstraintsProvider supplies the dispatch constraints. Implementations
// cache with a short TTL and fall back to services.DefaultConstraints when
// the backing store is unavailable — the method never fails, so a
// configuration outage can never block dispatch.
type ConstraintsProvider interface {
	Constraints(ctx context.Context) services.Constraints
}
