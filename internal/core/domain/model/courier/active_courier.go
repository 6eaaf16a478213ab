package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrActiveCourierIsNotConstructed is returned when using an improperly
// initialized ActiveCourier.
var ErrActiveCourierIsNotConstructed = errors.New(
	"ActiveCourier must be created via NewActiveCourier constructor")

// ActiveCourier is one courier's latest location heartbeat: where they are,
// how far they are willing to travel for a pickup, and when they were last
// heard from. Entries live in the in-memory registry and are ephemeral; the
// matcher treats entries with stale LastSeen as unavailable.
type ActiveCourier struct {
	courierID   kernel.UUID
	location    kernel.GeoPoint
	maxRadiusKm float64
	lastSeen    time.Time
	guard       guard.ConstructorGuard
}

// NewActiveCourier creates a registry entry from a location heartbeat.
// maxRadiusKm must be positive.
func NewActiveCourier(courierID kernel.UUID, location kernel.GeoPoint, maxRadiusKm float64, lastSeen time.Time) (ActiveCourier, error) {
	c := ActiveCourier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courierID.Validate(),
		location.Validate(),
	); err != nil {
		return ActiveCourier{}, err
	}

	if maxRadiusKm <= 0 {
		return ActiveCourier{}, errs.NewValueIsRequiredError("maxRadiusKm")
	}

	c.courierID = courierID
	c.location = location
	c.maxRadiusKm = maxRadiusKm
	c.lastSeen = lastSeen
	return c, nil
}

// Validate ensures the entry was constructed via NewActiveCourier.
func (c ActiveCourier) Validate() error {
	return c.guard.Validate(ErrActiveCourierIsNotConstructed)
}

// CourierID returns the courier's identifier.
func (c ActiveCourier) CourierID() kernel.UUID {
	return c.courierID
}

// Location returns the last reported position.
func (c ActiveCourier) Location() kernel.GeoPoint {
	return c.location
}

// MaxRadiusKm returns the courier's own pickup radius limit.
func (c ActiveCourier) MaxRadiusKm() float64 {
	return c.maxRadiusKm
}

// LastSeen returns the heartbeat timestamp.
func (c ActiveCourier) LastSeen() time.Time {
	return c.lastSeen
}

// IsStale reports whether the heartbeat is older than the liveness window.
func (c ActiveCourier) IsStale(now time.Time, livenessWindow time.Duration) bool {
	return now.Sub(c.lastSeen) > livenessWindow
}
