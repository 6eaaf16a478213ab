// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetOutstandingOfferQueryIsNotConstructed = errors.New(
	"GetOutstandingOfferQuery must be created via NewGetOutstandingOfferQuery constructor",
)

// GetOutstandingOfferQuery retrieves the offer currently held by a courier,
// if any. Couriers poll this after reconnecting, since push notifications are
// best-effort and a missed event must not lose the offer.
//
// Example:
//
//	query, err := NewGetOutstandingOfferQuery(courierID)
//	if err != nil {
//	    return err
//	}
//
//	offer, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // no outstanding offer for this courier
//	}
type GetOutstandingOfferQuery struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOutstandingOfferQuery creates a query for a courier's outstanding
// offer. Validates that the courier ID is a valid UUID.
func NewGetOutstandingOfferQuery(courierID kernel.UUID) (GetOutstandingOfferQuery, error) {
	query := GetOutstandingOfferQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setCourierID(courierID); err != nil {
		return GetOutstandingOfferQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOutstandingOfferQuery) Validate() error {
	return q.guard.Validate(ErrGetOutstandingOfferQueryIsNotConstructed)
}

// CourierID returns the courier whose offer is requested.
func (q GetOutstandingOfferQuery) CourierID() kernel.UUID {
	return q.courierID
}

func (q *GetOutstandingOfferQuery) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	q.courierID = courierID
	return nil
}

// GetOutstandingOfferQueryResponse represents an outstanding offer in the
// read model: the order, where to pick it up, and how long the courier has
// left to answer.
type GetOutstandingOfferQueryResponse struct {
	OrderID   kernel.UUID
	Pickup    kernel.GeoPoint
	ExpiresAt time.Time
}
