package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOutstandingOfferQueryHandler retrieves a courier's outstanding offer
// directly from the database, joining the pending assignment with the order's
// pickup point. Uses direct SQL for optimal read performance in the CQRS
// pattern.
//
// Example:
//
//	handler := NewGetOutstandingOfferQueryHandler(db)
//	query, _ := NewGetOutstandingOfferQuery(courierID)
//
//	offer, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Offer for order %s expires at %s\n", offer.OrderID, offer.ExpiresAt)
type GetOutstandingOfferQueryHandler struct {
	db *gorm.DB
}

// NewGetOutstandingOfferQueryHandler creates a handler for outstanding offer
// queries. Requires a GORM database connection for query execution.
func NewGetOutstandingOfferQueryHandler(db *gorm.DB) GetOutstandingOfferQueryHandler {
	return GetOutstandingOfferQueryHandler{db: db}
}

// Handle executes the query for the courier's outstanding offer.
// Returns an ObjectNotFoundError when the courier holds no live offer.
func (h GetOutstandingOfferQueryHandler) Handle(
	ctx context.Context,
	query GetOutstandingOfferQuery,
) (GetOutstandingOfferQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOutstandingOfferQueryResponse{}, err
	}

	var response GetOutstandingOfferQueryResponse
	var orderID uuid.UUID
	var pickupLat, pickupLng float64

	// An offer past its deadline is invisible even before the expiry sweep
	// releases it; AcceptOffer would refuse it anyway.
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			pa.order_id,
			pa.offer_expires_at,
			o.pickup_lat,
			o.pickup_lng
		FROM pending_assignments pa
		JOIN orders o ON o.id = pa.order_id
		WHERE pa.offered_courier_id = ?
		  AND pa.status = ?
		  AND pa.offer_expires_at > ?
	`, query.CourierID().Bytes(), int(assignment.Offered), time.Now().UTC()).Row()

	err := row.Scan(&orderID, &response.ExpiresAt, &pickupLat, &pickupLng)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOutstandingOfferQueryResponse{}, errs.NewObjectNotFoundError(
			"outstanding offer", query.CourierID().String())
	}
	if err != nil {
		return GetOutstandingOfferQueryResponse{}, err
	}

	response.OrderID, err = kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return GetOutstandingOfferQueryResponse{}, err
	}

	response.Pickup, err = kernel.NewGeoPoint(pickupLat, pickupLng)
	if err != nil {
		return GetOutstandingOfferQueryResponse{}, err
	}

	return response, nil
}
