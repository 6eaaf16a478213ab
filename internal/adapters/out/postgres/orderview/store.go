// Package orderview adapts the externally owned orders table to the order
// store port. The dispatcher reads order state and performs exactly one
// guarded write: the conditional courier assignment that decides accept
// races.
package orderview

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order status values of the external order service.
const (
	statusConfirmed = "confirmed"
	statusAssigned  = "assigned"
)

// OrderDTO mirrors the subset of the orders table the dispatcher touches.
type OrderDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status    string     `gorm:"index;not null"`
	CourierID *uuid.UUID `gorm:"type:uuid;index"`
	PickupLat float64    `gorm:"not null"`
	PickupLng float64    `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// GormOrderStore implements the order store port over the shared orders table.
type GormOrderStore struct {
	db *gorm.DB
}

// NewGormOrderStore creates an order store over the given connection.
func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

// GetConfirmedOrder returns the order if it is currently confirmed.
// Orders that do not exist or left the confirmed state come back as
// ObjectNotFoundError; either way the caller's assignment is no longer valid.
func (s *GormOrderStore) GetConfirmedOrder(ctx context.Context, orderID kernel.UUID) (*ports.OrderView, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := s.db.WithContext(ctx).
		First(&dto, "id = ? AND status = ?", orderID.Bytes(), statusConfirmed).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("confirmed order", orderID.String())
		}
		return nil, err
	}

	return toView(dto)
}

// TrySetCourier atomically assigns a courier to a confirmed, unassigned
// order. The guarded UPDATE touches at most one row; under two simultaneous
// accepts exactly one caller sees RowsAffected == 1 and wins.
func (s *GormOrderStore) TrySetCourier(ctx context.Context, orderID, courierID kernel.UUID) (bool, error) {
	if err := errors.Join(orderID.Validate(), courierID.Validate()); err != nil {
		return false, err
	}

	result := s.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND courier_id IS NULL", orderID.Bytes(), statusConfirmed).
		Updates(map[string]any{
			"courier_id": courierID.Bytes(),
			"status":     statusAssigned,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func toView(dto OrderDTO) (*ports.OrderView, error) {
	orderID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewGeoPoint(dto.PickupLat, dto.PickupLng)
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}

		courierID = &cID
	}

	return &ports.OrderView{
		OrderID:   orderID,
		Pickup:    pickup,
		CourierID: courierID,
	}, nil
}
