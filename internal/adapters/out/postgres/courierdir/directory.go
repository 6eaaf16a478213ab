// Package courierdir adapts the externally owned couriers table to the
// courier directory port, supplying the profile snapshots that eligibility
// scoring runs over.
package courierdir

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourierDTO mirrors the subset of the couriers table the dispatcher reads.
type CourierDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role                string    `gorm:"not null"`
	IsActive            bool      `gorm:"not null"`
	VerificationStatus  string    `gorm:"not null"`
	Rating              float64   `gorm:"not null"`
	CompletionRate      float64   `gorm:"not null"`
	CompletedDeliveries int       `gorm:"not null"`
	ActiveDeliveries    int       `gorm:"not null"`
	OnTimeRate          float64   `gorm:"not null"`
	AvgResponseSeconds  float64   `gorm:"not null"`
	LastActiveAt        time.Time
}

// TableName specifies the database table name for courier entities.
func (CourierDTO) TableName() string {
	return "couriers"
}

// GormCourierDirectory implements the courier directory port over the shared
// couriers table.
type GormCourierDirectory struct {
	db *gorm.DB
}

// NewGormCourierDirectory creates a courier directory over the given
// connection.
func NewGormCourierDirectory(db *gorm.DB) *GormCourierDirectory {
	return &GormCourierDirectory{db: db}
}

// GetProfile returns the courier's current directory record.
func (d *GormCourierDirectory) GetProfile(ctx context.Context, courierID kernel.UUID) (*courier.Profile, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", courierID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", courierID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func toDomain(dto CourierDTO) (*courier.Profile, error) {
	courierID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return courier.NewProfile(courier.ProfileData{
		CourierID:           courierID,
		Role:                courier.Role(dto.Role),
		IsActive:            dto.IsActive,
		Verification:        courier.VerificationStatus(dto.VerificationStatus),
		Rating:              dto.Rating,
		CompletionRate:      dto.CompletionRate,
		CompletedDeliveries: dto.CompletedDeliveries,
		ActiveDeliveries:    dto.ActiveDeliveries,
		OnTimeRate:          dto.OnTimeRate,
		AvgResponseSeconds:  dto.AvgResponseSeconds,
		LastActiveAt:        dto.LastActiveAt,
	})
}
