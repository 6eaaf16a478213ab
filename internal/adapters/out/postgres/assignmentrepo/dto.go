// Package assignmentrepo provides data transfer objects and mapping functions
// for pending assignment persistence. It implements the repository pattern for
// the assignment aggregate, handling the conversion between domain entities
// and database representations.
package assignmentrepo

import (
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for persisting pending
// assignment aggregates. The unique index on OrderID enforces the
// one-assignment-per-order invariant at the storage level; NextAttemptAt and
// Status are indexed for the scanner's due and expired queries.
type AssignmentDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	Priority         int        `gorm:"not null"`
	AttemptCount     int        `gorm:"not null"`
	CreatedAt        time.Time  `gorm:"not null"`
	LastAttemptAt    *time.Time
	NextAttemptAt    time.Time  `gorm:"index;not null"`
	OfferedCourierID *uuid.UUID `gorm:"type:uuid;index"`
	OfferExpiresAt   *time.Time
	Status           int        `gorm:"index;not null"`
}

// TableName specifies the database table name for assignment entities.
func (AssignmentDTO) TableName() string {
	return "pending_assignments"
}

// fromDomain converts an assignment domain aggregate to its database
// representation.
func fromDomain(aggregate *assignment.PendingAssignment) AssignmentDTO {
	var offeredCourierID *uuid.UUID
	if id := aggregate.OfferedCourier(); id != nil {
		raw := id.Bytes()
		offeredCourierID = &raw
	}

	return AssignmentDTO{
		ID:               aggregate.ID().Bytes(),
		OrderID:          aggregate.OrderID().Bytes(),
		Priority:         aggregate.Priority(),
		AttemptCount:     aggregate.AttemptCount(),
		CreatedAt:        aggregate.CreatedAt(),
		LastAttemptAt:    aggregate.LastAttemptAt(),
		NextAttemptAt:    aggregate.NextAttemptAt(),
		OfferedCourierID: offeredCourierID,
		OfferExpiresAt:   aggregate.OfferExpiresAt(),
		Status:           int(aggregate.Status()),
	}
}

// toDomain converts a database DTO to an assignment domain aggregate using
// RestorePendingAssignment.
func toDomain(dto AssignmentDTO) (*assignment.PendingAssignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var offeredCourierID *kernel.UUID
	if dto.OfferedCourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.OfferedCourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}

		offeredCourierID = &cID
	}

	return assignment.RestorePendingAssignment(
		id,
		orderID,
		dto.Priority,
		dto.AttemptCount,
		dto.CreatedAt,
		dto.LastAttemptAt,
		dto.NextAttemptAt,
		offeredCourierID,
		dto.OfferExpiresAt,
		assignment.Status(dto.Status),
	)
}
