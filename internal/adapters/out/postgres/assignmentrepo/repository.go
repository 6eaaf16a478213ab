package assignmentrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new assignment to the database. The insert ignores conflicts on
// order_id, so submitting an order that already has an assignment leaves the
// existing record untouched.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.PendingAssignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing assignment to the database.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.PendingAssignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Remove deletes the assignment for an order. Removing a missing assignment
// is not an error.
func (r *GormAssignmentRepository) Remove(ctx context.Context, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Delete(&AssignmentDTO{}).Error
}

// GetByOrderID retrieves the assignment for an order.
func (r *GormAssignmentRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*assignment.PendingAssignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetOfferForCourier retrieves the assignment holding an outstanding offer
// for the given courier.
func (r *GormAssignmentRepository) GetOfferForCourier(ctx context.Context, courierID kernel.UUID) (*assignment.PendingAssignment, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		First(&dto, "offered_courier_id = ? AND status = ?", courierID.Bytes(), int(assignment.Offered)).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("offer", courierID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// DueForProcessing retrieves pending assignments whose next attempt time has
// arrived, ordered by priority (descending) then creation time.
func (r *GormAssignmentRepository) DueForProcessing(ctx context.Context, now time.Time, limit int) ([]*assignment.PendingAssignment, error) {
	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", int(assignment.Pending), now).
		Order("priority DESC, created_at ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// OfferedAndExpired retrieves assignments whose outstanding offer's response
// deadline has passed.
func (r *GormAssignmentRepository) OfferedAndExpired(ctx context.Context, now time.Time) ([]*assignment.PendingAssignment, error) {
	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND offer_expires_at < ?", int(assignment.Offered), now).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []AssignmentDTO) ([]*assignment.PendingAssignment, error) {
	assignments := make([]*assignment.PendingAssignment, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}
