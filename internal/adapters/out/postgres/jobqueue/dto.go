// Package jobqueue provides a Postgres-backed durable job queue. Jobs survive
// process restarts, are claimed with FOR UPDATE SKIP LOCKED so multiple
// workers never process the same job concurrently, and become visible again
// after a visibility timeout when a worker dies mid-job. Delivery is
// at-least-once.
package jobqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
)

// Job lifecycle states.
const (
	stateQueued    = "queued"
	stateActive    = "active"
	stateCompleted = "completed"
	stateFailed    = "failed"
)

// JobDTO represents the database structure for persisting queued jobs.
// ExpireAt is the visibility deadline of a claimed job; an active job past
// its deadline is reclaimed by the next Claim call.
type JobDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Queue          string    `gorm:"index;not null"`
	Payload        []byte    `gorm:"type:jsonb;not null"`
	Priority       int       `gorm:"not null"`
	RetryLimit     int       `gorm:"not null"`
	RetryCount     int       `gorm:"not null"`
	ExpireAfterSec int       `gorm:"not null"`
	State          string    `gorm:"index;not null"`
	CreatedAt      time.Time `gorm:"not null"`
	StartedAt      *time.Time
	ExpireAt       *time.Time
	CompletedAt    *time.Time
}

// TableName specifies the database table name for queued jobs.
func (JobDTO) TableName() string {
	return "dispatch_jobs"
}

// jobPayloadDTO is the JSON wire form of an assignment job payload.
type jobPayloadDTO struct {
	Kind         string    `json:"kind"`
	AssignmentID uuid.UUID `json:"assignmentId"`
	OrderID      uuid.UUID `json:"orderId"`
}

// marshalPayload validates and serializes a job payload.
func marshalPayload(payload ports.AssignmentJob) ([]byte, error) {
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job payload: %w", err)
	}

	return json.Marshal(jobPayloadDTO{
		Kind:         string(payload.Kind),
		AssignmentID: payload.AssignmentID.Bytes(),
		OrderID:      payload.OrderID.Bytes(),
	})
}

// unmarshalPayload deserializes and validates a stored job payload.
func unmarshalPayload(raw []byte) (ports.AssignmentJob, error) {
	var dto jobPayloadDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return ports.AssignmentJob{}, fmt.Errorf("malformed job payload: %w", err)
	}

	assignmentID, err := kernel.UUIDFromBytes(dto.AssignmentID[:])
	if err != nil {
		return ports.AssignmentJob{}, fmt.Errorf("malformed job payload: %w", err)
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return ports.AssignmentJob{}, fmt.Errorf("malformed job payload: %w", err)
	}

	payload := ports.AssignmentJob{
		Kind:         ports.JobKind(dto.Kind),
		AssignmentID: assignmentID,
		OrderID:      orderID,
	}
	if err := payload.Validate(); err != nil {
		return ports.AssignmentJob{}, err
	}

	return payload, nil
}
