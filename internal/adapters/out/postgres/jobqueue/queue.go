package jobqueue

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimedJob is one job handed to a worker: the typed payload plus the queue
// identity needed to complete or fail it afterwards.
type ClaimedJob struct {
	ID      kernel.UUID
	Payload ports.AssignmentJob
}

// GormJobQueue implements the durable job queue over Postgres.
type GormJobQueue struct {
	db *gorm.DB
}

// NewGormJobQueue creates a Postgres-backed job queue.
func NewGormJobQueue(db *gorm.DB) *GormJobQueue {
	return &GormJobQueue{db: db}
}

// Enqueue publishes a job and returns its identifier. Payloads are validated
// before they hit the table; a malformed payload never enters the queue.
func (q *GormJobQueue) Enqueue(ctx context.Context, queue string, payload ports.AssignmentJob, opts ports.JobOptions) (kernel.UUID, error) {
	raw, err := marshalPayload(payload)
	if err != nil {
		return kernel.UUID{}, err
	}

	id := kernel.NewUUID()
	dto := JobDTO{
		ID:             id.Bytes(),
		Queue:          queue,
		Payload:        raw,
		Priority:       opts.Priority,
		RetryLimit:     opts.RetryLimit,
		ExpireAfterSec: int(opts.ExpireAfter / time.Second),
		State:          stateQueued,
		CreatedAt:      time.Now().UTC(),
	}

	if err := q.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return kernel.UUID{}, err
	}

	return id, nil
}

// Claim atomically claims up to limit jobs from a queue, marking them active
// with a fresh visibility deadline. Eligible jobs are queued ones plus active
// ones whose deadline passed (their worker is presumed dead). SKIP LOCKED
// keeps concurrent claimers from blocking each other or double-claiming.
//
// Jobs whose stored payload no longer validates are marked failed and skipped
// rather than returned, so one poisoned row cannot wedge a worker.
func (q *GormJobQueue) Claim(ctx context.Context, queue string, limit int) ([]ClaimedJob, error) {
	now := time.Now().UTC()

	var dtos []JobDTO
	err := q.db.WithContext(ctx).Raw(`
		UPDATE dispatch_jobs SET
			state = ?,
			started_at = ?,
			expire_at = ?::timestamptz + make_interval(secs => expire_after_sec)
		WHERE id IN (
			SELECT id FROM dispatch_jobs
			WHERE queue = ?
			  AND (state = ? OR (state = ? AND expire_at < ?))
			ORDER BY priority DESC, created_at ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		stateActive, now, now,
		queue,
		stateQueued, stateActive, now,
		limit,
	).Scan(&dtos).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]ClaimedJob, 0, len(dtos))
	for _, dto := range dtos {
		id, idErr := kernel.UUIDFromBytes(dto.ID[:])
		if idErr != nil {
			return nil, idErr
		}

		payload, payloadErr := unmarshalPayload(dto.Payload)
		if payloadErr != nil {
			if failErr := q.markFailed(ctx, dto.ID, now); failErr != nil {
				return nil, failErr
			}
			continue
		}

		jobs = append(jobs, ClaimedJob{ID: id, Payload: payload})
	}

	return jobs, nil
}

// Complete marks a claimed job as successfully processed.
func (q *GormJobQueue) Complete(ctx context.Context, jobID kernel.UUID) error {
	now := time.Now().UTC()
	return q.db.WithContext(ctx).
		Model(&JobDTO{}).
		Where("id = ? AND state = ?", jobID.Bytes(), stateActive).
		Updates(map[string]any{
			"state":        stateCompleted,
			"completed_at": now,
			"expire_at":    nil,
		}).Error
}

// Fail records a handler failure for a claimed job. Jobs with retries left go
// back to queued for another attempt; exhausted jobs are marked failed and
// stay in the table for inspection.
func (q *GormJobQueue) Fail(ctx context.Context, jobID kernel.UUID) error {
	now := time.Now().UTC()

	retried := q.db.WithContext(ctx).
		Model(&JobDTO{}).
		Where("id = ? AND state = ? AND retry_count < retry_limit", jobID.Bytes(), stateActive).
		Updates(map[string]any{
			"state":       stateQueued,
			"retry_count": gorm.Expr("retry_count + 1"),
			"started_at":  nil,
			"expire_at":   nil,
		})
	if retried.Error != nil {
		return retried.Error
	}
	if retried.RowsAffected > 0 {
		return nil
	}

	return q.markFailed(ctx, jobID.Bytes(), now)
}

func (q *GormJobQueue) markFailed(ctx context.Context, id uuid.UUID, now time.Time) error {
	return q.db.WithContext(ctx).
		Model(&JobDTO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":        stateFailed,
			"completed_at": now,
			"expire_at":    nil,
		}).Error
}
