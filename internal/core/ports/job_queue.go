package ports

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// QueueAssignments is the queue dispatch jobs are published on.
const QueueAssignments = "assignments"

// JobKind tags a job payload. Payloads are a closed set validated at the
// queue boundary; untagged or unknown payloads are rejected on enqueue and
// on claim.
type JobKind string

// Job kinds handled by the dispatch worker.
const (
	// JobKindProcessAssignment runs one matching attempt for a due
	// assignment.
	JobKindProcessAssignment JobKind = "process_assignment"
)

// AssignmentJob is the typed payload of one queued dispatch job.
type AssignmentJob struct {
	Kind         JobKind     `json:"kind"`
	AssignmentID kernel.UUID `json:"assignmentId"`
	OrderID      kernel.UUID `json:"orderId"`
}

// Validate rejects payloads with an unknown kind or unconstructed IDs.
func (j AssignmentJob) Validate() error {
	if j.Kind != JobKindProcessAssignment {
		return fmt.Errorf("unknown job kind %q", j.Kind)
	}
	if err := j.AssignmentID.Validate(); err != nil {
		return fmt.Errorf("assignment ID: %w", err)
	}
	if err := j.OrderID.Validate(); err != nil {
		return fmt.Errorf("order ID: %w", err)
	}
	return nil
}

// JobOptions tune one enqueued job.
type JobOptions struct {
	// Priority orders claims, higher first.
	Priority int
	// RetryLimit caps transport-level retries after handler errors.
	// Business retries (no candidate, rejection, timeout) are modeled in
	// the assignment store via nextAttemptAt and never consume this limit.
	RetryLimit int
	// ExpireAfter is the visibility timeout: a claimed job hidden longer
	// than this becomes claimable again.
	ExpireAfter time.Duration
}

// JobHandler processes one claimed job. A returned error makes the job
// visible again for transport-level retry up to its retry limit; business
// outcomes must be recorded in the assignment store and return nil.
type JobHandler func(ctx context.Context, job AssignmentJob) error

// JobQueue is the durable work queue decoupling the reconciliation scanner
// from the workers. Delivery is at-least-once with visibility timeout
// semantics; consumers must tolerate duplicates by revalidating before
// acting.
type JobQueue interface {
	// Enqueue publishes a job and returns its identifier.
	Enqueue(ctx context.Context, queue string, payload AssignmentJob, opts JobOptions) (kernel.UUID, error)
}
