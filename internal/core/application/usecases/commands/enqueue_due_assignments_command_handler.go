package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Queue transport settings for scanner-published jobs. Transport retries
// cover handler crashes and infrastructure errors only; business retries are
// scheduled through the assignment store and never consume this limit.
const (
	jobRetryLimit = 3
	jobVisibility = 30 * time.Second
)

// EnqueueDueAssignmentsCommandHandler publishes a processing job for every
// assignment whose next attempt time has arrived. Each due record is first
// revalidated against the order view: cancelled or already assigned orders
// are removed without producing a job. Duplicate jobs are still acceptable —
// the scan may re-enqueue an assignment that already has a job in flight, and
// the processing handler revalidates again before emitting an offer.
type EnqueueDueAssignmentsCommandHandler struct {
	uowFactory   UoWFactory
	orderStore   ports.OrderStore
	offerHistory ports.OfferHistory
	queue        ports.JobQueue
	constraints  ports.ConstraintsProvider
}

// NewEnqueueDueAssignmentsCommandHandler creates a handler for the due-scan.
func NewEnqueueDueAssignmentsCommandHandler(
	uowFactory UoWFactory,
	orderStore ports.OrderStore,
	offerHistory ports.OfferHistory,
	queue ports.JobQueue,
	constraints ports.ConstraintsProvider,
) EnqueueDueAssignmentsCommandHandler {
	return EnqueueDueAssignmentsCommandHandler{
		uowFactory:   uowFactory,
		orderStore:   orderStore,
		offerHistory: offerHistory,
		queue:        queue,
		constraints:  constraints,
	}
}

// Handle scans one batch of due assignments and returns the number of jobs
// published. Records whose order is no longer assignable are deleted in the
// same transaction and produce no job.
func (h EnqueueDueAssignmentsCommandHandler) Handle(ctx context.Context, command EnqueueDueAssignmentsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	constraints := h.constraints.Constraints(ctx)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.AssignmentRepository()

	due, err := repo.DueForProcessing(ctx, now, constraints.ScanBatchLimit)
	if err != nil {
		return 0, err
	}

	live := due[:0]
	var removed []kernel.UUID
	for _, pending := range due {
		orderView, viewErr := h.orderStore.GetConfirmedOrder(ctx, pending.OrderID())
		dead := errors.Is(viewErr, errs.ErrObjectNotFound)
		if viewErr != nil && !dead {
			return 0, viewErr
		}
		if !dead && orderView.CourierID != nil {
			dead = true
		}

		if dead {
			if err = repo.Remove(ctx, pending.OrderID()); err != nil {
				return 0, err
			}
			removed = append(removed, pending.OrderID())
			continue
		}

		live = append(live, pending)
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	for _, orderID := range removed {
		_ = h.offerHistory.Clear(ctx, orderID)
	}

	enqueued := 0
	for _, pending := range live {
		_, err = h.queue.Enqueue(ctx, ports.QueueAssignments, ports.AssignmentJob{
			Kind:         ports.JobKindProcessAssignment,
			AssignmentID: pending.ID(),
			OrderID:      pending.OrderID(),
		}, ports.JobOptions{
			Priority:    pending.Priority(),
			RetryLimit:  jobRetryLimit,
			ExpireAfter: jobVisibility,
		})
		if err != nil {
			return enqueued, err
		}
		enqueued++
	}

	return enqueued, nil
}
