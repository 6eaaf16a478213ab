package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ProcessAssignmentCommandHandler runs one matching attempt for a due
// assignment: revalidate the order, check the abandonment limits, pick the
// nearest eligible courier not yet offered this order, and publish the offer.
//
// Business outcomes never surface as handler errors. A dead order removes
// the record, exhausted limits abandon it, no candidate schedules a retry
// with backoff; all three return nil so the queue does not burn transport
// retries on them. Only infrastructure failures return an error.
type ProcessAssignmentCommandHandler struct {
	uowFactory   UoWFactory
	orderStore   ports.OrderStore
	directory    ports.CourierDirectory
	locations    ports.CourierLocationSource
	offerHistory ports.OfferHistory
	constraints  ports.ConstraintsProvider
	publisher    ports.EventPublisher
	matcher      services.CourierMatcher
}

// NewProcessAssignmentCommandHandler creates a handler for assignment
// processing operations.
func NewProcessAssignmentCommandHandler(
	uowFactory UoWFactory,
	orderStore ports.OrderStore,
	directory ports.CourierDirectory,
	locations ports.CourierLocationSource,
	offerHistory ports.OfferHistory,
	constraints ports.ConstraintsProvider,
	publisher ports.EventPublisher,
) ProcessAssignmentCommandHandler {
	return ProcessAssignmentCommandHandler{
		uowFactory:   uowFactory,
		orderStore:   orderStore,
		directory:    directory,
		locations:    locations,
		offerHistory: offerHistory,
		constraints:  constraints,
		publisher:    publisher,
		matcher:      services.NewCourierMatcher(),
	}
}

// Handle processes one matching attempt.
func (h ProcessAssignmentCommandHandler) Handle(ctx context.Context, command ProcessAssignmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	constraints := h.constraints.Constraints(ctx)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.AssignmentRepository()

	pending, err := repo.GetByOrderID(ctx, command.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		// Cancelled or accepted since the job was enqueued.
		return nil
	}
	if err != nil {
		return err
	}

	// Duplicate or early delivery: only a due, offer-free Pending record is
	// processed. The expiry sweep owns outstanding offers.
	if pending.Status() != assignment.Pending || pending.NextAttemptAt().After(now) {
		return nil
	}

	orderView, err := h.orderStore.GetConfirmedOrder(ctx, command.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return h.removeDeadRecord(ctx, uow, repo, command)
	}
	if err != nil {
		return err
	}
	if orderView.CourierID != nil {
		return h.removeDeadRecord(ctx, uow, repo, command)
	}

	if pending.ShouldAbandon(now, constraints.MaxAttempts, constraints.MaxAge) {
		return h.abandon(ctx, uow, repo, pending, command)
	}

	candidates, err := h.collectCandidates(ctx)
	if err != nil {
		return err
	}

	excluded, err := h.offerHistory.Offered(ctx, command.OrderID())
	if err != nil {
		return err
	}

	match, err := h.matcher.Match(orderView.Pickup, candidates, excluded, constraints, now)
	if errors.Is(err, services.ErrNoCandidateFound) {
		if err = pending.RecordFailure(now, constraints.BaseDelay, constraints.MaxDelay); err != nil {
			return err
		}
		if err = repo.Update(ctx, pending); err != nil {
			return err
		}
		return uow.Commit(ctx)
	}
	if err != nil {
		return err
	}

	if err = pending.MarkOffered(match.CourierID, now, constraints.OfferResponseTTL); err != nil {
		return err
	}

	// Record the courier before the offer becomes visible, so a crash
	// between the two can only over-exclude, never offer twice.
	if err = h.offerHistory.Append(ctx, command.OrderID(), match.CourierID); err != nil {
		return err
	}

	if err = repo.Update(ctx, pending); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	expiresAt := pending.OfferExpiresAt()
	if expiresAt != nil {
		_ = h.publisher.Publish(ctx, ports.CourierTopic(match.CourierID), ports.OfferEvent{
			OrderID:    command.OrderID(),
			CourierID:  match.CourierID,
			DistanceKm: match.DistanceKm,
			ExpiresAt:  *expiresAt,
		})
	}

	return nil
}

// collectCandidates joins the live location snapshot with directory profiles.
// Couriers missing from the directory are skipped; the registry may briefly
// hold heartbeats for deactivated accounts.
func (h ProcessAssignmentCommandHandler) collectCandidates(ctx context.Context) ([]services.Candidate, error) {
	snapshot, err := h.locations.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]services.Candidate, 0, len(snapshot))
	for _, active := range snapshot {
		profile, profileErr := h.directory.GetProfile(ctx, active.CourierID())
		if errors.Is(profileErr, errs.ErrObjectNotFound) {
			continue
		}
		if profileErr != nil {
			return nil, profileErr
		}

		candidates = append(candidates, services.Candidate{
			Active:  active,
			Profile: profile,
		})
	}

	return candidates, nil
}

// removeDeadRecord drops an assignment whose order no longer needs one.
func (h ProcessAssignmentCommandHandler) removeDeadRecord(
	ctx context.Context,
	uow UoW,
	repo ports.AssignmentRepository,
	command ProcessAssignmentCommand,
) error {
	if err := repo.Remove(ctx, command.OrderID()); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.offerHistory.Clear(ctx, command.OrderID())
	return nil
}

// abandon moves the assignment to its terminal state and tells subscribers
// the search failed. Acting on the failure is the order service's call.
func (h ProcessAssignmentCommandHandler) abandon(
	ctx context.Context,
	uow UoW,
	repo ports.AssignmentRepository,
	pending *assignment.PendingAssignment,
	command ProcessAssignmentCommand,
) error {
	if err := pending.MarkAbandoned(); err != nil {
		return err
	}
	if err := repo.Update(ctx, pending); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.offerHistory.Clear(ctx, command.OrderID())

	_ = h.publisher.Publish(ctx, ports.TopicOrderStatus, ports.OrderStatusEvent{
		OrderID: command.OrderID(),
		Status:  ports.OrderStatusAssignmentFailed,
	})

	return nil
}
