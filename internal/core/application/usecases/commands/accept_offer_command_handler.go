package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrAssignmentConflict is returned when the courier's acceptance was valid
// but the order was captured by someone else in the meantime. The losing
// courier gets this error; the order keeps searching or stays with the
// winner.
var ErrAssignmentConflict = errors.New("order was assigned to another courier")

// AcceptOfferCommandHandler finalizes a courier's acceptance of an offer.
// The in-engine offer check is necessary but not sufficient: the acceptance
// only wins when the conditional courier write on the order itself succeeds,
// which is what decides races against cancellation or a concurrent
// assignment path.
//
// On success the pending assignment is removed, the offer history is cleared,
// and a courier_assigned status event is published. On a lost race the
// attempt is recorded as failed (with backoff) and ErrAssignmentConflict is
// returned.
type AcceptOfferCommandHandler struct {
	uowFactory   UoWFactory
	orderStore   ports.OrderStore
	offerHistory ports.OfferHistory
	constraints  ports.ConstraintsProvider
	publisher    ports.EventPublisher
}

// NewAcceptOfferCommandHandler creates a handler for offer acceptance
// operations.
func NewAcceptOfferCommandHandler(
	uowFactory UoWFactory,
	orderStore ports.OrderStore,
	offerHistory ports.OfferHistory,
	constraints ports.ConstraintsProvider,
	publisher ports.EventPublisher,
) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{
		uowFactory:   uowFactory,
		orderStore:   orderStore,
		offerHistory: offerHistory,
		constraints:  constraints,
		publisher:    publisher,
	}
}

// Handle processes the acceptance command.
//
// Returns assignment.ErrNoOutstandingOffer when no live offer exists for this
// courier and order, assignment.ErrOfferExpired when the response deadline
// passed, and ErrAssignmentConflict when the conditional order write was
// lost.
func (h AcceptOfferCommandHandler) Handle(ctx context.Context, command AcceptOfferCommand) error {
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
		return assignment.ErrNoOutstandingOffer
	}
	if err != nil {
		return err
	}

	// Validate only; the assignment must stay Offered until the conditional
	// write is won, so the loser path can still release the offer.
	if err = pending.CheckAccept(command.CourierID(), now); err != nil {
		return err
	}

	won, err := h.orderStore.TrySetCourier(ctx, command.OrderID(), command.CourierID())
	if err != nil {
		return err
	}

	if !won {
		// Lost the race: release the offer and put the assignment back on
		// the retry schedule. The next scan revalidates the order and
		// removes the record if it is gone for good.
		if err = pending.RecordFailure(now, constraints.BaseDelay, constraints.MaxDelay); err != nil {
			return err
		}
		if err = repo.Update(ctx, pending); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}
		return ErrAssignmentConflict
	}

	if err = pending.ConfirmAccept(command.CourierID(), now); err != nil {
		return err
	}

	if err = repo.Remove(ctx, command.OrderID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.offerHistory.Clear(ctx, command.OrderID())

	courierID := command.CourierID()
	_ = h.publisher.Publish(ctx, ports.TopicOrderStatus, ports.OrderStatusEvent{
		OrderID:   command.OrderID(),
		Status:    ports.OrderStatusCourierAssigned,
		CourierID: &courierID,
	})

	return nil
}
