package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RejectOfferCommandHandler records a courier's rejection of an offer.
// The rejection is final for that courier and order: the courier stays in the
// offer history and is never offered this order again. The assignment goes
// back on the retry schedule with backoff and the scanner tries the next
// candidate when it comes due.
type RejectOfferCommandHandler struct {
	uowFactory  UoWFactory
	constraints ports.ConstraintsProvider
}

// NewRejectOfferCommandHandler creates a handler for offer rejection
// operations.
func NewRejectOfferCommandHandler(
	uowFactory UoWFactory,
	constraints ports.ConstraintsProvider,
) RejectOfferCommandHandler {
	return RejectOfferCommandHandler{
		uowFactory:  uowFactory,
		constraints: constraints,
	}
}

// Handle processes the rejection command.
//
// Returns assignment.ErrNoOutstandingOffer when no live offer exists for this
// courier and order. A rejection that races the expiry sweep is harmless
// either way: both paths release the offer into the same failed-attempt
// bookkeeping.
func (h RejectOfferCommandHandler) Handle(ctx context.Context, command RejectOfferCommand) error {
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

	offered := pending.OfferedCourier()
	if !pending.IsOffered() || offered == nil || !offered.IsEqual(command.CourierID()) {
		return assignment.ErrNoOutstandingOffer
	}

	if err = pending.RecordFailure(now, constraints.BaseDelay, constraints.MaxDelay); err != nil {
		return err
	}

	if err = repo.Update(ctx, pending); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
