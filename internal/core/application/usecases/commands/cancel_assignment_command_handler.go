package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// CancelAssignmentCommandHandler stops the courier search for an order.
// Removal is idempotent: cancelling an order that was never submitted, or
// whose search already finished, succeeds without effect. An outstanding
// offer dies with the record; a courier accepting it afterwards gets
// assignment.ErrNoOutstandingOffer.
type CancelAssignmentCommandHandler struct {
	uowFactory   UoWFactory
	offerHistory ports.OfferHistory
}

// NewCancelAssignmentCommandHandler creates a handler for assignment
// cancellation operations.
func NewCancelAssignmentCommandHandler(
	uowFactory UoWFactory,
	offerHistory ports.OfferHistory,
) CancelAssignmentCommandHandler {
	return CancelAssignmentCommandHandler{
		uowFactory:   uowFactory,
		offerHistory: offerHistory,
	}
}

// Handle processes the cancellation command.
func (h CancelAssignmentCommandHandler) Handle(ctx context.Context, command CancelAssignmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.AssignmentRepository().Remove(ctx, command.OrderID()); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.offerHistory.Clear(ctx, command.OrderID())

	return nil
}
