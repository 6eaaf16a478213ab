package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrOrderNotAssignable is returned when the submitted order does not exist,
// is not confirmed, or already has a courier.
var ErrOrderNotAssignable = errors.New("order is not assignable")

// SubmitForAssignmentCommandHandler starts the courier search for an order.
// Validates the order against the order store, creates the durable pending
// assignment due immediately, and announces the search to subscribers.
// The reconciliation scanner picks the record up on its next pass.
//
// Example:
//
//	handler := NewSubmitForAssignmentCommandHandler(uowFactory, orderStore, publisher)
//	cmd, _ := NewSubmitForAssignmentCommand(orderID, 0)
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrOrderNotAssignable) {
//	    // order was cancelled or already assigned
//	}
type SubmitForAssignmentCommandHandler struct {
	uowFactory UoWFactory
	orderStore ports.OrderStore
	publisher  ports.EventPublisher
}

// NewSubmitForAssignmentCommandHandler creates a handler for order submission
// operations.
func NewSubmitForAssignmentCommandHandler(
	uowFactory UoWFactory,
	orderStore ports.OrderStore,
	publisher ports.EventPublisher,
) SubmitForAssignmentCommandHandler {
	return SubmitForAssignmentCommandHandler{
		uowFactory: uowFactory,
		orderStore: orderStore,
		publisher:  publisher,
	}
}

// Handle processes the submission command.
// Verifies the order is confirmed and unassigned, then persists a pending
// assignment. Re-submitting an order that is already searching is a no-op.
func (h SubmitForAssignmentCommandHandler) Handle(ctx context.Context, command SubmitForAssignmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	orderView, err := h.orderStore.GetConfirmedOrder(ctx, command.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ErrOrderNotAssignable
	}
	if err != nil {
		return err
	}
	if orderView.CourierID != nil {
		return ErrOrderNotAssignable
	}

	pending, err := assignment.NewPendingAssignment(command.OrderID(), command.Priority(), time.Now().UTC())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.AssignmentRepository().Add(ctx, pending); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	_ = h.publisher.Publish(ctx, ports.TopicOrderStatus, ports.OrderStatusEvent{
		OrderID: command.OrderID(),
		Status:  ports.OrderStatusSearching,
	})

	return nil
}
