package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrSubmitForAssignmentCommandIsNotConstructed = errors.New(
		"SubmitForAssignmentCommand must be created via NewSubmitForAssignmentCommand constructor",
	)
	ErrPriorityIsInvalid = errors.New("priority must not be negative")
)

// SubmitForAssignmentCommand represents a request to start the courier search
// for a confirmed order. Submitting the same order twice is harmless: the
// assignment store keeps at most one record per order.
//
// Example:
//
//	cmd, err := NewSubmitForAssignmentCommand(orderID, 10)
//	if err != nil {
//	    return fmt.Errorf("invalid submission: %w", err)
//	}
//
//	handler := NewSubmitForAssignmentCommandHandler(uowFactory, orderStore, publisher)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to submit order: %w", err)
//	}
type SubmitForAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	priority int

	guard guard.ConstructorGuard
}

// NewSubmitForAssignmentCommand creates a command to submit an order for
// courier assignment. Validates that the order ID is valid and the priority
// is not negative.
func NewSubmitForAssignmentCommand(orderID kernel.UUID, priority int) (SubmitForAssignmentCommand, error) {
	submitCommand := SubmitForAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		submitCommand.setOrderID(orderID),
		submitCommand.setPriority(priority),
	); err != nil {
		return SubmitForAssignmentCommand{}, err
	}

	return submitCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitForAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrSubmitForAssignmentCommandIsNotConstructed)
}

// OrderID returns the order to find a courier for.
func (c SubmitForAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Priority returns the scheduling priority, higher first.
func (c SubmitForAssignmentCommand) Priority() int {
	return c.priority
}

func (c *SubmitForAssignmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *SubmitForAssignmentCommand) setPriority(priority int) error {
	if priority < 0 {
		return ErrPriorityIsInvalid
	}

	c.priority = priority
	return nil
}
