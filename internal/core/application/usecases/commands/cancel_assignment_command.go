package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCancelAssignmentCommandIsNotConstructed = errors.New(
	"CancelAssignmentCommand must be created via NewCancelAssignmentCommand constructor",
)

// CancelAssignmentCommand represents a request to stop the courier search for
// an order, typically because the order was cancelled upstream.
type CancelAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCancelAssignmentCommand creates a command to cancel an order's courier
// search. Validates that the order ID is a valid UUID.
func NewCancelAssignmentCommand(orderID kernel.UUID) (CancelAssignmentCommand, error) {
	cancelCommand := CancelAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cancelCommand.setOrderID(orderID); err != nil {
		return CancelAssignmentCommand{}, err
	}

	return cancelCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelAssignmentCommandIsNotConstructed)
}

// OrderID returns the order whose search is being cancelled.
func (c CancelAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *CancelAssignmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
