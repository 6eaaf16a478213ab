package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrProcessAssignmentCommandIsNotConstructed = errors.New(
	"ProcessAssignmentCommand must be created via NewProcessAssignmentCommand constructor",
)

// ProcessAssignmentCommand represents one matching attempt for a due
// assignment. Produced by the reconciliation scanner and consumed by queue
// workers; because the queue delivers at least once, the handler revalidates
// everything against current state before acting.
type ProcessAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	orderID      kernel.UUID

	guard guard.ConstructorGuard
}

// NewProcessAssignmentCommand creates a command to run one matching attempt.
// Validates that both identifiers are valid UUIDs.
func NewProcessAssignmentCommand(assignmentID, orderID kernel.UUID) (ProcessAssignmentCommand, error) {
	processCommand := ProcessAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		processCommand.setAssignmentID(assignmentID),
		processCommand.setOrderID(orderID),
	); err != nil {
		return ProcessAssignmentCommand{}, err
	}

	return processCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c ProcessAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrProcessAssignmentCommandIsNotConstructed)
}

// AssignmentID returns the assignment record to process.
func (c ProcessAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// OrderID returns the order the assignment serves.
func (c ProcessAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *ProcessAssignmentCommand) setAssignmentID(assignmentID kernel.UUID) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}

	c.assignmentID = assignmentID
	return nil
}

func (c *ProcessAssignmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
