package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrEnqueueDueAssignmentsCommandIsNotConstructed = errors.New(
	"EnqueueDueAssignmentsCommand must be created via NewEnqueueDueAssignmentsCommand constructor",
)

// EnqueueDueAssignmentsCommand triggers one scan over due assignments,
// publishing a processing job for each. The scan reads durable state only,
// which is what lets the engine recover work after a crash: anything that
// was mid-flight simply becomes due again.
type EnqueueDueAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

// NewEnqueueDueAssignmentsCommand creates a new command to scan for due
// assignments. This is a parameterless command run on the scanner cadence.
func NewEnqueueDueAssignmentsCommand() EnqueueDueAssignmentsCommand {
	return EnqueueDueAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *EnqueueDueAssignmentsCommand) Validate() error {
	return c.guard.Validate(
		ErrEnqueueDueAssignmentsCommandIsNotConstructed,
	)
}
