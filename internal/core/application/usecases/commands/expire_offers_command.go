package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrExpireOffersCommandIsNotConstructed = errors.New(
	"ExpireOffersCommand must be created via NewExpireOffersCommand constructor",
)

// ExpireOffersCommand triggers one sweep over outstanding offers whose
// response deadline has passed. Expiry lives in the durable state and this
// sweep, not in process-local timers, so offers published before a restart
// still expire on schedule.
type ExpireOffersCommand struct {
	guard guard.ConstructorGuard
}

// NewExpireOffersCommand creates a new command to sweep expired offers.
// This is a parameterless command run on the scanner cadence.
func NewExpireOffersCommand() ExpireOffersCommand {
	return ExpireOffersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *ExpireOffersCommand) Validate() error {
	return c.guard.Validate(
		ErrExpireOffersCommandIsNotConstructed,
	)
}
