package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectOfferCommandIsNotConstructed = errors.New(
	"RejectOfferCommand must be created via NewRejectOfferCommand constructor",
)

// RejectOfferCommand represents a courier declining an outstanding offer.
type RejectOfferCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRejectOfferCommand creates a command for a courier rejecting an offer.
// Validates that both identifiers are valid UUIDs.
func NewRejectOfferCommand(orderID, courierID kernel.UUID) (RejectOfferCommand, error) {
	rejectCommand := RejectOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		rejectCommand.setOrderID(orderID),
		rejectCommand.setCourierID(courierID),
	); err != nil {
		return RejectOfferCommand{}, err
	}

	return rejectCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectOfferCommand) Validate() error {
	return c.guard.Validate(ErrRejectOfferCommandIsNotConstructed)
}

// OrderID returns the order whose offer is being declined.
func (c RejectOfferCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the declining courier.
func (c RejectOfferCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *RejectOfferCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RejectOfferCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
