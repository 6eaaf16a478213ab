package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand represents a courier's acceptance of an outstanding
// offer for an order.
type AcceptOfferCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOfferCommand creates a command for a courier accepting an offer.
// Validates that both identifiers are valid UUIDs.
func NewAcceptOfferCommand(orderID, courierID kernel.UUID) (AcceptOfferCommand, error) {
	acceptCommand := AcceptOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		acceptCommand.setOrderID(orderID),
		acceptCommand.setCourierID(courierID),
	); err != nil {
		return AcceptOfferCommand{}, err
	}

	return acceptCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

// OrderID returns the order whose offer is being accepted.
func (c AcceptOfferCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the accepting courier.
func (c AcceptOfferCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *AcceptOfferCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AcceptOfferCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
