package commands

import (
	"context"
	"time"

	"dispatch/internal/core/ports"
)

// ExpireOffersCommandHandler releases offers whose response deadline passed
// without an answer. A timeout counts exactly like a rejection: the offer is
// cleared, the attempt counter grows, and the assignment comes due again
// after backoff. The courier who ignored the offer stays in the offer
// history.
type ExpireOffersCommandHandler struct {
	uowFactory  UoWFactory
	constraints ports.ConstraintsProvider
}

// NewExpireOffersCommandHandler creates a handler for the offer expiry sweep.
func NewExpireOffersCommandHandler(
	uowFactory UoWFactory,
	constraints ports.ConstraintsProvider,
) ExpireOffersCommandHandler {
	return ExpireOffersCommandHandler{
		uowFactory:  uowFactory,
		constraints: constraints,
	}
}

// Handle sweeps all expired offers in one transaction and returns the number
// of offers released.
func (h ExpireOffersCommandHandler) Handle(ctx context.Context, command ExpireOffersCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	constraints := h.constraints.Constraints(ctx)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.AssignmentRepository()

	expired, err := repo.OfferedAndExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, pending := range expired {
		if err = pending.RecordFailure(now, constraints.BaseDelay, constraints.MaxDelay); err != nil {
			return 0, err
		}
		if err = repo.Update(ctx, pending); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(expired), nil
}
