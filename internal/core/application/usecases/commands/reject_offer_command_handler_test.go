package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRejectOfferCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	cmd, err := commands.NewRejectOfferCommand(orderID, courierID)
	require.NoError(t, err)

	offered := offeredAssignment(t, orderID, courierID)

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("GetByOrderID", ctx, orderID).Return(offered, nil).Once(),
		repo.On("Update", ctx, mock.AnythingOfType("*assignment.PendingAssignment")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRejectOfferCommandHandler(factory, constraints)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	updated := repo.Calls[1].Arguments[1].(*assignment.PendingAssignment)
	assert.Equal(t, assignment.Pending, updated.Status())
	assert.Nil(t, updated.OfferedCourier())
	assert.Nil(t, updated.OfferExpiresAt())
	assert.Equal(t, 1, updated.AttemptCount())

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestRejectOfferCommandHandler_Handle_NoOffer(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	cmd, err := commands.NewRejectOfferCommand(orderID, courierID)
	require.NoError(t, err)

	// Pending, nothing offered.
	notOffered := pendingAssignment(t, orderID)

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("GetByOrderID", ctx, orderID).Return(notOffered, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRejectOfferCommandHandler(factory, constraints)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, assignment.ErrNoOutstandingOffer)
	repo.AssertNotCalled(t, "Update")
}

func TestRejectOfferCommandHandler_Handle_WrongCourier(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewRejectOfferCommand(orderID, kernel.NewUUID())
	require.NoError(t, err)

	offered := offeredAssignment(t, orderID, kernel.NewUUID())

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("GetByOrderID", ctx, orderID).Return(offered, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRejectOfferCommandHandler(factory, constraints)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, assignment.ErrNoOutstandingOffer)
}
