package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAcceptOfferCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	cmd, err := commands.NewAcceptOfferCommand(orderID, courierID)
	require.NoError(t, err)

	offered := offeredAssignment(t, orderID, courierID)

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	orderStore := new(MockOrderStore)
	history := new(MockOfferHistory)
	publisher := new(MockPublisher)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("GetByOrderID", ctx, orderID).Return(offered, nil).Once(),
		orderStore.On("TrySetCourier", ctx, orderID, courierID).Return(true, nil).Once(),
		repo.On("Remove", ctx, orderID).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		history.On("Clear", ctx, orderID).Return(nil).Once(),
		publisher.On("Publish", ctx, ports.TopicOrderStatus, mock.AnythingOfType("ports.OrderStatusEvent")).
			Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptOfferCommandHandler(factory, orderStore, history, constraints, publisher)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	event := publisher.Calls[0].Arguments[2].(ports.OrderStatusEvent)
	assert.Equal(t, ports.OrderStatusCourierAssigned, event.Status)
	require.NotNil(t, event.CourierID)
	assert.True(t, event.CourierID.IsEqual(courierID))

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	orderStore.AssertExpectations(t)
	history.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestAcceptOfferCommandHandler_Handle_NoAssignment(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	cmd, err := commands.NewAcceptOfferCommand(orderID, courierID)
	require.NoError(t, err)

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("GetByOrderID", ctx, orderID).
			Return(nil, errs.NewObjectNotFoundError("assignment", orderID.String())).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptOfferCommandHandler(
		factory, new(MockOrderStore), new(MockOfferHistory), constraints, new(MockPublisher))
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, assignment.ErrNoOutstandingOffer)
}

func TestAcceptOfferCommandHandler_Handle_WrongCourier(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	offeredTo := kernel.NewUUID()
	accepting := kernel.NewUUID()
	cmd, err := commands.NewAcceptOfferCommand(orderID, accepting)
	require.NoError(t, err)

	offered := offeredAssignment(t, orderID, offeredTo)

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	orderStore := new(MockOrderStore)
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

	handler := commands.NewAcceptOfferCommandHandler(
		factory, orderStore, new(MockOfferHistory), constraints, new(MockPublisher))
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, assignment.ErrNoOutstandingOffer)
	orderStore.AssertNotCalled(t, "TrySetCourier")
}

func TestAcceptOfferCommandHandler_Handle_ExpiredOffer(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	cmd, err := commands.NewAcceptOfferCommand(orderID, courierID)
	require.NoError(t, err)

	expired := pendingAssignment(t, orderID)
	require.NoError(t, expired.MarkOffered(courierID, time.Now().UTC().Add(-time.Hour), time.Minute))

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	orderStore := new(MockOrderStore)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("GetByOrderID", ctx, orderID).Return(expired, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptOfferCommandHandler(
		factory, orderStore, new(MockOfferHistory), constraints, new(MockPublisher))
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, assignment.ErrOfferExpired)
	orderStore.AssertNotCalled(t, "TrySetCourier")
}

func TestAcceptOfferCommandHandler_Handle_LostRace(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()
	cmd, err := commands.NewAcceptOfferCommand(orderID, courierID)
	require.NoError(t, err)

	offered := offeredAssignment(t, orderID, courierID)

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	orderStore := new(MockOrderStore)
	publisher := new(MockPublisher)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("GetByOrderID", ctx, orderID).Return(offered, nil).Once(),
		orderStore.On("TrySetCourier", ctx, orderID, courierID).Return(false, nil).Once(),
		repo.On("Update", ctx, mock.AnythingOfType("*assignment.PendingAssignment")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptOfferCommandHandler(
		factory, orderStore, new(MockOfferHistory), constraints, publisher)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrAssignmentConflict)

	// The losing courier's offer is released and the record rescheduled.
	updated := repo.Calls[1].Arguments[1].(*assignment.PendingAssignment)
	assert.Equal(t, assignment.Pending, updated.Status())
	assert.Nil(t, updated.OfferedCourier())
	assert.Equal(t, 1, updated.AttemptCount())

	publisher.AssertNotCalled(t, "Publish")
}
