package commands_test

import (
	"testing"

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

func TestEnqueueDueAssignmentsCommandHandler_Handle_PublishesJobs(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewEnqueueDueAssignmentsCommand()

	first := pendingAssignment(t, kernel.NewUUID())
	second := pendingAssignment(t, kernel.NewUUID())
	due := []*assignment.PendingAssignment{first, second}

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	orderStore := new(MockOrderStore)
	history := new(MockOfferHistory)
	queue := new(MockJobQueue)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("DueForProcessing", ctx, mock.AnythingOfType("time.Time"), 50).Return(due, nil).Once(),
		orderStore.On("GetConfirmedOrder", ctx, first.OrderID()).
			Return(confirmedOrderView(first.OrderID()), nil).Once(),
		orderStore.On("GetConfirmedOrder", ctx, second.OrderID()).
			Return(confirmedOrderView(second.OrderID()), nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		queue.On("Enqueue", ctx, ports.QueueAssignments, mock.AnythingOfType("ports.AssignmentJob"),
			mock.AnythingOfType("ports.JobOptions")).Return(kernel.NewUUID(), nil).Twice(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewEnqueueDueAssignmentsCommandHandler(factory, orderStore, history, queue, constraints)
	enqueued, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, enqueued)

	payload := queue.Calls[0].Arguments[2].(ports.AssignmentJob)
	assert.Equal(t, ports.JobKindProcessAssignment, payload.Kind)
	assert.Equal(t, first.ID(), payload.AssignmentID)
	assert.Equal(t, first.OrderID(), payload.OrderID)

	queue.AssertExpectations(t)
	history.AssertNotCalled(t, "Clear")
}

func TestEnqueueDueAssignmentsCommandHandler_Handle_RemovesDeadRecords(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewEnqueueDueAssignmentsCommand()

	cancelled := pendingAssignment(t, kernel.NewUUID())
	taken := pendingAssignment(t, kernel.NewUUID())
	live := pendingAssignment(t, kernel.NewUUID())
	due := []*assignment.PendingAssignment{cancelled, taken, live}

	takenView := confirmedOrderView(taken.OrderID())
	winner := kernel.NewUUID()
	takenView.CourierID = &winner

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	orderStore := new(MockOrderStore)
	history := new(MockOfferHistory)
	queue := new(MockJobQueue)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("DueForProcessing", ctx, mock.AnythingOfType("time.Time"), 50).Return(due, nil).Once(),
		orderStore.On("GetConfirmedOrder", ctx, cancelled.OrderID()).
			Return(nil, errs.NewObjectNotFoundError("order", cancelled.OrderID().String())).Once(),
		repo.On("Remove", ctx, cancelled.OrderID()).Return(nil).Once(),
		orderStore.On("GetConfirmedOrder", ctx, taken.OrderID()).Return(takenView, nil).Once(),
		repo.On("Remove", ctx, taken.OrderID()).Return(nil).Once(),
		orderStore.On("GetConfirmedOrder", ctx, live.OrderID()).
			Return(confirmedOrderView(live.OrderID()), nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		history.On("Clear", ctx, cancelled.OrderID()).Return(nil).Once(),
		history.On("Clear", ctx, taken.OrderID()).Return(nil).Once(),
		queue.On("Enqueue", ctx, ports.QueueAssignments, mock.AnythingOfType("ports.AssignmentJob"),
			mock.AnythingOfType("ports.JobOptions")).Return(kernel.NewUUID(), nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewEnqueueDueAssignmentsCommandHandler(factory, orderStore, history, queue, constraints)
	enqueued, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, enqueued)

	// Only the still-assignable order produced a job.
	payload := queue.Calls[0].Arguments[2].(ports.AssignmentJob)
	assert.Equal(t, live.OrderID(), payload.OrderID)

	repo.AssertExpectations(t)
	history.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestEnqueueDueAssignmentsCommandHandler_Handle_NothingDue(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewEnqueueDueAssignmentsCommand()

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	queue := new(MockJobQueue)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("DueForProcessing", ctx, mock.AnythingOfType("time.Time"), 50).
			Return([]*assignment.PendingAssignment{}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewEnqueueDueAssignmentsCommandHandler(
		factory, new(MockOrderStore), new(MockOfferHistory), queue, constraints)
	enqueued, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 0, enqueued)
	queue.AssertNotCalled(t, "Enqueue")
}
