package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExpireOffersCommandHandler_Handle_ReleasesExpiredOffers(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewExpireOffersCommand()

	first := pendingAssignment(t, kernel.NewUUID())
	require.NoError(t, first.MarkOffered(kernel.NewUUID(), time.Now().UTC().Add(-time.Hour), time.Minute))
	second := pendingAssignment(t, kernel.NewUUID())
	require.NoError(t, second.MarkOffered(kernel.NewUUID(), time.Now().UTC().Add(-time.Hour), time.Minute))

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("OfferedAndExpired", ctx, mock.AnythingOfType("time.Time")).
			Return([]*assignment.PendingAssignment{first, second}, nil).Once(),
		repo.On("Update", ctx, first).Return(nil).Once(),
		repo.On("Update", ctx, second).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewExpireOffersCommandHandler(factory, constraints)
	released, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, released)

	for _, a := range []*assignment.PendingAssignment{first, second} {
		assert.Equal(t, assignment.Pending, a.Status())
		assert.Nil(t, a.OfferedCourier())
		assert.Equal(t, 1, a.AttemptCount())
	}

	repo.AssertExpectations(t)
}

func TestExpireOffersCommandHandler_Handle_NothingExpired(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewExpireOffersCommand()

	repo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	constraints := new(MockConstraintsProvider)
	constraints.On("Constraints", ctx).Return(services.DefaultConstraints()).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("AssignmentRepository").Return(repo).Once(),
		repo.On("OfferedAndExpired", ctx, mock.AnythingOfType("time.Time")).
			Return([]*assignment.PendingAssignment{}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewExpireOffersCommandHandler(factory, constraints)
	released, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 0, released)
	repo.AssertNotCalled(t, "Update")
}
