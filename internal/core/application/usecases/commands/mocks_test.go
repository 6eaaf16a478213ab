package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingAssignment(t *testing.T, orderID kernel.UUID) *assignment.PendingAssignment {
	t.Helper()
	a, err := assignment.NewPendingAssignment(orderID, 0, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)
	return a
}

func offeredAssignment(t *testing.T, orderID, courierID kernel.UUID) *assignment.PendingAssignment {
	t.Helper()
	a := pendingAssignment(t, orderID)
	require.NoError(t, a.MarkOffered(courierID, time.Now().UTC(), 2*time.Minute))
	return a
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) Add(ctx context.Context, a *assignment.PendingAssignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, a *assignment.PendingAssignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Remove(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockAssignmentRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*assignment.PendingAssignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.PendingAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetOfferForCourier(ctx context.Context, courierID kernel.UUID) (*assignment.PendingAssignment, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.PendingAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) DueForProcessing(ctx context.Context, now time.Time, limit int) ([]*assignment.PendingAssignment, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assignment.PendingAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) OfferedAndExpired(ctx context.Context, now time.Time) ([]*assignment.PendingAssignment, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assignment.PendingAssignment), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) AssignmentRepository() ports.AssignmentRepository {
	args := m.Called()
	return args.Get(0).(ports.AssignmentRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderStore struct{ mock.Mock }

func (m *MockOrderStore) GetConfirmedOrder(ctx context.Context, orderID kernel.UUID) (*ports.OrderView, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.OrderView), args.Error(1)
}

func (m *MockOrderStore) TrySetCourier(ctx context.Context, orderID, courierID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID, courierID)
	return args.Bool(0), args.Error(1)
}

type MockCourierDirectory struct{ mock.Mock }

func (m *MockCourierDirectory) GetProfile(ctx context.Context, courierID kernel.UUID) (*courier.Profile, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Profile), args.Error(1)
}

type MockLocationSource struct{ mock.Mock }

func (m *MockLocationSource) UpdateLocation(ctx context.Context, entry courier.ActiveCourier) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLocationSource) Snapshot(ctx context.Context) ([]courier.ActiveCourier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]courier.ActiveCourier), args.Error(1)
}

func (m *MockLocationSource) Remove(ctx context.Context, courierID kernel.UUID) error {
	args := m.Called(ctx, courierID)
	return args.Error(0)
}

type MockOfferHistory struct{ mock.Mock }

func (m *MockOfferHistory) Append(ctx context.Context, orderID, courierID kernel.UUID) error {
	args := m.Called(ctx, orderID, courierID)
	return args.Error(0)
}

func (m *MockOfferHistory) Offered(ctx context.Context, orderID kernel.UUID) ([]kernel.UUID, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockOfferHistory) Clear(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockConstraintsProvider struct{ mock.Mock }

func (m *MockConstraintsProvider) Constraints(ctx context.Context) services.Constraints {
	args := m.Called(ctx)
	return args.Get(0).(services.Constraints)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

type MockJobQueue struct{ mock.Mock }

func (m *MockJobQueue) Enqueue(ctx context.Context, queue string, payload ports.AssignmentJob, opts ports.JobOptions) (kernel.UUID, error) {
	args := m.Called(ctx, queue, payload, opts)
	return args.Get(0).(kernel.UUID), args.Error(1)
}
