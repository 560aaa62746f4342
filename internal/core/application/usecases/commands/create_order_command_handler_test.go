package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) NextIdentity(ctx context.Context) (order.ID, error) {
	args := m.Called(ctx)
	return args.Get(0).(order.ID), args.Error(1)
}
func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Update(_ context.Context, _ *order.Order, _ order.Status) error {
	return errors.New("not implemented in mock")
}
func (m *MockOrderRepository) Get(_ context.Context, _ order.ID) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockOrderRepository) GetActive(_ context.Context) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

func newCreateOrderCommand(t *testing.T) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(business, customer, contact, 25)
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("NextIdentity", ctx).Return(order.ID(17), nil).Once(),
		repo.On("Add", ctx, mock.MatchedBy(func(o *order.Order) bool {
			return o.ID() == 17 && o.Status() == order.Pending && len(o.History()) == 1
		})).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	notifier := new(MockStatusNotifier)
	notifier.On("NotifyStatusChange", ctx, contact, order.ID(17), order.Pending).Return(nil).Once()
	starter := new(MockLifecycleStarter)
	starter.On("StartOrder", order.ID(17), business, customer).Once()

	h := commands.NewCreateOrderCommandHandler(factory, starter, notifier, slog.Default())
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.ID(17), result.OrderID)
	assert.InDelta(t, 3.14, result.DistanceKm, 1e-9)
	assert.Equal(t, 31, result.EstimatedMinutes)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	notifier.AssertExpectations(t)
	starter.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_NotificationFailureDoesNotFailCreation(t *testing.T) {
	ctx := t.Context()
	_, factory := newStore(t)

	notifier := new(MockStatusNotifier)
	notifier.On("NotifyStatusChange", ctx, contact, order.ID(1), order.Pending).Return(errors.New("smtp down")).Once()
	starter := new(MockLifecycleStarter)
	starter.On("StartOrder", order.ID(1), business, customer).Once()

	h := commands.NewCreateOrderCommandHandler(orderUoWFactory{factory: factory}, starter, notifier, slog.Default())
	result, err := h.Handle(ctx, newCreateOrderCommand(t))

	require.NoError(t, err)
	assert.Equal(t, order.ID(1), result.OrderID)
	starter.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOrderCommand{} // not constructed properly
	factory := new(MockOrderUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, new(MockLifecycleStarter), new(MockStatusNotifier), slog.Default())

	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateOrderCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()

	uow := new(MockOrderUoW)
	factory := new(MockOrderUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	h := commands.NewCreateOrderCommandHandler(factory, new(MockLifecycleStarter), new(MockStatusNotifier), slog.Default())
	_, err := h.Handle(ctx, newCreateOrderCommand(t))
	require.Error(t, err)
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("NextIdentity", ctx).Return(order.ID(3), nil).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	starter := new(MockLifecycleStarter)
	notifier := new(MockStatusNotifier)

	h := commands.NewCreateOrderCommandHandler(factory, starter, notifier, slog.Default())
	_, err := h.Handle(ctx, newCreateOrderCommand(t))
	require.Error(t, err)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	starter.AssertNotCalled(t, "StartOrder", mock.Anything, mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("NextIdentity", ctx).Return(order.ID(3), nil).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	starter := new(MockLifecycleStarter)

	h := commands.NewCreateOrderCommandHandler(factory, starter, new(MockStatusNotifier), slog.Default())
	_, err := h.Handle(ctx, newCreateOrderCommand(t))
	require.Error(t, err)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	starter.AssertNotCalled(t, "StartOrder", mock.Anything, mock.Anything, mock.Anything)
}
