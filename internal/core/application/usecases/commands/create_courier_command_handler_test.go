package commands_test

import (
	"context"
	"errors"
	"testing"

	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCourierRepository) Update(_ context.Context, _ *courier.Courier) error {
	return errors.New("not implemented in mock")
}
func (m *MockCourierRepository) Get(_ context.Context, _ kernel.UUID) (*courier.Courier, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockCourierRepository) GetAll(_ context.Context) ([]*courier.Courier, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockCourierRepository) GetFirstAvailable(_ context.Context) (*courier.Courier, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockCourierRepository) GetAllBusy(_ context.Context) ([]*courier.Courier, error) {
	return nil, errors.New("not implemented in mock")
}

type MockCourierUoW struct{ mock.Mock }

func (m *MockCourierUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockCourierUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockCourierUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockCourierUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

type MockCourierUoWFactory struct{ mock.Mock }

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

func TestCreateCourierCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateCourierCommand("Luis", "+573009998877")
	require.NoError(t, err)

	repo := new(MockCourierRepository)
	uow := new(MockCourierUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CourierRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.MatchedBy(func(c *courier.Courier) bool {
			return c.ID() == cmd.CourierID() && c.IsAvailable() && c.Name() == "Luis"
		})).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockCourierUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateCourierCommandHandler(factory)
	require.NoError(t, h.Handle(ctx, cmd))
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateCourierCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockCourierUoWFactory)
	h := commands.NewCreateCourierCommandHandler(factory)

	err := h.Handle(t.Context(), commands.CreateCourierCommand{})
	require.ErrorIs(t, err, commands.ErrCreateCourierCommandIsNotConstructed)
}

func TestCreateCourierCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateCourierCommand("Luis", "+573009998877")
	require.NoError(t, err)

	repo := new(MockCourierRepository)
	uow := new(MockCourierUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CourierRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*courier.Courier")).Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockCourierUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateCourierCommandHandler(factory)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	assert.True(t, repo.AssertExpectations(t))
}
