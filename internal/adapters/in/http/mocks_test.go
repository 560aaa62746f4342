package http_test

import (
	"context"

	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/application/usecases/queries"

	"github.com/stretchr/testify/mock"
)

type MockCreateOrderHandler struct {
	mock.Mock
}

func (m *MockCreateOrderHandler) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.CreateOrderResult), args.Error(1)
}

type MockManualStatusHandler struct {
	mock.Mock
}

func (m *MockManualStatusHandler) Handle(ctx context.Context, cmd commands.ApplyManualStatusCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockCreateCourierHandler struct {
	mock.Mock
}

func (m *MockCreateCourierHandler) Handle(ctx context.Context, cmd commands.CreateCourierCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockGetOrderHandler struct {
	mock.Mock
}

func (m *MockGetOrderHandler) Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetOrderQueryResponse), args.Error(1)
}

type MockActiveOrdersHandler struct {
	mock.Mock
}

func (m *MockActiveOrdersHandler) Handle(
	ctx context.Context,
	query queries.GetActiveOrdersQuery,
) ([]queries.GetActiveOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.GetActiveOrdersQueryResponse), args.Error(1)
}

type MockCouriersHandler struct {
	mock.Mock
}

func (m *MockCouriersHandler) Handle(
	ctx context.Context,
	query queries.GetAllCouriersQuery,
) ([]queries.GetAllCouriersQueryResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.GetAllCouriersQueryResponse), args.Error(1)
}
