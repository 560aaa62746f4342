package queries

import (
	"context"

	"delivery-tracker/internal/core/ports"
)

// GetOrderQueryHandler loads one order. A missing order yields errs.ObjectNotFoundError.
type GetOrderQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

// NewGetOrderQueryHandler creates a handler for single order queries.
func NewGetOrderQueryHandler(uowFactory ports.UnitOfWorkFactory) GetOrderQueryHandler {
	return GetOrderQueryHandler{uowFactory: uowFactory}
}

// Handle executes the query outside of a transaction.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	return GetOrderQueryResponse{
		ID:               o.ID(),
		Status:           o.Status(),
		Business:         o.BusinessLocation(),
		Customer:         o.CustomerLocation(),
		DistanceKm:       o.DistanceKm(),
		EstimatedMinutes: o.EstimatedMinutes(),
		Courier:          o.Courier(),
		History:          o.History(),
	}, nil
}
