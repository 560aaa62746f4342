package queries

import (
	"context"

	"delivery-tracker/internal/core/ports"
)

// GetActiveOrdersQueryHandler lists active orders sorted by id.
type GetActiveOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

// NewGetActiveOrdersQueryHandler creates a handler for active order queries.
func NewGetActiveOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{uowFactory: uowFactory}
}

// Handle executes the query outside of a transaction.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	active, err := h.uowFactory.Create().OrderRepository().GetActive(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]GetActiveOrdersQueryResponse, 0, len(active))
	for _, o := range active {
		resp := GetActiveOrdersQueryResponse{
			ID:       o.ID(),
			Status:   o.Status(),
			Customer: o.CustomerLocation(),
		}
		if c := o.Courier(); c != nil {
			resp.CourierName = c.Name
		}
		orders = append(orders, resp)
	}

	return orders, nil
}
