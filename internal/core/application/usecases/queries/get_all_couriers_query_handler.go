package queries

import (
	"context"

	"delivery-tracker/internal/core/ports"
)

// GetAllCouriersQueryHandler lists the courier pool ordered by name.
//
// Example:
//
//	handler := NewGetAllCouriersQueryHandler(uowFactory)
//	couriers, err := handler.Handle(ctx, NewGetAllCouriersQuery())
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("Found %d couriers\n", len(couriers))
type GetAllCouriersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

// NewGetAllCouriersQueryHandler creates a handler for courier retrieval queries.
func NewGetAllCouriersQueryHandler(uowFactory ports.UnitOfWorkFactory) GetAllCouriersQueryHandler {
	return GetAllCouriersQueryHandler{uowFactory: uowFactory}
}

// Handle executes the query outside of a transaction.
func (h GetAllCouriersQueryHandler) Handle(
	ctx context.Context,
	query GetAllCouriersQuery,
) ([]GetAllCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	all, err := h.uowFactory.Create().CourierRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	couriers := make([]GetAllCouriersQueryResponse, 0, len(all))
	for _, c := range all {
		couriers = append(couriers, GetAllCouriersQueryResponse{
			ID:           c.ID(),
			Name:         c.Name(),
			Phone:        c.Phone(),
			Available:    c.IsAvailable(),
			CurrentOrder: c.CurrentOrder(),
		})
	}

	return couriers, nil
}
