package queries

import (
	"errors"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order with its status history.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID order.ID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for orderID.
func NewGetOrderQuery(orderID order.ID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the requested order.
func (q GetOrderQuery) OrderID() order.ID {
	return q.orderID
}

// GetOrderQueryResponse is the full read model of an order.
type GetOrderQueryResponse struct {
	ID               order.ID
	Status           order.Status
	Business         kernel.Location
	Customer         kernel.Location
	DistanceKm       float64
	EstimatedMinutes int
	Courier          *order.CourierAssignment
	History          []order.HistoryEntry
}
