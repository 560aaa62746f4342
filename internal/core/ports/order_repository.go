package ports

import (
	"context"
	"errors"

	"delivery-tracker/internal/core/domain/model/order"
)

// ErrStatusConflict is returned by OrderRepository.Update when the persisted status no
// longer equals the expected one: another writer moved the order first.
var ErrStatusConflict = errors.New("order status changed concurrently")

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// NextIdentity allocates a fresh order identifier. Identifiers are never reused.
	NextIdentity(ctx context.Context) (order.ID, error)

	// Add persists a new order aggregate, including its history.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the aggregate only if the stored status still equals expected
	// (compare-and-set). Returns ErrStatusConflict otherwise, and
	// errs.ErrObjectNotFound if the order does not exist.
	Update(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// Get retrieves an order with its history.
	// Returns errs.ObjectNotFoundError when no order has the given id.
	Get(ctx context.Context, id order.ID) (*order.Order, error)

	// GetActive retrieves all orders in a non-terminal status, ordered by id.
	GetActive(ctx context.Context) ([]*order.Order, error)
}
