// Package ports defines the contracts between the application core and its adapters:
// repositories, the unit of work, the event publisher and the status notifier.
package ports

import (
	"context"

	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for the courier pool.
type CourierRepository interface {
	// Add persists a new courier.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists availability changes of an existing courier.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAll retrieves every courier ordered by name.
	GetAll(ctx context.Context) ([]*courier.Courier, error)

	// GetFirstAvailable returns the first courier currently marked available and locks
	// it for the rest of the unit of work, so that "pick and mark unavailable" is one
	// indivisible step across concurrent transactions.
	// Returns errs.ObjectNotFoundError when every courier is busy.
	//
	// Example:
	//   c, err := uow.CourierRepository().GetFirstAvailable(ctx)
	//   if errors.Is(err, errs.ErrObjectNotFound) {
	//       // proceed without assignment
	//   }
	GetFirstAvailable(ctx context.Context) (*courier.Courier, error)

	// GetAllBusy retrieves all couriers currently serving an order.
	GetAllBusy(ctx context.Context) ([]*courier.Courier, error)
}
