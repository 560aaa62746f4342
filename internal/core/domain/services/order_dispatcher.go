package services

import (
	"errors"
	"fmt"

	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/order"
)

// ErrCourierNotFound is returned when none of the candidate couriers is available.
// The lifecycle treats it as "proceed without assignment", not as a failure.
var ErrCourierNotFound = errors.New("courier not found")

// OrderDispatcher is a domain service that pairs an order with a courier from the pool
// and returns the courier once the order is finished.
//
// Selection policy: the first courier currently marked available, in the order the
// candidates are given. There is no load balancing or zone affinity.
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher()
//	c, err := dispatcher.Dispatch(o, candidates)
//	if errors.Is(err, services.ErrCourierNotFound) {
//	    // No courier available; the order continues unassigned
//	}
type OrderDispatcher struct{}

// NewOrderDispatcher creates a new OrderDispatcher instance.
func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// Dispatch claims the first available courier and attaches it to the order.
//
// Parameters:
//   - o: the order going in transit (must be valid and not yet assigned)
//   - couriers: candidates in selection order
//
// Returns:
//   - *courier.Courier: the claimed courier, to be persisted by the caller
//   - error: ErrCourierNotFound if no candidate is available, or validation errors
func (d OrderDispatcher) Dispatch(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Courier() != nil {
		return nil, order.ErrCourierAlreadyAssigned
	}

	c, err := d.findFirstAvailable(couriers)
	if err != nil {
		return nil, err
	}

	if err = c.Claim(o.ID()); err != nil {
		return nil, err
	}

	if err = o.AssignCourier(c.Assignment()); err != nil {
		return nil, err
	}

	return c, nil
}

// Release returns the courier serving a finished order to the pool.
// The order must be terminal.
func (d OrderDispatcher) Release(o *order.Order, c *courier.Courier) error {
	if err := errors.Join(o.Validate(), c.Validate()); err != nil {
		return err
	}
	if !o.Status().IsTerminal() {
		return fmt.Errorf("%w: order %d is still %s", order.ErrInvalidTransition, o.ID(), o.Status())
	}

	return c.Release(o.ID())
}

func (d OrderDispatcher) findFirstAvailable(couriers []*courier.Courier) (*courier.Courier, error) {
	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		if c.IsAvailable() {
			return c, nil
		}
	}

	return nil, ErrCourierNotFound
}
