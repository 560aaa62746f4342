package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
	"delivery-tracker/internal/core/domain/services"
	"delivery-tracker/internal/core/ports"
	"delivery-tracker/internal/pkg/errs"
)

// TransitionResult describes a committed status change.
type TransitionResult struct {
	OrderID order.ID
	From    order.Status
	To      order.Status
	Actor   string

	// Courier is the order's courier after the transition, nil if none.
	Courier *order.CourierAssignment
	// CourierAssigned is true when this transition claimed the courier.
	CourierAssigned bool
	// CourierReleased is true when this transition returned the courier to the pool.
	CourierReleased bool

	Contact  order.Contact
	Business kernel.Location
	Customer kernel.Location
}

// IsStale reports whether err means the order already moved on: the step's expected
// status no longer held, either when loaded or at the compare-and-set write.
func IsStale(err error) bool {
	return errors.Is(err, order.ErrStatusMismatch) || errors.Is(err, ports.ErrStatusConflict)
}

// StatusEvent builds the StatusUpdate published for a committed transition.
func StatusEvent(result TransitionResult) tracking.StatusUpdate {
	event := tracking.NewStatusUpdate(result.To)
	if result.To == order.InTransit && result.Courier != nil {
		event.Message = fmt.Sprintf("%s Courier: %s", event.Message, result.Courier.Name)
	}
	return event
}

// transitioner applies one status change to an order inside a unit of work,
// claims or releases the courier that goes with it, and announces the result.
type transitioner struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	notifier   ports.StatusNotifier
	dispatcher services.OrderDispatcher
	now        func() time.Time
	logger     *slog.Logger
}

func newTransitioner(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	notifier ports.StatusNotifier,
	logger *slog.Logger,
) transitioner {
	return transitioner{
		uowFactory: uowFactory,
		publisher:  publisher,
		notifier:   notifier,
		dispatcher: services.NewOrderDispatcher(),
		now:        time.Now,
		logger:     logger,
	}
}

// apply loads the order, lets change mutate it and persists it with a compare-and-set
// on the status it had when loaded. Entering in_transit without a courier claims the
// first available one; entering a terminal status releases the assigned courier.
func (t transitioner) apply(
	ctx context.Context,
	orderID order.ID,
	actor string,
	change func(o *order.Order, at time.Time) error,
) (TransitionResult, error) {
	uow := t.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	courierRepo := uow.CourierRepository()

	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return TransitionResult{}, err
	}

	from := o.Status()
	hadCourier := o.Courier() != nil

	if err = change(o, t.now()); err != nil {
		return TransitionResult{}, err
	}

	result := TransitionResult{
		OrderID:  o.ID(),
		From:     from,
		To:       o.Status(),
		Actor:    actor,
		Contact:  o.Contact(),
		Business: o.BusinessLocation(),
		Customer: o.CustomerLocation(),
	}

	switch {
	case result.To == order.InTransit && !hadCourier:
		result.CourierAssigned, err = t.assignCourier(ctx, courierRepo, o)
	case result.To.IsTerminal() && hadCourier:
		result.CourierReleased, err = t.releaseCourier(ctx, courierRepo, o)
	}
	if err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.Update(ctx, o, from); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	result.Courier = o.Courier()
	return result, nil
}

// assignCourier claims the first available courier. An empty pool is not an error:
// the order continues without assignment.
func (t transitioner) assignCourier(ctx context.Context, repo ports.CourierRepository, o *order.Order) (bool, error) {
	c, err := repo.GetFirstAvailable(ctx)
	if errors.Is(err, errs.ErrObjectNotFound) {
		t.logger.InfoContext(ctx, "no courier available, continuing without assignment", "order_id", o.ID())
		return false, nil
	}
	if err != nil {
		return false, err
	}

	claimed, err := t.dispatcher.Dispatch(o, []*courier.Courier{c})
	if err != nil {
		return false, err
	}

	if err = repo.Update(ctx, claimed); err != nil {
		return false, err
	}

	return true, nil
}

// releaseCourier returns the order's courier to the pool. A courier that no longer
// exists or already serves another order is left alone.
func (t transitioner) releaseCourier(ctx context.Context, repo ports.CourierRepository, o *order.Order) (bool, error) {
	c, err := repo.Get(ctx, o.Courier().CourierID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		t.logger.WarnContext(ctx, "assigned courier not found", "order_id", o.ID(), "courier_id", o.Courier().CourierID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if c.IsAvailable() {
		return false, nil
	}

	if err = t.dispatcher.Release(o, c); err != nil {
		if errors.Is(err, courier.ErrCourierServesAnotherOrder) {
			t.logger.WarnContext(ctx, "courier serves another order", "order_id", o.ID(), "courier_id", c.ID())
			return false, nil
		}
		return false, err
	}

	if err = repo.Update(ctx, c); err != nil {
		return false, err
	}

	return true, nil
}

// announce publishes the StatusUpdate and notifies the customer.
// Notification failures are logged and swallowed.
func (t transitioner) announce(ctx context.Context, result TransitionResult) {
	t.publisher.Broadcast(result.OrderID, StatusEvent(result))

	if err := t.notifier.NotifyStatusChange(ctx, result.Contact, result.OrderID, result.To); err != nil {
		t.logger.WarnContext(ctx, "status notification failed",
			"order_id", result.OrderID, "status", result.To, "error", err)
	}
}
