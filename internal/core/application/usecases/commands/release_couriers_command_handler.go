package commands

import (
	"context"
	"errors"
	"log/slog"

	"delivery-tracker/internal/core/domain/services"
	"delivery-tracker/internal/pkg/errs"
)

// ReleaseCouriersCommandHandler frees couriers whose order is terminal or missing.
//
// Transitions already release the courier when an order finishes; the sweep covers
// orders finished while a release could not be written, e.g. after a crash.
type ReleaseCouriersCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.OrderDispatcher
	logger     *slog.Logger
}

// NewReleaseCouriersCommandHandler creates a handler for the courier sweep.
func NewReleaseCouriersCommandHandler(uowFactory UoWFactory, logger *slog.Logger) ReleaseCouriersCommandHandler {
	return ReleaseCouriersCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewOrderDispatcher(),
		logger:     logger.With("component", "ReleaseCouriers"),
	}
}

// Handle runs the sweep in one transaction and returns how many couriers were released.
func (h ReleaseCouriersCommandHandler) Handle(ctx context.Context, cmd ReleaseCouriersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()
	orderRepo := uow.OrderRepository()

	busy, err := courierRepo.GetAllBusy(ctx)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, c := range busy {
		orderID := *c.CurrentOrder()

		o, getErr := orderRepo.Get(ctx, orderID)
		switch {
		case errors.Is(getErr, errs.ErrObjectNotFound):
			h.logger.WarnContext(ctx, "courier serves a missing order", "courier_id", c.ID(), "order_id", orderID)
			err = c.Release(orderID)
		case getErr != nil:
			return 0, getErr
		case o.Status().IsTerminal():
			err = h.dispatcher.Release(o, c)
		default:
			continue
		}
		if err != nil {
			return 0, err
		}

		if err = courierRepo.Update(ctx, c); err != nil {
			return 0, err
		}
		released++
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return released, nil
}
