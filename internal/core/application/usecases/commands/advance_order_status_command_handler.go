package commands

import (
	"context"
	"log/slog"
	"time"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
)

// AdvanceOrderStatusCommandHandler applies guarded automatic steps.
//
// The step is persisted with a compare-and-set on the expected status. When the
// order already moved on, Handle returns an error for which IsStale is true and
// nothing is written, published or notified.
type AdvanceOrderStatusCommandHandler struct {
	transitioner transitioner
}

// NewAdvanceOrderStatusCommandHandler creates a handler for automatic lifecycle steps.
func NewAdvanceOrderStatusCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	notifier ports.StatusNotifier,
	logger *slog.Logger,
) AdvanceOrderStatusCommandHandler {
	return AdvanceOrderStatusCommandHandler{
		transitioner: newTransitioner(uowFactory, publisher, notifier, logger.With("component", "AdvanceOrderStatus")),
	}
}

// Handle applies the step, then broadcasts the StatusUpdate and notifies the customer.
func (h AdvanceOrderStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderStatusCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	result, err := h.transitioner.apply(ctx, cmd.OrderID(), order.ActorSystem, func(o *order.Order, at time.Time) error {
		return o.Advance(cmd.Expected(), cmd.Next(), order.ActorSystem, at)
	})
	if err != nil {
		return TransitionResult{}, err
	}

	h.transitioner.announce(ctx, result)
	return result, nil
}
