package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
)

// manualAttempts bounds how often an override re-reads an order that an automatic
// step wrote concurrently.
const manualAttempts = 3

// ApplyManualStatusCommandHandler applies operational overrides.
//
// Any enumerated status is accepted unless the order is already delivered or
// cancelled, in which case order.ErrInvalidTransition is returned. The override
// shares the transition path of the automatic lifecycle: history, courier claim and
// release, publishing and notification. In addition:
//   - entering in_transit without a courier claims one and starts the motion
//   - entering delivered or cancelled stops the motion before the StatusUpdate is
//     published, so no location update follows the terminal status
//
// A lost compare-and-set is retried on a fresh read, so an override wins over an
// automatic step racing it; ports.ErrStatusConflict is returned only after
// manualAttempts losses in a row.
//
// Example:
//
//	handler := NewApplyManualStatusCommandHandler(uowFactory, bus, notifier, orchestrator, logger)
//	cmd, _ := NewApplyManualStatusCommand(orderID, "delivered", "admin")
//	result, err := handler.Handle(ctx, cmd)
type ApplyManualStatusCommandHandler struct {
	transitioner transitioner
	motion       MotionController
	logger       *slog.Logger
}

// NewApplyManualStatusCommandHandler creates a handler for manual overrides.
func NewApplyManualStatusCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	notifier ports.StatusNotifier,
	motion MotionController,
	logger *slog.Logger,
) ApplyManualStatusCommandHandler {
	logger = logger.With("component", "ApplyManualStatus")

	return ApplyManualStatusCommandHandler{
		transitioner: newTransitioner(uowFactory, publisher, notifier, logger),
		motion:       motion,
		logger:       logger,
	}
}

// Handle applies the override and returns the committed transition.
func (h ApplyManualStatusCommandHandler) Handle(ctx context.Context, cmd ApplyManualStatusCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	var (
		result TransitionResult
		err    error
	)
	for attempt := 1; attempt <= manualAttempts; attempt++ {
		result, err = h.transitioner.apply(ctx, cmd.OrderID(), cmd.Actor(), func(o *order.Order, at time.Time) error {
			return o.Override(cmd.Status(), cmd.Actor(), at)
		})
		if !errors.Is(err, ports.ErrStatusConflict) {
			break
		}
		h.logger.InfoContext(ctx, "order changed concurrently, retrying override",
			"order_id", cmd.OrderID(), "attempt", attempt)
	}
	if err != nil {
		return TransitionResult{}, err
	}

	if result.To.IsTerminal() && h.motion.StopMotion(result.OrderID) {
		h.logger.InfoContext(ctx, "motion stopped", "order_id", result.OrderID, "status", result.To)
	}

	h.transitioner.announce(ctx, result)

	h.logger.InfoContext(ctx, "manual status applied",
		"order_id", result.OrderID, "from", result.From, "to", result.To, "actor", result.Actor)

	startMotion := result.To == order.InTransit && (result.CourierAssigned || result.Courier == nil)
	if startMotion {
		h.motion.StartMotion(result.OrderID, result.Business, result.Customer)
	}

	return result, nil
}
