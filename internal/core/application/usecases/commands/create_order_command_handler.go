package commands

import (
	"context"
	"log/slog"
	"time"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
)

// CreateOrderResult is returned to the client placing the order.
type CreateOrderResult struct {
	OrderID          order.ID
	DistanceKm       float64
	EstimatedMinutes int
}

// CreateOrderCommandHandler places orders and hands them to the automatic lifecycle.
//
// The order is stored in "pending" with its first history entry. After commit the
// customer gets a confirmation and the lifecycle task is spawned.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, orchestrator, notifier, logger)
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	starter    LifecycleStarter
	notifier   ports.StatusNotifier
	now        func() time.Time
	logger     *slog.Logger
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	starter LifecycleStarter,
	notifier ports.StatusNotifier,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		starter:    starter,
		notifier:   notifier,
		now:        time.Now,
		logger:     logger.With("component", "CreateOrder"),
	}
}

// Handle processes the order creation command.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	id, err := orderRepo.NextIdentity(ctx)
	if err != nil {
		return CreateOrderResult{}, err
	}

	o, err := order.NewOrder(id, cmd.Business(), cmd.Customer(), cmd.Contact(), cmd.BaseMinutes(), h.now())
	if err != nil {
		return CreateOrderResult{}, err
	}

	if err = orderRepo.Add(ctx, o); err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	h.logger.InfoContext(ctx, "order created",
		"order_id", o.ID(), "distance_km", o.DistanceKm(), "estimated_minutes", o.EstimatedMinutes())

	if err = h.notifier.NotifyStatusChange(ctx, o.Contact(), o.ID(), o.Status()); err != nil {
		h.logger.WarnContext(ctx, "order confirmation failed", "order_id", o.ID(), "error", err)
	}

	h.starter.StartOrder(o.ID(), o.BusinessLocation(), o.CustomerLocation())

	return CreateOrderResult{
		OrderID:          o.ID(),
		DistanceKm:       o.DistanceKm(),
		EstimatedMinutes: o.EstimatedMinutes(),
	}, nil
}
