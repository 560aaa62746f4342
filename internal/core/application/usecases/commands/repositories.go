// Package commands holds the write side of the tracker: order creation, the automatic
// lifecycle step, manual overrides, courier registration and the courier release sweep.
// Each command is built by a constructor that validates it; each handler runs inside a
// unit of work and persists through the repository ports.
package commands

import (
	"context"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
)

// Narrow unit of work views, so a handler asks only for the repositories it touches.
type (
	// TxManager opens and closes the transaction a handler's writes share.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory returns the order repository bound to the open transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// CourierRepoFactory returns the courier repository bound to the open transaction.
	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// OrderUoW is used by order creation.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory hands out a fresh OrderUoW per command.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CourierUoW is used by courier registration.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	// CourierUoWFactory hands out a fresh CourierUoW per command.
	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// UoW spans orders and couriers. Status transitions use it because claiming or
	// releasing a courier must commit together with the order write, and a lost
	// compare-and-set must take the claim down with it.
	UoW interface {
		TxManager
		CourierRepoFactory
		OrderRepoFactory
	}

	// UoWFactory hands out a fresh UoW per transition.
	UoWFactory interface {
		Create() UoW
	}
)

// Lifecycle collaborators implemented by the order lifecycle orchestrator.
type (
	// LifecycleStarter spawns the automatic lifecycle of a newly created order.
	LifecycleStarter interface {
		StartOrder(orderID order.ID, business kernel.Location, customer kernel.Location)
	}

	// MotionController starts and stops the synthetic courier motion of an order.
	MotionController interface {
		// StartMotion is a no-op returning false if a session is already active or the
		// order's motion was stopped.
		StartMotion(orderID order.ID, business kernel.Location, customer kernel.Location) bool
		// StopMotion cancels the active session and refuses later sessions for the order.
		// No location update for the order is published after it returns.
		StopMotion(orderID order.ID) bool
	}
)
