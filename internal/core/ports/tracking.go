package ports

import (
	"context"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
)

// EventPublisher fans tracking events out to the observers of one order.
type EventPublisher interface {
	// Broadcast delivers event to every observer currently attached to orderID and
	// returns how many received it. It never blocks on a slow observer.
	Broadcast(orderID order.ID, event tracking.Event) int
}

// StatusNotifier tells the customer about a status change (e-mail, SMS).
//
// Implementations are fire-and-forget from the caller's point of view: the returned
// error is only logged and never fails the transition it accompanies.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, contact order.Contact, orderID order.ID, status order.Status) error
}
