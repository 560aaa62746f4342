package lifecycle

import (
	"context"
	"sync"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
	"delivery-tracker/internal/core/domain/services"
	"delivery-tracker/internal/core/ports"
)

// Session is the motion state of one order in transit.
type Session struct {
	orderID order.ID
	plan    services.MotionPlan
	cancel  context.CancelFunc

	// mu serializes emit and stop: a stopped session never publishes again.
	mu        sync.Mutex
	current   int
	cancelled bool
}

// SessionSnapshot is a point-in-time view of a Session.
type SessionSnapshot struct {
	OrderID order.ID
	Start   kernel.Location
	End     kernel.Location
	Steps   int
	Current int
}

func newSession(orderID order.ID, plan services.MotionPlan, cancel context.CancelFunc) *Session {
	return &Session{orderID: orderID, plan: plan, cancel: cancel}
}

// emit publishes tick unless the session was stopped. It returns whether it published.
func (s *Session) emit(publisher ports.EventPublisher, tick services.MotionTick) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled {
		return false
	}

	publisher.Broadcast(s.orderID, tracking.LocationUpdate{
		Lat:        tick.Lat,
		Lng:        tick.Lng,
		Progress:   tick.Progress,
		ETAMinutes: tick.ETAMinutes,
	})
	s.current = tick.Index + 1
	return true
}

// stop marks the session cancelled and cancels its run. It waits for an emit in
// progress to finish.
func (s *Session) stop() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()

	s.cancel()
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *Session) snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionSnapshot{
		OrderID: s.orderID,
		Start:   s.plan.Start,
		End:     s.plan.End,
		Steps:   s.plan.Steps(),
		Current: s.current,
	}
}
