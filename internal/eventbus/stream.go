package eventbus

import (
	"sync"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
)

// Stream is an Observer backed by a buffered channel, handed to transports by Attach.
//
// A stream whose buffer is full refuses the event and closes its channel: the bus
// prunes it and the transport sees the channel close and hangs up.
type Stream struct {
	orderID order.ID
	token   Token
	ch      chan tracking.Event

	mu     sync.Mutex
	closed bool
}

func newStream(orderID order.ID, buffer int) *Stream {
	return &Stream{
		orderID: orderID,
		ch:      make(chan tracking.Event, buffer),
	}
}

// OrderID returns the order the stream is attached to.
func (s *Stream) OrderID() order.ID {
	return s.orderID
}

// Events returns the channel of delivered events. It is closed on Detach or overflow.
func (s *Stream) Events() <-chan tracking.Event {
	return s.ch
}

// TrySend implements Observer.
func (s *Stream) TrySend(event tracking.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- event:
		return true
	default:
		s.closed = true
		close(s.ch)
		return false
	}
}

func (s *Stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
