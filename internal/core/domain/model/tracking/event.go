// Package tracking defines the events streamed to observers of an order.
//
// An Event is immutable and carries no order identifier: the identifier is the
// routing key used by the event bus, not part of the payload.
package tracking

import (
	"encoding/json"

	"delivery-tracker/internal/core/domain/model/order"
)

// Wire values of the "type" discriminator.
const (
	TypeStatusUpdate   = "status_update"
	TypeLocationUpdate = "location_update"
)

// Event is one of StatusUpdate or LocationUpdate.
type Event interface {
	// Type returns the wire discriminator.
	Type() string

	isEvent()
}

// StatusUpdate announces a status change with a human-readable message.
type StatusUpdate struct {
	Status  order.Status
	Message string
}

// NewStatusUpdate builds a StatusUpdate with the status' default message.
func NewStatusUpdate(status order.Status) StatusUpdate {
	return StatusUpdate{Status: status, Message: status.Message()}
}

// Type implements Event.
func (StatusUpdate) Type() string { return TypeStatusUpdate }

func (StatusUpdate) isEvent() {}

// MarshalJSON renders {"type":"status_update","status":...,"message":...}.
func (e StatusUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}{
		Type:    TypeStatusUpdate,
		Status:  e.Status.String(),
		Message: e.Message,
	})
}

// LocationUpdate is one synthetic courier position.
type LocationUpdate struct {
	Lat        float64
	Lng        float64
	Progress   int // 0-100
	ETAMinutes int // >= 1
}

// Type implements Event.
func (LocationUpdate) Type() string { return TypeLocationUpdate }

func (LocationUpdate) isEvent() {}

// MarshalJSON renders {"type":"location_update","lat":...,"lng":...,"progress":...,"eta_minutes":...}.
func (e LocationUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string  `json:"type"`
		Lat        float64 `json:"lat"`
		Lng        float64 `json:"lng"`
		Progress   int     `json:"progress"`
		ETAMinutes int     `json:"eta_minutes"`
	}{
		Type:       TypeLocationUpdate,
		Lat:        e.Lat,
		Lng:        e.Lng,
		Progress:   e.Progress,
		ETAMinutes: e.ETAMinutes,
	})
}
