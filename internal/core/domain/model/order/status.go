package order

import (
	"errors"
	"fmt"
	"strings"

	"delivery-tracker/internal/pkg/errs"
)

var (
	// ErrInvalidTransition is returned when a requested status change is not allowed:
	// the target is outside the enumeration, the edge is not part of the automatic
	// lifecycle, or the order already reached a terminal status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusMismatch is returned by guarded transitions when the order is no longer
	// in the expected "from" status.
	ErrStatusMismatch = errors.New("order status does not match expected status")
)

// Status represents the lifecycle state of an order.
//
// Automatic lifecycle:
//
//	Pending ──> Preparing ──> InTransit ──> Delivered
//	   │            │             │
//	   └────────────┴─────────────┴──> Cancelled (manual only)
//
// Delivered and Cancelled are terminal. The manual override may jump between any
// non-terminal status and any target, e.g. Pending -> InTransit.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is placed.
	Pending

	// Preparing means the business is preparing the order.
	Preparing

	// InTransit means a courier (possibly none, if the pool was empty) is on the way.
	InTransit

	// Delivered is terminal.
	Delivered

	// Cancelled is terminal and reachable only through the manual override.
	Cancelled
)

// getStatusStrings returns the wire representation of every valid status.
func getStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Preparing: "preparing",
		InTransit: "in_transit",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// getStatusMessages returns the customer-facing message published with each status.
func getStatusMessages() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "Your order has been received and is being processed",
		Preparing: "Your order is being prepared",
		InTransit: "Your order is on the way!",
		Delivered: "Your order has arrived!",
		Cancelled: "Your order has been cancelled",
	}
}

// automaticTransitions lists the edges the timer-driven lifecycle may take.
func automaticTransitions() map[Status]Status {
	//nolint:exhaustive // terminal statuses have no outgoing automatic edge
	return map[Status]Status{
		Pending:   Preparing,
		Preparing: InTransit,
		InTransit: Delivered,
	}
}

// Statuses returns all valid statuses in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Preparing, InTransit, Delivered, Cancelled}
}

// ParseStatus converts a wire string ("pending", "in_transit", ...) to a Status.
// Matching ignores surrounding whitespace and case.
//
// Returns:
//   - Status: the parsed value
//   - error: wrapping both ErrInvalidTransition and errs.ErrValueIsInvalid when the
//     value is not one of the five enumerated statuses
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if str == normalized {
			return status, nil
		}
	}

	return Unknown, fmt.Errorf("%w: %w", ErrInvalidTransition,
		errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s)))
}

// Validate checks if the Status value is one of the enumerated statuses.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation, or "unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Message returns the human-readable text for status updates and notifications.
func (s Status) Message() string {
	if msg, ok := getStatusMessages()[s]; ok {
		return msg
	}
	return "Your order status has changed"
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// ValidateAdvance checks that the automatic lifecycle may move from s to next.
func (s Status) ValidateAdvance(next Status) error {
	if allowed, ok := automaticTransitions()[s]; !ok || allowed != next {
		return fmt.Errorf("%w: %s -> %s is not an automatic transition", ErrInvalidTransition, s, next)
	}
	return nil
}

// ValidateOverride checks that a manual override may move from s to target.
// Any enumerated target is accepted unless s is terminal.
func (s Status) ValidateOverride(target Status) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	if s.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, s)
	}
	return nil
}

// MarshalText encodes the status as its wire string.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a wire string produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
