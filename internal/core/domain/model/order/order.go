package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/pkg/errs"
)

// ActorSystem is recorded in the history for transitions made by the automatic lifecycle.
const ActorSystem = "system"

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrCourierAlreadyAssigned is returned when assigning a courier to an order that has one.
	ErrCourierAlreadyAssigned = errors.New("order already has a courier assigned")
)

// ID identifies an order. It is allocated by the order repository and scopes all
// per-order tracking state: subscriptions, the lifecycle task and the motion session.
type ID int64

// Validate checks that the identifier is positive.
func (id ID) Validate() error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not greater than 0", id))
	}
	return nil
}

// String returns the decimal form of the identifier.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Contact is where status notifications for an order are sent.
type Contact struct {
	Email string
	Phone string
}

// Validate requires at least one reachable address.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Phone) == "" {
		return errs.NewValueIsRequiredError("contact email or phone")
	}
	return nil
}

// CourierAssignment is attached to an order when it enters in_transit.
type CourierAssignment struct {
	CourierID kernel.UUID
	Name      string
	Phone     string
}

// HistoryEntry is one status change recorded on the order.
type HistoryEntry struct {
	Status Status
	At     time.Time
	Actor  string
}

// Order is the aggregate root tracking one delivery from placement to a terminal status.
//
// Invariants:
//   - history is append-only and its timestamps are strictly increasing
//   - the last history entry always carries the current status
//   - a courier is assigned at most once
//   - no transition leaves Delivered or Cancelled
type Order struct {
	id               ID
	business         kernel.Location
	customer         kernel.Location
	contact          Contact
	distanceKm       float64
	estimatedMinutes int
	courier          *CourierAssignment
	status           Status
	history          []HistoryEntry
	isConstructed    bool
}

// NewOrder creates a pending order and records the first history entry.
//
// Parameters:
//   - id: identifier allocated by the repository (must be positive)
//   - business: pickup location
//   - customer: drop-off location
//   - contact: notification recipient (email and/or phone)
//   - baseMinutes: preparation time stated by the business, 0 when unknown
//   - at: creation instant
//
// The distance between business and customer and the estimated delivery minutes are
// computed here with kernel.DistanceKm and kernel.EstimateDeliveryMinutes.
//
// Example:
//
//	business := kernel.MustNewLocation(6.20, -75.60)
//	customer := kernel.MustNewLocation(6.22, -75.58)
//	o, err := order.NewOrder(42, business, customer, order.Contact{Phone: "+573001112233"}, 25, time.Now())
func NewOrder(
	id ID,
	business kernel.Location,
	customer kernel.Location,
	contact Contact,
	baseMinutes int,
	at time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocations(business, customer),
		o.setContact(contact),
	); err != nil {
		return nil, err
	}

	km := kernel.DistanceKm(business.Lat(), business.Lng(), customer.Lat(), customer.Lng())
	o.distanceKm = kernel.RoundKm(km)
	o.estimatedMinutes = kernel.EstimateDeliveryMinutes(baseMinutes, km)
	o.history = []HistoryEntry{{Status: Pending, At: stamp(at), Actor: ActorSystem}}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistent storage.
//
// Unlike NewOrder it trusts the stored distance, estimate and history, but still
// validates identity, locations, status and history consistency.
func RestoreOrder(
	id ID,
	business kernel.Location,
	customer kernel.Location,
	contact Contact,
	status Status,
	courier *CourierAssignment,
	history []HistoryEntry,
	distanceKm float64,
	estimatedMinutes int,
) (*Order, error) {
	o := &Order{
		distanceKm:       distanceKm,
		estimatedMinutes: estimatedMinutes,
		isConstructed:    true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocations(business, customer),
		o.setStatus(status),
		o.setCourier(courier),
		o.setHistory(history, status),
	); err != nil {
		return nil, err
	}
	o.contact = contact

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// ID returns the order identifier.
func (o *Order) ID() ID {
	return o.id
}

// BusinessLocation returns the pickup location.
func (o *Order) BusinessLocation() kernel.Location {
	return o.business
}

// CustomerLocation returns the drop-off location.
func (o *Order) CustomerLocation() kernel.Location {
	return o.customer
}

// Contact returns the notification recipient.
func (o *Order) Contact() Contact {
	return o.contact
}

// DistanceKm returns the great-circle distance between pickup and drop-off, 2 decimals.
func (o *Order) DistanceKm() float64 {
	return o.distanceKm
}

// EstimatedMinutes returns the coarse ETA computed at creation.
func (o *Order) EstimatedMinutes() int {
	return o.estimatedMinutes
}

// Status returns the current status.
func (o *Order) Status() Status {
	return o.status
}

// Courier returns the courier assignment, or nil when none was made.
func (o *Order) Courier() *CourierAssignment {
	if o.courier == nil {
		return nil
	}
	c := *o.courier
	return &c
}

// History returns a copy of the status history, oldest first.
func (o *Order) History() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// Advance applies one guarded automatic step.
//
// The transition applies only if the current status equals expected and
// expected -> next is an edge of the automatic lifecycle.
//
// Returns:
//   - ErrStatusMismatch if the order already moved past expected (stale step)
//   - ErrInvalidTransition if expected -> next is not an automatic edge
func (o *Order) Advance(expected Status, next Status, actor string, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.status != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrStatusMismatch, expected, o.status)
	}
	if err := expected.ValidateAdvance(next); err != nil {
		return err
	}

	o.apply(next, actor, at)
	return nil
}

// Override applies a manual status change.
//
// Any enumerated target is accepted, including skipping intermediate statuses or
// re-applying the current one, as long as the order is not terminal.
//
// Returns:
//   - ErrInvalidTransition if target is not enumerated or the order is terminal
func (o *Order) Override(target Status, actor string, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := o.status.ValidateOverride(target); err != nil {
		return err
	}

	o.apply(target, actor, at)
	return nil
}

// AssignCourier attaches the courier delivering this order.
func (o *Order) AssignCourier(assignment CourierAssignment) error {
	if err := assignment.CourierID.Validate(); err != nil {
		return err
	}
	if o.courier != nil {
		return ErrCourierAlreadyAssigned
	}

	o.courier = &assignment
	return nil
}

// apply sets the status and appends a history entry.
// Timestamps that do not move forward are nudged so history stays strictly ordered.
func (o *Order) apply(status Status, actor string, at time.Time) {
	at = stamp(at)
	if n := len(o.history); n > 0 && !at.After(o.history[n-1].At) {
		at = o.history[n-1].At.Add(time.Microsecond)
	}
	if actor == "" {
		actor = ActorSystem
	}

	o.status = status
	o.history = append(o.history, HistoryEntry{Status: status, At: at, Actor: actor})
}

// stamp normalizes history instants to UTC microseconds, the precision storage keeps.
func stamp(at time.Time) time.Time {
	return at.UTC().Truncate(time.Microsecond)
}

func (o *Order) setID(id ID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setLocations(business kernel.Location, customer kernel.Location) error {
	if err := errors.Join(business.Validate(), customer.Validate()); err != nil {
		return err
	}
	o.business = business
	o.customer = customer
	return nil
}

func (o *Order) setContact(contact Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	o.contact = contact
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setCourier(courier *CourierAssignment) error {
	if courier == nil {
		return nil
	}
	if err := courier.CourierID.Validate(); err != nil {
		return err
	}
	c := *courier
	o.courier = &c
	return nil
}

// setHistory requires a non-empty, strictly ordered history ending in the current status.
func (o *Order) setHistory(history []HistoryEntry, status Status) error {
	if len(history) == 0 {
		return errs.NewValueIsRequiredError("history")
	}
	for i := 1; i < len(history); i++ {
		if !history[i].At.After(history[i-1].At) {
			return errs.NewValueIsInvalidErrorWithCause("history",
				fmt.Errorf("entry %d is not after entry %d", i, i-1))
		}
	}
	if last := history[len(history)-1].Status; last != status {
		return errs.NewValueIsInvalidErrorWithCause("history",
			fmt.Errorf("last entry is %s, order is %s", last, status))
	}

	o.history = make([]HistoryEntry, len(history))
	copy(o.history, history)
	return nil
}
