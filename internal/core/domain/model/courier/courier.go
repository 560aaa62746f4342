package courier

import (
	"errors"
	"fmt"
	"strings"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/pkg/errs"
	"delivery-tracker/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when attempting to create a courier without a phone.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrCourierIsBusy is returned when claiming a courier that already serves an order.
	ErrCourierIsBusy = errors.New("courier is not available")
	// ErrCourierServesAnotherOrder is returned when releasing a courier for an order it does not serve.
	ErrCourierServesAnotherOrder = errors.New("courier serves another order")
)

// Courier is a member of the shared courier pool.
//
// A courier is either available or serving exactly one order. Claim takes an available
// courier for an order and Release puts it back in the pool once the order is finished.
//
// Example usage:
//
//	c, err := courier.NewCourier(kernel.NewUUID(), "Luis", "+573009998877")
//	if err != nil {
//	    // Handle construction error
//	}
//	_ = c.Claim(orderID)
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// name is shown to the customer once the order is in transit
	name string
	// phone is shown to the customer once the order is in transit
	phone string
	// currentOrder is the order being delivered, nil while available
	currentOrder *order.ID
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates an available courier.
//
// Parameters:
//   - id: Unique identifier for the courier (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//   - phone: Contact phone (must be non-empty)
//
// Returns:
//   - *Courier: A courier ready to be claimed
//   - error: Validation error if any parameter is invalid (aggregated errors for multiple issues)
func NewCourier(id kernel.UUID, name string, phone string) (*Courier, error) {
	courier := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage.
// currentOrder is nil for an available courier.
func RestoreCourier(id kernel.UUID, name string, phone string, currentOrder *order.ID) (*Courier, error) {
	courier, err := NewCourier(id, name, phone)
	if err != nil {
		return nil, err
	}

	if currentOrder != nil {
		if err = courier.Claim(*currentOrder); err != nil {
			return nil, err
		}
	}

	return courier, nil
}

// IsEqual compares two couriers by identifier.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// Validate checks if the Courier was properly constructed using the NewCourier constructor.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the unique identifier of the courier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier name.
func (c *Courier) Name() string {
	return c.name
}

// Phone returns the courier phone.
func (c *Courier) Phone() string {
	return c.phone
}

// IsAvailable reports whether the courier can be claimed.
func (c *Courier) IsAvailable() bool {
	return c.currentOrder == nil
}

// CurrentOrder returns the order being delivered, or nil while available.
func (c *Courier) CurrentOrder() *order.ID {
	if c.currentOrder == nil {
		return nil
	}
	id := *c.currentOrder
	return &id
}

// Assignment returns the details attached to an order served by this courier.
func (c *Courier) Assignment() order.CourierAssignment {
	return order.CourierAssignment{
		CourierID: c.id,
		Name:      c.name,
		Phone:     c.phone,
	}
}

// Claim marks the courier unavailable while it serves orderID.
//
// Returns:
//   - ErrCourierIsBusy if the courier already serves an order
//   - validation error if orderID is invalid
func (c *Courier) Claim(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if c.currentOrder != nil {
		return fmt.Errorf("%w: serving order %d", ErrCourierIsBusy, *c.currentOrder)
	}

	c.currentOrder = &orderID
	return nil
}

// Release returns the courier to the pool after orderID is finished.
// Releasing an available courier is a no-op.
func (c *Courier) Release(orderID order.ID) error {
	if c.currentOrder == nil {
		return nil
	}
	if *c.currentOrder != orderID {
		return fmt.Errorf("%w: serving order %d, not %d", ErrCourierServesAnotherOrder, *c.currentOrder, orderID)
	}

	c.currentOrder = nil
	return nil
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

func (c *Courier) setPhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrPhoneIsRequired
	}

	c.phone = phone
	return nil
}
