package commands

import (
	"errors"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/pkg/errs"
	"delivery-tracker/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrBaseMinutesIsInvalid = errs.NewValueIsInvalidError("base minutes must not be negative")
)

// CreateOrderCommand represents a request to place a new delivery order.
//
// Example:
//
//	business := kernel.MustNewLocation(6.20, -75.60)
//	customer := kernel.MustNewLocation(6.22, -75.58)
//	cmd, err := NewCreateOrderCommand(business, customer, order.Contact{Phone: "+573001112233"}, 25)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
//	fmt.Printf("Order %d created, ETA %d min", result.OrderID, result.EstimatedMinutes)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	business    kernel.Location
	customer    kernel.Location
	contact     order.Contact
	baseMinutes int

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order.
// baseMinutes is the preparation time stated by the business; 0 means unknown.
func NewCreateOrderCommand(
	business kernel.Location,
	customer kernel.Location,
	contact order.Contact,
	baseMinutes int,
) (CreateOrderCommand, error) {
	command := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setLocations(business, customer),
		command.setContact(contact),
		command.setBaseMinutes(baseMinutes),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// Business returns the pickup location.
func (c CreateOrderCommand) Business() kernel.Location {
	return c.business
}

// Customer returns the drop-off location.
func (c CreateOrderCommand) Customer() kernel.Location {
	return c.customer
}

// Contact returns the notification recipient.
func (c CreateOrderCommand) Contact() order.Contact {
	return c.contact
}

// BaseMinutes returns the business-stated preparation time.
func (c CreateOrderCommand) BaseMinutes() int {
	return c.baseMinutes
}

func (c *CreateOrderCommand) setLocations(business kernel.Location, customer kernel.Location) error {
	if err := errors.Join(business.Validate(), customer.Validate()); err != nil {
		return err
	}

	c.business = business
	c.customer = customer
	return nil
}

func (c *CreateOrderCommand) setContact(contact order.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}

	c.contact = contact
	return nil
}

func (c *CreateOrderCommand) setBaseMinutes(baseMinutes int) error {
	if baseMinutes < 0 {
		return ErrBaseMinutesIsInvalid
	}

	c.baseMinutes = baseMinutes
	return nil
}
