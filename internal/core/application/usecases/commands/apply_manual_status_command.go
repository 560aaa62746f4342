package commands

import (
	"errors"
	"strings"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/pkg/errs"
	"delivery-tracker/internal/pkg/guard"
)

var (
	ErrApplyManualStatusCommandIsNotConstructed = errors.New(
		"ApplyManualStatusCommand must be created via NewApplyManualStatusCommand constructor",
	)
	ErrActorIsRequired = errs.NewValueIsRequiredError("actor")
)

// ApplyManualStatusCommand is an operational override issued by a seller or admin.
//
// The requested status is parsed here, so a value outside the enumeration is rejected
// with order.ErrInvalidTransition before any state is touched.
//
// Example:
//
//	cmd, err := NewApplyManualStatusCommand(orderID, "in_transit", "seller-17")
//	if errors.Is(err, order.ErrInvalidTransition) {
//	    // reject the request
//	}
type ApplyManualStatusCommand struct { //nolint:recvcheck //using for validation
	orderID order.ID
	status  order.Status
	actor   string

	guard guard.ConstructorGuard
}

// NewApplyManualStatusCommand creates a manual override of the order status.
func NewApplyManualStatusCommand(orderID order.ID, status string, actor string) (ApplyManualStatusCommand, error) {
	command := ApplyManualStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setStatus(status),
		command.setActor(actor),
	); err != nil {
		return ApplyManualStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyManualStatusCommand) Validate() error {
	return c.guard.Validate(ErrApplyManualStatusCommandIsNotConstructed)
}

// OrderID returns the order to update.
func (c ApplyManualStatusCommand) OrderID() order.ID {
	return c.orderID
}

// Status returns the requested status.
func (c ApplyManualStatusCommand) Status() order.Status {
	return c.status
}

// Actor returns who requested the change; it is recorded in the history.
func (c ApplyManualStatusCommand) Actor() string {
	return c.actor
}

func (c *ApplyManualStatusCommand) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ApplyManualStatusCommand) setStatus(status string) error {
	parsed, err := order.ParseStatus(status)
	if err != nil {
		return err
	}

	c.status = parsed
	return nil
}

func (c *ApplyManualStatusCommand) setActor(actor string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrActorIsRequired
	}

	c.actor = actor
	return nil
}
