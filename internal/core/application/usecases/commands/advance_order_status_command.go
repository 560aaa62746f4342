package commands

import (
	"errors"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/pkg/guard"
)

var ErrAdvanceOrderStatusCommandIsNotConstructed = errors.New(
	"AdvanceOrderStatusCommand must be created via NewAdvanceOrderStatusCommand constructor",
)

// AdvanceOrderStatusCommand is one guarded step of the automatic lifecycle:
// move the order from Expected to Next, but only if it is still in Expected.
//
// Example:
//
//	cmd, err := NewAdvanceOrderStatusCommand(orderID, order.Pending, order.Preparing)
//	if err != nil {
//	    return err
//	}
//	_, err = handler.Handle(ctx, cmd)
//	if IsStale(err) {
//	    // a manual update got there first; skip the step
//	}
type AdvanceOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID  order.ID
	expected order.Status
	next     order.Status

	guard guard.ConstructorGuard
}

// NewAdvanceOrderStatusCommand creates a guarded automatic step.
// expected -> next must be an edge of the automatic lifecycle.
func NewAdvanceOrderStatusCommand(orderID order.ID, expected order.Status, next order.Status) (AdvanceOrderStatusCommand, error) {
	command := AdvanceOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setStatuses(expected, next),
	); err != nil {
		return AdvanceOrderStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order to advance.
func (c AdvanceOrderStatusCommand) OrderID() order.ID {
	return c.orderID
}

// Expected returns the status the order must still be in.
func (c AdvanceOrderStatusCommand) Expected() order.Status {
	return c.expected
}

// Next returns the target status.
func (c AdvanceOrderStatusCommand) Next() order.Status {
	return c.next
}

func (c *AdvanceOrderStatusCommand) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AdvanceOrderStatusCommand) setStatuses(expected order.Status, next order.Status) error {
	if err := expected.ValidateAdvance(next); err != nil {
		return err
	}

	c.expected = expected
	c.next = next
	return nil
}
