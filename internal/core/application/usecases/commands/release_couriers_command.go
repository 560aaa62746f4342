package commands

import (
	"errors"

	"delivery-tracker/internal/pkg/guard"
)

var ErrReleaseCouriersCommandIsNotConstructed = errors.New(
	"ReleaseCouriersCommand must be created via NewReleaseCouriersCommand constructor",
)

// ReleaseCouriersCommand sweeps the pool for couriers still marked busy with an
// order that is finished or gone, and makes them available again.
type ReleaseCouriersCommand struct {
	guard guard.ConstructorGuard
}

// NewReleaseCouriersCommand creates a new sweep command.
func NewReleaseCouriersCommand() ReleaseCouriersCommand {
	return ReleaseCouriersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c ReleaseCouriersCommand) Validate() error {
	return c.guard.Validate(ErrReleaseCouriersCommandIsNotConstructed)
}
