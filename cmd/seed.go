package cmd

import (
	"context"
	"fmt"

	"delivery-tracker/internal/core/application/usecases/commands"
)

// DemoCourier is one entry of the built-in courier roster.
type DemoCourier struct {
	Name  string
	Phone string
}

// DemoCouriers is registered by seed-couriers and by serve on in-memory storage.
var DemoCouriers = []DemoCourier{
	{Name: "Carlos Restrepo", Phone: "+573001234501"},
	{Name: "Luisa Gómez", Phone: "+573001234502"},
	{Name: "Andrés Mejía", Phone: "+573001234503"},
	{Name: "Valentina Ríos", Phone: "+573001234504"},
	{Name: "Julián Castaño", Phone: "+573001234505"},
}

// SeedCouriers registers the first count demo couriers and returns how many were added.
func SeedCouriers(ctx context.Context, handler commands.CreateCourierCommandHandler, count int) (int, error) {
	if count > len(DemoCouriers) || count <= 0 {
		count = len(DemoCouriers)
	}

	for i, c := range DemoCouriers[:count] {
		cmd, err := commands.NewCreateCourierCommand(c.Name, c.Phone)
		if err != nil {
			return i, err
		}
		if err = handler.Handle(ctx, cmd); err != nil {
			return i, fmt.Errorf("seed courier %q: %w", c.Name, err)
		}
	}

	return count, nil
}
