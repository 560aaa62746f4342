package memory

import (
	"context"
	"slices"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
	"delivery-tracker/internal/pkg/errs"
)

type orderRecord struct {
	id               order.ID
	business         kernel.Location
	customer         kernel.Location
	contact          order.Contact
	status           order.Status
	courier          *order.CourierAssignment
	history          []order.HistoryEntry
	distanceKm       float64
	estimatedMinutes int
}

func orderFromDomain(o *order.Order) orderRecord {
	return orderRecord{
		id:               o.ID(),
		business:         o.BusinessLocation(),
		customer:         o.CustomerLocation(),
		contact:          o.Contact(),
		status:           o.Status(),
		courier:          o.Courier(),
		history:          o.History(),
		distanceKm:       o.DistanceKm(),
		estimatedMinutes: o.EstimatedMinutes(),
	}
}

func (r orderRecord) toDomain() (*order.Order, error) {
	return order.RestoreOrder(r.id, r.business, r.customer, r.contact, r.status,
		r.courier, r.history, r.distanceKm, r.estimatedMinutes)
}

// OrderRepository implements ports.OrderRepository over a Store.
type OrderRepository struct {
	uow *UnitOfWork
}

// NextIdentity allocates identifiers from a process-wide counter; rolled back
// transactions do not return them.
func (r *OrderRepository) NextIdentity(_ context.Context) (order.ID, error) {
	return order.ID(r.uow.store.nextID.Add(1)), nil
}

// Add stores a new order.
func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	return r.uow.run(func(s *state) error {
		if _, ok := s.orders[aggregate.ID()]; ok {
			return errs.NewValueIsInvalidError("order already exists")
		}
		s.orders[aggregate.ID()] = orderFromDomain(aggregate)
		return nil
	})
}

// Update replaces the order if its stored status equals expected.
func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order, expected order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	return r.uow.run(func(s *state) error {
		current, ok := s.orders[aggregate.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("order", aggregate.ID())
		}
		if current.status != expected {
			return ports.ErrStatusConflict
		}
		s.orders[aggregate.ID()] = orderFromDomain(aggregate)
		return nil
	})
}

// Get retrieves an order by id.
func (r *OrderRepository) Get(_ context.Context, id order.ID) (*order.Order, error) {
	var rec orderRecord
	err := r.uow.run(func(s *state) error {
		var ok bool
		if rec, ok = s.orders[id]; !ok {
			return errs.NewObjectNotFoundError("order", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec.toDomain()
}

// GetActive retrieves non-terminal orders ordered by id.
func (r *OrderRepository) GetActive(_ context.Context) ([]*order.Order, error) {
	var records []orderRecord
	_ = r.uow.run(func(s *state) error {
		for _, rec := range s.orders {
			if !rec.status.IsTerminal() {
				records = append(records, rec)
			}
		}
		return nil
	})

	slices.SortFunc(records, func(a, b orderRecord) int { return int(a.id - b.id) })

	orders := make([]*order.Order, 0, len(records))
	for _, rec := range records {
		o, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}
