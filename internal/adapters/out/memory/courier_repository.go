package memory

import (
	"context"
	"slices"
	"strings"

	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/pkg/errs"
)

type courierRecord struct {
	id           kernel.UUID
	name         string
	phone        string
	currentOrder *order.ID
}

func courierFromDomain(c *courier.Courier) courierRecord {
	return courierRecord{
		id:           c.ID(),
		name:         c.Name(),
		phone:        c.Phone(),
		currentOrder: c.CurrentOrder(),
	}
}

func (r courierRecord) toDomain() (*courier.Courier, error) {
	return courier.RestoreCourier(r.id, r.name, r.phone, r.currentOrder)
}

// CourierRepository implements ports.CourierRepository over a Store.
type CourierRepository struct {
	uow *UnitOfWork
}

// Add registers a new courier at the end of the pool.
func (r *CourierRepository) Add(_ context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return r.uow.run(func(s *state) error {
		if _, ok := s.couriers[c.ID()]; ok {
			return errs.NewValueIsInvalidError("courier already exists")
		}
		s.couriers[c.ID()] = courierFromDomain(c)
		s.courierSeq = append(s.courierSeq, c.ID())
		return nil
	})
}

// Update stores the courier's availability.
func (r *CourierRepository) Update(_ context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return r.uow.run(func(s *state) error {
		if _, ok := s.couriers[c.ID()]; !ok {
			return errs.NewObjectNotFoundError("courier", c.ID())
		}
		s.couriers[c.ID()] = courierFromDomain(c)
		return nil
	})
}

// Get retrieves a courier by id.
func (r *CourierRepository) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	var rec courierRecord
	err := r.uow.run(func(s *state) error {
		var ok bool
		if rec, ok = s.couriers[id]; !ok {
			return errs.NewObjectNotFoundError("courier", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec.toDomain()
}

// GetAll retrieves every courier ordered by name.
func (r *CourierRepository) GetAll(_ context.Context) ([]*courier.Courier, error) {
	records := r.collect(func(courierRecord) bool { return true })
	slices.SortStableFunc(records, func(a, b courierRecord) int { return strings.Compare(a.name, b.name) })
	return toCouriers(records)
}

// GetFirstAvailable returns the first available courier in registration order.
// Inside a unit of work the store lock already makes pick-and-claim atomic.
func (r *CourierRepository) GetFirstAvailable(_ context.Context) (*courier.Courier, error) {
	available := r.collect(func(rec courierRecord) bool { return rec.currentOrder == nil })
	if len(available) == 0 {
		return nil, errs.NewObjectNotFoundError("courier", "first available")
	}
	return available[0].toDomain()
}

// GetAllBusy retrieves couriers serving an order, in registration order.
func (r *CourierRepository) GetAllBusy(_ context.Context) ([]*courier.Courier, error) {
	return toCouriers(r.collect(func(rec courierRecord) bool { return rec.currentOrder != nil }))
}

// collect returns matching records in registration order.
func (r *CourierRepository) collect(match func(courierRecord) bool) []courierRecord {
	var records []courierRecord
	_ = r.uow.run(func(s *state) error {
		for _, id := range s.courierSeq {
			if rec := s.couriers[id]; match(rec) {
				records = append(records, rec)
			}
		}
		return nil
	})
	return records
}

func toCouriers(records []courierRecord) ([]*courier.Courier, error) {
	couriers := make([]*courier.Courier, 0, len(records))
	for _, rec := range records {
		c, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, nil
}
