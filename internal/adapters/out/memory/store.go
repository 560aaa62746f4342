// Package memory provides in-process implementations of the repository ports and the
// unit of work. It backs STORAGE_DRIVER=memory and the application tests.
//
// A unit of work takes the store lock on Begin and works on a copy of the state;
// Commit publishes the copy and Rollback drops it. Repositories used outside a
// transaction lock the store for each call and write through immediately.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback without a preceding Begin.
var ErrNoTransaction = errors.New("no active transaction")

// Store holds the orders and the courier pool of one process.
type Store struct {
	mu     sync.Mutex
	state  *state
	nextID atomic.Int64
}

type state struct {
	orders   map[order.ID]orderRecord
	couriers map[kernel.UUID]courierRecord
	// registration order of couriers; "first available" follows it
	courierSeq []kernel.UUID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		state: &state{
			orders:   make(map[order.ID]orderRecord),
			couriers: make(map[kernel.UUID]courierRecord),
		},
	}
}

func (s *state) clone() *state {
	c := &state{
		orders:     make(map[order.ID]orderRecord, len(s.orders)),
		couriers:   make(map[kernel.UUID]courierRecord, len(s.couriers)),
		courierSeq: make([]kernel.UUID, len(s.courierSeq)),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.couriers {
		c.couriers[k] = v
	}
	copy(c.courierSeq, s.courierSeq)
	return c
}

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

// NewUnitOfWorkFactory creates a factory for store.
func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

// Create produces a new UnitOfWork.
func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork implements ports.UnitOfWork. Transactions are serialized by the store lock.
type UnitOfWork struct {
	store *Store
	tx    *state
}

// Begin takes the store lock and starts working on a copy of the state.
// Calling Begin on an active unit of work is a no-op.
func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.tx != nil {
		return nil
	}

	u.store.mu.Lock()
	u.tx = u.store.state.clone()
	return nil
}

// Commit publishes the working copy and releases the store lock.
func (u *UnitOfWork) Commit(_ context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}

	u.store.state = u.tx
	u.tx = nil
	u.store.mu.Unlock()
	return nil
}

// Rollback drops the working copy and releases the store lock.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}

	u.tx = nil
	u.store.mu.Unlock()
	return nil
}

// OrderRepository returns an order repository bound to this unit of work.
func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: u}
}

// CourierRepository returns a courier repository bound to this unit of work.
func (u *UnitOfWork) CourierRepository() ports.CourierRepository {
	return &CourierRepository{uow: u}
}

// run executes fn on the transaction copy, or on the live state under the store lock.
func (u *UnitOfWork) run(fn func(s *state) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(u.store.state)
}
