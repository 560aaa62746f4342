package memory_test

import (
	"sync"
	"testing"
	"time"

	"delivery-tracker/internal/adapters/out/memory"
	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
	"delivery-tracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(t *testing.T, repo ports.OrderRepository) *order.Order {
	t.Helper()
	id, err := repo.NextIdentity(t.Context())
	require.NoError(t, err)
	o, err := order.NewOrder(id,
		kernel.MustNewLocation(6.20, -75.60), kernel.MustNewLocation(6.22, -75.58),
		order.Contact{Phone: "+573001112233"}, 20, time.Now())
	require.NoError(t, err)
	return o
}

func newCourier(t *testing.T, name string) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name, "+57300")
	require.NoError(t, err)
	return c
}

func TestUnitOfWork_CommitPublishesChanges(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	o := newOrder(t, uow.OrderRepository())
	require.NoError(t, uow.OrderRepository().Add(ctx, o))

	// not visible outside the transaction yet
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = factory.Create().OrderRepository().Get(ctx, o.ID())
	}()
	select {
	case <-done:
		t.Fatal("read outside the transaction did not wait for commit")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, uow.Commit(ctx))
	<-done

	got, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, o.History(), got.History())
	assert.Equal(t, o.DistanceKm(), got.DistanceKm())
}

func TestUnitOfWork_RollbackDiscardsChanges(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	c := newCourier(t, "Luis")
	require.NoError(t, uow.CourierRepository().Add(ctx, c))
	require.NoError(t, uow.Rollback(ctx))

	_, err := factory.Create().CourierRepository().Get(ctx, c.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestUnitOfWork_CommitWithoutBegin(t *testing.T) {
	uow := memory.NewUnitOfWorkFactory(memory.NewStore()).Create()

	require.ErrorIs(t, uow.Commit(t.Context()), memory.ErrNoTransaction)
	require.ErrorIs(t, uow.Rollback(t.Context()), memory.ErrNoTransaction)
}

func TestOrderRepository_UpdateIsCompareAndSet(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository()
	o := newOrder(t, repo)
	require.NoError(t, repo.Add(ctx, o))

	require.NoError(t, o.Advance(order.Pending, order.Preparing, order.ActorSystem, time.Now()))
	require.NoError(t, repo.Update(ctx, o, order.Pending))

	require.NoError(t, o.Override(order.Cancelled, "admin", time.Now()))
	require.ErrorIs(t, repo.Update(ctx, o, order.Pending), ports.ErrStatusConflict)

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Preparing, stored.Status())
}

func TestOrderRepository_UpdateMissingOrder(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository()
	o := newOrder(t, repo)

	require.ErrorIs(t, repo.Update(ctx, o, order.Pending), errs.ErrObjectNotFound)
}

func TestOrderRepository_GetActiveSkipsTerminalOrders(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository()

	var ids []order.ID
	for range 3 {
		o := newOrder(t, repo)
		require.NoError(t, repo.Add(ctx, o))
		ids = append(ids, o.ID())
	}
	done, err := repo.Get(ctx, ids[1])
	require.NoError(t, err)
	require.NoError(t, done.Override(order.Delivered, "admin", time.Now()))
	require.NoError(t, repo.Update(ctx, done, order.Pending))

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, ids[0], active[0].ID())
	assert.Equal(t, ids[2], active[1].ID())
}

func TestOrderRepository_NextIdentityIsNeverReused(t *testing.T) {
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())

	var wg sync.WaitGroup
	ids := make(chan order.ID, 100)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := factory.Create().OrderRepository().NextIdentity(t.Context())
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[order.ID]bool)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestCourierRepository_Queries(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().CourierRepository()

	zoe := newCourier(t, "Zoe")
	ana := newCourier(t, "Ana")
	require.NoError(t, zoe.Claim(1))
	require.NoError(t, repo.Add(ctx, zoe))
	require.NoError(t, repo.Add(ctx, ana))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name())

	first, err := repo.GetFirstAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, ana.ID(), first.ID())

	busy, err := repo.GetAllBusy(ctx)
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, zoe.ID(), busy[0].ID())

	require.NoError(t, first.Claim(2))
	require.NoError(t, repo.Update(ctx, first))
	_, err = repo.GetFirstAvailable(ctx)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestCourierRepository_ConcurrentClaimsNeverShareACourier(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	require.NoError(t, factory.Create().CourierRepository().Add(ctx, newCourier(t, "Only")))

	var wg sync.WaitGroup
	claims := make(chan order.ID, 10)
	for i := range 10 {
		wg.Add(1)
		go func(orderID order.ID) {
			defer wg.Done()
			uow := factory.Create()
			assert.NoError(t, uow.Begin(ctx))
			defer func() { _ = uow.Rollback(ctx) }()

			c, err := uow.CourierRepository().GetFirstAvailable(ctx)
			if err != nil {
				return
			}
			assert.NoError(t, c.Claim(orderID))
			assert.NoError(t, uow.CourierRepository().Update(ctx, c))
			assert.NoError(t, uow.Commit(ctx))
			claims <- orderID
		}(order.ID(i + 1))
	}
	wg.Wait()
	close(claims)

	assert.Len(t, claims, 1)
}
