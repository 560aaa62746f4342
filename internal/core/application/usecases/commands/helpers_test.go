package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"delivery-tracker/internal/adapters/out/memory"
	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
	"delivery-tracker/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	business = kernel.MustNewLocation(6.20, -75.60)
	customer = kernel.MustNewLocation(6.22, -75.58)
	contact  = order.Contact{Email: "ana@example.com", Phone: "+573001112233"}
)

// memoryUoWFactory exposes the in-memory store through the commands' factory interface.
type memoryUoWFactory struct {
	factory *memory.UnitOfWorkFactory
}

func (f memoryUoWFactory) Create() commands.UoW {
	return f.factory.Create()
}

// orderUoWFactory narrows a UoWFactory to the OrderUoWFactory order creation asks for.
type orderUoWFactory struct {
	factory commands.UoWFactory
}

func (f orderUoWFactory) Create() commands.OrderUoW {
	return f.factory.Create()
}

func newStore(t *testing.T) (*memory.Store, commands.UoWFactory) {
	t.Helper()
	store := memory.NewStore()
	return store, memoryUoWFactory{factory: memory.NewUnitOfWorkFactory(store)}
}

func seedOrder(t *testing.T, store *memory.Store) order.ID {
	t.Helper()
	repo := memory.NewUnitOfWorkFactory(store).Create().OrderRepository()

	id, err := repo.NextIdentity(t.Context())
	require.NoError(t, err)
	o, err := order.NewOrder(id, business, customer, contact, 25, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Add(t.Context(), o))
	return id
}

func seedCourier(t *testing.T, store *memory.Store, name string, currentOrder *order.ID) kernel.UUID {
	t.Helper()
	c, err := courier.RestoreCourier(kernel.NewUUID(), name, "+57300000000", currentOrder)
	require.NoError(t, err)
	require.NoError(t, memory.NewUnitOfWorkFactory(store).Create().CourierRepository().Add(t.Context(), c))
	return c.ID()
}

func loadOrder(t *testing.T, store *memory.Store, id order.ID) *order.Order {
	t.Helper()
	o, err := memory.NewUnitOfWorkFactory(store).Create().OrderRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return o
}

func loadCourier(t *testing.T, store *memory.Store, id kernel.UUID) *courier.Courier {
	t.Helper()
	c, err := memory.NewUnitOfWorkFactory(store).Create().CourierRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return c
}

// timeline records collaborator calls in the order they happen.
type timeline struct {
	mu    sync.Mutex
	calls []string
}

func (tl *timeline) add(call string) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.calls = append(tl.calls, call)
}

func (tl *timeline) snapshot() []string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return append([]string(nil), tl.calls...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	events   map[order.ID][]tracking.Event
	timeline *timeline
}

func newRecordingPublisher(tl *timeline) *recordingPublisher {
	return &recordingPublisher{events: make(map[order.ID][]tracking.Event), timeline: tl}
}

func (p *recordingPublisher) Broadcast(orderID order.ID, event tracking.Event) int {
	p.mu.Lock()
	p.events[orderID] = append(p.events[orderID], event)
	p.mu.Unlock()
	if p.timeline != nil {
		p.timeline.add("broadcast:" + event.Type())
	}
	return 1
}

func (p *recordingPublisher) Events(orderID order.ID) []tracking.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]tracking.Event(nil), p.events[orderID]...)
}

type MockStatusNotifier struct{ mock.Mock }

func (m *MockStatusNotifier) NotifyStatusChange(ctx context.Context, c order.Contact, id order.ID, s order.Status) error {
	args := m.Called(ctx, c, id, s)
	return args.Error(0)
}

type MockMotionController struct{ mock.Mock }

func (m *MockMotionController) StartMotion(id order.ID, b kernel.Location, c kernel.Location) bool {
	args := m.Called(id, b, c)
	return args.Bool(0)
}

func (m *MockMotionController) StopMotion(id order.ID) bool {
	args := m.Called(id)
	return args.Bool(0)
}

type MockLifecycleStarter struct{ mock.Mock }

func (m *MockLifecycleStarter) StartOrder(id order.ID, b kernel.Location, c kernel.Location) {
	m.Called(id, b, c)
}

// conflictingUoW loses every compare-and-set write, as if another writer moved the order first.
type conflictingUoW struct {
	ports.UnitOfWork
}

func (u conflictingUoW) OrderRepository() ports.OrderRepository {
	return conflictingOrderRepository{OrderRepository: u.UnitOfWork.OrderRepository()}
}

type conflictingOrderRepository struct {
	ports.OrderRepository
}

func (conflictingOrderRepository) Update(context.Context, *order.Order, order.Status) error {
	return ports.ErrStatusConflict
}

type conflictingUoWFactory struct {
	factory *memory.UnitOfWorkFactory
}

func (f conflictingUoWFactory) Create() commands.UoW {
	return conflictingUoW{UnitOfWork: f.factory.Create()}
}

func statusesOf(history []order.HistoryEntry) []order.Status {
	statuses := make([]order.Status, 0, len(history))
	for _, e := range history {
		statuses = append(statuses, e.Status)
	}
	return statuses
}
