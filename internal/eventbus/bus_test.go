package eventbus_test

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
	"delivery-tracker/internal/eventbus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an Observer that keeps every event it accepts.
type recorder struct {
	mu     sync.Mutex
	events []tracking.Event
	fail   atomic.Bool
	calls  atomic.Int32
}

func (r *recorder) TrySend(event tracking.Event) bool {
	r.calls.Add(1)
	if r.fail.Load() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return true
}

func (r *recorder) received() []tracking.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tracking.Event, len(r.events))
	copy(out, r.events)
	return out
}

func newTestBus(t *testing.T) *eventbus.Bus {
	t.Helper()
	return eventbus.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, 4)
}

func progress(p int) tracking.Event {
	return tracking.LocationUpdate{Lat: 6.2, Lng: -75.6, Progress: p, ETAMinutes: 1}
}

func TestBus_BroadcastIsolatedPerOrder(t *testing.T) {
	bus := newTestBus(t)
	onlyA, onlyB, both := &recorder{}, &recorder{}, &recorder{}

	bus.Subscribe(1, onlyA)
	bus.Subscribe(2, onlyB)
	bus.Subscribe(1, both)
	bus.Subscribe(2, both)

	assert.Equal(t, 2, bus.Broadcast(1, progress(10)))
	assert.Equal(t, 2, bus.Broadcast(2, progress(20)))

	assert.Equal(t, []tracking.Event{progress(10)}, onlyA.received())
	assert.Equal(t, []tracking.Event{progress(20)}, onlyB.received())
	assert.Equal(t, []tracking.Event{progress(10), progress(20)}, both.received())
}

func TestBus_SubscribeIsIdempotent(t *testing.T) {
	bus := newTestBus(t)
	r := &recorder{}

	first := bus.Subscribe(1, r)
	second := bus.Subscribe(1, r)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, bus.ObserverCount(1))
	assert.Equal(t, 1, bus.Broadcast(1, progress(0)))
	assert.Len(t, r.received(), 1)

	// The same observer may follow another order with a different token.
	other := bus.Subscribe(2, r)
	assert.NotEqual(t, first, other)
}

func TestBus_UnsubscribeDeallocatesEmptyBucket(t *testing.T) {
	bus := newTestBus(t)
	r1, r2 := &recorder{}, &recorder{}

	t1 := bus.Subscribe(7, r1)
	t2 := bus.Subscribe(7, r2)
	require.Equal(t, 1, bus.ActiveOrders())

	assert.True(t, bus.Unsubscribe(7, t1))
	assert.Equal(t, 1, bus.ActiveOrders())
	assert.True(t, bus.Unsubscribe(7, t2))
	assert.Equal(t, 0, bus.ActiveOrders())

	assert.False(t, bus.Unsubscribe(7, t2), "already removed")
	assert.Equal(t, 0, bus.Broadcast(7, progress(1)))
	assert.Empty(t, r1.received())
}

func TestBus_FailedObserverIsPrunedOthersStillServed(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := eventbus.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)), eventbus.NewMetrics(reg), 4)
	healthy, broken := &recorder{}, &recorder{}
	broken.fail.Store(true)

	bus.Subscribe(1, healthy)
	bus.Subscribe(1, broken)

	assert.Equal(t, 1, bus.Broadcast(1, progress(10)))
	assert.Equal(t, 1, bus.ObserverCount(1))

	// A recovered handle is never retried once pruned.
	broken.fail.Store(false)
	assert.Equal(t, 1, bus.Broadcast(1, progress(20)))
	assert.Equal(t, int32(1), broken.calls.Load())
	assert.Empty(t, broken.received())
	assert.Len(t, healthy.received(), 2)

	assert.InDelta(t, 1, testutil.ToFloat64(bus.Metrics().Pruned()), 0)
}

func TestBus_LastObserverPrunedDeallocatesBucket(t *testing.T) {
	bus := newTestBus(t)
	broken := &recorder{}
	broken.fail.Store(true)
	bus.Subscribe(3, broken)

	assert.Equal(t, 0, bus.Broadcast(3, progress(0)))
	assert.Equal(t, 0, bus.ActiveOrders())
}

func TestBus_NoReplayForLateSubscribers(t *testing.T) {
	bus := newTestBus(t)
	early, late := &recorder{}, &recorder{}

	bus.Subscribe(1, early)
	bus.Broadcast(1, progress(10))
	bus.Subscribe(1, late)
	bus.Broadcast(1, progress(20))

	assert.Equal(t, []tracking.Event{progress(10), progress(20)}, early.received())
	assert.Equal(t, []tracking.Event{progress(20)}, late.received())
}

func TestBus_FIFOPerOrderPerObserver(t *testing.T) {
	bus := newTestBus(t)
	r := &recorder{}
	bus.Subscribe(1, r)

	for i := range 100 {
		bus.Broadcast(1, progress(i))
	}

	events := r.received()
	require.Len(t, events, 100)
	for i, e := range events {
		assert.Equal(t, i, e.(tracking.LocationUpdate).Progress)
	}
}

func TestBus_ConcurrentUse(t *testing.T) {
	bus := newTestBus(t)
	const orders = 16

	var wg sync.WaitGroup
	for id := range orders {
		orderID := order.ID(id + 1)

		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 200 {
				bus.Broadcast(orderID, progress(i%101))
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				r := &recorder{}
				token := bus.Subscribe(orderID, r)
				bus.Unsubscribe(orderID, token)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.ActiveOrders())
}

func TestBus_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := eventbus.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)), eventbus.NewMetrics(reg), 4)

	token := bus.Subscribe(1, &recorder{})
	bus.Subscribe(1, &recorder{})
	bus.Broadcast(1, tracking.NewStatusUpdate(order.Preparing))
	bus.Unsubscribe(1, token)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, count)
	assert.InDelta(t, 1, testutil.ToFloat64(bus.Metrics().Observers()), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(bus.Metrics().Deliveries()), 0)
}
