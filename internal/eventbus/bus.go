package eventbus

import (
	"hash/maphash"
	"log/slog"
	"sync"
	"sync/atomic"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
)

const (
	shardCount = 32

	// DefaultStreamBuffer is the number of events a Stream can queue before it is
	// considered dead.
	DefaultStreamBuffer = 64
)

// Observer is one live observer connection.
//
// TrySend must not block: it reports whether the event was accepted. Implementations
// must be comparable (typically a pointer) because the bus keys its sets by observer.
type Observer interface {
	TrySend(event tracking.Event) bool
}

// Token identifies one subscription.
type Token uint64

// Bus is a concurrency-safe per-order fan-out.
type Bus struct {
	shards       [shardCount]*shard
	seed         maphash.Seed
	nextToken    atomic.Uint64
	streamBuffer int
	metrics      *Metrics
	logger       *slog.Logger
}

type shard struct {
	mu      sync.Mutex
	buckets map[order.ID]*bucket
}

type bucket struct {
	mu        sync.Mutex
	observers map[Token]Observer
	tokens    map[Observer]Token
	// dead is set once the bucket is unlinked from its shard.
	dead bool
}

// NewBus creates an empty bus.
// metrics may be nil. streamBuffer <= 0 selects DefaultStreamBuffer.
func NewBus(logger *slog.Logger, metrics *Metrics, streamBuffer int) *Bus {
	if streamBuffer <= 0 {
		streamBuffer = DefaultStreamBuffer
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	b := &Bus{
		seed:         maphash.MakeSeed(),
		streamBuffer: streamBuffer,
		metrics:      metrics,
		logger:       logger.With("component", "EventBus"),
	}
	for i := range b.shards {
		b.shards[i] = &shard{buckets: make(map[order.ID]*bucket)}
	}

	return b
}

// Subscribe registers observer for orderID and returns its token.
// Subscribing the same observer to the same order again returns the existing token.
func (b *Bus) Subscribe(orderID order.ID, observer Observer) Token {
	for {
		bk := b.shardFor(orderID).getOrCreate(orderID)

		bk.mu.Lock()
		if bk.dead {
			// Lost a race with the reaper; the shard already holds a fresh bucket.
			bk.mu.Unlock()
			continue
		}
		if token, ok := bk.tokens[observer]; ok {
			bk.mu.Unlock()
			return token
		}

		token := Token(b.nextToken.Add(1))
		bk.observers[token] = observer
		bk.tokens[observer] = token
		bk.mu.Unlock()

		b.metrics.observers.Inc()
		return token
	}
}

// Unsubscribe removes the subscription identified by token.
// The order's bucket is deallocated when it becomes empty.
// Returns false if the subscription was not found (already pruned or removed).
func (b *Bus) Unsubscribe(orderID order.ID, token Token) bool {
	sh := b.shardFor(orderID)
	bk := sh.get(orderID)
	if bk == nil {
		return false
	}

	bk.mu.Lock()
	observer, ok := bk.observers[token]
	if ok {
		delete(bk.observers, token)
		delete(bk.tokens, observer)
	}
	empty := len(bk.observers) == 0
	bk.mu.Unlock()

	if ok {
		b.metrics.observers.Dec()
	}
	if empty {
		sh.reap(orderID, bk)
	}

	return ok
}

// Broadcast delivers event to every observer of orderID and returns how many accepted it.
// Observers that refuse the event are pruned; the others are still served.
func (b *Bus) Broadcast(orderID order.ID, event tracking.Event) int {
	b.metrics.broadcasts.WithLabelValues(event.Type()).Inc()

	sh := b.shardFor(orderID)
	bk := sh.get(orderID)
	if bk == nil {
		return 0
	}

	delivered, pruned := 0, 0

	bk.mu.Lock()
	for token, observer := range bk.observers {
		if observer.TrySend(event) {
			delivered++
			continue
		}
		delete(bk.observers, token)
		delete(bk.tokens, observer)
		pruned++
	}
	empty := len(bk.observers) == 0
	bk.mu.Unlock()

	b.metrics.deliveries.Add(float64(delivered))
	if pruned > 0 {
		b.metrics.pruned.Add(float64(pruned))
		b.metrics.observers.Sub(float64(pruned))
		b.logger.Debug("pruned observers", "order_id", orderID, "count", pruned)
	}
	if empty {
		sh.reap(orderID, bk)
	}

	return delivered
}

// Attach subscribes a new channel-backed Stream to orderID.
func (b *Bus) Attach(orderID order.ID) *Stream {
	s := newStream(orderID, b.streamBuffer)
	s.token = b.Subscribe(orderID, s)
	return s
}

// Detach unsubscribes the stream and closes its channel. Detaching twice is harmless.
func (b *Bus) Detach(s *Stream) {
	b.Unsubscribe(s.orderID, s.token)
	s.close()
}

// ObserverCount returns the number of observers subscribed to orderID.
func (b *Bus) ObserverCount(orderID order.ID) int {
	bk := b.shardFor(orderID).get(orderID)
	if bk == nil {
		return 0
	}

	bk.mu.Lock()
	defer bk.mu.Unlock()
	return len(bk.observers)
}

// ActiveOrders returns the number of orders with at least one allocated bucket.
func (b *Bus) ActiveOrders() int {
	n := 0
	for _, sh := range b.shards {
		sh.mu.Lock()
		n += len(sh.buckets)
		sh.mu.Unlock()
	}
	return n
}

func (b *Bus) shardFor(orderID order.ID) *shard {
	return b.shards[maphash.Comparable(b.seed, orderID)%shardCount]
}

func (s *shard) get(orderID order.ID) *bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets[orderID]
}

func (s *shard) getOrCreate(orderID order.ID) *bucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	bk, ok := s.buckets[orderID]
	if !ok {
		bk = &bucket{
			observers: make(map[Token]Observer),
			tokens:    make(map[Observer]Token),
		}
		s.buckets[orderID] = bk
	}
	return bk
}

// reap unlinks bk if it is still the bucket for orderID and still empty.
// Lock order is shard, then bucket.
func (s *shard) reap(orderID order.ID, bk *bucket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buckets[orderID] != bk {
		return
	}

	bk.mu.Lock()
	if len(bk.observers) == 0 {
		bk.dead = true
		delete(s.buckets, orderID)
	}
	bk.mu.Unlock()
}

// Metrics returns the collectors the bus reports to.
func (b *Bus) Metrics() *Metrics {
	return b.metrics
}
