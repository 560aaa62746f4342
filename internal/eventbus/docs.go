// Package eventbus fans tracking events out to the observers of each order.
//
// Observers are grouped in per-order buckets. Buckets live in a fixed number of
// shards and every bucket has its own mutex, so a broadcast to one order never waits
// for a subscribe or broadcast on another order. A broadcast holds its bucket lock
// for the whole fan-out, which gives every observer the events of one order in the
// order Broadcast was called.
//
// Delivery is best-effort and at-most-once: an observer whose TrySend fails is
// removed before the broadcast returns and never receives anything again, and late
// subscribers never see past events.
//
// Transports use Attach/Detach, which wrap a buffered channel in a Stream observer.
package eventbus
