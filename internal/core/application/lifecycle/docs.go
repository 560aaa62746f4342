// Package lifecycle drives orders through the automatic lifecycle and runs the
// synthetic courier motion of orders in transit.
//
// Every placed order gets one task: wait PreparingDelay, step pending -> preparing,
// wait DispatchDelay, step preparing -> in_transit, then start a motion session. A
// session publishes LocationUpdates at every tick and, when it runs to the end,
// steps in_transit -> delivered. Each step is guarded by the status it expects; a
// step whose order was moved by a manual update is logged and skipped.
//
// At most one session runs per order. StopMotion guarantees that no LocationUpdate
// of the order is published once it returns, and no session starts for the order
// afterwards. Shutdown cancels all tasks and
// sessions and waits for their goroutines.
package lifecycle
