// Package order holds the Order aggregate and its status state machine.
//
// The aggregate owns:
//   - the business (pickup) and customer (drop-off) locations
//   - the customer contact used for notifications
//   - the current Status and the append-only status history
//   - the courier assignment made when the order goes in transit
//   - the distance and ETA estimate computed at creation
//
// Two kinds of transitions exist. Advance is the guarded automatic step: it applies
// only when the current status equals the expected one and the edge belongs to the
// automatic lifecycle; otherwise it fails with ErrStatusMismatch or ErrInvalidTransition.
// Override is the permissive manual path: any enumerated target is accepted unless the
// order is already Delivered or Cancelled.
package order
