// Package services provides domain services that work across aggregates.
//
// The package includes:
//   - OrderDispatcher: claims the first available courier for an order going in
//     transit and releases it when the order is finished
//   - MotionSynthesizer: produces the timed synthetic courier path between the
//     business and the customer, with progress and ETA for every tick
//
// Both services are free of I/O; persistence and publishing are done by the
// application layer.
package services
