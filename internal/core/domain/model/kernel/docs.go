// Package kernel provides the value objects shared across the tracking domain.
//
// The package includes:
//   - UUID: identifier for couriers, wrapping github.com/google/uuid
//   - Location: a validated latitude/longitude point
//   - DistanceKm / EstimateDeliveryMinutes: the geo math used for distance display
//     and the coarse ETA shown at order placement
//
// All values are immutable and safe for concurrent use.
package kernel
