// Package courier provides the Courier aggregate: one member of the shared courier
// pool that orders draw from when they go in transit.
//
// Key business rules:
//   - Couriers must have a valid unique identifier, a name and a phone
//   - A courier serves at most one order at a time (Claim fails when busy)
//   - Release only frees the courier for the order it serves
//
// Selecting "the first available courier" and claiming it atomically is a storage
// concern; see ports.CourierRepository.ClaimFirstAvailable.
package courier
