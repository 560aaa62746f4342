package kernel

import (
	"errors"
	"fmt"

	"delivery-tracker/internal/pkg/errs"
	"delivery-tracker/internal/pkg/guard"
)

const (
	// LatitudeMin is the smallest valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the largest valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the smallest valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the largest valid longitude in degrees.
	LongitudeMax = 180.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly initialized Location.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable geographic point expressed in decimal degrees (WGS84).
// The zero value of Location is invalid and fails validation; use NewLocation.
//
// A constructed Location at (0,0) is valid but is treated by the motion
// policy as "coordinates missing" (see IsOrigin).
//
// Example:
//
//	loc, err := kernel.NewLocation(6.2092, -75.5676)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Location: %s", loc) // Output: Location(6.209200,-75.567600)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a new Location with the specified coordinates.
//
// Parameters:
//   - lat: latitude in degrees, within [LatitudeMin..LatitudeMax]
//   - lng: longitude in degrees, within [LongitudeMin..LongitudeMax]
//
// Returns:
//   - Location: A valid location instance
//   - error: Validation error if either coordinate is out of bounds (both are reported)
func NewLocation(lat float64, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// MustNewLocation is NewLocation for compile-time constants; it panics on invalid input.
func MustNewLocation(lat float64, lng float64) Location {
	loc, err := NewLocation(lat, lng)
	if err != nil {
		panic(err)
	}
	return loc
}

// Validate checks if the Location was properly constructed using a constructor.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in degrees.
func (l Location) Lng() float64 {
	return l.lng
}

// IsOrigin reports whether the location is exactly (0,0).
// Upstream records use the origin as "coordinates unknown".
func (l Location) IsOrigin() bool {
	return l.lat == 0 && l.lng == 0
}

// String returns "Location(lat,lng)" with six decimals.
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.lat, l.lng)
}

// IsEqual compares two locations for equality.
// Both locations must be properly constructed for the comparison to succeed.
//
// Returns:
//   - bool: true if latitude and longitude are identical
//   - error: Validation error if either location is improperly constructed
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// DistanceTo returns the great-circle distance to other in kilometres.
// Both locations must be properly constructed.
//
// Example:
//
//	poblado := kernel.MustNewLocation(6.2092, -75.5676)
//	laureles := kernel.MustNewLocation(6.2425, -75.5894)
//	km, _ := poblado.DistanceTo(laureles) // ≈ 4.4
func (l Location) DistanceTo(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return DistanceKm(l.lat, l.lng, other.lat, other.lng), nil
}

// setLat sets the latitude with validation.
// Pointer receiver is used only by the constructor.
func (l *Location) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	l.lat = lat
	return nil
}

// setLng sets the longitude with validation.
// Pointer receiver is used only by the constructor.
func (l *Location) setLng(lng float64) error {
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}

	l.lng = lng
	return nil
}
