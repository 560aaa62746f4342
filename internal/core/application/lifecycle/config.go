package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"delivery-tracker/internal/pkg/errs"
)

// Default timings of the automatic lifecycle.
const (
	DefaultPreparingDelay = 5 * time.Second
	DefaultDispatchDelay  = 8 * time.Second
	DefaultTripDuration   = 60 * time.Second
	DefaultTickInterval   = 2 * time.Second
)

// Config holds the timings of the automatic lifecycle.
type Config struct {
	// PreparingDelay is the wait between placement and preparing.
	PreparingDelay time.Duration
	// DispatchDelay is the wait between preparing and in_transit.
	DispatchDelay time.Duration
	// TripDuration is the length of the synthetic trip.
	TripDuration time.Duration
	// TickInterval is the time between two location updates.
	TickInterval time.Duration
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		PreparingDelay: DefaultPreparingDelay,
		DispatchDelay:  DefaultDispatchDelay,
		TripDuration:   DefaultTripDuration,
		TickInterval:   DefaultTickInterval,
	}
}

// Validate requires non-negative waits and a trip of at least one tick.
func (c Config) Validate() error {
	var errList []error
	if c.PreparingDelay < 0 {
		errList = append(errList, errs.NewValueIsInvalidError("preparing delay"))
	}
	if c.DispatchDelay < 0 {
		errList = append(errList, errs.NewValueIsInvalidError("dispatch delay"))
	}
	if c.TickInterval <= 0 || c.TripDuration < c.TickInterval {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("trip",
			fmt.Errorf("duration %s must hold at least one tick of %s", c.TripDuration, c.TickInterval)))
	}
	return errors.Join(errList...)
}
