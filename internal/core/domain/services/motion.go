package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/pkg/errs"
)

// Motion path constants.
const (
	// MotionNoiseAmplitude is the oscillation added to every synthetic point, in degrees.
	MotionNoiseAmplitude = 5e-5
	// motionNoiseFrequency multiplies the tick index inside sin/cos.
	motionNoiseFrequency = 0.5
)

// Fallback endpoints used when a location is missing (see ResolveMotionEndpoints):
// El Poblado to Laureles, Medellín.
var (
	FallbackMotionStart = kernel.MustNewLocation(6.2092, -75.5676)
	FallbackMotionEnd   = kernel.MustNewLocation(6.2425, -75.5894)
)

// ErrMotionPlanIsInvalid is returned by Run for plans that cannot produce a single tick.
var ErrMotionPlanIsInvalid = errors.New("motion plan is invalid")

// MotionOutcome tells a natural completion apart from a cancellation.
type MotionOutcome int

const (
	// MotionCompleted means every tick was emitted.
	MotionCompleted MotionOutcome = iota + 1
	// MotionCancelled means the run stopped early; no terminal event should follow.
	MotionCancelled
)

func (o MotionOutcome) String() string {
	switch o {
	case MotionCompleted:
		return "completed"
	case MotionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MotionPlan describes one synthetic trip.
type MotionPlan struct {
	Start    kernel.Location
	End      kernel.Location
	Duration time.Duration
	Tick     time.Duration
}

// Steps returns Duration / Tick, the number of points the run emits.
func (p MotionPlan) Steps() int {
	if p.Tick <= 0 {
		return 0
	}
	return int(p.Duration / p.Tick)
}

// Validate requires valid endpoints and at least one tick.
func (p MotionPlan) Validate() error {
	var tickErr error
	if p.Tick <= 0 || p.Steps() < 1 {
		tickErr = errs.NewValueIsInvalidErrorWithCause("motion plan",
			fmt.Errorf("duration %s must hold at least one tick of %s", p.Duration, p.Tick))
	}
	if err := errors.Join(p.Start.Validate(), p.End.Validate(), tickErr); err != nil {
		return fmt.Errorf("%w: %w", ErrMotionPlanIsInvalid, err)
	}
	return nil
}

// MotionTick is one emitted point with its progress metadata.
type MotionTick struct {
	Index      int
	Total      int
	Lat        float64
	Lng        float64
	Progress   int
	ETAMinutes int
}

// MotionSynthesizer produces a timed sequence of positions between two points.
// It knows geometry and timing only; order statuses are the caller's concern.
type MotionSynthesizer struct{}

// NewMotionSynthesizer creates a new MotionSynthesizer instance.
func NewMotionSynthesizer() MotionSynthesizer {
	return MotionSynthesizer{}
}

// PointAt returns tick i of plan without waiting.
//
// The point lies at fraction (i+1)/steps of the straight line from Start to End,
// offset by sin(i*0.5) and cos(i*0.5) times MotionNoiseAmplitude on lat and lng.
// progress = trunc(i/steps*100), eta = max(1, ceil((steps-i)*tick/1min)).
func (MotionSynthesizer) PointAt(plan MotionPlan, i int) MotionTick {
	steps := plan.Steps()
	fraction := float64(i+1) / float64(steps)
	phase := float64(i) * motionNoiseFrequency

	lat := plan.Start.Lat() + (plan.End.Lat()-plan.Start.Lat())*fraction + math.Sin(phase)*MotionNoiseAmplitude
	lng := plan.Start.Lng() + (plan.End.Lng()-plan.Start.Lng())*fraction + math.Cos(phase)*MotionNoiseAmplitude

	remaining := time.Duration(steps-i) * plan.Tick
	eta := int(math.Ceil(remaining.Minutes()))
	if eta < 1 {
		eta = 1
	}

	return MotionTick{
		Index:      i,
		Total:      steps,
		Lat:        lat,
		Lng:        lng,
		Progress:   i * 100 / steps,
		ETAMinutes: eta,
	}
}

// Run emits plan.Steps() ticks through onTick, waiting plan.Tick after each one.
//
// isCancelled (may be nil) is consulted before every tick; a true result or a done
// ctx ends the run with MotionCancelled and no further onTick call. After the last
// tick's wait the run returns MotionCompleted.
//
// Returns an error only when the plan is invalid.
func (s MotionSynthesizer) Run(
	ctx context.Context,
	plan MotionPlan,
	onTick func(MotionTick),
	isCancelled func() bool,
) (MotionOutcome, error) {
	if err := plan.Validate(); err != nil {
		return MotionCancelled, err
	}

	timer := time.NewTimer(plan.Tick)
	defer timer.Stop()

	for i := range plan.Steps() {
		if ctx.Err() != nil || (isCancelled != nil && isCancelled()) {
			return MotionCancelled, nil
		}

		onTick(s.PointAt(plan, i))

		timer.Reset(plan.Tick)
		select {
		case <-ctx.Done():
			return MotionCancelled, nil
		case <-timer.C:
		}
	}

	return MotionCompleted, nil
}

// ResolveMotionEndpoints applies the missing-coordinates policy: a location at exactly
// (0,0) means the record has no coordinates, and the whole pair is replaced by
// FallbackMotionStart and FallbackMotionEnd so the path stays meaningful.
//
// Returns the endpoints to use and whether the fallback was applied.
func ResolveMotionEndpoints(business kernel.Location, customer kernel.Location) (kernel.Location, kernel.Location, bool) {
	if business.IsOrigin() || customer.IsOrigin() {
		return FallbackMotionStart, FallbackMotionEnd, true
	}
	return business, customer, false
}
