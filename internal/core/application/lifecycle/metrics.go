package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the orchestrator.
type Metrics struct {
	steps           *prometheus.CounterVec
	staleSteps      prometheus.Counter
	sessions        prometheus.Gauge
	locationUpdates prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		steps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "lifecycle",
				Name:      "steps_total",
				Help:      "Total number of automatic steps applied, by target status.",
			},
			[]string{"status"},
		),
		staleSteps: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "lifecycle",
				Name:      "stale_steps_total",
				Help:      "Total number of automatic steps skipped because the order had moved on.",
			},
		),
		sessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tracker",
				Subsystem: "lifecycle",
				Name:      "motion_sessions",
				Help:      "Current number of active motion sessions.",
			},
		),
		locationUpdates: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "lifecycle",
				Name:      "location_updates_total",
				Help:      "Total number of location updates published.",
			},
		),
	}
}

// StaleSteps returns the skipped steps counter.
func (m *Metrics) StaleSteps() prometheus.Counter { return m.staleSteps }

// Sessions returns the active sessions gauge.
func (m *Metrics) Sessions() prometheus.Gauge { return m.sessions }

// LocationUpdates returns the published location updates counter.
func (m *Metrics) LocationUpdates() prometheus.Counter { return m.locationUpdates }
