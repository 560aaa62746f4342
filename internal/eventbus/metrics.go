package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the bus.
type Metrics struct {
	broadcasts *prometheus.CounterVec
	deliveries prometheus.Counter
	pruned     prometheus.Counter
	observers  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "eventbus",
				Name:      "broadcasts_total",
				Help:      "Total number of broadcast calls by event type.",
			},
			[]string{"type"},
		),
		deliveries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "eventbus",
				Name:      "deliveries_total",
				Help:      "Total number of events accepted by observers.",
			},
		),
		pruned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "eventbus",
				Name:      "pruned_observers_total",
				Help:      "Total number of observers removed after a failed delivery.",
			},
		),
		observers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tracker",
				Subsystem: "eventbus",
				Name:      "observers",
				Help:      "Current number of subscribed observers.",
			},
		),
	}
}

// Pruned returns the pruned observers counter.
func (m *Metrics) Pruned() prometheus.Counter { return m.pruned }

// Deliveries returns the accepted deliveries counter.
func (m *Metrics) Deliveries() prometheus.Counter { return m.deliveries }

// Observers returns the subscribed observers gauge.
func (m *Metrics) Observers() prometheus.Gauge { return m.observers }
