package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the dispatcher.
type Metrics struct {
	sent    *prometheus.CounterVec
	failed  *prometheus.CounterVec
	retries prometheus.Counter
	dropped prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		sent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "notify",
				Name:      "sent_total",
				Help:      "Total number of notifications sent, by channel.",
			},
			[]string{"channel"},
		),
		failed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "notify",
				Name:      "failed_total",
				Help:      "Total number of notifications given up on, by channel.",
			},
			[]string{"channel"},
		),
		retries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "notify",
				Name:      "retries_total",
				Help:      "Total number of send attempts that were retried.",
			},
		),
		dropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "notify",
				Name:      "dropped_total",
				Help:      "Total number of notifications dropped because the queue was full.",
			},
		),
	}
}

// Sent returns the sent counter of channel.
func (m *Metrics) Sent(channel Channel) prometheus.Counter {
	return m.sent.WithLabelValues(string(channel))
}

// Failed returns the failed counter of channel.
func (m *Metrics) Failed(channel Channel) prometheus.Counter {
	return m.failed.WithLabelValues(string(channel))
}

// Retries returns the retried attempts counter.
func (m *Metrics) Retries() prometheus.Counter { return m.retries }

// Dropped returns the dropped notifications counter.
func (m *Metrics) Dropped() prometheus.Counter { return m.dropped }
