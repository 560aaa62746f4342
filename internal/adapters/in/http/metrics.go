package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds the Prometheus collectors of the HTTP adapter.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	trackingStreams  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tracker",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tracker",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request latency in seconds.",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tracker",
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of requests being served.",
			},
		),
		trackingStreams: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tracker",
				Subsystem: "http",
				Name:      "tracking_streams",
				Help:      "Current number of open tracking WebSockets.",
			},
		),
	}
}

// TrackingStreams returns the open tracking WebSockets gauge.
func (m *Metrics) TrackingStreams() prometheus.Gauge { return m.trackingStreams }

// Middleware records every request except those whose route is in skip.
// Routes are labelled by their template, so /api/v1/orders/7 counts as
// /api/v1/orders/:orderId.
func (m *Metrics) Middleware(skip ...string) echo.MiddlewareFunc {
	skipSet := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipSet[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if skipSet[path] {
				return next(c)
			}
			if path == "" {
				path = "unmatched"
			}

			m.requestsInFlight.Inc()
			defer m.requestsInFlight.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			m.requestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}
