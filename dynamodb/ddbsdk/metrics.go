package ddbsdk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a Client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg, if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ddbtoolbox",
				Name:      "requests_total",
				Help:      "Total number of DynamoDB requests sent",
			},
			[]string{"operation", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ddbtoolbox",
				Name:      "request_duration_seconds",
				Help:      "DynamoDB request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) observe(op string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.RequestsTotal.WithLabelValues(op, outcome).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
}
