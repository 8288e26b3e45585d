package stripe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StripeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stripe_request_duration_seconds",
			Help:    "Duration of payment gateway requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "result"},
	)

	StripeBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stripe_circuit_breaker_state",
			Help: "Payment gateway circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)
)
