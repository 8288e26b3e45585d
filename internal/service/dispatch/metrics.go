package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_claims_total",
			Help: "Order claim attempts by outcome",
		},
		[]string{"result"},
	)

	NearbyOrdersReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_nearby_orders_returned",
			Help:    "Number of orders returned to a carrier per nearby search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)
