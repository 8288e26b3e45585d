package payment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var PaymentUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_updates_total",
		Help: "Payment status updates by source (webhook, poll, reconcile) and outcome",
	},
	[]string{"source", "outcome"},
)
