package graceful_shutdown

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var DrainRejectedRequests = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "gathr",
		Subsystem: "http",
		Name:      "drain_rejected_requests_total",
		Help:      "Requests refused with 503 after the server started draining",
	},
)
