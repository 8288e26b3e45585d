package rate_limiter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RejectedRequests считает отказы лимитера. client - "user" или "ip".
var RejectedRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "gathr",
		Subsystem: "http",
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the per-client token bucket",
	},
	[]string{"method", "route", "client"},
)
