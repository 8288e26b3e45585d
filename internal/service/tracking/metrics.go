package tracking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracking_active_rooms",
			Help: "Number of open per-order tracking rooms",
		},
	)

	ActiveParticipants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracking_active_participants",
			Help: "Number of participants connected to tracking rooms",
		},
	)

	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_messages_total",
			Help: "Tracking frames fanned out to participants",
		},
		[]string{"type", "result"}, // result: delivered, dropped
	)
)
