package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dealroom_connections_active",
			Help: "Live websocket connections",
		},
	)

	RoomJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealroom_room_joins_total",
			Help: "Successful deal room joins",
		},
	)

	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealroom_messages_relayed_total",
			Help: "Messages relayed into deal rooms",
		},
	)

	NotificationsPushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealroom_notifications_pushed_total",
			Help: "Notifications pushed to live connections",
		},
	)

	DisputesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealroom_disputes_resolved_total",
			Help: "Disputes resolved by escrow consensus",
		},
		[]string{"outcome"},
	)
)
