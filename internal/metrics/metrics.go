package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_delivered_total",
			Help: "Total number of events written to live connections",
		},
		[]string{"event"},
	)

	DeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_delivery_failures_total",
			Help: "Total number of failed writes to live connections",
		},
	)

	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_connections_active",
			Help: "Number of live WebSocket connections",
		},
	)
)
