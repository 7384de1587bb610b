package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActivityWrites counts activity log inserts by type and outcome (ok|error).
	ActivityWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripdesk_activity_writes_total",
			Help: "Total number of activity log writes",
		},
		[]string{"activity_type", "result"},
	)

	// NotificationsSent counts notification inserts by outcome (ok|error).
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripdesk_notifications_sent_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"result"},
	)

	// RealtimeDeliveries counts events pushed to live subscribers (delivered|dropped).
	RealtimeDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripdesk_realtime_deliveries_total",
			Help: "Total number of realtime fan-out deliveries",
		},
		[]string{"result"},
	)

	// RealtimeSubscribers tracks currently connected realtime subscribers.
	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tripdesk_realtime_subscribers",
			Help: "Number of live realtime subscribers",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripdesk_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
