package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anarcroom_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anarcroom_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Connection metrics
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anarcroom_connections_total",
			Help: "Total WebSocket connections accepted",
		},
	)

	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "anarcroom_connections_active",
			Help: "Currently registered WebSocket connections",
		},
	)

	// Room engine metrics
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "anarcroom_rooms_active",
			Help: "Rooms currently tracked by the store",
		},
	)

	MessagesBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anarcroom_messages_broadcast_total",
			Help: "Total messages appended and fanned out",
		},
	)

	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anarcroom_deliveries_dropped_total",
			Help: "Event deliveries dropped (full buffer or gone connection)",
		},
	)

	MembersReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anarcroom_members_reaped_total",
			Help: "Members evicted by the idle reaper",
		},
	)

	FramesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anarcroom_frames_rejected_total",
			Help: "Inbound frames discarded (malformed or rate limited)",
		},
	)
)
