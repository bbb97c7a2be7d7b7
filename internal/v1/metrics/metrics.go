package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the messaging and signaling server.
//
// Naming convention: namespace_subsystem_name
// - namespace: messenger (application-level grouping)
// - subsystem: websocket, room, delivery (feature-level grouping)
//
// Metric Types:
// - Gauge: Current state (connections, rooms, participants)
// - Counter: Cumulative events (frames processed, deliveries)
// - Histogram: Latency distributions (frame processing time)

var (
	// ActiveConnections tracks the current number of live WebSocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "messenger",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// AuthorizedSessions tracks connections bound to an authenticated user.
	AuthorizedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "messenger",
		Subsystem: "websocket",
		Name:      "sessions_authorized",
		Help:      "Current number of authenticated sessions",
	})

	// ActiveRooms tracks the current number of live signaling rooms.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "messenger",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active signaling rooms",
	})

	// RoomMembers tracks the member count of each room.
	RoomMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "messenger",
		Subsystem: "room",
		Name:      "members_count",
		Help:      "Number of members in each room",
	}, []string{"room_id"})

	// FramesTotal tracks inbound frames processed, by type and outcome.
	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "messenger",
		Subsystem: "websocket",
		Name:      "frames_total",
		Help:      "Total inbound frames processed",
	}, []string{"frame_type", "status"})

	// FrameProcessingDuration tracks the time spent handling one inbound frame.
	FrameProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "messenger",
		Subsystem: "websocket",
		Name:      "frame_processing_seconds",
		Help:      "Time spent processing inbound frames",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"frame_type"})

	// RateLimitExceeded counts rejected requests by scope and key type.
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "messenger",
		Subsystem: "ratelimit",
		Name:      "exceeded_total",
		Help:      "Requests rejected by rate limiting",
	}, []string{"scope", "key_type"})

	// PrivateDeliveries tracks real-time private message delivery attempts by outcome
	// (delivered, offline, send_failed).
	PrivateDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "messenger",
		Subsystem: "delivery",
		Name:      "private_messages_total",
		Help:      "Private message delivery attempts by outcome",
	}, []string{"outcome"})
)

func IncConnection() {
	ActiveConnections.Inc()
}

func DecConnection() {
	ActiveConnections.Dec()
}
