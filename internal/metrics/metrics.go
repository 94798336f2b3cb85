// Package metrics exposes Prometheus instrumentation for the client:
// realtime connection health, received push events, notifications and the
// polling fallback.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PushEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_push_events_total",
			Help: "Push events received over the realtime channel",
		},
		[]string{"event"},
	)

	ReconnectAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "client_reconnect_attempts_total",
			Help: "Realtime connection attempts after a failure",
		},
	)

	ConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "client_connection_state",
			Help: "Realtime connection state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting)",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_notifications_total",
			Help: "Transient notifications presented, by level",
		},
		[]string{"level"},
	)

	PollsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "client_thread_polls_total",
			Help: "Background thread refresh fetches",
		},
	)

	PolledPostsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "client_polled_posts_appended_total",
			Help: "Posts appended by the polling fallback rather than a push event",
		},
	)
)
