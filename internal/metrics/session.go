package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trapline_session_messages_sent_total",
			Help: "Messages handed to the transport by kind",
		},
		[]string{"kind"},
	)

	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trapline_session_messages_received_total",
			Help: "Messages drained from the inbound queue by kind",
		},
		[]string{"kind"},
	)

	MessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trapline_transport_messages_dropped_total",
			Help: "Messages dropped by a transport by reason",
		},
		[]string{"reason"},
	)

	TrapsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trapline_session_traps_applied_total",
			Help: "Trap intents applied by the Runner",
		},
		[]string{"kind"},
	)

	LevelFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trapline_level_fallbacks_total",
			Help: "Times the deterministic fallback level replaced a generated one",
		})

	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trapline_session_tick_seconds",
			Help:    "Time spent inside one simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		})
)

var sessionOnce sync.Once

func InitSession() {
	sessionOnce.Do(func() {
		prometheus.MustRegister(
			MessagesSent,
			MessagesReceived,
			MessagesDropped,
			TrapsApplied,
			LevelFallbacks,
			TickDuration,
		)
	})
}
