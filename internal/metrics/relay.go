package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trapline_relay_connected_clients",
			Help: "Current number of clients connected to the signaling relay",
		})

	FramesForwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trapline_relay_frames_forwarded_total",
			Help: "Total number of frames forwarded to other clients",
		})

	BytesForwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trapline_relay_bytes_forwarded_total",
			Help: "Total bytes forwarded by the relay",
		})

	ActiveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trapline_relay_active_rooms",
			Help: "Current number of rooms with at least one client",
		})

	RelayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trapline_relay_errors_total",
			Help: "Total number of relay errors by type",
		},
		[]string{"type"},
	)
)

var relayOnce sync.Once

func InitRelay() {
	relayOnce.Do(func() {
		prometheus.MustRegister(
			ConnectedClients,
			FramesForwarded,
			BytesForwarded,
			ActiveRooms,
			RelayErrors,
		)
	})
}
