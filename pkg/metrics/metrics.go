package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flash_active_connections",
		Help: "Currently open websocket connections.",
	})
	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flash_connections_total",
		Help: "Websocket connections accepted since start.",
	})
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flash_active_rooms",
		Help: "Rooms currently alive in the hub.",
	})
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flash_events_received_total",
		Help: "Client events received, by message type.",
	}, []string{"type"})
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flash_events_emitted_total",
		Help: "Server events written to clients, by message type.",
	}, []string{"type"})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
