package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_active",
		Help: "Live websocket connections across all rooms.",
	})
	MessagesBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_broadcast_total",
		Help: "Inbound messages fanned out to a room.",
	})
	Deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_deliveries_total",
		Help: "Per-recipient deliveries that succeeded.",
	})
	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_delivery_failures_total",
		Help: "Per-recipient deliveries that failed and dropped the connection.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
