// Package metrics provides centralized Prometheus metrics registry for the race service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "racecast"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	TicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "ticks_total",
		Help:      "Total number of engine ticks by response type",
	}, []string{"type"})
	TickErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "tick_errors_total",
		Help:      "Total number of ticks that returned an error",
	})
	BroadcastMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "broadcast_messages_total",
		Help:      "Total number of messages delivered to websocket clients",
	})
	BroadcastDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "broadcast_drops_total",
		Help:      "Total number of messages dropped for slow websocket clients",
	})
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of HTTP API requests by route and status",
	}, []string{"route", "status"})
	AlertsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "alerts_sent_total",
		Help:      "Total number of operator alerts by outcome",
	}, []string{"status"})
)

// Gauge metrics
var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "connected_clients",
		Help:      "Number of connected websocket clients",
	})
)

// Histogram metrics
var (
	TickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "tick_duration_seconds",
		Help:      "Wall-clock duration of engine ticks in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(TicksTotal)
		registry.MustRegister(TickErrorsTotal)
		registry.MustRegister(BroadcastMessagesTotal)
		registry.MustRegister(BroadcastDropsTotal)
		registry.MustRegister(APIRequestsTotal)
		registry.MustRegister(AlertsSentTotal)

		registry.MustRegister(ConnectedClients)

		registry.MustRegister(TickDuration)

		// Race metrics
		registry.MustRegister(RacesCompletedTotal)
		registry.MustRegister(RaceDuration)
		registry.MustRegister(HistoryWriteFailuresTotal)
		registry.MustRegister(HistoryCacheRequestsTotal)
		registry.MustRegister(ForecastDuration)
		registry.MustRegister(CompetitorMu)
		registry.MustRegister(CompetitorSigma)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordTick records one engine tick.
func RecordTick(responseType string, durationSeconds float64) {
	TicksTotal.WithLabelValues(responseType).Inc()
	TickDuration.Observe(durationSeconds)
}

// RecordTickError records a tick that returned an error.
func RecordTickError() {
	TickErrorsTotal.Inc()
}

// RecordBroadcast records delivered and dropped websocket messages.
func RecordBroadcast(delivered, dropped int) {
	BroadcastMessagesTotal.Add(float64(delivered))
	BroadcastDropsTotal.Add(float64(dropped))
}

// UpdateConnectedClients updates the connected clients gauge.
func UpdateConnectedClients(count int) {
	ConnectedClients.Set(float64(count))
}

// RecordAPIRequest records an HTTP API request.
func RecordAPIRequest(route, status string) {
	APIRequestsTotal.WithLabelValues(route, status).Inc()
}

// RecordAlert records an operator alert.
// status should be one of: "sent", "failed"
func RecordAlert(status string) {
	AlertsSentTotal.WithLabelValues(status).Inc()
}
