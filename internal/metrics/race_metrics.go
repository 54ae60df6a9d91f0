// Package metrics defines race engine metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Race counter vectors
var (
	RacesCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "races_completed_total",
		Help:      "Total number of completed races",
	})
	HistoryWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "history_write_failures_total",
		Help:      "Total number of race records that could not be stored",
	})
	HistoryCacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "history_cache_requests_total",
		Help:      "History query cache lookups by result",
	}, []string{"result"})
)

// Race histograms
var (
	RaceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "race_duration_seconds",
		Help:      "Simulated duration of completed races in seconds",
		Buckets:   []float64{8, 9, 10, 11, 12, 13, 15, 20},
	})
	ForecastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "forecast_duration_seconds",
		Help:      "Wall-clock duration of outcome forecasts in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
)

// Competitor gauge vectors
var (
	CompetitorMu = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "competitor_mu_seconds",
		Help:      "Current mean finish time of each competitor",
	}, []string{"competitor"})
	CompetitorSigma = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "competitor_sigma_seconds",
		Help:      "Current finish time spread of each competitor by side",
	}, []string{"competitor", "side"})
)

// RecordRaceCompleted records a finished race and its simulated duration.
func RecordRaceCompleted(elapsedSeconds float64) {
	RacesCompletedTotal.Inc()
	RaceDuration.Observe(elapsedSeconds)
}

// RecordHistoryWriteFailure records a dropped race record.
func RecordHistoryWriteFailure() {
	HistoryWriteFailuresTotal.Inc()
}

// RecordHistoryCache records a history cache lookup.
func RecordHistoryCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	HistoryCacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordForecastDuration records one forecast run.
func RecordForecastDuration(durationSeconds float64) {
	ForecastDuration.Observe(durationSeconds)
}

// UpdateCompetitorModel updates the performance model gauges of a competitor.
func UpdateCompetitorModel(competitor string, mu, sigmaLow, sigmaHigh float64) {
	CompetitorMu.WithLabelValues(competitor).Set(mu)
	CompetitorSigma.WithLabelValues(competitor, "low").Set(sigmaLow)
	CompetitorSigma.WithLabelValues(competitor, "high").Set(sigmaHigh)
}
