// Package logger provides race engine logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RaceLogger provides dedicated logging for the race engine.
type RaceLogger struct {
	*logrus.Entry
}

// NewRaceLogger creates a new race logger.
func NewRaceLogger(baseLogger *logrus.Logger) *RaceLogger {
	return &RaceLogger{
		Entry: baseLogger.WithField("component", "race"),
	}
}

// LogRosterInitialized logs the roster draw on the first tick.
func (rl *RaceLogger) LogRosterInitialized(competitors, nextRaceIndex int) {
	rl.WithFields(logrus.Fields{
		"competitors":     competitors,
		"next_race_index": nextRaceIndex,
	}).Info("Roster initialized")
}

// LogRaceStarted logs a race start.
func (rl *RaceLogger) LogRaceStarted(raceIndex, competitors int) {
	rl.WithFields(logrus.Fields{
		"race_index":  raceIndex,
		"competitors": competitors,
	}).Info("Race started")
}

// LogRaceFinished logs a race finish.
func (rl *RaceLogger) LogRaceFinished(raceIndex int, winner string, elapsedSeconds float64) {
	rl.WithFields(logrus.Fields{
		"race_index":      raceIndex,
		"winner":          winner,
		"elapsed_seconds": elapsedSeconds,
	}).Info("Race finished")
}

// LogWarmupSkip logs a skipped model refit.
func (rl *RaceLogger) LogWarmupSkip(raceIndex, warmupRaces int) {
	rl.WithFields(logrus.Fields{
		"race_index":   raceIndex,
		"warmup_races": warmupRaces,
	}).Info("Skipping model update during warm-up")
}

// LogModelUpdate logs a refitted performance model.
func (rl *RaceLogger) LogModelUpdate(competitor string, mu, sigmaLow, sigmaHigh float64) {
	rl.WithFields(logrus.Fields{
		"competitor": competitor,
		"mu":         mu,
		"sigma_low":  sigmaLow,
		"sigma_high": sigmaHigh,
	}).Debug("Performance model updated")
}

// LogTick logs the timing of one engine tick.
func (rl *RaceLogger) LogTick(responseType string, running bool, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"response_type": responseType,
		"is_running":    running,
		"duration_ms":   durationMs,
	}).Debug("Tick completed")
}

// LogHistoryReadFailure logs a failed history read; the tick continues with no history.
func (rl *RaceLogger) LogHistoryReadFailure(operation string, err error) {
	rl.WithFields(logrus.Fields{
		"operation": operation,
		"error":     err.Error(),
	}).Warn("History read failed, continuing without history")
}

// LogHistoryWriteFailure logs a race record that could not be stored.
func (rl *RaceLogger) LogHistoryWriteFailure(raceIndex int, err error) {
	rl.WithFields(logrus.Fields{
		"race_index": raceIndex,
		"error":      err.Error(),
	}).Error("Failed to append race record")
}

// LogForecastFallback logs a parallel forecast that was redone inline.
func (rl *RaceLogger) LogForecastFallback(raceIndex int, err error) {
	rl.WithFields(logrus.Fields{
		"race_index": raceIndex,
		"error":      err.Error(),
	}).Warn("Parallel forecast failed, running rollouts inline")
}
