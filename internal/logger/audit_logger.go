// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogStatsOverride logs an admin override of competitor attributes.
func (al *AuditLogger) LogStatsOverride(personName string, changed map[string]interface{}, source string) {
	al.WithFields(logrus.Fields{
		"person_name": personName,
		"changed":     changed,
		"source":      source,
	}).Info("Competitor stats overridden")
}

// LogHistoryCleared logs a bulk clear of race history.
func (al *AuditLogger) LogHistoryCleared(source string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"source":    source,
		"timestamp": timestamp.Unix(),
	}).Warn("Race history cleared")
}

// LogRaceRecordLost logs a finished race whose record was dropped.
func (al *AuditLogger) LogRaceRecordLost(raceIndex int, reason string) {
	al.WithFields(logrus.Fields{
		"race_index": raceIndex,
		"reason":     reason,
	}).Error("Race record lost")
}
