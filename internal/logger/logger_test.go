package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", "json", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Info("hello")
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "hello", logEntry["msg"])
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLoggerWithOutput("loud", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNopLogger().Error("dropped")
	})
}

func TestRaceLoggerRaceFinished(t *testing.T) {
	log, buf := setupTestLogger()
	raceLogger := NewRaceLogger(log)

	raceLogger.LogRaceFinished(7, "C", 10.4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "race", logEntry["component"])
	assert.Equal(t, float64(7), logEntry["race_index"])
	assert.Equal(t, "C", logEntry["winner"])
}

func TestRaceLoggerWarmupSkip(t *testing.T) {
	log, buf := setupTestLogger()
	raceLogger := NewRaceLogger(log)

	raceLogger.LogWarmupSkip(1, 3)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(3), logEntry["warmup_races"])
	assert.Equal(t, "info", logEntry["level"])
}

func TestRaceLoggerModelUpdate(t *testing.T) {
	log, buf := setupTestLogger()
	raceLogger := NewRaceLogger(log)

	raceLogger.LogModelUpdate("A", 10.2, 0.4, 0.8)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "A", logEntry["competitor"])
	assert.Equal(t, 10.2, logEntry["mu"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestRaceLoggerHistoryFailures(t *testing.T) {
	log, buf := setupTestLogger()
	raceLogger := NewRaceLogger(log)

	raceLogger.LogHistoryReadFailure("load_last_n", errors.New("timeout"))
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "timeout", logEntry["error"])

	buf.Reset()
	raceLogger.LogHistoryWriteFailure(4, errors.New("refused"))
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, float64(4), logEntry["race_index"])
}

func TestRaceLoggerForecastFallback(t *testing.T) {
	log, buf := setupTestLogger()
	raceLogger := NewRaceLogger(log)

	raceLogger.LogForecastFallback(7, errors.New("context canceled"))
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, float64(7), logEntry["race_index"])
	assert.Equal(t, "race", logEntry["component"])
}

func TestAuditLoggerStatsOverride(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogStatsOverride("A", map[string]interface{}{"max_speed": 11.5}, "api")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "A", logEntry["person_name"])
}

func TestAuditLoggerHistoryCleared(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogHistoryCleared("cli", time.Unix(1700000000, 0))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1700000000), logEntry["timestamp"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestAuditLoggerRaceRecordLost(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogRaceRecordLost(9, "connection refused")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "connection refused", logEntry["reason"])
}

func BenchmarkRaceLoggerTick(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	raceLogger := NewRaceLogger(log)

	for i := 0; i < b.N; i++ {
		raceLogger.LogTick("sync", true, 3.2)
	}
}
