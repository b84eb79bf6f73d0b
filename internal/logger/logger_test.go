package logger

import (
	"bytes"
	"encoding/json"
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

func TestNewLoggerLevelAndFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger(buf, "debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Info("hello")
	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := newLogger(&bytes.Buffer{}, "verbose", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	_, isText := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestAnalysisLoggerAgentCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogAgentCompleted(1001, "stats", 1, 840)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "analysis", logEntry["component"])
	assert.Equal(t, "stats", logEntry["agent"])
	assert.Equal(t, float64(1001), logEntry["fixture_id"])
}

func TestAnalysisLoggerAgentFailed(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogAgentFailed(1001, "odds", 1, "upstream status 503")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "upstream status 503", logEntry["error_reason"])
}

func TestAnalysisLoggerFallback(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogFallback(1001, "arbitration", "circuit open")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "arbitration", logEntry["fallback"])
}

func TestAnalysisLoggerArbitration(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogArbitration(1001, "fallback", "match_result", "X", 0.55, 2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "X", logEntry["selection"])
	assert.Equal(t, float64(2), logEntry["contradictions"])
}

func TestAnalysisLoggerCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogAnalysisCompleted(1001, "a1b2", true, 5, 6, 9120)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, true, logEntry["success"])
	assert.Equal(t, float64(6), logEntry["agents_total"])
}

func TestAuditLoggerSettlement(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogSettlement(1001, "2-1", 12, 8, time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "2-1", logEntry["score"])
	assert.Equal(t, float64(1706961600), logEntry["timestamp"])
}

func TestAuditLoggerSettlementConflict(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogSettlementConflict(1001, "2-1", "1-1")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "1-1", logEntry["attempted_score"])
}

func TestAuditLoggerCircuitBreakerEvent(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogCircuitBreakerEvent("OPENED", "consecutive_failures", 5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "OPENED", logEntry["event_type"])
}

func BenchmarkAnalysisLoggerAgentCompleted(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	analysisLogger := NewAnalysisLogger(log)

	for i := 0; i < b.N; i++ {
		analysisLogger.LogAgentCompleted(1001, "stats", 1, 840)
	}
}
