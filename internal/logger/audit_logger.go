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

// LogSettlement logs the recording of a final score.
func (al *AuditLogger) LogSettlement(fixtureID int64, score string, graded, correct int, settledAt time.Time) {
	al.WithFields(logrus.Fields{
		"fixture_id": fixtureID,
		"score":      score,
		"graded":     graded,
		"correct":    correct,
		"timestamp":  settledAt.Unix(),
	}).Info("Settlement recorded")
}

// LogSettlementConflict logs a rejected attempt to overwrite a settlement.
func (al *AuditLogger) LogSettlementConflict(fixtureID int64, storedScore, attemptedScore string) {
	al.WithFields(logrus.Fields{
		"fixture_id":      fixtureID,
		"stored_score":    storedScore,
		"attempted_score": attemptedScore,
	}).Warn("Settlement conflict rejected")
}

// LogCircuitBreakerEvent logs circuit breaker events.
func (al *AuditLogger) LogCircuitBreakerEvent(eventType, reason string, failures int) {
	al.WithFields(logrus.Fields{
		"event_type": eventType,
		"reason":     reason,
		"failures":   failures,
	}).Warn("Circuit breaker event recorded")
}
