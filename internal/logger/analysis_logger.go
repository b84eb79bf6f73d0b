package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for analysis runs.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogAgentCompleted logs a successful agent call.
func (al *AnalysisLogger) LogAgentCompleted(fixtureID int64, agent string, phase int, durationMs int64) {
	al.WithFields(logrus.Fields{
		"fixture_id":  fixtureID,
		"agent":       agent,
		"phase":       phase,
		"duration_ms": durationMs,
	}).Debug("Agent completed")
}

// LogAgentFailed logs an agent call that produced no opinion.
func (al *AnalysisLogger) LogAgentFailed(fixtureID int64, agent string, phase int, reason string) {
	al.WithFields(logrus.Fields{
		"fixture_id":   fixtureID,
		"agent":        agent,
		"phase":        phase,
		"error_reason": reason,
	}).Warn("Agent failed")
}

// LogFallback logs a component degrading to its deterministic path.
func (al *AnalysisLogger) LogFallback(fixtureID int64, component, reason string) {
	al.WithFields(logrus.Fields{
		"fixture_id":   fixtureID,
		"fallback":     component,
		"error_reason": reason,
	}).Warn("Falling back to deterministic path")
}

// LogArbitration logs the arbitration outcome.
func (al *AnalysisLogger) LogArbitration(fixtureID int64, mode, market, selection string, agreement float64, contradictions int) {
	al.WithFields(logrus.Fields{
		"fixture_id":      fixtureID,
		"mode":            mode,
		"market":          market,
		"selection":       selection,
		"agreement_ratio": agreement,
		"contradictions":  contradictions,
	}).Info("Arbitration completed")
}

// LogAnalysisCompleted logs the end of an analysis run.
func (al *AnalysisLogger) LogAnalysisCompleted(fixtureID int64, analysisID string, success bool, agentsOK, agentsTotal int, totalMs int64) {
	al.WithFields(logrus.Fields{
		"fixture_id":   fixtureID,
		"analysis_id":  analysisID,
		"success":      success,
		"agents_ok":    agentsOK,
		"agents_total": agentsTotal,
		"total_ms":     totalMs,
	}).Info("Analysis completed")
}
