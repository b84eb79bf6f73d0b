package metrics

import "github.com/prometheus/client_golang/prometheus"

// Agent-specific counter vectors
var (
	AgentCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_calls_total",
		Help:      "Total number of agent calls by agent and status",
	}, []string{"agent", "status"})
)

// Agent-specific histogram vectors
var (
	AgentCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "agent_call_duration_seconds",
		Help:      "Duration of agent calls in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 12, 15},
	}, []string{"agent"})
)

// RecordAgentCall records one agent invocation.
func RecordAgentCall(agent string, ok bool, durationSeconds float64) {
	status := "ok"
	if !ok {
		status = "error"
	}
	AgentCallsTotal.WithLabelValues(agent, status).Inc()
	AgentCallDuration.WithLabelValues(agent).Observe(durationSeconds)
}
