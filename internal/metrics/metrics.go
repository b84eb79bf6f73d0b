// Package metrics provides centralized Prometheus metrics registry for the analyzer.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchday"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of analysis runs by status",
	}, []string{"status"})
	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallbacks_total",
		Help:      "Total number of deterministic fallbacks by component",
	}, []string{"component"})
	ArbitrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "arbitrations_total",
		Help:      "Total number of arbitrations by mode",
	}, []string{"mode"})
	ContradictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contradictions_total",
		Help:      "Total number of agent contradictions by severity",
	}, []string{"severity"})
	SettlementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlements_total",
		Help:      "Total number of settlement attempts by result",
	}, []string{"result"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of reasoning circuit breaker trips",
	})
)

// Gauge metrics
var (
	PendingSettlements = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_settlements",
		Help:      "Number of stored analyses without a final score",
	})
	ReasoningCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reasoning_cache_hit_ratio",
		Help:      "Hit ratio of the reasoning response cache",
	})
	StreamSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Number of connected result stream subscribers",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of full analysis runs in seconds",
		Buckets:   []float64{1, 2, 5, 10, 15, 20, 30, 45, 60},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(FallbacksTotal)
		registry.MustRegister(ArbitrationsTotal)
		registry.MustRegister(ContradictionsTotal)
		registry.MustRegister(SettlementsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(PendingSettlements)
		registry.MustRegister(ReasoningCacheHitRatio)
		registry.MustRegister(StreamSubscribers)

		registry.MustRegister(AnalysisDuration)

		// Register agent metrics
		registry.MustRegister(AgentCallsTotal)
		registry.MustRegister(AgentCallDuration)
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

// RecordAnalysis records a completed analysis run.
func RecordAnalysis(success bool, durationSeconds float64) {
	status := "success"
	if !success {
		status = "failure"
	}
	AnalysesTotal.WithLabelValues(status).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordFallback records a component degrading to its fallback.
func RecordFallback(component string) {
	FallbacksTotal.WithLabelValues(component).Inc()
}

// RecordArbitration records an arbitration by mode.
func RecordArbitration(mode string) {
	ArbitrationsTotal.WithLabelValues(mode).Inc()
}

// RecordContradiction records a contradiction by severity.
func RecordContradiction(severity string) {
	ContradictionsTotal.WithLabelValues(severity).Inc()
}

// RecordSettlement records a settlement attempt. result is one of settled,
// duplicate, conflict, not_found or error.
func RecordSettlement(result string) {
	SettlementsTotal.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdatePendingSettlements updates the pending settlements gauge.
func UpdatePendingSettlements(count int) {
	PendingSettlements.Set(float64(count))
}

// UpdateCacheHitRatio updates the reasoning cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	ReasoningCacheHitRatio.Set(ratio)
}

// UpdateStreamSubscribers updates the stream subscribers gauge.
func UpdateStreamSubscribers(count int) {
	StreamSubscribers.Set(float64(count))
}
