package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordAnalysis(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("failure"))

	RecordAnalysis(false, 3.2)

	assert.Equal(t, before+1, testutil.ToFloat64(AnalysesTotal.WithLabelValues("failure")))
}

func TestRecordAgentCall(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		ok     bool
		status string
	}{
		{name: "success", ok: true, status: "ok"},
		{name: "failure", ok: false, status: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(AgentCallsTotal.WithLabelValues("stats", tt.status))
			RecordAgentCall("stats", tt.ok, 0.8)
			assert.Equal(t, before+1, testutil.ToFloat64(AgentCallsTotal.WithLabelValues("stats", tt.status)))
		})
	}
}

func TestLabelledCounters(t *testing.T) {
	InitRegistry()

	RecordFallback("arbitration")
	RecordArbitration("fallback")
	RecordContradiction("high")
	RecordSettlement("conflict")
	RecordCircuitBreakerTrip()

	assert.GreaterOrEqual(t, testutil.ToFloat64(FallbacksTotal.WithLabelValues("arbitration")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(ArbitrationsTotal.WithLabelValues("fallback")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(ContradictionsTotal.WithLabelValues("high")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(SettlementsTotal.WithLabelValues("conflict")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(CircuitBreakerTripsTotal), 1.0)
}

func TestGauges(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		set   func()
		gauge prometheus.Gauge
		want  float64
	}{
		{"pending settlements", func() { UpdatePendingSettlements(7) }, PendingSettlements, 7},
		{"cache hit ratio", func() { UpdateCacheHitRatio(0.25) }, ReasoningCacheHitRatio, 0.25},
		{"stream subscribers", func() { UpdateStreamSubscribers(0) }, StreamSubscribers, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set()
			assert.Equal(t, tt.want, testutil.ToFloat64(tt.gauge))
		})
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	InitRegistry()
	RecordAnalysis(true, 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "matchday_analyses_total"))
}
