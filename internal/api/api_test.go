package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/health"
	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/orchestrator"
	"github.com/yourusername/matchday-consensus/internal/repository"
	"github.com/yourusername/matchday-consensus/internal/service"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, match *models.MatchContext) *orchestrator.Result {
	return &orchestrator.Result{
		Success:    true,
		AnalysisID: uuid.New(),
		Results: orchestrator.Results{
			Consensus: models.ConsensusResult{
				Markets: []models.MarketConsensus{
					{Market: models.FamilyMatchResult, Prediction: models.SelectionHome, Confidence: 66},
				},
			},
		},
		Errors: []string{},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	repo := repository.NewMemoryAnalysisRepository()
	hs := health.NewServer(health.Config{ServiceName: "matchday"})
	hs.SetReady(true)

	return NewRouter(Deps{
		Analyses:    service.NewAnalysisService(stubAnalyzer{}, repo, nil, log),
		Settlements: service.NewSettlementService(repo, nil, log),
		Performance: service.NewPerformanceService(repo),
		Engine:      markets.NewEngine(markets.DefaultConfig()),
		Health:      hs,
		Server:      config.ServerConfig{Port: 8080, RequestTimeoutSecs: 5},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Logger:      log,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func match() models.MatchContext {
	return models.MatchContext{
		FixtureID: 1001,
		HomeTeam:  models.Team{ID: 1, Name: "Inter"},
		AwayTeam:  models.Team{ID: 2, Name: "Milan"},
		League:    "Serie A",
		Odds: models.OddsBook{
			MatchWinner: &models.ThreeWay{Home: 2.1, Draw: 3.3, Away: 3.6},
		},
	}
}

func TestAnalysisLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/analyses/1001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/analyses", match())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result orchestrator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)

	rec = do(t, r, http.MethodGet, "/api/v1/analyses/1001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record models.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, int64(1001), record.FixtureID)
	assert.Nil(t, record.Settlement)

	rec = do(t, r, http.MethodPost, "/api/v1/analyses/1001/settlement", map[string]int{"home": 2, "away": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var settled models.Settlement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settled))
	assert.True(t, settled.Flags["consensus.match_result"])

	rec = do(t, r, http.MethodPost, "/api/v1/analyses/1001/settlement", map[string]int{"home": 2, "away": 1})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/analyses/1001/settlement", map[string]int{"home": 0, "away": 0})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/analyses", match())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBadRequests(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing fixture id", http.MethodPost, "/api/v1/analyses", models.MatchContext{HomeTeam: models.Team{Name: "A"}, AwayTeam: models.Team{Name: "B"}}, http.StatusBadRequest},
		{"non numeric fixture", http.MethodGet, "/api/v1/analyses/abc", nil, http.StatusBadRequest},
		{"negative fixture", http.MethodGet, "/api/v1/analyses/-4", nil, http.StatusBadRequest},
		{"missing away goals", http.MethodPost, "/api/v1/analyses/1001/settlement", map[string]int{"home": 1}, http.StatusBadRequest},
		{"half time exceeds full time", http.MethodPost, "/api/v1/analyses/1001/settlement", map[string]int{"home": 1, "away": 0, "ht_home": 2, "ht_away": 0}, http.StatusBadRequest},
		{"settle unknown fixture", http.MethodPost, "/api/v1/analyses/999/settlement", map[string]int{"home": 1, "away": 0}, http.StatusNotFound},
		{"markets without teams", http.MethodPost, "/api/v1/markets", models.MatchContext{FixtureID: 5}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}

func TestMarketsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/markets", match())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var surface models.MarketSurface
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &surface))
	assert.NotEmpty(t, surface.OverUnder)
	assert.Greater(t, surface.BTTS, 0.0)
}

func TestOperationalEndpoints(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		rec := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestPerformanceEndpoint(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/v1/analyses", match()).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/v1/analyses/1001/settlement", map[string]int{"home": 1, "away": 0}).Code)

	rec := do(t, r, http.MethodGet, "/api/v1/performance?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Overview struct {
			Total   int `json:"total"`
			Settled int `json:"settled"`
		} `json:"overview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Overview.Total)
	assert.Equal(t, 1, report.Overview.Settled)

	for _, q := range []string{"0", "abc", "1000"} {
		rec = do(t, r, http.MethodGet, "/api/v1/performance?days="+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}
