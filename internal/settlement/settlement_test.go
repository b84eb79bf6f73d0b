package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchday-consensus/internal/models"
)

func intPtr(v int) *int { return &v }

func testRecord() *models.AnalysisRecord {
	return &models.AnalysisRecord{
		FixtureID: 42,
		Agents: []models.AgentReport{
			{Kind: models.AgentStats, Opinion: &models.AgentOpinion{
				Kind: models.AgentStats,
				Picks: map[models.Family]models.Pick{
					models.FamilyMatchResult: {Selection: models.SelectionHome, Confidence: 60},
					models.FamilyOverUnder:   {Selection: models.SelectionUnder, Confidence: 55},
				},
			}},
			{Kind: models.AgentOdds, Error: "odds: timeout"},
			{Kind: models.AgentSentiment, Opinion: &models.AgentOpinion{
				Kind: models.AgentSentiment,
				Picks: map[models.Family]models.Pick{
					models.FamilyBTTS: {Selection: models.SelectionYes, Confidence: 70},
				},
			}},
		},
		Consensus: models.ConsensusResult{
			Markets: []models.MarketConsensus{
				{Market: models.FamilyMatchResult, Prediction: models.SelectionHome, Confidence: 72},
				{Market: models.FamilyOverUnder, Prediction: models.SelectionOver, Confidence: 51, Defaulted: true},
				{Market: models.FamilyBTTS, Prediction: models.SelectionYes, Confidence: 60},
			},
			BestBet: models.BestBet{Market: models.FamilyMatchResult, Selection: models.SelectionHome, Confidence: 72},
		},
		Arbitration: models.ArbitrationResult{
			PrimaryPick:  models.PricedPick{Market: models.FamilyMatchResult, Selection: models.SelectionHome},
			SurprisePick: &models.PricedPick{Market: models.FamilyMatchResult, Selection: models.SelectionAway},
			Hedge:        &models.Hedge{Market: models.FamilyDoubleChance, Selection: models.SelectionAwayOrDraw},
		},
		Markets: &models.MarketSurface{
			Predictions: []models.MarketPrediction{
				{Market: models.MarketMatchResult, Selection: "1"},
				{Market: "over_under_2_5", Selection: "Over 2.5"},
				{Market: "over_under_3_5", Selection: "Under 3.5"},
				{Market: models.MarketFirstHalfResult, Selection: "X"},
				{Market: models.MarketHTFT, Selection: "X/1"},
				{Market: models.MarketAsianHandicap, Selection: "home -1.5"},
				{Market: models.MarketEuropeanHandicap, Selection: "X (-1)"},
				{Market: models.MarketExactGoals, Selection: "3"},
				{Market: models.MarketFirstGoal, Selection: "home"},
				{Market: "away_over_0_5", Selection: "Over"},
			},
		},
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name  string
		score models.FinalScore
		want  models.Outcome
	}{
		{"home win", models.FinalScore{Home: 2, Away: 1}, models.Outcome{MatchResult: models.SelectionHome, Over25: true, BTTS: true, TotalGoals: 3}},
		{"goalless", models.FinalScore{}, models.Outcome{MatchResult: models.SelectionDraw, TotalGoals: 0}},
		{"away win to nil", models.FinalScore{Home: 0, Away: 2}, models.Outcome{MatchResult: models.SelectionAway, TotalGoals: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeOf(tt.score))
		})
	}
}

func TestEvaluateWithoutHalfTime(t *testing.T) {
	now := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	s := Evaluate(testRecord(), models.FinalScore{Home: 2, Away: 1}, now)

	assert.True(t, s.Flags["agents.stats.match_result"])
	assert.False(t, s.Flags["agents.stats.over_under_2_5"])
	assert.True(t, s.Flags["agents.sentiment.btts"])
	assert.NotContains(t, s.Flags, "agents.odds.match_result", "failed agents are not graded")

	assert.True(t, s.Flags["consensus.match_result"])
	assert.True(t, s.Flags["consensus.over_under_2_5"])
	assert.True(t, s.Flags["consensus.best_bet"])
	assert.True(t, s.Flags["arbitration.primary_pick"])
	assert.False(t, s.Flags["arbitration.surprise_pick"])
	assert.False(t, s.Flags["arbitration.hedge"])

	assert.True(t, s.Flags["markets.match_result"])
	assert.True(t, s.Flags["markets.over_under_2_5"])
	assert.True(t, s.Flags["markets.over_under_3_5"])
	assert.False(t, s.Flags["markets.asian_handicap"])
	assert.True(t, s.Flags["markets.european_handicap"])
	assert.True(t, s.Flags["markets.exact_goals"])
	assert.True(t, s.Flags["markets.away_over_0_5"])

	assert.NotContains(t, s.Flags, "markets.first_half_result")
	assert.NotContains(t, s.Flags, "markets.ht_ft")
	assert.NotContains(t, s.Flags, "markets.first_goal")

	correct := 0
	for _, ok := range s.Flags {
		if ok {
			correct++
		}
	}
	assert.Equal(t, len(s.Flags), s.Graded)
	assert.Equal(t, correct, s.Correct)
	assert.Equal(t, now, s.SettledAt)
	assert.Equal(t, 3, s.Outcome.TotalGoals)
}

func TestEvaluateWithHalfTime(t *testing.T) {
	score := models.FinalScore{Home: 2, Away: 1, HTHome: intPtr(0), HTAway: intPtr(0)}
	s := Evaluate(testRecord(), score, time.Now())

	assert.True(t, s.Flags["markets.first_half_result"])
	assert.True(t, s.Flags["markets.ht_ft"])
}

func TestEvaluateGoallessGradesFirstGoal(t *testing.T) {
	s := Evaluate(testRecord(), models.FinalScore{}, time.Now())

	require.Contains(t, s.Flags, "markets.first_goal")
	assert.False(t, s.Flags["markets.first_goal"])
	assert.False(t, s.Flags["markets.away_over_0_5"])
}

func TestFamilyCorrect(t *testing.T) {
	o := OutcomeOf(models.FinalScore{Home: 1, Away: 1})

	tests := []struct {
		family  models.Family
		sel     models.Selection
		correct bool
		ok      bool
	}{
		{models.FamilyMatchResult, models.SelectionDraw, true, true},
		{models.FamilyMatchResult, models.SelectionHome, false, true},
		{models.FamilyOverUnder, models.SelectionUnder, true, true},
		{models.FamilyBTTS, models.SelectionYes, true, true},
		{models.FamilyDoubleChance, models.SelectionHomeOrAway, false, true},
		{models.FamilyDoubleChance, models.SelectionAwayOrDraw, true, true},
		{models.FamilyBTTS, models.SelectionOver, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.family)+"/"+string(tt.sel), func(t *testing.T) {
			correct, ok := FamilyCorrect(o, tt.family, tt.sel)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.correct, correct)
		})
	}
}

func TestAsianHandicapGrading(t *testing.T) {
	tests := []struct {
		name       string
		selection  string
		home, away int
		want       bool
		graded     bool
	}{
		{"home covers", "home -1.5", 2, 0, true, true},
		{"home short", "home -1.5", 1, 0, false, true},
		{"away half goal start", "away +0.5", 1, 1, true, true},
		{"level ball home win", "home +0.0", 1, 0, true, true},
		{"level ball draw is void", "home +0.0", 1, 1, false, false},
		{"level ball draw away side is void", "away +0.0", 2, 2, false, false},
		{"whole line push is void", "away +1.0", 1, 0, false, false},
		{"whole line loss", "away +1.0", 2, 0, false, true},
		{"home minus one push is void", "home -1.0", 2, 1, false, false},
		{"unknown side", "draw +0.0", 1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := asianHandicap(tt.selection, tt.home, tt.away)
			assert.Equal(t, tt.graded, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComboGrading(t *testing.T) {
	record := &models.AnalysisRecord{
		FixtureID: 9,
		Markets: &models.MarketSurface{
			Predictions: []models.MarketPrediction{
				{Market: models.MarketHomeAndOver15, Selection: "Yes"},
				{Market: models.MarketAwayAndOver15, Selection: "Yes"},
				{Market: models.MarketDrawAndUnder25, Selection: "No"},
				{Market: models.MarketBTTSAndOver25, Selection: "Yes"},
			},
		},
	}

	s := Evaluate(record, models.FinalScore{Home: 2, Away: 1}, time.Now())

	assert.True(t, s.Flags["markets.home_and_over_1_5"])
	assert.False(t, s.Flags["markets.away_and_over_1_5"])
	assert.True(t, s.Flags["markets.draw_and_under_2_5"])
	assert.True(t, s.Flags["markets.btts_and_over_2_5"])
	assert.Equal(t, 4, s.Graded)
	assert.Equal(t, 3, s.Correct)

	s = Evaluate(record, models.FinalScore{Home: 1, Away: 1}, time.Now())
	assert.False(t, s.Flags["markets.home_and_over_1_5"])
	assert.False(t, s.Flags["markets.draw_and_under_2_5"])
	assert.False(t, s.Flags["markets.btts_and_over_2_5"])
}

func TestEvaluateVoidsAsianHandicapPush(t *testing.T) {
	record := &models.AnalysisRecord{
		FixtureID: 10,
		Markets: &models.MarketSurface{
			Predictions: []models.MarketPrediction{
				{Market: models.MarketAsianHandicap, Selection: "home +0.0"},
			},
		},
	}

	s := Evaluate(record, models.FinalScore{Home: 0, Away: 0}, time.Now())
	assert.NotContains(t, s.Flags, "markets.asian_handicap")
	assert.Equal(t, 0, s.Graded)
}
