package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func f64(v float64) *float64 { return &v }

func TestNormalizeSelection(t *testing.T) {
	tests := []struct {
		family  Family
		raw     string
		want    Selection
		wantErr bool
	}{
		{FamilyMatchResult, "Home Win", SelectionHome, false},
		{FamilyMatchResult, " x ", SelectionDraw, false},
		{FamilyMatchResult, "MS2", SelectionAway, false},
		{FamilyOverUnder, "Over 2.5", SelectionOver, false},
		{FamilyOverUnder, "u2.5", SelectionUnder, false},
		{FamilyBTTS, "BTTS yes", SelectionYes, false},
		{FamilyBTTS, "false", SelectionNo, false},
		{FamilyDoubleChance, "2X", SelectionAwayOrDraw, false},
		{FamilyMatchResult, "maybe", "", true},
		{Family("corners"), "over", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.family)+"/"+tt.raw, func(t *testing.T) {
			got, err := NormalizeSelection(tt.family, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectionComplement(t *testing.T) {
	c, ok := SelectionHome.Complement()
	assert.True(t, ok)
	assert.Equal(t, SelectionAwayOrDraw, c)

	c, ok = SelectionAway.Complement()
	assert.True(t, ok)
	assert.Equal(t, SelectionHomeOrDraw, c)

	_, ok = SelectionDraw.Complement()
	assert.False(t, ok)
}

func TestFinalScoreValidate(t *testing.T) {
	tests := []struct {
		name    string
		score   FinalScore
		wantErr bool
	}{
		{"full time only", FinalScore{Home: 2, Away: 1}, false},
		{"with half time", FinalScore{Home: 2, Away: 1, HTHome: intPtr(1), HTAway: intPtr(0)}, false},
		{"negative goals", FinalScore{Home: -1, Away: 0}, true},
		{"half time exceeds full time", FinalScore{Home: 1, Away: 1, HTHome: intPtr(2), HTAway: intPtr(0)}, true},
		{"partial half time", FinalScore{Home: 1, Away: 0, HTHome: intPtr(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.score.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScore)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFinalScoreEqual(t *testing.T) {
	a := FinalScore{Home: 2, Away: 1, HTHome: intPtr(1), HTAway: intPtr(1)}
	b := FinalScore{Home: 2, Away: 1, HTHome: intPtr(1), HTAway: intPtr(1)}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(FinalScore{Home: 2, Away: 1}))
	assert.False(t, a.Equal(FinalScore{Home: 2, Away: 1, HTHome: intPtr(0), HTAway: intPtr(1)}))
	assert.True(t, FinalScore{Home: 0, Away: 0}.Equal(FinalScore{}))
}

func TestTeamFormRates(t *testing.T) {
	var nilForm *TeamForm
	_, ok := nilForm.ScoringRate()
	assert.False(t, ok)
	assert.Equal(t, 0, nilForm.Wins())
	assert.Equal(t, "", nilForm.FormString())

	form := &TeamForm{Matches: []FormMatch{
		{GoalsFor: 3, GoalsAgainst: 1},
		{GoalsFor: 0, GoalsAgainst: 0},
		{GoalsFor: 1, GoalsAgainst: 2},
		{GoalsFor: 2, GoalsAgainst: 0},
	}}

	rate, ok := form.ScoringRate()
	assert.True(t, ok)
	assert.Equal(t, 1.5, rate)
	conceded, _ := form.ConcedingRate()
	assert.Equal(t, 0.75, conceded)
	assert.Equal(t, "WDLW", form.FormString())
	assert.Equal(t, 2, form.Wins())
	assert.Equal(t, 1, form.Draws())
	assert.Equal(t, 1, form.Losses())
	assert.Equal(t, 50.0, form.Over25Pct())
	assert.Equal(t, 50.0, form.BTTSPct())

	form.AvgScored = f64(1.9)
	form.VenueAvgScored = f64(2.3)
	form.BTTSPercent = f64(70)
	rate, _ = form.ScoringRate()
	assert.Equal(t, 2.3, rate)
	assert.Equal(t, 70.0, form.BTTSPct())
}

func TestOddsBookPriceAndFavorite(t *testing.T) {
	book := OddsBook{
		MatchWinner: &ThreeWay{Home: 3.1, Draw: 3.3, Away: 2.2},
		OverUnder:   map[string]TwoWay{"2.5": {Over: 1.9, Under: 1.95}},
		BTTS:        &YesNo{Yes: 1.8},
	}

	assert.Equal(t, 2.2, book.Price(FamilyMatchResult, SelectionAway))
	assert.Equal(t, 1.95, book.Price(FamilyOverUnder, SelectionUnder))
	assert.Equal(t, 1.8, book.Price(FamilyBTTS, SelectionYes))
	assert.Equal(t, 0.0, book.Price(FamilyBTTS, SelectionNo))
	assert.Equal(t, 0.0, book.Price(FamilyDoubleChance, SelectionHomeOrDraw))
	assert.Equal(t, SelectionAway, book.Favorite())

	empty := OddsBook{}
	assert.Equal(t, Selection(""), empty.Favorite())
	assert.Equal(t, 0.0, empty.Price(FamilyMatchResult, SelectionHome))
}

func TestModelProbsNormalize(t *testing.T) {
	p := ModelProbs{HomeWin: 0.5, Draw: 0.3, AwayWin: 0.2, Over25: 0.6, Under25: 0.6}.Normalize()

	assert.InDelta(t, 1, p.HomeWin+p.Draw+p.AwayWin, 1e-12)
	assert.InDelta(t, 0.5, p.Over25, 1e-12)
	assert.Equal(t, 0.0, p.BTTSYes)
	assert.InDelta(t, 0.7, p.Prob(FamilyDoubleChance, SelectionHomeOrAway), 1e-12)
}

func TestClamp(t *testing.T) {
	nan := f64(0)
	*nan = *nan / *nan

	assert.Equal(t, 0.0, ClampConfidence(*nan))
	assert.Equal(t, 100.0, ClampConfidence(140))
	assert.Equal(t, 0.0, ClampConfidence(-3))
	assert.Equal(t, 1.0, ClampProbability(1.2))
	assert.Equal(t, 0.0, ClampProbability(*nan))
}

func TestOpinionsIndexesSuccessfulReports(t *testing.T) {
	stats := &AgentOpinion{Kind: AgentStats}
	reports := []AgentReport{
		{Kind: AgentStats, Opinion: stats},
		{Kind: AgentOdds, Error: "timeout"},
	}

	got := Opinions(reports)
	assert.Len(t, got, 1)
	assert.Same(t, stats, got[AgentStats])

	var nilOpinion *AgentOpinion
	_, ok := nilOpinion.Pick(FamilyBTTS)
	assert.False(t, ok)
}

func TestSettlementAccuracy(t *testing.T) {
	var s *Settlement
	assert.Equal(t, 0.0, s.Accuracy())
	assert.Equal(t, 0.75, (&Settlement{Graded: 4, Correct: 3}).Accuracy())
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		market string
		want   Family
		ok     bool
	}{
		{"match_result", FamilyMatchResult, true},
		{"1X2", FamilyMatchResult, true},
		{"over_under_2_5", FamilyOverUnder, true},
		{"Total Goals", FamilyOverUnder, true},
		{"BTTS", FamilyBTTS, true},
		{"both teams to score", FamilyBTTS, true},
		{"double_chance", FamilyDoubleChance, true},
		{"corners", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseFamily(tt.market)
		assert.Equal(t, tt.ok, ok, tt.market)
		assert.Equal(t, tt.want, got, tt.market)
	}
}

func TestFinalScoreString(t *testing.T) {
	assert.Equal(t, "2-1", FinalScore{Home: 2, Away: 1}.String())
	assert.Equal(t, "2-1 (HT 0-1)", FinalScore{Home: 2, Away: 1, HTHome: intPtr(0), HTAway: intPtr(1)}.String())
}

func TestConsensusResultMarket(t *testing.T) {
	result := ConsensusResult{Markets: []MarketConsensus{
		{Market: FamilyBTTS, Prediction: SelectionYes, Confidence: 61},
	}}

	m, ok := result.Market(FamilyBTTS)
	assert.True(t, ok)
	assert.Equal(t, SelectionYes, m.Prediction)

	_, ok = result.Market(FamilyOverUnder)
	assert.False(t, ok)

	var missing *ConsensusResult
	_, ok = missing.Market(FamilyBTTS)
	assert.False(t, ok)
}
