package models

// RiskTier grades how far a probability sits from a coin flip
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Recommendation is the betting advice tier for a market prediction
type Recommendation string

const (
	RecommendStrong Recommendation = "strong_bet"
	RecommendGood   Recommendation = "good_bet"
	RecommendValue  Recommendation = "value_bet"
	RecommendAvoid  Recommendation = "avoid"
	RecommendSkip   Recommendation = "skip"
)

// Engine market names
const (
	MarketMatchResult      = "match_result"
	MarketDoubleChance     = "double_chance"
	MarketBTTS             = "btts"
	MarketFirstHalfResult  = "first_half_result"
	MarketFirstHalfBTTS    = "first_half_btts"
	MarketHTFT             = "ht_ft"
	MarketAsianHandicap    = "asian_handicap"
	MarketEuropeanHandicap = "european_handicap"
	MarketFirstGoal        = "first_goal"
	MarketExactGoals       = "exact_goals"
	MarketHomeAndOver15    = "home_and_over_1_5"
	MarketAwayAndOver15    = "away_and_over_1_5"
	MarketDrawAndUnder25   = "draw_and_under_2_5"
	MarketBTTSAndOver25    = "btts_and_over_2_5"
)

// MarketPrediction is one engine output with its tiers
type MarketPrediction struct {
	Market         string         `json:"market"`
	Selection      string         `json:"selection"`
	Probability    float64        `json:"probability"`
	Confidence     float64        `json:"confidence"`
	MarketOdds     float64        `json:"market_odds,omitempty"`
	Value          float64        `json:"value"`
	Risk           RiskTier       `json:"risk"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning,omitempty"`
}

// OverUnderLine is the probability pair for one total-goals line
type OverUnderLine struct {
	Line  float64 `json:"line"`
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

// ThreeWayProbs is a 1X2 distribution
type ThreeWayProbs struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// FirstHalfMarkets are the half-time sub-markets
type FirstHalfMarkets struct {
	ExpectedGoals GoalExpectancy  `json:"expected_goals"`
	OverUnder     []OverUnderLine `json:"over_under"`
	MatchResult   ThreeWayProbs   `json:"match_result"`
	BTTS          float64         `json:"btts"`
}

// AsianHandicap is the chosen line and side
type AsianHandicap struct {
	Line       float64 `json:"line"`
	Side       string  `json:"side"`
	Confidence float64 `json:"confidence"`
}

// TeamGoals are per-team total-goals probabilities
type TeamGoals struct {
	HomeOver05 float64 `json:"home_over_0_5"`
	HomeOver15 float64 `json:"home_over_1_5"`
	AwayOver05 float64 `json:"away_over_0_5"`
	AwayOver15 float64 `json:"away_over_1_5"`
}

// FirstGoal splits the chance of the opening goal
type FirstGoal struct {
	Home   float64 `json:"home"`
	Away   float64 `json:"away"`
	NoGoal float64 `json:"no_goal"`
}

// Combos are joint-outcome probabilities
type Combos struct {
	HomeAndOver15  float64 `json:"home_and_over_1_5"`
	AwayAndOver15  float64 `json:"away_and_over_1_5"`
	DrawAndUnder25 float64 `json:"draw_and_under_2_5"`
	BTTSAndOver25  float64 `json:"btts_and_over_2_5"`
}

// MarketSurface is the full engine output for a fixture
type MarketSurface struct {
	ExpectedGoals    GoalExpectancy     `json:"expected_goals"`
	OverUnder        []OverUnderLine    `json:"over_under"`
	BTTS             float64            `json:"btts"`
	MatchResult      ThreeWayProbs      `json:"match_result"`
	DoubleChance     map[string]float64 `json:"double_chance"`
	FirstHalf        FirstHalfMarkets   `json:"first_half"`
	HTFT             map[string]float64 `json:"ht_ft"`
	AsianHandicap    AsianHandicap      `json:"asian_handicap"`
	EuropeanHandicap ThreeWayProbs      `json:"european_handicap"`
	TeamGoals        TeamGoals          `json:"team_goals"`
	FirstGoal        FirstGoal          `json:"first_goal"`
	Combos           Combos             `json:"combos"`
	ExactGoals       map[string]float64 `json:"exact_goals"`
	Predictions      []MarketPrediction `json:"predictions"`
	BestBets         []MarketPrediction `json:"best_bets"`
	SafeBets         []MarketPrediction `json:"safe_bets"`
	RiskyBets        []MarketPrediction `json:"risky_bets"`
	ValueBets        []MarketPrediction `json:"value_bets"`
}

// OverUnderAt returns the pair for a line
func (s *MarketSurface) OverUnderAt(line float64) (OverUnderLine, bool) {
	if s == nil {
		return OverUnderLine{}, false
	}
	for _, l := range s.OverUnder {
		if l.Line == line {
			return l, true
		}
	}
	return OverUnderLine{}, false
}
