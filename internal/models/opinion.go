package models

// Pick is an agent's choice in one market family. Rationale is display-only.
type Pick struct {
	Selection  Selection `json:"selection"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale,omitempty"`
}

// GoalExpectancy is a modeled goals split
type GoalExpectancy struct {
	Home  float64 `json:"home"`
	Away  float64 `json:"away"`
	Total float64 `json:"total"`
}

// StatsSignal carries the statistical agent's extras
type StatsSignal struct {
	HomeStrength   float64        `json:"home_strength"`
	AwayStrength   float64        `json:"away_strength"`
	GoalExpectancy GoalExpectancy `json:"goal_expectancy"`
	Patterns       []string       `json:"patterns,omitempty"`
}

// ValueBet is a price the odds agent considers mispriced
type ValueBet struct {
	Market     string    `json:"market"`
	Selection  Selection `json:"selection"`
	Odds       float64   `json:"odds"`
	FairOdds   float64   `json:"fair_odds"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}

// ValueSignal carries the market-value agent's extras. BestValueSide is the
// 1X2 side with the largest edge and is independent of OverUnder.
type ValueSignal struct {
	ValueBets     []ValueBet `json:"value_bets,omitempty"`
	BestValueSide Selection  `json:"best_value_side,omitempty"`
	BestValueEdge float64    `json:"best_value_edge"`
	BestValueConf float64    `json:"best_value_confidence,omitempty"`
	OverUnder     *Pick      `json:"over_under_recommendation,omitempty"`
}

// ContrarianSignal carries the contrarian agent's challenge to the favorite
type ContrarianSignal struct {
	TrapIndicators []string  `json:"trap_indicators"`
	LocalSignals   []string  `json:"local_signals,omitempty"`
	TrapScore      float64   `json:"trap_score"`
	RiskLevel      string    `json:"risk_level"`
	ContrarianPick Selection `json:"contrarian_pick,omitempty"`
	View           string    `json:"view,omitempty"`
}

// StrategyBet is one bet proposed by the strategy agent
type StrategyBet struct {
	Market        string    `json:"market"`
	Selection     Selection `json:"selection"`
	Confidence    float64   `json:"confidence"`
	Stake         int       `json:"stake"`
	ExpectedValue float64   `json:"expected_value"`
	Reasoning     string    `json:"reasoning,omitempty"`
}

// AvoidBet is a market the strategy agent advises against
type AvoidBet struct {
	Market string `json:"market"`
	Reason string `json:"reason"`
}

// StrategySignal carries the strategy agent's extras
type StrategySignal struct {
	RecommendedBets []StrategyBet `json:"recommended_bets,omitempty"`
	RiskLevel       string        `json:"risk_level"`
	AvoidBets       []AvoidBet    `json:"avoid_bets,omitempty"`
}

// SentimentSignal carries the narrative agent's extras
type SentimentSignal struct {
	HomeMorale    float64  `json:"home_morale"`
	AwayMorale    float64  `json:"away_morale"`
	KeyNarratives []string `json:"key_narratives,omitempty"`
}

// AgentOpinion is a validated agent output. Kind selects which extras may be set.
type AgentOpinion struct {
	Kind       AgentKind         `json:"kind"`
	Picks      map[Family]Pick   `json:"picks,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Stats      *StatsSignal      `json:"stats,omitempty"`
	Value      *ValueSignal      `json:"value,omitempty"`
	Contrarian *ContrarianSignal `json:"contrarian,omitempty"`
	Strategy   *StrategySignal   `json:"strategy,omitempty"`
	Sentiment  *SentimentSignal  `json:"sentiment,omitempty"`
}

// Pick returns the agent's pick for a family
func (o *AgentOpinion) Pick(family Family) (Pick, bool) {
	if o == nil || o.Picks == nil {
		return Pick{}, false
	}
	p, ok := o.Picks[family]
	if !ok || p.Selection == "" {
		return Pick{}, false
	}
	return p, true
}

// AgentReport records one agent invocation. A nil Opinion means the agent failed.
type AgentReport struct {
	Kind       AgentKind     `json:"kind"`
	Phase      int           `json:"phase"`
	Opinion    *AgentOpinion `json:"opinion"`
	Error      string        `json:"error,omitempty"`
	DurationMs int64         `json:"duration_ms"`
}

// OK reports whether the agent produced an opinion
func (r AgentReport) OK() bool {
	return r.Opinion != nil
}

// Opinions indexes successful reports by kind
func Opinions(reports []AgentReport) map[AgentKind]*AgentOpinion {
	out := make(map[AgentKind]*AgentOpinion, len(reports))
	for _, r := range reports {
		if r.OK() {
			out[r.Kind] = r.Opinion
		}
	}
	return out
}

// ClampConfidence bounds a confidence to [0,100], mapping NaN to 0
func ClampConfidence(c float64) float64 {
	if c != c || c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// ClampProbability bounds a probability to [0,1], mapping NaN to 0
func ClampProbability(p float64) float64 {
	if p != p || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
