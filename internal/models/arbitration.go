package models

// ArbitrationMode says which path produced an arbitration result
type ArbitrationMode string

const (
	ArbitrationReasoned ArbitrationMode = "reasoned"
	ArbitrationFallback ArbitrationMode = "fallback"
)

// Severity grades a contradiction between agents
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ModelProbs are model probabilities grouped into mutually exclusive outcomes
type ModelProbs struct {
	HomeWin float64 `json:"home_win" validate:"gte=0,lte=1"`
	Draw    float64 `json:"draw" validate:"gte=0,lte=1"`
	AwayWin float64 `json:"away_win" validate:"gte=0,lte=1"`
	Over25  float64 `json:"over_2_5" validate:"gte=0,lte=1"`
	Under25 float64 `json:"under_2_5" validate:"gte=0,lte=1"`
	BTTSYes float64 `json:"btts_yes" validate:"gte=0,lte=1"`
	BTTSNo  float64 `json:"btts_no" validate:"gte=0,lte=1"`
}

// Prob returns the model probability of a selection in a core family
func (p ModelProbs) Prob(family Family, sel Selection) float64 {
	switch family {
	case FamilyMatchResult:
		switch sel {
		case SelectionHome:
			return p.HomeWin
		case SelectionDraw:
			return p.Draw
		case SelectionAway:
			return p.AwayWin
		}
	case FamilyOverUnder:
		switch sel {
		case SelectionOver:
			return p.Over25
		case SelectionUnder:
			return p.Under25
		}
	case FamilyBTTS:
		switch sel {
		case SelectionYes:
			return p.BTTSYes
		case SelectionNo:
			return p.BTTSNo
		}
	case FamilyDoubleChance:
		switch sel {
		case SelectionHomeOrDraw:
			return p.HomeWin + p.Draw
		case SelectionAwayOrDraw:
			return p.AwayWin + p.Draw
		case SelectionHomeOrAway:
			return p.HomeWin + p.AwayWin
		}
	}
	return 0
}

// Normalize rescales each outcome group to sum to 1. Empty groups are left as is.
func (p ModelProbs) Normalize() ModelProbs {
	if s := p.HomeWin + p.Draw + p.AwayWin; s > 0 {
		p.HomeWin, p.Draw, p.AwayWin = p.HomeWin/s, p.Draw/s, p.AwayWin/s
	}
	if s := p.Over25 + p.Under25; s > 0 {
		p.Over25, p.Under25 = p.Over25/s, p.Under25/s
	}
	if s := p.BTTSYes + p.BTTSNo; s > 0 {
		p.BTTSYes, p.BTTSNo = p.BTTSYes/s, p.BTTSNo/s
	}
	return p
}

// PricedPick is a selection with its model price and market price
type PricedPick struct {
	Market     Family    `json:"market"`
	Selection  Selection `json:"selection"`
	Confidence int       `json:"confidence,omitempty"`
	ModelProb  float64   `json:"model_prob"`
	FairOdds   float64   `json:"fair_odds"`
	MarketOdds float64   `json:"market_odds"`
	Edge       float64   `json:"edge"`
	Rationale  []string  `json:"rationale,omitempty"`
}

// Hedge is the protective complement of a directional primary pick
type Hedge struct {
	Market    Family    `json:"market"`
	Selection Selection `json:"selection"`
	Rationale string    `json:"rationale"`
}

// Contradiction records a disagreement between agents in one family
type Contradiction struct {
	Market            Family      `json:"market"`
	Agents            []AgentKind `json:"agents"`
	Selections        []Selection `json:"selections"`
	DisagreementRatio float64     `json:"disagreement_ratio"`
	Severity          Severity    `json:"severity"`
	Reasoning         string      `json:"reasoning"`
}

// ArbitrationResult is the final reconciled recommendation
type ArbitrationResult struct {
	Mode            ArbitrationMode `json:"mode"`
	ModelProbs      ModelProbs      `json:"model_probs"`
	RecommendedBets []PricedPick    `json:"recommended_bets"`
	PrimaryPick     PricedPick      `json:"primary_pick"`
	SurprisePick    *PricedPick     `json:"surprise_pick"`
	Hedge           *Hedge          `json:"hedge"`
	Contradictions  []Contradiction `json:"contradictions_found"`
	AgreementRatio  float64         `json:"agreement_ratio"`
	Overrides       []string        `json:"overrides,omitempty"`
	Rationale       string          `json:"rationale,omitempty"`
}
