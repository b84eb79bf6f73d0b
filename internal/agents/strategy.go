package agents

import (
	"context"
	"fmt"

	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// phaseOneKinds is the order prior opinions are shown to the strategy agent
var phaseOneKinds = []models.AgentKind{
	models.AgentStats,
	models.AgentOdds,
	models.AgentSentiment,
	models.AgentDeepAnalysis,
	models.AgentContrarian,
}

const strategySystem = `You are a betting strategist. Combine the analysts' views into a staking plan.
Return JSON:
{
  "recommended_bets": [{"market": "match_result|over_under|btts|double_chance", "selection": "", "confidence": 0-100, "stake": 1-5, "expected_value": 0, "reasoning": ""}],
  "risk_level": "low|medium|high|critical",
  "avoid_bets": [{"market": "", "reason": ""}],
  ` + picksSchema + `,
  "summary": ""
}
Picks may be omitted; they are then derived from your recommended bets.`

type strategyBetWire struct {
	Market        string  `json:"market" validate:"required"`
	Selection     string  `json:"selection" validate:"required"`
	Confidence    float64 `json:"confidence" validate:"gte=0,lte=100"`
	Stake         int     `json:"stake" validate:"omitempty,gte=1,lte=5"`
	ExpectedValue float64 `json:"expected_value"`
	Reasoning     string  `json:"reasoning"`
}

type strategyWire struct {
	familyPicks
	RecommendedBets []strategyBetWire `json:"recommended_bets" validate:"dive"`
	RiskLevel       string            `json:"risk_level" validate:"omitempty,oneof=low medium high critical"`
	AvoidBets       []models.AvoidBet `json:"avoid_bets"`
	Summary         string            `json:"summary"`
}

// StrategyAgent turns the phase 1 opinions into a staking plan
type StrategyAgent struct {
	caller
}

// NewStrategyAgent creates the phase 2 strategy agent
func NewStrategyAgent(client reasoning.Client, cfg Config) *StrategyAgent {
	return &StrategyAgent{caller{kind: models.AgentStrategy, client: client, cfg: cfg}}
}

// Run asks for recommended bets given the prior opinions
func (a *StrategyAgent) Run(ctx context.Context, in *Input) (*models.AgentOpinion, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	user := fmt.Sprintf("Fixture:\n%s\n\nAnalyst views:\n%s", describeMatch(in.Match), describeOpinions(in.Prior, phaseOneKinds...))

	var w strategyWire
	if err := a.ask(ctx, in, strategySystem, user, &w); err != nil {
		return nil, err
	}

	picks, err := w.collect(a.kind)
	if err != nil {
		return nil, err
	}

	signal := &models.StrategySignal{RiskLevel: w.RiskLevel, AvoidBets: w.AvoidBets}
	if signal.RiskLevel == "" {
		signal.RiskLevel = RiskMedium
	}

	for _, b := range w.RecommendedBets {
		family, ok := models.ParseFamily(b.Market)
		if !ok {
			continue
		}
		sel, err := models.NormalizeSelection(family, b.Selection)
		if err != nil {
			continue
		}
		stake := b.Stake
		if stake == 0 {
			stake = 1
		}
		bet := models.StrategyBet{
			Market:        string(family),
			Selection:     sel,
			Confidence:    models.ClampConfidence(b.Confidence),
			Stake:         stake,
			ExpectedValue: b.ExpectedValue,
			Reasoning:     b.Reasoning,
		}
		signal.RecommendedBets = append(signal.RecommendedBets, bet)

		// derive picks from the most confident bet per voting family
		if family == models.FamilyDoubleChance {
			continue
		}
		if _, explicit := explicitPick(w.familyPicks, family); explicit {
			continue
		}
		if cur, ok := picks[family]; !ok || bet.Confidence > cur.Confidence {
			picks[family] = models.Pick{Selection: sel, Confidence: bet.Confidence, Rationale: b.Reasoning}
		}
	}

	return &models.AgentOpinion{Kind: a.kind, Picks: picks, Summary: w.Summary, Strategy: signal}, nil
}

func explicitPick(f familyPicks, family models.Family) (*wirePick, bool) {
	var p *wirePick
	switch family {
	case models.FamilyMatchResult:
		p = f.MatchResult
	case models.FamilyOverUnder:
		p = f.OverUnder
	case models.FamilyBTTS:
		p = f.BTTS
	}
	return p, p != nil
}
