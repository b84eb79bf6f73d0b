package agents

import (
	"context"
	"fmt"

	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// defaultValueConfidence is used for the match result pick when the model
// names a best value side without a confidence
const defaultValueConfidence = 60

const oddsSystem = `You are a betting market analyst. Compare the bookmaker prices with your own fair odds and find mispriced selections.
Return JSON:
{
  "value_bets": [{"market": "match_result|over_under|btts", "selection": "", "odds": 2.1, "fair_odds": 1.8, "value": 12.5, "confidence": 0-100}],
  "best_value_side": "1|X|2",
  "best_value_edge": 0,
  "best_value_confidence": 0-100,
  "match_result": {"selection": "1|X|2", "confidence": 0-100, "rationale": ""},
  "over_under_recommendation": {"selection": "Over|Under", "confidence": 0-100, "rationale": ""},
  "btts": {"selection": "Yes|No", "confidence": 0-100, "rationale": ""},
  "summary": ""
}
value is the edge in percent: (odds / fair_odds - 1) * 100.`

type valueBetWire struct {
	Market     string  `json:"market" validate:"required"`
	Selection  string  `json:"selection" validate:"required"`
	Odds       float64 `json:"odds" validate:"gte=0"`
	FairOdds   float64 `json:"fair_odds" validate:"gte=0"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
}

type oddsWire struct {
	ValueBets           []valueBetWire `json:"value_bets" validate:"dive"`
	BestValueSide       string         `json:"best_value_side"`
	BestValueEdge       *float64       `json:"best_value_edge"`
	BestValueConfidence *float64       `json:"best_value_confidence" validate:"omitempty,gte=0,lte=100"`
	MatchResult         *wirePick      `json:"match_result"`
	OverUnder           *wirePick      `json:"over_under_recommendation"`
	BTTS                *wirePick      `json:"btts"`
	Summary             string         `json:"summary"`
}

// OddsAgent looks for value against the bookmaker prices
type OddsAgent struct {
	caller
	engine *markets.Engine
}

// NewOddsAgent creates the market value agent. The engine supplies the fair
// probabilities used when the model leaves out the best value edge.
func NewOddsAgent(client reasoning.Client, cfg Config, engine *markets.Engine) *OddsAgent {
	return &OddsAgent{caller: caller{kind: models.AgentOdds, client: client, cfg: cfg}, engine: engine}
}

// Run asks for value bets and the best value side
func (a *OddsAgent) Run(ctx context.Context, in *Input) (*models.AgentOpinion, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var w oddsWire
	if err := a.ask(ctx, in, oddsSystem, fmt.Sprintf("Find the value in:\n%s", describeMatch(in.Match)), &w); err != nil {
		return nil, err
	}

	signal := &models.ValueSignal{}
	for _, vb := range w.ValueBets {
		family, ok := models.ParseFamily(vb.Market)
		if !ok {
			continue
		}
		sel, err := models.NormalizeSelection(family, vb.Selection)
		if err != nil {
			continue
		}
		signal.ValueBets = append(signal.ValueBets, models.ValueBet{
			Market:     string(family),
			Selection:  sel,
			Odds:       vb.Odds,
			FairOdds:   vb.FairOdds,
			Value:      vb.Value,
			Confidence: models.ClampConfidence(vb.Confidence),
		})
	}

	if w.BestValueSide != "" {
		side, err := models.NormalizeSelection(models.FamilyMatchResult, w.BestValueSide)
		if err != nil {
			return nil, malformed(a.kind, err)
		}
		signal.BestValueSide = side
		if w.BestValueConfidence != nil {
			signal.BestValueConf = models.ClampConfidence(*w.BestValueConfidence)
		}
	}

	switch {
	case w.BestValueEdge != nil:
		signal.BestValueEdge = *w.BestValueEdge
	default:
		side, edge := a.localBestValue(in.Match)
		if signal.BestValueSide == "" {
			signal.BestValueSide = side
		}
		signal.BestValueEdge = edge
	}

	picks, err := familyPicks{MatchResult: w.MatchResult, OverUnder: w.OverUnder, BTTS: w.BTTS}.collect(a.kind)
	if err != nil {
		return nil, err
	}
	if _, ok := picks[models.FamilyMatchResult]; !ok && signal.BestValueSide != "" {
		conf := signal.BestValueConf
		if conf == 0 {
			conf = defaultValueConfidence
		}
		picks[models.FamilyMatchResult] = models.Pick{Selection: signal.BestValueSide, Confidence: conf}
	}
	if ou, ok := picks[models.FamilyOverUnder]; ok {
		signal.OverUnder = &ou
	}

	return &models.AgentOpinion{Kind: a.kind, Picks: picks, Summary: w.Summary, Value: signal}, nil
}

// localBestValue prices each 1X2 side against the engine's fair probability
// and returns the side with the largest edge in percent
func (a *OddsAgent) localBestValue(m *models.MatchContext) (models.Selection, float64) {
	if a.engine == nil || m.Odds.MatchWinner == nil {
		return "", 0
	}
	surface := a.engine.Analyze(m)

	var (
		best     models.Selection
		bestEdge float64
	)
	for _, side := range []struct {
		sel  models.Selection
		prob float64
	}{
		{models.SelectionHome, surface.MatchResult.Home},
		{models.SelectionDraw, surface.MatchResult.Draw},
		{models.SelectionAway, surface.MatchResult.Away},
	} {
		price := m.Odds.Price(models.FamilyMatchResult, side.sel)
		if price <= 1 || side.prob <= 0 {
			continue
		}
		edge := (price*side.prob - 1) * 100
		if best == "" || edge > bestEdge {
			best, bestEdge = side.sel, edge
		}
	}
	return best, bestEdge
}
