package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

const masterSystem = `You are the master strategist. You receive every analyst's opinion, the weighted consensus and the model probabilities, and you make the final call.
First think inside <thinking></thinking> tags. Then output a single JSON decision:
{
  "main_take": "",
  "model_probs": {"home_win": 0.0, "draw": 0.0, "away_win": 0.0, "under_2_5": 0.0, "over_2_5": 0.0, "btts_yes": 0.0, "btts_no": 0.0},
  "recommended_bets": [{"market": "match_result|over_under_2_5|btts|double_chance", "selection": "", "model_prob": 0.0, "fair_odds": 0.0, "market_odds": 0.0, "edge": 0.0, "rationale": []}],
  "risks": [],
  "confidence": 0-100,
  "final": {
    "primary_pick": {"market": "", "selection": "", "model_prob": 0.0, "fair_odds": 0.0, "market_odds": 0.0, "edge": 0.0, "confidence": 0-100, "rationale": []},
    "surprise_pick": null,
    "hedge": null,
    "contradictions_found": []
  }
}
surprise_pick uses the same shape as primary_pick. hedge is {"market": "", "selection": "", "rationale": ""}.`

// DecisionBet is a priced selection as the master strategist writes it
type DecisionBet struct {
	Market     string   `json:"market" validate:"required"`
	Selection  string   `json:"selection" validate:"required"`
	ModelProb  float64  `json:"model_prob" validate:"gte=0,lte=1"`
	FairOdds   float64  `json:"fair_odds" validate:"gte=0"`
	MarketOdds float64  `json:"market_odds" validate:"gte=0"`
	Edge       float64  `json:"edge"`
	Confidence float64  `json:"confidence" validate:"gte=0,lte=100"`
	Rationale  []string `json:"rationale"`
}

// DecisionHedge is the master strategist's hedge
type DecisionHedge struct {
	Market    string `json:"market" validate:"required"`
	Selection string `json:"selection" validate:"required"`
	Rationale string `json:"rationale"`
}

// DecisionFinal holds the final picks
type DecisionFinal struct {
	PrimaryPick         *DecisionBet   `json:"primary_pick" validate:"required"`
	SurprisePick        *DecisionBet   `json:"surprise_pick"`
	Hedge               *DecisionHedge `json:"hedge"`
	ContradictionsFound []string       `json:"contradictions_found"`
}

// Decision is the validated master strategist answer
type Decision struct {
	MainTake        string            `json:"main_take"`
	ModelProbs      models.ModelProbs `json:"model_probs"`
	RecommendedBets []DecisionBet     `json:"recommended_bets" validate:"dive"`
	Risks           []string          `json:"risks"`
	Confidence      float64           `json:"confidence" validate:"gte=0,lte=100"`
	Final           *DecisionFinal    `json:"final" validate:"required"`
}

// MasterInput is everything the master strategist weighs
type MasterInput struct {
	Match      *models.MatchContext
	Opinions   map[models.AgentKind]*models.AgentOpinion
	Consensus  *models.ConsensusResult
	ModelProbs models.ModelProbs
	Language   string
}

// MasterStrategist reconciles every opinion into one decision. It is only
// used by arbitration and does not implement Agent.
type MasterStrategist struct {
	caller
}

// NewMasterStrategist creates the master strategist
func NewMasterStrategist(client reasoning.Client, cfg Config) *MasterStrategist {
	return &MasterStrategist{caller{kind: models.AgentMasterStrategist, client: client, cfg: cfg}}
}

// Decide returns the thinking text and the validated decision
func (m *MasterStrategist) Decide(ctx context.Context, in MasterInput) (string, *Decision, error) {
	if in.Match == nil {
		return "", nil, models.ErrInvalidMatch
	}

	lang := in.Language
	if lang == "" {
		lang = m.cfg.Language
	}

	raw, err := m.client.Complete(ctx, reasoning.Request{
		Model:       m.cfg.ModelFor(m.kind),
		System:      masterSystem + languageInstruction(lang),
		User:        m.prompt(in),
		Temperature: m.cfg.Temperature,
		MaxTokens:   m.cfg.MaxTokens,
		Accept: func(raw string) error {
			_, _, err := m.parse(raw)
			return err
		},
	})
	if err != nil {
		return "", nil, err
	}
	return m.parse(raw)
}

// parse splits the thinking from the decision and validates the decision
func (m *MasterStrategist) parse(raw string) (string, *Decision, error) {
	thinking, body, err := reasoning.SplitDecision(raw)
	if err != nil {
		return "", nil, err
	}

	var d Decision
	if err := reasoning.DecodeLenient(body, &d); err != nil {
		return "", nil, err
	}
	if err := validate.Struct(&d); err != nil {
		return "", nil, malformed(m.kind, err)
	}
	return thinking, &d, nil
}

func (m *MasterStrategist) prompt(in MasterInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fixture:\n%s\n\n", describeMatch(in.Match))
	fmt.Fprintf(&sb, "Analyst views:\n%s\n", describeOpinions(in.Opinions, models.OpinionKinds...))

	if in.Consensus != nil {
		sb.WriteString("Weighted consensus:\n")
		for _, mc := range in.Consensus.Markets {
			fmt.Fprintf(&sb, "  %s: %s (%d%%)\n", mc.Market, mc.Prediction, mc.Confidence)
		}
		sb.WriteString("\n")
	}

	probs, _ := json.Marshal(in.ModelProbs)
	fmt.Fprintf(&sb, "Model probabilities: %s\n", probs)
	return sb.String()
}
