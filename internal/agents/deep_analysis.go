package agents

import (
	"context"
	"fmt"

	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

const deepAnalysisSystem = `You are a senior football analyst. Work through tactics, motivation, form trends and the price before deciding.
Return JSON:
{
  ` + picksSchema + `,
  "summary": ""
}`

type deepAnalysisWire struct {
	MatchResult *wirePick `json:"match_result" validate:"required"`
	OverUnder   *wirePick `json:"over_under" validate:"required"`
	BTTS        *wirePick `json:"btts" validate:"required"`
	Summary     string    `json:"summary"`
}

// DeepAnalysisAgent gives a considered pick in every voting family
type DeepAnalysisAgent struct {
	caller
}

// NewDeepAnalysisAgent creates the deep analysis agent
func NewDeepAnalysisAgent(client reasoning.Client, cfg Config) *DeepAnalysisAgent {
	return &DeepAnalysisAgent{caller{kind: models.AgentDeepAnalysis, client: client, cfg: cfg}}
}

// Run asks for picks in all three families
func (a *DeepAnalysisAgent) Run(ctx context.Context, in *Input) (*models.AgentOpinion, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var w deepAnalysisWire
	if err := a.ask(ctx, in, deepAnalysisSystem, fmt.Sprintf("Give your full analysis of:\n%s", describeMatch(in.Match)), &w); err != nil {
		return nil, err
	}

	picks, err := familyPicks{MatchResult: w.MatchResult, OverUnder: w.OverUnder, BTTS: w.BTTS}.collect(a.kind)
	if err != nil {
		return nil, err
	}

	return &models.AgentOpinion{Kind: a.kind, Picks: picks, Summary: w.Summary}, nil
}
