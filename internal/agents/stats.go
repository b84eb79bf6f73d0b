package agents

import (
	"context"
	"fmt"

	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

const statsSystem = `You are a football statistics analyst. Judge the fixture from form, scoring and conceding rates and head-to-head record.
Return JSON:
{
  "home_strength": 0-100,
  "away_strength": 0-100,
  "goal_expectancy": {"home": 1.5, "away": 1.1, "total": 2.6},
  ` + picksSchema + `,
  "patterns": [],
  "summary": ""
}`

type statsWire struct {
	HomeStrength   float64 `json:"home_strength" validate:"gte=0,lte=100"`
	AwayStrength   float64 `json:"away_strength" validate:"gte=0,lte=100"`
	GoalExpectancy struct {
		Home  float64 `json:"home" validate:"gte=0"`
		Away  float64 `json:"away" validate:"gte=0"`
		Total float64 `json:"total" validate:"gte=0"`
	} `json:"goal_expectancy"`
	MatchResult *wirePick `json:"match_result" validate:"required"`
	OverUnder   *wirePick `json:"over_under" validate:"required"`
	BTTS        *wirePick `json:"btts" validate:"required"`
	Patterns    []string  `json:"patterns"`
	Summary     string    `json:"summary"`
}

// StatsAgent reads form and head-to-head numbers
type StatsAgent struct {
	caller
}

// NewStatsAgent creates the statistical agent
func NewStatsAgent(client reasoning.Client, cfg Config) *StatsAgent {
	return &StatsAgent{caller{kind: models.AgentStats, client: client, cfg: cfg}}
}

// Run asks for strengths, goal expectancy and the three family picks
func (a *StatsAgent) Run(ctx context.Context, in *Input) (*models.AgentOpinion, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var w statsWire
	if err := a.ask(ctx, in, statsSystem, fmt.Sprintf("Analyze this fixture:\n%s", describeMatch(in.Match)), &w); err != nil {
		return nil, err
	}

	picks, err := familyPicks{MatchResult: w.MatchResult, OverUnder: w.OverUnder, BTTS: w.BTTS}.collect(a.kind)
	if err != nil {
		return nil, err
	}

	xg := models.GoalExpectancy{Home: w.GoalExpectancy.Home, Away: w.GoalExpectancy.Away, Total: w.GoalExpectancy.Total}
	if xg.Total == 0 {
		xg.Total = xg.Home + xg.Away
	}

	return &models.AgentOpinion{
		Kind:    a.kind,
		Picks:   picks,
		Summary: w.Summary,
		Stats: &models.StatsSignal{
			HomeStrength:   w.HomeStrength,
			AwayStrength:   w.AwayStrength,
			GoalExpectancy: xg,
			Patterns:       w.Patterns,
		},
	}, nil
}
