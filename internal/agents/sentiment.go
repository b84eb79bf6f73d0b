package agents

import (
	"context"
	"fmt"

	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

const sentimentSystem = `You are a football psychology analyst. Assess morale, pressure and the narratives around both teams.
Return JSON:
{
  "home_morale": 0-100,
  "away_morale": 0-100,
  "key_narratives": [],
  ` + picksSchema + `,
  "summary": ""
}
Any pick you have no view on may be omitted.`

type sentimentWire struct {
	familyPicks
	HomeMorale    float64  `json:"home_morale" validate:"gte=0,lte=100"`
	AwayMorale    float64  `json:"away_morale" validate:"gte=0,lte=100"`
	KeyNarratives []string `json:"key_narratives"`
	Summary       string   `json:"summary"`
}

// SentimentAgent reads morale and narrative
type SentimentAgent struct {
	caller
}

// NewSentimentAgent creates the sentiment agent
func NewSentimentAgent(client reasoning.Client, cfg Config) *SentimentAgent {
	return &SentimentAgent{caller{kind: models.AgentSentiment, client: client, cfg: cfg}}
}

// Run asks for morale scores and optional picks
func (a *SentimentAgent) Run(ctx context.Context, in *Input) (*models.AgentOpinion, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var w sentimentWire
	if err := a.ask(ctx, in, sentimentSystem, fmt.Sprintf("Assess the mood around:\n%s", describeMatch(in.Match)), &w); err != nil {
		return nil, err
	}

	picks, err := w.collect(a.kind)
	if err != nil {
		return nil, err
	}

	return &models.AgentOpinion{
		Kind:    a.kind,
		Picks:   picks,
		Summary: w.Summary,
		Sentiment: &models.SentimentSignal{
			HomeMorale:    w.HomeMorale,
			AwayMorale:    w.AwayMorale,
			KeyNarratives: w.KeyNarratives,
		},
	}, nil
}
