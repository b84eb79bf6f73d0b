package agents

import (
	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// NewPhaseOne returns the independent agents in a fixed order
func NewPhaseOne(client reasoning.Client, cfg Config, engine *markets.Engine) []Agent {
	return []Agent{
		NewStatsAgent(client, cfg),
		NewOddsAgent(client, cfg, engine),
		NewSentimentAgent(client, cfg),
		NewDeepAnalysisAgent(client, cfg),
		NewContrarianAgent(client, cfg),
	}
}
