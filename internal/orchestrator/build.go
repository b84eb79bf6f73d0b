package orchestrator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/agents"
	"github.com/yourusername/matchday-consensus/internal/arbitration"
	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/consensus"
	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// Build assembles an orchestrator and its markets engine from configuration
func Build(cfg *config.Config, client reasoning.Client, log *logrus.Logger) (*Orchestrator, *markets.Engine, error) {
	marketsCfg, err := markets.FromConfig(cfg.Markets)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid markets config: %w", err)
	}
	engine := markets.NewEngine(marketsCfg)

	agentCfg := agents.FromConfig(cfg)
	arbiter := arbitration.NewArbiter(
		arbitration.FromConfig(cfg.Arbitration),
		agents.NewMasterStrategist(client, agentCfg),
		cfg.Reasoning.Timeout(),
		log,
	)

	o := New(
		agents.NewPhaseOne(client, agentCfg, engine),
		[]agents.Agent{agents.NewStrategyAgent(client, agentCfg)},
		engine,
		consensus.FromConfig(cfg.Consensus),
		arbiter,
		Config{Timeout: cfg.Reasoning.Timeout(), Language: cfg.App.Language},
		log,
	)
	return o, engine, nil
}
