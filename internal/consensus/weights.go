package consensus

import (
	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/models"
)

// Weights is an immutable per-family agent weight table. The zero value
// weights every agent at 0.
type Weights struct {
	tables map[models.Family]map[models.AgentKind]float64
}

// NewWeights copies tables into a Weights value
func NewWeights(tables map[models.Family]map[models.AgentKind]float64) Weights {
	w := Weights{tables: make(map[models.Family]map[models.AgentKind]float64, len(tables))}
	for family, table := range tables {
		cp := make(map[models.AgentKind]float64, len(table))
		for kind, weight := range table {
			if weight > 0 {
				cp[kind] = weight
			}
		}
		w.tables[family] = cp
	}
	return w
}

// DefaultWeights returns the standard 40/35/25 table for every voting family
func DefaultWeights() Weights {
	std := map[models.AgentKind]float64{
		models.AgentStats:    40,
		models.AgentOdds:     35,
		models.AgentStrategy: 25,
	}
	tables := make(map[models.Family]map[models.AgentKind]float64, len(models.VotingFamilies))
	for _, f := range models.VotingFamilies {
		tables[f] = std
	}
	return NewWeights(tables)
}

// FromConfig converts app config to a weight table
func FromConfig(cfg config.ConsensusConfig) Weights {
	table := func(w config.AgentWeights) map[models.AgentKind]float64 {
		return map[models.AgentKind]float64{
			models.AgentStats:    w.Stats,
			models.AgentOdds:     w.Odds,
			models.AgentStrategy: w.Strategy,
		}
	}
	return NewWeights(map[models.Family]map[models.AgentKind]float64{
		models.FamilyMatchResult: table(cfg.MatchResult),
		models.FamilyOverUnder:   table(cfg.OverUnder),
		models.FamilyBTTS:        table(cfg.BTTS),
	})
}

// For returns the weight of an agent in a family
func (w Weights) For(family models.Family, kind models.AgentKind) float64 {
	return w.tables[family][kind]
}
