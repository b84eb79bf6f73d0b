package arbitration

import (
	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/models"
)

// Surprise thresholds. A surprise pick must clear all three.
const (
	SurpriseMinOdds = 3.20
	SurpriseMinProb = 0.25
	SurpriseMinEdge = 0.05
)

// minorWeight weights agents outside the vote when grading contradictions
const minorWeight = 15

// Config holds the arbitration thresholds
type Config struct {
	Enabled                bool
	VoteWeights            map[models.AgentKind]float64
	TrapAgreementMax       float64
	ValueEdgeMin           float64
	ValueAgreementMax      float64
	LowAgreementMax        float64
	LowValueEdgeMax        float64
	FallbackConfidenceCap  float64
	ReasonedConfidenceCap  float64
	SurpriseMinOdds        float64
	SurpriseMinProb        float64
	SurpriseMinEdge        float64
	ContradictionThreshold float64
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		VoteWeights: map[models.AgentKind]float64{
			models.AgentStats:        30,
			models.AgentOdds:         25,
			models.AgentDeepAnalysis: 25,
			models.AgentStrategy:     20,
		},
		TrapAgreementMax:       0.65,
		ValueEdgeMin:           20,
		ValueAgreementMax:      0.70,
		LowAgreementMax:        0.45,
		LowValueEdgeMax:        10,
		FallbackConfidenceCap:  70,
		ReasonedConfidenceCap:  85,
		SurpriseMinOdds:        SurpriseMinOdds,
		SurpriseMinProb:        SurpriseMinProb,
		SurpriseMinEdge:        SurpriseMinEdge,
		ContradictionThreshold: 0.3,
	}
}

// FromConfig converts the arbitration section
func FromConfig(cfg config.ArbitrationConfig) Config {
	return Config{
		Enabled: cfg.Enabled,
		VoteWeights: map[models.AgentKind]float64{
			models.AgentStats:        cfg.Weights.Stats,
			models.AgentOdds:         cfg.Weights.Odds,
			models.AgentDeepAnalysis: cfg.Weights.DeepAnalysis,
			models.AgentStrategy:     cfg.Weights.Strategy,
		},
		TrapAgreementMax:       cfg.TrapAgreementMax,
		ValueEdgeMin:           cfg.ValueEdgeMin,
		ValueAgreementMax:      cfg.ValueAgreementMax,
		LowAgreementMax:        cfg.LowAgreementMax,
		LowValueEdgeMax:        cfg.LowValueEdgeMax,
		FallbackConfidenceCap:  cfg.FallbackConfidenceCap,
		ReasonedConfidenceCap:  cfg.ReasonedConfidenceCap,
		SurpriseMinOdds:        cfg.SurpriseMinOdds,
		SurpriseMinProb:        cfg.SurpriseMinProb,
		SurpriseMinEdge:        cfg.SurpriseMinEdge,
		ContradictionThreshold: cfg.ContradictionThreshold,
	}
}

// QualifiesAsSurprise reports whether a priced outcome clears the standard
// surprise thresholds
func QualifiesAsSurprise(odds, prob, edge float64) bool {
	return odds >= SurpriseMinOdds && prob >= SurpriseMinProb && edge >= SurpriseMinEdge
}

func (c Config) qualifiesAsSurprise(odds, prob, edge float64) bool {
	return odds >= c.SurpriseMinOdds && prob >= c.SurpriseMinProb && edge >= c.SurpriseMinEdge
}

func (c Config) contradictionWeight(kind models.AgentKind) float64 {
	if w := c.VoteWeights[kind]; w > 0 {
		return w
	}
	return minorWeight
}
