// Package consensus aggregates agent opinions into one weighted
// recommendation per market family. Everything here is pure.
package consensus

import (
	"math"

	"github.com/yourusername/matchday-consensus/internal/models"
)

const (
	overUnderLine   = 2.5
	directionalEdge = 0.3
	neutralConf     = 50
)

// agentOrder fixes accumulation order so float sums are reproducible
var agentOrder = []models.AgentKind{
	models.AgentStats,
	models.AgentOdds,
	models.AgentSentiment,
	models.AgentDeepAnalysis,
	models.AgentContrarian,
	models.AgentStrategy,
	models.AgentMasterStrategist,
}

// Baseline is the model view used when no agent opined on a family
type Baseline struct {
	LambdaHome float64
	LambdaAway float64
	Total      float64
	BTTS       float64
}

// BaselineFromSurface reads the baseline from a markets surface. A nil
// surface yields the zero baseline.
func BaselineFromSurface(s *models.MarketSurface) Baseline {
	if s == nil {
		return Baseline{}
	}
	return Baseline{
		LambdaHome: s.ExpectedGoals.Home,
		LambdaAway: s.ExpectedGoals.Away,
		Total:      s.ExpectedGoals.Total,
		BTTS:       s.BTTS,
	}
}

// Calculate runs the weighted vote for every voting family and selects the
// cross-market best bet. It never returns an empty market list.
func Calculate(weights Weights, opinions map[models.AgentKind]*models.AgentOpinion, baseline Baseline) models.ConsensusResult {
	result := models.ConsensusResult{
		Markets:              make([]models.MarketConsensus, 0, len(models.VotingFamilies)),
		UnanimousDecisions:   []models.Family{},
		ConflictingDecisions: []models.Family{},
	}

	for _, family := range models.VotingFamilies {
		mc, distinct := vote(weights, family, opinions)
		if mc.TotalMass <= 0 {
			mc = neutralDefault(family, baseline, mc.Votes)
		}
		result.Markets = append(result.Markets, mc)

		if mc.Unanimous {
			result.UnanimousDecisions = append(result.UnanimousDecisions, family)
		}
		if distinct > 1 {
			result.ConflictingDecisions = append(result.ConflictingDecisions, family)
		}
	}

	result.BestBet = bestBet(result.Markets)
	return result
}

// vote accumulates weight x confidence per selection. It also returns the
// number of distinct selections voted for.
func vote(weights Weights, family models.Family, opinions map[models.AgentKind]*models.AgentOpinion) (models.MarketConsensus, int) {
	mass := make(map[models.Selection]float64)
	mc := models.MarketConsensus{Market: family}

	for _, kind := range agentOrder {
		w := weights.For(family, kind)
		if w <= 0 {
			continue
		}
		pick, ok := opinions[kind].Pick(family)
		if !ok {
			continue
		}
		mass[pick.Selection] += w * models.ClampConfidence(pick.Confidence)
		mc.Votes++
	}

	for _, sel := range family.Selections() {
		m := mass[sel]
		mc.TotalMass += m
		if m > mc.WinningMass {
			mc.WinningMass = m
			mc.Prediction = sel
		}
	}

	if mc.TotalMass > 0 {
		mc.Confidence = clampInt(int(math.Round(mc.WinningMass / mc.TotalMass * 100)))
	}
	mc.Unanimous = mc.Votes >= 2 && len(mass) == 1
	return mc, len(mass)
}

func neutralDefault(family models.Family, b Baseline, votes int) models.MarketConsensus {
	mc := models.MarketConsensus{Market: family, Confidence: neutralConf, Votes: votes, Defaulted: true}

	switch family {
	case models.FamilyOverUnder:
		mc.Prediction = models.SelectionUnder
		if b.Total >= overUnderLine {
			mc.Prediction = models.SelectionOver
		}
		mc.Confidence = clampInt(int(math.Round(neutralConf + math.Min(5, math.Abs(b.Total-overUnderLine)*10))))
	case models.FamilyMatchResult:
		diff := b.LambdaHome - b.LambdaAway
		switch {
		case diff > directionalEdge:
			mc.Prediction = models.SelectionHome
		case diff < -directionalEdge:
			mc.Prediction = models.SelectionAway
		default:
			mc.Prediction = models.SelectionDraw
		}
	case models.FamilyBTTS:
		mc.Prediction = models.SelectionNo
		if b.BTTS >= 0.5 {
			mc.Prediction = models.SelectionYes
		}
	}
	return mc
}

// bestBet maximizes confidence x total mass; ties go to the higher
// confidence and then to the earlier family.
func bestBet(markets []models.MarketConsensus) models.BestBet {
	var best models.BestBet
	bestScore := -1.0
	for _, m := range markets {
		score := float64(m.Confidence) * m.TotalMass
		if score > bestScore || (score == bestScore && m.Confidence > best.Confidence) {
			best = models.BestBet{Market: m.Market, Selection: m.Prediction, Confidence: m.Confidence, Score: score}
			bestScore = score
		}
	}
	return best
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
