package markets

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/yourusername/matchday-consensus/internal/models"
)

const (
	bestBetsLimit  = 5
	safeBetsLimit  = 3
	riskyBetsLimit = 3
	valueBetsLimit = 5
)

// Value returns the edge in percentage points of a probability over the
// bookmaker's implied probability. It is 0 without a usable price.
func Value(prob, odds float64) float64 {
	if odds <= 1 {
		return 0
	}
	return prob*100 - 100/odds
}

// RiskFor grades how far a probability is from a coin flip
func RiskFor(prob float64) models.RiskTier {
	d := math.Abs(prob*100 - 50)
	switch {
	case d >= 25:
		return models.RiskLow
	case d >= 10:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// RecommendationFor maps confidence (0..100) and value (percentage points)
// onto a betting tier.
func RecommendationFor(confidence, value float64) models.Recommendation {
	switch {
	case confidence >= 75 && value >= 10:
		return models.RecommendStrong
	case confidence >= 65 && value >= 5:
		return models.RecommendGood
	case value >= 15:
		return models.RecommendValue
	case confidence < 50 || value < -10:
		return models.RecommendAvoid
	default:
		return models.RecommendSkip
	}
}

// Predict builds a tiered prediction for one selection
func Predict(market, selection string, prob, odds float64, reasoning string) models.MarketPrediction {
	prob = models.ClampProbability(prob)
	conf := prob * 100
	value := Value(prob, odds)
	p := models.MarketPrediction{
		Market:         market,
		Selection:      selection,
		Probability:    round(prob, 4),
		Confidence:     round(conf, 1),
		Value:          round(value, 1),
		Risk:           RiskFor(prob),
		Recommendation: RecommendationFor(conf, value),
		Reasoning:      reasoning,
	}
	if odds > 1 {
		p.MarketOdds = odds
	}
	return p
}

type candidate struct {
	selection string
	prob      float64
	odds      float64
}

// pickMax returns the most probable candidate; earlier entries win ties
func pickMax(cands []candidate) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.prob > best.prob {
			best = c
		}
	}
	return best
}

func predictBest(market string, cands []candidate, reasoning string) models.MarketPrediction {
	c := pickMax(cands)
	return Predict(market, c.selection, c.prob, c.odds, reasoning)
}

func predictions(s *models.MarketSurface, odds *models.OddsBook) []models.MarketPrediction {
	if odds == nil {
		odds = &models.OddsBook{}
	}
	price := odds.Price
	xgNote := fmt.Sprintf("Expected goals %.2f (home %.2f, away %.2f)", s.ExpectedGoals.Total, s.ExpectedGoals.Home, s.ExpectedGoals.Away)

	out := []models.MarketPrediction{
		predictBest(models.MarketMatchResult, []candidate{
			{string(models.SelectionHome), s.MatchResult.Home, price(models.FamilyMatchResult, models.SelectionHome)},
			{string(models.SelectionDraw), s.MatchResult.Draw, price(models.FamilyMatchResult, models.SelectionDraw)},
			{string(models.SelectionAway), s.MatchResult.Away, price(models.FamilyMatchResult, models.SelectionAway)},
		}, xgNote),
		predictBest(models.MarketDoubleChance, []candidate{
			{string(models.SelectionHomeOrDraw), s.DoubleChance[string(models.SelectionHomeOrDraw)], price(models.FamilyDoubleChance, models.SelectionHomeOrDraw)},
			{string(models.SelectionAwayOrDraw), s.DoubleChance[string(models.SelectionAwayOrDraw)], price(models.FamilyDoubleChance, models.SelectionAwayOrDraw)},
			{string(models.SelectionHomeOrAway), s.DoubleChance[string(models.SelectionHomeOrAway)], price(models.FamilyDoubleChance, models.SelectionHomeOrAway)},
		}, xgNote),
		predictBest(models.MarketBTTS, []candidate{
			{string(models.SelectionYes), s.BTTS, price(models.FamilyBTTS, models.SelectionYes)},
			{string(models.SelectionNo), 1 - s.BTTS, price(models.FamilyBTTS, models.SelectionNo)},
		}, fmt.Sprintf("Both teams score in %.1f%% of simulated outcomes", s.BTTS*100)),
	}

	for _, l := range s.OverUnder {
		key := strconv.FormatFloat(l.Line, 'f', 1, 64)
		quoted := odds.OverUnder[key]
		out = append(out, predictBest(overUnderMarket(l.Line), []candidate{
			{fmt.Sprintf("%s %s", models.SelectionOver, key), l.Over, quoted.Over},
			{fmt.Sprintf("%s %s", models.SelectionUnder, key), l.Under, quoted.Under},
		}, xgNote))
	}

	var ht models.ThreeWay
	if odds.HalfTime != nil {
		ht = *odds.HalfTime
	}
	fh := s.FirstHalf
	out = append(out,
		predictBest(models.MarketFirstHalfResult, []candidate{
			{string(models.SelectionHome), fh.MatchResult.Home, ht.Home},
			{string(models.SelectionDraw), fh.MatchResult.Draw, ht.Draw},
			{string(models.SelectionAway), fh.MatchResult.Away, ht.Away},
		}, fmt.Sprintf("First half expected goals %.2f", fh.ExpectedGoals.Total)),
		predictBest(models.MarketFirstHalfBTTS, []candidate{
			{string(models.SelectionYes), fh.BTTS, 0},
			{string(models.SelectionNo), 1 - fh.BTTS, 0},
		}, fmt.Sprintf("First half expected goals %.2f", fh.ExpectedGoals.Total)),
	)

	htftKey, htftProb := topHTFT(s.HTFT)
	out = append(out, Predict(models.MarketHTFT, htftKey, htftProb, 0,
		fmt.Sprintf("Most likely half-time/full-time %s", htftKey)))

	ah := s.AsianHandicap
	ahPred := Predict(models.MarketAsianHandicap, fmt.Sprintf("%s %+.1f", ah.Side, ah.Line), ah.Confidence/100, 0,
		fmt.Sprintf("Expected goal difference %.2f", s.ExpectedGoals.Home-s.ExpectedGoals.Away))
	out = append(out, ahPred)

	out = append(out,
		predictBest(models.MarketEuropeanHandicap, []candidate{
			{"1 (-1)", s.EuropeanHandicap.Home, 0},
			{"X (-1)", s.EuropeanHandicap.Draw, 0},
			{"2 (+1)", s.EuropeanHandicap.Away, 0},
		}, "Home side giving one goal"),
		predictBest(models.MarketFirstGoal, []candidate{
			{"home", s.FirstGoal.Home, 0},
			{"away", s.FirstGoal.Away, 0},
			{"no_goal", s.FirstGoal.NoGoal, 0},
		}, xgNote),
		Predict("home_over_0_5", string(models.SelectionOver), s.TeamGoals.HomeOver05, 0, xgNote),
		Predict("away_over_0_5", string(models.SelectionOver), s.TeamGoals.AwayOver05, 0, xgNote),
	)

	c := s.Combos
	out = append(out,
		Predict(models.MarketHomeAndOver15, string(models.SelectionYes), c.HomeAndOver15, 0, "Home win with at least two goals"),
		Predict(models.MarketAwayAndOver15, string(models.SelectionYes), c.AwayAndOver15, 0, "Away win with at least two goals"),
		Predict(models.MarketDrawAndUnder25, string(models.SelectionYes), c.DrawAndUnder25, 0, "Draw with at most two goals"),
		Predict(models.MarketBTTSAndOver25, string(models.SelectionYes), c.BTTSAndOver25, 0, "Both teams score with three or more goals"),
	)

	exact := make([]candidate, 0, len(s.ExactGoals))
	for _, k := range []string{"0", "1", "2", "3", "4", "5+"} {
		exact = append(exact, candidate{k, s.ExactGoals[k], 0})
	}
	out = append(out, predictBest(models.MarketExactGoals, exact, xgNote))

	return out
}

func overUnderMarket(line float64) string {
	return fmt.Sprintf("over_under_%d_5", int(line))
}

// topHTFT returns the most likely combination; ties go to the first in
// 1/1, 1/X ... 2/2 order.
func topHTFT(dist map[string]float64) (string, float64) {
	best, bestP := "", -1.0
	for _, h := range []string{"1", "X", "2"} {
		for _, f := range []string{"1", "X", "2"} {
			k := h + "/" + f
			if p := dist[k]; p > bestP {
				best, bestP = k, p
			}
		}
	}
	return best, bestP
}

// aggregate derives the summary lists from the full prediction set
func aggregate(preds []models.MarketPrediction) (best, safe, risky, value []models.MarketPrediction) {
	byConfidence := make([]models.MarketPrediction, len(preds))
	copy(byConfidence, preds)
	sort.SliceStable(byConfidence, func(i, j int) bool {
		return byConfidence[i].Confidence > byConfidence[j].Confidence
	})

	for _, p := range byConfidence {
		if (p.Recommendation == models.RecommendStrong || p.Recommendation == models.RecommendGood) && len(best) < bestBetsLimit {
			best = append(best, p)
		}
		if p.Risk == models.RiskLow && p.Confidence >= 65 && len(safe) < safeBetsLimit {
			safe = append(safe, p)
		}
		if p.Risk == models.RiskHigh && p.Confidence >= 50 && len(risky) < riskyBetsLimit {
			risky = append(risky, p)
		}
	}

	for _, p := range preds {
		if p.Value > 0 {
			value = append(value, p)
		}
	}
	sort.SliceStable(value, func(i, j int) bool { return value[i].Value > value[j].Value })
	if len(value) > valueBetsLimit {
		value = value[:valueBetsLimit]
	}

	return best, safe, risky, value
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
