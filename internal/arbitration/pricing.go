package arbitration

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/matchday-consensus/internal/models"
)

// blendWeight is the share of the markets surface when stats strengths are blended in
const blendWeight = 0.7

// ModelProbs derives grouped probabilities from the markets surface, falling
// back to the implied prices when no surface is available. The 1X2 group is
// blended with the stats agent's strengths when present.
func ModelProbs(surface *models.MarketSurface, odds models.OddsBook, stats *models.StatsSignal) models.ModelProbs {
	var p models.ModelProbs

	switch {
	case surface != nil:
		p.HomeWin = surface.MatchResult.Home
		p.Draw = surface.MatchResult.Draw
		p.AwayWin = surface.MatchResult.Away
		if ou, ok := surface.OverUnderAt(2.5); ok {
			p.Over25, p.Under25 = ou.Over, ou.Under
		}
		p.BTTSYes, p.BTTSNo = surface.BTTS, 1-surface.BTTS
	default:
		p = implied(odds)
	}
	p = p.Normalize()

	if stats != nil {
		if total := stats.HomeStrength + stats.AwayStrength; total > 0 {
			open := 1 - p.Draw
			home := stats.HomeStrength / total * open
			away := stats.AwayStrength / total * open
			p.HomeWin = blendWeight*p.HomeWin + (1-blendWeight)*home
			p.AwayWin = blendWeight*p.AwayWin + (1-blendWeight)*away
			p = p.Normalize()
		}
	}
	return p
}

func implied(odds models.OddsBook) models.ModelProbs {
	inv := func(price float64) float64 {
		if price <= 1 {
			return 0
		}
		return 1 / price
	}

	var p models.ModelProbs
	if mw := odds.MatchWinner; mw != nil {
		p.HomeWin, p.Draw, p.AwayWin = inv(mw.Home), inv(mw.Draw), inv(mw.Away)
	}
	if ou, ok := odds.OverUnder["2.5"]; ok {
		p.Over25, p.Under25 = inv(ou.Over), inv(ou.Under)
	}
	if odds.BTTS != nil {
		p.BTTSYes, p.BTTSNo = inv(odds.BTTS.Yes), inv(odds.BTTS.No)
	}
	return p
}

// FairOdds returns 1/p, or 0 when p is not positive
func FairOdds(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return 1 / p
}

// Edge returns fair/market - 1, or 0 when either side is unknown
func Edge(fair, market float64) float64 {
	if fair <= 0 || market <= 0 {
		return 0
	}
	return fair/market - 1
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// priced prices one selection against the book. It returns raw values; the
// caller rounds them for output after any threshold checks.
func priced(probs models.ModelProbs, odds models.OddsBook, family models.Family, sel models.Selection) models.PricedPick {
	p := probs.Prob(family, sel)
	market := odds.Price(family, sel)
	fair := FairOdds(p)
	return models.PricedPick{
		Market:     family,
		Selection:  sel,
		ModelProb:  p,
		FairOdds:   fair,
		MarketOdds: market,
		Edge:       Edge(fair, market),
	}
}

func rounded(pp models.PricedPick) models.PricedPick {
	pp.ModelProb = round(pp.ModelProb, 4)
	pp.FairOdds = round(pp.FairOdds, 2)
	pp.Edge = round(pp.Edge, 4)
	return pp
}

func rationale(pp models.PricedPick) []string {
	return []string{
		fmt.Sprintf("model %.1f%% against a market price of %.2f", pp.ModelProb*100, pp.MarketOdds),
		fmt.Sprintf("fair odds %.2f, edge %+.1f%%", pp.FairOdds, pp.Edge*100),
	}
}

// RecommendedBets prices every core outcome with a market price, highest edge first
func RecommendedBets(probs models.ModelProbs, odds models.OddsBook) []models.PricedPick {
	var out []models.PricedPick
	for _, family := range models.VotingFamilies {
		for _, sel := range family.Selections() {
			pp := priced(probs, odds, family, sel)
			if pp.MarketOdds <= 1 || pp.ModelProb <= 0 {
				continue
			}
			pp.Rationale = rationale(pp)
			out = append(out, pp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Edge > out[j].Edge })

	for i := range out {
		out[i] = rounded(out[i])
	}
	return out
}

// surprise returns the highest-edge outcome other than the primary pick that
// clears every surprise threshold
func (c Config) surprise(probs models.ModelProbs, odds models.OddsBook, primary models.PricedPick) *models.PricedPick {
	var best *models.PricedPick
	for _, family := range models.VotingFamilies {
		for _, sel := range family.Selections() {
			if family == primary.Market && sel == primary.Selection {
				continue
			}
			pp := priced(probs, odds, family, sel)
			if pp.ModelProb < c.SurpriseMinProb {
				continue
			}
			if !c.qualifiesAsSurprise(pp.MarketOdds, pp.ModelProb, pp.Edge) {
				continue
			}
			if best == nil || pp.Edge > best.Edge {
				cp := pp
				best = &cp
			}
		}
	}
	if best == nil {
		return nil
	}
	best.Rationale = append(rationale(*best), "long price the model rates as live")
	out := rounded(*best)
	return &out
}

// hedge covers a directional match result pick with its double chance complement
func hedge(primary models.PricedPick) *models.Hedge {
	if primary.Market != models.FamilyMatchResult {
		return nil
	}
	sel, ok := primary.Selection.Complement()
	if !ok {
		return nil
	}
	return &models.Hedge{
		Market:    models.FamilyDoubleChance,
		Selection: sel,
		Rationale: fmt.Sprintf("%s covers the draw and the other side if %s fails", sel, primary.Selection),
	}
}
