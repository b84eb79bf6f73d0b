// Package settlement grades a stored analysis against the final score. It is
// pure; persistence and the single-write guarantee live in the service and
// repository layers.
package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/matchday-consensus/internal/models"
)

// agentFamilies are the families an agent pick can be graded in
var agentFamilies = []models.Family{
	models.FamilyMatchResult,
	models.FamilyOverUnder,
	models.FamilyBTTS,
	models.FamilyDoubleChance,
}

// OutcomeOf resolves the core families from a final score
func OutcomeOf(score models.FinalScore) models.Outcome {
	out := models.Outcome{
		TotalGoals: score.Home + score.Away,
		BTTS:       score.Home > 0 && score.Away > 0,
	}
	out.Over25 = out.TotalGoals > 2
	out.MatchResult = resultOf(score.Home, score.Away)
	return out
}

func resultOf(home, away int) models.Selection {
	switch {
	case home > away:
		return models.SelectionHome
	case home < away:
		return models.SelectionAway
	default:
		return models.SelectionDraw
	}
}

// Evaluate grades every prediction that was present when the record was
// created. Predictions that cannot be graded from the score, such as first
// half markets without a half-time score, get no flag.
func Evaluate(record *models.AnalysisRecord, score models.FinalScore, now time.Time) models.Settlement {
	g := grader{score: score, outcome: OutcomeOf(score), flags: map[string]bool{}}

	for _, report := range record.Agents {
		if !report.OK() {
			continue
		}
		for _, family := range agentFamilies {
			if pick, ok := report.Opinion.Pick(family); ok {
				g.family(fmt.Sprintf("agents.%s.%s", report.Kind, family), family, pick.Selection)
			}
		}
	}

	for _, mc := range record.Consensus.Markets {
		if mc.Prediction != "" {
			g.family("consensus."+string(mc.Market), mc.Market, mc.Prediction)
		}
	}
	if bb := record.Consensus.BestBet; bb.Selection != "" {
		g.family("consensus.best_bet", bb.Market, bb.Selection)
	}

	arb := record.Arbitration
	if arb.PrimaryPick.Selection != "" {
		g.family("arbitration.primary_pick", arb.PrimaryPick.Market, arb.PrimaryPick.Selection)
	}
	if arb.SurprisePick != nil {
		g.family("arbitration.surprise_pick", arb.SurprisePick.Market, arb.SurprisePick.Selection)
	}
	if arb.Hedge != nil {
		g.family("arbitration.hedge", arb.Hedge.Market, arb.Hedge.Selection)
	}

	if record.Markets != nil {
		for _, p := range record.Markets.Predictions {
			if correct, ok := g.market(p); ok {
				g.set("markets."+p.Market, correct)
			}
		}
	}

	return models.Settlement{
		Score:     score,
		Outcome:   g.outcome,
		Flags:     g.flags,
		Graded:    len(g.flags),
		Correct:   g.correct,
		SettledAt: now.UTC(),
	}
}

type grader struct {
	score   models.FinalScore
	outcome models.Outcome
	flags   map[string]bool
	correct int
}

func (g *grader) set(path string, correct bool) {
	g.flags[path] = correct
	if correct {
		g.correct++
	}
}

func (g *grader) family(path string, family models.Family, sel models.Selection) {
	if correct, ok := FamilyCorrect(g.outcome, family, sel); ok {
		g.set(path, correct)
	}
}

// FamilyCorrect grades a canonical selection. ok is false for an unknown
// family or selection.
func FamilyCorrect(o models.Outcome, family models.Family, sel models.Selection) (correct, ok bool) {
	switch family {
	case models.FamilyMatchResult:
		switch sel {
		case models.SelectionHome, models.SelectionDraw, models.SelectionAway:
			return sel == o.MatchResult, true
		}
	case models.FamilyOverUnder:
		switch sel {
		case models.SelectionOver:
			return o.Over25, true
		case models.SelectionUnder:
			return !o.Over25, true
		}
	case models.FamilyBTTS:
		switch sel {
		case models.SelectionYes:
			return o.BTTS, true
		case models.SelectionNo:
			return !o.BTTS, true
		}
	case models.FamilyDoubleChance:
		switch sel {
		case models.SelectionHomeOrDraw:
			return o.MatchResult != models.SelectionAway, true
		case models.SelectionAwayOrDraw:
			return o.MatchResult != models.SelectionHome, true
		case models.SelectionHomeOrAway:
			return o.MatchResult != models.SelectionDraw, true
		}
	}
	return false, false
}

// market grades a markets engine prediction
func (g *grader) market(p models.MarketPrediction) (correct, ok bool) {
	h, a := g.score.Home, g.score.Away
	total := h + a

	switch {
	case p.Market == models.MarketMatchResult:
		return FamilyCorrect(g.outcome, models.FamilyMatchResult, models.Selection(p.Selection))
	case p.Market == models.MarketDoubleChance:
		return FamilyCorrect(g.outcome, models.FamilyDoubleChance, models.Selection(p.Selection))
	case p.Market == models.MarketBTTS:
		return FamilyCorrect(g.outcome, models.FamilyBTTS, models.Selection(p.Selection))
	case strings.HasPrefix(p.Market, "over_under_"):
		return overUnder(p.Selection, total)
	case p.Market == "home_over_0_5":
		return h > 0, true
	case p.Market == "away_over_0_5":
		return a > 0, true
	case p.Market == models.MarketExactGoals:
		if p.Selection == "5+" {
			return total >= 5, true
		}
		return p.Selection == fmt.Sprint(total), true
	case p.Market == models.MarketEuropeanHandicap:
		return europeanHandicap(p.Selection, h, a)
	case p.Market == models.MarketAsianHandicap:
		return asianHandicap(p.Selection, h, a)
	case p.Market == models.MarketHomeAndOver15:
		return combo(p.Selection, h > a && total >= 2)
	case p.Market == models.MarketAwayAndOver15:
		return combo(p.Selection, a > h && total >= 2)
	case p.Market == models.MarketDrawAndUnder25:
		return combo(p.Selection, h == a && total <= 2)
	case p.Market == models.MarketBTTSAndOver25:
		return combo(p.Selection, h > 0 && a > 0 && total >= 3)
	case p.Market == models.MarketFirstGoal:
		// Goal order is unknown, so only a goalless game can be graded.
		if total == 0 {
			return p.Selection == "no_goal", true
		}
		if p.Selection == "no_goal" {
			return false, true
		}
		return false, false
	}

	if !g.score.HasHalfTime() {
		return false, false
	}
	hth, hta := *g.score.HTHome, *g.score.HTAway
	switch p.Market {
	case models.MarketFirstHalfResult:
		return p.Selection == string(resultOf(hth, hta)), true
	case models.MarketFirstHalfBTTS:
		both := hth > 0 && hta > 0
		return (p.Selection == string(models.SelectionYes)) == both, true
	case models.MarketHTFT:
		return p.Selection == string(resultOf(hth, hta))+"/"+string(g.outcome.MatchResult), true
	}
	return false, false
}

// overUnder grades selections such as "Over 2.5"
func overUnder(selection string, total int) (correct, ok bool) {
	var (
		side string
		line float64
	)
	if _, err := fmt.Sscanf(selection, "%s %f", &side, &line); err != nil {
		return false, false
	}
	switch models.Selection(side) {
	case models.SelectionOver:
		return float64(total) > line, true
	case models.SelectionUnder:
		return float64(total) < line, true
	}
	return false, false
}

// europeanHandicap grades the home -1 three-way market
func europeanHandicap(selection string, home, away int) (correct, ok bool) {
	diff := home - 1 - away
	switch selection {
	case "1 (-1)":
		return diff > 0, true
	case "X (-1)":
		return diff == 0, true
	case "2 (+1)":
		return diff < 0, true
	}
	return false, false
}

// combo grades a joint-outcome market quoted as yes or no
func combo(selection string, happened bool) (correct, ok bool) {
	switch models.Selection(selection) {
	case models.SelectionYes:
		return happened, true
	case models.SelectionNo:
		return !happened, true
	}
	return false, false
}

// asianHandicap grades selections such as "home -1.5". A push on a whole
// line (including the level ball) voids the bet, so it is not graded.
func asianHandicap(selection string, home, away int) (correct, ok bool) {
	var (
		side string
		line float64
	)
	if _, err := fmt.Sscanf(selection, "%s %f", &side, &line); err != nil {
		return false, false
	}

	var margin float64
	switch side {
	case "home":
		margin = float64(home-away) + line
	case "away":
		margin = float64(away-home) + line
	default:
		return false, false
	}
	if margin == 0 {
		return false, false
	}
	return margin > 0, true
}
