// Package performance summarises how settled analyses fared: hit rates per
// prediction path and agent, calibration by confidence band, and the flat
// stake return of the arbitrated picks.
package performance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/matchday-consensus/internal/models"
)

// Confidence band bounds on the consensus match result
const (
	HighConfidence   = 75
	MediumConfidence = 60
)

// Rate is a hit rate over graded predictions
type Rate struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Rate    float64 `json:"rate"`
}

func (r *Rate) add(correct bool) {
	r.Total++
	if correct {
		r.Correct++
	}
	r.Rate = float64(r.Correct) / float64(r.Total)
}

// Overview counts the analyses in the period
type Overview struct {
	Total      int       `json:"total"`
	Settled    int       `json:"settled"`
	Pending    int       `json:"pending"`
	PeriodDays int       `json:"period_days"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
}

// Staking is the result of a one unit stake on every priced pick
type Staking struct {
	Bets         int     `json:"bets"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	NetProfit    float64 `json:"net_profit"`
	ROI          float64 `json:"roi"`
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
}

// Report is the performance summary of a period
type Report struct {
	Overview        Overview        `json:"overview"`
	Overall         Rate            `json:"overall"`
	Accuracy        map[string]Rate `json:"accuracy"`
	Agents          map[string]Rate `json:"agents"`
	ConfidenceBands map[string]Rate `json:"confidence_bands"`
	PrimaryPick     Staking         `json:"primary_pick"`
	SurprisePick    Staking         `json:"surprise_pick"`
}

// Build summarises records, which should be ordered oldest first so the
// drawdown follows the order bets were placed.
func Build(records []*models.AnalysisRecord, periodDays int, now time.Time) Report {
	report := Report{
		Overview: Overview{
			Total:      len(records),
			PeriodDays: periodDays,
			From:       now.AddDate(0, 0, -periodDays).UTC(),
			To:         now.UTC(),
		},
		Accuracy:        map[string]Rate{},
		Agents:          map[string]Rate{},
		ConfidenceBands: map[string]Rate{},
	}

	var primary, surprise []decimal.Decimal

	for _, rec := range records {
		if !rec.IsSettled() {
			report.Overview.Pending++
			continue
		}
		report.Overview.Settled++
		flags := rec.Settlement.Flags

		for path, correct := range flags {
			report.Overall.add(correct)
			if kind, ok := agentOf(path); ok {
				addTo(report.Agents, kind, correct)
				continue
			}
			addTo(report.Accuracy, path, correct)
		}

		if mc, ok := rec.Consensus.Market(models.FamilyMatchResult); ok {
			if correct, graded := flags["consensus."+string(models.FamilyMatchResult)]; graded {
				addTo(report.ConfidenceBands, band(mc.Confidence), correct)
			}
		}

		arb := rec.Arbitration
		if correct, graded := flags["arbitration.primary_pick"]; graded {
			if pl, ok := profit(arb.PrimaryPick.MarketOdds, correct); ok {
				primary = append(primary, pl)
			}
		}
		if arb.SurprisePick != nil {
			if correct, graded := flags["arbitration.surprise_pick"]; graded {
				if pl, ok := profit(arb.SurprisePick.MarketOdds, correct); ok {
					surprise = append(surprise, pl)
				}
			}
		}
	}

	report.PrimaryPick = staking(primary)
	report.SurprisePick = staking(surprise)
	return report
}

func addTo(m map[string]Rate, key string, correct bool) {
	r := m[key]
	r.add(correct)
	m[key] = r
}

// agentOf extracts the agent kind from "agents.<kind>.<family>"
func agentOf(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "agents.")
	if !ok {
		return "", false
	}
	kind, _, ok := strings.Cut(rest, ".")
	return kind, ok
}

func band(confidence int) string {
	switch {
	case confidence >= HighConfidence:
		return "high"
	case confidence >= MediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

// profit returns the result of a one unit stake, or false when the pick
// carried no usable price
func profit(odds float64, won bool) (decimal.Decimal, bool) {
	if odds <= 1 {
		return decimal.Zero, false
	}
	if !won {
		return decimal.NewFromInt(-1), true
	}
	return decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1)), true
}

func staking(results []decimal.Decimal) Staking {
	s := Staking{Bets: len(results)}
	if len(results) == 0 {
		return s
	}

	var (
		net, grossProfit, grossLoss decimal.Decimal
		equity, peak, maxDD         decimal.Decimal
		largestWin, largestLoss     decimal.Decimal
	)
	for _, pl := range results {
		net = net.Add(pl)
		if pl.IsPositive() {
			s.Wins++
			grossProfit = grossProfit.Add(pl)
			if pl.GreaterThan(largestWin) {
				largestWin = pl
			}
		} else {
			s.Losses++
			grossLoss = grossLoss.Add(pl.Abs())
			if pl.LessThan(largestLoss) {
				largestLoss = pl
			}
		}

		equity = equity.Add(pl)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		if dd := peak.Sub(equity); dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}

	bets := decimal.NewFromInt(int64(s.Bets))
	s.WinRate = float64(s.Wins) / float64(s.Bets)
	s.NetProfit = net.Round(4).InexactFloat64()
	s.ROI = net.Div(bets).Round(4).InexactFloat64()
	s.MaxDrawdown = maxDD.Round(4).InexactFloat64()
	s.LargestWin = largestWin.Round(4).InexactFloat64()
	s.LargestLoss = largestLoss.Round(4).InexactFloat64()

	switch {
	case grossLoss.IsZero() && grossProfit.IsPositive():
		s.ProfitFactor = 999
	case grossLoss.IsZero():
		s.ProfitFactor = 0
	default:
		s.ProfitFactor = grossProfit.Div(grossLoss).Round(4).InexactFloat64()
	}
	return s
}
