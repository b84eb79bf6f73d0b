// Package arbitration reconciles agent opinions into the final primary,
// surprise and hedge picks. The reasoned path asks the master strategist;
// Fallback is the pure offline path used whenever that fails.
package arbitration

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/agents"
	"github.com/yourusername/matchday-consensus/internal/fallback"
	"github.com/yourusername/matchday-consensus/internal/metrics"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// Decider makes the reasoned final call
type Decider interface {
	Decide(ctx context.Context, in agents.MasterInput) (string, *agents.Decision, error)
}

// Arbiter runs the reasoned path with the offline fallback as its default
type Arbiter struct {
	cfg     Config
	decider Decider
	timeout time.Duration
	logger  *logrus.Logger
}

// NewArbiter creates an arbiter. A nil decider always uses the fallback.
func NewArbiter(cfg Config, decider Decider, timeout time.Duration, logger *logrus.Logger) *Arbiter {
	return &Arbiter{cfg: cfg, decider: decider, timeout: timeout, logger: logger}
}

// Arbitrate never fails; any problem on the reasoned path degrades to Fallback
func (a *Arbiter) Arbitrate(ctx context.Context, in Input) models.ArbitrationResult {
	secondary := func() models.ArbitrationResult { return Fallback(a.cfg, in) }

	if !a.cfg.Enabled || a.decider == nil {
		res := secondary()
		metrics.RecordArbitration(string(res.Mode))
		return res
	}

	out := fallback.Do(ctx, "arbitration", a.reasoned(in), secondary)
	if out.Degraded {
		metrics.RecordFallback("arbitration")
		a.logger.WithFields(logrus.Fields{
			"fixture_id":   fixtureID(in),
			"error_reason": out.Err.Error(),
		}).Warn("Reasoned arbitration failed, using fallback")
	}
	metrics.RecordArbitration(string(out.Value.Mode))
	return out.Value
}

func fixtureID(in Input) int64 {
	if in.Match == nil {
		return 0
	}
	return in.Match.FixtureID
}

func (a *Arbiter) reasoned(in Input) func(context.Context) (models.ArbitrationResult, error) {
	return func(ctx context.Context) (models.ArbitrationResult, error) {
		if a.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}

		book := in.odds()
		probs := ModelProbs(in.Surface, book, in.statsSignal())

		thinking, d, err := a.decider.Decide(ctx, agents.MasterInput{
			Match:      in.Match,
			Opinions:   in.Opinions,
			Consensus:  in.Consensus,
			ModelProbs: probs,
			Language:   in.Language,
		})
		if err != nil {
			return models.ArbitrationResult{}, err
		}
		return a.fromDecision(in, probs, thinking, d)
	}
}

// fromDecision turns a validated decision into a result. Prices, fair odds
// and edges are recomputed locally; the model only chooses selections.
func (a *Arbiter) fromDecision(in Input, probs models.ModelProbs, thinking string, d *agents.Decision) (models.ArbitrationResult, error) {
	book := in.odds()

	if dp := d.ModelProbs; dp.HomeWin+dp.Draw+dp.AwayWin > 0 {
		probs = mergeProbs(probs, dp)
	}

	family, sel, err := decisionSelection(d.Final.PrimaryPick.Market, d.Final.PrimaryPick.Selection)
	if err != nil {
		return models.ArbitrationResult{}, err
	}
	primaryRaw := priced(probs, book, family, sel)
	primary := rounded(primaryRaw)

	conf := d.Final.PrimaryPick.Confidence
	if conf == 0 {
		conf = d.Confidence
	}
	primary.Confidence = int(math.Round(math.Min(models.ClampConfidence(conf), a.cfg.ReasonedConfidenceCap)))
	primary.Rationale = append(append([]string(nil), d.Final.PrimaryPick.Rationale...), rationale(primaryRaw)...)

	surprise := a.cfg.surprise(probs, book, primaryRaw)
	if sp := d.Final.SurprisePick; sp != nil {
		if f, s, err := decisionSelection(sp.Market, sp.Selection); err == nil && !(f == family && s == sel) {
			cand := priced(probs, book, f, s)
			if a.cfg.qualifiesAsSurprise(cand.MarketOdds, cand.ModelProb, cand.Edge) {
				cand.Rationale = append(append([]string(nil), sp.Rationale...), rationale(cand)...)
				out := rounded(cand)
				surprise = &out
			}
		}
	}

	// The model may only word the hedge; it must still be the complement of
	// the primary pick, so a draw or a non-1X2 primary stays unhedged.
	h := hedge(primary)
	if dh := d.Final.Hedge; dh != nil && h != nil {
		f, s, err := decisionSelection(dh.Market, dh.Selection)
		switch {
		case err != nil || f != h.Market || s != h.Selection:
			a.logger.WithFields(logrus.Fields{
				"hedge_market":    dh.Market,
				"hedge_selection": dh.Selection,
				"primary":         primary.Selection,
			}).Debug("Ignoring hedge that does not cover the primary pick")
		case dh.Rationale != "":
			h.Rationale = dh.Rationale
		}
	}

	contradictions := a.cfg.Contradictions(in.Opinions)
	for _, c := range d.Final.ContradictionsFound {
		market, _ := models.ParseFamily(c)
		contradictions = append(contradictions, models.Contradiction{
			Market:    market,
			Agents:    []models.AgentKind{models.AgentMasterStrategist},
			Severity:  models.SeverityMedium,
			Reasoning: c,
		})
	}

	mass, total := a.cfg.vote(in.Opinions)
	var ratio float64
	if total > 0 {
		ratio = mass[argmax(func(s models.Selection) float64 { return mass[s] })] / total
	}

	rat := thinking
	if d.MainTake != "" {
		rat = d.MainTake + "\n\n" + thinking
	}

	return models.ArbitrationResult{
		Mode:            models.ArbitrationReasoned,
		ModelProbs:      probs,
		RecommendedBets: RecommendedBets(probs, book),
		PrimaryPick:     primary,
		SurprisePick:    surprise,
		Hedge:           h,
		Contradictions:  contradictions,
		AgreementRatio:  round(ratio, 4),
		Rationale:       rat,
	}, nil
}

// mergeProbs takes each group from the decision when it is populated
func mergeProbs(base, d models.ModelProbs) models.ModelProbs {
	out := base
	out.HomeWin, out.Draw, out.AwayWin = d.HomeWin, d.Draw, d.AwayWin
	if d.Over25+d.Under25 > 0 {
		out.Over25, out.Under25 = d.Over25, d.Under25
	}
	if d.BTTSYes+d.BTTSNo > 0 {
		out.BTTSYes, out.BTTSNo = d.BTTSYes, d.BTTSNo
	}
	return out.Normalize()
}

func decisionSelection(market, selection string) (models.Family, models.Selection, error) {
	family, ok := models.ParseFamily(market)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown market %q", reasoning.ErrMalformedOutput, market)
	}
	sel, err := models.NormalizeSelection(family, selection)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", reasoning.ErrMalformedOutput, err)
	}
	return family, sel, nil
}
