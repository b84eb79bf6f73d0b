package arbitration

import (
	"fmt"
	"math"

	"github.com/yourusername/matchday-consensus/internal/models"
)

// Override names recorded on the result
const (
	OverrideTrap          = "trap"
	OverrideValue         = "value"
	OverrideLowAgreement  = "low_agreement"
	defaultOddsVoteWeight = 60
)

// voteOrder is the order sources are tallied in the primary pick vote
var voteOrder = []models.AgentKind{
	models.AgentStats,
	models.AgentOdds,
	models.AgentDeepAnalysis,
	models.AgentStrategy,
}

// Input is everything arbitration weighs
type Input struct {
	Match     *models.MatchContext
	Opinions  map[models.AgentKind]*models.AgentOpinion
	Consensus *models.ConsensusResult
	Surface   *models.MarketSurface
	Language  string
}

func (in Input) odds() models.OddsBook {
	if in.Match == nil {
		return models.OddsBook{}
	}
	return in.Match.Odds
}

func (in Input) statsSignal() *models.StatsSignal {
	if op := in.Opinions[models.AgentStats]; op != nil {
		return op.Stats
	}
	return nil
}

// bestValue returns the odds agent's best 1X2 value side and its edge in percent
func (in Input) bestValue() (models.Selection, float64) {
	op := in.Opinions[models.AgentOdds]
	if op == nil || op.Value == nil {
		return "", 0
	}
	return op.Value.BestValueSide, op.Value.BestValueEdge
}

// vote tallies weight x confidence per 1X2 selection. The odds agent votes
// only with its best value side.
func (c Config) vote(opinions map[models.AgentKind]*models.AgentOpinion) (map[models.Selection]float64, float64) {
	mass := map[models.Selection]float64{}
	var total float64

	for _, kind := range voteOrder {
		w := c.VoteWeights[kind]
		op := opinions[kind]
		if w <= 0 || op == nil {
			continue
		}

		var (
			sel  models.Selection
			conf float64
		)
		if kind == models.AgentOdds {
			if op.Value == nil || op.Value.BestValueSide == "" {
				continue
			}
			sel, conf = op.Value.BestValueSide, op.Value.BestValueConf
			if conf == 0 {
				conf = defaultOddsVoteWeight
			}
		} else {
			p, ok := op.Pick(models.FamilyMatchResult)
			if !ok {
				continue
			}
			sel, conf = p.Selection, p.Confidence
		}

		m := w * models.ClampConfidence(conf)
		if m <= 0 {
			continue
		}
		mass[sel] += m
		total += m
	}
	return mass, total
}

func argmax(score func(models.Selection) float64) models.Selection {
	var (
		best      models.Selection
		bestScore float64
	)
	for _, sel := range models.FamilyMatchResult.Selections() {
		if s := score(sel); best == "" || s > bestScore {
			best, bestScore = sel, s
		}
	}
	return best
}

// Fallback produces an arbitration result without the reasoning provider.
// It is pure.
func Fallback(cfg Config, in Input) models.ArbitrationResult {
	book := in.odds()
	probs := ModelProbs(in.Surface, book, in.statsSignal())

	mass, total := cfg.vote(in.Opinions)

	var (
		pick      models.Selection
		ratio     float64
		overrides []string
		reasons   []string
	)
	if total > 0 {
		pick = argmax(func(s models.Selection) float64 { return mass[s] })
		ratio = mass[pick] / total
		reasons = append(reasons, fmt.Sprintf("weighted vote for %s with %.0f%% agreement", pick, ratio*100))

		fav := book.Favorite()
		if con := in.Opinions[models.AgentContrarian]; con != nil && con.Contrarian != nil &&
			len(con.Contrarian.TrapIndicators) >= 1 && fav != "" && pick == fav && ratio < cfg.TrapAgreementMax {
			pick = models.SelectionDraw
			if cp := con.Contrarian.ContrarianPick; cp != "" && cp != fav {
				pick = cp
			}
			overrides = append(overrides, OverrideTrap)
			reasons = append(reasons, fmt.Sprintf("favorite flagged as a trap, moved to %s", pick))
		}

		valueSide, valueEdge := in.bestValue()
		if valueSide != "" && valueEdge >= cfg.ValueEdgeMin && ratio < cfg.ValueAgreementMax {
			pick = valueSide
			overrides = append(overrides, OverrideValue)
			reasons = append(reasons, fmt.Sprintf("%.1f%% value on %s", valueEdge, valueSide))
		}

		if ratio < cfg.LowAgreementMax && valueEdge < cfg.LowValueEdgeMax {
			pick = models.SelectionDraw
			overrides = append(overrides, OverrideLowAgreement)
			reasons = append(reasons, "agents split without value, defaulting to the draw")
		}
	} else {
		pick = argmax(func(s models.Selection) float64 { return probs.Prob(models.FamilyMatchResult, s) })
		reasons = append(reasons, "no agent votes, using the model favorite")
	}

	primaryRaw := priced(probs, book, models.FamilyMatchResult, pick)
	primary := rounded(primaryRaw)
	primary.Confidence = int(math.Round(math.Min(50+ratio*20, cfg.FallbackConfidenceCap)))
	primary.Rationale = reasons

	return models.ArbitrationResult{
		Mode:            models.ArbitrationFallback,
		ModelProbs:      probs,
		RecommendedBets: RecommendedBets(probs, book),
		PrimaryPick:     primary,
		SurprisePick:    cfg.surprise(probs, book, primaryRaw),
		Hedge:           hedge(primary),
		Contradictions:  cfg.Contradictions(in.Opinions),
		AgreementRatio:  round(ratio, 4),
		Overrides:       overrides,
	}
}
