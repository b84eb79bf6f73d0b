// Package markets derives a full probabilistic market surface from goal
// expectancy using independent Poisson models.
package markets

import (
	"math"
	"strconv"

	"github.com/yourusername/matchday-consensus/internal/models"
)

const (
	defaultScored   = 1.4
	defaultConceded = 1.2
	defenseNorm     = 1.5
)

// OverUnderLines are the full-time total-goals lines the engine prices
var OverUnderLines = []float64{0.5, 1.5, 2.5, 3.5, 4.5}

var firstHalfLines = []float64{0.5, 1.5, 2.5}

// Engine computes market surfaces. It is pure and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given constants
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ExpectedGoals models each side's goal expectancy from its scoring rate and
// the opponent's conceding rate.
func (e *Engine) ExpectedGoals(m *models.MatchContext) models.GoalExpectancy {
	homeScored := rateOr(m.HomeForm.ScoringRate, defaultScored)
	homeConceded := rateOr(m.HomeForm.ConcedingRate, defaultConceded)
	awayScored := rateOr(m.AwayForm.ScoringRate, defaultScored)
	awayConceded := rateOr(m.AwayForm.ConcedingRate, defaultConceded)

	homeDefense := awayConceded / defenseNorm
	awayDefense := homeConceded / defenseNorm

	home := clamp(homeScored*(homeDefense+1)/2, e.cfg.HomeLambdaMin, e.cfg.HomeLambdaMax)
	away := clamp(awayScored*(awayDefense+1)/2, e.cfg.AwayLambdaMin, e.cfg.AwayLambdaMax)

	return models.GoalExpectancy{Home: home, Away: away, Total: home + away}
}

// Analyze computes the full market surface for a fixture
func (e *Engine) Analyze(m *models.MatchContext) *models.MarketSurface {
	return e.Surface(e.ExpectedGoals(m), &m.Odds)
}

// Surface computes every market from a goal expectancy. odds may be nil.
func (e *Engine) Surface(xg models.GoalExpectancy, odds *models.OddsBook) *models.MarketSurface {
	grid := newScoreGrid(xg.Home, xg.Away)
	result := matchResult(&grid)

	s := &models.MarketSurface{
		ExpectedGoals: xg,
		OverUnder:     overUnder(xg.Total, OverUnderLines),
		BTTS:          btts(xg.Home, xg.Away),
		MatchResult:   result,
		DoubleChance: map[string]float64{
			string(models.SelectionHomeOrDraw): result.Home + result.Draw,
			string(models.SelectionAwayOrDraw): result.Away + result.Draw,
			string(models.SelectionHomeOrAway): result.Home + result.Away,
		},
		FirstHalf:        e.firstHalf(xg),
		AsianHandicap:    e.asianHandicap(xg, result),
		EuropeanHandicap: europeanHandicap(&grid),
		TeamGoals: models.TeamGoals{
			HomeOver05: 1 - poissonCDF(xg.Home, 0),
			HomeOver15: 1 - poissonCDF(xg.Home, 1),
			AwayOver05: 1 - poissonCDF(xg.Away, 0),
			AwayOver15: 1 - poissonCDF(xg.Away, 1),
		},
		FirstGoal:  firstGoal(xg),
		Combos:     combos(&grid),
		ExactGoals: exactGoals(xg.Total),
	}
	s.HTFT = e.htft(s.FirstHalf.MatchResult, result)

	s.Predictions = predictions(s, odds)
	s.BestBets, s.SafeBets, s.RiskyBets, s.ValueBets = aggregate(s.Predictions)
	return s
}

func overUnder(total float64, lines []float64) []models.OverUnderLine {
	out := make([]models.OverUnderLine, 0, len(lines))
	for _, line := range lines {
		over := OverProbability(total, line)
		out = append(out, models.OverUnderLine{Line: line, Over: over, Under: 1 - over})
	}
	return out
}

func btts(home, away float64) float64 {
	return (1 - math.Exp(-home)) * (1 - math.Exp(-away))
}

func matchResult(g *scoreGrid) models.ThreeWayProbs {
	return models.ThreeWayProbs{
		Home: g.sum(func(h, a int) bool { return h > a }),
		Draw: g.sum(func(h, a int) bool { return h == a }),
		Away: g.sum(func(h, a int) bool { return h < a }),
	}
}

func (e *Engine) firstHalf(xg models.GoalExpectancy) models.FirstHalfMarkets {
	home := xg.Home * e.cfg.FirstHalfFactor
	away := xg.Away * e.cfg.FirstHalfFactor
	grid := newScoreGrid(home, away)
	return models.FirstHalfMarkets{
		ExpectedGoals: models.GoalExpectancy{Home: home, Away: away, Total: home + away},
		OverUnder:     overUnder(home+away, firstHalfLines),
		MatchResult:   matchResult(&grid),
		BTTS:          btts(home, away),
	}
}

func (e *Engine) htft(ht, ft models.ThreeWayProbs) map[string]float64 {
	sides := []struct {
		key  string
		ht   float64
		full float64
	}{
		{"1", ht.Home, ft.Home},
		{"X", ht.Draw, ft.Draw},
		{"2", ht.Away, ft.Away},
	}

	out := make(map[string]float64, 9)
	total := 0.0
	for _, h := range sides {
		for _, f := range sides {
			key := h.key + "/" + f.key
			p := h.ht * f.full * e.cfg.HTFTMultipliers[key]
			out[key] = p
			total += p
		}
	}
	if total > 0 {
		for k := range out {
			out[k] /= total
		}
	}
	return out
}

func (e *Engine) asianHandicap(xg models.GoalExpectancy, result models.ThreeWayProbs) models.AsianHandicap {
	diff := xg.Home - xg.Away
	t := e.cfg.AsianHandicapThresholds
	ah := models.AsianHandicap{Confidence: math.Min(100, math.Abs(diff*20)+50)}

	switch {
	case diff > t[0]:
		ah.Line, ah.Side = -1.5, "home"
	case diff > t[1]:
		ah.Line, ah.Side = -1, "home"
	case diff > t[2]:
		ah.Line, ah.Side = -0.5, "home"
	case diff > t[3]:
		ah.Line, ah.Side = 0, "away"
		if result.Home > result.Away {
			ah.Side = "home"
		}
	case diff > t[4]:
		ah.Line, ah.Side = 0.5, "away"
	default:
		ah.Line, ah.Side = 1, "away"
	}
	return ah
}

// europeanHandicap prices home -1: the home side must win by two or more
func europeanHandicap(g *scoreGrid) models.ThreeWayProbs {
	return models.ThreeWayProbs{
		Home: g.sum(func(h, a int) bool { return h-a >= 2 }),
		Draw: g.sum(func(h, a int) bool { return h-a == 1 }),
		Away: g.sum(func(h, a int) bool { return h-a <= 0 }),
	}
}

func firstGoal(xg models.GoalExpectancy) models.FirstGoal {
	noGoal := math.Exp(-xg.Total)
	scored := 1 - noGoal
	fg := models.FirstGoal{NoGoal: noGoal}
	if xg.Total > 0 {
		fg.Home = xg.Home / xg.Total * scored
		fg.Away = xg.Away / xg.Total * scored
	}
	return fg
}

func combos(g *scoreGrid) models.Combos {
	return models.Combos{
		HomeAndOver15:  g.sum(func(h, a int) bool { return h > a && h+a >= 2 }),
		AwayAndOver15:  g.sum(func(h, a int) bool { return a > h && h+a >= 2 }),
		DrawAndUnder25: g.sum(func(h, a int) bool { return h == a && h+a <= 2 }),
		BTTSAndOver25:  g.sum(func(h, a int) bool { return h > 0 && a > 0 && h+a >= 3 }),
	}
}

// exactGoals buckets the total into 0..4 and 5+
func exactGoals(total float64) map[string]float64 {
	out := make(map[string]float64, 6)
	below := 0.0
	for _, k := range []int{0, 1, 2, 3, 4} {
		p := poissonPMF(total, k)
		out[strconv.Itoa(k)] = p
		below += p
	}
	out["5+"] = 1 - below
	return out
}

func rateOr(rate func() (float64, bool), fallback float64) float64 {
	if v, ok := rate(); ok && v >= 0 && !math.IsNaN(v) {
		return v
	}
	return fallback
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
