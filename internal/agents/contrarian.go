package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// Risk levels shared by the contrarian and strategy agents
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

const contrarianSystem = `You are a contrarian football analyst. Your job is to challenge the market favorite and find reasons it could fail.
Return JSON:
{
  "trap_indicators": [],
  "trap_score": 0-100,
  "contrarian_pick": "1|X|2",
  "contrarian_view": "",
  ` + picksSchema + `,
  "summary": ""
}
Any pick you have no view on may be omitted.`

type contrarianWire struct {
	familyPicks
	TrapIndicators []string `json:"trap_indicators"`
	TrapScore      *float64 `json:"trap_score" validate:"omitempty,gte=0,lte=100"`
	ContrarianPick string   `json:"contrarian_pick"`
	View           string   `json:"contrarian_view"`
	Summary        string   `json:"summary"`
}

// ContrarianAgent looks for traps around the favorite
type ContrarianAgent struct {
	caller
}

// NewContrarianAgent creates the contrarian agent
func NewContrarianAgent(client reasoning.Client, cfg Config) *ContrarianAgent {
	return &ContrarianAgent{caller{kind: models.AgentContrarian, client: client, cfg: cfg}}
}

// Run scores the obvious traps locally, then asks the model to challenge the favorite
func (a *ContrarianAgent) Run(ctx context.Context, in *Input) (*models.AgentOpinion, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	pre, reasons := PreTrapScore(in.Match)
	user := fmt.Sprintf("Challenge the favorite in:\n%s\n\nLocal trap score: %.0f/100 (%s)",
		describeMatch(in.Match), pre, strings.Join(reasons, "; "))

	var w contrarianWire
	if err := a.ask(ctx, in, contrarianSystem, user, &w); err != nil {
		return nil, err
	}

	picks, err := w.collect(a.kind)
	if err != nil {
		return nil, err
	}

	// the local score stands in only when the model gives none
	score := pre
	if w.TrapScore != nil {
		score = models.ClampConfidence(*w.TrapScore)
	}
	signal := &models.ContrarianSignal{
		TrapIndicators: w.TrapIndicators,
		LocalSignals:   reasons,
		TrapScore:      score,
		View:           strings.TrimSpace(w.View),
	}
	signal.RiskLevel = TrapRisk(signal.TrapScore)
	if w.ContrarianPick != "" {
		sel, err := models.NormalizeSelection(models.FamilyMatchResult, w.ContrarianPick)
		if err != nil {
			return nil, malformed(a.kind, err)
		}
		signal.ContrarianPick = sel
	}
	if signal.TrapIndicators == nil {
		signal.TrapIndicators = []string{}
	}

	return &models.AgentOpinion{Kind: a.kind, Picks: picks, Summary: w.Summary, Contrarian: signal}, nil
}

// PreTrapScore scores the favorite from form and prices alone
func PreTrapScore(m *models.MatchContext) (float64, []string) {
	var (
		score   float64
		reasons []string
	)

	fav := m.Odds.Favorite()
	if fav == "" {
		return 0, nil
	}

	favForm := m.HomeForm
	if fav == models.SelectionAway {
		favForm = m.AwayForm
	}
	if favForm.Wins() >= 3 {
		score += 15
		reasons = append(reasons, fmt.Sprintf("favorite in strong form (%s)", favForm.FormString()))
	}

	if mw := m.Odds.MatchWinner; mw != nil {
		for _, price := range []float64{mw.Home, mw.Draw, mw.Away} {
			if price > 0 && price < 1.4 {
				score += 20
				reasons = append(reasons, fmt.Sprintf("heavy favorite priced at %.2f", price))
				break
			}
		}
	}

	if fav == models.SelectionAway {
		score += 10
		reasons = append(reasons, "favorite plays away")
	}

	return score, reasons
}

// TrapRisk maps a trap score to a risk level
func TrapRisk(score float64) string {
	switch {
	case score >= 70:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}
