package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yourusername/matchday-consensus/internal/models"
)

var languageNames = map[string]string{
	"en": "English",
	"tr": "Turkish",
	"de": "German",
}

func languageInstruction(lang string) string {
	name, ok := languageNames[lang]
	if !ok {
		name = languageNames["en"]
	}
	return fmt.Sprintf("\nWrite every rationale and summary in %s. Respond ONLY with a JSON object, no prose outside it.", name)
}

const picksSchema = `"match_result": {"selection": "1|X|2", "confidence": 0-100, "rationale": ""},
  "over_under": {"selection": "Over|Under", "confidence": 0-100, "rationale": ""},
  "btts": {"selection": "Yes|No", "confidence": 0-100, "rationale": ""}`

type formBrief struct {
	Form          string   `json:"form,omitempty"`
	Wins          int      `json:"wins"`
	Draws         int      `json:"draws"`
	Losses        int      `json:"losses"`
	ScoringRate   *float64 `json:"scoring_rate,omitempty"`
	ConcedingRate *float64 `json:"conceding_rate,omitempty"`
	Over25Pct     float64  `json:"over25_pct"`
	BTTSPct       float64  `json:"btts_pct"`
}

type matchBrief struct {
	Fixture  string             `json:"fixture"`
	League   string             `json:"league,omitempty"`
	Kickoff  string             `json:"kickoff,omitempty"`
	HomeForm *formBrief         `json:"home_form,omitempty"`
	AwayForm *formBrief         `json:"away_form,omitempty"`
	H2H      *models.HeadToHead `json:"h2h,omitempty"`
	Odds     models.OddsBook    `json:"odds"`
}

func briefForm(f *models.TeamForm) *formBrief {
	if f == nil {
		return nil
	}
	b := &formBrief{
		Form:      f.FormString(),
		Wins:      f.Wins(),
		Draws:     f.Draws(),
		Losses:    f.Losses(),
		Over25Pct: f.Over25Pct(),
		BTTSPct:   f.BTTSPct(),
	}
	if v, ok := f.ScoringRate(); ok {
		b.ScoringRate = &v
	}
	if v, ok := f.ConcedingRate(); ok {
		b.ConcedingRate = &v
	}
	return b
}

// describeMatch renders the fixture as indented JSON for the user prompt
func describeMatch(m *models.MatchContext) string {
	b := matchBrief{
		Fixture:  m.Title(),
		League:   m.League,
		HomeForm: briefForm(m.HomeForm),
		AwayForm: briefForm(m.AwayForm),
		H2H:      m.H2H,
		Odds:     m.Odds,
	}
	if !m.Kickoff.IsZero() {
		b.Kickoff = m.Kickoff.UTC().Format("2006-01-02 15:04 MST")
	}
	out, _ := json.MarshalIndent(b, "", "  ")
	return string(out)
}

// describeOpinions renders prior opinions compactly, in a stable order
func describeOpinions(prior map[models.AgentKind]*models.AgentOpinion, kinds ...models.AgentKind) string {
	var sb strings.Builder
	for _, k := range kinds {
		o := prior[k]
		if o == nil {
			fmt.Fprintf(&sb, "%s: unavailable\n", k)
			continue
		}
		fmt.Fprintf(&sb, "%s:", k)
		for _, f := range models.VotingFamilies {
			if p, ok := o.Pick(f); ok {
				fmt.Fprintf(&sb, " %s=%s (%.0f%%)", f, p.Selection, p.Confidence)
			}
		}
		if o.Summary != "" {
			fmt.Fprintf(&sb, " | %s", o.Summary)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
