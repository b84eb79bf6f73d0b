package arbitration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/matchday-consensus/internal/models"
)

type selectionGroup struct {
	selection models.Selection
	agents    []models.AgentKind
	weight    float64
}

// Contradictions groups each voting family's picks by selection and records
// the families where the weight outside the leading group exceeds the threshold
func (c Config) Contradictions(opinions map[models.AgentKind]*models.AgentOpinion) []models.Contradiction {
	out := []models.Contradiction{}

	for _, family := range models.VotingFamilies {
		groups := map[models.Selection]*selectionGroup{}
		var voters []models.AgentKind

		for _, kind := range models.OpinionKinds {
			pick, ok := opinions[kind].Pick(family)
			if !ok {
				continue
			}
			g, ok := groups[pick.Selection]
			if !ok {
				g = &selectionGroup{selection: pick.Selection}
				groups[pick.Selection] = g
			}
			g.agents = append(g.agents, kind)
			g.weight += c.contradictionWeight(kind)
			voters = append(voters, kind)
		}
		if len(voters) < 2 || len(groups) < 2 {
			continue
		}

		ordered := make([]*selectionGroup, 0, len(groups))
		for _, sel := range family.Selections() {
			if g, ok := groups[sel]; ok {
				ordered = append(ordered, g)
			}
		}
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].weight > ordered[j].weight })

		var total, other float64
		for i, g := range ordered {
			total += g.weight
			if i > 0 {
				other += g.weight
			}
		}
		ratio := other / total
		if ratio <= c.ContradictionThreshold {
			continue
		}

		selections := make([]models.Selection, 0, len(ordered))
		parts := make([]string, 0, len(ordered))
		for _, g := range ordered {
			selections = append(selections, g.selection)
			names := make([]string, len(g.agents))
			for i, a := range g.agents {
				names[i] = string(a)
			}
			parts = append(parts, fmt.Sprintf("%s on %s", strings.Join(names, ", "), g.selection))
		}

		out = append(out, models.Contradiction{
			Market:            family,
			Agents:            voters,
			Selections:        selections,
			DisagreementRatio: round(ratio, 4),
			Severity:          severity(ratio),
			Reasoning:         strings.Join(parts, " vs "),
		})
	}
	return out
}

func severity(ratio float64) models.Severity {
	switch {
	case ratio > 0.5:
		return models.SeverityHigh
	case ratio > 0.4:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
