package models

import (
	"fmt"
	"strings"
)

// Family is one of the market families agents vote on
type Family string

const (
	FamilyMatchResult  Family = "match_result"
	FamilyOverUnder    Family = "over_under_2_5"
	FamilyBTTS         Family = "btts"
	FamilyDoubleChance Family = "double_chance"
)

// VotingFamilies are the families aggregated by consensus, in output order
var VotingFamilies = []Family{FamilyMatchResult, FamilyOverUnder, FamilyBTTS}

// Selection is a canonical outcome within a family
type Selection string

const (
	SelectionHome       Selection = "1"
	SelectionDraw       Selection = "X"
	SelectionAway       Selection = "2"
	SelectionHomeOrDraw Selection = "1X"
	SelectionAwayOrDraw Selection = "X2"
	SelectionHomeOrAway Selection = "12"
	SelectionOver       Selection = "Over"
	SelectionUnder      Selection = "Under"
	SelectionYes        Selection = "Yes"
	SelectionNo         Selection = "No"
)

// Selections returns the canonical outcomes of a family in tie-break order
func (f Family) Selections() []Selection {
	switch f {
	case FamilyMatchResult:
		return []Selection{SelectionHome, SelectionDraw, SelectionAway}
	case FamilyOverUnder:
		return []Selection{SelectionOver, SelectionUnder}
	case FamilyBTTS:
		return []Selection{SelectionYes, SelectionNo}
	case FamilyDoubleChance:
		return []Selection{SelectionHomeOrDraw, SelectionAwayOrDraw, SelectionHomeOrAway}
	}
	return nil
}

// Complement returns the double chance selection covering the other two 1X2
// outcomes. ok is false for a draw or an unknown selection.
func (s Selection) Complement() (Selection, bool) {
	switch s {
	case SelectionHome:
		return SelectionAwayOrDraw, true
	case SelectionAway:
		return SelectionHomeOrDraw, true
	}
	return "", false
}

var selectionAliases = map[Family]map[string]Selection{
	FamilyMatchResult: {
		"1": SelectionHome, "home": SelectionHome, "home win": SelectionHome, "h": SelectionHome, "ms1": SelectionHome,
		"x": SelectionDraw, "draw": SelectionDraw, "d": SelectionDraw, "0": SelectionDraw, "msx": SelectionDraw,
		"2": SelectionAway, "away": SelectionAway, "away win": SelectionAway, "a": SelectionAway, "ms2": SelectionAway,
	},
	FamilyOverUnder: {
		"over": SelectionOver, "over 2.5": SelectionOver, "o2.5": SelectionOver, "o": SelectionOver,
		"under": SelectionUnder, "under 2.5": SelectionUnder, "u2.5": SelectionUnder, "u": SelectionUnder,
	},
	FamilyBTTS: {
		"yes": SelectionYes, "y": SelectionYes, "btts yes": SelectionYes, "true": SelectionYes,
		"no": SelectionNo, "n": SelectionNo, "btts no": SelectionNo, "false": SelectionNo,
	},
	FamilyDoubleChance: {
		"1x": SelectionHomeOrDraw, "home or draw": SelectionHomeOrDraw,
		"x2": SelectionAwayOrDraw, "away or draw": SelectionAwayOrDraw, "2x": SelectionAwayOrDraw,
		"12": SelectionHomeOrAway, "home or away": SelectionHomeOrAway,
	},
}

// NormalizeSelection maps loose model output ("Home Win", "over 2.5", "BTTS yes")
// onto a canonical selection of the family.
func NormalizeSelection(family Family, raw string) (Selection, error) {
	aliases, ok := selectionAliases[family]
	if !ok {
		return "", fmt.Errorf("unknown market family %q", family)
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	if sel, ok := aliases[key]; ok {
		return sel, nil
	}
	return "", fmt.Errorf("unrecognized %s selection %q", family, raw)
}

// AgentKind identifies a reasoning agent
type AgentKind string

const (
	AgentStats            AgentKind = "stats"
	AgentOdds             AgentKind = "odds"
	AgentSentiment        AgentKind = "sentiment"
	AgentDeepAnalysis     AgentKind = "deep_analysis"
	AgentContrarian       AgentKind = "contrarian"
	AgentStrategy         AgentKind = "strategy"
	AgentMasterStrategist AgentKind = "master_strategist"
)

// OpinionKinds lists the agents that produce opinions, in display order
var OpinionKinds = []AgentKind{
	AgentStats,
	AgentOdds,
	AgentSentiment,
	AgentDeepAnalysis,
	AgentContrarian,
	AgentStrategy,
}

// ParseFamily maps a free-form market label ("1X2", "Total Goals", "both
// teams to score") onto a family
func ParseFamily(market string) (Family, bool) {
	m := strings.ToLower(market)
	switch {
	case strings.Contains(m, "btts") || strings.Contains(m, "both"):
		return FamilyBTTS, true
	case strings.Contains(m, "double"):
		return FamilyDoubleChance, true
	case strings.Contains(m, "over") || strings.Contains(m, "under") || strings.Contains(m, "2.5") || strings.Contains(m, "2_5") || strings.Contains(m, "goals"):
		return FamilyOverUnder, true
	case strings.Contains(m, "result") || strings.Contains(m, "1x2") || strings.Contains(m, "winner") || m == "ms":
		return FamilyMatchResult, true
	}
	return "", false
}
