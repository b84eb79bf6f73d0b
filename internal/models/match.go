package models

import (
	"strings"
	"time"
)

// Venue is where a team played a form match
type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// Team identifies one side of a fixture
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
}

// MatchContext is everything the analysis knows about a fixture before kickoff
type MatchContext struct {
	FixtureID int64       `json:"fixture_id" validate:"required,gt=0"`
	HomeTeam  Team        `json:"home_team"`
	AwayTeam  Team        `json:"away_team"`
	League    string      `json:"league"`
	Kickoff   time.Time   `json:"kickoff"`
	Odds      OddsBook    `json:"odds"`
	HomeForm  *TeamForm   `json:"home_form,omitempty" validate:"omitempty"`
	AwayForm  *TeamForm   `json:"away_form,omitempty" validate:"omitempty"`
	H2H       *HeadToHead `json:"h2h,omitempty" validate:"omitempty"`
}

// Title returns "Home vs Away"
func (m *MatchContext) Title() string {
	return m.HomeTeam.Name + " vs " + m.AwayTeam.Name
}

// ThreeWay holds decimal prices for a home/draw/away market
type ThreeWay struct {
	Home float64 `json:"home,omitempty" validate:"omitempty,gt=1"`
	Draw float64 `json:"draw,omitempty" validate:"omitempty,gt=1"`
	Away float64 `json:"away,omitempty" validate:"omitempty,gt=1"`
}

// Complete reports whether all three prices are present
func (t *ThreeWay) Complete() bool {
	return t != nil && t.Home > 1 && t.Draw > 1 && t.Away > 1
}

// TwoWay holds decimal prices for an over/under market
type TwoWay struct {
	Over  float64 `json:"over,omitempty" validate:"omitempty,gt=1"`
	Under float64 `json:"under,omitempty" validate:"omitempty,gt=1"`
}

// YesNo holds decimal prices for a yes/no market
type YesNo struct {
	Yes float64 `json:"yes,omitempty" validate:"omitempty,gt=1"`
	No  float64 `json:"no,omitempty" validate:"omitempty,gt=1"`
}

// DoubleChanceOdds holds prices for the three double chance selections
type DoubleChanceOdds struct {
	HomeOrDraw float64 `json:"home_or_draw,omitempty" validate:"omitempty,gt=1"`
	AwayOrDraw float64 `json:"away_or_draw,omitempty" validate:"omitempty,gt=1"`
	HomeOrAway float64 `json:"home_or_away,omitempty" validate:"omitempty,gt=1"`
}

// OddsBook is the bookmaker view of a fixture. Every market is optional.
type OddsBook struct {
	MatchWinner  *ThreeWay         `json:"match_winner,omitempty" validate:"omitempty"`
	OverUnder    map[string]TwoWay `json:"over_under,omitempty" validate:"omitempty,dive"`
	BTTS         *YesNo            `json:"btts,omitempty" validate:"omitempty"`
	DoubleChance *DoubleChanceOdds `json:"double_chance,omitempty" validate:"omitempty"`
	HalfTime     *ThreeWay         `json:"half_time,omitempty" validate:"omitempty"`
}

// Price returns the bookmaker price for a selection in one of the core
// families, or 0 when it is not quoted.
func (o *OddsBook) Price(family Family, sel Selection) float64 {
	switch family {
	case FamilyMatchResult:
		if o.MatchWinner == nil {
			return 0
		}
		switch sel {
		case SelectionHome:
			return o.MatchWinner.Home
		case SelectionDraw:
			return o.MatchWinner.Draw
		case SelectionAway:
			return o.MatchWinner.Away
		}
	case FamilyOverUnder:
		line, ok := o.OverUnder["2.5"]
		if !ok {
			return 0
		}
		switch sel {
		case SelectionOver:
			return line.Over
		case SelectionUnder:
			return line.Under
		}
	case FamilyBTTS:
		if o.BTTS == nil {
			return 0
		}
		switch sel {
		case SelectionYes:
			return o.BTTS.Yes
		case SelectionNo:
			return o.BTTS.No
		}
	case FamilyDoubleChance:
		if o.DoubleChance == nil {
			return 0
		}
		switch sel {
		case SelectionHomeOrDraw:
			return o.DoubleChance.HomeOrDraw
		case SelectionAwayOrDraw:
			return o.DoubleChance.AwayOrDraw
		case SelectionHomeOrAway:
			return o.DoubleChance.HomeOrAway
		}
	}
	return 0
}

// Favorite returns the 1X2 side with the shortest price, or "" without prices.
func (o *OddsBook) Favorite() Selection {
	if o.MatchWinner == nil || o.MatchWinner.Home <= 1 || o.MatchWinner.Away <= 1 {
		return ""
	}
	if o.MatchWinner.Home <= o.MatchWinner.Away {
		return SelectionHome
	}
	return SelectionAway
}

// FormMatch is one recent result for a team
type FormMatch struct {
	Opponent     string `json:"opponent"`
	GoalsFor     int    `json:"goals_for" validate:"gte=0"`
	GoalsAgainst int    `json:"goals_against" validate:"gte=0"`
	Venue        Venue  `json:"venue" validate:"omitempty,oneof=home away"`
}

// Result returns W, D or L
func (f FormMatch) Result() string {
	switch {
	case f.GoalsFor > f.GoalsAgainst:
		return "W"
	case f.GoalsFor < f.GoalsAgainst:
		return "L"
	default:
		return "D"
	}
}

// TeamForm is a team's recent form. Aggregates supplied by the data provider
// take precedence over values derived from Matches.
type TeamForm struct {
	Matches          []FormMatch `json:"matches,omitempty" validate:"omitempty,dive"`
	AvgScored        *float64    `json:"avg_scored,omitempty" validate:"omitempty,gte=0"`
	AvgConceded      *float64    `json:"avg_conceded,omitempty" validate:"omitempty,gte=0"`
	VenueAvgScored   *float64    `json:"venue_avg_scored,omitempty" validate:"omitempty,gte=0"`
	VenueAvgConceded *float64    `json:"venue_avg_conceded,omitempty" validate:"omitempty,gte=0"`
	Over25Percent    *float64    `json:"over25_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
	BTTSPercent      *float64    `json:"btts_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (f *TeamForm) count(result string) int {
	if f == nil {
		return 0
	}
	n := 0
	for _, m := range f.Matches {
		if m.Result() == result {
			n++
		}
	}
	return n
}

// Wins returns the number of wins in the form list
func (f *TeamForm) Wins() int { return f.count("W") }

// Draws returns the number of draws in the form list
func (f *TeamForm) Draws() int { return f.count("D") }

// Losses returns the number of losses in the form list
func (f *TeamForm) Losses() int { return f.count("L") }

// FormString renders the form as e.g. "WWDLW", most recent first
func (f *TeamForm) FormString() string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	for _, m := range f.Matches {
		b.WriteString(m.Result())
	}
	return b.String()
}

// ScoringRate returns the venue-specific scoring rate when present, then the
// overall rate, then the average over Matches. ok is false when nothing is known.
func (f *TeamForm) ScoringRate() (rate float64, ok bool) {
	if f == nil {
		return 0, false
	}
	if f.VenueAvgScored != nil {
		return *f.VenueAvgScored, true
	}
	if f.AvgScored != nil {
		return *f.AvgScored, true
	}
	return f.average(func(m FormMatch) int { return m.GoalsFor })
}

// ConcedingRate mirrors ScoringRate for goals against
func (f *TeamForm) ConcedingRate() (rate float64, ok bool) {
	if f == nil {
		return 0, false
	}
	if f.VenueAvgConceded != nil {
		return *f.VenueAvgConceded, true
	}
	if f.AvgConceded != nil {
		return *f.AvgConceded, true
	}
	return f.average(func(m FormMatch) int { return m.GoalsAgainst })
}

func (f *TeamForm) average(field func(FormMatch) int) (float64, bool) {
	if len(f.Matches) == 0 {
		return 0, false
	}
	total := 0
	for _, m := range f.Matches {
		total += field(m)
	}
	return float64(total) / float64(len(f.Matches)), true
}

// Over25Pct returns the share of form matches with three or more goals, 0..100
func (f *TeamForm) Over25Pct() float64 {
	if f == nil {
		return 0
	}
	if f.Over25Percent != nil {
		return *f.Over25Percent
	}
	if len(f.Matches) == 0 {
		return 0
	}
	n := 0
	for _, m := range f.Matches {
		if m.GoalsFor+m.GoalsAgainst > 2 {
			n++
		}
	}
	return float64(n) / float64(len(f.Matches)) * 100
}

// BTTSPct returns the share of form matches where both sides scored, 0..100
func (f *TeamForm) BTTSPct() float64 {
	if f == nil {
		return 0
	}
	if f.BTTSPercent != nil {
		return *f.BTTSPercent
	}
	if len(f.Matches) == 0 {
		return 0
	}
	n := 0
	for _, m := range f.Matches {
		if m.GoalsFor > 0 && m.GoalsAgainst > 0 {
			n++
		}
	}
	return float64(n) / float64(len(f.Matches)) * 100
}

// HeadToHead aggregates previous meetings between the two teams
type HeadToHead struct {
	TotalMatches int     `json:"total_matches" validate:"gte=0"`
	HomeWins     int     `json:"home_wins" validate:"gte=0"`
	AwayWins     int     `json:"away_wins" validate:"gte=0"`
	Draws        int     `json:"draws" validate:"gte=0"`
	AvgGoals     float64 `json:"avg_goals" validate:"gte=0"`
	Over25Pct    float64 `json:"over25_pct" validate:"gte=0,lte=100"`
	BTTSPct      float64 `json:"btts_pct" validate:"gte=0,lte=100"`
}
