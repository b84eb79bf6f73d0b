package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Timing records phase durations in milliseconds
type Timing struct {
	Phase1      int64 `json:"phase1"`
	Phase2      int64 `json:"phase2"`
	Markets     int64 `json:"markets"`
	Consensus   int64 `json:"consensus"`
	Arbitration int64 `json:"arbitration"`
	Total       int64 `json:"total"`
}

// AnalysisRecord is the persisted result of one analysis run. It is written
// once per analysis and only the Settlement is back-filled later.
type AnalysisRecord struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	FixtureID   int64             `db:"fixture_id" json:"fixture_id"`
	Match       MatchContext      `db:"match" json:"match"`
	Agents      []AgentReport     `db:"agents" json:"agents"`
	Consensus   ConsensusResult   `db:"consensus" json:"consensus"`
	Arbitration ArbitrationResult `db:"arbitration" json:"arbitration"`
	Markets     *MarketSurface    `db:"markets" json:"markets"`
	Errors      []string          `db:"errors" json:"errors"`
	TimingMs    Timing            `db:"timing_ms" json:"timing_ms"`
	Settlement  *Settlement       `db:"settlement" json:"settlement,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// IsSettled reports whether the true result has been recorded
func (r *AnalysisRecord) IsSettled() bool {
	return r != nil && r.Settlement != nil
}

// FinalScore is the true result of a fixture. Half-time goals are optional.
type FinalScore struct {
	Home   int  `json:"home" validate:"gte=0"`
	Away   int  `json:"away" validate:"gte=0"`
	HTHome *int `json:"ht_home,omitempty" validate:"omitempty,gte=0"`
	HTAway *int `json:"ht_away,omitempty" validate:"omitempty,gte=0"`
}

// HasHalfTime reports whether both half-time goals are known
func (s FinalScore) HasHalfTime() bool {
	return s.HTHome != nil && s.HTAway != nil
}

// Validate checks the score is physically possible
func (s FinalScore) Validate() error {
	if s.Home < 0 || s.Away < 0 {
		return ErrInvalidScore
	}
	if (s.HTHome == nil) != (s.HTAway == nil) {
		return ErrInvalidScore
	}
	if s.HasHalfTime() && (*s.HTHome < 0 || *s.HTAway < 0 || *s.HTHome > s.Home || *s.HTAway > s.Away) {
		return ErrInvalidScore
	}
	return nil
}

// Equal compares two scores including half-time goals
func (s FinalScore) Equal(o FinalScore) bool {
	if s.Home != o.Home || s.Away != o.Away || s.HasHalfTime() != o.HasHalfTime() {
		return false
	}
	if !s.HasHalfTime() {
		return true
	}
	return *s.HTHome == *o.HTHome && *s.HTAway == *o.HTAway
}

// Outcome is the resolved result in the core families
type Outcome struct {
	MatchResult Selection `json:"match_result"`
	Over25      bool      `json:"over_2_5"`
	BTTS        bool      `json:"btts"`
	TotalGoals  int       `json:"total_goals"`
}

// Settlement back-fills correctness flags once the result is known. Flags are
// keyed by the path of the prediction they grade, e.g. "agents.stats.btts".
type Settlement struct {
	Score     FinalScore      `json:"score"`
	Outcome   Outcome         `json:"outcome"`
	Flags     map[string]bool `json:"flags"`
	Graded    int             `json:"graded"`
	Correct   int             `json:"correct"`
	SettledAt time.Time       `json:"settled_at"`
}

// Accuracy returns Correct/Graded, or 0 when nothing was graded
func (s *Settlement) Accuracy() float64 {
	if s == nil || s.Graded == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Graded)
}

// String renders the score as "2-1" or "2-1 (HT 1-0)"
func (s FinalScore) String() string {
	if !s.HasHalfTime() {
		return fmt.Sprintf("%d-%d", s.Home, s.Away)
	}
	return fmt.Sprintf("%d-%d (HT %d-%d)", s.Home, s.Away, *s.HTHome, *s.HTAway)
}
