package agents

import (
	"strings"

	"github.com/yourusername/matchday-consensus/internal/models"
)

// wirePick is a pick as the model writes it
type wirePick struct {
	Selection  string  `json:"selection" validate:"required"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
	Rationale  string  `json:"rationale"`
}

// toPick normalizes a wire pick into a family. A nil pick yields ok=false.
func (w *wirePick) toPick(family models.Family) (pick models.Pick, ok bool, err error) {
	if w == nil {
		return models.Pick{}, false, nil
	}
	sel, err := models.NormalizeSelection(family, w.Selection)
	if err != nil {
		return models.Pick{}, false, err
	}
	return models.Pick{
		Selection:  sel,
		Confidence: models.ClampConfidence(w.Confidence),
		Rationale:  strings.TrimSpace(w.Rationale),
	}, true, nil
}

// familyPicks are the three voting families as most agents answer them
type familyPicks struct {
	MatchResult *wirePick `json:"match_result"`
	OverUnder   *wirePick `json:"over_under"`
	BTTS        *wirePick `json:"btts"`
}

// collect normalizes whichever picks are present
func (f familyPicks) collect(kind models.AgentKind) (map[models.Family]models.Pick, error) {
	out := make(map[models.Family]models.Pick, 3)
	for _, item := range []struct {
		family models.Family
		pick   *wirePick
	}{
		{models.FamilyMatchResult, f.MatchResult},
		{models.FamilyOverUnder, f.OverUnder},
		{models.FamilyBTTS, f.BTTS},
	} {
		p, ok, err := item.pick.toPick(item.family)
		if err != nil {
			return nil, malformed(kind, err)
		}
		if ok {
			out[item.family] = p
		}
	}
	return out, nil
}
