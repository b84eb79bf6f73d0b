package reasoning

import (
	"fmt"
	"regexp"
	"strings"
)

var thinkingPattern = regexp.MustCompile(`(?s)<thinking>(.*?)</thinking>`)

// SplitDecision separates a deliberation from the JSON decision that follows
// it. The rationale is the <thinking> body when present, otherwise the text
// before the first '{'. The decision spans the first '{' to the last '}'
// after the deliberation.
func SplitDecision(raw string) (rationale, decision string, err error) {
	body := raw
	if loc := thinkingPattern.FindStringSubmatchIndex(raw); loc != nil {
		rationale = strings.TrimSpace(raw[loc[2]:loc[3]])
		body = raw[loc[1]:]
	}

	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end <= start {
		return rationale, "", fmt.Errorf("%w: no decision object", ErrMalformedOutput)
	}

	if rationale == "" {
		rationale = strings.TrimSpace(body[:start])
	}
	return rationale, body[start : end+1], nil
}
