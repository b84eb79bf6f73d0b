package reasoning

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern       = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	trailingComma      = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuotedString = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)
)

// DecodeLenient decodes model output into v. It tries, in order, the raw
// text, the body of a code fence, the outermost object, the outermost array,
// and finally each of those with common syntax slips repaired. The error
// wraps ErrMalformedOutput.
func DecodeLenient(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: empty output", ErrMalformedOutput)
	}

	candidates := []string{raw}
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if s, ok := outermost(raw, '{', '}'); ok {
		candidates = append(candidates, s)
	}
	if s, ok := outermost(raw, '[', ']'); ok {
		candidates = append(candidates, s)
	}

	var lastErr error
	for _, c := range candidates {
		if lastErr = json.Unmarshal([]byte(c), v); lastErr == nil {
			return nil
		}
	}
	for _, c := range candidates {
		for _, repaired := range repairs(c) {
			if err := json.Unmarshal([]byte(repaired), v); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrMalformedOutput, lastErr)
}

// outermost returns the text from the first open to the last close rune
func outermost(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// repairs yields progressively more invasive fixes. Quote conversion runs
// last since it can damage apostrophes inside valid strings.
func repairs(s string) []string {
	fixed := trailingComma.ReplaceAllString(s, "$1")
	fixed = unquotedKey.ReplaceAllString(fixed, `$1"$2":`)
	quoted := singleQuotedString.ReplaceAllStringFunc(fixed, func(m string) string {
		inner := m[1 : len(m)-1]
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		return `"` + inner + `"`
	})
	return []string{fixed, quoted}
}
