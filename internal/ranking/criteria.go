package ranking

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	frplPattern       = regexp.MustCompile(`(?:frpl|free\s*(?:/|and|or)?\s*reduced(?:\s*price)?\s*lunch)[^\d%]{0,24}?(\d{1,3}(?:\.\d+)?)\s*%?`)
	minorityPattern   = regexp.MustCompile(`minority[^\d%]{0,24}?(\d{1,3}(?:\.\d+)?)\s*%?`)
	enrollmentPattern = regexp.MustCompile(`(?:over|above|at\s+least|more\s+than|minimum\s+of)\s+([\d,]+)\s*(?:students?|enrollment)`)
	stateTokenPattern = regexp.MustCompile(`\b[A-Z]{2}\b`)
)

// Two-letter uppercase tokens that are not state codes but show up in
// district-search prompts.
var stateFalsePositives = map[string]bool{
	"AI": true,
	"US": true,
	"IT": true,
}

// Domain phrases whose presence marks a required-keyword constraint.
var grantKeywordPhrases = []string{
	"professional development",
	"curriculum adoption",
	"literacy",
	"stem",
	"math intervention",
	"social emotional",
	"teacher retention",
	"tutoring",
	"esser",
	"title i",
}

// ExtractCriteria parses free text into a partial GrantCriteria. The
// extractor is best-effort: every pattern is independent and a miss
// leaves the field nil, never an error.
func ExtractCriteria(prompt, attachment string) GrantCriteria {
	var out GrantCriteria
	text := strings.ToLower(prompt + " " + attachment)

	if v, ok := matchPercent(frplPattern, text); ok {
		out.FRPLMin = &v
	}
	if v, ok := matchPercent(minorityPattern, text); ok {
		out.MinorityMin = &v
	}
	if m := enrollmentPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			out.EnrollmentMin = &n
		}
	}

	// State codes are case-significant, so scan the original prompt.
	seen := map[string]bool{}
	for _, tok := range stateTokenPattern.FindAllString(prompt, -1) {
		if stateFalsePositives[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out.States = append(out.States, tok)
	}

	for _, phrase := range grantKeywordPhrases {
		if strings.Contains(text, phrase) {
			out.Keywords = append(out.Keywords, phrase)
		}
	}
	return out
}

func matchPercent(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v, true
}

// MergeCriteria overlays explicit caller overrides onto text-derived
// criteria. Overrides win on a per-field basis; unset override fields
// leave the extracted value in place.
func MergeCriteria(extracted GrantCriteria, override *GrantCriteria) GrantCriteria {
	if override == nil {
		return extracted
	}
	merged := extracted
	if override.FRPLMin != nil {
		merged.FRPLMin = override.FRPLMin
	}
	if override.MinorityMin != nil {
		merged.MinorityMin = override.MinorityMin
	}
	if override.EnrollmentMin != nil {
		merged.EnrollmentMin = override.EnrollmentMin
	}
	if len(override.States) > 0 {
		merged.States = override.States
	}
	if len(override.Keywords) > 0 {
		merged.Keywords = override.Keywords
	}
	return merged
}
