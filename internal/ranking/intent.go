package ranking

import "strings"

// Keyword groups evaluated in priority order. Insights queries are rare
// and high-value, so their keywords must not be shadowed by a
// coincidental "grant" or "lead" mention later in the prompt. Do not
// reorder.
var (
	insightsKeywords = []string{"trend", "brief", "insight", "state overview"}
	grantKeywords    = []string{"grant", "frpl", "minority"}
	leadKeywords     = []string{"next hottest", "uncontacted", "lead"}
)

// ClassifyIntent maps a prompt to one of the fixed intents using
// priority-ordered substring tests.
func ClassifyIntent(prompt string) Intent {
	p := strings.ToLower(prompt)
	switch {
	case containsAny(p, insightsKeywords):
		return IntentInsightsBriefing
	case containsAny(p, grantKeywords):
		return IntentGrantMatch
	case containsAny(p, leadKeywords):
		return IntentNextUncontacted
	default:
		return IntentDistrictSearch
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
