package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/schoolsignal/rankd/internal/registry"
)

// PlaceholderSummary is the fixed rationale carried by entries beyond
// the full-explanation depth. The UI swaps it for the on-demand
// explanation when the user expands the row.
const PlaceholderSummary = `Rationale available on demand. Click "Load full rationale".`

const (
	strongScoreBar = 3.0
	maxExcerpts    = 3
	maxKeywordTerms = 3

	dampenerReason = "Confidence below requested threshold; results may be less reliable."
)

var categoryLabels = map[string]string{
	"readiness":  "readiness for change",
	"alignment":  "instructional alignment",
	"activation": "active engagement",
	"branding":   "communications and branding",
}

type subScore struct {
	name  string
	value float64
}

// rankedSubScores returns the four taxonomy sub-scores sorted
// descending. Ties keep the fixed category order for determinism.
func rankedSubScores(s registry.ScoreRecord) []subScore {
	scores := []subScore{
		{"readiness", s.Readiness},
		{"alignment", s.Alignment},
		{"activation", s.Activation},
		{"branding", s.Branding},
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].value > scores[j].value
	})
	return scores
}

// BuildExplanation produces the full rationale for a ranked candidate:
// summary, top contributing signals, source excerpts, and dampeners.
func BuildExplanation(c *Candidate, composite, threshold float64) Explanation {
	confidence := Confidence(composite, c.Semantic.AvgSimilarity)
	exp := Explanation{
		Confidence: confidence,
		Band:       ConfidenceBand(confidence),
	}

	ranked := rankedSubScores(c.Scores)
	var parts []string
	if ranked[0].value >= strongScoreBar {
		parts = append(parts, fmt.Sprintf("Strong %s signals.", categoryLabels[ranked[0].name]))
	} else {
		parts = append(parts, "Moderate signals across categories.")
	}

	switch {
	case c.Semantic.MaxSimilarity >= 0.7:
		parts = append(parts, "High semantic relevance to your query.")
	case c.Semantic.MaxSimilarity >= 0.5:
		parts = append(parts, "Moderate semantic relevance to your query.")
	}

	if terms := keywordTerms(c.Scores.Matches); len(terms) > 0 {
		parts = append(parts, fmt.Sprintf("Key terms: %s.", strings.Join(terms, ", ")))
	}

	if len(ranked) > 1 && ranked[1].value >= strongScoreBar {
		parts = append(parts, fmt.Sprintf("Also strong in %s.", categoryLabels[ranked[1].name]))
	}
	exp.Summary = strings.Join(parts, " ")

	exp.TopSignals = []TopSignal{
		{
			Signal:   "semantic_similarity",
			Category: "semantic",
			Weight:   maxSimWeight * c.Semantic.MaxSimilarity,
			Reason:   fmt.Sprintf("matched %d document chunks", c.Semantic.HitCount),
		},
		{Signal: "readiness", Category: "taxonomy", Weight: c.Scores.Readiness},
		{Signal: "activation", Category: "taxonomy", Weight: c.Scores.Activation},
		{Signal: "total_score", Category: "taxonomy", Weight: c.Scores.Total},
	}

	for _, m := range c.Scores.Matches {
		if len(exp.SourceExcerpts) >= maxExcerpts {
			break
		}
		exp.SourceExcerpts = append(exp.SourceExcerpts, SourceExcerpt{
			Keyword:   normalizeKeyword(m.Keyword),
			Excerpt:   m.Excerpt,
			SourceURL: m.SourceURL,
		})
	}

	if confidence < threshold {
		exp.Dampeners = []Dampener{{
			Signal: "confidence",
			Impact: "lowered",
			Reason: dampenerReason,
		}}
	}
	return exp
}

// placeholderExplanation keeps confidence and band but defers the
// rationale to the on-demand endpoint.
func placeholderExplanation(composite, avgSimilarity float64) Explanation {
	confidence := Confidence(composite, avgSimilarity)
	return Explanation{
		Confidence: confidence,
		Band:       ConfidenceBand(confidence),
		Summary:    PlaceholderSummary,
	}
}

// StandaloneExplanation recomputes a full rationale for one district
// outside any search, from static scores alone. Its confidence formula
// deliberately ignores semantic signal, since no query context exists;
// it is not interchangeable with ranked-result confidence.
func StandaloneExplanation(d *registry.District, s *registry.ScoreRecord, threshold float64) Explanation {
	confidence := math.Min(confidenceMax, math.Max(confidenceMin, s.Total/10))
	c := &Candidate{District: d, Scores: *s}
	exp := BuildExplanation(c, keywordWeight*s.Total, threshold)
	exp.Confidence = confidence
	exp.Band = ConfidenceBand(confidence)
	if confidence >= threshold {
		exp.Dampeners = nil
	}
	return exp
}

// keywordTerms returns up to three deduplicated match keywords with
// underscores normalized to spaces.
func keywordTerms(matches []registry.MatchEvidence) []string {
	seen := map[string]bool{}
	var terms []string
	for _, m := range matches {
		term := normalizeKeyword(m.Keyword)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
		if len(terms) >= maxKeywordTerms {
			break
		}
	}
	return terms
}

func normalizeKeyword(kw string) string {
	return strings.TrimSpace(strings.ReplaceAll(kw, "_", " "))
}
