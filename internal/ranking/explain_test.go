package ranking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsignal/rankd/internal/registry"
)

func TestBuildExplanationStrongCategoryLeads(t *testing.T) {
	c := &Candidate{
		District: &registry.District{ID: "a"},
		Scores: registry.ScoreRecord{
			Readiness:  3.5,
			Alignment:  3.2,
			Activation: 1.0,
			Branding:   0.5,
			Total:      8.2,
		},
		Semantic: SemanticAggregate{MaxSimilarity: 0.75, AvgSimilarity: 0.5, HitCount: 4},
	}

	exp := BuildExplanation(c, CompositeScore(c, GrantCriteria{}), 0.6)
	assert.True(t, strings.HasPrefix(exp.Summary, "Strong readiness for change signals."), exp.Summary)
	assert.Contains(t, exp.Summary, "High semantic relevance")
	assert.Contains(t, exp.Summary, "Also strong in instructional alignment.")
}

func TestBuildExplanationModerateFallback(t *testing.T) {
	c := &Candidate{
		District: &registry.District{ID: "a"},
		Scores:   registry.ScoreRecord{Readiness: 1.2, Alignment: 0.8, Total: 2.5},
		Semantic: SemanticAggregate{MaxSimilarity: 0.55, AvgSimilarity: 0.4, HitCount: 2},
	}

	exp := BuildExplanation(c, CompositeScore(c, GrantCriteria{}), 0.6)
	assert.True(t, strings.HasPrefix(exp.Summary, "Moderate signals across categories."), exp.Summary)
	assert.Contains(t, exp.Summary, "Moderate semantic relevance")
	assert.NotContains(t, exp.Summary, "Also strong")
}

func TestBuildExplanationKeywordTerms(t *testing.T) {
	c := &Candidate{
		District: &registry.District{ID: "a"},
		Scores: registry.ScoreRecord{
			Total: 4,
			Matches: []registry.MatchEvidence{
				{Keyword: "professional_development", Excerpt: "PD plan for 2026", SourceURL: "https://example.org/plan"},
				{Keyword: "professional_development", Excerpt: "duplicate keyword"},
				{Keyword: "literacy", Excerpt: "literacy initiative"},
				{Keyword: "stem", Excerpt: "stem lab"},
				{Keyword: "tutoring", Excerpt: "beyond the term cap"},
			},
		},
	}

	exp := BuildExplanation(c, CompositeScore(c, GrantCriteria{}), 0.6)
	assert.Contains(t, exp.Summary, "Key terms: professional development, literacy, stem.")
	assert.NotContains(t, exp.Summary, "tutoring")

	require.Len(t, exp.SourceExcerpts, 3)
	assert.Equal(t, "professional development", exp.SourceExcerpts[0].Keyword)
	assert.Equal(t, "https://example.org/plan", exp.SourceExcerpts[0].SourceURL)
}

func TestBuildExplanationTopSignals(t *testing.T) {
	c := &Candidate{
		District: &registry.District{ID: "a"},
		Scores:   registry.ScoreRecord{Readiness: 2, Activation: 1.5, Total: 5},
		Semantic: SemanticAggregate{MaxSimilarity: 0.8, AvgSimilarity: 0.6, HitCount: 7},
	}

	exp := BuildExplanation(c, CompositeScore(c, GrantCriteria{}), 0.6)
	require.GreaterOrEqual(t, len(exp.TopSignals), 4)
	assert.Equal(t, "semantic_similarity", exp.TopSignals[0].Signal)
	assert.Contains(t, exp.TopSignals[0].Reason, "7 document chunks")

	names := make([]string, 0, len(exp.TopSignals))
	for _, s := range exp.TopSignals {
		names = append(names, s.Signal)
	}
	assert.Contains(t, names, "readiness")
	assert.Contains(t, names, "activation")
	assert.Contains(t, names, "total_score")
}

func TestBuildExplanationDampener(t *testing.T) {
	weak := &Candidate{
		District: &registry.District{ID: "a"},
		Scores:   registry.ScoreRecord{Total: 1},
		Semantic: SemanticAggregate{MaxSimilarity: 0.3, AvgSimilarity: 0.28, HitCount: 1},
	}
	exp := BuildExplanation(weak, CompositeScore(weak, GrantCriteria{}), 0.9)
	require.Len(t, exp.Dampeners, 1)
	assert.Equal(t, "confidence", exp.Dampeners[0].Signal)
	assert.Equal(t, dampenerReason, exp.Dampeners[0].Reason)

	strong := &Candidate{
		District: &registry.District{ID: "b"},
		Scores:   registry.ScoreRecord{Total: 10},
		Semantic: SemanticAggregate{MaxSimilarity: 0.95, AvgSimilarity: 0.8, HitCount: 20},
	}
	exp = BuildExplanation(strong, CompositeScore(strong, GrantCriteria{}), 0.6)
	assert.Empty(t, exp.Dampeners)
}

func TestStandaloneExplanationIgnoresSemanticSignal(t *testing.T) {
	d := &registry.District{ID: "a", Name: "Mesa USD"}
	rec := &registry.ScoreRecord{DistrictID: "a", Readiness: 3.4, Total: 8}

	exp := StandaloneExplanation(d, rec, 0.6)
	assert.InDelta(t, 0.8, exp.Confidence, 1e-9)
	assert.Equal(t, BandHigh, exp.Band)
	assert.True(t, strings.HasPrefix(exp.Summary, "Strong readiness for change signals."), exp.Summary)
	assert.Empty(t, exp.Dampeners)
	assert.NotContains(t, exp.Summary, "semantic relevance")
}

func TestStandaloneExplanationClamp(t *testing.T) {
	d := &registry.District{ID: "a"}
	exp := StandaloneExplanation(d, &registry.ScoreRecord{Total: 0}, 0.6)
	assert.InDelta(t, 0.2, exp.Confidence, 1e-9)
	assert.Equal(t, BandLow, exp.Band)

	exp = StandaloneExplanation(d, &registry.ScoreRecord{Total: 50}, 0.6)
	assert.InDelta(t, 0.98, exp.Confidence, 1e-9)
}
