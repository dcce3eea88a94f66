package ranking

import "math"

// Scoring weights. Semantic max dominates so that query-specific
// relevance outranks static keyword evidence; the hit-count term is
// capped to keep prolific-document districts from swamping it.
const (
	maxSimWeight      = 6.0
	avgSimWeight      = 2.0
	hitCountCap       = 1.5
	keywordWeight     = 0.5
	eligibilityWeight = 0.5

	confidenceMin = 0.2
	confidenceMax = 0.98
)

// CompositeScore blends semantic relevance, static taxonomy evidence,
// and grant-eligibility boosts into a single non-negative rank value.
func CompositeScore(c *Candidate, criteria GrantCriteria) float64 {
	semantic := maxSimWeight*c.Semantic.MaxSimilarity +
		avgSimWeight*c.Semantic.AvgSimilarity +
		math.Min(hitCountCap, math.Log10(float64(c.Semantic.HitCount)+1))
	keyword := keywordWeight * c.Scores.Total

	eligibility := 0.0
	if criteria.FRPLMin != nil && frplOf(c) >= *criteria.FRPLMin {
		eligibility += eligibilityWeight
	}
	if criteria.MinorityMin != nil && minorityOf(c) >= *criteria.MinorityMin {
		eligibility += eligibilityWeight
	}

	return math.Max(0, semantic+keyword+eligibility)
}

// Confidence estimates result reliability from the composite score and
// the average similarity, clamped to [0.2, 0.98].
func Confidence(composite, avgSimilarity float64) float64 {
	c := (composite + 2*avgSimilarity) / 12
	return math.Min(confidenceMax, math.Max(confidenceMin, c))
}

// ConfidenceBand maps a confidence value to its discrete tier.
func ConfidenceBand(confidence float64) Band {
	switch {
	case confidence >= 0.8:
		return BandHigh
	case confidence >= 0.6:
		return BandMedium
	default:
		return BandLow
	}
}

// confidenceFloor is the soft drop line beneath the caller's stated
// threshold. Borderline results stay visible (labeled low) rather than
// being pruned at the threshold itself.
func confidenceFloor(threshold float64) float64 {
	return math.Max(confidenceMin, threshold-0.25)
}
