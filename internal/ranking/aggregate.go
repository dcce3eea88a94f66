package ranking

import "github.com/schoolsignal/rankd/internal/similarity"

// AggregateChunks folds chunk-level similarity hits into per-district
// aggregates. The hits arrive already bounded to the top-K above the
// similarity floor; that bound is what keeps the semantic signal
// query-specific instead of letting static keyword scores dominate
// every ranking.
func AggregateChunks(hits []similarity.ChunkHit) map[string]SemanticAggregate {
	sums := make(map[string]float64)
	aggs := make(map[string]SemanticAggregate)
	for _, hit := range hits {
		if hit.DistrictID == "" {
			continue
		}
		agg := aggs[hit.DistrictID]
		if hit.Score > agg.MaxSimilarity {
			agg.MaxSimilarity = hit.Score
		}
		agg.HitCount++
		sums[hit.DistrictID] += hit.Score
		aggs[hit.DistrictID] = agg
	}
	for id, agg := range aggs {
		agg.AvgSimilarity = sums[id] / float64(agg.HitCount)
		aggs[id] = agg
	}
	return aggs
}
