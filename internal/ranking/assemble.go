package ranking

import (
	"context"
	"fmt"

	"github.com/schoolsignal/rankd/internal/registry"
)

// assembleCandidates joins static score records with semantic
// aggregates. A district enters the candidate set if it has either;
// missing numeric fields on the other side are treated as zero.
// Districts absent from the registry keep a stub record so a stale
// score row never fails the whole request.
func assembleCandidates(ctx context.Context, store registry.DistrictStore, scores []*registry.ScoreRecord, aggs map[string]SemanticAggregate) ([]*Candidate, error) {
	byID := make(map[string]*registry.ScoreRecord, len(scores))
	ids := make([]string, 0, len(scores)+len(aggs))
	for _, rec := range scores {
		byID[rec.DistrictID] = rec
		ids = append(ids, rec.DistrictID)
	}
	for id := range aggs {
		if _, ok := byID[id]; !ok {
			ids = append(ids, id)
		}
	}

	attrs, err := store.Districts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("district lookup: %w", err)
	}

	candidates := make([]*Candidate, 0, len(ids))
	for _, id := range ids {
		c := &Candidate{Semantic: aggs[id]}
		if rec, ok := byID[id]; ok {
			c.Scores = *rec
		} else {
			c.Scores = registry.ScoreRecord{DistrictID: id}
		}
		if d, ok := attrs[id]; ok {
			c.District = d
		} else {
			c.District = &registry.District{ID: id}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
