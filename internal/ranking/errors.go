package ranking

import "errors"

var (
	// ErrRankingUnavailable signals that the embedding service or the
	// similarity index failed. The whole request aborts; there are no
	// partial semantic rankings.
	ErrRankingUnavailable = errors.New("ranking unavailable")

	// ErrDistrictNotFound signals that an on-demand lookup targeted a
	// district absent from the registry. Distinct from a search that
	// legitimately filters down to zero results.
	ErrDistrictNotFound = errors.New("district not found")
)
