// Package registry defines access to the district registry and the
// keyword score store. Both are owned by the dashboard's storage layer;
// rankd consumes them read-only through these interfaces.
package registry

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a district is absent from the registry or
// score store. Callers must surface this distinctly from an empty result
// set.
var ErrNotFound = errors.New("district not found")

// District holds display, location, and eligibility attributes for a
// school district.
type District struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`

	// Eligibility attributes. Nil means the measure is unknown for this
	// district; grant filters treat unknown as zero.
	Enrollment      *int     `json:"enrollment,omitempty"`
	FRPLPercent     *float64 `json:"frpl_percent,omitempty"`
	MinorityPercent *float64 `json:"minority_percent,omitempty"`

	// Website is used to derive contact actions on ranked results.
	Website string `json:"website,omitempty"`
}

// MatchEvidence is a raw per-category keyword match from document scans.
type MatchEvidence struct {
	Keyword    string `json:"keyword"`
	Category   string `json:"category"`
	Excerpt    string `json:"excerpt"`
	DocumentID string `json:"document_id"`
	SourceURL  string `json:"source_url,omitempty"`
}

// ScoreRecord holds the four taxonomy sub-scores for a district plus the
// derived total and the raw match evidence behind them.
type ScoreRecord struct {
	DistrictID string          `json:"district_id"`
	Readiness  float64         `json:"readiness"`
	Alignment  float64         `json:"alignment"`
	Activation float64         `json:"activation"`
	Branding   float64         `json:"branding"`
	Total      float64         `json:"total"`
	Matches    []MatchEvidence `json:"matches,omitempty"`
}

// DistrictStore provides read access to district attributes.
type DistrictStore interface {
	// District returns a single district, or ErrNotFound.
	District(ctx context.Context, id string) (*District, error)

	// Districts returns attributes for the given IDs. Missing IDs are
	// absent from the map; bulk lookups never fail on a miss.
	Districts(ctx context.Context, ids []string) (map[string]*District, error)
}

// ScoreStore provides read access to taxonomy scores.
type ScoreStore interface {
	// Score returns the score record for one district, or ErrNotFound.
	Score(ctx context.Context, districtID string) (*ScoreRecord, error)

	// AllScores returns every score record. The registry is of modest
	// size (thousands of districts); the pipeline joins in memory.
	AllScores(ctx context.Context) ([]*ScoreRecord, error)
}
