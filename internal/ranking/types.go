// Package ranking implements the command-search pipeline: intent
// classification, grant criteria extraction, suppression, semantic
// aggregation over top-K vector hits, filtering, composite scoring,
// confidence estimation, and explanation generation.
package ranking

import (
	"time"

	"github.com/schoolsignal/rankd/internal/registry"
)

// Intent is the classified purpose of a search prompt.
type Intent string

const (
	IntentInsightsBriefing Intent = "insights_briefing"
	IntentGrantMatch       Intent = "grant_match"
	IntentNextUncontacted  Intent = "next_hottest_uncontacted"
	IntentDistrictSearch   Intent = "district_search"
)

// Band is the discrete confidence tier attached to every explanation.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// EngagementEvent records a prior outreach touch for a district. Events
// are supplied by the caller per request and only drive suppression.
type EngagementEvent struct {
	DistrictID string    `json:"district_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
}

// EngagementSignals carries the caller's engagement history and the
// trailing suppression window.
type EngagementSignals struct {
	Events          []EngagementEvent `json:"events,omitempty"`
	SuppressionDays int               `json:"suppression_days,omitempty"`
}

// GrantCriteria holds eligibility thresholds. All fields are optional;
// nil means the constraint was not stated. Text-derived criteria merge
// with explicit caller overrides, overrides winning per field.
type GrantCriteria struct {
	FRPLMin       *float64 `json:"frpl_min,omitempty"`
	MinorityMin   *float64 `json:"minority_min,omitempty"`
	EnrollmentMin *int     `json:"enrollment_min,omitempty"`
	States        []string `json:"states,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
}

// LeadFilters are caller-supplied hard filters applied before scoring.
type LeadFilters struct {
	Limit             int      `json:"limit,omitempty"`
	States            []string `json:"states,omitempty"`
	ExcludeIDs        []string `json:"exclude_ids,omitempty"`
	MinTotalScore     float64  `json:"min_total_score,omitempty"`
	MinReadinessScore float64  `json:"min_readiness_score,omitempty"`
	MinActivationScore float64 `json:"min_activation_score,omitempty"`
}

// Attachment carries pasted or uploaded text scanned for grant criteria
// alongside the prompt.
type Attachment struct {
	Text string `json:"text"`
}

// SearchRequest is the full command-search input.
type SearchRequest struct {
	Prompt              string             `json:"prompt"`
	Attachment          *Attachment        `json:"attachment,omitempty"`
	ConfidenceThreshold float64            `json:"confidence_threshold,omitempty"`
	LeadFilters         *LeadFilters       `json:"lead_filters,omitempty"`
	EngagementSignals   *EngagementSignals `json:"engagement_signals,omitempty"`
	GrantCriteria       *GrantCriteria     `json:"grant_criteria,omitempty"`
}

// SemanticAggregate summarizes a district's top-K chunk hits.
type SemanticAggregate struct {
	MaxSimilarity float64 `json:"max_similarity"`
	AvgSimilarity float64 `json:"avg_similarity"`
	HitCount      int     `json:"hit_count"`
}

// Candidate is the per-request join of a district's attributes, static
// taxonomy scores, and semantic aggregate. Not persisted anywhere.
type Candidate struct {
	District  *registry.District
	Scores    registry.ScoreRecord
	Semantic  SemanticAggregate
	Composite float64
}

// TopSignal is one contributing signal in an explanation, ordered by
// weight.
type TopSignal struct {
	Signal   string  `json:"signal"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
	Reason   string  `json:"reason,omitempty"`
}

// SourceExcerpt ties a matched keyword to the document text behind it.
type SourceExcerpt struct {
	Keyword   string `json:"keyword"`
	Excerpt   string `json:"excerpt"`
	SourceURL string `json:"source_url,omitempty"`
}

// Dampener records a signal that lowered the result's reliability.
type Dampener struct {
	Signal string `json:"signal"`
	Impact string `json:"impact"`
	Reason string `json:"reason"`
}

// Explanation is the per-result rationale. Beyond the full-explanation
// depth the summary is a fixed placeholder and the lists are empty.
type Explanation struct {
	Confidence     float64         `json:"confidence"`
	Band           Band            `json:"band"`
	Summary        string          `json:"summary"`
	TopSignals     []TopSignal     `json:"top_signals,omitempty"`
	SourceExcerpts []SourceExcerpt `json:"source_excerpts,omitempty"`
	Dampeners      []Dampener      `json:"dampeners,omitempty"`
}

// Action is a derived follow-up link for a ranked district.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// RankedResult is one entry in the final ordered list.
type RankedResult struct {
	DistrictID  string            `json:"district_id"`
	Name        string            `json:"name"`
	City        string            `json:"city,omitempty"`
	State       string            `json:"state,omitempty"`
	Readiness   float64           `json:"readiness"`
	Alignment   float64           `json:"alignment"`
	Activation  float64           `json:"activation"`
	Branding    float64           `json:"branding"`
	Total       float64           `json:"total"`
	Composite   float64           `json:"composite"`
	Semantic    SemanticAggregate `json:"semantic"`
	Explanation Explanation       `json:"explanation"`
	Actions     []Action          `json:"actions,omitempty"`
}

// Reasoning is the audit trail of stage-by-stage candidate counts.
type Reasoning struct {
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
}

// StateInsight is one line of the insights-briefing side aggregate.
type StateInsight struct {
	State         string  `json:"state"`
	DistrictCount int     `json:"district_count"`
	AvgComposite  float64 `json:"avg_composite"`
}

// SearchResponse is the full command-search output.
type SearchResponse struct {
	Intent              Intent         `json:"intent"`
	ConfidenceThreshold float64        `json:"confidence_threshold"`
	Explanation         string         `json:"explanation"`
	Reasoning           Reasoning      `json:"reasoning"`
	GrantCriteria       GrantCriteria  `json:"grant_criteria"`
	Districts           []RankedResult `json:"districts"`
	Insights            []StateInsight `json:"insights,omitempty"`
	GeneratedAt         time.Time      `json:"generated_at"`
}
