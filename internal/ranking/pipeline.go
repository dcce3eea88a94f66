package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolsignal/rankd/internal/audit"
	"github.com/schoolsignal/rankd/internal/embeddings"
	"github.com/schoolsignal/rankd/internal/registry"
	"github.com/schoolsignal/rankd/internal/similarity"
)

const defaultConfidenceThreshold = 0.6

// Config bounds the retrieval stage and the result shaping.
type Config struct {
	TopK                 int
	SimilarityFloor      float64
	DefaultLimit         int
	FullExplanationDepth int
	BriefingLimit        int
	RetrievalTimeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = 500
	}
	if c.SimilarityFloor <= 0 {
		c.SimilarityFloor = 0.25
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 25
	}
	if c.FullExplanationDepth <= 0 {
		c.FullExplanationDepth = 25
	}
	if c.BriefingLimit <= 0 {
		c.BriefingLimit = 10
	}
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = 10 * time.Second
	}
}

// Pipeline wires the command-search stages over injected collaborators.
// It is stateless across requests; every search is a one-shot snapshot
// combined in memory.
type Pipeline struct {
	cfg       Config
	embedder  embeddings.Embedder
	index     similarity.Index
	districts registry.DistrictStore
	scores    registry.ScoreStore
	publisher audit.Publisher
	logger    *zap.Logger
	metrics   *Metrics
	now       func() time.Time
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithPublisher(pub audit.Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithClock overrides the time source; used by tests exercising the
// suppression window.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(cfg Config, embedder embeddings.Embedder, index similarity.Index, districts registry.DistrictStore, scores registry.ScoreStore, opts ...Option) *Pipeline {
	cfg.applyDefaults()
	p := &Pipeline{
		cfg:       cfg,
		embedder:  embedder,
		index:     index,
		districts: districts,
		scores:    scores,
		publisher: audit.NopPublisher{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search runs the full pipeline for one prompt. Embedding or index
// failure aborts the whole request; there are no partial semantic
// rankings. Zero results after filtering is a normal response, not an
// error.
func (p *Pipeline) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	start := p.now()
	intent := ClassifyIntent(req.Prompt)

	resp, err := p.search(ctx, req, intent)
	if p.metrics != nil {
		results := 0
		if resp != nil {
			results = len(resp.Districts)
		}
		p.metrics.RecordSearch(ctx, intent, time.Since(start), results, err)
	}
	return resp, err
}

func (p *Pipeline) search(ctx context.Context, req *SearchRequest, intent Intent) (*SearchResponse, error) {
	threshold := req.ConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}
	limit := p.cfg.DefaultLimit
	if req.LeadFilters != nil && req.LeadFilters.Limit > 0 {
		limit = req.LeadFilters.Limit
	}
	if intent == IntentInsightsBriefing && limit > p.cfg.BriefingLimit {
		limit = p.cfg.BriefingLimit
	}

	trace := &Trace{}
	trace.Addf("Classified intent as %s.", intent)

	attachment := ""
	if req.Attachment != nil {
		attachment = req.Attachment.Text
	}
	criteria := MergeCriteria(ExtractCriteria(req.Prompt, attachment), req.GrantCriteria)

	var excludeIDs []string
	if req.LeadFilters != nil {
		excludeIDs = req.LeadFilters.ExcludeIDs
	}
	suppressed := BuildSuppression(req.EngagementSignals, excludeIDs, p.now())

	hits, err := p.retrieve(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}
	aggs := AggregateChunks(hits)
	trace.Addf("Retrieved %d chunk hits covering %d districts (top-%d above similarity %.2f).",
		len(hits), len(aggs), p.cfg.TopK, p.cfg.SimilarityFloor)

	scoreRecords, err := p.scores.AllScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: score store: %v", ErrRankingUnavailable, err)
	}
	candidates, err := assembleCandidates(ctx, p.districts, scoreRecords, aggs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRankingUnavailable, err)
	}
	trace.Addf("Assembled %d candidates from score records and semantic hits.", len(candidates))

	candidates = applyFilters(candidates, suppressed, req.LeadFilters, criteria, trace)

	floor := confidenceFloor(threshold)
	scored := candidates[:0:0]
	for _, c := range candidates {
		c.Composite = CompositeScore(c, criteria)
		if Confidence(c.Composite, c.Semantic.AvgSimilarity) >= floor {
			scored = append(scored, c)
		}
	}
	trace.Addf("Confidence floor %.2f kept %d candidates.", floor, len(scored))

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Composite != scored[j].Composite {
			return scored[i].Composite > scored[j].Composite
		}
		return scored[i].District.ID < scored[j].District.ID
	})

	var insights []StateInsight
	if intent == IntentInsightsBriefing {
		insights = stateInsights(scored)
	}

	total := len(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	trace.Addf("Returning top %d of %d ranked districts.", len(scored), total)

	results := make([]RankedResult, 0, len(scored))
	for i, c := range scored {
		var exp Explanation
		if i < p.cfg.FullExplanationDepth {
			exp = BuildExplanation(c, c.Composite, threshold)
		} else {
			exp = placeholderExplanation(c.Composite, c.Semantic.AvgSimilarity)
		}
		results = append(results, rankedResult(c, exp))
	}

	resp := &SearchResponse{
		Intent:              intent,
		ConfidenceThreshold: threshold,
		Explanation:         fmt.Sprintf("Ranked %d districts for %s.", len(results), intent),
		Reasoning: Reasoning{
			Summary: fmt.Sprintf("%d pipeline stages, %d districts returned.", len(trace.Steps()), len(results)),
			Steps:   trace.Steps(),
		},
		GrantCriteria: criteria,
		Districts:     results,
		Insights:      insights,
		GeneratedAt:   p.now().UTC(),
	}
	p.publishTrace(ctx, req, resp)
	return resp, nil
}

// retrieve embeds the prompt and queries the index, both under the
// retrieval deadline. Either failing is fatal for the request.
func (p *Pipeline) retrieve(ctx context.Context, prompt string) ([]similarity.ChunkHit, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.RetrievalTimeout)
	defer cancel()

	vector, err := p.embedder.EmbedQuery(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding service: %v", ErrRankingUnavailable, err)
	}
	hits, err := p.index.TopChunks(ctx, vector, p.cfg.TopK, p.cfg.SimilarityFloor)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity index: %v", ErrRankingUnavailable, err)
	}
	return hits, nil
}

// Explain recomputes a standalone explanation for a single district,
// without semantic context. A district missing from the registry is a
// not-found condition, distinct from an empty search.
func (p *Pipeline) Explain(ctx context.Context, districtID string, threshold float64) (*Explanation, error) {
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}
	d, err := p.districts.District(ctx, districtID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDistrictNotFound, districtID)
		}
		return nil, fmt.Errorf("%w: registry: %v", ErrRankingUnavailable, err)
	}

	rec, err := p.scores.Score(ctx, districtID)
	if err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("%w: score store: %v", ErrRankingUnavailable, err)
		}
		// A district without score rows still explains, with all-zero
		// evidence.
		rec = &registry.ScoreRecord{DistrictID: districtID}
	}

	exp := StandaloneExplanation(d, rec, threshold)
	return &exp, nil
}

func rankedResult(c *Candidate, exp Explanation) RankedResult {
	r := RankedResult{
		DistrictID:  c.District.ID,
		Name:        c.District.Name,
		City:        c.District.City,
		State:       c.District.State,
		Readiness:   c.Scores.Readiness,
		Alignment:   c.Scores.Alignment,
		Activation:  c.Scores.Activation,
		Branding:    c.Scores.Branding,
		Total:       c.Scores.Total,
		Composite:   c.Composite,
		Semantic:    c.Semantic,
		Explanation: exp,
	}
	if c.District.Website != "" {
		r.Actions = append(r.Actions, Action{Label: "Visit district website", URL: c.District.Website})
	}
	return r
}

// stateInsights aggregates the scored set into the top three states by
// average composite score.
func stateInsights(scored []*Candidate) []StateInsight {
	type acc struct {
		sum   float64
		count int
	}
	byState := map[string]*acc{}
	for _, c := range scored {
		if c.District.State == "" {
			continue
		}
		a := byState[c.District.State]
		if a == nil {
			a = &acc{}
			byState[c.District.State] = a
		}
		a.sum += c.Composite
		a.count++
	}
	insights := make([]StateInsight, 0, len(byState))
	for state, a := range byState {
		insights = append(insights, StateInsight{
			State:         state,
			DistrictCount: a.count,
			AvgComposite:  a.sum / float64(a.count),
		})
	}
	sort.Slice(insights, func(i, j int) bool {
		if insights[i].AvgComposite != insights[j].AvgComposite {
			return insights[i].AvgComposite > insights[j].AvgComposite
		}
		return insights[i].State < insights[j].State
	})
	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

func (p *Pipeline) publishTrace(ctx context.Context, req *SearchRequest, resp *SearchResponse) {
	event := audit.TraceEvent{
		RequestID:   uuid.NewString(),
		Intent:      string(resp.Intent),
		Prompt:      req.Prompt,
		Steps:       resp.Reasoning.Steps,
		ResultCount: len(resp.Districts),
		GeneratedAt: resp.GeneratedAt,
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish reasoning trace",
			zap.String("request_id", event.RequestID),
			zap.Error(err))
	}
}
