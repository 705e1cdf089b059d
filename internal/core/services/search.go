package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
	"github.com/nestdesk/searchcore/internal/core/ports/driving"
	"github.com/nestdesk/searchcore/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService is the explicitly constructed entry point of the
// subsystem. It owns the query pipeline: plan, fan out per content
// type, score, permission-filter, paginate, facet, suggest, and hand
// the event to analytics.
type SearchService struct {
	cfg       driven.ConfigSource
	searchers map[domain.ContentType]driven.TypeSearcher

	planner   *Planner
	scorer    *Scorer
	facets    *FacetAggregator
	perms     *PermissionFilter
	suggester *SuggestionService
	analytics *AnalyticsRecorder

	closeOnce sync.Once
	closed    chan struct{}
}

// NewSearchService wires the pipeline. The searchers map selects the
// strategy (native or fallback) per content type at configuration
// time; types without a searcher are skipped with a warning at query
// time.
func NewSearchService(
	cfg driven.ConfigSource,
	searchers map[domain.ContentType]driven.TypeSearcher,
	authz driven.Authorizer,
	events driven.EventStore,
) *SearchService {
	return &SearchService{
		cfg:       cfg,
		searchers: searchers,
		planner:   NewPlanner(cfg),
		scorer:    NewScorer(cfg),
		facets:    NewFacetAggregator(),
		perms:     NewPermissionFilter(authz),
		suggester: NewSuggestionService(events, cfg),
		analytics: NewAnalyticsRecorder(events, cfg),
		closed:    make(chan struct{}),
	}
}

// Search executes a multi-type query. See driving.SearchService for
// the error contract.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	start := time.Now()

	select {
	case <-s.closed:
		return nil, domain.ErrShuttingDown
	default:
	}

	plan, err := s.planner.Plan(query, opts)
	if err != nil {
		if errors.Is(err, domain.ErrQueryTooShort) {
			// Contract: a success response with a message, not an error.
			return &domain.SearchResponse{
				Query:          strings.TrimSpace(query),
				Results:        []domain.SearchResult{},
				ResponseTimeMs: time.Since(start).Milliseconds(),
				Message:        "Query too short or empty",
			}, nil
		}
		return nil, err
	}

	if err := s.perms.CheckWorkspaceScope(ctx, plan.UserID, plan.WorkspaceID); err != nil {
		return nil, err
	}

	candidates := s.executePlan(ctx, plan)

	scored := s.scorer.Score(candidates, plan)
	filtered := s.perms.Filter(ctx, scored, plan.UserID)

	cfg := s.cfg.Config()
	if len(filtered) > cfg.MaxResults {
		filtered = filtered[:cfg.MaxResults]
	}

	if plan.IncludeHighlights {
		s.fillHighlights(filtered, candidates, plan)
	}

	total := len(filtered)
	page := paginate(filtered, plan.Offset, plan.Limit)

	// Facets and suggestions are independent; compute them in parallel.
	var facets *domain.Facets
	var suggestions []string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		facets = s.facets.Aggregate(filtered)
	}()
	go func() {
		defer wg.Done()
		related, rErr := s.suggester.Related(ctx, plan.Sanitised, plan.Tokens)
		if rErr != nil {
			logger.Debug("related queries unavailable: %v", rErr)
			return
		}
		suggestions = related
	}()
	wg.Wait()

	searchID := uuid.NewString()
	elapsed := time.Since(start).Milliseconds()

	s.analytics.Record(domain.SearchEvent{
		ID:             searchID,
		Query:          plan.Sanitised,
		UserID:         plan.UserID,
		ResultsCount:   total,
		ResponseTimeMs: elapsed,
		Types:          plan.Types,
		WorkspaceID:    plan.WorkspaceID,
		Timestamp:      time.Now(),
	})

	return &domain.SearchResponse{
		Query:          plan.Sanitised,
		Results:        page,
		TotalResults:   total,
		HasMore:        plan.Offset+len(page) < total,
		ResponseTimeMs: elapsed,
		Facets:         facets,
		Suggestions:    suggestions,
		SearchID:       searchID,
	}, nil
}

// executePlan fans out one task per content type, bounded by the
// number of registered types. A failing or overrunning type
// contributes nothing and is logged; the request itself never fails on
// a per-type error.
func (s *SearchService) executePlan(ctx context.Context, plan *domain.SearchPlan) []driven.Candidate {
	cfg := s.cfg.Config()

	perType := make([][]driven.Candidate, len(plan.Types))
	g := &errgroup.Group{}
	g.SetLimit(len(plan.Types))

	for i, t := range plan.Types {
		i, t := i, t
		g.Go(func() error {
			searcher, ok := s.searchers[t]
			if !ok {
				logger.Warn("no searcher configured for content type %s", t)
				return nil
			}

			typeCtx, cancel := context.WithTimeout(ctx, cfg.TypeTimeout)
			defer cancel()

			hits, err := searcher.Search(typeCtx, plan, t, cfg.PerTypeLimit)
			if err != nil {
				logger.Warn("search failed for content type %s: %v", t, err)
				return nil
			}
			perType[i] = hits
			return nil
		})
	}
	_ = g.Wait() // Per-type errors are contained above.

	var merged []driven.Candidate
	for _, hits := range perType {
		merged = append(merged, hits...)
	}
	return merged
}

// fillHighlights attaches snippets to results that did not receive
// engine-generated ones, matching query terms against body sentences.
func (s *SearchService) fillHighlights(results []domain.SearchResult, candidates []driven.Candidate, plan *domain.SearchPlan) {
	type key struct {
		t  domain.ContentType
		id string
	}
	bodies := make(map[key]string, len(candidates))
	for i := range candidates {
		e := &candidates[i].Entry
		bodies[key{e.Type, e.ID}] = e.Body
	}

	for i := range results {
		if len(results[i].Highlights) > 0 {
			continue
		}
		body, ok := bodies[key{results[i].Type, results[i].ID}]
		if !ok {
			continue
		}
		results[i].Highlights = generateHighlights(body, plan.Tokens)
	}
}

// generateHighlights creates up to three snippets containing a query
// term.
func generateHighlights(content string, tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				if len(sentence) > 200 {
					sentence = sentence[:200] + "..."
				}
				highlights = append(highlights, sentence)
				break
			}
		}
		if len(highlights) >= 3 {
			break
		}
	}
	return highlights
}

// splitSentences splits content on common sentence terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// paginate applies offset and limit.
func paginate(results []domain.SearchResult, offset, limit int) []domain.SearchResult {
	if offset >= len(results) {
		return []domain.SearchResult{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

// LogClick attaches a click to a prior search event. Best-effort: a
// failure is logged and reported but has no other effect.
func (s *SearchService) LogClick(ctx context.Context, searchID, resultID string, resultType domain.ContentType) error {
	if err := s.analytics.AttachClick(ctx, searchID, resultID, resultType); err != nil {
		logger.Debug("click attribution failed for search %s: %v", searchID, err)
		return err
	}
	return nil
}

// Suggest returns autocomplete candidates for a partial query.
func (s *SearchService) Suggest(ctx context.Context, partial string) ([]string, error) {
	return s.suggester.Suggest(ctx, partial)
}

// Stats returns the in-memory analytics aggregates.
func (s *SearchService) Stats() domain.AnalyticsSnapshot {
	return s.analytics.Snapshot()
}

// Close flushes buffered analytics and stops background workers.
func (s *SearchService) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	return s.analytics.Close()
}
