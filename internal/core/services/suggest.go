package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// SuggestionService produces autocomplete and related-query
// suggestions from the persisted query history. It never inspects the
// index itself.
type SuggestionService struct {
	events driven.EventStore
	cfg    driven.ConfigSource
}

// NewSuggestionService creates a suggestion service.
func NewSuggestionService(events driven.EventStore, cfg driven.ConfigSource) *SuggestionService {
	return &SuggestionService{events: events, cfg: cfg}
}

// Suggest returns previously-issued queries containing the partial
// query, ranked by historical frequency then by shortest length.
func (s *SuggestionService) Suggest(ctx context.Context, partial string) ([]string, error) {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" {
		return nil, nil
	}

	max := s.cfg.Config().MaxSuggestions
	counts, err := s.events.MatchQueries(ctx, partial, max)
	if err != nil {
		return nil, fmt.Errorf("match queries: %w", err)
	}

	suggestions := make([]string, 0, len(counts))
	for _, c := range counts {
		suggestions = append(suggestions, c.Query)
	}
	return suggestions, nil
}

// Related returns historical queries sharing a token with the executed
// query, excluding the query itself. Used to populate the response's
// suggestion list.
func (s *SuggestionService) Related(ctx context.Context, query string, tokens []string) ([]string, error) {
	max := s.cfg.Config().MaxSuggestions
	query = strings.ToLower(strings.TrimSpace(query))

	merged := make(map[string]int)
	for _, tok := range tokens {
		counts, err := s.events.MatchQueries(ctx, tok, max)
		if err != nil {
			return nil, fmt.Errorf("match queries: %w", err)
		}
		for _, c := range counts {
			if c.Query == query {
				continue
			}
			if c.Frequency > merged[c.Query] {
				merged[c.Query] = c.Frequency
			}
		}
	}

	related := make([]string, 0, len(merged))
	for q := range merged {
		related = append(related, q)
	}
	sort.Slice(related, func(i, j int) bool {
		if merged[related[i]] != merged[related[j]] {
			return merged[related[i]] > merged[related[j]]
		}
		if len(related[i]) != len(related[j]) {
			return len(related[i]) < len(related[j])
		}
		return related[i] < related[j]
	})

	if len(related) > max {
		related = related[:max]
	}
	return related, nil
}
