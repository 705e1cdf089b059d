package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// disallowed matches every character outside the query allow-list:
// word characters, whitespace, hyphen, dot and at-sign.
var disallowed = regexp.MustCompile(`[^\w\s.@-]+`)

// Planner validates and normalises raw queries into executable plans.
type Planner struct {
	cfg driven.ConfigSource
}

// NewPlanner creates a planner.
func NewPlanner(cfg driven.ConfigSource) *Planner {
	return &Planner{cfg: cfg}
}

// Plan sanitises the raw query, resolves filters against the content
// type registry and produces a SearchPlan. It returns
// domain.ErrQueryTooShort or domain.ErrInvalidFilters on rejection.
func (p *Planner) Plan(raw string, opts domain.SearchOptions) (*domain.SearchPlan, error) {
	cfg := p.cfg.Config()

	sanitised := sanitiseQuery(raw, cfg.MaxQueryLength)
	if utf8.RuneCountInString(sanitised) < cfg.MinQueryLength {
		return nil, domain.ErrQueryTooShort
	}

	if opts.DateRange != nil {
		if err := opts.DateRange.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, fmt.Errorf("%w: negative pagination", domain.ErrInvalidFilters)
	}

	types, err := resolveTypes(opts.Types)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit == 0 {
		limit = cfg.DefaultLimit
	}
	if limit > cfg.MaxResults {
		limit = cfg.MaxResults
	}

	sortBy := opts.SortBy
	switch sortBy {
	case "":
		sortBy = domain.SortByRelevance
	case domain.SortByRelevance, domain.SortByDate:
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidFilters, opts.SortBy)
	}

	return &domain.SearchPlan{
		Raw:               raw,
		Sanitised:         sanitised,
		Tokens:            tokenise(sanitised),
		Types:             types,
		DateRange:         opts.DateRange,
		Author:            opts.Author,
		Limit:             limit,
		Offset:            opts.Offset,
		SortBy:            sortBy,
		UserID:            opts.UserID,
		WorkspaceID:       opts.WorkspaceID,
		IncludeHighlights: opts.IncludeHighlights,
	}, nil
}

// sanitiseQuery trims, strips disallowed characters, collapses
// whitespace and truncates to maxLen runes.
func sanitiseQuery(raw string, maxLen int) string {
	s := disallowed.ReplaceAllString(raw, "")
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		s = strings.TrimSpace(string(runes[:maxLen]))
	}
	return s
}

// tokenise splits on whitespace and discards tokens shorter than two
// characters.
func tokenise(sanitised string) []string {
	fields := strings.Fields(strings.ToLower(sanitised))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// resolveTypes validates the requested types against the registry,
// defaulting to all types when unspecified.
func resolveTypes(requested []domain.ContentType) ([]domain.ContentType, error) {
	if len(requested) == 0 {
		return domain.AllContentTypes(), nil
	}

	seen := make(map[domain.ContentType]bool, len(requested))
	types := make([]domain.ContentType, 0, len(requested))
	for _, t := range requested {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidFilters, t)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	return types, nil
}
