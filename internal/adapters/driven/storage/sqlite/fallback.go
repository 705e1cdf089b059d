package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// fallbackSearcher implements driven.TypeSearcher with plain substring
// matching over the normalised fields. It carries no engine rank;
// instead it reports per-field hit counts for the scorer to weigh.
type fallbackSearcher struct {
	store *Store
}

var _ driven.TypeSearcher = (*fallbackSearcher)(nil)

// Search selects entries where any query token appears as a substring
// of a normalised field, honouring the plan's filters in SQL. Hit
// counts per field are computed over the fetched rows.
func (s *fallbackSearcher) Search(ctx context.Context, plan *domain.SearchPlan, t domain.ContentType, limit int) ([]driven.Candidate, error) {
	tokens := plan.Tokens
	if len(tokens) == 0 {
		if plan.Sanitised == "" {
			return nil, nil
		}
		tokens = []string{plan.Sanitised}
	}

	query := `
		SELECT ` + entryColumns + `
		FROM index_entries
		WHERE content_type = ?`
	args := []any{string(t)}

	var likes []string
	for _, tok := range tokens {
		pattern := "%" + escapeLike(tok) + "%"
		likes = append(likes,
			`(norm_title LIKE ? ESCAPE '\' OR norm_body LIKE ? ESCAPE '\' OR norm_tags LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	query += " AND (" + strings.Join(likes, " OR ") + ")"

	query, args = appendPlanFilters(query, args, plan, "")
	query += " ORDER BY updated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fallback matches: %w", err)
	}
	defer rows.Close()

	var candidates []driven.Candidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntryRows(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, driven.Candidate{
			Entry:     *entry,
			FieldHits: countFieldHits(entry, tokens),
			Strategy:  driven.StrategyFallback,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fallback matches: %w", err)
	}

	return candidates, nil
}

// countFieldHits counts token occurrences per normalised field.
func countFieldHits(entry *domain.IndexEntry, tokens []string) map[string]int {
	hits := make(map[string]int, 3)
	for _, tok := range tokens {
		hits["title"] += strings.Count(entry.NormTitle, tok)
		hits["body"] += strings.Count(entry.NormBody, tok)
		hits["tags"] += strings.Count(entry.NormTags, tok)
	}
	return hits
}

// escapeLike escapes LIKE wildcard characters in a literal token.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
