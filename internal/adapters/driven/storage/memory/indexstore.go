package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// Ensure IndexStore implements the interfaces.
var (
	_ driven.IndexStore   = (*IndexStore)(nil)
	_ driven.TypeSearcher = (*IndexStore)(nil)
)

// entryKey identifies one entry across content types.
type entryKey struct {
	t  domain.ContentType
	id string
}

// IndexStore is an in-memory implementation of driven.IndexStore. It
// doubles as a fallback-style TypeSearcher so tests can exercise the
// full pipeline without a database.
type IndexStore struct {
	mu      sync.RWMutex
	entries map[entryKey]domain.IndexEntry
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		entries: make(map[entryKey]domain.IndexEntry),
	}
}

// Upsert stores or replaces an entry whole.
func (s *IndexStore) Upsert(_ context.Context, entry domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryKey{entry.Type, entry.ID}] = entry
	return nil
}

// Delete removes an entry. Deleting an absent entry is a no-op.
func (s *IndexStore) Delete(_ context.Context, t domain.ContentType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, entryKey{t, id})
	return nil
}

// Get retrieves an entry by identity.
func (s *IndexStore) Get(_ context.Context, t domain.ContentType, id string) (*domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[entryKey{t, id}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// ReplaceType swaps all entries of one content type.
func (s *IndexStore) ReplaceType(_ context.Context, t domain.ContentType, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.t == t {
			delete(s.entries, key)
		}
	}
	for _, entry := range entries {
		s.entries[entryKey{t, entry.ID}] = entry
	}
	return nil
}

// Count returns the number of entries for a content type.
func (s *IndexStore) Count(_ context.Context, t domain.ContentType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for key := range s.entries {
		if key.t == t {
			n++
		}
	}
	return n, nil
}

// Search matches entries by substring over the normalised fields, in
// the manner of the fallback strategy.
func (s *IndexStore) Search(_ context.Context, plan *domain.SearchPlan, t domain.ContentType, limit int) ([]driven.Candidate, error) {
	tokens := plan.Tokens
	if len(tokens) == 0 {
		if plan.Sanitised == "" {
			return nil, nil
		}
		tokens = []string{plan.Sanitised}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []driven.Candidate
	for key, entry := range s.entries {
		if key.t != t {
			continue
		}
		if !matchesFilters(&entry, plan) {
			continue
		}

		hits := make(map[string]int, 3)
		for _, tok := range tokens {
			hits["title"] += strings.Count(entry.NormTitle, tok)
			hits["body"] += strings.Count(entry.NormBody, tok)
			hits["tags"] += strings.Count(entry.NormTags, tok)
		}
		if hits["title"]+hits["body"]+hits["tags"] == 0 {
			continue
		}

		candidates = append(candidates, driven.Candidate{
			Entry:     entry,
			FieldHits: hits,
			Strategy:  driven.StrategyFallback,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}

// matchesFilters applies the plan's workspace, author and date filters.
func matchesFilters(entry *domain.IndexEntry, plan *domain.SearchPlan) bool {
	if plan.WorkspaceID != "" && entry.WorkspaceID != plan.WorkspaceID {
		return false
	}
	if plan.Author != "" && entry.OwnerID != plan.Author {
		return false
	}
	if plan.DateRange != nil {
		if !plan.DateRange.From.IsZero() && entry.CreatedAt.Before(plan.DateRange.From) {
			return false
		}
		if !plan.DateRange.To.IsZero() && entry.CreatedAt.After(plan.DateRange.To) {
			return false
		}
	}
	return true
}
