package driven

import (
	"context"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

// IndexStore persists index entries. The index synchroniser is the only
// writer; searchers read through TypeSearcher implementations backed by
// the same storage.
type IndexStore interface {
	// Upsert stores or replaces an entry whole. Partial updates are
	// not expressible through this interface by design.
	Upsert(ctx context.Context, entry domain.IndexEntry) error

	// Delete removes an entry. Deleting an absent entry is a no-op.
	Delete(ctx context.Context, t domain.ContentType, id string) error

	// Get retrieves an entry, or domain.ErrNotFound.
	Get(ctx context.Context, t domain.ContentType, id string) (*domain.IndexEntry, error)

	// ReplaceType atomically swaps all entries of one content type,
	// used for full rebuilds. Concurrent readers observe either the
	// previous or the new state, never a mix.
	ReplaceType(ctx context.Context, t domain.ContentType, entries []domain.IndexEntry) error

	// Count returns the number of entries for a content type.
	Count(ctx context.Context, t domain.ContentType) (int, error)
}

// Strategy identifies how a candidate was matched.
type Strategy string

const (
	// StrategyNative is the token-indexed engine (FTS) path.
	StrategyNative Strategy = "native"

	// StrategyFallback is the substring (LIKE) path.
	StrategyFallback Strategy = "fallback"
)

// Candidate is a raw per-type match prior to scoring.
type Candidate struct {
	// Entry is the matched index entry.
	Entry domain.IndexEntry

	// Rank is the engine-native relevance signal, higher is better.
	// Zero for the fallback strategy.
	Rank float64

	// FieldHits counts substring occurrences per field for the
	// fallback strategy. Nil for the native strategy.
	FieldHits map[string]int

	// Snippets are engine-generated highlights, when available.
	Snippets []string

	// Strategy records which path produced this candidate.
	Strategy Strategy
}

// TypeSearcher executes the plan against one content type. Both
// strategies honour the plan's workspace, author and date filters
// inside the underlying query and return at most limit candidates.
type TypeSearcher interface {
	Search(ctx context.Context, plan *domain.SearchPlan, t domain.ContentType, limit int) ([]Candidate, error)
}
