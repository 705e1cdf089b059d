package driving

import (
	"context"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

// SearchService is the primary entry point of the subsystem.
type SearchService interface {
	// Search executes a multi-type query. A too-short query yields an
	// empty response with a message, not an error. Malformed filters
	// return domain.ErrInvalidFilters; a workspace scope the requester
	// cannot access returns domain.ErrAccessDenied. All other internal
	// failures degrade to fewer results.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)

	// LogClick attaches a click to a prior search event. Best-effort.
	LogClick(ctx context.Context, searchID, resultID string, resultType domain.ContentType) error

	// Suggest returns autocomplete candidates for a partial query.
	Suggest(ctx context.Context, partial string) ([]string, error)

	// Stats returns the in-memory analytics aggregates.
	Stats() domain.AnalyticsSnapshot

	// Close flushes buffered analytics and stops background workers.
	Close() error
}
