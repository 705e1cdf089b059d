package driven

import (
	"context"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

// EventStore persists analytics events and the historical
// query-frequency table backing suggestions.
type EventStore interface {
	// AppendEvents durably appends a batch of search events.
	AppendEvents(ctx context.Context, events []domain.SearchEvent) error

	// AttachClick records a click against a prior event, at most once.
	AttachClick(ctx context.Context, searchID, resultID string, resultType domain.ContentType) error

	// RecordQueries increments the frequency of each issued query.
	RecordQueries(ctx context.Context, queries []string) error

	// MatchQueries returns historical queries containing the partial
	// string, ranked by frequency descending then shortest first.
	MatchQueries(ctx context.Context, partial string, limit int) ([]domain.QueryCount, error)
}
