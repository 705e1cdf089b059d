package driving

import (
	"context"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

// IndexSynchroniser maintains the index against the content change
// feed. It is the only writer to the index.
type IndexSynchroniser interface {
	// Start launches the feed consumers. Non-blocking.
	Start(ctx context.Context) error

	// Stop drains in-flight events and stops the consumers.
	Stop() error

	// Apply processes one change event synchronously. Idempotent:
	// applying the same event twice yields the same index state.
	Apply(ctx context.Context, event domain.ChangeEvent) error

	// Rebuild resynchronises one content type from the content store
	// without blocking reads against other types.
	Rebuild(ctx context.Context, t domain.ContentType) error

	// Pending reports queued, not-yet-applied events across all types.
	Pending() int
}
