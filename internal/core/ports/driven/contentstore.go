package driven

import (
	"context"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

// ContentStore provides read-only snapshots of the external content
// store, used only for full index rebuilds.
type ContentStore interface {
	// ListItems returns all non-deleted items of one content type.
	ListItems(ctx context.Context, t domain.ContentType) ([]domain.SourceItem, error)
}

// ChangeFeed delivers content change notifications. The channel is
// closed by the producer when the feed shuts down.
type ChangeFeed interface {
	Events() <-chan domain.ChangeEvent
}
