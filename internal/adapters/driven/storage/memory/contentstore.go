package memory

import (
	"context"
	"sync"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore is an in-memory implementation of driven.ContentStore.
type ContentStore struct {
	mu    sync.RWMutex
	items map[domain.ContentType]map[string]domain.SourceItem
}

// NewContentStore creates a new in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		items: make(map[domain.ContentType]map[string]domain.SourceItem),
	}
}

// Put stores or updates an item.
func (s *ContentStore) Put(item domain.SourceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.items[item.Type]
	if !ok {
		byID = make(map[string]domain.SourceItem)
		s.items[item.Type] = byID
	}
	byID[item.ID] = item
}

// Remove deletes an item.
func (s *ContentStore) Remove(t domain.ContentType, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[t], id)
}

// ListItems returns all non-deleted items of one content type.
func (s *ContentStore) ListItems(_ context.Context, t domain.ContentType) ([]domain.SourceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SourceItem, 0, len(s.items[t]))
	for _, item := range s.items[t] {
		if item.DeletedAt != nil {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// Ensure ChangeFeed implements the interface.
var _ driven.ChangeFeed = (*ChangeFeed)(nil)

// ChangeFeed is an in-memory implementation of driven.ChangeFeed.
// Producers push events with Emit; the synchroniser consumes them.
type ChangeFeed struct {
	ch        chan domain.ChangeEvent
	closeOnce sync.Once
}

// NewChangeFeed creates a change feed with the given buffer size.
func NewChangeFeed(buffer int) *ChangeFeed {
	return &ChangeFeed{
		ch: make(chan domain.ChangeEvent, buffer),
	}
}

// Emit publishes one change event, blocking if the buffer is full.
func (f *ChangeFeed) Emit(event domain.ChangeEvent) {
	f.ch <- event
}

// Events returns the event channel.
func (f *ChangeFeed) Events() <-chan domain.ChangeEvent {
	return f.ch
}

// Close shuts the feed down. Safe to call more than once.
func (f *ChangeFeed) Close() {
	f.closeOnce.Do(func() {
		close(f.ch)
	})
}
