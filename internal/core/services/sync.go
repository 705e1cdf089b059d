package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
	"github.com/nestdesk/searchcore/internal/core/ports/driving"
	"github.com/nestdesk/searchcore/internal/logger"
)

// Ensure Synchroniser implements the interface.
var _ driving.IndexSynchroniser = (*Synchroniser)(nil)

// Synchroniser consumes the content change feed and maintains the
// index. One worker per content type applies events serially, so
// writes to a type's partition never race while independent types
// update in parallel. It is the index's only writer.
type Synchroniser struct {
	index   driven.IndexStore
	content driven.ContentStore
	feed    driven.ChangeFeed
	cfg     driven.ConfigSource

	mu      sync.Mutex
	running bool
	queues  map[domain.ContentType]chan domain.ChangeEvent
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewSynchroniser creates an index synchroniser. The content store is
// only needed for rebuilds and may be nil when rebuilds are not used.
func NewSynchroniser(
	index driven.IndexStore,
	content driven.ContentStore,
	feed driven.ChangeFeed,
	cfg driven.ConfigSource,
) *Synchroniser {
	return &Synchroniser{
		index:   index,
		content: content,
		feed:    feed,
		cfg:     cfg,
	}
}

// Start launches one consumer per content type plus a dispatcher
// reading the feed. Non-blocking; returns immediately.
func (s *Synchroniser) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.feed == nil {
		return errors.New("change feed not configured")
	}
	s.running = true
	s.stopCh = make(chan struct{})

	backlog := s.cfg.Config().MaxPendingEvents
	s.queues = make(map[domain.ContentType]chan domain.ChangeEvent)
	for _, t := range domain.AllContentTypes() {
		q := make(chan domain.ChangeEvent, backlog)
		s.queues[t] = q

		s.wg.Add(1)
		go s.consume(ctx, t, q)
	}

	s.wg.Add(1)
	go s.dispatch(ctx)

	return nil
}

// Stop drains queued events and stops all workers.
func (s *Synchroniser) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Pending reports queued, not-yet-applied events across all types.
func (s *Synchroniser) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.queues {
		n += len(q)
	}
	return n
}

// dispatch routes feed events to the per-type queues.
func (s *Synchroniser) dispatch(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case ev, ok := <-s.feed.Events():
			if !ok {
				logger.Info("change feed closed")
				return
			}
			q, known := s.queues[ev.Item.Type]
			if !known {
				logger.Warn("change event for unknown content type %q dropped", ev.Item.Type)
				continue
			}
			select {
			case q <- ev:
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			}
		}
	}
}

// consume applies one content type's events serially.
func (s *Synchroniser) consume(ctx context.Context, t domain.ContentType, q chan domain.ChangeEvent) {
	defer s.wg.Done()

	for {
		select {
		case ev := <-q:
			if err := s.Apply(ctx, ev); err != nil {
				logger.Warn("apply %s event for %s/%s: %v", ev.Type, t, ev.Item.ID, err)
			}
		case <-s.stopCh:
			// Drain remaining events before exiting.
			for {
				select {
				case ev := <-q:
					if err := s.Apply(context.Background(), ev); err != nil {
						logger.Warn("apply %s event for %s/%s: %v", ev.Type, t, ev.Item.ID, err)
					}
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Apply processes one change event. Idempotent: creates and updates
// both resolve to a whole-entry upsert, deletes to a no-op-safe
// removal. An item that fails normalisation is skipped with a warning
// and stays absent from search until its next successful event.
func (s *Synchroniser) Apply(ctx context.Context, event domain.ChangeEvent) error {
	item := event.Item

	switch event.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		if item.DeletedAt != nil {
			// Updates that soft-delete behave as deletes.
			return s.remove(ctx, item)
		}
		entry, err := item.Normalise()
		if err != nil {
			logger.Warn("skipping unindexable item %s/%s: %v", item.Type, item.ID, err)
			return nil
		}
		if err := s.index.Upsert(ctx, entry); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", item.Type, item.ID, err)
		}
		return nil

	case domain.ChangeDeleted:
		return s.remove(ctx, item)

	default:
		return fmt.Errorf("%w: unknown change type %q", domain.ErrInvalidInput, event.Type)
	}
}

func (s *Synchroniser) remove(ctx context.Context, item domain.SourceItem) error {
	if err := s.index.Delete(ctx, item.Type, item.ID); err != nil {
		return fmt.Errorf("delete %s/%s: %w", item.Type, item.ID, err)
	}
	return nil
}

// Rebuild resynchronises one content type from the content store using
// copy-then-swap: the replacement set is built first, then swapped in
// atomically so concurrent readers see the old or new state, never a
// mix. Other types are untouched.
func (s *Synchroniser) Rebuild(ctx context.Context, t domain.ContentType) error {
	if s.content == nil {
		return errors.New("content store not configured")
	}
	if !t.IsValid() {
		return fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidInput, t)
	}

	items, err := s.content.ListItems(ctx, t)
	if err != nil {
		return fmt.Errorf("list %s items: %w", t, err)
	}

	entries := make([]domain.IndexEntry, 0, len(items))
	for i := range items {
		if items[i].DeletedAt != nil {
			continue
		}
		entry, err := items[i].Normalise()
		if err != nil {
			logger.Warn("rebuild: skipping unindexable item %s/%s: %v", t, items[i].ID, err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := s.index.ReplaceType(ctx, t, entries); err != nil {
		return fmt.Errorf("replace %s partition: %w", t, err)
	}

	logger.Info("rebuilt %s index with %d entries", t, len(entries))
	return nil
}
