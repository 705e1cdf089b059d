package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// EventStore is an in-memory implementation of driven.EventStore.
// Err, when set, makes AppendEvents fail; tests use it to exercise the
// analytics retry path.
type EventStore struct {
	mu      sync.RWMutex
	events  map[string]domain.SearchEvent
	history map[string]int

	// Err forces AppendEvents to fail with this error.
	Err error
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events:  make(map[string]domain.SearchEvent),
		history: make(map[string]int),
	}
}

// AppendEvents appends a batch of search events.
func (s *EventStore) AppendEvents(_ context.Context, events []domain.SearchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, ev := range events {
		if _, exists := s.events[ev.ID]; exists {
			continue
		}
		s.events[ev.ID] = ev
	}
	return nil
}

// AttachClick records a click against a prior event. The first click
// wins.
func (s *EventStore) AttachClick(_ context.Context, searchID, resultID string, resultType domain.ContentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[searchID]
	if !ok {
		return domain.ErrNotFound
	}
	if ev.ClickedResultID != "" {
		return nil
	}
	ev.ClickedResultID = resultID
	ev.ClickedResultType = resultType
	s.events[searchID] = ev
	return nil
}

// RecordQueries increments the frequency of each issued query.
func (s *EventStore) RecordQueries(_ context.Context, queries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range queries {
		s.history[q]++
	}
	return nil
}

// MatchQueries returns historical queries containing the partial
// string, most frequent first, shortest first on ties.
func (s *EventStore) MatchQueries(_ context.Context, partial string, limit int) ([]domain.QueryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts []domain.QueryCount
	for q, freq := range s.history {
		if strings.Contains(q, partial) {
			counts = append(counts, domain.QueryCount{Query: q, Frequency: freq})
		}
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Frequency != counts[j].Frequency {
			return counts[i].Frequency > counts[j].Frequency
		}
		if len(counts[i].Query) != len(counts[j].Query) {
			return len(counts[i].Query) < len(counts[j].Query)
		}
		return counts[i].Query < counts[j].Query
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// Event returns a stored event by ID, for tests.
func (s *EventStore) Event(id string) (domain.SearchEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	return ev, ok
}

// Len reports the number of stored events.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
