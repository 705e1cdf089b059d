package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
	"github.com/nestdesk/searchcore/internal/logger"
)

// zeroResultWindow is the size of the rolling zero-result query list.
const zeroResultWindow = 100

// AnalyticsRecorder persists search events without ever blocking the
// search path. Events enter a bounded queue (drop-oldest on overflow)
// and a single background worker batches them to the event store.
// Failed batches are retried, paced by a rate limiter, and are never
// surfaced to search callers. Rolling aggregates are maintained
// in memory regardless of persistence success.
type AnalyticsRecorder struct {
	store   driven.EventStore
	cfg     driven.ConfigSource
	queue   chan domain.SearchEvent
	limiter *rate.Limiter

	mu          sync.Mutex
	total       int64
	avgMs       float64
	zeroResults []string

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewAnalyticsRecorder creates the recorder and starts its worker.
func NewAnalyticsRecorder(store driven.EventStore, cfg driven.ConfigSource) *AnalyticsRecorder {
	c := cfg.Config()
	r := &AnalyticsRecorder{
		store:  store,
		cfg:    cfg,
		queue:  make(chan domain.SearchEvent, c.AnalyticsQueueSize),
		stopCh: make(chan struct{}),
		// Persistence retries are paced to one per second with a
		// small burst so a broken store cannot spin the worker.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Record enqueues one event. Fire-and-forget: when the queue is full
// the oldest queued event is dropped to make room. Aggregates update
// immediately either way.
func (r *AnalyticsRecorder) Record(event domain.SearchEvent) {
	r.mu.Lock()
	r.total++
	r.avgMs += (float64(event.ResponseTimeMs) - r.avgMs) / float64(r.total)
	if event.ResultsCount == 0 && event.Query != "" {
		r.zeroResults = append(r.zeroResults, event.Query)
		if len(r.zeroResults) > zeroResultWindow {
			r.zeroResults = r.zeroResults[len(r.zeroResults)-zeroResultWindow:]
		}
	}
	r.mu.Unlock()

	select {
	case r.queue <- event:
		return
	default:
	}

	// Queue full: drop the oldest, then retry once.
	select {
	case dropped := <-r.queue:
		logger.Warn("analytics queue full, dropping oldest event %s", dropped.ID)
	default:
	}
	select {
	case r.queue <- event:
	default:
	}
}

// AttachClick records a click against a prior event. Best-effort.
func (r *AnalyticsRecorder) AttachClick(ctx context.Context, searchID, resultID string, resultType domain.ContentType) error {
	return r.store.AttachClick(ctx, searchID, resultID, resultType)
}

// Snapshot returns the current rolling aggregates.
func (r *AnalyticsRecorder) Snapshot() domain.AnalyticsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.AnalyticsSnapshot{
		TotalSearches:     r.total,
		AvgResponseTimeMs: r.avgMs,
		ZeroResultQueries: append([]string(nil), r.zeroResults...),
	}
}

// Close stops the worker after draining and flushing the queue.
func (r *AnalyticsRecorder) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
	return nil
}

// run drains the queue into batches and persists them.
func (r *AnalyticsRecorder) run() {
	defer r.wg.Done()

	cfg := r.cfg.Config()
	ticker := time.NewTicker(cfg.AnalyticsFlushInterval)
	defer ticker.Stop()

	var batch []domain.SearchEvent

	for {
		select {
		case ev := <-r.queue:
			batch = append(batch, ev)
			if len(batch) >= cfg.AnalyticsBatchSize {
				batch = r.flush(batch)
			}

		case <-ticker.C:
			batch = r.flush(batch)

		case <-r.stopCh:
			// Drain whatever is still queued, then final flush.
			for {
				select {
				case ev := <-r.queue:
					batch = append(batch, ev)
				default:
					r.finalFlush(batch)
					return
				}
			}
		}
	}
}

// flush persists a batch. On failure the batch is kept for the next
// attempt (re-queued, never silently dropped).
func (r *AnalyticsRecorder) flush(batch []domain.SearchEvent) []domain.SearchEvent {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.limiter.Wait(ctx); err != nil {
		return batch
	}

	if err := r.store.AppendEvents(ctx, batch); err != nil {
		logger.Warn("analytics persist failed, will retry %d events: %v", len(batch), err)
		// Bound the retry buffer during a persistent outage, keeping
		// the newest events.
		if maxCarry := 4 * r.cfg.Config().AnalyticsBatchSize; len(batch) > maxCarry {
			logger.Warn("analytics retry buffer overflow, dropping %d oldest events", len(batch)-maxCarry)
			batch = batch[len(batch)-maxCarry:]
		}
		return batch
	}

	queries := make([]string, 0, len(batch))
	for i := range batch {
		if batch[i].Query != "" {
			queries = append(queries, batch[i].Query)
		}
	}
	if len(queries) > 0 {
		if err := r.store.RecordQueries(ctx, queries); err != nil {
			logger.Warn("query history update failed: %v", err)
		}
	}

	return batch[:0]
}

// finalFlush makes a bounded number of attempts to persist remaining
// events during shutdown.
func (r *AnalyticsRecorder) finalFlush(batch []domain.SearchEvent) {
	for attempt := 0; attempt < 3 && len(batch) > 0; attempt++ {
		batch = r.flush(batch)
	}
	if len(batch) > 0 {
		logger.Warn("discarding %d unpersisted analytics events at shutdown", len(batch))
	}
}
