package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// eventStore implements driven.EventStore.
type eventStore struct {
	store *Store
}

var _ driven.EventStore = (*eventStore)(nil)

// AppendEvents durably appends a batch of search events in one
// transaction.
func (s *eventStore) AppendEvents(ctx context.Context, events []domain.SearchEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO search_events
			(id, query, user_id, results_count, response_time_ms, content_types, workspace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range events {
		ev := &events[i]
		if _, err := stmt.ExecContext(ctx, ev.ID, ev.Query, ev.UserID,
			ev.ResultsCount, ev.ResponseTimeMs, joinTypes(ev.Types),
			ev.WorkspaceID, ev.Timestamp); err != nil {
			return fmt.Errorf("inserting search event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AttachClick records a click against a prior event. The first click
// wins; later clicks on the same event are no-ops.
func (s *eventStore) AttachClick(ctx context.Context, searchID, resultID string, resultType domain.ContentType) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE search_events
		SET clicked_result_id = ?, clicked_result_type = ?
		WHERE id = ? AND clicked_result_id IS NULL
	`, resultID, string(resultType), searchID)
	if err != nil {
		return fmt.Errorf("attaching click: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking click update: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish an already-clicked event from a missing one.
	var count int
	err = s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM search_events WHERE id = ?", searchID).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking search event: %w", err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordQueries increments the frequency of each issued query.
func (s *eventStore) RecordQueries(ctx context.Context, queries []string) error {
	if len(queries) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO query_history (query, frequency, last_seen)
		VALUES (?, 1, ?)
		ON CONFLICT(query) DO UPDATE SET
			frequency = frequency + 1,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, q := range queries {
		if _, err := stmt.ExecContext(ctx, q, now); err != nil {
			return fmt.Errorf("recording query: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MatchQueries returns historical queries containing the partial
// string, most frequent first, shortest first on ties.
func (s *eventStore) MatchQueries(ctx context.Context, partial string, limit int) ([]domain.QueryCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT query, frequency
		FROM query_history
		WHERE instr(query, ?) > 0
		ORDER BY frequency DESC, LENGTH(query) ASC, query ASC
		LIMIT ?
	`, partial, limit)
	if err != nil {
		return nil, fmt.Errorf("querying query history: %w", err)
	}
	defer rows.Close()

	var counts []domain.QueryCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var qc domain.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Frequency); err != nil {
			return nil, fmt.Errorf("scanning query count: %w", err)
		}
		counts = append(counts, qc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query counts: %w", err)
	}

	return counts, nil
}

// joinTypes serialises the searched content types as a comma list.
func joinTypes(types []domain.ContentType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
