package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// entryColumns is the column list shared by every query that scans a
// full index entry.
const entryColumns = `id, content_type, owner_id, workspace_id, title, body, tags,
	norm_title, norm_body, norm_tags, visibility, created_at, updated_at`

// indexStore implements driven.IndexStore.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// Upsert stores or replaces an entry whole.
func (s *indexStore) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO index_entries
			(id, content_type, owner_id, workspace_id, title, body, tags,
			 norm_title, norm_body, norm_tags, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_type, id) DO UPDATE SET
			owner_id = excluded.owner_id,
			workspace_id = excluded.workspace_id,
			title = excluded.title,
			body = excluded.body,
			tags = excluded.tags,
			norm_title = excluded.norm_title,
			norm_body = excluded.norm_body,
			norm_tags = excluded.norm_tags,
			visibility = excluded.visibility,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, entry.ID, string(entry.Type), entry.OwnerID, entry.WorkspaceID,
		entry.Title, entry.Body, string(tagsJSON),
		entry.NormTitle, entry.NormBody, entry.NormTags,
		string(entry.Visibility), entry.CreatedAt, entry.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upserting index entry: %w", err)
	}
	return nil
}

// Delete removes an entry. Deleting an absent entry is a no-op.
func (s *indexStore) Delete(ctx context.Context, t domain.ContentType, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM index_entries WHERE content_type = ? AND id = ?", string(t), id)
	if err != nil {
		return fmt.Errorf("deleting index entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by identity.
func (s *indexStore) Get(ctx context.Context, t domain.ContentType, id string) (*domain.IndexEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM index_entries WHERE content_type = ? AND id = ?
	`, string(t), id)

	entry, err := scanEntryRow(row)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ReplaceType swaps all entries of one content type in a single
// transaction. Readers observe the old or new state, never a mix.
func (s *indexStore) ReplaceType(ctx context.Context, t domain.ContentType, entries []domain.IndexEntry) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM index_entries WHERE content_type = ?", string(t)); err != nil {
		return fmt.Errorf("clearing partition: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries
			(id, content_type, owner_id, workspace_id, title, body, tags,
			 norm_title, norm_body, norm_tags, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		e := &entries[i]
		tagsJSON, err := json.Marshal(e.Tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, string(e.Type), e.OwnerID, e.WorkspaceID,
			e.Title, e.Body, string(tagsJSON),
			e.NormTitle, e.NormBody, e.NormTags,
			string(e.Visibility), e.CreatedAt, e.UpdatedAt); err != nil {
			return fmt.Errorf("inserting index entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Count returns the number of entries for a content type.
func (s *indexStore) Count(ctx context.Context, t domain.ContentType) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM index_entries WHERE content_type = ?", string(t)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting index entries: %w", err)
	}
	return count, nil
}

// ==================== Native Searcher ====================

// nativeSearcher implements driven.TypeSearcher on the FTS5 index.
type nativeSearcher struct {
	store *Store
}

var _ driven.TypeSearcher = (*nativeSearcher)(nil)

// Search runs an FTS5 MATCH for one content type. The bm25 rank is
// negated so that a higher Candidate.Rank is a better match, and the
// engine snippet over the best-matching column is carried along.
func (s *nativeSearcher) Search(ctx context.Context, plan *domain.SearchPlan, t domain.ContentType, limit int) ([]driven.Candidate, error) {
	match := buildMatchQuery(plan)
	if match == "" {
		return nil, nil
	}

	query := `
		SELECT e.id, e.content_type, e.owner_id, e.workspace_id, e.title, e.body, e.tags,
			e.norm_title, e.norm_body, e.norm_tags, e.visibility, e.created_at, e.updated_at,
			bm25(index_fts) AS rank,
			snippet(index_fts, -1, '[', ']', '…', 12) AS snip
		FROM index_fts
		JOIN index_entries e ON e.rowid = index_fts.rowid
		WHERE index_fts MATCH ? AND e.content_type = ?`
	args := []any{match, string(t)}

	query, args = appendPlanFilters(query, args, plan, "e")
	query += " ORDER BY bm25(index_fts) LIMIT ?"
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying full-text index: %w", err)
	}
	defer rows.Close()

	var candidates []driven.Candidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, rank, snip, err := scanMatchRow(rows)
		if err != nil {
			return nil, err
		}
		c := driven.Candidate{
			Entry: *entry,
			// bm25 is lower-is-better; negate into higher-is-better.
			Rank:     -rank,
			Strategy: driven.StrategyNative,
		}
		if snip != "" {
			c.Snippets = []string{snip}
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	return candidates, nil
}

// buildMatchQuery turns the plan's tokens into an FTS5 MATCH string.
// Each token is double-quoted to disarm FTS operator syntax, and tokens
// are OR-joined so any term can contribute a match.
func buildMatchQuery(plan *domain.SearchPlan) string {
	if len(plan.Tokens) == 0 {
		if plan.Sanitised == "" {
			return ""
		}
		return `"` + strings.ReplaceAll(plan.Sanitised, `"`, `""`) + `"`
	}

	quoted := make([]string, len(plan.Tokens))
	for i, tok := range plan.Tokens {
		quoted[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

// appendPlanFilters adds the plan's workspace, author and date filters
// to a query. Prefix qualifies the index_entries table in the FROM
// clause; pass an empty string when the table is unaliased.
func appendPlanFilters(query string, args []any, plan *domain.SearchPlan, prefix string) (string, []any) {
	col := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	if plan.WorkspaceID != "" {
		query += " AND " + col("workspace_id") + " = ?"
		args = append(args, plan.WorkspaceID)
	}
	if plan.Author != "" {
		query += " AND " + col("owner_id") + " = ?"
		args = append(args, plan.Author)
	}
	if plan.DateRange != nil {
		if !plan.DateRange.From.IsZero() {
			query += " AND " + col("created_at") + " >= ?"
			args = append(args, plan.DateRange.From)
		}
		if !plan.DateRange.To.IsZero() {
			query += " AND " + col("created_at") + " <= ?"
			args = append(args, plan.DateRange.To)
		}
	}
	return query, args
}

// ==================== Helper Functions ====================

// scanEntryRow scans a single index entry row.
func scanEntryRow(row *sql.Row) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var contentType, visibility, tagsJSON string
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&entry.ID, &contentType, &entry.OwnerID, &entry.WorkspaceID,
		&entry.Title, &entry.Body, &tagsJSON,
		&entry.NormTitle, &entry.NormBody, &entry.NormTags,
		&visibility, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning index entry: %w", err)
	}

	return finishEntry(&entry, contentType, visibility, tagsJSON, createdAt, updatedAt)
}

// scanEntryRows scans an index entry from *sql.Rows.
func scanEntryRows(rows *sql.Rows) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var contentType, visibility, tagsJSON string
	var createdAt, updatedAt sql.NullTime

	if err := rows.Scan(&entry.ID, &contentType, &entry.OwnerID, &entry.WorkspaceID,
		&entry.Title, &entry.Body, &tagsJSON,
		&entry.NormTitle, &entry.NormBody, &entry.NormTags,
		&visibility, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning index entry: %w", err)
	}

	return finishEntry(&entry, contentType, visibility, tagsJSON, createdAt, updatedAt)
}

// scanMatchRow scans an index entry plus rank and snippet columns.
func scanMatchRow(rows *sql.Rows) (*domain.IndexEntry, float64, string, error) {
	var entry domain.IndexEntry
	var contentType, visibility, tagsJSON string
	var createdAt, updatedAt sql.NullTime
	var rank float64
	var snip sql.NullString

	if err := rows.Scan(&entry.ID, &contentType, &entry.OwnerID, &entry.WorkspaceID,
		&entry.Title, &entry.Body, &tagsJSON,
		&entry.NormTitle, &entry.NormBody, &entry.NormTags,
		&visibility, &createdAt, &updatedAt, &rank, &snip); err != nil {
		return nil, 0, "", fmt.Errorf("scanning match: %w", err)
	}

	e, err := finishEntry(&entry, contentType, visibility, tagsJSON, createdAt, updatedAt)
	if err != nil {
		return nil, 0, "", err
	}
	return e, rank, snip.String, nil
}

// finishEntry fills the typed fields common to all entry scans.
func finishEntry(entry *domain.IndexEntry, contentType, visibility, tagsJSON string,
	createdAt, updatedAt sql.NullTime) (*domain.IndexEntry, error) {
	entry.Type = domain.ContentType(contentType)
	entry.Visibility = domain.Visibility(visibility)

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &entry.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		entry.UpdatedAt = updatedAt.Time
	}

	return entry, nil
}
