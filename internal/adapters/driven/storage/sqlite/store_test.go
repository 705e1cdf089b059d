package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// indexTestItem normalises and stores one item.
func indexTestItem(t *testing.T, store *Store, item domain.SourceItem) {
	t.Helper()
	entry, err := item.Normalise()
	require.NoError(t, err)
	require.NoError(t, store.Index().Upsert(context.Background(), entry))
}

func testNote(id, title, body string) domain.SourceItem {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.SourceItem{
		ID: id, Type: domain.TypeNote, OwnerID: "alice",
		Title: title, Body: body, Tags: []string{"work"},
		CreatedAt: now, UpdatedAt: now,
	}
}

// testPlan builds a plan by hand, keeping these tests independent of
// the planner.
func testPlan(t *testing.T, query string, opts domain.SearchOptions) *domain.SearchPlan {
	t.Helper()
	return &domain.SearchPlan{
		Raw:         query,
		Sanitised:   query,
		Tokens:      strings.Fields(strings.ToLower(query)),
		Types:       []domain.ContentType{domain.TypeNote},
		DateRange:   opts.DateRange,
		Author:      opts.Author,
		WorkspaceID: opts.WorkspaceID,
	}
}

// ==================== Store Tests ====================

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "search.db"), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same file must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	err = store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

// ==================== Index Store Tests ====================

func TestIndexStore_UpsertAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "Meeting Notes", "Q1 planning agenda"))

	entry, err := store.Index().Get(ctx, domain.TypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", entry.ID)
	assert.Equal(t, "Meeting Notes", entry.Title)
	assert.Equal(t, "meeting notes", entry.NormTitle)
	assert.Equal(t, []string{"work"}, entry.Tags)
}

func TestIndexStore_Upsert_ReplacesWhole(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "Original Title", "original body"))
	indexTestItem(t, store, testNote("n1", "Replaced Title", "replaced body"))

	entry, err := store.Index().Get(ctx, domain.TypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, "Replaced Title", entry.Title)
	assert.Equal(t, "replaced body", entry.NormBody)

	count, err := store.Index().Count(ctx, domain.TypeNote)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Index().Get(context.Background(), domain.TypeNote, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "Meeting Notes", "body"))
	require.NoError(t, store.Index().Delete(ctx, domain.TypeNote, "n1"))

	_, err := store.Index().Get(ctx, domain.TypeNote, "n1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting an absent entry is a no-op.
	assert.NoError(t, store.Index().Delete(ctx, domain.TypeNote, "n1"))
}

func TestIndexStore_Delete_RemovesFromSearch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "Unobtainium Charter", "unique"))
	require.NoError(t, store.Index().Delete(ctx, domain.TypeNote, "n1"))

	hits, err := store.NativeSearcher().Search(ctx, testPlan(t, "unobtainium", domain.SearchOptions{}), domain.TypeNote, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexStore_ReplaceType(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("old1", "Old One", "body"))
	indexTestItem(t, store, testNote("old2", "Old Two", "body"))

	fresh1, err := testNote("new1", "New One", "body").Normalise()
	require.NoError(t, err)
	fresh2, err := testNote("new2", "New Two", "body").Normalise()
	require.NoError(t, err)

	require.NoError(t, store.Index().ReplaceType(ctx, domain.TypeNote,
		[]domain.IndexEntry{fresh1, fresh2}))

	count, err := store.Index().Count(ctx, domain.TypeNote)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = store.Index().Get(ctx, domain.TypeNote, "old1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Index().Get(ctx, domain.TypeNote, "new1")
	assert.NoError(t, err)
}

func TestIndexStore_ReplaceType_OtherTypesUntouched(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	file := testNote("f1", "A File", "content")
	file.Type = domain.TypeFile
	indexTestItem(t, store, file)
	indexTestItem(t, store, testNote("n1", "A Note", "content"))

	require.NoError(t, store.Index().ReplaceType(ctx, domain.TypeNote, nil))

	count, err := store.Index().Count(ctx, domain.TypeFile)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = store.Index().Count(ctx, domain.TypeNote)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// ==================== Native Searcher Tests ====================

func TestNativeSearcher_Match(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "Meeting Notes", "Q1 planning agenda"))
	indexTestItem(t, store, testNote("n2", "Shopping List", "milk and eggs"))

	hits, err := store.NativeSearcher().Search(ctx, testPlan(t, "meeting", domain.SearchOptions{}), domain.TypeNote, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "n1", hits[0].Entry.ID)
	assert.Equal(t, driven.StrategyNative, hits[0].Strategy)
	assert.NotEmpty(t, hits[0].Snippets)
}

func TestNativeSearcher_RankHigherIsBetter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("sparse", "budget", "one mention only"))
	indexTestItem(t, store, testNote("dense", "budget budget", "budget budget budget"))

	hits, err := store.NativeSearcher().Search(ctx, testPlan(t, "budget", domain.SearchOptions{}), domain.TypeNote, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	byID := make(map[string]float64, 2)
	for _, h := range hits {
		byID[h.Entry.ID] = h.Rank
	}
	assert.Greater(t, byID["dense"], byID["sparse"])
}

func TestNativeSearcher_AnyTokenMatches(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "quarterly budget", "numbers"))
	indexTestItem(t, store, testNote("n2", "travel plans", "quarterly review"))

	hits, err := store.NativeSearcher().Search(ctx, testPlan(t, "quarterly budget", domain.SearchOptions{}), domain.TypeNote, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestNativeSearcher_OperatorSyntaxDisarmed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "Meeting Notes", "body"))

	// FTS operators inside tokens must be treated as literals, not
	// syntax errors.
	plan := &domain.SearchPlan{
		Sanitised: "meeting NOT",
		Tokens:    []string{"meeting", "not"},
		Types:     []domain.ContentType{domain.TypeNote},
	}
	hits, err := store.NativeSearcher().Search(ctx, plan, domain.TypeNote, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestNativeSearcher_Filters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mine := testNote("mine", "Shared Report", "data")
	mine.WorkspaceID = "w1"
	indexTestItem(t, store, mine)

	theirs := testNote("theirs", "Shared Report", "data")
	theirs.OwnerID = "bob"
	theirs.WorkspaceID = "w2"
	indexTestItem(t, store, theirs)

	old := testNote("old", "Shared Report", "data")
	old.WorkspaceID = "w1"
	old.CreatedAt = time.Now().UTC().Add(-365 * 24 * time.Hour)
	indexTestItem(t, store, old)

	t.Run("workspace", func(t *testing.T) {
		hits, err := store.NativeSearcher().Search(ctx,
			testPlan(t, "report", domain.SearchOptions{WorkspaceID: "w1"}), domain.TypeNote, 10)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("author", func(t *testing.T) {
		hits, err := store.NativeSearcher().Search(ctx,
			testPlan(t, "report", domain.SearchOptions{Author: "bob"}), domain.TypeNote, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "theirs", hits[0].Entry.ID)
	})

	t.Run("date range", func(t *testing.T) {
		hits, err := store.NativeSearcher().Search(ctx,
			testPlan(t, "report", domain.SearchOptions{
				DateRange: &domain.DateRange{From: time.Now().UTC().Add(-48 * time.Hour)},
			}), domain.TypeNote, 10)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
		for _, h := range hits {
			assert.NotEqual(t, "old", h.Entry.ID)
		}
	})
}

func TestNativeSearcher_RespectsLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"n1", "n2", "n3", "n4", "n5"} {
		indexTestItem(t, store, testNote(id, "Paging Test", "body"))
	}

	hits, err := store.NativeSearcher().Search(ctx, testPlan(t, "paging", domain.SearchOptions{}), domain.TypeNote, 3)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

// ==================== Fallback Searcher Tests ====================

func TestFallbackSearcher_SubstringMatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "Preprocessing Pipeline", "data cleanup"))
	indexTestItem(t, store, testNote("n2", "Shopping List", "milk"))

	// Substring match finds terms inside words, unlike FTS tokens.
	hits, err := store.FallbackSearcher().Search(ctx, testPlan(t, "process", domain.SearchOptions{}), domain.TypeNote, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "n1", hits[0].Entry.ID)
	assert.Equal(t, driven.StrategyFallback, hits[0].Strategy)
	assert.Equal(t, 1, hits[0].FieldHits["title"])
	assert.Zero(t, hits[0].FieldHits["body"])
}

func TestFallbackSearcher_FieldHitCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "budget summary", "budget budget details"))

	hits, err := store.FallbackSearcher().Search(ctx, testPlan(t, "budget", domain.SearchOptions{}), domain.TypeNote, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].FieldHits["title"])
	assert.Equal(t, 2, hits[0].FieldHits["body"])
}

func TestFallbackSearcher_WildcardsEscaped(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	indexTestItem(t, store, testNote("n1", "100 percent", "everything matches nothing"))

	// A literal % in the token must not act as a LIKE wildcard.
	plan := &domain.SearchPlan{
		Sanitised: "100%",
		Tokens:    []string{"100%"},
		Types:     []domain.ContentType{domain.TypeNote},
	}
	hits, err := store.FallbackSearcher().Search(ctx, plan, domain.TypeNote, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFallbackSearcher_Filters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mine := testNote("mine", "Shared Report", "data")
	mine.WorkspaceID = "w1"
	indexTestItem(t, store, mine)
	theirs := testNote("theirs", "Shared Report", "data")
	theirs.WorkspaceID = "w2"
	indexTestItem(t, store, theirs)

	hits, err := store.FallbackSearcher().Search(ctx,
		testPlan(t, "report", domain.SearchOptions{WorkspaceID: "w1"}), domain.TypeNote, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mine", hits[0].Entry.ID)
}
