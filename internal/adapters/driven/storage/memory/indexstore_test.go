package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

func testEntry(id, title, body string) domain.IndexEntry {
	item := domain.SourceItem{
		ID: id, Type: domain.TypeNote, OwnerID: "alice",
		Title: title, Body: body,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	entry, _ := item.Normalise()
	return entry
}

func TestIndexStore_UpsertGetDelete(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testEntry("n1", "Meeting Notes", "body")))

	entry, err := store.Get(ctx, domain.TypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, "meeting notes", entry.NormTitle)

	require.NoError(t, store.Delete(ctx, domain.TypeNote, "n1"))
	_, err = store.Get(ctx, domain.TypeNote, "n1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, domain.TypeNote, "n1"))
}

func TestIndexStore_ReplaceType(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testEntry("old", "Old", "body")))

	fileEntry := testEntry("f1", "A File", "body")
	fileEntry.Type = domain.TypeFile
	require.NoError(t, store.Upsert(ctx, fileEntry))

	require.NoError(t, store.ReplaceType(ctx, domain.TypeNote,
		[]domain.IndexEntry{testEntry("new", "New", "body")}))

	_, err := store.Get(ctx, domain.TypeNote, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(ctx, domain.TypeNote, "new")
	assert.NoError(t, err)

	// Other types are untouched.
	count, err := store.Count(ctx, domain.TypeFile)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexStore_Search(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testEntry("n1", "Meeting Notes", "Q1 planning")))
	require.NoError(t, store.Upsert(ctx, testEntry("n2", "Shopping List", "milk")))

	plan := &domain.SearchPlan{
		Sanitised: "meeting",
		Tokens:    []string{"meeting"},
	}
	hits, err := store.Search(ctx, plan, domain.TypeNote, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "n1", hits[0].Entry.ID)
	assert.Equal(t, 1, hits[0].FieldHits["title"])
}

func TestIndexStore_Search_Filters(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	mine := testEntry("mine", "Shared Report", "data")
	mine.WorkspaceID = "w1"
	require.NoError(t, store.Upsert(ctx, mine))

	theirs := testEntry("theirs", "Shared Report", "data")
	theirs.WorkspaceID = "w2"
	require.NoError(t, store.Upsert(ctx, theirs))

	plan := &domain.SearchPlan{
		Sanitised:   "report",
		Tokens:      []string{"report"},
		WorkspaceID: "w1",
	}
	hits, err := store.Search(ctx, plan, domain.TypeNote, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mine", hits[0].Entry.ID)
}

func TestIndexStore_ConcurrentAccess(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Upsert(ctx, testEntry("n"+string(rune('A'+n%26)), "Title", "body"))
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = store.Get(ctx, domain.TypeNote, "n"+string(rune('A'+n%26)))
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx, domain.TypeNote)
	require.NoError(t, err)
	assert.Equal(t, 26, count)
}
