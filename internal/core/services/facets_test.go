package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

func TestFacetAggregator_Aggregate(t *testing.T) {
	a := NewFacetAggregator()
	a.now = func() time.Time { return fixedNow }

	results := []domain.SearchResult{
		{ID: "n1", Type: domain.TypeNote, OwnerID: "alice", WorkspaceID: "w1",
			CreatedAt: fixedNow.Add(-24 * time.Hour)},
		{ID: "n2", Type: domain.TypeNote, OwnerID: "alice", WorkspaceID: "w2",
			CreatedAt: fixedNow.Add(-10 * 24 * time.Hour)},
		{ID: "f1", Type: domain.TypeFile, OwnerID: "bob", WorkspaceID: "w1",
			CreatedAt: fixedNow.Add(-60 * 24 * time.Hour)},
		{ID: "c1", Type: domain.TypeChatMessage, OwnerID: "carol", WorkspaceID: "w1",
			CreatedAt: fixedNow.Add(-200 * 24 * time.Hour)},
	}

	facets := a.Aggregate(results)

	require.NotNil(t, facets)
	assert.Equal(t, 2, facets.ContentType["note"])
	assert.Equal(t, 1, facets.ContentType["file"])
	assert.Equal(t, 1, facets.ContentType["chat_message"])

	assert.Equal(t, 2, facets.Author["alice"])
	assert.Equal(t, 1, facets.Author["bob"])

	assert.Equal(t, 3, facets.Workspace["w1"])
	assert.Equal(t, 1, facets.Workspace["w2"])

	assert.Equal(t, 1, facets.DateBucket[domain.BucketLast7Days])
	assert.Equal(t, 1, facets.DateBucket[domain.BucketLast30Days])
	assert.Equal(t, 1, facets.DateBucket[domain.BucketLast3Months])
	assert.Equal(t, 1, facets.DateBucket[domain.BucketOlder])
}

// Every dimension's counts must sum to the filtered result total.
func TestFacetAggregator_DimensionsSumToTotal(t *testing.T) {
	a := NewFacetAggregator()
	a.now = func() time.Time { return fixedNow }

	var results []domain.SearchResult
	types := domain.AllContentTypes()
	for i := 0; i < 37; i++ {
		results = append(results, domain.SearchResult{
			ID:          string(rune('a' + i%26)),
			Type:        types[i%len(types)],
			OwnerID:     []string{"alice", "bob", ""}[i%3],
			WorkspaceID: []string{"w1", ""}[i%2],
			CreatedAt:   fixedNow.Add(-time.Duration(i*9) * 24 * time.Hour),
		})
	}

	facets := a.Aggregate(results)

	sum := func(m map[string]int) int {
		n := 0
		for _, v := range m {
			n += v
		}
		return n
	}
	assert.Equal(t, len(results), sum(facets.ContentType))
	assert.Equal(t, len(results), sum(facets.Author))
	assert.Equal(t, len(results), sum(facets.Workspace))
	assert.Equal(t, len(results), sum(facets.DateBucket))
}

func TestFacetAggregator_EmptyResults(t *testing.T) {
	a := NewFacetAggregator()

	facets := a.Aggregate(nil)

	require.NotNil(t, facets)
	assert.Empty(t, facets.ContentType)
	assert.Empty(t, facets.Author)
	assert.Empty(t, facets.Workspace)
	assert.Empty(t, facets.DateBucket)
}
