package services

import (
	"time"

	"github.com/nestdesk/searchcore/internal/core/domain"
)

// FacetAggregator computes category counts over the permission-filtered
// result set. Runs after filtering so counts cannot leak hidden items.
type FacetAggregator struct {
	now func() time.Time
}

// NewFacetAggregator creates a facet aggregator.
func NewFacetAggregator() *FacetAggregator {
	return &FacetAggregator{now: time.Now}
}

// Aggregate computes the four facet dimensions. Each item contributes
// to exactly one bucket per dimension, so every dimension sums to
// len(results).
func (a *FacetAggregator) Aggregate(results []domain.SearchResult) *domain.Facets {
	now := a.now()
	facets := &domain.Facets{
		ContentType: make(map[string]int),
		Author:      make(map[string]int),
		Workspace:   make(map[string]int),
		DateBucket:  make(map[string]int),
	}

	for i := range results {
		r := &results[i]
		facets.ContentType[string(r.Type)]++
		facets.Author[r.OwnerID]++
		facets.Workspace[r.WorkspaceID]++
		facets.DateBucket[domain.DateBucketFor(r.CreatedAt, now)]++
	}

	return facets
}
