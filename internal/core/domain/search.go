package domain

import (
	"fmt"
	"time"
)

// SortBy selects the result ordering.
type SortBy string

const (
	// SortByRelevance orders by descending relevance score.
	SortByRelevance SortBy = "relevance"

	// SortByDate orders by descending update time.
	SortByDate SortBy = "date"
)

// DateRange filters items by creation time. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Validate rejects inverted ranges.
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("%w: date range from after to", ErrInvalidFilters)
	}
	return nil
}

// SearchOptions configures a search request.
type SearchOptions struct {
	// UserID is the requester. Permission filtering is applied on
	// their behalf.
	UserID string

	// Types restricts the search to specific content types.
	// Empty means all registered types.
	Types []ContentType

	// DateRange filters by creation time.
	DateRange *DateRange

	// Author filters to items owned by a specific user.
	Author string

	// Limit is the page size. Defaults to 20; capped by configuration.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// SortBy selects relevance or date ordering. Defaults to relevance.
	SortBy SortBy

	// WorkspaceID scopes the search to one workspace. The requester
	// must be a member or the search fails with ErrAccessDenied.
	WorkspaceID string

	// IncludeHighlights enables snippet generation.
	IncludeHighlights bool
}

// SearchPlan is a validated, executable query produced by the planner.
// It lives only for the duration of one request.
type SearchPlan struct {
	// Raw is the query as received.
	Raw string

	// Sanitised is the trimmed, allow-listed, truncated query.
	Sanitised string

	// Tokens are the whitespace-split terms of at least two characters.
	Tokens []string

	// Types are the resolved content types to execute against.
	Types []ContentType

	DateRange *DateRange
	Author    string

	Limit  int
	Offset int
	SortBy SortBy

	UserID            string
	WorkspaceID       string
	IncludeHighlights bool
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	// ID and Type identify the matched item.
	ID   string
	Type ContentType

	// Title is the item's display title.
	Title string

	// OwnerID, WorkspaceID and Visibility are carried for permission
	// filtering and facet aggregation.
	OwnerID     string
	WorkspaceID string
	Visibility  Visibility

	// Score is the relevance score, always >= 0.
	Score float64

	// Highlights are matched snippets, when requested.
	Highlights []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Date bucket labels for the facet dimension computed from CreatedAt.
// Each item contributes to exactly one bucket.
const (
	BucketLast7Days   = "last_7_days"
	BucketLast30Days  = "last_30_days"
	BucketLast3Months = "last_3_months"
	BucketOlder       = "older"
)

// DateBucketFor places a creation time into its facet bucket relative
// to now.
func DateBucketFor(createdAt, now time.Time) string {
	age := now.Sub(createdAt)
	switch {
	case age <= 7*24*time.Hour:
		return BucketLast7Days
	case age <= 30*24*time.Hour:
		return BucketLast30Days
	case age <= 90*24*time.Hour:
		return BucketLast3Months
	default:
		return BucketOlder
	}
}

// Facets holds category counts over the permission-filtered result set.
// For each dimension the counts sum to the filtered total.
type Facets struct {
	ContentType map[string]int
	Author      map[string]int
	Workspace   map[string]int
	DateBucket  map[string]int
}

// SearchResponse is the full answer to one search request.
type SearchResponse struct {
	// Query is the sanitised query that was executed.
	Query string

	// Results is the requested page of ranked hits.
	Results []SearchResult

	// TotalResults counts all permission-filtered hits, not just the page.
	TotalResults int

	// HasMore reports whether further pages exist.
	HasMore bool

	// ResponseTimeMs is the wall-clock execution time.
	ResponseTimeMs int64

	// Facets are computed over the filtered set. Nil when the query
	// was rejected.
	Facets *Facets

	// Suggestions are related, previously-issued queries.
	Suggestions []string

	// SearchID identifies the analytics event for click attribution.
	SearchID string

	// Message carries a client-facing notice such as
	// "Query too short or empty". Empty on normal responses.
	Message string
}
