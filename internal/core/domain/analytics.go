package domain

import "time"

// SearchEvent is an append-only analytics record created once per
// completed search. It is never mutated afterwards except to attach a
// single later click.
type SearchEvent struct {
	// ID is the search identifier returned to the caller.
	ID string

	// Query is the sanitised query.
	Query string

	// UserID is the requester.
	UserID string

	// ResultsCount is the permission-filtered total.
	ResultsCount int

	// ResponseTimeMs is the request's wall-clock duration.
	ResponseTimeMs int64

	// Types are the content types that were searched.
	Types []ContentType

	// WorkspaceID is the workspace scope, if any.
	WorkspaceID string

	// ClickedResultID and ClickedResultType are attached by a later
	// click, at most once.
	ClickedResultID   string
	ClickedResultType ContentType

	// Timestamp is when the search completed.
	Timestamp time.Time
}

// QueryCount is one entry of the historical query-frequency table.
type QueryCount struct {
	Query     string
	Frequency int
}

// AnalyticsSnapshot holds the in-memory rolling aggregates kept for
// immediate dashboard use, independent of persistence success.
type AnalyticsSnapshot struct {
	// TotalSearches counts every recorded search since start.
	TotalSearches int64

	// AvgResponseTimeMs is the cumulative moving average.
	AvgResponseTimeMs float64

	// ZeroResultQueries holds the most recent queries that returned
	// nothing, capped at 100, newest last.
	ZeroResultQueries []string
}
