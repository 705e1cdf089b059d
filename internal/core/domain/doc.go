// Package domain defines the core business entities for the search subsystem.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceItem: A searchable item owned by an external content store
//   - IndexEntry: The normalised, searchable mirror of a SourceItem
//   - ChangeEvent: A create/update/delete notification from the content feed
//   - SearchPlan: A validated, executable search query
//   - SearchResult / SearchResponse: Ranked output of a search
//   - SearchEvent: An append-only analytics record
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
