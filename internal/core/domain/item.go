package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Visibility controls who may see an item in search results.
type Visibility string

const (
	// VisibilityPublic items are visible to every requester.
	VisibilityPublic Visibility = "public"

	// VisibilityPrivate items are visible to the owner and to members
	// of the item's workspace.
	VisibilityPrivate Visibility = "private"
)

// SourceItem is a searchable item as owned by an external content store.
// Its identity (Type, ID) is immutable for its lifetime.
type SourceItem struct {
	// ID is the unique identifier within its content type.
	ID string

	// Type is the content category.
	Type ContentType

	// OwnerID is the creating user.
	OwnerID string

	// WorkspaceID scopes the item to a workspace. Empty for personal items.
	WorkspaceID string

	// Title is the human-readable title or name.
	Title string

	// Body is the full text content.
	Body string

	// Tags are free-form labels.
	Tags []string

	// Visibility controls search exposure.
	Visibility Visibility

	// CreatedAt is when the item was created in the content store.
	CreatedAt time.Time

	// UpdatedAt is when the item was last modified.
	UpdatedAt time.Time

	// DeletedAt is set when the item has been soft-deleted.
	DeletedAt *time.Time
}

// IndexEntry mirrors a SourceItem with normalised copies of its
// searchable fields. It exists iff a non-deleted SourceItem exists and
// is only ever replaced whole, never partially updated.
type IndexEntry struct {
	ID          string
	Type        ContentType
	OwnerID     string
	WorkspaceID string

	// Original fields, kept for display and snippets.
	Title string
	Body  string
	Tags  []string

	// Normalised (lowercased, whitespace-collapsed) derivatives used
	// for matching. All three are replaced together on every update.
	NormTitle string
	NormBody  string
	NormTags  string

	Visibility Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Normalise derives the IndexEntry for an item. It fails on malformed
// encoding; the caller skips such items rather than indexing garbage.
func (i SourceItem) Normalise() (IndexEntry, error) {
	if i.ID == "" || !i.Type.IsValid() {
		return IndexEntry{}, fmt.Errorf("%w: missing identity", ErrInvalidInput)
	}
	if !utf8.ValidString(i.Title) || !utf8.ValidString(i.Body) {
		return IndexEntry{}, fmt.Errorf("%w: malformed encoding in %s/%s", ErrInvalidInput, i.Type, i.ID)
	}
	for _, tag := range i.Tags {
		if !utf8.ValidString(tag) {
			return IndexEntry{}, fmt.Errorf("%w: malformed encoding in %s/%s", ErrInvalidInput, i.Type, i.ID)
		}
	}

	return IndexEntry{
		ID:          i.ID,
		Type:        i.Type,
		OwnerID:     i.OwnerID,
		WorkspaceID: i.WorkspaceID,
		Title:       i.Title,
		Body:        i.Body,
		Tags:        append([]string(nil), i.Tags...),
		NormTitle:   normaliseText(i.Title),
		NormBody:    normaliseText(i.Body),
		NormTags:    normaliseText(strings.Join(i.Tags, " ")),
		Visibility:  i.Visibility,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}, nil
}

// normaliseText lowercases and collapses runs of whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
