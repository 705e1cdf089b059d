package domain

// ChangeType identifies the kind of content change.
type ChangeType string

const (
	// ChangeCreated indicates a new item.
	ChangeCreated ChangeType = "created"

	// ChangeUpdated indicates modified content or metadata.
	ChangeUpdated ChangeType = "updated"

	// ChangeDeleted indicates the item was removed.
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent is one notification from the content change feed. The
// index synchroniser is its only consumer; applying the same event
// twice yields the same index state.
type ChangeEvent struct {
	// Type is the change variant.
	Type ChangeType

	// Item is the item the change concerns. For deletes only the
	// identity fields need to be populated.
	Item SourceItem
}
