package domain

// ContentType identifies a searchable content category.
type ContentType string

const (
	// TypeNote is a user note.
	TypeNote ContentType = "note"

	// TypeWorkspace is a workspace (name and description are searchable).
	TypeWorkspace ContentType = "workspace"

	// TypeFile is an uploaded file (name and extracted text are searchable).
	TypeFile ContentType = "file"

	// TypeChatMessage is a chat message.
	TypeChatMessage ContentType = "chat_message"
)

// AllContentTypes returns the registry of supported content types in a
// stable order.
func AllContentTypes() []ContentType {
	return []ContentType{TypeNote, TypeWorkspace, TypeFile, TypeChatMessage}
}

// IsValid reports whether t is a registered content type.
func (t ContentType) IsValid() bool {
	switch t {
	case TypeNote, TypeWorkspace, TypeFile, TypeChatMessage:
		return true
	}
	return false
}

// DefaultTypeWeights returns the relevance multiplier per content type.
// Notes rank highest, chat messages lowest.
func DefaultTypeWeights() map[ContentType]float64 {
	return map[ContentType]float64{
		TypeNote:        1.0,
		TypeWorkspace:   0.9,
		TypeFile:        0.8,
		TypeChatMessage: 0.6,
	}
}
