package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceItem_Normalise(t *testing.T) {
	now := time.Now()
	item := SourceItem{
		ID:          "n1",
		Type:        TypeNote,
		OwnerID:     "u1",
		WorkspaceID: "w1",
		Title:       "  Meeting   Notes ",
		Body:        "Q1 Planning\nAgenda",
		Tags:        []string{"Planning", "Q1"},
		Visibility:  VisibilityPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	entry, err := item.Normalise()
	require.NoError(t, err)

	assert.Equal(t, "n1", entry.ID)
	assert.Equal(t, TypeNote, entry.Type)
	assert.Equal(t, "meeting notes", entry.NormTitle)
	assert.Equal(t, "q1 planning agenda", entry.NormBody)
	assert.Equal(t, "planning q1", entry.NormTags)
	// Original fields are preserved for display.
	assert.Equal(t, "  Meeting   Notes ", entry.Title)
}

func TestSourceItem_Normalise_MalformedEncoding(t *testing.T) {
	item := SourceItem{
		ID:    "n1",
		Type:  TypeNote,
		Title: "ok",
		Body:  string([]byte{0xff, 0xfe, 0xfd}),
	}

	_, err := item.Normalise()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSourceItem_Normalise_MissingIdentity(t *testing.T) {
	tests := []struct {
		name string
		item SourceItem
	}{
		{"empty id", SourceItem{Type: TypeNote}},
		{"invalid type", SourceItem{ID: "x", Type: ContentType("video")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.item.Normalise()
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestContentType_IsValid(t *testing.T) {
	for _, ct := range AllContentTypes() {
		assert.True(t, ct.IsValid(), string(ct))
	}
	assert.False(t, ContentType("video").IsValid())
	assert.False(t, ContentType("").IsValid())
}

func TestDefaultTypeWeights_CoverAllTypes(t *testing.T) {
	weights := DefaultTypeWeights()
	for _, ct := range AllContentTypes() {
		w, ok := weights[ct]
		require.True(t, ok, string(ct))
		assert.Greater(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}
	// Notes outrank chat messages for identical content.
	assert.Greater(t, weights[TypeNote], weights[TypeChatMessage])
}
