package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-backend/domain/core/valueobjects"
	pkgerrors "notes-backend/pkg/errors"
)

func newTestNote(t *testing.T) *Note {
	t.Helper()

	color, err := valueobjects.NewColor("")
	require.NoError(t, err)

	note, err := NewNote("user-1", "Groceries", "milk, eggs", valueobjects.CategoryOther, color, false, nil)
	require.NoError(t, err)
	return note
}

func TestNewNote(t *testing.T) {
	t.Run("new notes start active with no deletion time", func(t *testing.T) {
		note := newTestNote(t)

		assert.Equal(t, StateActive, note.State())
		assert.False(t, note.IsArchived())
		assert.False(t, note.IsDeleted())
		assert.Nil(t, note.DeletedAt())
		assert.Equal(t, "user-1", note.OwnerID())
		assert.False(t, note.CreatedAt().IsZero())
	})

	t.Run("title and content are trimmed", func(t *testing.T) {
		color, _ := valueobjects.NewColor("")
		note, err := NewNote("user-1", "  Title  ", "  body  ", valueobjects.CategoryWork, color, false, nil)
		require.NoError(t, err)

		assert.Equal(t, "Title", note.Title())
		assert.Equal(t, "body", note.Content())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		color, _ := valueobjects.NewColor("")

		cases := []struct {
			name    string
			ownerID string
			title   string
			content string
		}{
			{"empty owner", "", "Title", "body"},
			{"empty title", "user-1", "", "body"},
			{"whitespace title", "user-1", "   ", "body"},
			{"title over limit", "user-1", strings.Repeat("x", 101), "body"},
			{"empty content", "user-1", "Title", ""},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewNote(tc.ownerID, tc.title, tc.content, valueobjects.CategoryOther, color, false, nil)
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
			})
		}
	})

	t.Run("title of exactly 100 runes is accepted", func(t *testing.T) {
		color, _ := valueobjects.NewColor("")
		_, err := NewNote("user-1", strings.Repeat("x", 100), "body", valueobjects.CategoryOther, color, false, nil)
		assert.NoError(t, err)
	})
}

func TestToggleArchive(t *testing.T) {
	t.Run("is its own inverse", func(t *testing.T) {
		note := newTestNote(t)

		require.NoError(t, note.ToggleArchive())
		assert.Equal(t, StateArchived, note.State())
		assert.True(t, note.IsArchived())

		require.NoError(t, note.ToggleArchive())
		assert.Equal(t, StateActive, note.State())
		assert.False(t, note.IsArchived())
	})

	t.Run("trashed note reports not found", func(t *testing.T) {
		note := newTestNote(t)
		note.SoftDelete()

		err := note.ToggleArchive()
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
		assert.Equal(t, StateTrashed, note.State())
	})
}

func TestSoftDeleteAndRestore(t *testing.T) {
	t.Run("soft delete records the deletion time", func(t *testing.T) {
		note := newTestNote(t)

		note.SoftDelete()

		assert.Equal(t, StateTrashed, note.State())
		assert.True(t, note.IsDeleted())
		require.NotNil(t, note.DeletedAt())
	})

	t.Run("restore clears the deletion time", func(t *testing.T) {
		note := newTestNote(t)

		note.SoftDelete()
		note.Restore()

		assert.Equal(t, StateActive, note.State())
		assert.False(t, note.IsDeleted())
		assert.Nil(t, note.DeletedAt())
	})

	t.Run("soft delete from archived", func(t *testing.T) {
		note := newTestNote(t)
		require.NoError(t, note.ToggleArchive())

		note.SoftDelete()

		assert.Equal(t, StateTrashed, note.State())
	})

	t.Run("restore from trash then archive", func(t *testing.T) {
		note := newTestNote(t)

		note.SoftDelete()
		note.Restore()
		require.NoError(t, note.ToggleArchive())

		assert.True(t, note.IsArchived())
		assert.False(t, note.IsDeleted())
		assert.Nil(t, note.DeletedAt())
	})

	t.Run("soft delete and restore are no-ops when already in the target state", func(t *testing.T) {
		note := newTestNote(t)

		note.Restore()
		assert.Equal(t, StateActive, note.State())

		note.SoftDelete()
		first := note.DeletedAt()
		note.SoftDelete()
		assert.Equal(t, first, note.DeletedAt())
	})
}

func TestUpdateContent(t *testing.T) {
	note := newTestNote(t)

	require.NoError(t, note.UpdateContent("New title", "new body"))
	assert.Equal(t, "New title", note.Title())
	assert.Equal(t, "new body", note.Content())

	err := note.UpdateContent("", "body")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestReplaceTags(t *testing.T) {
	note := newTestNote(t)

	a := valueobjects.NewTagID()
	b := valueobjects.NewTagID()

	note.ReplaceTags([]valueobjects.TagID{a, b})
	assert.Len(t, note.Tags(), 2)

	// explicit empty replacement clears all tags
	note.ReplaceTags([]valueobjects.TagID{})
	assert.Empty(t, note.Tags())
}

func TestAttachments(t *testing.T) {
	t.Run("appended in insertion order", func(t *testing.T) {
		note := newTestNote(t)

		first := NewAttachment("blob-1", "https://cdn/blob-1", "a.png")
		second := NewAttachment("blob-2", "https://cdn/blob-2", "b.png")
		note.AppendAttachment(first)
		note.AppendAttachment(second)

		atts := note.Attachments()
		require.Len(t, atts, 2)
		assert.Equal(t, "a.png", atts[0].Filename)
		assert.Equal(t, "b.png", atts[1].Filename)
		assert.NotEmpty(t, atts[0].ID)
		assert.NotEqual(t, atts[0].ID, atts[1].ID)
	})

	t.Run("remove by id returns the record", func(t *testing.T) {
		note := newTestNote(t)
		att := NewAttachment("blob-1", "https://cdn/blob-1", "a.png")
		note.AppendAttachment(att)

		removed, err := note.RemoveAttachment(att.ID)
		require.NoError(t, err)
		assert.Equal(t, "blob-1", removed.BlobRef)
		assert.Empty(t, note.Attachments())
	})

	t.Run("remove of unknown id reports not found", func(t *testing.T) {
		note := newTestNote(t)

		_, err := note.RemoveAttachment("missing")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("blob refs cover every attachment", func(t *testing.T) {
		note := newTestNote(t)
		note.AppendAttachment(NewAttachment("blob-1", "u1", "a"))
		note.AppendAttachment(NewAttachment("blob-2", "u2", "b"))

		assert.Equal(t, []string{"blob-1", "blob-2"}, note.BlobRefs())
	})
}
