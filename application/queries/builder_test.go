package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
	"notes-backend/infrastructure/persistence/memory"
	"notes-backend/pkg/common"
	pkgerrors "notes-backend/pkg/errors"
)

func TestBuildViews(t *testing.T) {
	builder := NewNoteQueryBuilder(memory.NewTagRepository())
	caller := &common.Identity{ID: "user-1", Role: common.RoleUser}

	cases := []struct {
		name string
		opts ListOptions
		want ports.NoteView
	}{
		{"default is active", ListOptions{}, ports.ViewActive},
		{"archived", ListOptions{Archived: true}, ports.ViewArchived},
		{"trashed", ListOptions{Trashed: true}, ports.ViewTrashed},
		{"archived wins over trashed", ListOptions{Archived: true, Trashed: true}, ports.ViewArchived},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filter, _, err := builder.Build(context.Background(), caller, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, filter.View)
		})
	}
}

func TestBuildOwnership(t *testing.T) {
	builder := NewNoteQueryBuilder(memory.NewTagRepository())

	t.Run("caller restricts to own notes", func(t *testing.T) {
		filter, _, err := builder.Build(context.Background(), &common.Identity{ID: "user-1"}, ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, "user-1", filter.OwnerID)
	})

	t.Run("anonymous applies no ownership restriction", func(t *testing.T) {
		filter, _, err := builder.Build(context.Background(), nil, ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, filter.OwnerID)
	})
}

func TestBuildFilters(t *testing.T) {
	builder := NewNoteQueryBuilder(memory.NewTagRepository())
	pinned := true
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	filter, _, err := builder.Build(context.Background(), nil, ListOptions{
		Category: "Work",
		IsPinned: &pinned,
		Search:   "milk",
		DateFrom: &from,
		DateTo:   &to,
	})
	require.NoError(t, err)

	require.NotNil(t, filter.Category)
	assert.Equal(t, valueobjects.CategoryWork, *filter.Category)
	require.NotNil(t, filter.IsPinned)
	assert.True(t, *filter.IsPinned)
	assert.Equal(t, "milk", filter.Search)
	assert.Equal(t, &from, filter.CreatedFrom)
	assert.Equal(t, &to, filter.CreatedTo)
}

func TestBuildInvalidCategory(t *testing.T) {
	builder := NewNoteQueryBuilder(memory.NewTagRepository())

	_, _, err := builder.Build(context.Background(), nil, ListOptions{Category: "Groceries"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestBuildSort(t *testing.T) {
	builder := NewNoteQueryBuilder(memory.NewTagRepository())

	cases := []struct {
		sortBy string
		want   ports.SortOrder
	}{
		{"title", ports.SortTitle},
		{"updated", ports.SortUpdated},
		{"oldest", ports.SortOldest},
		{"", ports.SortDefault},
		{"bogus", ports.SortDefault},
	}

	for _, tc := range cases {
		_, order, err := builder.Build(context.Background(), nil, ListOptions{SortBy: tc.sortBy})
		require.NoError(t, err)
		assert.Equal(t, tc.want, order, "sortBy=%q", tc.sortBy)
	}
}

func TestBuildTagFilter(t *testing.T) {
	tags := memory.NewTagRepository()
	builder := NewNoteQueryBuilder(tags)

	tag, err := entities.NewTag("errand", "")
	require.NoError(t, err)
	require.NoError(t, tags.Create(context.Background(), tag))

	t.Run("tag name resolves case-insensitively", func(t *testing.T) {
		filter, _, err := builder.Build(context.Background(), nil, ListOptions{Tag: " ERRAND "})
		require.NoError(t, err)
		require.NotNil(t, filter.TagID)
		assert.True(t, filter.TagID.Equals(tag.ID()))
	})

	t.Run("unknown tag short-circuits", func(t *testing.T) {
		_, _, err := builder.Build(context.Background(), nil, ListOptions{Tag: "nope"})
		assert.ErrorIs(t, err, ErrNoMatches)
	})
}
