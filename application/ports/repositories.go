package ports

import (
	"context"
	"errors"
	"time"

	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
)

// ErrTagNameTaken is returned by TagRepository.Create when the
// storage-level uniqueness condition on the normalized name fails.
// Callers treat it as "someone else just created it" and re-fetch.
var ErrTagNameTaken = errors.New("tag name already taken")

// NoteView selects exactly one of the three mutually exclusive
// listing views.
type NoteView string

const (
	ViewActive   NoteView = "active"
	ViewArchived NoteView = "archived"
	ViewTrashed  NoteView = "trashed"
)

// SortOrder selects the listing order
type SortOrder string

const (
	// SortDefault orders pinned-first, then newest-created-first
	SortDefault SortOrder = "default"
	// SortTitle orders by title ascending
	SortTitle SortOrder = "title"
	// SortUpdated orders most-recently-modified first
	SortUpdated SortOrder = "updated"
	// SortOldest orders by creation time ascending
	SortOldest SortOrder = "oldest"
)

// NoteFilter is the deterministic query specification handed to the
// note repository. A zero OwnerID means no ownership restriction.
type NoteFilter struct {
	OwnerID     string
	View        NoteView
	Category    *valueobjects.Category
	IsPinned    *bool
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	TagID       *valueobjects.TagID
}

// NoteRepository defines the persistence interface for notes. The
// storage engine behind it is an external collaborator; implementations
// translate NoteFilter and SortOrder into engine-native queries.
type NoteRepository interface {
	// Insert stores a new note
	Insert(ctx context.Context, note *entities.Note) error

	// FindByID retrieves a note by id, failing with a not found
	// error when it does not exist
	FindByID(ctx context.Context, id valueobjects.NoteID) (*entities.Note, error)

	// FindMany retrieves all notes matching the filter in the
	// requested order
	FindMany(ctx context.Context, filter NoteFilter, sort SortOrder) ([]*entities.Note, error)

	// Update persists the current state of an existing note
	Update(ctx context.Context, note *entities.Note) error

	// DeleteByID permanently removes a note record
	DeleteByID(ctx context.Context, id valueobjects.NoteID) error
}

// TagRepository defines the persistence interface for canonical tags
type TagRepository interface {
	// Create stores a new tag, failing with ErrTagNameTaken when a
	// tag with the same normalized name already exists
	Create(ctx context.Context, tag *entities.Tag) error

	// FindByName looks up a tag by its normalized name, returning
	// (nil, nil) when absent
	FindByName(ctx context.Context, name string) (*entities.Tag, error)

	// FindByIDs retrieves the tags for the given ids, skipping ids
	// that no longer resolve
	FindByIDs(ctx context.Context, ids []valueobjects.TagID) ([]*entities.Tag, error)

	// FindAll retrieves every tag
	FindAll(ctx context.Context) ([]*entities.Tag, error)
}
