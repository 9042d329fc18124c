package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	"notes-backend/domain/core/valueobjects"
	pkgerrors "notes-backend/pkg/errors"
)

// MaxTitleLength is the upper bound on note titles in runes
const MaxTitleLength = 100

// NoteState is the single lifecycle state of a note. Modeling the
// lifecycle as one field rather than independent archived/deleted
// flags makes the deleted-and-archived combination unrepresentable.
type NoteState string

const (
	StateActive   NoteState = "active"
	StateArchived NoteState = "archived"
	StateTrashed  NoteState = "trashed"
)

// Note is a user-owned document. Fields are private; all state changes
// go through methods that enforce the lifecycle transition rules.
type Note struct {
	id          valueobjects.NoteID
	ownerID     string
	title       string
	content     string
	category    valueobjects.Category
	color       valueobjects.Color
	pinned      bool
	tags        []valueobjects.TagID
	state       NoteState
	deletedAt   *time.Time
	attachments []Attachment
	createdAt   time.Time
	updatedAt   time.Time
}

// NewNote creates an active note with validation. Ownership is fixed
// for the note's entire lifetime.
func NewNote(ownerID, title, content string, category valueobjects.Category, color valueobjects.Color, pinned bool, tags []valueobjects.TagID) (*Note, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("owner ID cannot be empty")
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return nil, pkgerrors.NewValidationError("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, pkgerrors.NewValidationError("title cannot exceed 100 characters")
	}
	if content == "" {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	if !category.IsValid() {
		return nil, pkgerrors.NewValidationError("invalid category")
	}

	now := time.Now()
	return &Note{
		id:          valueobjects.NewNoteID(),
		ownerID:     ownerID,
		title:       title,
		content:     content,
		category:    category,
		color:       color,
		pinned:      pinned,
		tags:        append([]valueobjects.TagID(nil), tags...),
		state:       StateActive,
		attachments: []Attachment{},
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructNote rebuilds a note from repository data with preserved
// timestamps and state. No creation-time validation is re-applied.
func ReconstructNote(
	id valueobjects.NoteID,
	ownerID, title, content string,
	category valueobjects.Category,
	color valueobjects.Color,
	pinned bool,
	tags []valueobjects.TagID,
	state NoteState,
	deletedAt *time.Time,
	attachments []Attachment,
	createdAt, updatedAt time.Time,
) *Note {
	return &Note{
		id:          id,
		ownerID:     ownerID,
		title:       title,
		content:     content,
		category:    category,
		color:       color,
		pinned:      pinned,
		tags:        append([]valueobjects.TagID(nil), tags...),
		state:       state,
		deletedAt:   deletedAt,
		attachments: append([]Attachment(nil), attachments...),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the note's unique identifier
func (n *Note) ID() valueobjects.NoteID {
	return n.id
}

// OwnerID returns the owning user's ID
func (n *Note) OwnerID() string {
	return n.ownerID
}

// Title returns the note's title
func (n *Note) Title() string {
	return n.title
}

// Content returns the note's body text
func (n *Note) Content() string {
	return n.content
}

// Category returns the note's category
func (n *Note) Category() valueobjects.Category {
	return n.category
}

// Color returns the note's presentation color
func (n *Note) Color() valueobjects.Color {
	return n.color
}

// IsPinned returns the pinned flag
func (n *Note) IsPinned() bool {
	return n.pinned
}

// State returns the note's lifecycle state
func (n *Note) State() NoteState {
	return n.state
}

// IsArchived reports whether the note is in the archived state
func (n *Note) IsArchived() bool {
	return n.state == StateArchived
}

// IsDeleted reports whether the note is in the trash
func (n *Note) IsDeleted() bool {
	return n.state == StateTrashed
}

// DeletedAt returns when the note entered the trash, nil otherwise
func (n *Note) DeletedAt() *time.Time {
	if n.deletedAt == nil {
		return nil
	}
	t := *n.deletedAt
	return &t
}

// Tags returns the note's tag references
func (n *Note) Tags() []valueobjects.TagID {
	return append([]valueobjects.TagID(nil), n.tags...)
}

// CreatedAt returns when the note was created
func (n *Note) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the note was last modified
func (n *Note) UpdatedAt() time.Time {
	return n.updatedAt
}

// IsOwnedBy reports whether the given user owns this note
func (n *Note) IsOwnedBy(userID string) bool {
	return n.ownerID == userID
}

// UpdateContent replaces the title and body text with validation
func (n *Note) UpdateContent(title, content string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return pkgerrors.NewValidationError("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return pkgerrors.NewValidationError("title cannot exceed 100 characters")
	}
	if content == "" {
		return pkgerrors.NewValidationError("content cannot be empty")
	}

	n.title = title
	n.content = content
	n.touch()
	return nil
}

// ChangeCategory sets the note's category
func (n *Note) ChangeCategory(category valueobjects.Category) error {
	if !category.IsValid() {
		return pkgerrors.NewValidationError("invalid category")
	}
	n.category = category
	n.touch()
	return nil
}

// ChangeColor sets the note's presentation color
func (n *Note) ChangeColor(color valueobjects.Color) {
	n.color = color
	n.touch()
}

// SetPinned sets the pinned flag
func (n *Note) SetPinned(pinned bool) {
	n.pinned = pinned
	n.touch()
}

// ReplaceTags replaces the tag references wholesale. An empty slice
// clears all tags.
func (n *Note) ReplaceTags(tags []valueobjects.TagID) {
	n.tags = append([]valueobjects.TagID(nil), tags...)
	n.touch()
}

// ToggleArchive flips between the active and archived states. A
// trashed note is not visible to archive toggling and reports not
// found, matching the lookup semantics of the other operations.
func (n *Note) ToggleArchive() error {
	switch n.state {
	case StateActive:
		n.state = StateArchived
	case StateArchived:
		n.state = StateActive
	case StateTrashed:
		return pkgerrors.NewNotFoundError("note")
	}
	n.touch()
	return nil
}

// SoftDelete moves the note to the trash from either the active or
// archived state, recording the deletion time. Already-trashed notes
// are left unchanged.
func (n *Note) SoftDelete() {
	if n.state == StateTrashed {
		return
	}
	now := time.Now()
	n.state = StateTrashed
	n.deletedAt = &now
	n.touch()
}

// Restore returns a trashed note to the active state and clears the
// deletion time. Notes not in the trash are left unchanged.
func (n *Note) Restore() {
	if n.state != StateTrashed {
		return
	}
	n.state = StateActive
	n.deletedAt = nil
	n.touch()
}

func (n *Note) touch() {
	n.updatedAt = time.Now()
}
