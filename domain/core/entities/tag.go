package entities

import (
	"strings"
	"time"

	"notes-backend/domain/core/valueobjects"
	pkgerrors "notes-backend/pkg/errors"
)

// NormalizeTagName lowercases and trims a free-text tag label into
// its canonical form.
func NormalizeTagName(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Tag is a canonical label. Tags are created lazily the first time an
// unseen label is referenced and are never deleted automatically.
type Tag struct {
	id        valueobjects.TagID
	name      string
	color     string
	createdAt time.Time
}

// NewTag creates a tag from a free-text label, normalizing the name.
// The color is optional and may be empty.
func NewTag(label, color string) (*Tag, error) {
	name := NormalizeTagName(label)
	if name == "" {
		return nil, pkgerrors.NewValidationError("tag name cannot be empty")
	}
	return &Tag{
		id:        valueobjects.NewTagID(),
		name:      name,
		color:     color,
		createdAt: time.Now(),
	}, nil
}

// ReconstructTag rebuilds a tag from repository data
func ReconstructTag(id valueobjects.TagID, name, color string, createdAt time.Time) *Tag {
	return &Tag{
		id:        id,
		name:      name,
		color:     color,
		createdAt: createdAt,
	}
}

// ID returns the tag's unique identifier
func (t *Tag) ID() valueobjects.TagID {
	return t.id
}

// Name returns the normalized tag name
func (t *Tag) Name() string {
	return t.name
}

// Color returns the tag's display color, empty when unset
func (t *Tag) Color() string {
	return t.color
}

// CreatedAt returns when the tag was created
func (t *Tag) CreatedAt() time.Time {
	return t.createdAt
}
