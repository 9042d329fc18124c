package valueobjects

import (
	"regexp"

	pkgerrors "notes-backend/pkg/errors"
)

// DefaultNoteColor is the presentation color applied when none is supplied
const DefaultNoteColor = "#ffffff"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Color is a hex RGB presentation color in #RRGGBB form
type Color struct {
	value string
}

// NewColor validates a raw color string. An empty string yields the
// default color.
func NewColor(raw string) (Color, error) {
	if raw == "" {
		return Color{value: DefaultNoteColor}, nil
	}
	if !hexColorPattern.MatchString(raw) {
		return Color{}, pkgerrors.NewValidationError("color must be a hex code in #RRGGBB form")
	}
	return Color{value: raw}, nil
}

// String returns the color as a string
func (c Color) String() string {
	if c.value == "" {
		return DefaultNoteColor
	}
	return c.value
}

// Equals checks if two colors are equal
func (c Color) Equals(other Color) bool {
	return c.String() == other.String()
}
