package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// TagID is a value object representing a canonical tag identifier
type TagID struct {
	value string
}

// NewTagID creates a new random TagID
func NewTagID() TagID {
	return TagID{value: uuid.New().String()}
}

// NewTagIDFromString creates a TagID from an existing string
func NewTagIDFromString(id string) (TagID, error) {
	if id == "" {
		return TagID{}, errors.New("tag ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return TagID{}, errors.New("tag ID must be a valid UUID")
	}
	return TagID{value: id}, nil
}

// String returns the string representation of the TagID
func (id TagID) String() string {
	return id.value
}

// Equals checks if two TagIDs are equal
func (id TagID) Equals(other TagID) bool {
	return id.value == other.value
}

// IsZero checks if the TagID is the zero value
func (id TagID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id TagID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *TagID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("TagID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
