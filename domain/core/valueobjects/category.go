package valueobjects

import pkgerrors "notes-backend/pkg/errors"

// Category is the fixed classification a note belongs to
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryIdeas    Category = "Ideas"
	CategoryStudy    Category = "Study"
	CategoryTodo     Category = "Todo"
	CategoryOther    Category = "Other"
)

// DefaultCategory is applied when no category is supplied
const DefaultCategory = CategoryOther

var validCategories = map[Category]bool{
	CategoryWork:     true,
	CategoryPersonal: true,
	CategoryIdeas:    true,
	CategoryStudy:    true,
	CategoryTodo:     true,
	CategoryOther:    true,
}

// NewCategory validates a raw category string. An empty string yields
// the default category.
func NewCategory(raw string) (Category, error) {
	if raw == "" {
		return DefaultCategory, nil
	}
	c := Category(raw)
	if !validCategories[c] {
		return "", pkgerrors.NewValidationError("invalid category: " + raw)
	}
	return c, nil
}

// String returns the category as a string
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the category is a member of the fixed set
func (c Category) IsValid() bool {
	return validCategories[c]
}
