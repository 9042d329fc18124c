package queries

import (
	"context"
	"errors"
	"time"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
	"notes-backend/pkg/common"
)

// ErrNoMatches signals that the requested filter can never match any
// note (the named tag does not exist), so the note repository should
// not be queried at all. It is consumed by NoteService and never
// surfaces to callers.
var ErrNoMatches = errors.New("filter matches no notes")

// ListOptions are the recognized filter and sort parameters of a
// listing request, already parsed from their transport encoding.
type ListOptions struct {
	Category string
	IsPinned *bool
	Search   string
	Tag      string
	// Archived and Trashed select the listing view; archived wins
	// when both are requested, and neither selects the active view.
	Archived bool
	Trashed  bool
	DateFrom *time.Time
	DateTo   *time.Time
	SortBy   string
}

// NoteQueryBuilder translates listing options into a deterministic
// repository query specification. Apart from the single tag-name
// lookup it performs no persistence calls and has no side effects.
type NoteQueryBuilder struct {
	tags ports.TagRepository
}

// NewNoteQueryBuilder creates a query builder
func NewNoteQueryBuilder(tags ports.TagRepository) *NoteQueryBuilder {
	return &NoteQueryBuilder{tags: tags}
}

// Build produces the (filter, sort) pair for the given caller and
// options. A nil caller applies no ownership restriction.
func (b *NoteQueryBuilder) Build(ctx context.Context, caller *common.Identity, opts ListOptions) (ports.NoteFilter, ports.SortOrder, error) {
	filter := ports.NoteFilter{View: selectView(opts)}

	if caller != nil {
		filter.OwnerID = caller.ID
	}

	if opts.Category != "" {
		category, err := valueobjects.NewCategory(opts.Category)
		if err != nil {
			return ports.NoteFilter{}, "", err
		}
		filter.Category = &category
	}

	filter.IsPinned = opts.IsPinned
	filter.Search = opts.Search
	filter.CreatedFrom = opts.DateFrom
	filter.CreatedTo = opts.DateTo

	if opts.Tag != "" {
		tag, err := b.tags.FindByName(ctx, entities.NormalizeTagName(opts.Tag))
		if err != nil {
			return ports.NoteFilter{}, "", err
		}
		if tag == nil {
			return ports.NoteFilter{}, "", ErrNoMatches
		}
		id := tag.ID()
		filter.TagID = &id
	}

	return filter, selectSort(opts.SortBy), nil
}

// selectView picks exactly one of the three mutually exclusive views
func selectView(opts ListOptions) ports.NoteView {
	switch {
	case opts.Archived:
		return ports.ViewArchived
	case opts.Trashed:
		return ports.ViewTrashed
	default:
		return ports.ViewActive
	}
}

// selectSort maps the sortBy parameter to an order, defaulting to
// pinned-first then newest-created-first for absent or unrecognized
// values.
func selectSort(sortBy string) ports.SortOrder {
	switch sortBy {
	case "title":
		return ports.SortTitle
	case "updated":
		return ports.SortUpdated
	case "oldest":
		return ports.SortOldest
	default:
		return ports.SortDefault
	}
}
