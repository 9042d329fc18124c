package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
	pkgerrors "notes-backend/pkg/errors"
)

// NoteRepository is an in-memory implementation of ports.NoteRepository.
// It backs the test suites and the local development mode; filter and
// sort semantics mirror the DynamoDB implementation.
type NoteRepository struct {
	mu    sync.RWMutex
	notes map[string]*entities.Note
}

// NewNoteRepository creates an empty in-memory note repository
func NewNoteRepository() *NoteRepository {
	return &NoteRepository{notes: make(map[string]*entities.Note)}
}

// Insert stores a new note
func (r *NoteRepository) Insert(ctx context.Context, note *entities.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes[note.ID().String()] = note
	return nil
}

// FindByID retrieves a note by id
func (r *NoteRepository) FindByID(ctx context.Context, id valueobjects.NoteID) (*entities.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	return note, nil
}

// FindMany retrieves all notes matching the filter in the requested order
func (r *NoteRepository) FindMany(ctx context.Context, filter ports.NoteFilter, order ports.SortOrder) ([]*entities.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*entities.Note, 0)
	for _, note := range r.notes {
		if matches(note, filter) {
			matched = append(matched, note)
		}
	}

	sortNotes(matched, order)
	return matched, nil
}

// Update persists the current state of an existing note
func (r *NoteRepository) Update(ctx context.Context, note *entities.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[note.ID().String()]; !ok {
		return pkgerrors.NewNotFoundError("note")
	}
	r.notes[note.ID().String()] = note
	return nil
}

// DeleteByID permanently removes a note record
func (r *NoteRepository) DeleteByID(ctx context.Context, id valueobjects.NoteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id.String()]; !ok {
		return pkgerrors.NewNotFoundError("note")
	}
	delete(r.notes, id.String())
	return nil
}

func matches(note *entities.Note, filter ports.NoteFilter) bool {
	if filter.OwnerID != "" && note.OwnerID() != filter.OwnerID {
		return false
	}

	switch filter.View {
	case ports.ViewArchived:
		if note.State() != entities.StateArchived {
			return false
		}
	case ports.ViewTrashed:
		if note.State() != entities.StateTrashed {
			return false
		}
	default:
		if note.State() != entities.StateActive {
			return false
		}
	}

	if filter.Category != nil && note.Category() != *filter.Category {
		return false
	}
	if filter.IsPinned != nil && note.IsPinned() != *filter.IsPinned {
		return false
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		title := strings.ToLower(note.Title())
		content := strings.ToLower(note.Content())
		if !strings.Contains(title, needle) && !strings.Contains(content, needle) {
			return false
		}
	}

	if filter.CreatedFrom != nil && note.CreatedAt().Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && note.CreatedAt().After(*filter.CreatedTo) {
		return false
	}

	if filter.TagID != nil {
		found := false
		for _, tagID := range note.Tags() {
			if tagID.Equals(*filter.TagID) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func sortNotes(notes []*entities.Note, order ports.SortOrder) {
	switch order {
	case ports.SortTitle:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].Title() < notes[j].Title()
		})
	case ports.SortUpdated:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].UpdatedAt().After(notes[j].UpdatedAt())
		})
	case ports.SortOldest:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].CreatedAt().Before(notes[j].CreatedAt())
		})
	default:
		// pinned first, then newest created first
		sort.SliceStable(notes, func(i, j int) bool {
			if notes[i].IsPinned() != notes[j].IsPinned() {
				return notes[i].IsPinned()
			}
			return notes[i].CreatedAt().After(notes[j].CreatedAt())
		})
	}
}
