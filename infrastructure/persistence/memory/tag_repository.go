package memory

import (
	"context"
	"sort"
	"sync"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
)

// TagRepository is an in-memory implementation of ports.TagRepository.
// Name uniqueness is enforced under the lock, mirroring the
// conditional-put behavior of the DynamoDB implementation.
type TagRepository struct {
	mu     sync.RWMutex
	byID   map[string]*entities.Tag
	byName map[string]*entities.Tag
}

// NewTagRepository creates an empty in-memory tag repository
func NewTagRepository() *TagRepository {
	return &TagRepository{
		byID:   make(map[string]*entities.Tag),
		byName: make(map[string]*entities.Tag),
	}
}

// Create stores a new tag, failing with ErrTagNameTaken when a tag
// with the same normalized name already exists
func (r *TagRepository) Create(ctx context.Context, tag *entities.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[tag.Name()]; exists {
		return ports.ErrTagNameTaken
	}
	r.byID[tag.ID().String()] = tag
	r.byName[tag.Name()] = tag
	return nil
}

// FindByName looks up a tag by its normalized name
func (r *TagRepository) FindByName(ctx context.Context, name string) (*entities.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byName[name], nil
}

// FindByIDs retrieves the tags for the given ids, skipping ids that
// no longer resolve
func (r *TagRepository) FindByIDs(ctx context.Context, ids []valueobjects.TagID) ([]*entities.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]*entities.Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := r.byID[id.String()]; ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// FindAll retrieves every tag ordered by name
func (r *TagRepository) FindAll(ctx context.Context) ([]*entities.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]*entities.Tag, 0, len(r.byID))
	for _, tag := range r.byID {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name() < tags[j].Name()
	})
	return tags, nil
}
