package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
	pkgerrors "notes-backend/pkg/errors"
)

// TagInfo is the serializable view of a canonical tag
type TagInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// TagResolver normalizes free-text tag labels into canonical tag ids,
// creating tag entities on demand the first time a label is seen.
type TagResolver struct {
	tags   ports.TagRepository
	logger *zap.Logger
}

// NewTagResolver creates a tag resolver
func NewTagResolver(tags ports.TagRepository, logger *zap.Logger) *TagResolver {
	return &TagResolver{tags: tags, logger: logger}
}

// Resolve maps each label to a canonical tag id, preserving input
// order. Duplicate labels pass through as repeated ids. Tag creation
// is a persistent side effect and is not rolled back if a later label
// fails.
func (r *TagResolver) Resolve(ctx context.Context, labels []string) ([]valueobjects.TagID, error) {
	ids := make([]valueobjects.TagID, 0, len(labels))

	for _, label := range labels {
		name := entities.NormalizeTagName(label)
		if name == "" {
			return nil, pkgerrors.NewValidationError("tag name cannot be empty")
		}

		tag, err := r.tags.FindByName(ctx, name)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "look up tag")
		}

		if tag == nil {
			tag, err = r.createTag(ctx, label, name)
			if err != nil {
				return nil, err
			}
		}

		ids = append(ids, tag.ID())
	}

	return ids, nil
}

// createTag inserts a new tag for an unseen label. The storage layer
// enforces uniqueness on the normalized name; losing the create race
// means another caller's entity is the canonical one, so re-fetch and
// use it.
func (r *TagResolver) createTag(ctx context.Context, label, name string) (*entities.Tag, error) {
	tag, err := entities.NewTag(label, "")
	if err != nil {
		return nil, err
	}

	err = r.tags.Create(ctx, tag)
	if err == nil {
		r.logger.Debug("created tag", zap.String("name", name), zap.String("tagID", tag.ID().String()))
		return tag, nil
	}

	if !errors.Is(err, ports.ErrTagNameTaken) {
		return nil, pkgerrors.Wrap(err, "create tag")
	}

	winner, err := r.tags.FindByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "re-fetch tag after create race")
	}
	if winner == nil {
		return nil, pkgerrors.NewInternalError("tag vanished after duplicate-name conflict")
	}
	return winner, nil
}

// Names maps tag ids to their normalized names, skipping ids that no
// longer resolve. Order follows the input ids.
func (r *TagResolver) Names(ctx context.Context, ids []valueobjects.TagID) ([]string, error) {
	tags, err := r.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "resolve tag names")
	}

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name())
	}
	return names, nil
}

// All returns every canonical tag
func (r *TagResolver) All(ctx context.Context) ([]TagInfo, error) {
	tags, err := r.tags.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list tags")
	}

	infos := make([]TagInfo, 0, len(tags))
	for _, tag := range tags {
		infos = append(infos, TagInfo{
			ID:    tag.ID().String(),
			Name:  tag.Name(),
			Color: tag.Color(),
		})
	}
	return infos, nil
}
