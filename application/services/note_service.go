package services

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/application/queries"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
	"notes-backend/pkg/common"
	pkgerrors "notes-backend/pkg/errors"
)

// CreateNoteInput is the request intent for creating a note
type CreateNoteInput struct {
	Title    string
	Content  string
	Category string
	Color    string
	IsPinned bool
	Tags     []string
}

// UpdateNoteInput is a partial update; nil fields are left untouched.
// A non-nil empty Tags slice clears all tags.
type UpdateNoteInput struct {
	Title    *string
	Content  *string
	Category *string
	Color    *string
	IsPinned *bool
	Tags     *[]string
}

// NoteResult is the serializable view of a note with resolved tags.
// The lifecycle state is presented as the two derived booleans the
// API has always exposed.
type NoteResult struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"userId"`
	Title       string                `json:"title"`
	Content     string                `json:"content"`
	Category    string                `json:"category"`
	Color       string                `json:"color"`
	IsPinned    bool                  `json:"isPinned"`
	Tags        []TagInfo             `json:"tags"`
	IsArchived  bool                  `json:"isArchived"`
	IsDeleted   bool                  `json:"isDeleted"`
	DeletedAt   *time.Time            `json:"deletedAt"`
	Attachments []entities.Attachment `json:"attachments"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// NoteService orchestrates note lifecycle, querying, attachments, and
// export under a single ownership guard.
type NoteService struct {
	notes       ports.NoteRepository
	tags        ports.TagRepository
	builder     *queries.NoteQueryBuilder
	resolver    *TagResolver
	attachments *AttachmentManager
	cleanup     ports.BlobCleanup
	renderer    ports.DocumentRenderer
	logger      *zap.Logger
}

// NewNoteService creates a note service
func NewNoteService(
	notes ports.NoteRepository,
	tags ports.TagRepository,
	builder *queries.NoteQueryBuilder,
	resolver *TagResolver,
	attachments *AttachmentManager,
	cleanup ports.BlobCleanup,
	renderer ports.DocumentRenderer,
	logger *zap.Logger,
) *NoteService {
	return &NoteService{
		notes:       notes,
		tags:        tags,
		builder:     builder,
		resolver:    resolver,
		attachments: attachments,
		cleanup:     cleanup,
		renderer:    renderer,
		logger:      logger,
	}
}

// Create stores a new note for the caller, resolving tag labels to
// canonical ids first.
func (s *NoteService) Create(ctx context.Context, caller *common.Identity, input CreateNoteInput) (*NoteResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	category, err := valueobjects.NewCategory(input.Category)
	if err != nil {
		return nil, err
	}
	color, err := valueobjects.NewColor(input.Color)
	if err != nil {
		return nil, err
	}

	var tagIDs []valueobjects.TagID
	if len(input.Tags) > 0 {
		tagIDs, err = s.resolver.Resolve(ctx, input.Tags)
		if err != nil {
			return nil, err
		}
	}

	note, err := entities.NewNote(caller.ID, input.Title, input.Content, category, color, input.IsPinned, tagIDs)
	if err != nil {
		return nil, err
	}

	if err := s.notes.Insert(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(err, "insert note")
	}

	s.logger.Info("note created",
		zap.String("noteID", note.ID().String()),
		zap.String("ownerID", caller.ID),
	)

	return s.toResult(ctx, note)
}

// List returns the caller's notes matching the filter options. An
// anonymous caller browses without an ownership restriction.
func (s *NoteService) List(ctx context.Context, caller *common.Identity, opts queries.ListOptions) ([]*NoteResult, error) {
	filter, order, err := s.builder.Build(ctx, caller, opts)
	if err != nil {
		if errors.Is(err, queries.ErrNoMatches) {
			return []*NoteResult{}, nil
		}
		return nil, err
	}

	notes, err := s.notes.FindMany(ctx, filter, order)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list notes")
	}

	results := make([]*NoteResult, 0, len(notes))
	for _, note := range notes {
		result, err := s.toResult(ctx, note)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Get returns a single note by id. A caller sees only their own
// notes; anonymous requests are not restricted.
func (s *NoteService) Get(ctx context.Context, caller *common.Identity, noteID string) (*NoteResult, error) {
	id, err := parseNoteID(noteID)
	if err != nil {
		return nil, err
	}

	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != nil && !note.IsOwnedBy(caller.ID) {
		return nil, pkgerrors.NewNotFoundError("note")
	}

	return s.toResult(ctx, note)
}

// Update applies a partial update to the caller's note. Supplying an
// explicit empty tag list clears all tags; omitting the field leaves
// them untouched.
func (s *NoteService) Update(ctx context.Context, caller *common.Identity, noteID string, input UpdateNoteInput) (*NoteResult, error) {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil || input.Content != nil {
		title := note.Title()
		content := note.Content()
		if input.Title != nil {
			title = *input.Title
		}
		if input.Content != nil {
			content = *input.Content
		}
		if err := note.UpdateContent(title, content); err != nil {
			return nil, err
		}
	}

	if input.Category != nil {
		category, err := valueobjects.NewCategory(*input.Category)
		if err != nil {
			return nil, err
		}
		if err := note.ChangeCategory(category); err != nil {
			return nil, err
		}
	}

	if input.Color != nil {
		color, err := valueobjects.NewColor(*input.Color)
		if err != nil {
			return nil, err
		}
		note.ChangeColor(color)
	}

	if input.IsPinned != nil {
		note.SetPinned(*input.IsPinned)
	}

	if input.Tags != nil {
		tagIDs, err := s.resolver.Resolve(ctx, *input.Tags)
		if err != nil {
			return nil, err
		}
		note.ReplaceTags(tagIDs)
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(err, "update note")
	}

	return s.toResult(ctx, note)
}

// SoftDelete moves the caller's note to the trash
func (s *NoteService) SoftDelete(ctx context.Context, caller *common.Identity, noteID string) (*NoteResult, error) {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return nil, err
	}

	note.SoftDelete()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(err, "soft delete note")
	}
	return s.toResult(ctx, note)
}

// ToggleArchive flips the caller's note between the active and
// archived states. Trashed notes report not found.
func (s *NoteService) ToggleArchive(ctx context.Context, caller *common.Identity, noteID string) (*NoteResult, error) {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return nil, err
	}

	if err := note.ToggleArchive(); err != nil {
		return nil, err
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(err, "toggle archive")
	}
	return s.toResult(ctx, note)
}

// Restore returns the caller's trashed note to the active state
func (s *NoteService) Restore(ctx context.Context, caller *common.Identity, noteID string) (*NoteResult, error) {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return nil, err
	}

	note.Restore()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(err, "restore note")
	}
	return s.toResult(ctx, note)
}

// PermanentDelete removes the note record and schedules every
// attachment blob for asynchronous release. The record delete is
// never blocked on blob cleanup.
func (s *NoteService) PermanentDelete(ctx context.Context, caller *common.Identity, noteID string) error {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return err
	}

	refs := note.BlobRefs()

	if err := s.notes.DeleteByID(ctx, note.ID()); err != nil {
		return pkgerrors.Wrap(err, "permanently delete note")
	}

	if len(refs) > 0 {
		s.cleanup.Schedule(refs...)
	}

	s.logger.Info("note permanently deleted",
		zap.String("noteID", note.ID().String()),
		zap.Int("blobsScheduled", len(refs)),
	)
	return nil
}

// AddAttachment uploads a blob and appends its metadata record to the
// caller's note. Trashed notes report not found.
func (s *NoteService) AddAttachment(ctx context.Context, caller *common.Identity, noteID string, data []byte, meta ports.BlobMetadata) (entities.Attachment, error) {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return entities.Attachment{}, err
	}
	if note.IsDeleted() {
		return entities.Attachment{}, pkgerrors.NewNotFoundError("note")
	}
	if len(data) == 0 {
		return entities.Attachment{}, pkgerrors.NewValidationError("no file uploaded")
	}

	return s.attachments.Add(ctx, note, data, meta)
}

// RemoveAttachment releases an attachment's blob and drops its record
// from the caller's note.
func (s *NoteService) RemoveAttachment(ctx context.Context, caller *common.Identity, noteID, attachmentID string) error {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return err
	}

	return s.attachments.Remove(ctx, note, attachmentID)
}

// Export composes the note and its resolved tag names into a
// structured document and streams the rendered artifact to w. The
// note's title is returned for the caller to name the artifact.
func (s *NoteService) Export(ctx context.Context, caller *common.Identity, noteID string, w io.Writer) (string, error) {
	note, err := s.loadOwned(ctx, caller, noteID)
	if err != nil {
		return "", err
	}

	tagNames, err := s.resolver.Names(ctx, note.Tags())
	if err != nil {
		return "", err
	}

	doc := ports.ExportDocument{
		Title:     note.Title(),
		Category:  note.Category().String(),
		CreatedAt: note.CreatedAt(),
		TagNames:  tagNames,
		Body:      note.Content(),
	}

	if err := s.renderer.Render(ctx, doc, w); err != nil {
		return "", pkgerrors.Wrap(err, "render note export")
	}
	return note.Title(), nil
}

// requireCaller rejects anonymous callers on mutating operations
func requireCaller(caller *common.Identity) error {
	if caller == nil || caller.ID == "" {
		return pkgerrors.NewUnauthorizedError("you must be logged in")
	}
	return nil
}

// loadOwned is the single ownership gate for state-changing
// operations: the note must exist and belong to the caller. Absence
// and ownership mismatch are reported identically so the existence of
// other users' notes never leaks.
func (s *NoteService) loadOwned(ctx context.Context, caller *common.Identity, noteID string) (*entities.Note, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	id, err := parseNoteID(noteID)
	if err != nil {
		return nil, err
	}

	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.IsOwnedBy(caller.ID) {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	return note, nil
}

func parseNoteID(raw string) (valueobjects.NoteID, error) {
	id, err := valueobjects.NewNoteIDFromString(raw)
	if err != nil {
		return valueobjects.NoteID{}, pkgerrors.NewValidationError("invalid note ID format")
	}
	return id, nil
}

// toResult builds the serializable view of a note with resolved tags
func (s *NoteService) toResult(ctx context.Context, note *entities.Note) (*NoteResult, error) {
	tags, err := s.tags.FindByIDs(ctx, note.Tags())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "resolve note tags")
	}

	infos := make([]TagInfo, 0, len(tags))
	for _, tag := range tags {
		infos = append(infos, TagInfo{
			ID:    tag.ID().String(),
			Name:  tag.Name(),
			Color: tag.Color(),
		})
	}

	return &NoteResult{
		ID:          note.ID().String(),
		OwnerID:     note.OwnerID(),
		Title:       note.Title(),
		Content:     note.Content(),
		Category:    note.Category().String(),
		Color:       note.Color().String(),
		IsPinned:    note.IsPinned(),
		Tags:        infos,
		IsArchived:  note.IsArchived(),
		IsDeleted:   note.IsDeleted(),
		DeletedAt:   note.DeletedAt(),
		Attachments: note.Attachments(),
		CreatedAt:   note.CreatedAt(),
		UpdatedAt:   note.UpdatedAt(),
	}, nil
}
