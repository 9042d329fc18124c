package services

import (
	"context"

	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	pkgerrors "notes-backend/pkg/errors"
)

// AttachmentManager coordinates a note's attachment metadata sequence
// with the external blob store. The store owns the blobs; the note
// holds the metadata pointers.
type AttachmentManager struct {
	notes  ports.NoteRepository
	blobs  ports.BlobStore
	logger *zap.Logger
}

// NewAttachmentManager creates an attachment manager
func NewAttachmentManager(notes ports.NoteRepository, blobs ports.BlobStore, logger *zap.Logger) *AttachmentManager {
	return &AttachmentManager{notes: notes, blobs: blobs, logger: logger}
}

// Add uploads the data to the blob store, appends the resulting
// attachment record to the note, and persists the note. A blob
// already uploaded when a later step fails is not rolled back.
func (m *AttachmentManager) Add(ctx context.Context, note *entities.Note, data []byte, meta ports.BlobMetadata) (entities.Attachment, error) {
	upload, err := m.blobs.Upload(ctx, data, meta)
	if err != nil {
		return entities.Attachment{}, pkgerrors.Wrap(err, "upload attachment")
	}

	att := entities.NewAttachment(upload.Ref, upload.URL, meta.Filename)
	note.AppendAttachment(att)

	if err := m.notes.Update(ctx, note); err != nil {
		m.logger.Error("attachment uploaded but note update failed",
			zap.String("noteID", note.ID().String()),
			zap.String("blobRef", upload.Ref),
			zap.Error(err),
		)
		return entities.Attachment{}, pkgerrors.Wrap(err, "persist attachment")
	}

	return att, nil
}

// Remove releases the attachment's blob, drops the record from the
// note's sequence, and persists the note. An unknown attachment id
// fails with a not found error.
func (m *AttachmentManager) Remove(ctx context.Context, note *entities.Note, attachmentID string) error {
	var target *entities.Attachment
	for _, att := range note.Attachments() {
		if att.ID == attachmentID {
			a := att
			target = &a
			break
		}
	}
	if target == nil {
		return pkgerrors.NewNotFoundError("attachment")
	}

	if target.BlobRef != "" {
		if err := m.blobs.Release(ctx, target.BlobRef); err != nil {
			return pkgerrors.Wrap(err, "release attachment blob")
		}
	}

	if _, err := note.RemoveAttachment(attachmentID); err != nil {
		return err
	}

	return m.notes.Update(ctx, note)
}
