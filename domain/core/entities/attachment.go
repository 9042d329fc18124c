package entities

import (
	"time"

	"github.com/google/uuid"

	pkgerrors "notes-backend/pkg/errors"
)

// Attachment is the metadata record for a blob held in external
// storage. The blob itself is owned by the store; the note holds only
// this pointer.
type Attachment struct {
	ID         string    `json:"id"`
	BlobRef    string    `json:"blobRef"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// NewAttachment creates an attachment record with a freshly assigned
// id. The id is stable for the attachment's lifetime.
func NewAttachment(blobRef, url, filename string) Attachment {
	return Attachment{
		ID:         uuid.New().String(),
		BlobRef:    blobRef,
		URL:        url,
		Filename:   filename,
		UploadedAt: time.Now(),
	}
}

// Attachments returns the note's attachment records in insertion order
func (n *Note) Attachments() []Attachment {
	return append([]Attachment(nil), n.attachments...)
}

// AppendAttachment appends an attachment record to the note's sequence
func (n *Note) AppendAttachment(att Attachment) {
	n.attachments = append(n.attachments, att)
	n.touch()
}

// RemoveAttachment locates an attachment by id, removes it from the
// sequence, and returns the removed record so its blob can be
// released by the caller.
func (n *Note) RemoveAttachment(attachmentID string) (Attachment, error) {
	for i, att := range n.attachments {
		if att.ID == attachmentID {
			n.attachments = append(n.attachments[:i], n.attachments[i+1:]...)
			n.touch()
			return att, nil
		}
	}
	return Attachment{}, pkgerrors.NewNotFoundError("attachment")
}

// BlobRefs returns every attachment's blob reference in insertion
// order. Used when the note is permanently removed.
func (n *Note) BlobRefs() []string {
	refs := make([]string, 0, len(n.attachments))
	for _, att := range n.attachments {
		if att.BlobRef != "" {
			refs = append(refs, att.BlobRef)
		}
	}
	return refs
}
