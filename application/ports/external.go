package ports

import (
	"context"
	"io"
	"time"
)

// BlobMetadata describes an uploaded blob
type BlobMetadata struct {
	Filename    string
	ContentType string
}

// BlobUpload is the store's handle for an uploaded blob
type BlobUpload struct {
	Ref string
	URL string
}

// BlobStore is the external binary object store. Blobs are owned by
// the store; this application keeps only metadata pointers to them.
type BlobStore interface {
	// Upload stores a blob and returns its reference and retrieval URL
	Upload(ctx context.Context, data []byte, meta BlobMetadata) (BlobUpload, error)

	// Release destroys a blob by its reference. Releasing an already
	// released reference is not an error.
	Release(ctx context.Context, ref string) error
}

// BlobCleanup schedules blob references for asynchronous, retryable
// release. Used on permanent delete so user-visible removal never
// blocks on storage cleanup.
type BlobCleanup interface {
	Schedule(refs ...string)
}

// ExportDocument is the structured content handed to the renderer
type ExportDocument struct {
	Title     string
	Category  string
	CreatedAt time.Time
	TagNames  []string
	Body      string
}

// DocumentRenderer streams a rendered artifact for a document to the
// destination sink. The artifact's byte format is the renderer's
// concern.
type DocumentRenderer interface {
	Render(ctx context.Context, doc ExportDocument, w io.Writer) error
}
