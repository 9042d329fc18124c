package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/application/queries"
	"notes-backend/domain/core/entities"
	"notes-backend/infrastructure/persistence/memory"
)

// countingNoteRepo wraps the in-memory repository to observe whether
// the note store was queried at all
type countingNoteRepo struct {
	*memory.NoteRepository
	mu            sync.Mutex
	findManyCalls int
}

func (r *countingNoteRepo) FindMany(ctx context.Context, filter ports.NoteFilter, order ports.SortOrder) ([]*entities.Note, error) {
	r.mu.Lock()
	r.findManyCalls++
	r.mu.Unlock()
	return r.NoteRepository.FindMany(ctx, filter, order)
}

// fakeBlobStore records uploads and releases in memory
type fakeBlobStore struct {
	mu          sync.Mutex
	uploadCount int
	released    []string
	failUpload  bool
}

func (f *fakeBlobStore) Upload(ctx context.Context, data []byte, meta ports.BlobMetadata) (ports.BlobUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpload {
		return ports.BlobUpload{}, fmt.Errorf("blob store unavailable")
	}
	f.uploadCount++
	ref := fmt.Sprintf("blob-%d", f.uploadCount)
	return ports.BlobUpload{Ref: ref, URL: "https://blobs.local/" + ref}, nil
}

func (f *fakeBlobStore) Release(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.released = append(f.released, ref)
	return nil
}

// recordingCleanup captures scheduled blob references
type recordingCleanup struct {
	mu   sync.Mutex
	refs []string
}

func (c *recordingCleanup) Schedule(refs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refs = append(c.refs, refs...)
}

// fakeRenderer records rendered documents and writes a marker artifact
type fakeRenderer struct {
	docs []ports.ExportDocument
}

func (f *fakeRenderer) Render(ctx context.Context, doc ports.ExportDocument, w io.Writer) error {
	f.docs = append(f.docs, doc)
	_, err := w.Write([]byte("rendered:" + doc.Title))
	return err
}

// testEnv bundles a fully wired service over in-memory collaborators
type testEnv struct {
	service  *NoteService
	notes    *countingNoteRepo
	tags     *memory.TagRepository
	blobs    *fakeBlobStore
	cleanup  *recordingCleanup
	renderer *fakeRenderer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	notes := &countingNoteRepo{NoteRepository: memory.NewNoteRepository()}
	tags := memory.NewTagRepository()
	blobs := &fakeBlobStore{}
	cleanup := &recordingCleanup{}
	renderer := &fakeRenderer{}

	resolver := NewTagResolver(tags, logger)
	builder := queries.NewNoteQueryBuilder(tags)
	attachments := NewAttachmentManager(notes, blobs, logger)
	service := NewNoteService(notes, tags, builder, resolver, attachments, cleanup, renderer, logger)

	return &testEnv{
		service:  service,
		notes:    notes,
		tags:     tags,
		blobs:    blobs,
		cleanup:  cleanup,
		renderer: renderer,
	}
}
