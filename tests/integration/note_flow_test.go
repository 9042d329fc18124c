package integration

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/application/queries"
	"notes-backend/application/services"
	"notes-backend/infrastructure/cleanup"
	"notes-backend/infrastructure/persistence/memory"
	"notes-backend/infrastructure/render"
	"notes-backend/pkg/common"
)

// memoryBlobStore keeps uploaded payloads in a map so the full
// attachment and cleanup paths run without S3.
type memoryBlobStore struct {
	blobs map[string][]byte
	next  int
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *memoryBlobStore) Upload(ctx context.Context, data []byte, meta ports.BlobMetadata) (ports.BlobUpload, error) {
	s.next++
	ref := meta.Filename
	if ref == "" {
		ref = "blob"
	}
	key := fmt.Sprintf("%s-%d", ref, s.next)
	s.blobs[key] = data
	return ports.BlobUpload{Ref: key, URL: "mem://" + key}, nil
}

func (s *memoryBlobStore) Release(ctx context.Context, ref string) error {
	delete(s.blobs, ref)
	return nil
}

func newStack(t *testing.T) (*services.NoteService, *cleanup.BlobJanitor, *memoryBlobStore) {
	t.Helper()
	logger := zap.NewNop()

	noteRepo := memory.NewNoteRepository()
	tagRepo := memory.NewTagRepository()
	blobStore := newMemoryBlobStore()

	janitor := cleanup.NewBlobJanitor(blobStore, time.Minute, 3, logger)
	builder := queries.NewNoteQueryBuilder(tagRepo)
	resolver := services.NewTagResolver(tagRepo, logger)
	manager := services.NewAttachmentManager(noteRepo, blobStore, logger)
	service := services.NewNoteService(noteRepo, tagRepo, builder, resolver, manager, janitor, render.NewPDFRenderer(), logger)

	return service, janitor, blobStore
}

func TestNoteLifecycleEndToEnd(t *testing.T) {
	service, janitor, blobs := newStack(t)
	ctx := context.Background()
	owner := &common.Identity{ID: "user-1", Role: common.RoleUser}

	created, err := service.Create(ctx, owner, services.CreateNoteInput{
		Title:   "Trip planning",
		Content: "Book the ferry.",
		Tags:    []string{"Travel", "todo"},
	})
	require.NoError(t, err)
	require.Len(t, created.Tags, 2)

	// archive, trash, restore
	archived, err := service.ToggleArchive(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	trashed, err := service.SoftDelete(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsDeleted)
	require.NotNil(t, trashed.DeletedAt)

	restored, err := service.Restore(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	// attach a file, then export
	attachment, err := service.AddAttachment(ctx, owner, created.ID, []byte("fake image"), ports.BlobMetadata{
		Filename:    "map.png",
		ContentType: "image/png",
	})
	require.NoError(t, err)
	require.Contains(t, blobs.blobs, attachment.BlobRef)

	var pdf bytes.Buffer
	title, err := service.Export(ctx, owner, created.ID, &pdf)
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", title)
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))

	// permanent delete schedules blob cleanup; a janitor pass empties the store
	err = service.PermanentDelete(ctx, owner, created.ID)
	require.NoError(t, err)

	janitor.ProcessNow(ctx)
	assert.Empty(t, blobs.blobs)

	_, err = service.Get(ctx, owner, created.ID)
	assert.Error(t, err)
}

func TestListingAcrossUsers(t *testing.T) {
	service, _, _ := newStack(t)
	ctx := context.Background()
	alice := &common.Identity{ID: "alice", Role: common.RoleUser}
	bob := &common.Identity{ID: "bob", Role: common.RoleUser}

	_, err := service.Create(ctx, alice, services.CreateNoteInput{Title: "Alice note", Content: "a"})
	require.NoError(t, err)
	_, err = service.Create(ctx, bob, services.CreateNoteInput{Title: "Bob note", Content: "b"})
	require.NoError(t, err)

	aliceNotes, err := service.List(ctx, alice, queries.ListOptions{})
	require.NoError(t, err)
	require.Len(t, aliceNotes, 1)
	assert.Equal(t, "Alice note", aliceNotes[0].Title)

	// anonymous listing spans users
	all, err := service.List(ctx, nil, queries.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// bob cannot mutate alice's note
	_, err = service.SoftDelete(ctx, bob, aliceNotes[0].ID)
	assert.Error(t, err)
}
