package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notes-backend/application/ports"
)

type flakyBlobStore struct {
	mu           sync.Mutex
	failuresLeft map[string]int
	released     []string
}

func newFlakyBlobStore() *flakyBlobStore {
	return &flakyBlobStore{failuresLeft: make(map[string]int)}
}

func (s *flakyBlobStore) Upload(ctx context.Context, data []byte, meta ports.BlobMetadata) (ports.BlobUpload, error) {
	return ports.BlobUpload{}, errors.New("not implemented")
}

func (s *flakyBlobStore) Release(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failuresLeft[ref] > 0 {
		s.failuresLeft[ref]--
		return errors.New("transient storage failure")
	}
	s.released = append(s.released, ref)
	return nil
}

func (s *flakyBlobStore) releasedRefs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.released...)
}

func TestBlobJanitorReleasesScheduledBlobs(t *testing.T) {
	store := newFlakyBlobStore()
	janitor := NewBlobJanitor(store, time.Minute, 5, zap.NewNop())

	janitor.Schedule("attachments/a", "attachments/b")
	janitor.processPending(context.Background())

	assert.ElementsMatch(t, []string{"attachments/a", "attachments/b"}, store.releasedRefs())
	assert.Equal(t, 0, janitor.PendingCount())
}

func TestBlobJanitorRetriesFailedReleases(t *testing.T) {
	store := newFlakyBlobStore()
	store.failuresLeft["attachments/a"] = 2
	janitor := NewBlobJanitor(store, time.Minute, 5, zap.NewNop())

	janitor.Schedule("attachments/a")

	janitor.processPending(context.Background())
	assert.Empty(t, store.releasedRefs())
	require.Equal(t, 1, janitor.PendingCount())

	janitor.processPending(context.Background())
	require.Equal(t, 1, janitor.PendingCount())

	janitor.processPending(context.Background())
	assert.Equal(t, []string{"attachments/a"}, store.releasedRefs())
	assert.Equal(t, 0, janitor.PendingCount())
}

func TestBlobJanitorDropsBlobAfterMaxAttempts(t *testing.T) {
	store := newFlakyBlobStore()
	store.failuresLeft["attachments/a"] = 100
	janitor := NewBlobJanitor(store, time.Minute, 3, zap.NewNop())

	janitor.Schedule("attachments/a")
	for i := 0; i < 3; i++ {
		janitor.processPending(context.Background())
	}

	assert.Empty(t, store.releasedRefs())
	assert.Equal(t, 0, janitor.PendingCount())
}

func TestBlobJanitorScheduleIsIdempotent(t *testing.T) {
	store := newFlakyBlobStore()
	janitor := NewBlobJanitor(store, time.Minute, 5, zap.NewNop())

	janitor.Schedule("attachments/a")
	janitor.Schedule("attachments/a", "")

	require.Equal(t, 1, janitor.PendingCount())

	janitor.processPending(context.Background())
	assert.Equal(t, []string{"attachments/a"}, store.releasedRefs())
}

func TestBlobJanitorStartStop(t *testing.T) {
	store := newFlakyBlobStore()
	janitor := NewBlobJanitor(store, 5*time.Millisecond, 5, zap.NewNop())

	janitor.Start(context.Background())
	janitor.Schedule("attachments/a")

	assert.Eventually(t, func() bool {
		return janitor.PendingCount() == 0
	}, time.Second, 5*time.Millisecond)

	janitor.Stop()
	assert.Equal(t, []string{"attachments/a"}, store.releasedRefs())
}

func TestBlobJanitorStopWithoutStart(t *testing.T) {
	janitor := NewBlobJanitor(newFlakyBlobStore(), time.Minute, 5, zap.NewNop())

	done := make(chan struct{})
	go func() {
		janitor.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return for a janitor that was never started")
	}
}
