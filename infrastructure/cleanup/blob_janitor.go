package cleanup

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"notes-backend/application/ports"
)

// BlobJanitor releases attachment blobs in the background after their
// note has been permanently deleted. Scheduling is fire-and-forget for
// callers; failed releases are retried on the next tick, keyed by blob
// reference so re-scheduling the same blob is harmless.
type BlobJanitor struct {
	store       ports.BlobStore
	logger      *zap.Logger
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	pending map[string]int // blob ref -> attempts so far

	stopChan    chan struct{}
	stoppedChan chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once
	started     atomic.Bool
}

// NewBlobJanitor creates a janitor. interval is the retry period;
// maxAttempts bounds how often a single blob is retried before it is
// dropped with an error log.
func NewBlobJanitor(store ports.BlobStore, interval time.Duration, maxAttempts int, logger *zap.Logger) *BlobJanitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &BlobJanitor{
		store:       store,
		logger:      logger,
		interval:    interval,
		maxAttempts: maxAttempts,
		pending:     make(map[string]int),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Schedule enqueues blob references for release. It never blocks and
// never fails; the actual deletion happens on the janitor's loop.
func (j *BlobJanitor) Schedule(refs ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, exists := j.pending[ref]; !exists {
			j.pending[ref] = 0
		}
	}
}

// Start begins the background release loop
func (j *BlobJanitor) Start(ctx context.Context) {
	j.startOnce.Do(func() {
		j.started.Store(true)
		go j.run(ctx)
		j.logger.Info("blob janitor started",
			zap.Duration("interval", j.interval),
			zap.Int("maxAttempts", j.maxAttempts),
		)
	})
}

// Stop shuts the loop down and waits for the in-flight pass to finish.
// Stopping a janitor that was never started is a no-op.
func (j *BlobJanitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
		if j.started.Load() {
			<-j.stoppedChan
		}
		j.logger.Info("blob janitor stopped")
	})
}

func (j *BlobJanitor) run(ctx context.Context) {
	defer close(j.stoppedChan)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.processPending(ctx)
		}
	}
}

// processPending attempts to release every pending blob once. Failures
// stay queued until maxAttempts is reached.
func (j *BlobJanitor) processPending(ctx context.Context) {
	j.mu.Lock()
	batch := make(map[string]int, len(j.pending))
	for ref, attempts := range j.pending {
		batch[ref] = attempts
	}
	j.mu.Unlock()

	for ref, attempts := range batch {
		err := j.store.Release(ctx, ref)
		if err == nil {
			j.mu.Lock()
			delete(j.pending, ref)
			j.mu.Unlock()
			continue
		}

		attempts++
		if attempts >= j.maxAttempts {
			j.logger.Error("giving up on blob release",
				zap.String("blobRef", ref),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			j.mu.Lock()
			delete(j.pending, ref)
			j.mu.Unlock()
			continue
		}

		j.logger.Warn("blob release failed, will retry",
			zap.String("blobRef", ref),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		j.mu.Lock()
		j.pending[ref] = attempts
		j.mu.Unlock()
	}
}

// ProcessNow runs one release pass synchronously, outside the ticker.
// Tests and shutdown paths use it to flush the queue deterministically.
func (j *BlobJanitor) ProcessNow(ctx context.Context) {
	j.processPending(ctx)
}

// PendingCount reports how many blobs are still queued for release
func (j *BlobJanitor) PendingCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}
