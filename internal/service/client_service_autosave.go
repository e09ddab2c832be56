package service

import (
	"context"
	"sync"
	"time"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/models"
)

type pendingWrite struct {
	draft models.Draft
	timer *time.Timer
}

type autosaveJob struct {
	drafts store.DraftRepository

	logger  *logger.Logger
	onError func(error)

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	debounce time.Duration
	pending  map[string]*pendingWrite
	wg       sync.WaitGroup
}

// NewAutosaveJob creates the debounced draft writer. onError is invoked for
// every failed draft write so the caller can surface a degraded-autosave
// warning; it may be nil. The job is idle until Start is called.
func NewAutosaveJob(drafts store.DraftRepository, logger *logger.Logger, onError func(error)) AutosaveJob {
	return &autosaveJob{
		drafts:  drafts,
		logger:  logger,
		onError: onError,
	}
}

// Start implements AutosaveJob. It stops any previously running job, then
// accepts Notify calls until Stop. If debounce is zero or negative it
// defaults to 2 seconds.
func (j *autosaveJob) Start(ctx context.Context, debounce time.Duration) {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	j.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.ctx, j.cancel = context.WithCancel(ctx)
	j.debounce = debounce
	j.pending = make(map[string]*pendingWrite)
}

// Notify implements AutosaveJob. The newest state replaces any pending one
// for the same resource and re-arms its debounce timer, so edits made in
// quick succession collapse into a single write.
func (j *autosaveJob) Notify(draft models.Draft) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.pending == nil {
		return
	}

	if p, ok := j.pending[draft.ResourceID]; ok {
		p.draft = draft
		p.timer.Reset(j.debounce)
		return
	}

	p := &pendingWrite{draft: draft}
	resourceID := draft.ResourceID
	p.timer = time.AfterFunc(j.debounce, func() { j.fire(resourceID) })
	j.pending[resourceID] = p
}

// fire writes the pending draft for one resource after its debounce expired.
func (j *autosaveJob) fire(resourceID string) {
	j.mu.Lock()
	p, ok := j.pending[resourceID]
	if !ok {
		j.mu.Unlock()
		return
	}
	delete(j.pending, resourceID)
	draft := p.draft
	ctx := j.ctx
	j.wg.Add(1)
	j.mu.Unlock()

	defer j.wg.Done()
	j.write(ctx, draft)
}

// Flush implements AutosaveJob. All pending drafts are written immediately;
// their timers are disarmed so the write happens exactly once.
func (j *autosaveJob) Flush(ctx context.Context) error {
	j.mu.Lock()
	drafts := make([]models.Draft, 0, len(j.pending))
	for resourceID, p := range j.pending {
		p.timer.Stop()
		drafts = append(drafts, p.draft)
		delete(j.pending, resourceID)
	}
	j.mu.Unlock()

	var firstErr error
	for _, draft := range drafts {
		if err := j.write(ctx, draft); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Stop implements AutosaveJob. Pending drafts are flushed first so teardown
// never loses an edit; then in-flight timer writes are waited out. Safe to
// call when the job is not running.
func (j *autosaveJob) Stop() {
	j.mu.Lock()
	ctx := j.ctx
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if ctx == nil {
		return
	}

	_ = j.Flush(ctx)
	j.wg.Wait()

	j.mu.Lock()
	j.pending = nil
	j.ctx = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (j *autosaveJob) write(ctx context.Context, draft models.Draft) error {
	if ctx == nil {
		ctx = context.Background()
	}

	err := j.drafts.Save(ctx, draft)
	if err != nil {
		j.logger.Error().
			Str("func", "autosaveJob.write").
			Str("resource_id", draft.ResourceID).
			Err(err).
			Msg("autosave write failed, editing continues in memory")
		if j.onError != nil {
			j.onError(err)
		}
	}

	return err
}
