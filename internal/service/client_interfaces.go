package service

import (
	"context"
	"time"

	"github.com/buildnote/draftkeeper/models"
)

// ReconciliationService classifies a resumed editing session by comparing the
// local draft against the server's current state. The comparison is a pure,
// in-memory operation with no storage or network side effects.
type ReconciliationService interface {
	// Reconcile produces the recovery decision for one resource. snap is nil
	// when the server has no record of the resource; serverKnown is false
	// when the probe failed and the server side must be rendered as unknown.
	// Reconcile never treats an unknown server state as conflict-free.
	Reconcile(draft *models.Draft, snap *models.Snapshot, serverKnown bool) models.RecoveryDecision
}

// DraftSession is the state of one opened editing session: what the editor
// starts from, the OCC token the next commit will present, and the recovery
// decision for the dialog.
type DraftSession struct {
	ResourceID string

	// Draft is the recoverable local draft, nil when none exists.
	Draft *models.Draft

	// Server is the probed server state, nil when absent or unknown.
	Server *models.Snapshot

	// ServerKnown is false when the probe failed.
	ServerKnown bool

	// BaseUpdatedAt is the OCC token the session holds for its next commit.
	// Nil when the resource does not exist on the server (a commit will
	// create it) or when the server state is unknown.
	BaseUpdatedAt *time.Time

	Decision models.RecoveryDecision
}

// ClientDraftService drives the full lifecycle of an editing session: open
// and reconcile, persist drafts, resolve the recovery prompt, and commit to
// the server under optimistic concurrency control.
type ClientDraftService interface {
	// OpenSession probes the server, reads the local draft, and reconciles
	// the two. A probe failure does not fail the call: the session comes
	// back with ServerKnown=false and the decision reflects the unknown
	// server side. Returns an error only when the local draft store fails.
	OpenSession(ctx context.Context, resourceID string) (DraftSession, error)

	// SaveDraft overwrites the local draft for the resource. SavedAt is
	// stamped by the store at write time.
	SaveDraft(ctx context.Context, draft models.Draft) error

	// Load fetches the full annotation set, payload included, so the
	// editor can seed its content from server state.
	Load(ctx context.Context, resourceID string) (models.AnnotationSet, error)

	// Resolve applies the user's recovery choice to the session. Restore
	// and Dismiss leave the draft in the store; Discard deletes it.
	Resolve(ctx context.Context, session DraftSession, choice models.RecoveryChoice) error

	// Commit pushes the payload to the server using the session's token.
	// On SaveOK the local draft is cleared and the session token advanced.
	// On SaveConflict the session's decision is recomputed against the
	// conflict snapshot so the caller re-enters the recovery flow. On
	// SaveFailed the draft stays and the server state becomes unknown.
	Commit(ctx context.Context, session *DraftSession, payload []byte, objectCount int) models.SaveResult

	// Delete removes the resource on the server under the same CAS
	// contract, clearing the local draft on success.
	Delete(ctx context.Context, session *DraftSession) models.SaveResult
}

// AutosaveJob is the debounced draft writer. Notify calls collapse into a
// single pending write per resource; the write fires after the debounce
// interval of quiet, and Flush forces it synchronously on teardown.
type AutosaveJob interface {
	// Start launches the background writer goroutine. A non-positive
	// debounce defaults to 2 seconds. Any previously running job is
	// stopped first.
	Start(ctx context.Context, debounce time.Duration)

	// Notify records the latest editor state for the resource and
	// (re)arms the debounce timer. Only the newest state per resource is
	// ever written.
	Notify(draft models.Draft)

	// Flush synchronously writes any pending draft, bypassing the
	// debounce. Used on editor teardown so no edit is lost.
	Flush(ctx context.Context) error

	// Stop flushes pending work, stops the goroutine, and blocks until it
	// has exited. Safe to call when the job is not running.
	Stop()
}
