// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// RecoveryDecision is the result of reconciling a local draft against the
// server's current state when an editing session resumes. It is computed on
// demand, consumed once by the recovery dialog, and never persisted.
type RecoveryDecision struct {
	// HasDraft reports whether a local draft exists at all. When false every
	// other field is meaningless and no recovery flow runs.
	HasDraft bool

	// ServerKnown is false when the probe failed (network error, timeout).
	// In that case the comparison is presented with the server side unknown
	// and the draft must not be treated as conflict-free.
	ServerKnown bool

	// LocalNewer is true when the draft was saved after the server's last
	// update, or when the server has no data for the resource at all.
	// Identical timestamps favor the server.
	LocalNewer bool

	// ServerConflict is true when restoring the draft would overwrite
	// server-side changes the client has never observed. Only ever true
	// when HasDraft is true.
	ServerConflict bool

	// DraftSavedAt / DraftObjectCount describe the local side for display.
	DraftSavedAt     time.Time
	DraftObjectCount int

	// ServerUpdatedAt / ServerObjectCount describe the server side for
	// display. ServerUpdatedAt is nil when the resource does not exist on
	// the server or its state is unknown.
	ServerUpdatedAt   *time.Time
	ServerObjectCount int
}

// RecoveryChoice is the user's resolution of a recovery prompt. Exactly one
// choice terminates each shown prompt.
type RecoveryChoice int

const (
	// RecoveryDismiss closes the prompt without touching storage; the draft
	// stays and the prompt may reappear on the next session.
	RecoveryDismiss RecoveryChoice = iota

	// RecoveryRestore loads the draft payload into the live editor. The
	// draft remains in the store until the next explicit save or discard.
	RecoveryRestore

	// RecoveryDiscard deletes the draft; the editor starts from server
	// state (or blank when the resource is new).
	RecoveryDiscard
)

func (c RecoveryChoice) String() string {
	switch c {
	case RecoveryRestore:
		return "restore"
	case RecoveryDiscard:
		return "discard"
	default:
		return "dismiss"
	}
}
