// SPDX-License-Identifier: Apache-2.0

package models

// SaveOutcome tags the three possible results of an optimistically-locked
// mutation. A version conflict is an expected, modeled outcome, not an error.
type SaveOutcome int

const (
	// SaveOK: the server accepted the mutation; Snapshot holds the new
	// authoritative state.
	SaveOK SaveOutcome = iota

	// SaveConflict: the server's token no longer matches; Snapshot holds the
	// server's current state taken from the conflict response.
	SaveConflict

	// SaveFailed: the request did not complete (network error, timeout,
	// unexpected status). The server state is unknown; the mutation must
	// not be assumed to have either succeeded or failed.
	SaveFailed
)

// SaveResult is the tagged result of an OCCMutator call. Callers are expected
// to switch on Outcome; Snapshot is set for SaveOK and SaveConflict, Err for
// SaveFailed.
type SaveResult struct {
	Outcome  SaveOutcome
	Snapshot *Snapshot
	Err      error
}

func SaveOKResult(snap Snapshot) SaveResult {
	return SaveResult{Outcome: SaveOK, Snapshot: &snap}
}

func SaveConflictResult(snap Snapshot) SaveResult {
	return SaveResult{Outcome: SaveConflict, Snapshot: &snap}
}

func SaveFailedResult(err error) SaveResult {
	return SaveResult{Outcome: SaveFailed, Err: err}
}
