// SPDX-License-Identifier: Apache-2.0

package models

import (
	"encoding/json"
	"time"
)

// Draft is one unsaved editing session, persisted on the device that produced
// it. A draft is created on the first unsaved change, overwritten on every
// autosave tick, and removed either when the user discards it or when a
// commit to the server succeeds.
//
// Drafts never leave the device except as the literal payload of a save
// request.
type Draft struct {
	// ResourceID identifies the annotation set being edited.
	ResourceID string `json:"resource_id"`

	// Payload is the opaque serialized editor state at the last autosave.
	Payload json.RawMessage `json:"payload"`

	// ObjectCount summarises Payload for human-readable comparison.
	ObjectCount int `json:"object_count"`

	// BaseUpdatedAt is the server UpdatedAt the editing session started
	// from. Nil when the resource did not exist on the server yet. Used to
	// detect that the server moved past the state this draft was taken
	// against.
	BaseUpdatedAt *time.Time `json:"base_updated_at,omitempty"`

	// SavedAt is the local wall-clock time the draft was last written.
	SavedAt time.Time `json:"saved_at"`
}
