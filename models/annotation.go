// SPDX-License-Identifier: Apache-2.0

package models

import (
	"encoding/json"
	"time"
)

// AnnotationSet is the authoritative server-side record of all markup objects
// drawn on a single construction-site photo. Payload is opaque to the server:
// it stores and returns the editor state verbatim.
//
// UpdatedAt doubles as the optimistic-concurrency token: every mutation must
// present the UpdatedAt value the client last observed, and the server rejects
// the write with a conflict when the stored value has moved on.
type AnnotationSet struct {
	// ResourceID identifies the annotated photo. The value is namespaced by
	// the caller (e.g. "project/42/photo/7") and is never interpreted here.
	ResourceID string `json:"resource_id"`

	// Payload is the opaque serialized editor state.
	Payload json.RawMessage `json:"payload"`

	// ObjectCount is a cheap cardinality summary of Payload, kept only so
	// that humans can compare two states at a glance.
	ObjectCount int `json:"object_count"`

	// CreatedAt is when the annotation set was first stored.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the server's last-modified timestamp and the OCC token.
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is a lightweight read of the server's current state for one
// annotation set: the OCC token plus the display summary, without the payload.
//
// A Snapshot is immutable once read; a fresh probe produces a fresh Snapshot.
type Snapshot struct {
	ResourceID  string    `json:"resource_id"`
	ObjectCount int       `json:"object_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SnapshotOf reduces a full annotation set to its probe view.
func SnapshotOf(set AnnotationSet) Snapshot {
	return Snapshot{
		ResourceID:  set.ResourceID,
		ObjectCount: set.ObjectCount,
		UpdatedAt:   set.UpdatedAt,
	}
}
