// SPDX-License-Identifier: Apache-2.0

package models

import (
	"encoding/json"
	"time"
)

// SaveRequest is the body of a mutating save call. ExpectedUpdatedAt carries
// the OCC token: the last UpdatedAt the client observed for the resource, or
// nil when the client believes the resource does not exist yet.
type SaveRequest struct {
	ResourceID        string          `json:"resource_id"`
	Payload           json.RawMessage `json:"payload"`
	ObjectCount       int             `json:"object_count"`
	ExpectedUpdatedAt *time.Time      `json:"expected_updated_at,omitempty"`
}

// DeleteRequest removes an annotation set under the same compare-and-swap
// contract as SaveRequest.
type DeleteRequest struct {
	ResourceID        string     `json:"resource_id"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}

// ConflictResponse is the structured 409 body. It identifies the server's
// current state so the caller can re-enter reconciliation instead of
// retrying blindly.
type ConflictResponse struct {
	ResourceID       string    `json:"resource_id"`
	CurrentUpdatedAt time.Time `json:"current_updated_at"`
	ObjectCount      int       `json:"object_count"`
}

// ListResponse wraps the per-project snapshot listing.
type ListResponse struct {
	Snapshots []Snapshot `json:"snapshots"`
	Length    int        `json:"length"`
}
