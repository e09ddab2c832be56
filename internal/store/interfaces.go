// SPDX-License-Identifier: Apache-2.0

// Package store contains both persistence layers of draftkeeper: the server's
// PostgreSQL repository of annotation sets (the authoritative state, guarded
// by compare-and-swap on updated_at) and the client's SQLite draft store (a
// plain last-writer-wins cache for unsaved editing sessions).
package store

import (
	"context"

	"github.com/buildnote/draftkeeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// AnnotationRepository is the server-side persistence contract for annotation
// sets. Every mutation enforces optimistic concurrency: the caller presents
// the updated_at value it last observed and the repository rejects the write
// with [ErrVersionConflict] when the stored value has moved on.
type AnnotationRepository interface {
	// Get returns the full annotation set for resourceID, or
	// [ErrAnnotationNotFound].
	Get(ctx context.Context, resourceID string) (models.AnnotationSet, error)

	// GetSnapshot returns the lightweight probe view (token + object count)
	// for resourceID, or [ErrAnnotationNotFound].
	GetSnapshot(ctx context.Context, resourceID string) (models.Snapshot, error)

	// List returns snapshots of every annotation set whose resource id is
	// scoped under project (all sets when project is empty).
	List(ctx context.Context, project string) ([]models.Snapshot, error)

	// Save applies req under the compare-and-swap contract.
	//
	// req.ExpectedUpdatedAt == nil means "the client believes the resource
	// does not exist": the set is inserted, and [ErrVersionConflict] is
	// returned when another session created it first.
	//
	// A non-nil token updates the existing row only if its updated_at still
	// equals the token at the instant of the write. On success the returned
	// snapshot carries the new authoritative token; on [ErrVersionConflict]
	// it carries the server's current state so the caller can reconcile.
	Save(ctx context.Context, req models.SaveRequest) (models.Snapshot, error)

	// Delete removes the annotation set under the same compare-and-swap
	// contract as Save. On [ErrVersionConflict] the returned snapshot holds
	// the server's current state.
	Delete(ctx context.Context, req models.DeleteRequest) (models.Snapshot, error)
}

// DraftRepository is the client-side draft store: one draft per resource per
// device, no concurrency control beyond last-writer-wins.
type DraftRepository interface {
	// Save overwrites any existing draft for draft.ResourceID. Storage
	// failures are reported to the caller so autosave can surface a
	// degraded-mode warning instead of losing edits silently.
	Save(ctx context.Context, draft models.Draft) error

	// Get returns the most recent draft for resourceID, or (nil, nil) when
	// no draft exists. Absence is not an error.
	Get(ctx context.Context, resourceID string) (*models.Draft, error)

	// Clear removes the draft for resourceID. Idempotent: clearing an
	// absent draft is a no-op.
	Clear(ctx context.Context, resourceID string) error
}
