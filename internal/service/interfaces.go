// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

// Package service contains the application logic on both sides of the wire:
// the server-side annotation service with its input validation, and the
// client-side draft session service built around the reconciliation engine
// and the debounced autosave job.
package service

import (
	"context"

	"github.com/buildnote/draftkeeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AnnotationService is the server-side application layer over the annotation
// repository. It validates incoming mutations before they reach the database
// and passes the repository's compare-and-swap semantics through unchanged.
type AnnotationService interface {
	// Get returns the full annotation set, payload included.
	Get(ctx context.Context, resourceID string) (models.AnnotationSet, error)

	// GetSnapshot returns the light state descriptor used by probes.
	GetSnapshot(ctx context.Context, resourceID string) (models.Snapshot, error)

	// List returns state descriptors for every annotation set under the
	// given project prefix. An empty project lists everything.
	List(ctx context.Context, project string) ([]models.Snapshot, error)

	// Save validates req and stores it under the OCC contract. On a token
	// mismatch the returned snapshot carries the server's current state
	// together with store.ErrVersionConflict.
	Save(ctx context.Context, req models.SaveRequest) (models.Snapshot, error)

	// Delete removes an annotation set under the same CAS contract.
	Delete(ctx context.Context, req models.DeleteRequest) (models.Snapshot, error)
}
