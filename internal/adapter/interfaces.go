// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

// Package adapter provides transport-layer abstractions for communicating with
// the DraftKeeper annotation server.
//
// The primary abstraction is [ServerAdapter], which decouples the client
// services from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrNotFound] for 404).
package adapter

import (
	"context"

	"github.com/buildnote/draftkeeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the annotation
// server. Implementations are responsible for serialisation and for mapping
// transport-level errors to the sentinel values defined in this package.
type ServerAdapter interface {
	// Probe fetches the lightweight state descriptor (resource id, object
	// count, updated_at) for resourceID without downloading the payload.
	// A resource the server has never seen yields (nil, nil), not an error.
	// Transient transport failures are retried a bounded number of times
	// before the error is surfaced; callers must treat that error as
	// "server state unknown", never as "no conflict".
	Probe(ctx context.Context, resourceID string) (*models.Snapshot, error)

	// Load retrieves the full annotation set for resourceID, payload
	// included. Returns [ErrNotFound] (wrapped) when the resource does not
	// exist on the server.
	Load(ctx context.Context, resourceID string) (models.AnnotationSet, error)

	// List fetches state descriptors for every annotation set under the
	// given project prefix. An empty project lists everything.
	List(ctx context.Context, project string) ([]models.Snapshot, error)

	// Save pushes an annotation set to the server under optimistic
	// concurrency control. The outcome is a tagged [models.SaveResult]:
	// SaveOK carries the server's new state, SaveConflict carries the
	// state that won, SaveFailed carries the transport or server error.
	// Save never reports a conflict as a plain error.
	Save(ctx context.Context, req models.SaveRequest) models.SaveResult

	// Delete removes an annotation set under the same compare-and-swap
	// contract as Save, reporting the outcome as a [models.SaveResult].
	Delete(ctx context.Context, req models.DeleteRequest) models.SaveResult
}
