// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

package service

import (
	"context"
	"time"

	"github.com/buildnote/draftkeeper/internal/adapter"
	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/models"
)

type clientDraftService struct {
	drafts     store.DraftRepository
	server     adapter.ServerAdapter
	reconciler ReconciliationService

	logger *logger.Logger
	now    func() time.Time
}

func NewClientDraftService(drafts store.DraftRepository, server adapter.ServerAdapter, reconciler ReconciliationService, logger *logger.Logger) ClientDraftService {
	return &clientDraftService{
		drafts:     drafts,
		server:     server,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}
}

// OpenSession implements ClientDraftService. The probe and the draft read
// both settle before the decision is computed; a probe failure degrades the
// session to ServerKnown=false instead of failing it.
func (c *clientDraftService) OpenSession(ctx context.Context, resourceID string) (DraftSession, error) {
	snap, probeErr := c.server.Probe(ctx, resourceID)
	serverKnown := probeErr == nil
	if probeErr != nil {
		c.logger.Warn().
			Str("func", "clientDraftService.OpenSession").
			Str("resource_id", resourceID).
			Err(probeErr).
			Msg("server probe failed, opening session with server state unknown")
	}

	draft, err := c.drafts.Get(ctx, resourceID)
	if err != nil {
		return DraftSession{}, err
	}

	session := DraftSession{
		ResourceID:  resourceID,
		Draft:       draft,
		ServerKnown: serverKnown,
		Decision:    c.reconciler.Reconcile(draft, snap, serverKnown),
	}

	switch {
	case serverKnown && snap != nil:
		session.Server = snap
		updatedAt := snap.UpdatedAt
		session.BaseUpdatedAt = &updatedAt
	case !serverKnown && draft != nil:
		// last token this device ever observed; the server will still
		// reject it if someone else moved on
		session.BaseUpdatedAt = draft.BaseUpdatedAt
	}

	return session, nil
}

// SaveDraft implements ClientDraftService.
func (c *clientDraftService) SaveDraft(ctx context.Context, draft models.Draft) error {
	return c.drafts.Save(ctx, draft)
}

// Load implements ClientDraftService.
func (c *clientDraftService) Load(ctx context.Context, resourceID string) (models.AnnotationSet, error) {
	return c.server.Load(ctx, resourceID)
}

// Resolve implements ClientDraftService. Discard is the only destructive
// choice; Restore and Dismiss leave the stored draft untouched.
func (c *clientDraftService) Resolve(ctx context.Context, session DraftSession, choice models.RecoveryChoice) error {
	c.logger.Info().
		Str("func", "clientDraftService.Resolve").
		Str("resource_id", session.ResourceID).
		Str("choice", choice.String()).
		Msg("recovery prompt resolved")

	if choice == models.RecoveryDiscard {
		return c.drafts.Clear(ctx, session.ResourceID)
	}

	return nil
}

// Commit implements ClientDraftService.
func (c *clientDraftService) Commit(ctx context.Context, session *DraftSession, payload []byte, objectCount int) models.SaveResult {
	result := c.server.Save(ctx, models.SaveRequest{
		ResourceID:        session.ResourceID,
		Payload:           payload,
		ObjectCount:       objectCount,
		ExpectedUpdatedAt: session.BaseUpdatedAt,
	})

	switch result.Outcome {
	case models.SaveOK:
		if err := c.drafts.Clear(ctx, session.ResourceID); err != nil {
			c.logger.Warn().
				Str("func", "clientDraftService.Commit").
				Str("resource_id", session.ResourceID).
				Err(err).
				Msg("commit succeeded but clearing the local draft failed")
		}

		session.Draft = nil
		session.Server = result.Snapshot
		session.ServerKnown = true
		updatedAt := result.Snapshot.UpdatedAt
		session.BaseUpdatedAt = &updatedAt
		session.Decision = c.reconciler.Reconcile(nil, result.Snapshot, true)

	case models.SaveConflict:
		// keep the rejected state recoverable, then re-enter the recovery
		// flow against the snapshot the server answered with. The 409 body
		// carries the server's current token; the client has now observed
		// it, so both the session and the re-persisted draft move to it and
		// the next commit presents the fresh token instead of re-conflicting
		// against an unmoved server.
		observedAt := result.Snapshot.UpdatedAt
		draft := models.Draft{
			ResourceID:    session.ResourceID,
			Payload:       payload,
			ObjectCount:   objectCount,
			BaseUpdatedAt: &observedAt,
			SavedAt:       c.now(),
		}
		if err := c.drafts.Save(ctx, draft); err != nil {
			c.logger.Error().
				Str("func", "clientDraftService.Commit").
				Str("resource_id", session.ResourceID).
				Err(err).
				Msg("failed to persist draft after version conflict")
		}

		session.Draft = &draft
		session.Server = result.Snapshot
		session.ServerKnown = true
		session.BaseUpdatedAt = &observedAt
		session.Decision = c.reconciler.Reconcile(&draft, result.Snapshot, true)

	case models.SaveFailed:
		// server state unknown: the mutation may or may not have landed
		session.ServerKnown = false
		session.Decision = c.reconciler.Reconcile(session.Draft, nil, false)
	}

	return result
}

// Delete implements ClientDraftService.
func (c *clientDraftService) Delete(ctx context.Context, session *DraftSession) models.SaveResult {
	result := c.server.Delete(ctx, models.DeleteRequest{
		ResourceID:        session.ResourceID,
		ExpectedUpdatedAt: session.BaseUpdatedAt,
	})

	switch result.Outcome {
	case models.SaveOK:
		if err := c.drafts.Clear(ctx, session.ResourceID); err != nil {
			c.logger.Warn().
				Str("func", "clientDraftService.Delete").
				Str("resource_id", session.ResourceID).
				Err(err).
				Msg("delete succeeded but clearing the local draft failed")
		}
		session.Draft = nil
		session.Server = nil
		session.ServerKnown = true
		session.BaseUpdatedAt = nil
		session.Decision = c.reconciler.Reconcile(nil, nil, true)

	case models.SaveConflict:
		// token observed via the 409 body, same as a conflicting save
		observedAt := result.Snapshot.UpdatedAt
		session.Server = result.Snapshot
		session.ServerKnown = true
		session.BaseUpdatedAt = &observedAt
		session.Decision = c.reconciler.Reconcile(session.Draft, result.Snapshot, true)

	case models.SaveFailed:
		session.ServerKnown = false
		session.Decision = c.reconciler.Reconcile(session.Draft, nil, false)
	}

	return result
}
