// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

package service

import (
	"github.com/buildnote/draftkeeper/models"
)

// reconciliationService is the concrete implementation of
// ReconciliationService. The classification is a pure timestamp comparison;
// no storage layer or logger is required because the operation is stateless
// and produces no side effects.
type reconciliationService struct{}

// NewReconciliationService constructs a ReconciliationService ready for use.
func NewReconciliationService() ReconciliationService {
	return &reconciliationService{}
}

// Reconcile implements ReconciliationService.
//
// Classification rules, applied in order:
//
//  1. No draft: nothing to recover. The server side is still filled in for
//     display when known.
//  2. Probe failed (serverKnown false): the draft is surfaced with the server
//     side unknown. LocalNewer and ServerConflict both stay false; the
//     caller must not read that as "no conflict".
//  3. Server absent: the resource was never saved, so the draft is newer by
//     definition and there is nothing to conflict with.
//  4. Both present: LocalNewer iff draft.SavedAt is strictly after the
//     server's UpdatedAt. Identical timestamps favor the server.
//     ServerConflict iff restoring would overwrite a server state the
//     session never observed: the server is newer than the draft, or the
//     server's token moved away from the one the draft was taken against.
func (s *reconciliationService) Reconcile(draft *models.Draft, snap *models.Snapshot, serverKnown bool) models.RecoveryDecision {
	decision := models.RecoveryDecision{
		HasDraft:    draft != nil,
		ServerKnown: serverKnown,
	}

	if serverKnown && snap != nil {
		updatedAt := snap.UpdatedAt
		decision.ServerUpdatedAt = &updatedAt
		decision.ServerObjectCount = snap.ObjectCount
	}

	if draft == nil {
		return decision
	}

	decision.DraftSavedAt = draft.SavedAt
	decision.DraftObjectCount = draft.ObjectCount

	if !serverKnown {
		return decision
	}

	if snap == nil {
		decision.LocalNewer = true
		return decision
	}

	decision.LocalNewer = draft.SavedAt.After(snap.UpdatedAt)

	baseMoved := draft.BaseUpdatedAt == nil || !snap.UpdatedAt.Equal(*draft.BaseUpdatedAt)
	decision.ServerConflict = !decision.LocalNewer || baseMoved

	return decision
}
