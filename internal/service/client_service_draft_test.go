// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/mock"
	"github.com/buildnote/draftkeeper/models"
)

func newTestDraftSvc(t *testing.T, ctrl *gomock.Controller) (*clientDraftService, *mock.MockDraftRepository, *mock.MockServerAdapter) {
	t.Helper()
	mockDrafts := mock.NewMockDraftRepository(ctrl)
	mockAdapter := mock.NewMockServerAdapter(ctrl)

	svc := NewClientDraftService(mockDrafts, mockAdapter, NewReconciliationService(), logger.Nop()).(*clientDraftService)
	return svc, mockDrafts, mockAdapter
}

// ── OpenSession ─────────────────────────────────────────────────────────────

func TestClientDraftService_OpenSession_DraftAndServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, mockDrafts, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	serverAt := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	snap := &models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 3, UpdatedAt: serverAt}
	draft := &models.Draft{
		ResourceID:    "project/42/photo/7",
		ObjectCount:   5,
		BaseUpdatedAt: &serverAt,
		SavedAt:       serverAt.Add(15 * time.Minute),
	}

	mockAdapter.EXPECT().Probe(ctx, "project/42/photo/7").Return(snap, nil)
	mockDrafts.EXPECT().Get(ctx, "project/42/photo/7").Return(draft, nil)

	session, err := svc.OpenSession(ctx, "project/42/photo/7")

	require.NoError(t, err)
	assert.True(t, session.ServerKnown)
	require.NotNil(t, session.BaseUpdatedAt)
	assert.True(t, session.BaseUpdatedAt.Equal(serverAt))
	assert.True(t, session.Decision.HasDraft)
	assert.True(t, session.Decision.LocalNewer)
	assert.False(t, session.Decision.ServerConflict)
}

func TestClientDraftService_OpenSession_ProbeFailureDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, mockDrafts, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	base := time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)
	draft := &models.Draft{
		ResourceID:    "project/42/photo/7",
		BaseUpdatedAt: &base,
		SavedAt:       base.Add(time.Hour),
	}

	mockAdapter.EXPECT().Probe(ctx, "project/42/photo/7").Return(nil, errors.New("connection refused"))
	mockDrafts.EXPECT().Get(ctx, "project/42/photo/7").Return(draft, nil)

	session, err := svc.OpenSession(ctx, "project/42/photo/7")

	require.NoError(t, err, "a failed probe degrades the session, it does not fail it")
	assert.False(t, session.ServerKnown)
	assert.False(t, session.Decision.ServerConflict, "unknown server state never claims conflict")
	assert.False(t, session.Decision.LocalNewer, "unknown server state never claims local is newer")
	require.NotNil(t, session.BaseUpdatedAt)
	assert.True(t, session.BaseUpdatedAt.Equal(base), "the draft's base token is kept for the next commit")
}

func TestClientDraftService_OpenSession_NewResource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, mockDrafts, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Probe(ctx, "project/42/photo/9").Return(nil, nil)
	mockDrafts.EXPECT().Get(ctx, "project/42/photo/9").Return(nil, nil)

	session, err := svc.OpenSession(ctx, "project/42/photo/9")

	require.NoError(t, err)
	assert.True(t, session.ServerKnown)
	assert.Nil(t, session.BaseUpdatedAt, "a commit will create the resource")
	assert.False(t, session.Decision.HasDraft)
}

func TestClientDraftService_OpenSession_DraftStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, mockDrafts, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Probe(ctx, "project/42/photo/7").Return(nil, nil)
	mockDrafts.EXPECT().Get(ctx, "project/42/photo/7").Return(nil, assert.AnError)

	_, err := svc.OpenSession(ctx, "project/42/photo/7")
	require.Error(t, err)
}

// ── Resolve ─────────────────────────────────────────────────────────────────

func TestClientDraftService_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		choice      models.RecoveryChoice
		expectClear bool
	}{
		{name: "Discard deletes the draft", choice: models.RecoveryDiscard, expectClear: true},
		{name: "Restore keeps the draft", choice: models.RecoveryRestore, expectClear: false},
		{name: "Dismiss keeps the draft", choice: models.RecoveryDismiss, expectClear: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc, mockDrafts, _ := newTestDraftSvc(t, ctrl)
			ctx := context.Background()

			if tt.expectClear {
				mockDrafts.EXPECT().Clear(ctx, "project/42/photo/7").Return(nil)
			}

			session := DraftSession{ResourceID: "project/42/photo/7"}
			require.NoError(t, svc.Resolve(ctx, session, tt.choice))
		})
	}
}

// ── Commit ──────────────────────────────────────────────────────────────────

func TestClientDraftService_Commit_OKClearsDraftAndAdvancesToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, mockDrafts, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	base := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	newToken := base.Add(time.Minute)
	payload := []byte(`{"objects":[{"kind":"rect"}]}`)

	session := &DraftSession{
		ResourceID:    "project/42/photo/7",
		BaseUpdatedAt: &base,
		ServerKnown:   true,
	}

	mockAdapter.EXPECT().
		Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SaveRequest) models.SaveResult {
			require.NotNil(t, req.ExpectedUpdatedAt)
			assert.True(t, req.ExpectedUpdatedAt.Equal(base))
			return models.SaveOKResult(models.Snapshot{
				ResourceID:  req.ResourceID,
				ObjectCount: req.ObjectCount,
				UpdatedAt:   newToken,
			})
		})
	mockDrafts.EXPECT().Clear(ctx, "project/42/photo/7").Return(nil)

	result := svc.Commit(ctx, session, payload, 1)

	require.Equal(t, models.SaveOK, result.Outcome)
	assert.Nil(t, session.Draft)
	require.NotNil(t, session.BaseUpdatedAt)
	assert.True(t, session.BaseUpdatedAt.Equal(newToken))
	assert.False(t, session.Decision.HasDraft)
}

func TestClientDraftService_Commit_ConflictReentersRecovery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, mockDrafts, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	base := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	serverMoved := base.Add(2 * time.Hour)
	svc.now = func() time.Time { return serverMoved.Add(time.Minute) }

	session := &DraftSession{
		ResourceID:    "project/42/photo/7",
		BaseUpdatedAt: &base,
		ServerKnown:   true,
	}

	conflictSnap := models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 9, UpdatedAt: serverMoved}
	mockAdapter.EXPECT().Save(ctx, gomock.Any()).Return(models.SaveConflictResult(conflictSnap))

	var persisted models.Draft
	mockDrafts.EXPECT().
		Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, d models.Draft) error {
			persisted = d
			return nil
		})

	result := svc.Commit(ctx, session, []byte(`{"objects":[]}`), 0)

	require.Equal(t, models.SaveConflict, result.Outcome)
	require.NotNil(t, session.Draft)
	assert.True(t, session.Decision.HasDraft)
	require.NotNil(t, session.Decision.ServerUpdatedAt)
	assert.True(t, session.Decision.ServerUpdatedAt.Equal(serverMoved))

	// the 409 body carried the server's current token; the session and the
	// re-persisted draft both move to it, so retrying against an unmoved
	// server does not conflict again
	require.NotNil(t, session.BaseUpdatedAt)
	assert.True(t, session.BaseUpdatedAt.Equal(serverMoved))
	require.NotNil(t, persisted.BaseUpdatedAt)
	assert.True(t, persisted.BaseUpdatedAt.Equal(serverMoved))
	assert.False(t, session.Decision.ServerConflict, "the observed token resolves the stale base")
}

func TestClientDraftService_Commit_FailureLeavesServerUnknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	base := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	draft := &models.Draft{ResourceID: "project/42/photo/7", SavedAt: base.Add(time.Hour)}
	session := &DraftSession{
		ResourceID:    "project/42/photo/7",
		Draft:         draft,
		BaseUpdatedAt: &base,
		ServerKnown:   true,
	}

	mockAdapter.EXPECT().Save(ctx, gomock.Any()).Return(models.SaveFailedResult(errors.New("timeout")))

	result := svc.Commit(ctx, session, []byte(`{}`), 0)

	require.Equal(t, models.SaveFailed, result.Outcome)
	assert.False(t, session.ServerKnown, "a failed mutation leaves the server state unknown")
	assert.NotNil(t, session.Draft, "the draft survives a failed commit")
	assert.False(t, session.Decision.ServerConflict)
}

// ── Delete ──────────────────────────────────────────────────────────────────

func TestClientDraftService_Delete_OK(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, mockDrafts, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	base := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	session := &DraftSession{
		ResourceID:    "project/42/photo/7",
		BaseUpdatedAt: &base,
	}

	mockAdapter.EXPECT().
		Delete(ctx, models.DeleteRequest{ResourceID: "project/42/photo/7", ExpectedUpdatedAt: &base}).
		Return(models.SaveOKResult(models.Snapshot{ResourceID: "project/42/photo/7"}))
	mockDrafts.EXPECT().Clear(ctx, "project/42/photo/7").Return(nil)

	result := svc.Delete(ctx, session)

	require.Equal(t, models.SaveOK, result.Outcome)
	assert.Nil(t, session.Server)
	assert.Nil(t, session.BaseUpdatedAt)
}

func TestClientDraftService_Delete_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _, mockAdapter := newTestDraftSvc(t, ctrl)
	ctx := context.Background()

	base := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	serverMoved := base.Add(time.Hour)
	session := &DraftSession{
		ResourceID:    "project/42/photo/7",
		BaseUpdatedAt: &base,
	}

	mockAdapter.EXPECT().
		Delete(ctx, gomock.Any()).
		Return(models.SaveConflictResult(models.Snapshot{ResourceID: "project/42/photo/7", UpdatedAt: serverMoved}))

	result := svc.Delete(ctx, session)

	require.Equal(t, models.SaveConflict, result.Outcome)
	assert.True(t, session.ServerKnown)
	require.NotNil(t, session.Server)
	assert.True(t, session.Server.UpdatedAt.Equal(serverMoved))
	require.NotNil(t, session.BaseUpdatedAt)
	assert.True(t, session.BaseUpdatedAt.Equal(serverMoved), "the 409 advances the expected token")
}
