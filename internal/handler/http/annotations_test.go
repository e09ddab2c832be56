// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/mock"
	"github.com/buildnote/draftkeeper/internal/service"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/models"
)

func newTestHandler(t *testing.T, ctrl *gomock.Controller) (*Handler, *mock.MockAnnotationService) {
	t.Helper()
	mockSvc := mock.NewMockAnnotationService(ctrl)
	h := &Handler{
		services: &service.Services{AnnotationService: mockSvc},
		logger:   logger.Nop(),
	}
	return h, mockSvc
}

// ── GET /api/annotations/state/* ────────────────────────────────────────────

func TestState_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	now := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	mockSvc.EXPECT().
		GetSnapshot(gomock.Any(), "project/42/photo/7").
		Return(models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 3, UpdatedAt: now}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/annotations/state/project/42/photo/7", nil)
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "project/42/photo/7", snap.ResourceID)
	assert.True(t, snap.UpdatedAt.Equal(now))
}

func TestState_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	mockSvc.EXPECT().
		GetSnapshot(gomock.Any(), "project/42/photo/404").
		Return(models.Snapshot{}, store.ErrAnnotationNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/annotations/state/project/42/photo/404", nil)
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ── GET /api/annotations/full/* ─────────────────────────────────────────────

func TestFull_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	set := models.AnnotationSet{
		ResourceID:  "project/42/photo/7",
		Payload:     json.RawMessage(`{"objects":[{"kind":"rect"}]}`),
		ObjectCount: 1,
		UpdatedAt:   time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC),
	}
	mockSvc.EXPECT().Get(gomock.Any(), "project/42/photo/7").Return(set, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/annotations/full/project/42/photo/7", nil)
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.AnnotationSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.JSONEq(t, string(set.Payload), string(got.Payload))
}

// ── GET /api/annotations ────────────────────────────────────────────────────

func TestList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	now := time.Now().UTC().Truncate(time.Second)
	mockSvc.EXPECT().
		List(gomock.Any(), "project/42").
		Return([]models.Snapshot{
			{ResourceID: "project/42/photo/1", ObjectCount: 2, UpdatedAt: now},
			{ResourceID: "project/42/photo/2", ObjectCount: 0, UpdatedAt: now},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/annotations/?project=project%2F42", nil)
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list models.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Length)
	require.Len(t, list.Snapshots, 2)
}

// ── PUT /api/annotations/* ──────────────────────────────────────────────────

func TestSave_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	token := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	newToken := token.Add(time.Minute)

	mockSvc.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req models.SaveRequest) (models.Snapshot, error) {
			assert.Equal(t, "project/42/photo/7", req.ResourceID, "resource id comes from the url, not the body")
			require.NotNil(t, req.ExpectedUpdatedAt)
			assert.True(t, req.ExpectedUpdatedAt.Equal(token))
			return models.Snapshot{ResourceID: req.ResourceID, ObjectCount: req.ObjectCount, UpdatedAt: newToken}, nil
		})

	body, err := json.Marshal(models.SaveRequest{
		Payload:           json.RawMessage(`{"objects":[]}`),
		ObjectCount:       0,
		ExpectedUpdatedAt: &token,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/annotations/project/42/photo/7", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.UpdatedAt.Equal(newToken))
}

func TestSave_ConflictBodyCarriesCurrentState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	current := time.Date(2025, 12, 28, 12, 15, 0, 0, time.UTC)
	mockSvc.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 9, UpdatedAt: current}, store.ErrVersionConflict)

	stale := current.Add(-2 * time.Hour)
	body, err := json.Marshal(models.SaveRequest{
		Payload:           json.RawMessage(`{"objects":[]}`),
		ExpectedUpdatedAt: &stale,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/annotations/project/42/photo/7", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var conflict models.ConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, "project/42/photo/7", conflict.ResourceID)
	assert.True(t, conflict.CurrentUpdatedAt.Equal(current))
	assert.Equal(t, 9, conflict.ObjectCount)
}

func TestSave_InvalidJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _ := newTestHandler(t, ctrl)

	req := httptest.NewRequest(http.MethodPut, "/api/annotations/project/42/photo/7", bytes.NewReader([]byte(`{broken`)))
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSave_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	mockSvc.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(models.Snapshot{}, service.ErrValidationInvalidPayload)

	body, err := json.Marshal(models.SaveRequest{Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/annotations/project/42/photo/7", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ── DELETE /api/annotations/* ───────────────────────────────────────────────

func TestRemove_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	token := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	mockSvc.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req models.DeleteRequest) (models.Snapshot, error) {
			assert.Equal(t, "project/42/photo/7", req.ResourceID)
			return models.Snapshot{}, nil
		})

	body, err := json.Marshal(models.DeleteRequest{ExpectedUpdatedAt: &token})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/annotations/project/42/photo/7", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRemove_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	current := time.Date(2025, 12, 28, 12, 0, 0, 0, time.UTC)
	mockSvc.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 4, UpdatedAt: current}, store.ErrVersionConflict)

	stale := current.Add(-time.Hour)
	body, err := json.Marshal(models.DeleteRequest{ExpectedUpdatedAt: &stale})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/annotations/project/42/photo/7", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var conflict models.ConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.True(t, conflict.CurrentUpdatedAt.Equal(current))
}

func TestTraceID_EchoedInResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, mockSvc := newTestHandler(t, ctrl)

	mockSvc.EXPECT().
		GetSnapshot(gomock.Any(), "project/1/photo/1").
		Return(models.Snapshot{ResourceID: "project/1/photo/1"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/annotations/state/project/1/photo/1", nil)
	req.Header.Set(traceIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get(traceIDHeader))
}
