package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/mock"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/models"
)

func TestAnnotationService_Save_Validation(t *testing.T) {
	token := time.Now()

	tests := []struct {
		name    string
		req     models.SaveRequest
		wantErr error
	}{
		{
			name:    "missing resource id",
			req:     models.SaveRequest{Payload: []byte(`{}`)},
			wantErr: ErrValidationNoResourceID,
		},
		{
			name:    "empty payload",
			req:     models.SaveRequest{ResourceID: "project/1/photo/1"},
			wantErr: ErrValidationInvalidPayload,
		},
		{
			name:    "malformed payload",
			req:     models.SaveRequest{ResourceID: "project/1/photo/1", Payload: []byte(`{broken`)},
			wantErr: ErrValidationInvalidPayload,
		},
		{
			name: "negative object count",
			req: models.SaveRequest{
				ResourceID:        "project/1/photo/1",
				Payload:           []byte(`{}`),
				ObjectCount:       -1,
				ExpectedUpdatedAt: &token,
			},
			wantErr: ErrValidationNegativeCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// the repository must never be reached on invalid input
			repo := mock.NewMockAnnotationRepository(ctrl)
			svc := NewAnnotationService(repo, logger.Nop())

			_, err := svc.Save(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnnotationService_Save_PassesThroughConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockAnnotationRepository(ctrl)
	svc := NewAnnotationService(repo, logger.Nop())

	token := time.Date(2025, 12, 28, 10, 15, 0, 0, time.UTC)
	current := token.Add(time.Hour)
	req := models.SaveRequest{
		ResourceID:        "project/1/photo/1",
		Payload:           []byte(`{"objects":[]}`),
		ExpectedUpdatedAt: &token,
	}

	repo.EXPECT().
		Save(gomock.Any(), req).
		Return(models.Snapshot{ResourceID: req.ResourceID, UpdatedAt: current, ObjectCount: 4}, store.ErrVersionConflict)

	snap, err := svc.Save(context.Background(), req)

	require.ErrorIs(t, err, store.ErrVersionConflict)
	assert.True(t, snap.UpdatedAt.Equal(current), "conflict carries the current server state")
}

func TestAnnotationService_GetSnapshot_EmptyID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewAnnotationService(mock.NewMockAnnotationRepository(ctrl), logger.Nop())

	_, err := svc.GetSnapshot(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidationNoResourceID)
}

func TestAnnotationService_Delete_EmptyID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewAnnotationService(mock.NewMockAnnotationRepository(ctrl), logger.Nop())

	_, err := svc.Delete(context.Background(), models.DeleteRequest{})
	assert.ErrorIs(t, err, ErrValidationNoResourceID)
}
