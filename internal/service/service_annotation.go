package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/models"
)

type annotationService struct {
	annotationRepository store.AnnotationRepository

	logger *logger.Logger
}

func NewAnnotationService(annotationRepository store.AnnotationRepository, logger *logger.Logger) AnnotationService {
	return &annotationService{
		annotationRepository: annotationRepository,
		logger:               logger,
	}
}

func (a *annotationService) Get(ctx context.Context, resourceID string) (models.AnnotationSet, error) {
	if resourceID == "" {
		return models.AnnotationSet{}, ErrValidationNoResourceID
	}
	return a.annotationRepository.Get(ctx, resourceID)
}

func (a *annotationService) GetSnapshot(ctx context.Context, resourceID string) (models.Snapshot, error) {
	if resourceID == "" {
		return models.Snapshot{}, ErrValidationNoResourceID
	}
	return a.annotationRepository.GetSnapshot(ctx, resourceID)
}

func (a *annotationService) List(ctx context.Context, project string) ([]models.Snapshot, error) {
	return a.annotationRepository.List(ctx, project)
}

func (a *annotationService) Save(ctx context.Context, req models.SaveRequest) (models.Snapshot, error) {
	if err := validateSaveRequest(req); err != nil {
		return models.Snapshot{}, fmt.Errorf("save request rejected: %w", err)
	}
	return a.annotationRepository.Save(ctx, req)
}

func (a *annotationService) Delete(ctx context.Context, req models.DeleteRequest) (models.Snapshot, error) {
	if req.ResourceID == "" {
		return models.Snapshot{}, ErrValidationNoResourceID
	}
	return a.annotationRepository.Delete(ctx, req)
}

func validateSaveRequest(req models.SaveRequest) error {
	if req.ResourceID == "" {
		return ErrValidationNoResourceID
	}
	if len(req.Payload) == 0 || !json.Valid(req.Payload) {
		return ErrValidationInvalidPayload
	}
	if req.ObjectCount < 0 {
		return ErrValidationNegativeCount
	}
	return nil
}
