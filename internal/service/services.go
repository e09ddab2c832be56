package service

import (
	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/store"
)

type Services struct {
	AnnotationService AnnotationService
}

func NewServices(annotationRepository store.AnnotationRepository, logger *logger.Logger) *Services {
	return &Services{
		AnnotationService: NewAnnotationService(annotationRepository, logger),
	}
}
