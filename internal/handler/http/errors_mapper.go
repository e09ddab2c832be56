package http

import (
	"errors"
	"net/http"

	"github.com/buildnote/draftkeeper/internal/service"
	"github.com/buildnote/draftkeeper/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrValidationNoResourceID:   http.StatusBadRequest,
	service.ErrValidationInvalidPayload: http.StatusBadRequest,
	service.ErrValidationNegativeCount:  http.StatusBadRequest,

	store.ErrAnnotationNotFound: http.StatusNotFound,
	store.ErrAnnotationNotSaved: http.StatusInternalServerError,
	store.ErrVersionConflict:    http.StatusConflict,

	store.ErrBuildingSQLQuery: http.StatusInternalServerError,
	store.ErrExecutingQuery:   http.StatusInternalServerError,
	store.ErrScanningRow:      http.StatusInternalServerError,
	store.ErrScanningRows:     http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
