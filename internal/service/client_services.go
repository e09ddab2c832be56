package service

import (
	"github.com/buildnote/draftkeeper/internal/adapter"
	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/store"
)

type ClientServices struct {
	Reconciler   ReconciliationService
	DraftService ClientDraftService
	AutosaveJob  AutosaveJob
}

// NewClientServices wires the client-side service graph. onAutosaveError is
// forwarded to the autosave job; it may be nil.
func NewClientServices(storages *store.ClientStorages, serverAdapter adapter.ServerAdapter, log *logger.Logger, onAutosaveError func(error)) *ClientServices {
	reconciler := NewReconciliationService()

	return &ClientServices{
		Reconciler:   reconciler,
		DraftService: NewClientDraftService(storages.DraftRepository, serverAdapter, reconciler, log),
		AutosaveJob:  NewAutosaveJob(storages.DraftRepository, log, onAutosaveError),
	}
}
