// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/internal/utils"
	"github.com/buildnote/draftkeeper/models"
)

// state answers the probe: the light descriptor without the payload.
func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	resourceID := chi.URLParam(r, "*")

	snap, err := h.services.AnnotationService.GetSnapshot(r.Context(), resourceID)
	if err != nil {
		if !errors.Is(err, store.ErrAnnotationNotFound) {
			log.Err(err).Str("func", "*Handler.state").Str("resource_id", resourceID).Msg("error probing annotation state")
		}
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, snap, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.state").Msg("error writing response")
	}
}

// full returns the complete annotation set for the editor to load.
func (h *Handler) full(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	resourceID := chi.URLParam(r, "*")

	set, err := h.services.AnnotationService.Get(r.Context(), resourceID)
	if err != nil {
		if !errors.Is(err, store.ErrAnnotationNotFound) {
			log.Err(err).Str("func", "*Handler.full").Str("resource_id", resourceID).Msg("error loading annotation set")
		}
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, set, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.full").Msg("error writing response")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	project := r.URL.Query().Get("project")

	snaps, err := h.services.AnnotationService.List(r.Context(), project)
	if err != nil {
		log.Err(err).Str("func", "*Handler.list").Str("project", project).Msg("error listing annotation sets")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	response := models.ListResponse{Snapshots: snaps, Length: len(snaps)}
	if _, err := utils.WriteJSON(w, response, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.list").Msg("error writing response")
	}
}

// save applies the compare-and-swap mutation. A token mismatch is answered
// with 409 and the server's current state in the body.
func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	resourceID := chi.URLParam(r, "*")

	var req models.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.save").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}
	req.ResourceID = resourceID

	snap, err := h.services.AnnotationService.Save(r.Context(), req)
	if err != nil {
		h.writeMutationError(w, r, snap, err, "*Handler.save")
		return
	}

	if _, err := utils.WriteJSON(w, snap, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.save").Msg("error writing response")
	}
}

// remove deletes an annotation set under the same CAS contract as save.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	resourceID := chi.URLParam(r, "*")

	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.remove").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}
	req.ResourceID = resourceID

	snap, err := h.services.AnnotationService.Delete(r.Context(), req)
	if err != nil {
		h.writeMutationError(w, r, snap, err, "*Handler.remove")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeMutationError translates a failed mutation into the wire contract:
// 409 with the current server state for version conflicts, a mapped status
// with a plain body for everything else.
func (h *Handler) writeMutationError(w http.ResponseWriter, r *http.Request, current models.Snapshot, err error, caller string) {
	log := logger.FromRequest(r)

	if errors.Is(err, store.ErrVersionConflict) {
		log.Warn().
			Str("func", caller).
			Str("resource_id", current.ResourceID).
			Time("current_updated_at", current.UpdatedAt).
			Msg("mutation rejected: version conflict")

		conflict := models.ConflictResponse{
			ResourceID:       current.ResourceID,
			CurrentUpdatedAt: current.UpdatedAt,
			ObjectCount:      current.ObjectCount,
		}
		if _, writeErr := utils.WriteJSON(w, conflict, http.StatusConflict); writeErr != nil {
			log.Err(writeErr).Str("func", caller).Msg("error writing conflict response")
		}
		return
	}

	if !errors.Is(err, store.ErrAnnotationNotFound) {
		log.Err(err).Str("func", caller).Msg("mutation failed")
	}
	http.Error(w, err.Error(), statusFromError(err))
}
