package server

import (
	"log/slog"
	"net/http"
	"safe-space/auth"
	"safe-space/domain"
	"safe-space/services"

	"github.com/gorilla/mux"
)

type CaseNoteHandler struct {
	log     *slog.Logger
	service services.ICaseNoteService
}

func NewCaseNoteHandler(log *slog.Logger, service services.ICaseNoteService) *CaseNoteHandler {
	return &CaseNoteHandler{log: log, service: service}
}

func (h *CaseNoteHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	notes, err := h.service.List(r.Context(), caller)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *CaseNoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	note, err := h.service.Get(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *CaseNoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	var cmd domain.CreateCaseNoteCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		WriteError(w, err)
		return
	}
	note, err := h.service.Create(r.Context(), caller, cmd)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *CaseNoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	var cmd domain.UpdateCaseNoteCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		WriteError(w, err)
		return
	}
	note, err := h.service.Update(r.Context(), caller, mux.Vars(r)["id"], cmd)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *CaseNoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
