package server

import (
	"log/slog"
	"net/http"
	"safe-space/auth"
	"safe-space/domain"
	"safe-space/services"
)

type AuthHandler struct {
	log       *slog.Logger
	service   services.IAuthService
	directory services.IDirectory
}

func NewAuthHandler(log *slog.Logger, service services.IAuthService, directory services.IDirectory) *AuthHandler {
	return &AuthHandler{log: log, service: service, directory: directory}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	session, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.log.Debug("Registration refused", "error", err)
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	session, err := h.service.Login(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Me returns the profile of the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	profile, err := h.directory.Profile(r.Context(), caller.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ListUsers lists directory profiles, optionally filtered with ?role=.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.directory.ListProfiles(r.Context(), domain.Role(r.URL.Query().Get("role")))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
