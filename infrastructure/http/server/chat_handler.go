package server

import (
	"log/slog"
	"net/http"
	"safe-space/auth"
	"safe-space/services"

	"github.com/gorilla/mux"
)

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Body       string `json:"body"`
}

type markReadResponse struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

// ChatHandler exposes the direct-messaging operations for the authenticated caller.
type ChatHandler struct {
	log     *slog.Logger
	service services.IChatService
}

func NewChatHandler(log *slog.Logger, service services.IChatService) *ChatHandler {
	return &ChatHandler{log: log, service: service}
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	summaries, err := h.service.ListConversations(r.Context(), caller.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *ChatHandler) FetchThread(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	messages, err := h.service.FetchThread(r.Context(), caller.ID, mux.Vars(r)["userId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	var body sendMessageRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	message, err := h.service.SendMessage(r.Context(), caller.ID, body.ReceiverID, body.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

func (h *ChatHandler) MarkThreadRead(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	updated, err := h.service.MarkThreadRead(r.Context(), caller.ID, mux.Vars(r)["userId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, markReadResponse{Message: "Messages marked as read", Updated: updated})
}

func (h *ChatHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if StatusFor(err) >= http.StatusInternalServerError {
		h.log.Error("Chat request failed", "path", r.URL.Path, "error", err)
	}
	WriteError(w, err)
}
