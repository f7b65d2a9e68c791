package server

import (
	"log/slog"
	"net/http"
	"safe-space/auth"
	"safe-space/domain"
	"time"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth      *AuthHandler
	Chat      *ChatHandler
	CaseNotes *CaseNoteHandler
	Health    *HealthHandler
}

// NewRouter wires every route. Everything under /api except register and
// login requires a bearer token.
func NewRouter(log *slog.Logger, tokens *auth.TokenManager, h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger(log))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/register", h.Auth.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.Auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(tokens, WriteError))
	api.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet)
	api.HandleFunc("/users", h.Auth.ListUsers).Methods(http.MethodGet)

	api.HandleFunc("/chat/conversations", h.Chat.ListConversations).Methods(http.MethodGet)
	api.HandleFunc("/chat/messages/{userId}", h.Chat.FetchThread).Methods(http.MethodGet)
	api.HandleFunc("/chat/send", h.Chat.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/chat/read/{userId}", h.Chat.MarkThreadRead).Methods(http.MethodPut)

	writer := auth.RequireRole(WriteError, domain.RoleCounsellor, domain.RoleAdmin)
	api.HandleFunc("/case-notes", h.CaseNotes.List).Methods(http.MethodGet)
	api.HandleFunc("/case-notes/{id}", h.CaseNotes.Get).Methods(http.MethodGet)
	api.Handle("/case-notes", writer(http.HandlerFunc(h.CaseNotes.Create))).Methods(http.MethodPost)
	api.Handle("/case-notes/{id}", writer(http.HandlerFunc(h.CaseNotes.Update))).Methods(http.MethodPut)
	api.Handle("/case-notes/{id}", writer(http.HandlerFunc(h.CaseNotes.Delete))).Methods(http.MethodDelete)

	return router
}

// NewHTTPServer applies the configured timeouts around handler.
func NewHTTPServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}
