package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"safe-space/auth"
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"safe-space/infrastructure/storage"
	"safe-space/services"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const password = "Str0ng!Passphrase"

type fixture struct {
	t      *testing.T
	server *httptest.Server
	store  *storage.MessageRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	messages, err := storage.NewMessageRepository(db, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })

	users := storage.NewUserRepository(db)
	directory := services.NewDirectory(users)
	tokens := auth.NewTokenManager("router-test-secret", time.Hour)

	router := NewRouter(log, tokens, Handlers{
		Auth:      NewAuthHandler(log, services.NewAuthService(log, users, tokens), directory),
		Chat:      NewChatHandler(log, services.NewChatService(log, messages, directory)),
		CaseNotes: NewCaseNoteHandler(log, services.NewCaseNoteService(log, storage.NewCaseNoteRepository(db), directory)),
		Health:    NewHealthHandler(messages, nil),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &fixture{t: t, server: server, store: messages}
}

// call performs the request and decodes the JSON response into out when non nil.
func (f *fixture) call(method, path, token string, body, out any) int {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := f.server.Client().Do(request)
	require.NoError(f.t, err)
	defer response.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(response.Body).Decode(out))
	}
	return response.StatusCode
}

func (f *fixture) register(name, email string, role domain.Role) services.Session {
	f.t.Helper()
	var session services.Session
	status := f.call(http.MethodPost, "/api/auth/register", "", auth.RegisterRequest{
		Name: name, Email: email, Password: password, Role: role,
	}, &session)
	require.Equal(f.t, http.StatusCreated, status)
	return session
}

func TestRouter_Conversation_Flow(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	survivor := f.register("Sam", "sam@example.com", domain.RoleSurvivor)
	counsellor := f.register("Dr. Lee", "lee@example.com", domain.RoleCounsellor)

	var sent domain.ThreadMessage
	status := f.call(http.MethodPost, "/api/chat/send", survivor.Token,
		sendMessageRequest{ReceiverID: counsellor.User.ID, Body: "  I need to talk  "}, &sent)
	req.Equal(http.StatusCreated, status)
	req.Equal("I need to talk", sent.Body)
	req.Equal(uint64(1), sent.Seq)
	req.Equal(counsellor.User.ID, sent.Receiver.ID)

	var summaries []domain.ConversationSummary
	req.Equal(http.StatusOK, f.call(http.MethodGet, "/api/chat/conversations", counsellor.Token, nil, &summaries))
	req.Len(summaries, 1)
	req.Equal(survivor.User.ID, summaries[0].CounterpartID)
	req.Equal("Sam", summaries[0].Counterpart.Name)
	req.Equal(1, summaries[0].UnreadCount)

	var thread []domain.ThreadMessage
	req.Equal(http.StatusOK, f.call(http.MethodGet, "/api/chat/messages/"+survivor.User.ID, counsellor.Token, nil, &thread))
	req.Len(thread, 1)
	req.False(thread[0].Read)

	req.Equal(http.StatusOK, f.call(http.MethodGet, "/api/chat/conversations", counsellor.Token, nil, &summaries))
	req.Zero(summaries[0].UnreadCount)

	var marked markReadResponse
	req.Equal(http.StatusOK, f.call(http.MethodPut, "/api/chat/read/"+survivor.User.ID, counsellor.Token, nil, &marked))
	req.Zero(marked.Updated)
}

func TestRouter_Send_Errors(t *testing.T) {
	f := newFixture(t)
	survivor := f.register("Sam", "sam@example.com", domain.RoleSurvivor)
	counsellor := f.register("Dr. Lee", "lee@example.com", domain.RoleCounsellor)

	tests := []struct {
		name    string
		token   string
		body    sendMessageRequest
		status  int
		message string
	}{
		{"missing token", "", sendMessageRequest{ReceiverID: counsellor.User.ID, Body: "hi"}, http.StatusUnauthorized, ""},
		{"garbage token", "not-a-jwt", sendMessageRequest{ReceiverID: counsellor.User.ID, Body: "hi"}, http.StatusUnauthorized, ""},
		{"blank body", survivor.Token, sendMessageRequest{ReceiverID: counsellor.User.ID, Body: " \n "}, http.StatusBadRequest, safeerrors.ErrEmptyBody.Error()},
		{"self", survivor.Token, sendMessageRequest{ReceiverID: survivor.User.ID, Body: "hi"}, http.StatusBadRequest, safeerrors.ErrSelfConversation.Error()},
		{"malformed receiver", survivor.Token, sendMessageRequest{ReceiverID: "42", Body: "hi"}, http.StatusBadRequest, safeerrors.ErrMalformedID.Error() + ": ReceiverID"},
		{"unknown receiver", survivor.Token, sendMessageRequest{ReceiverID: uuid.NewString(), Body: "hi"}, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		var resp errorResponse
		status := f.call(http.MethodPost, "/api/chat/send", tt.token, tt.body, &resp)
		require.Equal(t, tt.status, status, tt.name)
		require.NotEmpty(t, resp.Error, tt.name)
		if tt.message != "" {
			require.Equal(t, tt.message, resp.Error, tt.name)
		}
	}
}

func TestRouter_Auth(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	session := f.register("Sam", "sam@example.com", domain.RoleSurvivor)

	var resp errorResponse
	req.Equal(http.StatusConflict, f.call(http.MethodPost, "/api/auth/register", "", auth.RegisterRequest{
		Name: "Sam again", Email: "SAM@example.com", Password: password, Role: domain.RoleSurvivor,
	}, &resp))

	req.Equal(http.StatusBadRequest, f.call(http.MethodPost, "/api/auth/register", "", auth.RegisterRequest{
		Name: "Root", Email: "root@example.com", Password: password, Role: domain.RoleAdmin,
	}, &resp))

	var login services.Session
	req.Equal(http.StatusOK, f.call(http.MethodPost, "/api/auth/login", "",
		auth.LoginRequest{Email: "sam@example.com", Password: password}, &login))
	req.Equal(session.User, login.User)

	req.Equal(http.StatusUnauthorized, f.call(http.MethodPost, "/api/auth/login", "",
		auth.LoginRequest{Email: "sam@example.com", Password: "Wr0ng!Passphrase"}, &resp))

	var me domain.Profile
	req.Equal(http.StatusOK, f.call(http.MethodGet, "/api/auth/me", login.Token, nil, &me))
	req.Equal(session.User, me)

	var profiles []domain.Profile
	req.Equal(http.StatusOK, f.call(http.MethodGet, "/api/users?role=survivor", login.Token, nil, &profiles))
	req.Equal([]domain.Profile{session.User}, profiles)
	req.Equal(http.StatusBadRequest, f.call(http.MethodGet, "/api/users?role=wizard", login.Token, nil, &resp))
}

func TestRouter_CaseNotes(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	survivor := f.register("Sam", "sam@example.com", domain.RoleSurvivor)
	counsellor := f.register("Dr. Lee", "lee@example.com", domain.RoleCounsellor)
	cmd := domain.CreateCaseNoteCommand{SurvivorID: survivor.User.ID, Notes: "intake", RiskLevel: domain.RiskHigh}

	var resp errorResponse
	req.Equal(http.StatusForbidden, f.call(http.MethodPost, "/api/case-notes", survivor.Token, cmd, &resp))

	var note domain.CaseNote
	req.Equal(http.StatusCreated, f.call(http.MethodPost, "/api/case-notes", counsellor.Token, cmd, &note))
	req.Equal(counsellor.User.ID, note.CounsellorID)

	var notes []domain.CaseNote
	req.Equal(http.StatusOK, f.call(http.MethodGet, "/api/case-notes", survivor.Token, nil, &notes))
	req.Len(notes, 1)
	req.Equal(note.ID, notes[0].ID)

	req.Equal(http.StatusNoContent, f.call(http.MethodDelete, "/api/case-notes/"+note.ID, counsellor.Token, nil, nil))
	req.Equal(http.StatusNotFound, f.call(http.MethodGet, "/api/case-notes/"+note.ID, counsellor.Token, nil, &resp))
}

func TestRouter_Health(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	var health healthResponse
	req.Equal(http.StatusOK, f.call(http.MethodGet, "/health", "", nil, &health))
	req.Equal("ok", health.Status)
	req.Nil(health.Process)

	req.Equal(http.StatusNotFound, f.call(http.MethodGet, "/nowhere", "", nil, nil))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{safeerrors.ErrEmptyBody, http.StatusBadRequest},
		{safeerrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{safeerrors.ErrAccessDenied, http.StatusForbidden},
		{safeerrors.ErrUserNotFound, http.StatusNotFound},
		{safeerrors.ErrUserAlreadyExists, http.StatusConflict},
		{safeerrors.ErrStorage, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.status, StatusFor(tt.err))
		})
	}
}
