//go:generate go run go.uber.org/mock/mockgen -source=api.go -destination=../mocks/mock_chat_api.go -package=mocks
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"safe-space/domain"
	"safe-space/errors"
	"strings"
	"sync"
	"time"
)

// ChatAPI is the server surface a conversation view polls.
type ChatAPI interface {
	ListConversations(ctx context.Context) ([]domain.ConversationSummary, error)
	FetchThread(ctx context.Context, counterpartID string) ([]domain.ThreadMessage, error)
	SendMessage(ctx context.Context, receiverID, body string) (domain.ThreadMessage, error)
	MarkThreadRead(ctx context.Context, counterpartID string) (int, error)
}

type Session struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

// HTTPClient talks to the REST API with a bearer token obtained from Login.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login authenticates and keeps the token for subsequent calls.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &session); err != nil {
		return Session{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

// Register creates a self-service account and keeps its token.
func (c *HTTPClient) Register(ctx context.Context, name, email, password string, role domain.Role) (Session, error) {
	var session Session
	body := map[string]string{"name": name, "email": email, "password": password, "role": string(role)}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &session); err != nil {
		return Session{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) ListProfiles(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	path := "/api/users"
	if role != "" {
		path += "?" + url.Values{"role": {string(role)}}.Encode()
	}
	var profiles []domain.Profile
	return profiles, c.do(ctx, http.MethodGet, path, nil, &profiles)
}

func (c *HTTPClient) ListConversations(ctx context.Context) ([]domain.ConversationSummary, error) {
	var summaries []domain.ConversationSummary
	return summaries, c.do(ctx, http.MethodGet, "/api/chat/conversations", nil, &summaries)
}

func (c *HTTPClient) FetchThread(ctx context.Context, counterpartID string) ([]domain.ThreadMessage, error) {
	var messages []domain.ThreadMessage
	return messages, c.do(ctx, http.MethodGet, "/api/chat/messages/"+url.PathEscape(counterpartID), nil, &messages)
}

func (c *HTTPClient) SendMessage(ctx context.Context, receiverID, body string) (domain.ThreadMessage, error) {
	var message domain.ThreadMessage
	payload := map[string]string{"receiverId": receiverID, "body": body}
	return message, c.do(ctx, http.MethodPost, "/api/chat/send", payload, &message)
}

func (c *HTTPClient) MarkThreadRead(ctx context.Context, counterpartID string) (int, error) {
	var resp struct {
		Updated int `json:"updated"`
	}
	err := c.do(ctx, http.MethodPut, "/api/chat/read/"+url.PathEscape(counterpartID), nil, &resp)
	return resp.Updated, err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// decodeError turns an error response back into the matching error class.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error == "" {
		payload.Error = resp.Status
	}

	var class error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		class = errors.ErrValidation
	case http.StatusUnauthorized:
		class = errors.ErrUnauthenticated
	case http.StatusForbidden:
		class = errors.ErrAccessDenied
	case http.StatusNotFound:
		class = errors.ErrNotFound
	case http.StatusConflict:
		class = errors.ErrUserAlreadyExists
	case http.StatusServiceUnavailable:
		class = errors.ErrStorage
	default:
		return fmt.Errorf("server error %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("%w (%s)", class, payload.Error)
}
