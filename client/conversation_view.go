package client

import (
	"context"
	"fmt"
	"log/slog"
	"safe-space/domain"
	"safe-space/errors"
	"safe-space/projection"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

const DefaultPollInterval = 3 * time.Second

var ErrNoConversation = fmt.Errorf("%w: no conversation is open", errors.ErrValidation)

// ConversationView keeps a local copy of one thread fresh by polling.
// Opening another counterpart or closing the view cancels the poll loop, and
// any fetch still in flight at that point is discarded.
type ConversationView struct {
	log      *slog.Logger
	api      ChatAPI
	interval time.Duration
	onError  func(error)
	onUpdate func([]domain.ThreadMessage)

	mu            sync.Mutex
	generation    uint64
	counterpartID string
	messages      []domain.ThreadMessage
	cancel        context.CancelFunc
}

type ViewOption func(*ConversationView)

func WithPollInterval(interval time.Duration) ViewOption {
	return func(v *ConversationView) {
		if interval > 0 {
			v.interval = interval
		}
	}
}

// WithErrorHandler receives poll failures. Polling continues after them.
func WithErrorHandler(fn func(error)) ViewOption {
	return func(v *ConversationView) { v.onError = fn }
}

// WithUpdateHandler is called with a copy of the thread after each change.
func WithUpdateHandler(fn func([]domain.ThreadMessage)) ViewOption {
	return func(v *ConversationView) { v.onUpdate = fn }
}

func NewConversationView(log *slog.Logger, api ChatAPI, opts ...ViewOption) *ConversationView {
	v := &ConversationView{log: log, api: api, interval: DefaultPollInterval}
	for _, opt := range opts {
		opt(v)
	}
	if v.onError == nil {
		v.onError = func(err error) {
			v.log.Warn("Thread poll failed", "error", err)
		}
	}
	return v
}

// Open switches the view to counterpartID, fetches immediately and then on
// every tick until the view is closed or switched again.
func (v *ConversationView) Open(ctx context.Context, counterpartID string) error {
	if err := domain.ValidateID(counterpartID); err != nil {
		return err
	}

	v.mu.Lock()
	v.stopLocked()
	v.counterpartID = counterpartID
	generation := v.generation
	pollCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.mu.Unlock()

	v.log.Debug("Conversation opened", "counterpart_id", counterpartID)
	go v.poll(pollCtx, generation, counterpartID)
	return nil
}

// Close stops polling. The local thread is dropped.
func (v *ConversationView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopLocked()
	v.counterpartID = ""
}

func (v *ConversationView) CounterpartID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.counterpartID
}

// Messages returns a copy of the local thread, oldest first.
func (v *ConversationView) Messages() []domain.ThreadMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.messages)
}

// Send posts body to the open counterpart. The message joins the local
// thread only once the server has accepted it.
func (v *ConversationView) Send(ctx context.Context, body string) (domain.ThreadMessage, error) {
	trimmed, err := domain.NormalizeBody(body)
	if err != nil {
		return domain.ThreadMessage{}, err
	}

	v.mu.Lock()
	counterpartID, generation := v.counterpartID, v.generation
	v.mu.Unlock()
	if counterpartID == "" {
		return domain.ThreadMessage{}, ErrNoConversation
	}

	message, err := v.api.SendMessage(ctx, counterpartID, trimmed)
	if err != nil {
		return domain.ThreadMessage{}, err
	}

	v.mu.Lock()
	if generation != v.generation {
		v.mu.Unlock()
		return message, nil
	}
	delivered := lo.ContainsBy(v.messages, func(m domain.ThreadMessage) bool {
		return m.ID == message.ID
	})
	if !delivered {
		v.messages = append(v.messages, message)
	}
	snapshot := slices.Clone(v.messages)
	v.mu.Unlock()

	if !delivered {
		v.notify(snapshot)
	}
	return message, nil
}

// stopLocked cancels the running loop and invalidates its pending results.
func (v *ConversationView) stopLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.generation++
	v.messages = nil
}

func (v *ConversationView) poll(ctx context.Context, generation uint64, counterpartID string) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	v.fetch(ctx, generation, counterpartID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.fetch(ctx, generation, counterpartID)
		}
	}
}

func (v *ConversationView) fetch(ctx context.Context, generation uint64, counterpartID string) {
	if ctx.Err() != nil {
		return
	}
	messages, err := v.api.FetchThread(ctx, counterpartID)
	if err != nil {
		if ctx.Err() == nil {
			v.onError(err)
		}
		return
	}

	v.mu.Lock()
	if generation != v.generation {
		v.mu.Unlock()
		v.log.Debug("Stale thread discarded", "counterpart_id", counterpartID)
		return
	}
	v.messages = messages
	snapshot := slices.Clone(messages)
	v.mu.Unlock()

	v.notify(snapshot)
}

func (v *ConversationView) notify(snapshot []domain.ThreadMessage) {
	if v.onUpdate != nil {
		v.onUpdate(snapshot)
	}
}

// Inbox is the one-shot conversation list.
type Inbox struct {
	api ChatAPI
}

func NewInbox(api ChatAPI) Inbox {
	return Inbox{api: api}
}

// Refresh returns the summaries, most recent first, and the total unread count.
func (i Inbox) Refresh(ctx context.Context) ([]domain.ConversationSummary, int, error) {
	summaries, err := i.api.ListConversations(ctx)
	if err != nil {
		return nil, 0, err
	}
	return summaries, projection.UnreadTotal(summaries), nil
}
