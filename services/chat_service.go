package services

import (
	"context"
	"fmt"
	"log/slog"
	"safe-space/domain"
	"safe-space/errors"
	"safe-space/infrastructure/storage"
	"safe-space/projection"

	"github.com/samber/lo"
)

type IChatService interface {
	ListConversations(ctx context.Context, callerID string) ([]domain.ConversationSummary, error)
	FetchThread(ctx context.Context, callerID, counterpartID string) ([]domain.ThreadMessage, error)
	SendMessage(ctx context.Context, callerID, receiverID, body string) (domain.ThreadMessage, error)
	MarkThreadRead(ctx context.Context, callerID, counterpartID string) (int, error)
}

// ChatService runs the direct-messaging operations on behalf of one caller.
type ChatService struct {
	log       *slog.Logger
	messages  storage.IMessageRepository
	directory IDirectory
}

func NewChatService(log *slog.Logger, messages storage.IMessageRepository, directory IDirectory) *ChatService {
	return &ChatService{log: log, messages: messages, directory: directory}
}

// ListConversations returns one summary per counterpart, most recently
// active first.
func (s *ChatService) ListConversations(ctx context.Context, callerID string) ([]domain.ConversationSummary, error) {
	if err := domain.ValidateID(callerID); err != nil {
		return nil, err
	}
	messages, err := s.messages.AllInvolving(callerID)
	if err != nil {
		return nil, err
	}
	summaries := projection.Conversations(callerID, messages)
	profiles := s.newProfileCache()
	for i := range summaries {
		summaries[i].Counterpart = profiles.get(ctx, summaries[i].CounterpartID)
	}
	return summaries, nil
}

// FetchThread returns the conversation with counterpartID, oldest first, and
// then marks the counterpart's messages as read. The returned messages show
// the state before marking.
func (s *ChatService) FetchThread(ctx context.Context, callerID, counterpartID string) ([]domain.ThreadMessage, error) {
	cmd := domain.ThreadCommand{CallerID: callerID, CounterpartID: counterpartID}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	profiles := s.newProfileCache()
	if err := profiles.require(ctx, counterpartID); err != nil {
		return nil, err
	}

	messages, err := s.messages.Thread(callerID, counterpartID)
	if err != nil {
		return nil, err
	}

	if _, err = s.messages.MarkRead(counterpartID, callerID); err != nil {
		s.log.Warn("Read marking failed, will retry on next fetch",
			"user_id", callerID, "counterpart_id", counterpartID, "error", err)
	}

	return lo.Map(messages, func(m domain.Message, _ int) domain.ThreadMessage {
		return profiles.expand(ctx, m)
	}), nil
}

// SendMessage appends a message to an existing receiver.
func (s *ChatService) SendMessage(ctx context.Context, callerID, receiverID, body string) (domain.ThreadMessage, error) {
	cmd := domain.NewSendMessageCommand(callerID, receiverID, body)
	if err := cmd.Validate(); err != nil {
		return domain.ThreadMessage{}, err
	}
	profiles := s.newProfileCache()
	if err := profiles.require(ctx, receiverID); err != nil {
		return domain.ThreadMessage{}, err
	}

	message, err := s.messages.Append(cmd.SenderID, cmd.ReceiverID, cmd.Body)
	if err != nil {
		return domain.ThreadMessage{}, err
	}
	s.log.Debug("Message sent", "user_id", callerID, "counterpart_id", receiverID, "message_id", message.ID)
	return profiles.expand(ctx, message), nil
}

// MarkThreadRead marks every message counterpartID sent to the caller as read
// and returns how many changed.
func (s *ChatService) MarkThreadRead(_ context.Context, callerID, counterpartID string) (int, error) {
	cmd := domain.ThreadCommand{CallerID: callerID, CounterpartID: counterpartID}
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	return s.messages.MarkRead(counterpartID, callerID)
}

func (s *ChatService) newProfileCache() *profileCache {
	return &profileCache{log: s.log, directory: s.directory, profiles: make(map[string]*domain.Profile)}
}

// profileCache resolves each id at most once per operation.
type profileCache struct {
	log       *slog.Logger
	directory IDirectory
	profiles  map[string]*domain.Profile
}

// require resolves id and fails when the user does not exist.
func (c *profileCache) require(ctx context.Context, id string) error {
	profile, err := c.directory.Profile(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return fmt.Errorf("%w: %s", errors.ErrUserNotFound, id)
		}
		return err
	}
	c.profiles[id] = &profile
	return nil
}

// get never fails: an unresolvable profile is left nil.
func (c *profileCache) get(ctx context.Context, id string) *domain.Profile {
	if profile, ok := c.profiles[id]; ok {
		return profile
	}
	profile, err := c.directory.Profile(ctx, id)
	if err != nil {
		c.log.Debug("Profile not resolved", "user_id", id, "error", err)
		c.profiles[id] = nil
		return nil
	}
	c.profiles[id] = &profile
	return &profile
}

func (c *profileCache) expand(ctx context.Context, m domain.Message) domain.ThreadMessage {
	return domain.ThreadMessage{
		Message:  m,
		Sender:   c.get(ctx, m.SenderID),
		Receiver: c.get(ctx, m.ReceiverID),
	}
}
