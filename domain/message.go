// Package domain contains core concepts of the messaging system.
// This file defines Message records and the derived conversation views.
// Messages are immutable once stored, except for the one-way read flag.
package domain

import (
	safeerrors "safe-space/errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a directed message between two participants.
type Message struct {
	ID         string    `json:"id"`
	Seq        uint64    `json:"seq"` // store-assigned, strictly increasing
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
}

// Counterpart returns the participant of m that is not self.
func (m Message) Counterpart(self string) string {
	if m.SenderID == self {
		return m.ReceiverID
	}
	return m.SenderID
}

// Before reports whether m sorts before other in thread order.
func (m Message) Before(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.Seq < other.Seq
	}
	return m.CreatedAt.Before(other.CreatedAt)
}

// IsUnreadFor reports whether m is an incoming message self has not read yet.
func (m Message) IsUnreadFor(self string) bool {
	return m.ReceiverID == self && !m.Read
}

// ThreadMessage is a Message expanded with participant profiles.
// A profile is nil when the directory could not resolve it.
type ThreadMessage struct {
	Message
	Sender   *Profile `json:"sender,omitempty"`
	Receiver *Profile `json:"receiver,omitempty"`
}

// ConversationSummary is one entry of a user's conversation list.
type ConversationSummary struct {
	CounterpartID string   `json:"counterpartId"`
	Counterpart   *Profile `json:"counterpart,omitempty"`
	LastMessage   Message  `json:"lastMessage"`
	UnreadCount   int      `json:"unreadCount"`
}

// NormalizeBody trims the body and rejects it when nothing is left.
func NormalizeBody(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", safeerrors.ErrEmptyBody
	}
	return trimmed, nil
}

// ValidateID checks that id is a canonical (lowercase, hyphenated) UUID.
// Ids are compared as strings by the store, so alternate spellings of the
// same UUID are refused rather than normalized.
func ValidateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return safeerrors.ErrMalformedID
	}
	return nil
}

// ValidatePair checks both ids and that they name two distinct users.
func ValidatePair(a, b string) error {
	if err := ValidateID(a); err != nil {
		return err
	}
	if err := ValidateID(b); err != nil {
		return err
	}
	if a == b {
		return safeerrors.ErrSelfConversation
	}
	return nil
}
