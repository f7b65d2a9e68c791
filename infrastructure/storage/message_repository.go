//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../../mocks/mock_message_repository.go -package=mocks
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	messagePrefix = "msg:"
	inboxPrefix   = "inv:"
	sequenceKey   = "seq:msg"
	clockKey      = "meta:msg:clock"
	sequenceLease = 1000
)

type IMessageRepository interface {
	Append(senderID, receiverID, body string) (domain.Message, error)
	Thread(userA, userB string) ([]domain.Message, error)
	MarkRead(fromID, toID string) (int, error)
	AllInvolving(userID string) ([]domain.Message, error)
	Ping() error
}

// MessageRepository is the append-only message log.
// Appends and read-marks are serialised by mu so that commit order,
// sequence order and createdAt order are the same order.
type MessageRepository struct {
	db    *badger.DB
	log   *slog.Logger
	seq   *badger.Sequence
	clock func() time.Time

	mu   sync.Mutex
	last time.Time
}

type MessageRepositoryOption func(*MessageRepository)

// WithClock replaces time.Now as the source of createdAt.
func WithClock(clock func() time.Time) MessageRepositoryOption {
	return func(r *MessageRepository) { r.clock = clock }
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, opts ...MessageRepositoryOption) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), sequenceLease)
	if err != nil {
		return nil, storageError(err)
	}
	r := &MessageRepository{db: db, log: log, seq: seq, clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(clockKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				r.last = time.Unix(0, int64(binary.BigEndian.Uint64(val))).UTC()
			}
			return nil
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		_ = seq.Release()
		return nil, storageError(err)
	}
	return r, nil
}

// Append persists a new message and assigns its id, sequence and timestamp.
// The body is trimmed; sender and receiver must be distinct canonical ids.
func (r *MessageRepository) Append(senderID, receiverID, body string) (domain.Message, error) {
	cmd := domain.NewSendMessageCommand(senderID, receiverID, body)
	if err := cmd.Validate(); err != nil {
		return domain.Message{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := r.seq.Next()
	if err != nil {
		return domain.Message{}, storageError(err)
	}
	createdAt := r.clock().UTC()
	if !createdAt.After(r.last) {
		createdAt = r.last.Add(time.Nanosecond)
	}
	message := domain.Message{
		ID:         uuid.NewString(),
		Seq:        next + 1,
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Body:       cmd.Body,
		CreatedAt:  createdAt,
	}

	primary := messageKey(message.SenderID, message.ReceiverID, message.Seq)
	var clock [8]byte
	binary.BigEndian.PutUint64(clock[:], uint64(createdAt.UnixNano()))
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(primary, EncodeMessage(message)); err != nil {
			return err
		}
		if err := txn.Set(inboxKey(message.SenderID, message.Seq), primary); err != nil {
			return err
		}
		if err := txn.Set(inboxKey(message.ReceiverID, message.Seq), primary); err != nil {
			return err
		}
		return txn.Set([]byte(clockKey), clock[:])
	})
	if err != nil {
		return domain.Message{}, storageError(err)
	}
	r.last = createdAt
	r.log.Debug("Message appended", "message_id", message.ID, "seq", message.Seq)
	return message, nil
}

// Thread returns every message exchanged between userA and userB,
// in either direction, oldest first.
func (r *MessageRepository) Thread(userA, userB string) ([]domain.Message, error) {
	if err := domain.ValidatePair(userA, userB); err != nil {
		return nil, err
	}
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		messages, err = scanPair(txn, pairPrefix(userA, userB))
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	slices.SortStableFunc(messages, compareMessages)
	return messages, nil
}

// MarkRead flips every unread message sent by fromID to toID and returns
// how many were flipped. Messages in the other direction are left alone.
func (r *MessageRepository) MarkRead(fromID, toID string) (int, error) {
	if err := domain.ValidatePair(fromID, toID); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		messages, err := scanPair(txn, pairPrefix(fromID, toID))
		if err != nil {
			return err
		}
		for _, m := range messages {
			if m.SenderID != fromID || m.Read {
				continue
			}
			m.Read = true
			if err := txn.Set(messageKey(m.SenderID, m.ReceiverID, m.Seq), EncodeMessage(m)); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, storageError(err)
	}
	if updated > 0 {
		r.log.Debug("Messages marked as read", "from_id", fromID, "to_id", toID, "updated", updated)
	}
	return updated, nil
}

// AllInvolving returns every message userID sent or received, in sequence order.
func (r *MessageRepository) AllInvolving(userID string) ([]domain.Message, error) {
	if err := domain.ValidateID(userID); err != nil {
		return nil, err
	}
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(inboxPrefix + userID + ":")
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			primary, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			item, err := txn.Get(primary)
			if err != nil {
				return fmt.Errorf("dangling index entry %s: %w", it.Item().Key(), err)
			}
			err = item.Value(func(val []byte) error {
				m, err := DecodeMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, m)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	return messages, nil
}

func (r *MessageRepository) Ping() error {
	if r.db.IsClosed() {
		return storageError(fmt.Errorf("badger is closed"))
	}
	return nil
}

// Close hands the unused part of the sequence lease back to Badger.
// It must run before the database is closed.
func (r *MessageRepository) Close() error {
	return r.seq.Release()
}

func scanPair(txn *badger.Txn, prefix []byte) ([]domain.Message, error) {
	var messages []domain.Message
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			m, err := DecodeMessage(val)
			if err != nil {
				return err
			}
			messages = append(messages, m)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return messages, nil
}

func compareMessages(a, b domain.Message) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	}
	return 0
}

// pairPrefix is direction-independent: both ids are ordered before use.
func pairPrefix(a, b string) []byte {
	low, high := a, b
	if high < low {
		low, high = high, low
	}
	return []byte(messagePrefix + low + ":" + high + ":")
}

func messageKey(senderID, receiverID string, seq uint64) []byte {
	return append(pairPrefix(senderID, receiverID), fmt.Sprintf("%020d", seq)...)
}

func inboxKey(userID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", inboxPrefix, userID, seq))
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", safeerrors.ErrStorage, err)
}
