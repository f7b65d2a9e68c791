package storage

import (
	"log/slog"
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestMessageRepository(t *testing.T, db *badger.DB, opts ...MessageRepositoryOption) *MessageRepository {
	t.Helper()
	repository, err := NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Append_Assigns_Identity_And_Trims_Body(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	alice, bob := uuid.NewString(), uuid.NewString()

	message, err := repository.Append(alice, bob, "  are you free tomorrow?  \n")
	req.NoError(err)
	req.NoError(domain.ValidateID(message.ID))
	req.Equal("are you free tomorrow?", message.Body)
	req.Equal(alice, message.SenderID)
	req.Equal(bob, message.ReceiverID)
	req.False(message.Read)
	req.False(message.CreatedAt.IsZero())
	req.NotZero(message.Seq)
}

func Test_Append_Rejects_Invalid_Input(t *testing.T) {
	repository := newTestMessageRepository(t, openTestDB(t))
	alice, bob := uuid.NewString(), uuid.NewString()

	tests := []struct {
		name     string
		sender   string
		receiver string
		body     string
		want     error
	}{
		{"Empty body", alice, bob, "", safeerrors.ErrEmptyBody},
		{"Whitespace body", alice, bob, " \t\n ", safeerrors.ErrEmptyBody},
		{"Malformed sender", "not-a-uuid", bob, "hi", safeerrors.ErrMalformedID},
		{"Malformed receiver", alice, "", "hi", safeerrors.ErrMalformedID},
		{"Uppercase receiver", alice, "A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11", "hi", safeerrors.ErrMalformedID},
		{"Self conversation", alice, alice, "hi", safeerrors.ErrSelfConversation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := repository.Append(tt.sender, tt.receiver, tt.body)
			req.ErrorIs(err, tt.want)
			req.ErrorIs(err, safeerrors.ErrValidation)
		})
	}

	messages, err := repository.AllInvolving(alice)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func Test_Thread_Is_Ordered_And_Direction_Independent(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	alice, bob, carol := uuid.NewString(), uuid.NewString(), uuid.NewString()

	m1, err := repository.Append(alice, bob, "hello")
	req.NoError(err)
	m2, err := repository.Append(bob, alice, "hi there")
	req.NoError(err)
	_, err = repository.Append(alice, carol, "unrelated")
	req.NoError(err)
	m3, err := repository.Append(alice, bob, "how are you?")
	req.NoError(err)

	fromAlice, err := repository.Thread(alice, bob)
	req.NoError(err)
	fromBob, err := repository.Thread(bob, alice)
	req.NoError(err)

	req.Equal([]domain.Message{m1, m2, m3}, fromAlice)
	req.Equal(fromAlice, fromBob)
}

func Test_Thread_Without_Messages_Is_Empty(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))

	messages, err := repository.Thread(uuid.NewString(), uuid.NewString())
	req.NoError(err)
	req.Empty(messages)

	_, err = repository.Thread("bad", uuid.NewString())
	req.ErrorIs(err, safeerrors.ErrMalformedID)
}

func Test_Append_Clamps_Backward_Clock(t *testing.T) {
	req := require.New(t)
	frozen := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := frozen
	repository := newTestMessageRepository(t, openTestDB(t), WithClock(func() time.Time { return now }))
	alice, bob := uuid.NewString(), uuid.NewString()

	first, err := repository.Append(alice, bob, "one")
	req.NoError(err)
	second, err := repository.Append(bob, alice, "two")
	req.NoError(err)
	now = frozen.Add(-time.Hour)
	third, err := repository.Append(alice, bob, "three")
	req.NoError(err)

	req.Equal(frozen, first.CreatedAt)
	req.True(second.CreatedAt.After(first.CreatedAt))
	req.True(third.CreatedAt.After(second.CreatedAt))
	req.Less(first.Seq, second.Seq)
	req.Less(second.Seq, third.Seq)
}

func Test_Clock_And_Sequence_Survive_Reopen(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	alice, bob := uuid.NewString(), uuid.NewString()
	frozen := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository, err := NewMessageRepository(db, slog.Default(), WithClock(func() time.Time { return frozen }))
	req.NoError(err)
	before, err := repository.Append(alice, bob, "before restart")
	req.NoError(err)
	req.NoError(repository.Close())
	req.NoError(db.Close())

	db, err = badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	past := frozen.Add(-24 * time.Hour)
	repository, err = NewMessageRepository(db, slog.Default(), WithClock(func() time.Time { return past }))
	req.NoError(err)
	defer repository.Close()
	after, err := repository.Append(bob, alice, "after restart")
	req.NoError(err)

	req.Greater(after.Seq, before.Seq)
	req.True(after.CreatedAt.After(before.CreatedAt))

	thread, err := repository.Thread(alice, bob)
	req.NoError(err)
	req.Equal([]string{before.ID, after.ID}, []string{thread[0].ID, thread[1].ID})
}

func Test_MarkRead_Is_Directional_And_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	alice, bob := uuid.NewString(), uuid.NewString()

	_, err := repository.Append(alice, bob, "one")
	req.NoError(err)
	_, err = repository.Append(alice, bob, "two")
	req.NoError(err)
	_, err = repository.Append(bob, alice, "reply")
	req.NoError(err)

	updated, err := repository.MarkRead(alice, bob)
	req.NoError(err)
	req.Equal(2, updated)

	updated, err = repository.MarkRead(alice, bob)
	req.NoError(err)
	req.Zero(updated)

	thread, err := repository.Thread(alice, bob)
	req.NoError(err)
	for _, m := range thread {
		if m.SenderID == alice {
			req.True(m.Read, m.Body)
		} else {
			req.False(m.Read, m.Body)
		}
	}
}

func Test_MarkRead_Without_Messages(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))

	updated, err := repository.MarkRead(uuid.NewString(), uuid.NewString())
	req.NoError(err)
	req.Zero(updated)
}

func Test_AllInvolving_Returns_Both_Directions(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	alice, bob, carol := uuid.NewString(), uuid.NewString(), uuid.NewString()

	m1, err := repository.Append(alice, bob, "to bob")
	req.NoError(err)
	m2, err := repository.Append(carol, alice, "from carol")
	req.NoError(err)
	_, err = repository.Append(bob, carol, "not alice")
	req.NoError(err)

	messages, err := repository.AllInvolving(alice)
	req.NoError(err)
	req.Equal([]domain.Message{m1, m2}, messages)
}

func Test_Concurrent_Appends_Keep_Total_Order(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	alice, bob := uuid.NewString(), uuid.NewString()

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sender, receiver := alice, bob
			if w%2 == 1 {
				sender, receiver = bob, alice
			}
			for i := 0; i < perWriter; i++ {
				_, err := repository.Append(sender, receiver, "ping")
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	thread, err := repository.Thread(alice, bob)
	req.NoError(err)
	req.Len(thread, writers*perWriter)
	ids := make(map[string]struct{}, len(thread))
	for i := 1; i < len(thread); i++ {
		req.True(thread[i-1].Before(thread[i]))
		req.True(thread[i].CreatedAt.After(thread[i-1].CreatedAt))
		ids[thread[i].ID] = struct{}{}
	}
	ids[thread[0].ID] = struct{}{}
	req.Len(ids, writers*perWriter)
}

func Test_Ping_Reports_Closed_Store(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)

	req.NoError(repository.Ping())
	req.NoError(repository.Close())
	req.NoError(db.Close())

	req.ErrorIs(repository.Ping(), safeerrors.ErrStorage)
	_, err = repository.Thread(uuid.NewString(), uuid.NewString())
	req.ErrorIs(err, safeerrors.ErrStorage)
}

func Test_Codec_Skips_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:         uuid.NewString(),
		Seq:        42,
		SenderID:   uuid.NewString(),
		ReceiverID: uuid.NewString(),
		Body:       "hello",
		CreatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 5, time.UTC),
		Read:       true,
	}
	encoded := EncodeMessage(message)
	encoded = appendString(encoded, 99, "from a newer binary")

	decoded, err := DecodeMessage(encoded)
	req.NoError(err)
	req.Equal(message, decoded)

	_, err = DecodeMessage([]byte{0xff})
	req.Error(err)
}

func Test_Describe_Redacts_Records(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := newTestMessageRepository(t, db)
	sender, receiver := uuid.NewString(), uuid.NewString()

	m, err := repository.Append(sender, receiver, "a private sentence")
	req.NoError(err)

	record := Describe(string(messageKey(sender, receiver, m.Seq)), EncodeMessage(m))
	req.Equal("MESSAGE", record.Kind)
	req.Equal(m.ID, record.EntityID)
	req.NotContains(record.Detail, "private")
	req.Contains(record.Detail, "18 chars")

	req.Equal("RAW", Describe("unknown:key", []byte{1, 2, 3}).Kind)
}
