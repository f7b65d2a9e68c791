package client

import (
	"context"
	"fmt"
	"log/slog"
	"safe-space/domain"
	"safe-space/errors"
	"safe-space/mocks"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func threadMessage(from, to, body string) domain.ThreadMessage {
	return domain.ThreadMessage{Message: domain.Message{
		ID: uuid.NewString(), SenderID: from, ReceiverID: to, Body: body, CreatedAt: time.Now().UTC(),
	}}
}

func newView(t *testing.T, api ChatAPI, opts ...ViewOption) *ConversationView {
	view := NewConversationView(logs.GetLoggerFromLevel(slog.LevelDebug), api, opts...)
	t.Cleanup(view.Close)
	return view
}

func TestConversationView_Open_Fetches_Immediately(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	api := mocks.NewMockChatAPI(ctrl)
	self, counterpart := uuid.NewString(), uuid.NewString()
	thread := []domain.ThreadMessage{threadMessage(counterpart, self, "hello")}

	api.EXPECT().FetchThread(gomock.Any(), counterpart).Return(thread, nil).Times(1)
	view := newView(t, api, WithPollInterval(time.Hour))

	req.NoError(view.Open(context.Background(), counterpart))
	req.Eventually(func() bool { return len(view.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	req.Equal(thread, view.Messages())
	req.Equal(counterpart, view.CounterpartID())
}

func TestConversationView_Polls_Until_Closed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	api := mocks.NewMockChatAPI(ctrl)
	counterpart := uuid.NewString()
	var calls atomic.Int32

	api.EXPECT().FetchThread(gomock.Any(), counterpart).
		DoAndReturn(func(context.Context, string) ([]domain.ThreadMessage, error) {
			calls.Add(1)
			return nil, nil
		}).MinTimes(3)
	view := newView(t, api, WithPollInterval(5*time.Millisecond))

	req.NoError(view.Open(context.Background(), counterpart))
	req.Eventually(func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	view.Close()
	time.Sleep(20 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	req.Equal(settled, calls.Load())
	req.Empty(view.CounterpartID())
	req.Empty(view.Messages())
}

func TestConversationView_Discards_Stale_Results(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	api := mocks.NewMockChatAPI(ctrl)
	self, first, second := uuid.NewString(), uuid.NewString(), uuid.NewString()
	stale := []domain.ThreadMessage{threadMessage(first, self, "late answer")}
	fresh := []domain.ThreadMessage{threadMessage(second, self, "current")}
	started := make(chan struct{})
	release := make(chan struct{})

	api.EXPECT().FetchThread(gomock.Any(), first).
		DoAndReturn(func(context.Context, string) ([]domain.ThreadMessage, error) {
			close(started)
			<-release
			return stale, nil
		}).Times(1)
	api.EXPECT().FetchThread(gomock.Any(), second).Return(fresh, nil).Times(1)
	view := newView(t, api, WithPollInterval(time.Hour))

	req.NoError(view.Open(context.Background(), first))
	<-started
	req.NoError(view.Open(context.Background(), second))
	req.Eventually(func() bool { return len(view.Messages()) == 1 }, time.Second, 5*time.Millisecond)

	close(release)
	req.Never(func() bool {
		messages := view.Messages()
		return len(messages) != 1 || messages[0].ID != fresh[0].ID
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestConversationView_Poll_Errors_Do_Not_Stop_Polling(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	api := mocks.NewMockChatAPI(ctrl)
	self, counterpart := uuid.NewString(), uuid.NewString()
	thread := []domain.ThreadMessage{threadMessage(counterpart, self, "back online")}
	reported := make(chan error, 1)

	api.EXPECT().FetchThread(gomock.Any(), counterpart).Return(nil, errors.ErrStorage).Times(1)
	api.EXPECT().FetchThread(gomock.Any(), counterpart).Return(thread, nil).MinTimes(1)
	view := newView(t, api,
		WithPollInterval(5*time.Millisecond),
		WithErrorHandler(func(err error) {
			select {
			case reported <- err:
			default:
			}
		}))

	req.NoError(view.Open(context.Background(), counterpart))
	req.ErrorIs(<-reported, errors.ErrStorage)
	req.Eventually(func() bool { return len(view.Messages()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestConversationView_Send(t *testing.T) {
	self, counterpart := uuid.NewString(), uuid.NewString()

	t.Run("should reject blank bodies locally", func(t *testing.T) {
		req := require.New(t)
		view := newView(t, mocks.NewMockChatAPI(gomock.NewController(t)))

		_, err := view.Send(context.Background(), "  \t ")

		req.ErrorIs(err, errors.ErrEmptyBody)
	})

	t.Run("should refuse to send without an open conversation", func(t *testing.T) {
		req := require.New(t)
		view := newView(t, mocks.NewMockChatAPI(gomock.NewController(t)))

		_, err := view.Send(context.Background(), "hello")

		req.ErrorIs(err, ErrNoConversation)
	})

	t.Run("should append the confirmed message once", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		api := mocks.NewMockChatAPI(ctrl)
		confirmed := threadMessage(self, counterpart, "see you tomorrow")
		var updates atomic.Int32

		api.EXPECT().FetchThread(gomock.Any(), counterpart).Return(nil, nil).Times(1)
		api.EXPECT().SendMessage(gomock.Any(), counterpart, "see you tomorrow").Return(confirmed, nil).Times(1)
		view := newView(t, api, WithPollInterval(time.Hour), WithUpdateHandler(func([]domain.ThreadMessage) {
			updates.Add(1)
		}))
		req.NoError(view.Open(context.Background(), counterpart))
		req.Eventually(func() bool { return updates.Load() == 1 }, time.Second, 5*time.Millisecond)

		sent, err := view.Send(context.Background(), "  see you tomorrow ")

		req.NoError(err)
		req.Equal(confirmed, sent)
		req.Equal([]domain.ThreadMessage{confirmed}, view.Messages())
	})

	t.Run("should skip messages a poll already delivered", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		api := mocks.NewMockChatAPI(ctrl)
		confirmed := threadMessage(self, counterpart, "already here")

		api.EXPECT().FetchThread(gomock.Any(), counterpart).Return([]domain.ThreadMessage{confirmed}, nil).Times(1)
		api.EXPECT().SendMessage(gomock.Any(), counterpart, "already here").Return(confirmed, nil).Times(1)
		view := newView(t, api, WithPollInterval(time.Hour))
		req.NoError(view.Open(context.Background(), counterpart))
		req.Eventually(func() bool { return len(view.Messages()) == 1 }, time.Second, 5*time.Millisecond)

		_, err := view.Send(context.Background(), "already here")

		req.NoError(err)
		req.Len(view.Messages(), 1)
	})

	t.Run("should leave the thread untouched when sending fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		api := mocks.NewMockChatAPI(ctrl)
		existing := []domain.ThreadMessage{threadMessage(counterpart, self, "hi")}

		api.EXPECT().FetchThread(gomock.Any(), counterpart).Return(existing, nil).Times(1)
		api.EXPECT().SendMessage(gomock.Any(), counterpart, "lost").Return(domain.ThreadMessage{}, fmt.Errorf("%w: offline", errors.ErrStorage)).Times(1)
		view := newView(t, api, WithPollInterval(time.Hour))
		req.NoError(view.Open(context.Background(), counterpart))
		req.Eventually(func() bool { return len(view.Messages()) == 1 }, time.Second, 5*time.Millisecond)

		_, err := view.Send(context.Background(), "lost")

		req.ErrorIs(err, errors.ErrStorage)
		req.Equal(existing, view.Messages())
	})
}

func TestConversationView_Open_Rejects_Malformed_ID(t *testing.T) {
	view := newView(t, mocks.NewMockChatAPI(gomock.NewController(t)))
	require.ErrorIs(t, view.Open(context.Background(), "not-a-uuid"), errors.ErrMalformedID)
}

func TestInbox_Refresh(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	api := mocks.NewMockChatAPI(ctrl)
	summaries := []domain.ConversationSummary{
		{CounterpartID: uuid.NewString(), UnreadCount: 2},
		{CounterpartID: uuid.NewString(), UnreadCount: 1},
	}
	api.EXPECT().ListConversations(gomock.Any()).Return(summaries, nil)

	got, unread, err := NewInbox(api).Refresh(context.Background())

	req.NoError(err)
	req.Equal(summaries, got)
	req.Equal(3, unread)
}
