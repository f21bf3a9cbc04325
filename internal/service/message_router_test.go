package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dmserver/internal/domain"
	"dmserver/internal/service"
)

func newRouter(rooms domain.RoomStore, messages domain.MessageStore, sink domain.NotificationSink) *service.MessageRouter {
	return service.NewMessageRouter(
		service.NewRoomDirectory(rooms),
		messages,
		sink,
		time.Second,
		zerolog.Nop(),
	)
}

func TestMessageRouter_Submit_PersistsThenNotifies(t *testing.T) {
	rooms := new(MockRoomStore)
	rooms.On("FindByDirectionalPair", mock.Anything, "alice", "bob").Return(nil, nil)
	rooms.On("Save", mock.Anything, mock.Anything).Return(nil)

	var saved atomic.Bool
	messages := new(MockMessageStore)
	messages.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Message).ID = 42
			saved.Store(true)
		}).
		Return(nil)

	sink := &recordingSink{savedCheck: saved.Load}

	router := newRouter(rooms, messages, sink)

	msg, err := router.Submit(context.Background(), "alice", "bob", "hello")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), msg.ID)
	assert.Equal(t, domain.ChatID("alice", "bob"), msg.ChatID)

	if assert.Len(t, sink.pushes, 1) {
		push := sink.pushes[0]
		assert.True(t, push.savedFirst, "notification must follow persistence")
		assert.Equal(t, "bob", push.userID)
		assert.Equal(t, domain.QueueMessages, push.channel)

		note, ok := push.payload.(domain.Notification)
		assert.True(t, ok)
		assert.Equal(t, int64(42), note.ID)
		assert.Equal(t, "alice", note.SenderID)
		assert.Equal(t, "bob", note.ReceiverID)
		assert.Equal(t, "hello", note.Content)
	}
	messages.AssertExpectations(t)
}

func TestMessageRouter_Submit_RoomStoreDownNothingWritten(t *testing.T) {
	rooms := new(MockRoomStore)
	rooms.On("FindByDirectionalPair", mock.Anything, "alice", "bob").
		Return(nil, errors.New("connection refused"))

	messages := new(MockMessageStore)
	sink := &recordingSink{}

	router := newRouter(rooms, messages, sink)

	_, err := router.Submit(context.Background(), "alice", "bob", "hello")
	assert.ErrorIs(t, err, domain.ErrRoomUnavailable)
	messages.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, sink.pushes)
}

func TestMessageRouter_Submit_SaveFailureSkipsNotification(t *testing.T) {
	rooms := new(MockRoomStore)
	rooms.On("FindByDirectionalPair", mock.Anything, "alice", "bob").
		Return(domain.NewRoom("alice", "bob"), nil)

	messages := new(MockMessageStore)
	messages.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	sink := &recordingSink{}

	router := newRouter(rooms, messages, sink)

	_, err := router.Submit(context.Background(), "alice", "bob", "hello")
	assert.Error(t, err)
	assert.Empty(t, sink.pushes)
}

func TestMessageRouter_Submit_SinkFailureDoesNotFailSubmit(t *testing.T) {
	rooms := new(MockRoomStore)
	rooms.On("FindByDirectionalPair", mock.Anything, "alice", "bob").
		Return(domain.NewRoom("alice", "bob"), nil)

	messages := new(MockMessageStore)
	messages.On("Save", mock.Anything, mock.Anything).Return(nil)

	sink := &recordingSink{err: errors.New("receiver gone")}

	router := newRouter(rooms, messages, sink)

	msg, err := router.Submit(context.Background(), "alice", "bob", "hello")
	assert.NoError(t, err)
	assert.NotNil(t, msg)
}

func TestMessageRouter_Submit_EmptyContent(t *testing.T) {
	router := newRouter(new(MockRoomStore), new(MockMessageStore), &recordingSink{})

	_, err := router.Submit(context.Background(), "alice", "bob", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMessageRouter_Fetch_NoRoom(t *testing.T) {
	rooms := new(MockRoomStore)
	rooms.On("FindByDirectionalPair", mock.Anything, "alice", "bob").Return(nil, nil)

	router := newRouter(rooms, new(MockMessageStore), &recordingSink{})

	_, err := router.Fetch(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestMessageRouter_Fetch_ReturnsInsertionOrder(t *testing.T) {
	chatID := domain.ChatID("alice", "bob")
	history := []*domain.Message{
		{ID: 1, ChatID: chatID, SenderID: "alice", ReceiverID: "bob", Content: "first"},
		{ID: 2, ChatID: chatID, SenderID: "bob", ReceiverID: "alice", Content: "second"},
		{ID: 3, ChatID: chatID, SenderID: "alice", ReceiverID: "bob", Content: "third"},
	}

	rooms := new(MockRoomStore)
	rooms.On("FindByDirectionalPair", mock.Anything, "bob", "alice").
		Return(domain.NewRoom("alice", "bob"), nil)

	messages := new(MockMessageStore)
	messages.On("FindByChatID", mock.Anything, chatID).Return(history, nil)

	router := newRouter(rooms, messages, &recordingSink{})

	got, err := router.Fetch(context.Background(), "bob", "alice")
	assert.NoError(t, err)
	assert.Equal(t, history, got)
}
