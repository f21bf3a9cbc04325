package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dmserver/internal/domain"
	"dmserver/internal/service"
)

func TestPresenceTracker_SetOnline(t *testing.T) {
	user := &domain.User{Nickname: "alice", Status: domain.StatusOffline}

	users := new(MockUserStore)
	users.On("FindByNickname", mock.Anything, "alice").Return(user, nil)
	users.On("Save", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Nickname == "alice" && u.Status == domain.StatusOnline && !u.LastSeen.IsZero()
	})).Return(nil)

	tracker := service.NewPresenceTracker(users, zerolog.Nop())

	err := tracker.SetOnline(context.Background(), "alice")
	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestPresenceTracker_SetOnline_Idempotent(t *testing.T) {
	user := &domain.User{Nickname: "alice", Status: domain.StatusOnline}

	users := new(MockUserStore)
	users.On("FindByNickname", mock.Anything, "alice").Return(user, nil)
	users.On("Save", mock.Anything, mock.Anything).Return(nil)

	tracker := service.NewPresenceTracker(users, zerolog.Nop())

	assert.NoError(t, tracker.SetOnline(context.Background(), "alice"))
	assert.NoError(t, tracker.SetOnline(context.Background(), "alice"))
	assert.Equal(t, domain.StatusOnline, user.Status)
}

func TestPresenceTracker_UnknownUserNoWrite(t *testing.T) {
	users := new(MockUserStore)
	users.On("FindByNickname", mock.Anything, "ghost").Return(nil, nil)

	tracker := service.NewPresenceTracker(users, zerolog.Nop())

	err := tracker.SetOffline(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPresenceTracker_ListOnline(t *testing.T) {
	online := []*domain.User{
		{Nickname: "alice", Status: domain.StatusOnline},
		{Nickname: "bob", Status: domain.StatusOnline},
	}

	users := new(MockUserStore)
	users.On("FindByStatus", mock.Anything, domain.StatusOnline).Return(online, nil)

	tracker := service.NewPresenceTracker(users, zerolog.Nop())

	got, err := tracker.ListOnline(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, online, got)
}
