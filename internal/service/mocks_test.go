package service_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"dmserver/internal/domain"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) FindByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	args := m.Called(ctx, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) Save(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.User, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) FindByDirectionalPair(ctx context.Context, senderID, receiverID string) (*domain.Room, error) {
	args := m.Called(ctx, senderID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomStore) Save(ctx context.Context, r *domain.Room) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Save(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageStore) FindByChatID(ctx context.Context, chatID string) ([]*domain.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// fakeRoomStore is a concurrency-safe in-memory room store with the same
// canonical-lookup and idempotent-insert semantics as the real adapters.
// Used where testify mocks are too rigid (parallel Resolve calls).
type fakeRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]*domain.Room)}
}

func (f *fakeRoomStore) FindByDirectionalPair(_ context.Context, senderID, receiverID string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[domain.ChatID(senderID, receiverID)], nil
}

func (f *fakeRoomStore) Save(_ context.Context, r *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.rooms[r.ChatID]; !exists {
		f.rooms[r.ChatID] = r
	}
	return nil
}

func (f *fakeRoomStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms)
}

// recordingSink captures every push. When savedCheck is set, each push also
// records whether the message store had already been written to, which is how
// the persist-before-notify ordering is asserted.
type recordingSink struct {
	mu         sync.Mutex
	pushes     []sinkPush
	err        error
	savedCheck func() bool
}

type sinkPush struct {
	userID     string
	channel    string
	payload    any
	savedFirst bool
}

func (s *recordingSink) PushToUser(_ context.Context, userID, channel string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := sinkPush{userID: userID, channel: channel, payload: payload}
	if s.savedCheck != nil {
		p.savedFirst = s.savedCheck()
	}
	s.pushes = append(s.pushes, p)
	return s.err
}
