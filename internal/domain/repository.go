package domain

import "context"

// UserStore defines persistence operations for users.
type UserStore interface {
	// Create inserts a new user. The nickname must be unique.
	Create(ctx context.Context, u *User) error
	// FindByNickname returns the user or nil when absent.
	FindByNickname(ctx context.Context, nickname string) (*User, error)
	// Save updates an existing user record.
	Save(ctx context.Context, u *User) error
	// FindByStatus returns all users currently in the given status.
	FindByStatus(ctx context.Context, status Status) ([]*User, error)
}

// RoomStore defines persistence operations for rooms. The store holds one
// canonical record per unordered user pair; implementations canonicalize
// the directional pair on lookup and must provide idempotent insert
// semantics so that concurrent creation of the same room converges on a
// single record.
type RoomStore interface {
	// FindByDirectionalPair returns the room for the pair, accepting the
	// ids in either order, or nil when no room exists yet.
	FindByDirectionalPair(ctx context.Context, senderID, receiverID string) (*Room, error)
	// Save inserts the room. Saving an already-existing room is a no-op.
	Save(ctx context.Context, r *Room) error
}

// MessageStore defines persistence operations for messages.
type MessageStore interface {
	// Save persists the message and assigns its ID.
	Save(ctx context.Context, m *Message) error
	// FindByChatID returns all messages of a conversation in insertion
	// order. No timestamp-based re-sort is applied.
	FindByChatID(ctx context.Context, chatID string) ([]*Message, error)
}

// NotificationSink is the push channel that delivers a message event to a
// user's private destination. Delivery is best-effort; callers treat
// failures as non-fatal.
type NotificationSink interface {
	PushToUser(ctx context.Context, userID, channel string, payload any) error
}
