package domain

import "time"

// Status is a user's presence state.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
)

// QueueMessages is the private destination a client subscribes to for
// incoming message notifications.
const QueueMessages = "/queue/messages"

// User represents a registered chat participant. The nickname is the
// identity key and is immutable after registration.
type User struct {
	Nickname       string    `db:"nickname" json:"nickname"`
	FullName       string    `db:"full_name" json:"full_name"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Status         Status    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastSeen       time.Time `db:"last_seen" json:"last_seen"`
}

// Room is the conversation channel shared by exactly two users. One record
// exists per unordered pair: UserA and UserB are stored in sorted order and
// ChatID is derived from them, so a lookup from either direction resolves to
// the same room.
type Room struct {
	ChatID    string    `db:"chat_id"`
	UserA     string    `db:"user_a"`
	UserB     string    `db:"user_b"`
	CreatedAt time.Time `db:"created_at"`
}

// Message is a single chat message. The ID is assigned by the store.
// Timestamp is wall-clock capture at submission time and carries no
// ordering guarantee across concurrent senders.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	ChatID     string    `db:"chat_id" json:"chat_id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	Content    string    `db:"content" json:"content"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// Notification is the payload pushed to the receiver's private queue once a
// message has been persisted.
type Notification struct {
	ID         int64  `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// ChatID returns the deterministic conversation identifier for a pair of
// users. The pair is canonicalized by sorting, so {A,B} and {B,A} always
// yield the same id. Self-chat (A,A) is a valid degenerate pair.
func ChatID(a, b string) string {
	lo, hi := SortPair(a, b)
	return lo + ":" + hi
}

// SortPair returns the two ids in canonical (lexicographic) order.
func SortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// NewRoom builds the canonical room record for a pair of users.
func NewRoom(a, b string) *Room {
	lo, hi := SortPair(a, b)
	return &Room{
		ChatID:    ChatID(lo, hi),
		UserA:     lo,
		UserB:     hi,
		CreatedAt: time.Now(),
	}
}
